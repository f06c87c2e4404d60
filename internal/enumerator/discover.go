// Package enumerator finds the pages a crawl should visit next. Discover
// picks links that only the crawler was shown; Frontier bounds how many of
// them a crawl may claim.
package enumerator

import (
	"net/url"
	"path"
	"sort"
	"strings"

	"github.com/raysh454/judolhunter/internal/utils"
)

// Visited reports whether a crawl has already claimed a URL.
type Visited interface {
	Seen(rawURL string) bool
}

// AssetExtensions are path suffixes that never denote a page.
var AssetExtensions = []string{
	".css", ".js", ".mjs", ".map",
	".png", ".jpg", ".jpeg", ".gif", ".svg", ".ico", ".webp", ".avif", ".bmp",
	".woff", ".woff2", ".ttf", ".otf", ".eot",
	".mp4", ".mp3", ".webm", ".ogg", ".wav",
	".pdf", ".zip", ".gz", ".xml", ".json", ".txt",
}

// IsAsset reports whether rawURL points at a static asset.
func IsAsset(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	ext := strings.ToLower(path.Ext(u.Path))
	if ext == "" {
		return false
	}
	for _, a := range AssetExtensions {
		if ext == a {
			return true
		}
	}
	return false
}

// PageKey reduces a URL to the form used for set membership: canonical host
// and path, no query, no fragment, no trailing slash. It returns "" for URLs that do not parse or
// are not http(s).
func PageKey(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ""
	}
	k, err := utils.Canonicalize(rawURL, utils.CanonicalizeOptions{StripQuery: true, StripTrailingSlash: true})
	if err != nil {
		return ""
	}
	return strings.TrimSuffix(k, "/")
}

// Discover returns the pages linked only from the crawler's view of baseURL:
// crawler links minus browser links, kept to the registrable domain of
// baseURL, without static assets and without anything visited already.
// Results are query-less, sorted and capped at limit when limit > 0.
func Discover(crawlerLinks, browserLinks []string, baseURL string, visited Visited, limit int) []string {
	browser := make(map[string]struct{}, len(browserLinks))
	for _, l := range browserLinks {
		if k := PageKey(l); k != "" {
			browser[k] = struct{}{}
		}
	}
	baseKey := PageKey(baseURL)

	seen := map[string]struct{}{}
	var out []string
	for _, l := range crawlerLinks {
		k := PageKey(l)
		if k == "" || k == baseKey {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		if _, shared := browser[k]; shared {
			continue
		}
		if !utils.SameSite(k, baseURL) || IsAsset(k) {
			continue
		}
		candidate := pageURL(l)
		if visited != nil && (visited.Seen(candidate) || visited.Seen(k)) {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, candidate)
	}

	sort.Strings(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func pageURL(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return rawURL
	}
	u.RawQuery = ""
	u.ForceQuery = false
	u.Fragment = ""
	u.RawFragment = ""
	u.Host = strings.ToLower(u.Host)
	if u.Path == "" {
		u.Path = "/"
	}
	return u.String()
}
