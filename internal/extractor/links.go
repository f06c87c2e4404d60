package extractor

import (
	"encoding/base64"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/net/html"

	"github.com/raysh454/judolhunter/internal/model"
	"github.com/raysh454/judolhunter/internal/utils"
)

var (
	inlineURL   = regexp.MustCompile(`https?://[^\s"'<>\\)]+`)
	atobCall    = regexp.MustCompile(`atob\(\s*["']([A-Za-z0-9+/=]{8,})["']\s*\)`)
	refreshURL  = regexp.MustCompile(`(?i)url\s*=\s*['"]?([^'";\s]+)`)
	jsonLDHosts = []string{"schema.org", "w3.org"}
)

var srcTags = map[string]bool{
	"iframe": true,
	"embed":  true,
	"script": true,
	"img":    true,
	"source": true,
	"video":  true,
	"audio":  true,
	"frame":  true,
}

var dataAttrs = []string{"data-href", "data-url", "data-src"}

type linkCollector struct {
	base  *url.URL
	seen  map[string]struct{}
	links []string
	rel   []model.PageLink
}

// collectLinks walks the document and returns the set of absolute http(s)
// URLs it references, sorted, together with canonical and amphtml relations.
func collectLinks(root *html.Node, base *url.URL) ([]string, []model.PageLink) {
	lc := &linkCollector{base: base, seen: map[string]struct{}{}}
	lc.walk(root)
	sort.Strings(lc.links)
	if lc.links == nil {
		lc.links = []string{}
	}
	return lc.links, lc.rel
}

func (lc *linkCollector) walk(n *html.Node) {
	if n.Type == html.ElementNode {
		lc.element(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		lc.walk(c)
	}
}

func (lc *linkCollector) element(n *html.Node) {
	switch n.Data {
	case "a", "area":
		lc.add(attr(n, "href"))
	case "link":
		href := attr(n, "href")
		if abs, ok := lc.add(href); ok {
			for _, rel := range strings.Fields(strings.ToLower(attr(n, "rel"))) {
				if rel == "canonical" || rel == "amphtml" {
					lc.rel = append(lc.rel, model.PageLink{URL: abs, Rel: rel})
				}
			}
		}
	case "object":
		lc.add(attr(n, "data"))
	case "form":
		lc.add(attr(n, "action"))
	case "meta":
		if strings.EqualFold(attr(n, "http-equiv"), "refresh") {
			if m := refreshURL.FindStringSubmatch(attr(n, "content")); m != nil {
				lc.add(m[1])
			}
		}
	}

	if srcTags[n.Data] {
		lc.add(attr(n, "src"))
	}
	for _, key := range dataAttrs {
		lc.add(attr(n, key))
	}

	if n.Data == "script" && attr(n, "src") == "" {
		lc.script(n)
	}
}

func (lc *linkCollector) script(n *html.Node) {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	code := b.String()
	if code == "" {
		return
	}

	jsonLD := strings.EqualFold(strings.TrimSpace(attr(n, "type")), "application/ld+json")
	for _, raw := range inlineURL.FindAllString(code, -1) {
		if jsonLD && isVocabularyURL(raw) {
			continue
		}
		lc.add(raw)
	}
	if jsonLD {
		return
	}
	for _, m := range atobCall.FindAllStringSubmatch(code, -1) {
		decoded, err := base64.StdEncoding.DecodeString(m[1])
		if err != nil {
			continue
		}
		for _, raw := range inlineURL.FindAllString(string(decoded), -1) {
			lc.add(raw)
		}
	}
}

func isVocabularyURL(raw string) bool {
	host := utils.Hostname(raw)
	for _, h := range jsonLDHosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

// add resolves ref against the page URL and records it when it is an
// http(s) link. It returns the absolute URL.
func (lc *linkCollector) add(ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.HasPrefix(ref, "#") {
		return "", false
	}
	lower := strings.ToLower(ref)
	for _, skip := range []string{"javascript:", "mailto:", "tel:", "data:", "hhttp"} {
		if strings.HasPrefix(lower, skip) {
			return "", false
		}
	}
	abs, ok := utils.Resolve(lc.base, ref)
	if !ok {
		return "", false
	}
	u, err := url.Parse(abs)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", false
	}
	if _, dup := lc.seen[abs]; !dup {
		lc.seen[abs] = struct{}{}
		lc.links = append(lc.links, abs)
	}
	return abs, true
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
