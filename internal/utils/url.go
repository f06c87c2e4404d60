package utils

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"path"
	"sort"
	"strings"

	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"
)

var (
	ErrEmptyURL          = errors.New("empty url")
	ErrMissingHost       = errors.New("missing host")
	ErrUnsupportedScheme = errors.New("unsupported scheme")
)

// CanonicalizeOptions controls optional canonicalization policies.
type CanonicalizeOptions struct {
	DropTrackingParams bool   // remove common tracking params (utm_*, gclid, fbclid, ...)
	StripTrailingSlash bool   // treat /a and /a/ the same by removing trailing slash (except for root "/")
	StripQuery         bool   // drop the whole query string
	DefaultScheme      string // if empty, require scheme in input; otherwise assume this scheme for schemeless URLs
}

var defaultTrackingParams = map[string]struct{}{
	"utm_source": {}, "utm_medium": {}, "utm_campaign": {}, "utm_term": {}, "utm_content": {},
	"gclid": {}, "fbclid": {}, "mc_cid": {}, "mc_eid": {},
}

// Canonicalize returns a deterministic canonical URL string or an error.
// Hosts are lowercased and punycoded, default ports and fragments dropped and
// query parameters sorted.
func Canonicalize(raw string, opts CanonicalizeOptions) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", &url.Error{Op: "parse", URL: raw, Err: ErrEmptyURL}
	}

	if opts.DefaultScheme != "" && !strings.Contains(raw, "://") {
		raw = opts.DefaultScheme + "://" + strings.TrimPrefix(raw, "//")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Host == "" {
		return "", &url.Error{Op: "parse", URL: raw, Err: ErrMissingHost}
	}

	u.Scheme = strings.ToLower(u.Scheme)

	host := strings.ToLower(u.Hostname())
	if puny, err := idna.Lookup.ToASCII(host); err == nil {
		host = puny
	}

	port := u.Port()
	switch {
	case (u.Scheme == "http" && port == "80") || (u.Scheme == "https" && port == "443"):
		u.Host = host
	case port != "":
		u.Host = net.JoinHostPort(host, port)
	default:
		u.Host = host
	}

	u.User = nil

	cleanPath := "/"
	if u.Path != "" {
		trailing := strings.HasSuffix(u.Path, "/")
		cleanPath = path.Clean(u.Path)
		if trailing && cleanPath != "/" && !opts.StripTrailingSlash {
			cleanPath += "/"
		}
	}
	u.Path = cleanPath
	u.RawPath = ""
	u.Fragment = ""
	u.RawFragment = ""

	if opts.StripQuery {
		u.RawQuery = ""
		u.ForceQuery = false
		return u.String(), nil
	}

	q := u.Query()
	if opts.DropTrackingParams {
		for k := range q {
			if _, ok := defaultTrackingParams[strings.ToLower(k)]; ok {
				q.Del(k)
			}
		}
	}

	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	ordered := url.Values{}
	for _, k := range keys {
		values := q[k]
		sort.Strings(values)
		for _, v := range values {
			ordered.Add(k, v)
		}
	}
	u.RawQuery = ordered.Encode()

	return u.String(), nil
}

// NormalizeTarget turns user input such as "example.com/page" into an
// absolute, canonical http(s) URL. Scheme-less input defaults to https.
func NormalizeTarget(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrEmptyURL
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + strings.TrimPrefix(raw, "//")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse %q: %w", raw, err)
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedScheme, u.Scheme)
	}
	if u.Hostname() == "" {
		return "", ErrMissingHost
	}
	return Canonicalize(raw, CanonicalizeOptions{})
}

// TargetKey identifies submissions that name the same page: tracking
// parameters and a trailing slash do not make a new target.
func TargetKey(target string) string {
	k, err := Canonicalize(target, CanonicalizeOptions{DropTrackingParams: true, StripTrailingSlash: true})
	if err != nil {
		return target
	}
	return k
}

// Hostname returns the lowercased host of raw without port, or "" when raw
// does not parse.
func Hostname(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// RegistrableDomain returns the eTLD+1 of host ("blog.example.co.uk" ->
// "example.co.uk"). IP addresses, single-label hosts and hosts the public
// suffix list cannot split are returned unchanged.
func RegistrableDomain(host string) string {
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	if host == "" || net.ParseIP(host) != nil || !strings.Contains(host, ".") {
		return host
	}
	d, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return d
}

// SameSite reports whether two URLs share a registrable domain.
func SameSite(a, b string) bool {
	ha, hb := Hostname(a), Hostname(b)
	if ha == "" || hb == "" {
		return false
	}
	return RegistrableDomain(ha) == RegistrableDomain(hb)
}

// QuotaDomain is the domain a scan is charged against: host without port and
// without a leading "www.".
func QuotaDomain(raw string) string {
	return strings.TrimPrefix(Hostname(raw), "www.")
}

// Resolve resolves ref against base and returns an absolute URL without its
// fragment. ok is false when either side does not parse.
func Resolve(base *url.URL, ref string) (string, bool) {
	r, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return "", false
	}
	var abs *url.URL
	if base != nil {
		abs = base.ResolveReference(r)
	} else {
		abs = r
	}
	abs.Fragment = ""
	abs.RawFragment = ""
	return abs.String(), true
}
