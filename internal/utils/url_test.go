package utils

import (
	"errors"
	"net/url"
	"testing"
)

// ─── Canonicalize ──────────────────────────────────────────────────────

func TestCanonicalize(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		opts CanonicalizeOptions
		want string
	}{
		{
			in:   "HTTP://Example.COM:80/foo/../bar/?b=2&a=1#frag",
			opts: CanonicalizeOptions{},
			want: "http://example.com/bar/?a=1&b=2",
		},
		{
			in:   "https://example.com:443/index.html#section",
			opts: CanonicalizeOptions{},
			want: "https://example.com/index.html",
		},
		{
			in:   "example.com/page?utm_source=x&utm_medium=y&z=1",
			opts: CanonicalizeOptions{DefaultScheme: "https", DropTrackingParams: true},
			want: "https://example.com/page?z=1",
		},
		{
			in:   "https://例え.テスト/a",
			opts: CanonicalizeOptions{},
			want: "https://xn--r8jz45g.xn--zckzah/a",
		},
		{
			in:   "https://example.com/foo/",
			opts: CanonicalizeOptions{StripTrailingSlash: true},
			want: "https://example.com/foo",
		},
		{
			in:   "https://example.com/promo?ref=1#top",
			opts: CanonicalizeOptions{StripQuery: true},
			want: "https://example.com/promo",
		},
		{
			in:   "https://example.com:8443",
			opts: CanonicalizeOptions{},
			want: "https://example.com:8443/",
		},
	}

	for _, tt := range tests {
		got, err := Canonicalize(tt.in, tt.opts)
		if err != nil {
			t.Fatalf("canonicalize(%q) error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("canonicalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCanonicalize_EmptyURL_Error(t *testing.T) {
	t.Parallel()
	_, err := Canonicalize("   ", CanonicalizeOptions{})
	if !errors.Is(err, ErrEmptyURL) {
		t.Errorf("expected ErrEmptyURL, got %v", err)
	}
}

func TestCanonicalize_MissingHost_Error(t *testing.T) {
	t.Parallel()
	_, err := Canonicalize("/relative/only", CanonicalizeOptions{})
	if !errors.Is(err, ErrMissingHost) {
		t.Errorf("expected ErrMissingHost, got %v", err)
	}
}

// ─── NormalizeTarget ───────────────────────────────────────────────────

func TestNormalizeTarget(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want string
	}{
		{"example.com", "https://example.com/"},
		{"  http://Example.com/page#x ", "http://example.com/page"},
		{"https://sub.example.co.id/a?b=1", "https://sub.example.co.id/a?b=1"},
		{"HTTPS://Example.com:443/a/../b?z=2&a=1", "https://example.com/b?a=1&z=2"},
	}
	for _, tt := range tests {
		got, err := NormalizeTarget(tt.in)
		if err != nil {
			t.Fatalf("NormalizeTarget(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("NormalizeTarget(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeTarget_Rejects(t *testing.T) {
	t.Parallel()
	if _, err := NormalizeTarget("ftp://example.com"); !errors.Is(err, ErrUnsupportedScheme) {
		t.Errorf("expected ErrUnsupportedScheme, got %v", err)
	}
	if _, err := NormalizeTarget(""); !errors.Is(err, ErrEmptyURL) {
		t.Errorf("expected ErrEmptyURL, got %v", err)
	}
}

func TestTargetKey(t *testing.T) {
	t.Parallel()
	same := []string{
		"https://example.com/berita",
		"https://example.com/berita/",
		"https://example.com/berita?utm_source=wa&utm_medium=share",
		"https://example.com:443/berita#top",
	}
	want := TargetKey(same[0])
	for _, in := range same[1:] {
		if got := TargetKey(in); got != want {
			t.Errorf("TargetKey(%q) = %q, want %q", in, got, want)
		}
	}
	if TargetKey("https://example.com/berita?id=2") == want {
		t.Error("a real query parameter must keep targets apart")
	}
}

// ─── Domains ───────────────────────────────────────────────────────────

func TestRegistrableDomain(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		"blog.example.co.uk": "example.co.uk",
		"www.example.com":    "example.com",
		"example.com":        "example.com",
		"127.0.0.1":          "127.0.0.1",
		"localhost":          "localhost",
		"SHOP.Example.ac.id": "example.ac.id",
	}
	for in, want := range tests {
		if got := RegistrableDomain(in); got != want {
			t.Errorf("RegistrableDomain(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSameSite(t *testing.T) {
	t.Parallel()
	if !SameSite("https://a.example.com/x", "http://www.example.com/y") {
		t.Error("expected subdomains of one site to match")
	}
	if SameSite("https://example.com", "https://example.org") {
		t.Error("expected different sites not to match")
	}
	if SameSite("https://127.0.0.1:8080/a", "https://127.0.0.2:8080/a") {
		t.Error("expected distinct IPs not to match")
	}
}

func TestQuotaDomain_StripsWWWAndPort(t *testing.T) {
	t.Parallel()
	if got := QuotaDomain("https://WWW.Example.com:8443/path"); got != "example.com" {
		t.Errorf("expected example.com, got %q", got)
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()
	base, _ := url.Parse("https://example.com/app/index.html")
	got, ok := Resolve(base, "../login#frag")
	if !ok || got != "https://example.com/login" {
		t.Errorf("expected https://example.com/login, got %q (ok=%v)", got, ok)
	}
}
