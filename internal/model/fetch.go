package model

import (
	"net/http"
	"time"
)

// Identity is the persona a page is requested under.
type Identity string

const (
	IdentityCrawler Identity = "crawler"
	IdentityBrowser Identity = "browser"
)

// StatusNetworkFailure is the status code recorded when no HTTP response was
// received at all.
const StatusNetworkFailure = -1

// FetchError describes why a fetch produced no response.
type FetchError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func (e *FetchError) Error() string {
	return e.Kind + ": " + e.Message
}

// Redirect is one hop followed while fetching.
type Redirect struct {
	From       string `json:"from"`
	To         string `json:"to"`
	StatusCode int    `json:"status_code"`
}

// FetchResult is the outcome of requesting a URL under one identity.
// It is not modified after the fetcher returns it.
type FetchResult struct {
	Identity   Identity
	URL        string
	FinalURL   string
	StatusCode int
	Headers    http.Header
	Body       []byte
	ElapsedMS  float64
	FetchedAt  time.Time
	Redirects  []Redirect
	Err        *FetchError
}

// OK reports whether an HTTP response was received.
func (f *FetchResult) OK() bool {
	return f != nil && f.Err == nil && f.StatusCode != StatusNetworkFailure
}

// ContentType returns the response Content-Type header, if any.
func (f *FetchResult) ContentType() string {
	if f == nil || f.Headers == nil {
		return ""
	}
	return f.Headers.Get("Content-Type")
}

// Meta strips the body so the result can be attached to a ScanResult.
func (f *FetchResult) Meta() FetchMeta {
	m := FetchMeta{
		Identity:      f.Identity,
		URL:           f.URL,
		FinalURL:      f.FinalURL,
		StatusCode:    f.StatusCode,
		ElapsedMS:     f.ElapsedMS,
		ContentLength: len(f.Body),
		ContentType:   f.ContentType(),
		Redirects:     append([]Redirect(nil), f.Redirects...),
	}
	if f.Err != nil {
		m.Error = f.Err.Message
		m.ErrorKind = f.Err.Kind
	}
	return m
}

// FetchMeta is FetchResult without its body.
type FetchMeta struct {
	Identity      Identity   `json:"identity"`
	URL           string     `json:"url"`
	FinalURL      string     `json:"final_url,omitempty"`
	StatusCode    int        `json:"status_code"`
	ElapsedMS     float64    `json:"elapsed_ms"`
	ContentLength int        `json:"content_length"`
	ContentType   string     `json:"content_type,omitempty"`
	Redirects     []Redirect `json:"redirects,omitempty"`
	ErrorKind     string     `json:"error_kind,omitempty"`
	Error         string     `json:"error,omitempty"`
}

// FetchInfo pairs the metadata of both identity fetches.
type FetchInfo struct {
	Crawler FetchMeta `json:"crawler"`
	Browser FetchMeta `json:"browser"`
}
