// Package webclient is the HTTP transport behind the dual fetcher. Backends
// register by name; nethttp is the only one built in.
package webclient

import (
	"context"
	"net/http"
	"time"

	"github.com/raysh454/judolhunter/internal/model"
)

// htmlAccept is the Accept header a desktop browser sends for a navigation.
const htmlAccept = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"

type WebClient interface {
	// Do performs req and returns the last response of its redirect chain.
	// Non-2xx statuses are responses, not errors.
	Do(ctx context.Context, req *Request) (*Response, error)

	Close() error
}

type Request struct {
	Method  string
	URL     string
	Headers http.Header
	Body    []byte
}

// PageRequest builds a GET for an HTML page as seen by userAgent.
func PageRequest(url, userAgent, acceptLanguage string) *Request {
	h := http.Header{
		"User-Agent": {userAgent},
		"Accept":     {htmlAccept},
	}
	if acceptLanguage != "" {
		h.Set("Accept-Language", acceptLanguage)
	}
	return &Request{Method: http.MethodGet, URL: url, Headers: h}
}

type Response struct {
	Request *Request

	// FinalURL is where the redirect chain ended.
	FinalURL  string
	Redirects []model.Redirect

	Headers    http.Header
	Body       []byte
	StatusCode int

	// Truncated is set when Body was cut at Config.MaxBodyBytes.
	Truncated bool
	FetchedAt time.Time
}
