// Package testutil provides shared test doubles for use across package tests.
package testutil

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/raysh454/judolhunter/internal/logging"
	"github.com/raysh454/judolhunter/internal/webclient"
)

// ─── Logger ────────────────────────────────────────────────────────────

// DummyLogger implements logging.Logger with in-memory recording.
type DummyLogger struct {
	mu     sync.Mutex
	Errors []string
	Infos  []string
	Debugs []string
	Warns  []string
}

func (l *DummyLogger) Debug(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Debugs = append(l.Debugs, msg)
}

func (l *DummyLogger) Info(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Infos = append(l.Infos, msg)
}

func (l *DummyLogger) Warn(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Warns = append(l.Warns, msg)
}

func (l *DummyLogger) Error(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Errors = append(l.Errors, msg)
}

func (l *DummyLogger) With(_ ...logging.Field) logging.Logger { return l }

// ErrorCount returns the number of Error calls so far.
func (l *DummyLogger) ErrorCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.Errors)
}

// ─── WebClient ─────────────────────────────────────────────────────────

// DummyWebClient implements webclient.WebClient.
// Pages maps a URL to the body served for it; unknown URLs get 404.
// PagesByUA overrides Pages when the request User-Agent contains the key,
// which is how tests serve different content to the crawler.
// Set FailURLs[url] = true to force an error for a specific URL.
type DummyWebClient struct {
	ResponseDelay time.Duration
	Pages         map[string]string
	PagesByUA     map[string]map[string]string
	FailURLs      map[string]bool
	FailUA        string

	mu       sync.Mutex
	Requests []*webclient.Request
}

func (d *DummyWebClient) Do(ctx context.Context, req *webclient.Request) (*webclient.Response, error) {
	if d.ResponseDelay > 0 {
		select {
		case <-time.After(d.ResponseDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	d.Requests = append(d.Requests, req)
	d.mu.Unlock()

	ua := req.Headers.Get("User-Agent")
	if d.FailURLs != nil && d.FailURLs[req.URL] {
		return nil, &errString{"dummy fetch fail for " + req.URL}
	}
	if d.FailUA != "" && containsFold(ua, d.FailUA) {
		return nil, &errString{"dummy fetch fail for " + ua}
	}

	body, ok := d.lookup(req.URL, ua)
	status := http.StatusOK
	if !ok {
		status = http.StatusNotFound
		body = "not found"
	}
	return &webclient.Response{
		Request:    req,
		FinalURL:   req.URL,
		Body:       []byte(body),
		Headers:    http.Header{"Content-Type": {"text/html; charset=utf-8"}},
		StatusCode: status,
		FetchedAt:  time.Now(),
	}, nil
}

func (d *DummyWebClient) lookup(url, ua string) (string, bool) {
	for needle, pages := range d.PagesByUA {
		if containsFold(ua, needle) {
			if body, ok := pages[url]; ok {
				return body, true
			}
		}
	}
	if d.Pages == nil {
		return "ok:" + url, true
	}
	body, ok := d.Pages[url]
	return body, ok
}

func (d *DummyWebClient) Close() error { return nil }

// RequestCount returns how many requests reached the client.
func (d *DummyWebClient) RequestCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.Requests)
}

// ─── helpers ───────────────────────────────────────────────────────────

type errString struct{ s string }

func (e *errString) Error() string { return e.s }

func containsFold(s, substr string) bool {
	return substr != "" && strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
