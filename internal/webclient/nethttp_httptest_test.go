package webclient_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/raysh454/judolhunter/internal/testutil"
	"github.com/raysh454/judolhunter/internal/webclient"
)

func newClient(t *testing.T, cfg webclient.Config, base *http.Client) *webclient.NetHTTPClient {
	t.Helper()
	client, err := webclient.NewNetHTTPClient(cfg, &testutil.DummyLogger{}, base)
	if err != nil {
		t.Fatalf("NewNetHTTPClient: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

// ─── Do: real HTTP round-trip via httptest ──────────────────────────────

func TestNetHTTPClient_Do_GET_ReturnsBody(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Custom", "hello")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "response body")
	}))
	defer ts.Close()

	client := newClient(t, webclient.Config{}, ts.Client())
	resp, err := client.Do(context.Background(), &webclient.Request{Method: "GET", URL: ts.URL + "/test"})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}

	if resp.StatusCode != 200 {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	if string(resp.Body) != "response body" {
		t.Errorf("expected 'response body', got %q", resp.Body)
	}
	if resp.Headers.Get("X-Custom") != "hello" {
		t.Errorf("expected X-Custom header 'hello', got %q", resp.Headers.Get("X-Custom"))
	}
	if resp.FinalURL != ts.URL+"/test" {
		t.Errorf("expected final URL %s/test, got %q", ts.URL, resp.FinalURL)
	}
}

func TestNetHTTPClient_Do_ForwardsUserAgent(t *testing.T) {
	t.Parallel()
	var got string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.UserAgent()
	}))
	defer ts.Close()

	client := newClient(t, webclient.Config{}, ts.Client())
	_, err := client.Do(context.Background(), &webclient.Request{
		URL:     ts.URL,
		Headers: http.Header{"User-Agent": {"Googlebot/2.1"}},
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if got != "Googlebot/2.1" {
		t.Errorf("expected UA to be forwarded, got %q", got)
	}
}

func TestNetHTTPClient_Do_RecordsRedirects(t *testing.T) {
	t.Parallel()
	mux := http.NewServeMux()
	mux.HandleFunc("/a", func(w http.ResponseWriter, r *http.Request) { http.Redirect(w, r, "/b", http.StatusMovedPermanently) })
	mux.HandleFunc("/b", func(w http.ResponseWriter, r *http.Request) { http.Redirect(w, r, "/c", http.StatusFound) })
	mux.HandleFunc("/c", func(w http.ResponseWriter, r *http.Request) { _, _ = io.WriteString(w, "landed") })
	ts := httptest.NewServer(mux)
	defer ts.Close()

	client := newClient(t, webclient.Config{MaxRedirects: 10}, ts.Client())
	resp, err := client.Do(context.Background(), &webclient.Request{URL: ts.URL + "/a"})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if resp.FinalURL != ts.URL+"/c" {
		t.Errorf("expected final URL /c, got %q", resp.FinalURL)
	}
	if len(resp.Redirects) != 2 {
		t.Fatalf("expected 2 redirects, got %d (%+v)", len(resp.Redirects), resp.Redirects)
	}
	if resp.Redirects[0].StatusCode != http.StatusMovedPermanently || resp.Redirects[1].StatusCode != http.StatusFound {
		t.Errorf("unexpected redirect statuses: %+v", resp.Redirects)
	}
}

func TestNetHTTPClient_Do_StopsAtMaxRedirects(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, r.URL.Path+"x", http.StatusFound)
	}))
	defer ts.Close()

	client := newClient(t, webclient.Config{MaxRedirects: 2}, ts.Client())
	resp, err := client.Do(context.Background(), &webclient.Request{URL: ts.URL + "/"})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if resp.StatusCode != http.StatusFound {
		t.Errorf("expected last redirect response, got %d", resp.StatusCode)
	}
	if len(resp.Redirects) != 2 {
		t.Errorf("expected 2 recorded hops, got %d", len(resp.Redirects))
	}
}

func TestNetHTTPClient_Do_PropagatesStatusCode(t *testing.T) {
	t.Parallel()
	codes := []int{http.StatusNotFound, http.StatusInternalServerError, http.StatusForbidden}
	for _, code := range codes {
		code := code
		t.Run(http.StatusText(code), func(t *testing.T) {
			t.Parallel()
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(code)
			}))
			defer ts.Close()

			client := newClient(t, webclient.Config{}, ts.Client())
			resp, err := client.Do(context.Background(), &webclient.Request{URL: ts.URL})
			if err != nil {
				t.Fatalf("Do: %v", err)
			}
			if resp.StatusCode != code {
				t.Errorf("expected %d, got %d", code, resp.StatusCode)
			}
		})
	}
}

func TestNetHTTPClient_Do_NilRequest_ReturnsError(t *testing.T) {
	t.Parallel()
	client := newClient(t, webclient.Config{}, nil)
	_, err := client.Do(context.Background(), nil)
	if !errors.Is(err, webclient.ErrNilRequest) {
		t.Errorf("expected ErrNilRequest, got %v", err)
	}
}

func TestNetHTTPClient_Do_ConnectionRefused_ReturnsError(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	addr := ts.URL
	ts.Close()

	client := newClient(t, webclient.Config{Timeout: 2 * time.Second}, nil)
	if _, err := client.Do(context.Background(), &webclient.Request{URL: addr}); err == nil {
		t.Error("expected error for closed server")
	}
}

func TestNetHTTPClient_Do_ContextCanceled_ReturnsError(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(5 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer ts.Close()

	client := newClient(t, webclient.Config{}, ts.Client())
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Do(ctx, &webclient.Request{URL: ts.URL})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestNetHTTPClient_Do_TruncatesLargeBody(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, strings.Repeat("a", 4096))
	}))
	defer ts.Close()

	client := newClient(t, webclient.Config{MaxBodyBytes: 1024}, ts.Client())
	resp, err := client.Do(context.Background(), &webclient.Request{URL: ts.URL})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if len(resp.Body) != 1024 || !resp.Truncated {
		t.Errorf("expected 1024 truncated bytes, got %d (truncated=%v)", len(resp.Body), resp.Truncated)
	}
}

func TestNetHTTPClient_Do_RetriesServerErrors(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = io.WriteString(w, "ok")
	}))
	defer ts.Close()

	client := newClient(t, webclient.Config{Retries: 2}, ts.Client())
	resp, err := client.Do(context.Background(), &webclient.Request{URL: ts.URL})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if resp.StatusCode != http.StatusOK || calls.Load() != 2 {
		t.Errorf("expected success on second attempt, got status %d after %d calls", resp.StatusCode, calls.Load())
	}
}

func TestNetHTTPClient_InsecureTLS(t *testing.T) {
	t.Parallel()
	ts := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "self-signed")
	}))
	defer ts.Close()

	client := newClient(t, webclient.Config{InsecureSkipVerify: true, Timeout: 5 * time.Second}, nil)
	resp, err := client.Do(context.Background(), &webclient.Request{URL: ts.URL})
	if err != nil {
		t.Fatalf("expected self-signed certificate to be accepted: %v", err)
	}
	if string(resp.Body) != "self-signed" {
		t.Errorf("unexpected body %q", resp.Body)
	}
}
