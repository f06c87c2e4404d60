package webclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/raysh454/judolhunter/internal/logging"
	"github.com/raysh454/judolhunter/internal/model"
)

var ErrNilRequest = errors.New("nil request")

// net/http backed implementation of webclient.
type NetHTTPClient struct {
	client       *http.Client
	maxBodyBytes int64
	logger       logging.Logger
}

type redirectLogKey struct{}

// NewNetHTTPClient builds a client from cfg. When httpClient is non-nil it is
// used as the base (tests pass httptest clients); redirect recording is
// installed on a copy so the caller's client is not modified.
func NewNetHTTPClient(cfg Config, logger logging.Logger, httpClient *http.Client) (*NetHTTPClient, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	componentLogger := logger.With(logging.Field{Key: "backend", Value: string(ClientNetHTTP)})

	var c http.Client
	if httpClient != nil {
		c = *httpClient
	} else {
		c = http.Client{
			Timeout:   cfg.Timeout,
			Transport: newTransport(cfg),
		}
	}
	if cfg.Retries > 0 {
		base := c.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		c.Transport = &retryRoundTripper{base: base, retries: cfg.Retries}
	}
	c.CheckRedirect = checkRedirect(cfg.MaxRedirects)

	componentLogger.Debug("created nethttp webclient",
		logging.Field{Key: "timeout", Value: c.Timeout.String()},
		logging.Field{Key: "insecure", Value: cfg.InsecureSkipVerify})

	return &NetHTTPClient{
		client:       &c,
		maxBodyBytes: cfg.MaxBodyBytes,
		logger:       componentLogger,
	}, nil
}

func newTransport(cfg Config) *http.Transport {
	dialTimeout := cfg.Timeout
	if dialTimeout <= 0 {
		dialTimeout = 15 * time.Second
	}
	return &http.Transport{
		Proxy:           http.ProxyFromEnvironment,
		TLSClientConfig: &tls.Config{InsecureSkipVerify: cfg.InsecureSkipVerify}, //nolint:gosec
		DialContext: (&net.Dialer{
			Timeout:   dialTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   dialTimeout,
		ResponseHeaderTimeout: dialTimeout,
		MaxIdleConnsPerHost:   4,
		IdleConnTimeout:       90 * time.Second,
		ForceAttemptHTTP2:     true,
	}
}

// checkRedirect records every hop into the slice carried by the request
// context and stops following after max hops, returning the last redirect
// response instead of an error.
func checkRedirect(max int) func(*http.Request, []*http.Request) error {
	return func(req *http.Request, via []*http.Request) error {
		if max > 0 && len(via) > max {
			return http.ErrUseLastResponse
		}
		if hops, ok := req.Context().Value(redirectLogKey{}).(*[]model.Redirect); ok && len(via) > 0 {
			status := 0
			if req.Response != nil {
				status = req.Response.StatusCode
			}
			*hops = append(*hops, model.Redirect{
				From:       via[len(via)-1].URL.String(),
				To:         req.URL.String(),
				StatusCode: status,
			})
		}
		return nil
	}
}

// Do implements the generic request execution using net/http.
func (nhc *NetHTTPClient) Do(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, ErrNilRequest
	}

	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}

	nhc.logger.Debug("sending http request",
		logging.Field{Key: "method", Value: method},
		logging.Field{Key: "url", Value: req.URL})

	var bodyReader io.Reader
	if len(req.Body) > 0 {
		bodyReader = bytes.NewReader(req.Body)
	}

	var hops []model.Redirect
	ctx = context.WithValue(ctx, redirectLogKey{}, &hops)

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	for k, vs := range req.Headers {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}

	resp, err := nhc.client.Do(httpReq)
	if err != nil {
		nhc.logger.Debug("http request failed",
			logging.Field{Key: "method", Value: method},
			logging.Field{Key: "url", Value: req.URL},
			logging.Field{Key: "error", Value: err.Error()})
		return nil, fmt.Errorf("http do: %w", err)
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if nhc.maxBodyBytes > 0 {
		reader = io.LimitReader(resp.Body, nhc.maxBodyBytes+1)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		nhc.logger.Warn("failed to read response body",
			logging.Field{Key: "url", Value: req.URL},
			logging.Field{Key: "error", Value: err.Error()})
		return nil, fmt.Errorf("read body: %w", err)
	}
	truncated := false
	if nhc.maxBodyBytes > 0 && int64(len(body)) > nhc.maxBodyBytes {
		body = body[:nhc.maxBodyBytes]
		truncated = true
	}

	return &Response{
		Request:    req,
		FinalURL:   resp.Request.URL.String(),
		Redirects:  hops,
		Body:       body,
		Headers:    resp.Header,
		StatusCode: resp.StatusCode,
		Truncated:  truncated,
		FetchedAt:  time.Now(),
	}, nil
}

// Get is a convenience method for simple GET requests
func (nhc *NetHTTPClient) Get(ctx context.Context, url string) (*Response, error) {
	return nhc.Do(ctx, &Request{Method: http.MethodGet, URL: url})
}

func (nhc *NetHTTPClient) Close() error {
	nhc.client.CloseIdleConnections()
	return nil
}

// HTTPClient returns the underlying *http.Client
func (nhc *NetHTTPClient) HTTPClient() *http.Client {
	return nhc.client
}

// retryRoundTripper re-sends a request after transport errors or 5xx
// responses with exponential backoff.
type retryRoundTripper struct {
	base    http.RoundTripper
	retries int
}

func (r *retryRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	var (
		resp *http.Response
		err  error
	)
	for attempt := 0; ; attempt++ {
		attemptReq := req.Clone(req.Context())
		if req.Body != nil && req.GetBody != nil {
			if body, berr := req.GetBody(); berr == nil {
				attemptReq.Body = body
			}
		}

		resp, err = r.base.RoundTrip(attemptReq)
		if err == nil && resp.StatusCode < 500 {
			return resp, nil
		}
		if attempt >= r.retries || req.Context().Err() != nil {
			return resp, err
		}
		if resp != nil {
			_ = resp.Body.Close()
		}

		select {
		case <-time.After(time.Duration(100*(1<<attempt)) * time.Millisecond):
		case <-req.Context().Done():
			return nil, req.Context().Err()
		}
	}
}
