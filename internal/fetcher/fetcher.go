package fetcher

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/raysh454/judolhunter/internal/logging"
	"github.com/raysh454/judolhunter/internal/model"
	"github.com/raysh454/judolhunter/internal/webclient"
)

var ErrNilWebClient = errors.New("fetcher: webclient is nil")

// Module: fetcher
// Requests one URL as a search engine crawler and as a regular browser.
type Fetcher struct {
	cfg    Config
	wc     webclient.WebClient
	logger logging.Logger
}

// New creates a new Fetcher with the given webclient and logger.
func New(cfg Config, wc webclient.WebClient, logger logging.Logger) (*Fetcher, error) {
	if wc == nil {
		return nil, ErrNilWebClient
	}
	if logger == nil {
		logger = logging.Discard()
	}
	def := DefaultConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.CrawlerUserAgent == "" {
		cfg.CrawlerUserAgent = def.CrawlerUserAgent
	}
	if cfg.BrowserUserAgent == "" {
		cfg.BrowserUserAgent = def.BrowserUserAgent
	}
	return &Fetcher{
		cfg:    cfg,
		wc:     wc,
		logger: logger.With(logging.Field{Key: "component", Value: "fetcher"}),
	}, nil
}

// FetchDual requests target under both identities concurrently. Both calls
// share one deadline of cfg.Timeout. Failures never abort the other side;
// they are reported on the returned FetchResult with StatusCode -1.
func (f *Fetcher) FetchDual(ctx context.Context, target string) (crawler, browser model.FetchResult) {
	ctx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	var g errgroup.Group
	g.Go(func() error {
		crawler = f.FetchAs(ctx, model.IdentityCrawler, target)
		return nil
	})
	g.Go(func() error {
		browser = f.FetchAs(ctx, model.IdentityBrowser, target)
		return nil
	})
	_ = g.Wait()

	return crawler, browser
}

// FetchAs performs a single GET under identity.
func (f *Fetcher) FetchAs(ctx context.Context, identity model.Identity, target string) model.FetchResult {
	ua := f.cfg.BrowserUserAgent
	if identity == model.IdentityCrawler {
		ua = f.cfg.CrawlerUserAgent
	}
	start := time.Now()
	resp, err := f.wc.Do(ctx, webclient.PageRequest(target, ua, f.cfg.AcceptLanguage))
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0

	if err != nil {
		fe := ClassifyError(err)
		f.logger.Info("fetch failed",
			logging.Field{Key: "identity", Value: string(identity)},
			logging.Field{Key: "url", Value: target},
			logging.Field{Key: "kind", Value: fe.Kind},
			logging.Field{Key: "error", Value: err.Error()})
		return model.FetchResult{
			Identity:   identity,
			URL:        target,
			StatusCode: model.StatusNetworkFailure,
			Headers:    http.Header{},
			ElapsedMS:  elapsed,
			FetchedAt:  time.Now().UTC(),
			Err:        fe,
		}
	}

	f.logger.Debug("fetched",
		logging.Field{Key: "identity", Value: string(identity)},
		logging.Field{Key: "url", Value: target},
		logging.Field{Key: "status", Value: resp.StatusCode},
		logging.Field{Key: "bytes", Value: len(resp.Body)})

	headers := resp.Headers
	if headers == nil {
		headers = http.Header{}
	}
	finalURL := resp.FinalURL
	if finalURL == "" {
		finalURL = target
	}
	return model.FetchResult{
		Identity:   identity,
		URL:        target,
		FinalURL:   finalURL,
		StatusCode: resp.StatusCode,
		Headers:    headers,
		Body:       resp.Body,
		ElapsedMS:  elapsed,
		FetchedAt:  resp.FetchedAt,
		Redirects:  resp.Redirects,
	}
}

// ClassifyError maps a transport error onto a FetchError kind.
func ClassifyError(err error) *model.FetchError {
	kind := model.FetchErrNetwork

	var (
		dnsErr      *net.DNSError
		unknownAuth x509.UnknownAuthorityError
		hostErr     x509.HostnameError
		certErr     x509.CertificateInvalidError
		recordErr   tls.RecordHeaderError
		alertErr    tls.AlertError
		opErr       *net.OpError
		netErr      net.Error
	)

	switch {
	case errors.Is(err, context.Canceled):
		kind = model.FetchErrCancelled
	case errors.Is(err, context.DeadlineExceeded):
		kind = model.FetchErrTimeout
	case errors.As(err, &dnsErr):
		kind = model.FetchErrDNS
	case errors.As(err, &unknownAuth), errors.As(err, &hostErr), errors.As(err, &certErr),
		errors.As(err, &recordErr), errors.As(err, &alertErr):
		kind = model.FetchErrTLS
	case errors.As(err, &netErr) && netErr.Timeout():
		kind = model.FetchErrTimeout
	case errors.As(err, &opErr) && opErr.Op == "dial":
		kind = model.FetchErrConnect
	}

	return &model.FetchError{Kind: kind, Message: fmt.Sprint(err)}
}
