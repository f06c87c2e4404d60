package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mitchellh/go-homedir"

	"github.com/raysh454/judolhunter/internal/detector"
	"github.com/raysh454/judolhunter/internal/extractor"
	"github.com/raysh454/judolhunter/internal/fetcher"
	"github.com/raysh454/judolhunter/internal/logging"
	"github.com/raysh454/judolhunter/internal/model"
	"github.com/raysh454/judolhunter/internal/patterns"
	"github.com/raysh454/judolhunter/internal/progress"
	"github.com/raysh454/judolhunter/internal/quota"
	"github.com/raysh454/judolhunter/internal/store"
	"github.com/raysh454/judolhunter/internal/webclient"
)

// DatabaseFile is the name of the SQLite file under the storage root.
const DatabaseFile = "judolhunter.db"

// AppOptions selects how much of the stack NewApplication builds.
type AppOptions struct {
	// Persist opens the scan history and quota database under the storage
	// root. Without it scans live in memory only and quotas are not enforced.
	Persist bool

	// Sink receives progress events in addition to the in-memory hub.
	Sink progress.Sink
}

// Application is the global runtime state container. It owns every shared
// component and closes them in Shutdown.
type Application struct {
	Config   *Config
	Logger   logging.Logger
	Orch     *Orchestrator
	Progress *progress.Hub
	Patterns *patterns.Database

	// Store and Quota are nil unless AppOptions.Persist was set.
	Store *store.Store
	Quota *quota.SQLiteGate

	webClient webclient.WebClient
}

// NewApplication builds the scan engine and its collaborators from cfg.
func NewApplication(cfg *Config, logger logging.Logger, opts AppOptions) (*Application, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = logging.Discard()
	}

	db, err := loadPatterns(cfg.PatternsPath)
	if err != nil {
		return nil, err
	}

	wc, err := webclient.NewWebClient(cfg.WebClient, logger)
	if err != nil {
		return nil, fmt.Errorf("new webclient: %w", err)
	}
	f, err := fetcher.New(cfg.Fetcher, wc, logger)
	if err != nil {
		_ = wc.Close()
		return nil, fmt.Errorf("new fetcher: %w", err)
	}

	a := &Application{
		Config:    cfg,
		Logger:    logger,
		Progress:  progress.NewHub(),
		Patterns:  db,
		webClient: wc,
	}

	orchOpts := Options{
		Fetcher:   f,
		Extractor: extractor.New(logger),
		Detectors: detector.NewSuite(db),
		Sink:      progress.MultiSink{a.Progress, progress.LogSink{Logger: logger}, opts.Sink},
		Gate:      quota.AllowAll{},
		Logger:    logger,
	}

	if opts.Persist {
		if err := a.openStorage(); err != nil {
			_ = wc.Close()
			return nil, err
		}
		limits, err := quota.Build(cfg.Quota, a.Store.DB(), logger)
		if err != nil {
			_ = a.Store.Close()
			_ = wc.Close()
			return nil, fmt.Errorf("quota: %w", err)
		}
		a.Quota = limits.Weekly
		orchOpts.Gate = limits.Domains
		orchOpts.Admission = limits.Submissions
		if limits.Weekly != nil {
			orchOpts.Plans = limits.Weekly
		}
		orchOpts.OnFinish = a.persist
	}

	orch, err := NewOrchestrator(cfg, orchOpts)
	if err != nil {
		_ = a.closeResources()
		return nil, err
	}
	a.Orch = orch

	logger.Info("application ready",
		logging.Field{Key: "patterns_version", Value: db.Version()},
		logging.Field{Key: "keywords", Value: len(db.Keywords())},
		logging.Field{Key: "persist", Value: opts.Persist})
	return a, nil
}

func loadPatterns(path string) (*patterns.Database, error) {
	if path == "" {
		return patterns.Default()
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("expanding patterns path %q: %w", path, err)
	}
	db, err := patterns.Load(expanded)
	if err != nil {
		return nil, fmt.Errorf("loading patterns: %w", err)
	}
	return db, nil
}

func (a *Application) openStorage() error {
	root, err := a.Config.ResolvedStorageRoot()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("creating storage root %s: %w", root, err)
	}
	st, err := store.Open(filepath.Join(root, DatabaseFile), a.Logger)
	if err != nil {
		return fmt.Errorf("opening scan store: %w", err)
	}
	a.Store = st
	return nil
}

// persist saves a finished scan. Failures are logged; the result stays
// available from the orchestrator either way.
func (a *Application) persist(actor string, res *model.ScanResult) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.Store.Save(ctx, actor, res); err != nil {
		a.Logger.Error("saving scan result",
			logging.Field{Key: "scan_id", Value: res.ScanID},
			logging.Field{Key: "error", Value: err.Error()})
	}
}

// Shutdown stops running scans, bounded by ctx, then releases resources.
func (a *Application) Shutdown(ctx context.Context) error {
	if a == nil {
		return errors.New("application is nil")
	}
	a.Logger.Info("application shutdown initiated")

	if a.Orch != nil {
		done := make(chan struct{})
		go func() {
			a.Orch.Close()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			a.Logger.Warn("scans still running at shutdown deadline")
		}
	}
	return a.closeResources()
}

func (a *Application) closeResources() error {
	var firstErr error
	if a.webClient != nil {
		if err := a.webClient.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close webclient: %w", err)
		}
	}
	if a.Store != nil {
		if err := a.Store.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close store: %w", err)
		}
	}
	return firstErr
}
