package app

import (
	"fmt"
	"time"

	"github.com/mitchellh/go-homedir"

	"github.com/raysh454/judolhunter/internal/fetcher"
	"github.com/raysh454/judolhunter/internal/quota"
	"github.com/raysh454/judolhunter/internal/webclient"
)

// CrawlConfig bounds crawl mode.
type CrawlConfig struct {
	// MaxDepth is how many discovery hops are followed from the root URL.
	MaxDepth int

	// MaxPages caps how many discovered pages one crawl scans. The root
	// URL is not counted.
	MaxPages int

	// Workers is the size of the worker pool scanning discovered pages.
	Workers int

	// Budget is the wall-clock time after which no new discovered pages are
	// started. Scans already running are allowed to finish. Zero disables it.
	Budget time.Duration

	// LinksPerPage caps how many discovered URLs one page may contribute.
	LinksPerPage int
}

// Config groups the settings of every component the orchestrator wires.
type Config struct {
	Fetcher   fetcher.Config
	WebClient webclient.Config
	Crawl     CrawlConfig
	Quota     quota.Config

	// MaxConcurrency bounds how many URL scans run at once across all
	// submissions.
	MaxConcurrency int

	// StorageRoot is where the scan history and quota database live.
	StorageRoot string

	// PatternsPath overrides the embedded pattern database when set.
	PatternsPath string
}

// DefaultConfig returns the settings used by `judolhunter serve`.
func DefaultConfig() *Config {
	return &Config{
		Fetcher:   fetcher.DefaultConfig(),
		WebClient: webclient.DefaultConfig(),
		Crawl: CrawlConfig{
			MaxDepth:     2,
			MaxPages:     25,
			Workers:      4,
			Budget:       2 * time.Minute,
			LinksPerPage: 20,
		},
		Quota:          quota.DefaultConfig(),
		MaxConcurrency: 8,
		StorageRoot:    "~/.config/judolhunter",
	}
}

// ResolvedStorageRoot expands a leading ~ in StorageRoot.
func (c *Config) ResolvedStorageRoot() (string, error) {
	root, err := homedir.Expand(c.StorageRoot)
	if err != nil {
		return "", fmt.Errorf("expanding storage root %q: %w", c.StorageRoot, err)
	}
	return root, nil
}

func (c *Config) normalize() {
	if c.MaxConcurrency < 1 {
		c.MaxConcurrency = 1
	}
	if c.Crawl.Workers < 1 {
		c.Crawl.Workers = 1
	}
	if c.Crawl.MaxPages < 1 {
		c.Crawl.MaxPages = 1
	}
	if c.Crawl.MaxDepth < 0 {
		c.Crawl.MaxDepth = 0
	}
}
