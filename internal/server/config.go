package server

import (
	"time"

	"github.com/raysh454/judolhunter/internal/app"
	"github.com/raysh454/judolhunter/internal/logging"
)

type Config struct {
	// ListenAddr is the HTTP listen address for the API server (the CLI scan
	// command uses the orchestrator in-process and does not need it).
	ListenAddr string

	AppConfig *app.Config
	Logger    logging.Logger

	// EventRetention is how long progress logs and in-memory results of
	// finished scans are kept for polling clients. Results stay in the
	// history store after that.
	EventRetention time.Duration

	// JanitorInterval is how often expired progress logs are evicted.
	JanitorInterval time.Duration
}

func DefaultConfig() Config {
	return Config{
		ListenAddr:      ":8080",
		AppConfig:       app.DefaultConfig(),
		EventRetention:  10 * time.Minute,
		JanitorInterval: time.Minute,
	}
}
