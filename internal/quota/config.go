package quota

import (
	"database/sql"
	"time"

	"github.com/raysh454/judolhunter/internal/logging"
)

type Config struct {
	// Enabled turns on the weekly domain limits. The CLI runs with it off.
	Enabled bool

	// DefaultPlan is assigned to actors that have no plan row.
	DefaultPlan string

	// RateEvery and RateBurst configure the per-actor token bucket on
	// submissions. A zero RateEvery disables it.
	RateEvery time.Duration
	RateBurst int
}

func DefaultConfig() Config {
	return Config{
		Enabled:     true,
		DefaultPlan: PlanAnonymous,
		RateEvery:   2 * time.Second,
		RateBurst:   10,
	}
}

// Limits are the gates a scan engine consults.
type Limits struct {
	// Submissions is checked once per submission with an empty domain,
	// before any URL of it is scanned.
	Submissions Gate

	// Domains is checked before every scanned URL, crawled pages included.
	Domains Gate

	// Weekly backs Domains and resolves plans. Nil when limits are disabled.
	Weekly *SQLiteGate
}

// Unlimited allows everything.
func Unlimited() Limits {
	return Limits{Submissions: AllowAll{}, Domains: AllowAll{}}
}

// Build assembles the limits described by cfg.
func Build(cfg Config, db *sql.DB, logger logging.Logger) (Limits, error) {
	if !cfg.Enabled {
		return Unlimited(), nil
	}
	weekly, err := NewSQLiteGate(db, logger)
	if err != nil {
		return Limits{}, err
	}
	if cfg.DefaultPlan != "" && KnownPlan(cfg.DefaultPlan) {
		weekly.DefaultPlan = cfg.DefaultPlan
	}
	l := Limits{Submissions: AllowAll{}, Domains: weekly, Weekly: weekly}
	if cfg.RateEvery > 0 {
		l.Submissions = NewRateGate(cfg.RateEvery, cfg.RateBurst)
	}
	return l, nil
}
