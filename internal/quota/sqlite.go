package quota

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/raysh454/judolhunter/internal/logging"
)

//go:embed schema.sql
var schemaFS embed.FS

// Usage is one domain an actor scanned in a week.
type Usage struct {
	Domain    string    `json:"domain"`
	ScanCount int       `json:"scan_count"`
	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
}

// SQLiteGate enforces weekly distinct-domain limits per actor and records
// usage in SQLite. Actors without an assigned plan get DefaultPlan.
type SQLiteGate struct {
	db          *sql.DB
	logger      logging.Logger
	DefaultPlan string
	now         func() time.Time
}

// NewSQLiteGate runs the quota schema on db.
func NewSQLiteGate(db *sql.DB, logger logging.Logger) (*SQLiteGate, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	if logger == nil {
		logger = logging.Discard()
	}
	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return nil, fmt.Errorf("failed to read schema.sql: %w", err)
	}
	if _, err := db.Exec(string(schemaSQL)); err != nil {
		return nil, fmt.Errorf("failed to execute quota schema: %w", err)
	}
	return &SQLiteGate{
		db:          db,
		logger:      logger.With(logging.Field{Key: "component", Value: "quota"}),
		DefaultPlan: PlanAnonymous,
		now:         time.Now,
	}, nil
}

// WeekStart returns the Monday (UTC) of the week containing t as YYYY-MM-DD.
func WeekStart(t time.Time) string {
	t = t.UTC()
	offset := (int(t.Weekday()) + 6) % 7
	monday := time.Date(t.Year(), t.Month(), t.Day()-offset, 0, 0, 0, 0, time.UTC)
	return monday.Format("2006-01-02")
}

// SetPlan assigns a plan to an actor.
func (g *SQLiteGate) SetPlan(ctx context.Context, actor, plan string) error {
	if !KnownPlan(plan) {
		return fmt.Errorf("unknown plan %q", plan)
	}
	_, err := g.db.ExecContext(ctx, `
		INSERT INTO actor_plans(actor, plan, updated_at) VALUES(?, ?, ?)
		ON CONFLICT(actor) DO UPDATE SET plan = excluded.plan, updated_at = excluded.updated_at
	`, actor, strings.ToLower(plan), g.now().Unix())
	if err != nil {
		return fmt.Errorf("set plan: %w", err)
	}
	return nil
}

// PlanOf implements PlanSource.
func (g *SQLiteGate) PlanOf(ctx context.Context, actor string) Plan {
	var name string
	err := g.db.QueryRowContext(ctx, `SELECT plan FROM actor_plans WHERE actor = ?`, actor).Scan(&name)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			g.logger.Warn("plan lookup failed",
				logging.Field{Key: "actor", Value: actor},
				logging.Field{Key: "error", Value: err.Error()})
		}
		return PlanFor(g.DefaultPlan)
	}
	return PlanFor(name)
}

// Check allows domain when the actor already scanned it this week or still
// has room for another distinct domain, and records the scan.
func (g *SQLiteGate) Check(ctx context.Context, actor, domain string) Decision {
	domain = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(domain)), "www.")
	if actor == "" {
		return Deny("session required for quota tracking")
	}
	if domain == "" {
		return Deny("empty domain")
	}

	plan := g.PlanOf(ctx, actor)
	now := g.now()
	week := WeekStart(now)

	d, err := g.check(ctx, actor, domain, week, plan, now)
	if err != nil {
		g.logger.Error("quota check failed",
			logging.Field{Key: "actor", Value: actor},
			logging.Field{Key: "domain", Value: domain},
			logging.Field{Key: "error", Value: err.Error()})
		return Deny("quota check failed")
	}
	if !d.Allowed {
		g.logger.Info("quota denied",
			logging.Field{Key: "actor", Value: actor},
			logging.Field{Key: "domain", Value: domain},
			logging.Field{Key: "plan", Value: plan.Name})
	}
	return d
}

func (g *SQLiteGate) check(ctx context.Context, actor, domain, week string, plan Plan, now time.Time) (d Decision, err error) {
	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return Decision{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil && rerr != sql.ErrTxDone {
				g.logger.Warn("tx rollback failed", logging.Field{Key: "error", Value: rerr.Error()})
			}
		}
	}()

	res, err := tx.ExecContext(ctx, `
		UPDATE domain_usage SET scan_count = scan_count + 1, last_seen = ?
		WHERE actor = ? AND week_start = ? AND domain = ?
	`, now.Unix(), actor, week, domain)
	if err != nil {
		return Decision{}, fmt.Errorf("update usage: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return Allow(), tx.Commit()
	}

	if plan.MaxDomainsPerWeek > 0 {
		var used int
		if err = tx.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM domain_usage WHERE actor = ? AND week_start = ?
		`, actor, week).Scan(&used); err != nil {
			return Decision{}, fmt.Errorf("count usage: %w", err)
		}
		if used >= plan.MaxDomainsPerWeek {
			if err = tx.Commit(); err != nil {
				return Decision{}, fmt.Errorf("commit: %w", err)
			}
			return Deny(fmt.Sprintf("weekly domain limit reached for %q: %d of %d domains used (plan %s)",
				domain, used, plan.MaxDomainsPerWeek, plan.Name)), nil
		}
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO domain_usage(actor, week_start, domain, scan_count, first_seen, last_seen)
		VALUES(?, ?, ?, 1, ?, ?)
	`, actor, week, domain, now.Unix(), now.Unix()); err != nil {
		return Decision{}, fmt.Errorf("insert usage: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return Decision{}, fmt.Errorf("commit: %w", err)
	}
	return Allow(), nil
}

// Usage lists the domains an actor scanned in the current week.
func (g *SQLiteGate) Usage(ctx context.Context, actor string) ([]Usage, error) {
	rows, err := g.db.QueryContext(ctx, `
		SELECT domain, scan_count, first_seen, last_seen FROM domain_usage
		WHERE actor = ? AND week_start = ?
		ORDER BY first_seen, domain
	`, actor, WeekStart(g.now()))
	if err != nil {
		return nil, fmt.Errorf("query usage: %w", err)
	}
	defer rows.Close()

	var out []Usage
	for rows.Next() {
		var u Usage
		var first, last int64
		if err := rows.Scan(&u.Domain, &u.ScanCount, &first, &last); err != nil {
			return nil, fmt.Errorf("scan usage row: %w", err)
		}
		u.FirstSeen = time.Unix(first, 0).UTC()
		u.LastSeen = time.Unix(last, 0).UTC()
		out = append(out, u)
	}
	return out, rows.Err()
}
