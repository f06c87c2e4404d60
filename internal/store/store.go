// Package store keeps finished scan results in SQLite so they can be listed
// and fetched after the in-memory progress logs are gone.
package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	_ "modernc.org/sqlite"

	"github.com/raysh454/judolhunter/internal/logging"
	"github.com/raysh454/judolhunter/internal/model"
	"github.com/raysh454/judolhunter/internal/utils"
)

//go:embed schema.sql
var schemaFS embed.FS

var ErrNotFound = errors.New("scan not found")

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Summary is the listing view of a stored scan.
type Summary struct {
	ID         string           `json:"scan_id"`
	ParentID   string           `json:"parent_id,omitempty"`
	URL        string           `json:"url"`
	Domain     string           `json:"domain"`
	Status     model.ScanStatus `json:"status"`
	RiskLevel  model.RiskLevel  `json:"risk_level"`
	Issues     int              `json:"issues"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
}

// Store persists scan results per actor.
type Store struct {
	db     *sql.DB
	logger logging.Logger
}

// Open opens (or creates) the SQLite database at path and runs the schema.
func Open(path string, logger logging.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`PRAGMA journal_mode = WAL; PRAGMA busy_timeout = 5000;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pragmas: %w", err)
	}
	return New(db, logger)
}

// New runs the schema on db and returns a Store.
func New(db *sql.DB, logger logging.Logger) (*Store, error) {
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
		return nil, fmt.Errorf("failed to execute schema: %w", err)
	}
	return &Store{db: db, logger: logger.With(logging.Field{Key: "component", Value: "store"})}, nil
}

// DB exposes the handle so other components can share the database file.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Close() error { return s.db.Close() }

// Save inserts or replaces a result.
func (s *Store) Save(ctx context.Context, actor string, res *model.ScanResult) error {
	if res == nil || res.ScanID == "" {
		return fmt.Errorf("save: result has no scan id")
	}
	blob, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO scans(id, parent_id, actor, url, domain, status, risk_level, issues, started_at, finished_at, result)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		  status = excluded.status, risk_level = excluded.risk_level, issues = excluded.issues,
		  finished_at = excluded.finished_at, result = excluded.result
	`, res.ScanID, nullable(res.ParentID), actor, res.URL, utils.QuotaDomain(res.URL),
		string(res.Status), string(res.RiskLevel), len(res.Issues),
		res.StartedAt.UnixMilli(), res.FinishedAt.UnixMilli(), string(blob))
	if err != nil {
		return fmt.Errorf("insert scan: %w", err)
	}
	s.logger.Debug("scan saved",
		logging.Field{Key: "scan_id", Value: res.ScanID},
		logging.Field{Key: "status", Value: string(res.Status)})
	return nil
}

// Get returns a stored result. When actor is non-empty the scan must belong
// to it.
func (s *Store) Get(ctx context.Context, actor, id string) (*model.ScanResult, error) {
	q := `SELECT result FROM scans WHERE id = ?`
	args := []any{id}
	if actor != "" {
		q += ` AND actor = ?`
		args = append(args, actor)
	}
	var blob string
	if err := s.db.QueryRowContext(ctx, q, args...).Scan(&blob); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query scan: %w", err)
	}
	var res model.ScanResult
	if err := json.UnmarshalFromString(blob, &res); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	return &res, nil
}

// List returns the actor's top-level scans, newest first.
func (s *Store) List(ctx context.Context, actor string, limit, offset int) ([]Summary, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, COALESCE(parent_id, ''), url, domain, status, risk_level, issues, started_at, finished_at
		FROM scans WHERE actor = ? AND parent_id IS NULL
		ORDER BY started_at DESC, id
		LIMIT ? OFFSET ?
	`, actor, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list scans: %w", err)
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var sm Summary
		var status, risk string
		var started, finished int64
		if err := rows.Scan(&sm.ID, &sm.ParentID, &sm.URL, &sm.Domain, &status, &risk, &sm.Issues, &started, &finished); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		sm.Status = model.ScanStatus(status)
		sm.RiskLevel = model.RiskLevel(risk)
		sm.StartedAt = time.UnixMilli(started).UTC()
		sm.FinishedAt = time.UnixMilli(finished).UTC()
		out = append(out, sm)
	}
	return out, rows.Err()
}

// Delete removes a scan and the pages crawled under it.
func (s *Store) Delete(ctx context.Context, actor, id string) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil && rerr != sql.ErrTxDone {
				s.logger.Warn("tx rollback failed", logging.Field{Key: "error", Value: rerr.Error()})
			}
		}
	}()

	res, err := tx.ExecContext(ctx, `DELETE FROM scans WHERE id = ? AND actor = ?`, id, actor)
	if err != nil {
		return fmt.Errorf("delete scan: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		err = ErrNotFound
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM scans WHERE parent_id = ? AND actor = ?`, id, actor); err != nil {
		return fmt.Errorf("delete children: %w", err)
	}
	return tx.Commit()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
