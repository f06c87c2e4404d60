// Package patterns loads the keyword and domain lists every detector matches
// against. A Database is read-only once built and is shared by all scans.
package patterns

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

//go:embed patterns.json
var defaultPatterns []byte

var ErrNoKeywords = errors.New("pattern source has no gambling keywords")

type source struct {
	Version              string   `json:"version"`
	GamblingKeywords     []string `json:"gambling_keywords"`
	SuspiciousURLPattern []string `json:"suspicious_url_patterns"`
	KnownGamblingDomains []string `json:"known_gambling_domains"`
}

// Database holds the lowercased pattern lists.
type Database struct {
	version      string
	keywords     []string
	urlFragments []string
	knownDomains []string
}

// Default returns the database compiled into the binary.
func Default() (*Database, error) {
	return Parse(defaultPatterns)
}

// MustDefault is Default for tests and init paths where the embedded file is
// known to be valid.
func MustDefault() *Database {
	db, err := Default()
	if err != nil {
		panic(err)
	}
	return db
}

// Load reads a pattern file. An empty path loads the embedded defaults.
func Load(path string) (*Database, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read patterns %s: %w", path, err)
	}
	return Parse(data)
}

// Parse builds a Database from JSON.
func Parse(data []byte) (*Database, error) {
	var src source
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(data, &src); err != nil {
		return nil, fmt.Errorf("decode patterns: %w", err)
	}
	db := &Database{
		version:      src.Version,
		keywords:     normalizeList(src.GamblingKeywords),
		urlFragments: normalizeList(src.SuspiciousURLPattern),
		knownDomains: normalizeList(src.KnownGamblingDomains),
	}
	if len(db.keywords) == 0 {
		return nil, ErrNoKeywords
	}
	return db, nil
}

func normalizeList(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func (d *Database) Version() string { return d.version }

// Keywords returns the gambling keywords in file order. Callers must not
// modify the returned slice.
func (d *Database) Keywords() []string { return d.keywords }

func (d *Database) URLFragments() []string { return d.urlFragments }

func (d *Database) KnownDomains() []string { return d.knownDomains }

// ContainsKeyword reports the first keyword found in text, case-insensitively.
func (d *Database) ContainsKeyword(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, kw := range d.keywords {
		if strings.Contains(lower, kw) {
			return kw, true
		}
	}
	return "", false
}
