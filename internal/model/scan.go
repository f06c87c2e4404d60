package model

import "time"

type ScanStatus string

const (
	StatusClean      ScanStatus = "clean"
	StatusSuspicious ScanStatus = "suspicious"
	StatusInfected   ScanStatus = "infected"
	StatusError      ScanStatus = "error"
	StatusCancelled  ScanStatus = "cancelled"
)

type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// ScanState is the lifecycle position of one URL scan.
type ScanState string

const (
	StatePending     ScanState = "PENDING"
	StateFetching    ScanState = "FETCHING"
	StateExtracting  ScanState = "EXTRACTING"
	StateDetecting   ScanState = "DETECTING"
	StateClassified  ScanState = "CLASSIFIED"
	StateDiscovering ScanState = "DISCOVERING"
	StateDone        ScanState = "DONE"
	StateError       ScanState = "ERROR"
)

// Terminal reports whether no further transitions are possible.
func (s ScanState) Terminal() bool {
	return s == StateDone || s == StateError
}

// CrawledPage summarises a page scanned because crawl mode discovered it.
type CrawledPage struct {
	ScanID    string     `json:"scan_id"`
	URL       string     `json:"url"`
	Depth     int        `json:"depth"`
	Status    ScanStatus `json:"status"`
	RiskLevel RiskLevel  `json:"risk_level"`
}

// ScanResult is the final report for one URL. It is built by the orchestrator
// and not modified after the scan reaches a terminal state.
type ScanResult struct {
	ScanID         string        `json:"scan_id"`
	ParentID       string        `json:"parent_id,omitempty"`
	URL            string        `json:"url"`
	Depth          int           `json:"depth"`
	Status         ScanStatus    `json:"status"`
	RiskLevel      RiskLevel     `json:"risk_level"`
	Findings       Findings      `json:"findings"`
	FetchInfo      FetchInfo     `json:"fetch_info"`
	DiscoveredURLs []string      `json:"discovered_urls,omitempty"`
	Crawled        []CrawledPage `json:"crawled,omitempty"`
	Issues         []string      `json:"issues,omitempty"`
	ErrorKind      ErrorKind     `json:"error_kind,omitempty"`
	Error          string        `json:"error,omitempty"`
	StartedAt      time.Time     `json:"started_at"`
	FinishedAt     time.Time     `json:"finished_at"`
	DurationMS     float64       `json:"duration_ms"`
}
