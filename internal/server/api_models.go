package server

import (
	"github.com/raysh454/judolhunter/internal/app"
	"github.com/raysh454/judolhunter/internal/model"
	"github.com/raysh454/judolhunter/internal/quota"
)

// CreateScanRequest starts scans for one or more URLs. URL and URLs may be
// combined.
type CreateScanRequest struct {
	URL   string   `json:"url,omitempty" example:"contoh-desa.id"`
	URLs  []string `json:"urls,omitempty" example:"[\"https://contoh-desa.id/\",\"sekolah.sch.id\"]"`
	Crawl bool     `json:"crawl" example:"false"`
}

// CreateScanResponse lists the started scans and any rejected URLs.
type CreateScanResponse struct {
	Scans []app.Handle `json:"scans"`
}

// ScanResponse is a scan's current state together with its result once the
// scan has finished.
type ScanResponse struct {
	ScanID   string            `json:"scan_id" example:"3f1c2a9e-6d8b-4f7a-9a51-0c4b7f0e2d11"`
	ParentID string            `json:"parent_id,omitempty"`
	URL      string            `json:"url" example:"https://contoh-desa.id/"`
	State    model.ScanState   `json:"state" example:"DETECTING"`
	Result   *model.ScanResult `json:"result,omitempty"`
}

// EventsResponse is the part of a scan's progress log after a sequence number.
type EventsResponse struct {
	ScanID string                `json:"scan_id"`
	Events []model.ProgressEvent `json:"events"`
	Done   bool                  `json:"done"`
}

// QuotaResponse describes the caller's plan and weekly domain usage.
type QuotaResponse struct {
	Plan  quota.Plan    `json:"plan"`
	Week  string        `json:"week" example:"2025-03-03"`
	Usage []quota.Usage `json:"usage"`
}

// HealthResponse reports liveness and the loaded pattern database.
type HealthResponse struct {
	Status          string `json:"status" example:"ok"`
	PatternsVersion string `json:"patterns_version" example:"2025.1"`
}

// ErrorResponse is a uniform error payload returned by the API.
type ErrorResponse struct {
	Error string `json:"error" example:"scan not found"`
}
