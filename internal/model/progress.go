package model

import "time"

type EventKind string

const (
	EventStatus   EventKind = "status"
	EventProgress EventKind = "progress"
	EventComplete EventKind = "complete"
	EventError    EventKind = "error"
)

// Terminal reports whether the event closes a scan's log.
func (k EventKind) Terminal() bool {
	return k == EventComplete || k == EventError
}

// ProgressEvent is one entry of a scan's progress log. Sequence starts at 1
// and has no gaps within a scan.
type ProgressEvent struct {
	ScanID    string         `json:"scan_id"`
	Sequence  int            `json:"sequence"`
	Kind      EventKind      `json:"kind"`
	State     ScanState      `json:"state,omitempty"`
	Message   string         `json:"message"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
}
