// Package progress carries the per-scan event narrative from the
// orchestrator to whoever is watching: the in-memory Hub behind the HTTP API,
// the CLI printer and the structured log.
package progress

import (
	"sync"
	"time"

	"github.com/raysh454/judolhunter/internal/logging"
	"github.com/raysh454/judolhunter/internal/model"
)

// Sink receives progress events. Notify is called from the scan's goroutine
// and must not block for long.
type Sink interface {
	Notify(scanID string, ev model.ProgressEvent)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(scanID string, ev model.ProgressEvent)

func (f SinkFunc) Notify(scanID string, ev model.ProgressEvent) { f(scanID, ev) }

// MultiSink forwards every event to each sink in order.
type MultiSink []Sink

func (m MultiSink) Notify(scanID string, ev model.ProgressEvent) {
	for _, s := range m {
		if s != nil {
			s.Notify(scanID, ev)
		}
	}
}

// Discard drops every event.
var Discard Sink = SinkFunc(func(string, model.ProgressEvent) {})

// LogSink mirrors events into a logger.
type LogSink struct {
	Logger logging.Logger
}

func (s LogSink) Notify(scanID string, ev model.ProgressEvent) {
	if s.Logger == nil {
		return
	}
	fields := []logging.Field{
		{Key: "scan_id", Value: scanID},
		{Key: "seq", Value: ev.Sequence},
		{Key: "kind", Value: string(ev.Kind)},
	}
	if ev.State != "" {
		fields = append(fields, logging.Field{Key: "state", Value: string(ev.State)})
	}
	if ev.Kind == model.EventError {
		s.Logger.Warn(ev.Message, fields...)
		return
	}
	s.Logger.Debug(ev.Message, fields...)
}

// ─── Emitter ───────────────────────────────────────────────────────────

// Emitter numbers the events of one scan and hands them to a sink. Sequence
// numbers start at 1 and have no gaps. Once a terminal event has been emitted
// every later call is ignored, so complete or error is always last.
type Emitter struct {
	scanID string
	sink   Sink
	now    func() time.Time

	mu     sync.Mutex
	seq    int
	closed bool
}

func NewEmitter(scanID string, sink Sink) *Emitter {
	if sink == nil {
		sink = Discard
	}
	return &Emitter{scanID: scanID, sink: sink, now: time.Now}
}

// Emit sends one event and reports whether it was sent.
func (e *Emitter) Emit(kind model.EventKind, state model.ScanState, msg string, data map[string]any) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return false
	}
	e.seq++
	if kind.Terminal() {
		e.closed = true
	}
	ev := model.ProgressEvent{
		ScanID:    e.scanID,
		Sequence:  e.seq,
		Kind:      kind,
		State:     state,
		Message:   msg,
		Timestamp: e.now().UTC(),
		Data:      data,
	}
	// Delivered under the lock so sinks observe sequence order.
	e.sink.Notify(e.scanID, ev)
	return true
}

// Closed reports whether a terminal event has been emitted.
func (e *Emitter) Closed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// Count returns the number of events emitted so far.
func (e *Emitter) Count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.seq
}
