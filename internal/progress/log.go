package progress

import (
	"context"
	"sync"
	"time"

	"github.com/raysh454/judolhunter/internal/model"
)

// Log is the append-only event log of one scan. One writer appends; any
// number of readers take suffixes by sequence number or wait for new events.
// Readers never block the writer.
type Log struct {
	scanID string

	mu         sync.RWMutex
	events     []model.ProgressEvent
	done       bool
	finishedAt time.Time
	changed    chan struct{}
}

func NewLog(scanID string) *Log {
	return &Log{scanID: scanID, changed: make(chan struct{})}
}

func (l *Log) ScanID() string { return l.scanID }

// Append stores ev. An event with Sequence 0 is numbered by the log; an event
// carrying a sequence that is already stored is dropped as a duplicate, and a
// sequence that would leave a gap is renumbered. Nothing is stored after a
// terminal event. It returns the stored event and whether it was stored.
func (l *Log) Append(ev model.ProgressEvent) (model.ProgressEvent, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.done {
		return ev, false
	}
	next := len(l.events) + 1
	if ev.Sequence != 0 && ev.Sequence < next {
		return ev, false
	}
	ev.Sequence = next
	if ev.ScanID == "" {
		ev.ScanID = l.scanID
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	l.events = append(l.events, ev)
	if ev.Kind.Terminal() {
		l.done = true
		l.finishedAt = time.Now()
	}

	close(l.changed)
	l.changed = make(chan struct{})
	return ev, true
}

// Since returns a copy of every event with Sequence > after.
func (l *Log) Since(after int) []model.ProgressEvent {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.sinceLocked(after)
}

func (l *Log) sinceLocked(after int) []model.ProgressEvent {
	if after < 0 {
		after = 0
	}
	if after >= len(l.events) {
		return nil
	}
	return append([]model.ProgressEvent(nil), l.events[after:]...)
}

// Wait blocks until there are events after the given sequence, the log is
// finished or ctx ends. It returns the new events and whether the log is
// finished.
func (l *Log) Wait(ctx context.Context, after int) ([]model.ProgressEvent, bool, error) {
	for {
		l.mu.RLock()
		evs := l.sinceLocked(after)
		done := l.done
		changed := l.changed
		l.mu.RUnlock()

		if len(evs) > 0 || done {
			return evs, done, nil
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return nil, false, ctx.Err()
		}
	}
}

// Len is the number of stored events.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.events)
}

// Done reports whether a terminal event was stored.
func (l *Log) Done() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.done
}

// FinishedAt is when the terminal event was stored; zero while running.
func (l *Log) FinishedAt() time.Time {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.finishedAt
}

// Last returns the most recent event.
func (l *Log) Last() (model.ProgressEvent, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.events) == 0 {
		return model.ProgressEvent{}, false
	}
	return l.events[len(l.events)-1], true
}
