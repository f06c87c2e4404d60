package progress

import (
	"sync"
	"time"

	"github.com/raysh454/judolhunter/internal/model"
)

// Hub keeps one Log per scan and is the default Sink. Logs live until the
// owner evicts them; the engine never does.
type Hub struct {
	mu   sync.RWMutex
	logs map[string]*Log
}

func NewHub() *Hub {
	return &Hub{logs: map[string]*Log{}}
}

// Notify appends ev to the scan's log, creating the log on first use.
func (h *Hub) Notify(scanID string, ev model.ProgressEvent) {
	h.Open(scanID).Append(ev)
}

// Open returns the log for scanID, creating it if needed.
func (h *Hub) Open(scanID string) *Log {
	h.mu.RLock()
	l, ok := h.logs[scanID]
	h.mu.RUnlock()
	if ok {
		return l
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if l, ok := h.logs[scanID]; ok {
		return l
	}
	l = NewLog(scanID)
	h.logs[scanID] = l
	return l
}

// Get returns the log for scanID if it exists.
func (h *Hub) Get(scanID string) (*Log, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	l, ok := h.logs[scanID]
	return l, ok
}

// Remove drops one log.
func (h *Hub) Remove(scanID string) {
	h.mu.Lock()
	delete(h.logs, scanID)
	h.mu.Unlock()
}

// EvictFinished removes logs whose terminal event is older than retention and
// returns how many were removed. Logs still running are never evicted.
func (h *Hub) EvictFinished(retention time.Duration, now time.Time) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for id, l := range h.logs {
		fin := l.FinishedAt()
		if !fin.IsZero() && now.Sub(fin) >= retention {
			delete(h.logs, id)
			n++
		}
	}
	return n
}

// Len is the number of logs held.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.logs)
}
