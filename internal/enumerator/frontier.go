package enumerator

import (
	"sync"
)

// Frontier is the admission side of a crawl: it remembers every page claimed
// so far with its depth and refuses new pages once the depth or page ceiling
// is reached or the crawl has been stopped. It is safe for concurrent use.
type Frontier struct {
	mu       sync.Mutex
	maxDepth int
	maxPages int
	depth    map[string]int
	admitted int
	stopped  bool
}

// NewFrontier claims root at depth 0. maxPages counts discovered pages only;
// the root is not charged against it, so a crawl scans at most maxPages+1
// pages.
func NewFrontier(root string, maxDepth, maxPages int) *Frontier {
	f := &Frontier{
		maxDepth: maxDepth,
		maxPages: maxPages,
		depth:    map[string]int{},
	}
	if k := PageKey(root); k != "" {
		f.depth[k] = 0
	}
	return f
}

// Seen implements Visited.
func (f *Frontier) Seen(rawURL string) bool {
	k := PageKey(rawURL)
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.depth[k]
	return ok
}

// Admit claims as many of urls as the ceilings allow, at parentDepth+1. It
// returns the admitted URLs in input order and whether any were refused
// because a bound was hit.
func (f *Frontier) Admit(parentDepth int, urls []string) (admitted []string, bounded bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	depth := parentDepth + 1
	for _, u := range urls {
		k := PageKey(u)
		if k == "" {
			continue
		}
		if _, exists := f.depth[k]; exists {
			continue
		}
		if f.stopped || depth > f.maxDepth || f.admitted >= f.maxPages {
			bounded = true
			continue
		}
		f.depth[k] = depth
		f.admitted++
		admitted = append(admitted, u)
	}
	return admitted, bounded
}

// CanExpand reports whether pages found at depth could still be admitted.
func (f *Frontier) CanExpand(depth int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.stopped && depth+1 <= f.maxDepth && f.admitted < f.maxPages
}

// Stop refuses every later admission. Pages already admitted are unaffected.
func (f *Frontier) Stop() {
	f.mu.Lock()
	f.stopped = true
	f.mu.Unlock()
}
