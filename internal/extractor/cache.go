package extractor

import (
	"sync"

	"github.com/raysh454/judolhunter/internal/model"
)

// Cache holds the extracted content of one scan's two fetch results. Content
// is computed on first use and reused by every detector of that scan.
type Cache struct {
	ex      *Extractor
	results map[model.Identity]*model.FetchResult
	mu      sync.Mutex
	once    map[model.Identity]*sync.Once
	content map[model.Identity]model.ExtractedContent
}

// NewCache binds the crawler and browser results of one scan.
func (e *Extractor) NewCache(crawler, browser *model.FetchResult) *Cache {
	return &Cache{
		ex: e,
		results: map[model.Identity]*model.FetchResult{
			model.IdentityCrawler: crawler,
			model.IdentityBrowser: browser,
		},
		once: map[model.Identity]*sync.Once{
			model.IdentityCrawler: {},
			model.IdentityBrowser: {},
		},
		content: map[model.Identity]model.ExtractedContent{},
	}
}

// Get returns the content for identity, extracting it on first call.
func (c *Cache) Get(identity model.Identity) model.ExtractedContent {
	once, ok := c.once[identity]
	if !ok {
		return emptyContent()
	}
	once.Do(func() {
		ec := c.ex.Extract(c.results[identity])
		c.mu.Lock()
		c.content[identity] = ec
		c.mu.Unlock()
	})
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.content[identity]
}

// Result returns the fetch result bound to identity.
func (c *Cache) Result(identity model.Identity) *model.FetchResult {
	return c.results[identity]
}

// Primary returns the identity whose content the single-page detectors
// analyse: the crawler when it succeeded, otherwise the browser.
func (c *Cache) Primary() model.Identity {
	if c.results[model.IdentityCrawler].OK() {
		return model.IdentityCrawler
	}
	return model.IdentityBrowser
}
