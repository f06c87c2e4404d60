package webclient

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/raysh454/judolhunter/internal/logging"
)

// BackendConstructor builds a WebClient for one scan engine.
type BackendConstructor func(cfg Config, logger logging.Logger) (WebClient, error)

var (
	backendsMu sync.RWMutex
	backends   = map[string]BackendConstructor{}
)

func init() {
	RegisterBackend(string(ClientNetHTTP), func(cfg Config, logger logging.Logger) (WebClient, error) {
		return NewNetHTTPClient(cfg, logger, nil)
	})
}

// RegisterBackend makes ctor available under name, case-insensitively.
// A later registration under the same name wins.
func RegisterBackend(name string, ctor BackendConstructor) {
	name = normalizeBackend(name)
	if name == "" || ctor == nil {
		return
	}
	backendsMu.Lock()
	backends[name] = ctor
	backendsMu.Unlock()
}

// NewWebClient builds the backend named by cfg.Client, nethttp when unset.
func NewWebClient(cfg Config, logger logging.Logger) (WebClient, error) {
	name := normalizeBackend(string(cfg.Client))
	if name == "" {
		name = string(ClientNetHTTP)
	}

	backendsMu.RLock()
	ctor := backends[name]
	backendsMu.RUnlock()
	if ctor == nil {
		return nil, fmt.Errorf("webclient: unknown backend %q (have %s)", name, strings.Join(ListBackends(), ", "))
	}

	wc, err := ctor(cfg, logger)
	switch {
	case err != nil:
		return nil, fmt.Errorf("webclient: build %q: %w", name, err)
	case wc == nil:
		return nil, errors.New("webclient: backend returned no client")
	}
	return wc, nil
}

// ListBackends returns the registered backend names in order.
func ListBackends() []string {
	backendsMu.RLock()
	out := make([]string, 0, len(backends))
	for name := range backends {
		out = append(out, name)
	}
	backendsMu.RUnlock()
	sort.Strings(out)
	return out
}

func normalizeBackend(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
