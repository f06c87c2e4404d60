// Package demoserver serves a small village website that cloaks injected
// gambling content: search engine crawlers get a different page than people.
// Cloaking can be switched per page from a control panel.
package demoserver

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	jsoniter "github.com/json-iterator/go"

	"github.com/raysh454/judolhunter/internal/logging"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// crawlerAgents matches the User-Agents compromised sites typically cloak for.
var crawlerAgents = regexp.MustCompile(`(?i)googlebot|bingbot|slurp|duckduckbot|baiduspider|yandex(bot)?`)

// IsCrawler reports whether userAgent belongs to a search engine crawler.
func IsCrawler(userAgent string) bool {
	return crawlerAgents.MatchString(userAgent)
}

// DemoServer is a simple HTTP server for demonstrating cloaking detection.
type DemoServer struct {
	cfg    Config
	pages  map[string]PageDefinition
	cloak  map[string]bool // path -> cloaking on
	mu     sync.RWMutex
	logger logging.Logger
}

// New creates a new demo server instance.
func New(cfg Config, logger logging.Logger) *DemoServer {
	if logger == nil {
		logger = logging.Discard()
	}
	pageMap := make(map[string]PageDefinition)
	cloak := make(map[string]bool)
	for _, p := range GetAllPages() {
		pageMap[p.Path] = p
		cloak[p.Path] = cfg.Cloaked && p.Injected != ""
	}

	return &DemoServer{
		cfg:    cfg,
		pages:  pageMap,
		cloak:  cloak,
		logger: logger.With(logging.Field{Key: "component", Value: "demoserver"}),
	}
}

// Pages returns the page definitions sorted by path.
func (s *DemoServer) Pages() []PageDefinition {
	out := make([]PageDefinition, 0, len(s.pages))
	for _, p := range s.pages {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Handler returns the routes of the demo site.
func (s *DemoServer) Handler() http.Handler {
	r := chi.NewRouter()

	for path := range s.pages {
		r.Get(path, s.pageHandler(path))
	}

	// Control panel for cloaking switches
	r.Get("/demo/control", s.controlPanelHandler)
	r.Get("/demo/state", s.stateHandler)
	r.Post("/demo/set-cloaking", s.setCloakingHandler)
	r.Post("/demo/cloak-all", s.cloakAllHandler)
	r.Post("/demo/reset", s.resetHandler)

	return r
}

// ListenAndServe serves the demo site until ctx is cancelled.
func (s *DemoServer) ListenAndServe(ctx context.Context) error {
	hs := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("demo server starting", logging.Field{Key: "addr", Value: hs.Addr})
		errCh <- hs.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return hs.Shutdown(shutdownCtx)
	}
}

// pageHandler returns a handler for a specific page path.
func (s *DemoServer) pageHandler(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.RLock()
		page, ok := s.pages[path]
		cloaked := s.cloak[path]
		s.mu.RUnlock()

		if !ok {
			http.NotFound(w, r)
			return
		}

		html, status, variant := page.Clean, page.Status, "clean"
		if cloaked && IsCrawler(r.UserAgent()) {
			html, status, variant = page.Injected, http.StatusOK, "injected"
		}
		if status == 0 {
			status = http.StatusOK
		}

		s.logger.Debug("serving page",
			logging.Field{Key: "path", Value: path},
			logging.Field{Key: "variant", Value: variant},
			logging.Field{Key: "user_agent", Value: r.UserAgent()})

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Vary", "User-Agent")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(html))
	}
}

// PageState is the cloaking switch of one page.
type PageState struct {
	Path        string `json:"path"`
	Description string `json:"description"`
	Cloakable   bool   `json:"cloakable"`
	Cloaked     bool   `json:"cloaked"`
}

func (s *DemoServer) state() []PageState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]PageState, 0, len(s.pages))
	for _, p := range s.Pages() {
		out = append(out, PageState{
			Path:        p.Path,
			Description: p.Description,
			Cloakable:   p.Injected != "",
			Cloaked:     s.cloak[p.Path],
		})
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// controlPanelHandler serves the control panel for the cloaking switches.
func (s *DemoServer) controlPanelHandler(w http.ResponseWriter, r *http.Request) {
	tmpl := template.Must(template.New("control").Parse(controlPanelHTML))
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = tmpl.Execute(w, struct {
		Pages []PageState
		Port  int
	}{s.state(), s.cfg.Port})
}

// stateHandler returns the cloaking switch of every page.
func (s *DemoServer) stateHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.state())
}

// setCloakingHandler switches cloaking for one page.
func (s *DemoServer) setCloakingHandler(w http.ResponseWriter, r *http.Request) {
	path := r.FormValue("path")
	on, err := strconv.ParseBool(r.FormValue("on"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "invalid on value"})
		return
	}

	s.mu.Lock()
	page, ok := s.pages[path]
	if ok && page.Injected != "" {
		s.cloak[path] = on
	}
	s.mu.Unlock()

	switch {
	case !ok:
		writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "unknown page"})
	case page.Injected == "":
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "page has no injected variant"})
	default:
		s.logger.Info("cloaking switched", logging.Field{Key: "path", Value: path}, logging.Field{Key: "on", Value: on})
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "path": path, "cloaked": on})
	}
}

// cloakAllHandler turns cloaking on for every page that has an injected variant.
func (s *DemoServer) cloakAllHandler(w http.ResponseWriter, r *http.Request) {
	s.setAll(true)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Cloaking on for all pages"})
}

// resetHandler restores the initial switches.
func (s *DemoServer) resetHandler(w http.ResponseWriter, r *http.Request) {
	s.setAll(s.cfg.Cloaked)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Cloaking reset"})
}

func (s *DemoServer) setAll(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for path, p := range s.pages {
		s.cloak[path] = on && p.Injected != ""
	}
}

const controlPanelHTML = `<!DOCTYPE html>
<html>
<head>
    <title>Demo Cloaking Control Panel</title>
    <style>
        body { font-family: system-ui, -apple-system, sans-serif; max-width: 1000px; margin: 0 auto; padding: 20px; background: #f5f5f5; }
        h1 { color: #333; border-bottom: 2px solid #c0392b; padding-bottom: 10px; }
        .page-card { background: white; border-radius: 8px; padding: 20px; margin: 15px 0; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        .page-path { font-size: 1.2em; font-weight: bold; color: #c0392b; text-decoration: none; }
        .page-desc { color: #666; margin: 5px 0; }
        .on { color: #c0392b; font-weight: bold; }
        .off { color: #27ae60; font-weight: bold; }
        button { padding: 8px 16px; border: none; border-radius: 4px; cursor: pointer; margin-right: 8px; }
        .info-box { background: #fdecea; padding: 15px; border-radius: 8px; margin-bottom: 20px; border-left: 4px solid #c0392b; }
    </style>
</head>
<body>
    <h1>Demo Cloaking Control Panel</h1>

    <div class="info-box">
        Cloaked pages serve injected gambling content to search engine crawlers only.
        Scan http://localhost:{{.Port}}/ with judolhunter and switch pages on or off to compare.
    </div>

    <button onclick="post('/demo/cloak-all')">Cloak all</button>
    <button onclick="post('/demo/reset')">Reset</button>

    {{range .Pages}}
    <div class="page-card">
        <a href="{{.Path}}" target="_blank" class="page-path">{{.Path}}</a>
        <div class="page-desc">{{.Description}}</div>
        {{if .Cloakable}}
        <div>Cloaking: {{if .Cloaked}}<span class="on">ON</span>{{else}}<span class="off">OFF</span>{{end}}
            <button onclick="setCloaking('{{.Path}}', {{not .Cloaked}})">Toggle</button>
        </div>
        {{else}}
        <div>Same page for every visitor</div>
        {{end}}
    </div>
    {{end}}

    <script>
        function setCloaking(path, on) {
            fetch('/demo/set-cloaking', {
                method: 'POST',
                headers: {'Content-Type': 'application/x-www-form-urlencoded'},
                body: 'path=' + encodeURIComponent(path) + '&on=' + on
            }).then(() => location.reload());
        }

        function post(url) {
            fetch(url, {method: 'POST'}).then(() => location.reload());
        }
    </script>
</body>
</html>`
