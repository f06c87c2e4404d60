package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/raysh454/judolhunter/internal/app"
	"github.com/raysh454/judolhunter/internal/logging"
	"github.com/raysh454/judolhunter/internal/model"
	"github.com/raysh454/judolhunter/internal/quota"
	_ "github.com/raysh454/judolhunter/internal/server/docs"
	"github.com/raysh454/judolhunter/internal/store"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	// SessionHeader and SessionCookie carry the caller's identity. Quotas and
	// history are scoped to it.
	SessionHeader = "X-Session-ID"
	SessionCookie = "session_id"

	// MaxBodyBytes caps a request body. Larger POSTs get 413.
	MaxBodyBytes = 1 << 20

	maxLoggedBody = 512
)

type actorKey struct{}

// Server is the HTTP + WebSocket API surface for JudolHunter.
type Server struct {
	cfg      Config
	app      *app.Application
	ownsApp  bool
	router   chi.Router
	upgrader websocket.Upgrader
	logger   logging.Logger

	stopJanitor context.CancelFunc
	janitorDone chan struct{}
}

// NewServer creates a Server with its own persistent Application.
func NewServer(cfg Config) (*Server, error) {
	if cfg.AppConfig == nil {
		cfg.AppConfig = app.DefaultConfig()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewStdoutLogger("Server")
	}

	a, err := app.NewApplication(cfg.AppConfig, logger, app.AppOptions{Persist: true})
	if err != nil {
		return nil, fmt.Errorf("creating application: %w", err)
	}
	s := New(cfg, a)
	s.ownsApp = true
	return s, nil
}

// New serves an existing Application. The caller keeps ownership of it.
func New(cfg Config, a *app.Application) *Server {
	defaults := DefaultConfig()
	if cfg.EventRetention <= 0 {
		cfg.EventRetention = defaults.EventRetention
	}
	if cfg.JanitorInterval <= 0 {
		cfg.JanitorInterval = defaults.JanitorInterval
	}
	logger := cfg.Logger
	if logger == nil {
		logger = a.Logger
	}

	r := chi.NewRouter()
	s := &Server{
		cfg:    cfg,
		app:    a,
		router: r,
		logger: logger.With(logging.Field{Key: "component", Value: "server"}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// TODO: restrict to the configured frontend origin once one exists
				return true
			},
		},
	}
	s.routes()
	s.startJanitor()
	return s
}

// Application returns the underlying application for advanced use (tests, etc.).
func (s *Server) Application() *app.Application {
	return s.app
}

func (s *Server) routes() {
	r := s.router

	r.Use(s.corsMiddleware)
	r.Use(s.sessionMiddleware)

	// CORS preflight
	r.Options("/scans", s.optionsHandler("GET, POST"))
	r.Options("/scans/{id}", s.optionsHandler("GET, DELETE"))
	r.Options("/scans/{id}/events", s.optionsHandler("GET"))
	r.Options("/quota", s.optionsHandler("GET"))

	r.Get("/healthz", s.handleHealth)
	r.Get("/quota", s.handleQuota)

	r.Post("/scans", s.handleCreateScans)
	r.Get("/scans", s.handleListScans)
	r.Get("/scans/{id}", s.handleGetScan)
	r.Delete("/scans/{id}", s.handleDeleteScan)
	r.Get("/scans/{id}/events", s.handleScanEvents)

	r.Get("/ws/scans/{id}", s.handleScanWS)

	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+SessionHeader)
		w.Header().Set("Access-Control-Expose-Headers", SessionHeader)
		w.Header().Set("Access-Control-Max-Age", "86400")

		next.ServeHTTP(w, r)
	})
}

// sessionMiddleware resolves the caller's session id from the header or
// cookie, issuing a new one when neither is present.
func (s *Server) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := strings.TrimSpace(r.Header.Get(SessionHeader))
		if actor == "" {
			if c, err := r.Cookie(SessionCookie); err == nil {
				actor = strings.TrimSpace(c.Value)
			}
		}
		if actor == "" {
			actor = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookie,
				Value:    actor,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
				MaxAge:   int((365 * 24 * time.Hour).Seconds()),
			})
		}
		w.Header().Set(SessionHeader, actor)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), actorKey{}, actor)))
	})
}

func actorFrom(r *http.Request) string {
	actor, _ := r.Context().Value(actorKey{}).(string)
	return actor
}

func (s *Server) optionsHandler(methods string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Methods", methods)
		w.WriteHeader(http.StatusNoContent)
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fields := []logging.Field{
		{Key: "method", Value: r.Method},
		{Key: "path", Value: r.URL.Path},
	}

	if q := r.URL.Query(); len(q) > 0 {
		fields = append(fields, logging.Field{Key: "query", Value: q})
	}

	if r.Body != nil && r.Method == http.MethodPost {
		bodyBytes, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				s.logger.Warn("request body too large", append(fields, logging.Field{Key: "limit", Value: tooLarge.Limit})...)
				writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
				return
			}
			writeError(w, http.StatusBadRequest, "unreadable request body")
			return
		}
		fields = append(fields, logging.Field{Key: "body_bytes", Value: len(bodyBytes)})
		if len(bodyBytes) <= maxLoggedBody {
			fields = append(fields, logging.Field{Key: "body", Value: string(bodyBytes)})
		}
		r.Body = io.NopCloser(bytes.NewReader(bodyBytes))
	}

	s.logger.Debug("http_request", fields...)

	s.router.ServeHTTP(w, r)
}

// Close stops the janitor and, when the server created the application,
// shuts it down.
func (s *Server) Close() {
	if s.stopJanitor != nil {
		s.stopJanitor()
		<-s.janitorDone
	}
	if s.ownsApp && s.app != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := s.app.Shutdown(ctx); err != nil {
			s.logger.Warn("application shutdown", logging.Field{Key: "error", Value: err.Error()})
		}
	}
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.cfg.ListenAddr,
		Handler:      s,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // allow streaming
	}
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	hs := s.HTTPServer()
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", logging.Field{Key: "addr", Value: hs.Addr})
		errCh <- hs.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := hs.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// startJanitor evicts progress logs and in-memory results of scans that
// finished more than EventRetention ago.
func (s *Server) startJanitor() {
	ctx, cancel := context.WithCancel(context.Background())
	s.stopJanitor = cancel
	s.janitorDone = make(chan struct{})

	go func() {
		defer close(s.janitorDone)
		ticker := time.NewTicker(s.cfg.JanitorInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				s.sweep(now)
			}
		}
	}()
}

func (s *Server) sweep(now time.Time) {
	pruned := s.app.Orch.Prune(s.cfg.EventRetention, now)
	evicted := s.app.Progress.EvictFinished(s.cfg.EventRetention, now)
	if len(pruned) > 0 || evicted > 0 {
		s.logger.Debug("janitor sweep",
			logging.Field{Key: "scans", Value: len(pruned)},
			logging.Field{Key: "logs", Value: evicted})
	}
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

func queryInt(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

// --- HTTP handlers ---

// handleHealth godoc
// @Summary Liveness check
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /healthz [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", PatternsVersion: s.app.Patterns.Version()})
}

// handleQuota godoc
// @Summary Plan and weekly domain usage of the caller
// @Tags quota
// @Produce json
// @Success 200 {object} QuotaResponse
// @Failure 404 {object} ErrorResponse
// @Router /quota [get]
func (s *Server) handleQuota(w http.ResponseWriter, r *http.Request) {
	if s.app.Quota == nil {
		writeError(w, http.StatusNotFound, "quotas are disabled")
		return
	}
	actor := actorFrom(r)
	usage, err := s.app.Quota.Usage(r.Context(), actor)
	if err != nil {
		s.logger.Warn("reading quota usage", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if usage == nil {
		usage = []quota.Usage{}
	}
	writeJSON(w, http.StatusOK, QuotaResponse{
		Plan:  s.app.Quota.PlanOf(r.Context(), actor),
		Week:  quota.WeekStart(time.Now()),
		Usage: usage,
	})
}

// handleCreateScans godoc
// @Summary Start scanning one or more URLs
// @Tags scans
// @Accept json
// @Produce json
// @Param body body CreateScanRequest true "URLs to scan"
// @Success 202 {object} CreateScanResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /scans [post]
func (s *Server) handleCreateScans(w http.ResponseWriter, r *http.Request) {
	var body CreateScanRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		s.logger.Warn("decoding create scan body", logging.Field{Key: "error", Value: err.Error()})
		return
	}
	urls := body.URLs
	if body.URL != "" {
		urls = append([]string{body.URL}, urls...)
	}
	if len(urls) == 0 {
		writeError(w, http.StatusBadRequest, "no urls given")
		return
	}

	actor := actorFrom(r)
	handles, err := s.app.Orch.Submit(r.Context(), urls, body.Crawl, actor)
	switch {
	case errors.Is(err, app.ErrTooManyURLs):
		writeError(w, http.StatusForbidden, err.Error())
		return
	case errors.Is(err, app.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, err.Error())
		return
	case errors.Is(err, app.ErrNoValidURLs):
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error(), "scans": handles})
		return
	case errors.Is(err, app.ErrClosed):
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.logger.Info("started scans",
		logging.Field{Key: "actor", Value: actor},
		logging.Field{Key: "count", Value: len(handles)},
		logging.Field{Key: "crawl", Value: body.Crawl})
	writeJSON(w, http.StatusAccepted, CreateScanResponse{Scans: handles})
}

// handleListScans godoc
// @Summary List the caller's finished scans, newest first
// @Tags scans
// @Produce json
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} store.Summary
// @Failure 500 {object} ErrorResponse
// @Router /scans [get]
func (s *Server) handleListScans(w http.ResponseWriter, r *http.Request) {
	if s.app.Store == nil {
		writeJSON(w, http.StatusOK, []store.Summary{})
		return
	}
	list, err := s.app.Store.List(r.Context(), actorFrom(r), queryInt(r, "limit", 50), queryInt(r, "offset", 0))
	if err != nil {
		s.logger.Warn("listing scans", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if list == nil {
		list = []store.Summary{}
	}
	writeJSON(w, http.StatusOK, list)
}

// ownScan returns the in-memory scan if it exists and belongs to the caller.
func (s *Server) ownScan(r *http.Request, id string) (app.Scan, bool) {
	sc, err := s.app.Orch.GetScan(id)
	if err != nil || sc.Actor != actorFrom(r) {
		return app.Scan{}, false
	}
	return sc, true
}

// handleGetScan godoc
// @Summary Get a scan's state and result
// @Tags scans
// @Produce json
// @Param id path string true "Scan ID"
// @Success 200 {object} ScanResponse
// @Failure 404 {object} ErrorResponse
// @Router /scans/{id} [get]
func (s *Server) handleGetScan(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if sc, ok := s.ownScan(r, id); ok {
		writeJSON(w, http.StatusOK, ScanResponse{
			ScanID:   sc.ID,
			ParentID: sc.ParentID,
			URL:      sc.URL,
			State:    sc.State,
			Result:   sc.Result,
		})
		return
	}

	if s.app.Store != nil {
		res, err := s.app.Store.Get(r.Context(), actorFrom(r), id)
		if err == nil {
			state := model.StateDone
			if res.Status == model.StatusError || res.Status == model.StatusCancelled {
				state = model.StateError
			}
			writeJSON(w, http.StatusOK, ScanResponse{ScanID: res.ScanID, ParentID: res.ParentID, URL: res.URL, State: state, Result: res})
			return
		}
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("loading scan", logging.Field{Key: "scan_id", Value: id}, logging.Field{Key: "error", Value: err.Error()})
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}
	writeError(w, http.StatusNotFound, app.ErrScanNotFound.Error())
}

// handleDeleteScan godoc
// @Summary Cancel a running scan or delete a finished one
// @Tags scans
// @Param id path string true "Scan ID"
// @Success 202
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /scans/{id} [delete]
func (s *Server) handleDeleteScan(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sc, inMemory := s.ownScan(r, id)
	if inMemory && sc.Result == nil {
		_ = s.app.Orch.CancelScan(id)
		s.logger.Info("cancelled scan", logging.Field{Key: "scan_id", Value: id})
		writeJSON(w, http.StatusAccepted, map[string]any{"scan_id": id, "cancelled": true})
		return
	}
	if inMemory {
		_ = s.app.Orch.Forget(id)
		s.app.Progress.Remove(id)
	}

	if s.app.Store != nil {
		err := s.app.Store.Delete(r.Context(), actorFrom(r), id)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if errors.Is(err, store.ErrNotFound) && !inMemory {
			writeError(w, http.StatusNotFound, app.ErrScanNotFound.Error())
			return
		}
	} else if !inMemory {
		writeError(w, http.StatusNotFound, app.ErrScanNotFound.Error())
		return
	}
	s.logger.Info("deleted scan", logging.Field{Key: "scan_id", Value: id})
	w.WriteHeader(http.StatusNoContent)
}

// handleScanEvents godoc
// @Summary Progress events after a sequence number
// @Tags scans
// @Produce json
// @Param id path string true "Scan ID"
// @Param after query int false "Last sequence already seen"
// @Success 200 {object} EventsResponse
// @Failure 404 {object} ErrorResponse
// @Router /scans/{id}/events [get]
func (s *Server) handleScanEvents(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := s.ownScan(r, id); !ok {
		writeError(w, http.StatusNotFound, app.ErrScanNotFound.Error())
		return
	}
	resp := EventsResponse{ScanID: id, Events: []model.ProgressEvent{}}
	if l, ok := s.app.Progress.Get(id); ok {
		if evs := l.Since(queryInt(r, "after", 0)); evs != nil {
			resp.Events = evs
		}
		resp.Done = l.Done()
	}
	writeJSON(w, http.StatusOK, resp)
}

// WebSockets

// handleScanWS godoc
// @Summary Stream progress events over a WebSocket
// @Tags scans
// @Param id path string true "Scan ID"
// @Param after query int false "Last sequence already seen"
// @Router /ws/scans/{id} [get]
func (s *Server) handleScanWS(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := s.ownScan(r, id); !ok {
		writeError(w, http.StatusNotFound, app.ErrScanNotFound.Error())
		return
	}
	log, ok := s.app.Progress.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "no progress for scan")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrading to websocket", logging.Field{Key: "error", Value: err.Error()})
		return
	}
	defer conn.Close()

	// Reads only to notice the client going away.
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	after := queryInt(r, "after", 0)
	for {
		evs, done, err := log.Wait(ctx, after)
		if err != nil {
			return
		}
		for _, ev := range evs {
			if err := conn.WriteJSON(ev); err != nil {
				s.logger.Debug("websocket client gone", logging.Field{Key: "scan_id", Value: id})
				return
			}
			after = ev.Sequence
		}
		if done {
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "scan finished"))
			return
		}
	}
}
