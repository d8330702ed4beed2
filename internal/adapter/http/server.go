package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/accident-dashboard/internal/dashboard"
	"github.com/couchcryptid/accident-dashboard/internal/domain"
)

// maxSelectionBytes bounds the request body of a dashboard selection.
const maxSelectionBytes = 1 << 20

// Dashboard answers selections and describes the accepted values.
type Dashboard interface {
	sharedobs.ReadinessChecker
	Handle(ctx context.Context, view dashboard.ViewName, sel dashboard.Selection) (dashboard.Payload, error)
	Catalog() dashboard.Catalog
}

// BoundarySource supplies the county boundary GeoJSON document.
type BoundarySource interface {
	Boundaries(ctx context.Context) ([]byte, error)
}

// Server exposes the dashboard API alongside health, readiness, and metrics
// endpoints.
type Server struct {
	httpServer *http.Server
	dashboard  Dashboard
	boundaries BoundarySource
	logger     *slog.Logger
}

// NewServer creates an HTTP server. boundaries may be nil, in which case
// /api/v1/boundaries answers 404.
func NewServer(addr string, d Dashboard, boundaries BoundarySource, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		dashboard:  d,
		boundaries: boundaries,
		logger:     logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(d))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/v1/options", s.handleOptions)
	mux.HandleFunc("POST /api/v1/dashboard/{view}", s.handleDashboard)
	mux.HandleFunc("GET /api/v1/boundaries", s.handleBoundaries)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleOptions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.dashboard.Catalog())
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	view := dashboard.ViewName(r.PathValue("view"))

	var sel dashboard.Selection
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSelectionBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&sel); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode selection: %w", err))
		return
	}

	p, err := s.dashboard.Handle(r.Context(), view, sel)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, p)
	case errors.Is(err, domain.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, dashboard.ErrUnknownView):
		writeError(w, http.StatusNotFound, err)
	default:
		s.logger.Error("dashboard request failed", "view", view, "error", err)
		writeError(w, http.StatusInternalServerError, errors.New("internal error"))
	}
}

func (s *Server) handleBoundaries(w http.ResponseWriter, r *http.Request) {
	if s.boundaries == nil {
		writeError(w, http.StatusNotFound, errors.New("boundary proxy disabled"))
		return
	}
	doc, err := s.boundaries.Boundaries(r.Context())
	if err != nil {
		s.logger.Warn("boundary fetch failed", "error", err)
		writeError(w, http.StatusBadGateway, errors.New("boundaries unavailable"))
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	w.Write(doc) //nolint:errcheck // client may have gone away
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
