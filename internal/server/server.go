// Package server exposes the read-only surfaces the chart and display
// collaborators consume, plus playback control, health, and metrics.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/audiospy/sonifier/internal/history"
	"github.com/audiospy/sonifier/internal/marketstate"
	"github.com/audiospy/sonifier/internal/metrics"
	"github.com/audiospy/sonifier/internal/playback"
	"github.com/audiospy/sonifier/internal/stream"
	"github.com/audiospy/sonifier/internal/version"
)

// Deps are the components the HTTP surface reads from or drives.
type Deps struct {
	Snapshots *marketstate.Store
	History   *history.Service
	Playback  *playback.Controller
	Stream    stream.Client
}

// Server is the HTTP surface.
type Server struct {
	httpServer *http.Server
	deps       Deps
	logger     *slog.Logger
}

// New creates a server listening on the given port.
func New(port int, deps Deps, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{deps: deps, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/api/snapshot", s.handleSnapshot)
	r.Get("/api/candles", s.handleCandles)
	r.Post("/api/playback/start", s.handlePlaybackStart)
	r.Post("/api/playback/stop", s.handlePlaybackStop)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: r,
	}

	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins serving. It returns when the listener stops.
func (s *Server) Start() error {
	s.logger.Info("http server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// handleHealth reports component status. Sustained inability to connect
// shows up here as a persistent degraded status rather than a one-time
// alert.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	connState := s.deps.Stream.State()

	health := struct {
		Status     string         `json:"status"`
		Version    string         `json:"version"`
		Components map[string]any `json:"components"`
	}{
		Status:     "healthy",
		Version:    version.String(),
		Components: make(map[string]any),
	}

	health.Components["stream"] = map[string]any{
		"state": string(connState),
		"stats": s.deps.Stream.Stats(),
	}
	if connState != stream.StateConnected {
		health.Status = "degraded"
	}

	health.Components["playback"] = string(s.deps.Playback.State())
	health.Components["snapshot_fields"] = len(s.deps.Snapshots.Latest())

	w.Header().Set("Content-Type", "application/json")
	if health.Status != "healthy" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(health)
}

// handleSnapshot serves the latest market snapshot, read-only.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.deps.Snapshots.Latest())
}

// handleCandles serves an ordered candle sequence:
// /api/candles?symbol=SPY&start=1722348000&end=1722355200[&indicators=1]
func (s *Server) handleCandles(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		httpError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	start, err := queryInt64(r, "start")
	if err != nil {
		httpError(w, http.StatusBadRequest, "start must be unix seconds")
		return
	}
	end, err := queryInt64(r, "end")
	if err != nil {
		httpError(w, http.StatusBadRequest, "end must be unix seconds")
		return
	}
	if end < start {
		httpError(w, http.StatusBadRequest, "end must not precede start")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	candles, err := s.deps.History.Candles(ctx, symbol, start, end)
	if err != nil {
		s.logger.Error("candle fetch failed", "symbol", symbol, "error", err)
		httpError(w, http.StatusBadGateway, "historical data unavailable")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if r.URL.Query().Get("indicators") == "1" {
		json.NewEncoder(w).Encode(map[string]any{"candles": history.Enrich(candles)})
		return
	}
	json.NewEncoder(w).Encode(map[string]any{"candles": candles})
}

func (s *Server) handlePlaybackStart(w http.ResponseWriter, r *http.Request) {
	s.handlePlayback(w, s.deps.Playback.Start)
}

func (s *Server) handlePlaybackStop(w http.ResponseWriter, r *http.Request) {
	s.handlePlayback(w, s.deps.Playback.Stop)
}

// handlePlayback flips local state. A send failure is reported but the
// local transition stands; 202 tells the caller the server side may lag.
func (s *Server) handlePlayback(w http.ResponseWriter, fn func() error) {
	status := http.StatusOK
	if err := fn(); err != nil {
		s.logger.Warn("playback control delivery failed", "error", err)
		status = http.StatusAccepted
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"playback": string(s.deps.Playback.State()),
	})
}

func queryInt64(r *http.Request, key string) (int64, error) {
	return strconv.ParseInt(r.URL.Query().Get(key), 10, 64)
}

func httpError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
