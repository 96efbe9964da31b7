// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/possessions/internal/adapters/repository"
	"github.com/okian/possessions/internal/domain/model"
	"github.com/okian/possessions/internal/domain/possession"
	"github.com/okian/possessions/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	GameDependencies
	JobDependencies
	StatsProvider
}

// GameDependencies covers game submission and result reads.
type GameDependencies interface {
	// Submit queues a game. It fails with a duplicate error while the game
	// is in flight and with a backpressure error when the service is full.
	Submit(ctx context.Context, gameID string, events []model.Event) (types.JobStatus, error)

	Possessions(ctx context.Context, gameID string) ([]possession.Summary, error)
	Timeline(ctx context.Context, gameID string) ([]possession.TimelineRow, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	gamesHandler  *GamesHandler
	jobsHandler   *JobsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	return &Server{
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(deps),
		gamesHandler:  NewGamesHandler(deps, opts...),
		jobsHandler:   NewJobsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("POST /games/{game_id}/events", MetricsMiddleware(s.gamesHandler.HandleSubmit, "submit"))
	mux.HandleFunc("GET /games/{game_id}/possessions", MetricsMiddleware(s.gamesHandler.HandlePossessions, "possessions"))
	mux.HandleFunc("GET /games/{game_id}/timeline", MetricsMiddleware(s.gamesHandler.HandleTimeline, "timeline"))
	mux.HandleFunc("GET /jobs/{job_id}", MetricsMiddleware(s.jobsHandler.HandleGetJob, "jobs"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeReadError maps a store read failure onto 404 or 500.
func writeReadError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
		return
	}
	writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrInternal, err))
}
