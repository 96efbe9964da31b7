package api

import (
	"errors"
	"net/http"

	"github.com/okian/possessions/internal/adapters/feed"
	service "github.com/okian/possessions/internal/app"
	"github.com/okian/possessions/internal/domain/game"
)

const defaultMaxBodyBytes = 16 << 20

// GamesHandler handles game submission and result requests.
type GamesHandler struct {
	deps         GameDependencies
	maxBodyBytes int64
	maxEvents    int
}

// NewGamesHandler creates a new games handler.
func NewGamesHandler(deps GameDependencies, opts ...Option) *GamesHandler {
	h := &GamesHandler{
		deps:         deps,
		maxBodyBytes: defaultMaxBodyBytes,
		maxEvents:    feed.DefaultMaxEvents,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type submitResponse struct {
	JobID  string `json:"job_id"`
	GameID string `json:"game_id"`
	Status string `json:"status"`
}

// gameIDFromPath returns the game id of the request path in the zero-padded
// form the CSV and stats API paths store games under.
func gameIDFromPath(r *http.Request) string {
	return feed.NormalizeGameID(r.PathValue("game_id"))
}

// HandleSubmit handles POST /games/{game_id}/events requests.
func (h *GamesHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit_game"
	gameID := gameIDFromPath(r)
	if gameID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	events, err := feed.DecodeEvents(http.MaxBytesReader(w, r.Body, h.maxBodyBytes), h.maxEvents)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	job, err := h.deps.Submit(r.Context(), gameID, events)
	switch {
	case err == nil:
		writeJSON(w, http.StatusAccepted, submitResponse{JobID: job.JobID, GameID: job.GameID, Status: string(job.State)})
	case errors.Is(err, service.ErrDuplicate):
		writeError(w, http.StatusConflict, "duplicate", WrapKind(op, ErrConflict, err))
	case errors.Is(err, service.ErrBackpressure):
		writeError(w, http.StatusTooManyRequests, "backpressure", WrapKind(op, ErrBackpressure, err))
	case errors.Is(err, game.ErrNoEvents), errors.Is(err, service.ErrInvalidGameID):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrInternal, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrInternal, err))
	}
}

// HandlePossessions handles GET /games/{game_id}/possessions requests.
func (h *GamesHandler) HandlePossessions(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_possessions"
	ps, err := h.deps.Possessions(r.Context(), gameIDFromPath(r))
	if err != nil {
		writeReadError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

// HandleTimeline handles GET /games/{game_id}/timeline requests.
func (h *GamesHandler) HandleTimeline(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_timeline"
	rows, err := h.deps.Timeline(r.Context(), gameIDFromPath(r))
	if err != nil {
		writeReadError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}
