package api

import (
	"context"
	"errors"
	"net/http"

	service "github.com/okian/possessions/internal/app"
	"github.com/okian/possessions/internal/domain/types"
)

// JobDependencies defines the interface for job lookups.
type JobDependencies interface {
	Job(ctx context.Context, jobID string) (types.JobStatus, error)
}

// JobsHandler handles job status requests.
type JobsHandler struct {
	deps JobDependencies
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(deps JobDependencies) *JobsHandler {
	return &JobsHandler{deps: deps}
}

// HandleGetJob handles GET /jobs/{job_id} requests.
func (h *JobsHandler) HandleGetJob(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_job"
	status, err := h.deps.Job(r.Context(), r.PathValue("job_id"))
	if err != nil {
		if errors.Is(err, service.ErrJobNotFound) {
			writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrInternal, err))
		return
	}
	writeJSON(w, http.StatusOK, status)
}
