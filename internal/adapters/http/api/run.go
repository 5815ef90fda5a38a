// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/prairielabs/trackwatch/internal/domain/model"
)

// RunDependencies defines the interface for triggering batch runs.
type RunDependencies interface {
	RunNow(ctx context.Context) (model.RunSummary, error)
}

// RunHandler triggers an on-demand batch run.
type RunHandler struct {
	deps RunDependencies
}

// NewRunHandler creates a new run handler.
func NewRunHandler(deps RunDependencies) *RunHandler {
	return &RunHandler{deps: deps}
}

// HandlePostRun handles POST /api/v1/run requests. The run executes
// synchronously; the response carries the run summary.
func (h *RunHandler) HandlePostRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	summary, err := h.deps.RunNow(r.Context())
	if err != nil {
		// Best-effort check to avoid coupling to the implementation package.
		if strings.Contains(strings.ToLower(err.Error()), "already in progress") {
			writeError(w, http.StatusConflict, "run_busy", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
