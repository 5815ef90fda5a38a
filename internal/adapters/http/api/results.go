// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/prairielabs/trackwatch/internal/adapters/report"
)

// ResultsDependencies defines the interface for feed reads.
type ResultsDependencies interface {
	LatestFeed(ctx context.Context) (report.Feed, bool)
}

// ResultsHandler serves the latest classified feed.
type ResultsHandler struct {
	deps ResultsDependencies
}

// NewResultsHandler creates a new results handler.
func NewResultsHandler(deps ResultsDependencies) *ResultsHandler {
	return &ResultsHandler{deps: deps}
}

// HandleGetResults handles GET /api/v1/results requests.
func (h *ResultsHandler) HandleGetResults(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	feed, ok := h.deps.LatestFeed(r.Context())
	if !ok {
		writeError(w, http.StatusNotFound, "no_feed", ErrNoFeed)
		return
	}
	writeJSON(w, http.StatusOK, feed)
}
