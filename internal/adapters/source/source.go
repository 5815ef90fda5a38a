// Package source defines how raw results and athlete histories reach the
// assembler. The core is agnostic to transport; implementations poll the
// aggregation site's API or replay fixtures.
package source

import (
	"context"
	"time"

	"github.com/prairielabs/trackwatch/internal/domain/model"
)

// Provider delivers the raw result records observed since a cutoff date.
type Provider interface {
	RecentResults(ctx context.Context, cutoff time.Time) ([]model.RawResult, error)
}

// HistoryProvider delivers an athlete's full historical result list, used by
// the best-tracker to compute previous bests.
type HistoryProvider interface {
	History(ctx context.Context, athleteID string) ([]model.RawResult, error)
}

// Athlete identifies one roster member to watch.
type Athlete struct {
	ID     string
	Name   string
	Gender string // "M", "W" or empty
}
