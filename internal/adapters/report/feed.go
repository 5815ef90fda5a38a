package report

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/prairielabs/trackwatch/internal/domain/model"
)

// Feed is the JSON snapshot of one run's classified results, served by the
// HTTP API and optionally written to disk.
type Feed struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Count       int       `json:"count"`
	Results     []Row     `json:"results"`
}

// NewFeed builds a feed snapshot in the batch's presentation order.
func NewFeed(runID string, generatedAt time.Time, results []model.ClassifiedResult) Feed {
	return Feed{
		RunID:       runID,
		GeneratedAt: generatedAt,
		Count:       len(results),
		Results:     Rows(results),
	}
}

// WriteFile writes the feed to path atomically via a temp file rename.
func (f Feed) WriteFile(path string) error {
	raw, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("feed export: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("feed export: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("feed export: %w", err)
	}
	return nil
}
