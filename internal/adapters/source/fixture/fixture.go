// Package fixture replays raw results from a JSON file, for offline runs
// and tests.
package fixture

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/prairielabs/trackwatch/internal/domain/model"
)

// record is the on-disk shape of one result.
type record struct {
	AthleteID   string  `json:"athlete_id"`
	AthleteName string  `json:"athlete_name"`
	Gender      string  `json:"gender"`
	Event       string  `json:"event"`
	Mark        string  `json:"mark"`
	MeetID      string  `json:"meet_id"`
	MeetName    string  `json:"meet_name"`
	MeetDate    string  `json:"meet_date"` // 2006-01-02
	Place       int     `json:"place"`
	SeasonID    int     `json:"season_id"`
	ResultID    string  `json:"result_id"`
	IsPR        bool    `json:"is_pr"`
	PRScore     float64 `json:"pr_score"`
	IsSR        bool    `json:"is_sr"`
	SRScore     float64 `json:"sr_score"`
	History     bool    `json:"history"` // true = prior result, not a new one
}

// Provider serves both recent results and athlete histories from one file.
type Provider struct {
	records []record
}

// New loads a fixture file.
func New(path string) (*Provider, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fixture: %w", err)
	}
	var records []record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("fixture: %w", err)
	}
	return &Provider{records: records}, nil
}

// RecentResults returns the non-history records dated on or after cutoff.
func (p *Provider) RecentResults(_ context.Context, cutoff time.Time) ([]model.RawResult, error) {
	var out []model.RawResult
	for _, r := range p.records {
		if r.History {
			continue
		}
		raw := toRaw(r)
		if raw.MeetDate.Before(cutoff) {
			continue
		}
		out = append(out, raw)
	}
	return out, nil
}

// History returns every record for the athlete, prior and new alike.
func (p *Provider) History(_ context.Context, athleteID string) ([]model.RawResult, error) {
	var out []model.RawResult
	for _, r := range p.records {
		if r.AthleteID == athleteID {
			out = append(out, toRaw(r))
		}
	}
	return out, nil
}

func toRaw(r record) model.RawResult {
	date, _ := time.Parse("2006-01-02", r.MeetDate)
	return model.RawResult{
		AthleteID:   r.AthleteID,
		AthleteName: r.AthleteName,
		Gender:      r.Gender,
		EventLabel:  r.Event,
		MarkText:    r.Mark,
		MeetID:      r.MeetID,
		MeetName:    r.MeetName,
		MeetDate:    date,
		Place:       r.Place,
		SeasonID:    r.SeasonID,
		ResultID:    r.ResultID,
		IsPR:        model.SourceFlag{Bool: r.IsPR, Score: r.PRScore},
		IsSR:        model.SourceFlag{Bool: r.IsSR, Score: r.SRScore},
	}
}
