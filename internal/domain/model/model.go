// Package model contains domain models passed between layers.
package model

import (
	"math"
	"time"
)

// RecordType labels a classified result for reporting. The reporting layer
// maps these directly to visual treatment without further business logic.
type RecordType string

// Record type outcomes, in presentation order.
const (
	RecordPR   RecordType = "PR"      // best-ever mark for the event
	RecordSR   RecordType = "SR"      // best mark this (or sibling) season
	RecordFT   RecordType = "FT"      // first valid result at this event
	RecordNone RecordType = "NONE"    // ordinary result
	RecordDNS  RecordType = "DNS_DNF" // non-finish
)

// SourceFlag carries a record hint from the results site. Depending on the
// endpoint the hint arrives either as a boolean or as a confidence-like
// integer, so both forms are kept.
type SourceFlag struct {
	Bool  bool
	Score float64
}

// Asserted reports whether the flag should be treated as set, given the
// numeric threshold used by the source for this flag kind.
func (f SourceFlag) Asserted(threshold float64) bool {
	return f.Bool || f.Score >= threshold
}

// FlagTrue is a convenience for building an asserted boolean flag.
func FlagTrue() SourceFlag { return SourceFlag{Bool: true} }

// RawResult is one competition appearance as delivered by the source.
// Immutable once retrieved.
type RawResult struct {
	AthleteID   string
	AthleteName string
	Gender      string // "M", "W" or empty
	EventLabel  string // free text from the source
	MarkText    string // free text, e.g. "16:27.78", "18.05m", "DNS"
	MeetID      string
	MeetName    string
	MeetDate    time.Time
	Place       int // 0 when absent
	SeasonID    int // indoor seasons are year+10000 by source convention
	ResultID    string
	IsPR        SourceFlag
	IsSR        SourceFlag
}

// CanonicalMark is a unit-normalized mark: seconds for timed events, meters
// for field events. Marks are comparable only within the same event identity
// and polarity.
type CanonicalMark struct {
	Value float64
	Field bool
	Valid bool // false for DNS/DNF/unparseable
}

// InvalidMark returns the sentinel mark for unparseable input. The +Inf
// value sorts last and is excluded from best calculations via Valid.
func InvalidMark(field bool) CanonicalMark {
	return CanonicalMark{Value: math.Inf(1), Field: field, Valid: false}
}

// BetterThan reports whether m beats o under the event's polarity:
// lower is better for timed events, higher for field events.
// An invalid mark never beats anything; any valid mark beats an invalid one.
func (m CanonicalMark) BetterThan(o CanonicalMark) bool {
	if !m.Valid {
		return false
	}
	if !o.Valid {
		return true
	}
	if m.Field {
		return m.Value > o.Value
	}
	return m.Value < o.Value
}

// RunSummary describes one completed fetch-classify-persist run.
type RunSummary struct {
	RunID       string             `json:"run_id"`
	StartedAt   time.Time          `json:"started_at"`
	Duration    time.Duration      `json:"duration"`
	Fetched     int                `json:"fetched"`
	New         int                `json:"new"`
	Duplicates  int                `json:"duplicates"`
	ByRecord    map[RecordType]int `json:"by_record"`
	PersistFail bool               `json:"persist_fail"`
}

// ClassifiedResult is a RawResult enriched with its canonical mark, record
// classification and comparison context. Immutable after classification.
type ClassifiedResult struct {
	RawResult

	Mark     CanonicalMark
	EventKey string // canonical event identity key

	Record RecordType

	// Previous bests, as the source's original mark text. Empty when absent.
	PreviousBest       string
	PreviousSeasonBest string

	// ImprovementPct is signed, positive = better. Absent when no credible
	// previous mark exists.
	ImprovementPct float64
	HasImprovement bool

	// DistanceFromPRPct gives "how far off the best" context for NONE
	// results (positive = worse than the standing best).
	DistanceFromPRPct float64
	HasDistanceFromPR bool

	// Qualifying-standard context, when a standard exists for the event.
	Standard        float64
	StandardDiffPct float64
	HasStandard     bool
}
