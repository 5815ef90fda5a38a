// Package classify assigns each candidate result a record-type outcome by
// cross-checking the source's record flags against independently computed
// history.
package classify

import (
	"github.com/prairielabs/trackwatch/internal/domain/best"
	"github.com/prairielabs/trackwatch/internal/domain/model"
)

// Flag thresholds used by the source: the personal-best hint sometimes
// arrives as a confidence-like integer where anything >= 90 means PR, and
// the season-best hint as a small positive integer.
const (
	prFlagThreshold = 90
	srFlagThreshold = 1
)

// Input bundles everything the classifier needs for one candidate result.
type Input struct {
	Mark      model.CanonicalMark
	NonFinish bool // mark text matched a non-finish token

	IsPR model.SourceFlag
	IsSR model.SourceFlag

	PrevBest      best.Entry
	HasPrevBest   bool
	PrevSeason    best.Entry
	HasPrevSeason bool
}

// Outcome is the classification verdict plus its comparison context.
type Outcome struct {
	Record            model.RecordType
	PreviousBest      string
	PreviousSeason    string
	ImprovementPct    float64
	HasImprovement    bool
	DistanceFromPRPct float64
	HasDistanceFromPR bool
}

// Option applies a configuration option to the Classifier.
type Option func(*Classifier)

// WithStaleFlagDowngrade controls whether a source PR flag that contradicts
// computed history (negative improvement) is downgraded to an ordinary
// result. On by default; the source's flags lag behind its own result data
// often enough that the numbers win.
func WithStaleFlagDowngrade(enabled bool) Option {
	return func(c *Classifier) {
		c.downgradeStaleFlag = enabled
	}
}

// Classifier resolves record types from noisy source flags and computed
// bests. Classification never fails; missing or contradictory inputs
// degrade to NONE with absent optional fields.
type Classifier struct {
	downgradeStaleFlag bool
}

// New creates a Classifier with configuration options.
func New(opts ...Option) *Classifier {
	c := &Classifier{downgradeStaleFlag: true}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify applies the priority rules:
//
//  1. non-finish marks are terminal DNS_DNF, regardless of flags
//  2. flagged PR with no previous valid best is a first time (FT)
//  3. flagged PR agreeing with computed improvement is a PR
//  4. flagged PR contradicted by computed history downgrades to NONE
//  5. flagged SR is an SR
//  6. everything else is NONE, with distance-from-best context when a
//     credible best exists
func (c *Classifier) Classify(in Input) Outcome {
	out := Outcome{Record: model.RecordNone}
	if in.HasPrevBest {
		out.PreviousBest = in.PrevBest.MarkText
	}
	if in.HasPrevSeason {
		out.PreviousSeason = in.PrevSeason.MarkText
	}

	if in.NonFinish && !in.Mark.Valid {
		out.Record = model.RecordDNS
		return out
	}

	if in.IsPR.Asserted(prFlagThreshold) {
		if !in.HasPrevBest {
			out.Record = model.RecordFT
			return out
		}
		imp, ok := best.Improvement(in.PrevBest.Mark, in.Mark)
		if !ok {
			// No credible comparison point survived the filters; treat
			// like a first time at this event.
			out.Record = model.RecordFT
			out.PreviousBest = ""
			return out
		}
		if imp >= 0 || !c.downgradeStaleFlag {
			out.Record = model.RecordPR
			out.ImprovementPct = imp
			out.HasImprovement = true
			return out
		}
		// The flag says PR but the mark is worse than the standing best:
		// the flag is stale, the numbers win.
		out.Record = model.RecordNone
		out.DistanceFromPRPct = -imp
		out.HasDistanceFromPR = true
		return out
	}

	if in.IsSR.Asserted(srFlagThreshold) {
		out.Record = model.RecordSR
		if in.HasPrevSeason {
			if imp, ok := best.Improvement(in.PrevSeason.Mark, in.Mark); ok {
				out.ImprovementPct = imp
				out.HasImprovement = true
			}
		}
		return out
	}

	// Ordinary result: record how far off the standing best it landed, for
	// display only.
	if in.HasPrevBest {
		if imp, ok := best.Improvement(in.PrevBest.Mark, in.Mark); ok && imp < 0 {
			out.DistanceFromPRPct = -imp
			out.HasDistanceFromPR = true
		}
	}
	return out
}
