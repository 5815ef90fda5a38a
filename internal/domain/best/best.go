// Package best computes previous-best and previous-season-best marks from an
// athlete's historical results for one event identity.
package best

import (
	"math"
	"time"

	"github.com/prairielabs/trackwatch/internal/domain/event"
	"github.com/prairielabs/trackwatch/internal/domain/model"
)

// Plausibility bounds on the previous-to-current value ratio. A previous
// best outside this band is almost always a parser artifact (a split row or
// a mislabeled distance), not a real comparable mark.
const (
	plausibleRatioMin = 0.5
	plausibleRatioMax = 2.0
)

// Entry is one historical result for an (athlete, event identity) pair.
type Entry struct {
	Mark     model.CanonicalMark
	MarkText string
	SeasonID int
	Date     time.Time
	Key      string // dedup result key; identifies the candidate in its own history
}

// History is the ordered collection of an athlete's results for one event
// identity. It only ever grows; entries are never deleted.
type History []Entry

// sameResult matches the candidate against its own appearance in history,
// by result key when both carry one, by exact mark text otherwise.
func sameResult(a, b Entry) bool {
	if a.Key != "" && b.Key != "" {
		return a.Key == b.Key
	}
	return a.MarkText == b.MarkText
}

// PreviousBest returns the best valid mark in history, any season, excluding
// the candidate itself. The result is suppressed when it fails the
// plausibility filter against the candidate's mark.
func (h History) PreviousBest(candidate Entry) (Entry, bool) {
	return h.bestExcluding(candidate, nil)
}

// PreviousSeasonBest returns the best valid mark restricted to the
// candidate's season. When the event carries over between indoor and outdoor
// and the candidate's season is outdoor, the sibling indoor season of the
// same academic year is included.
func (h History) PreviousSeasonBest(candidate Entry, comparableAcrossSeasons bool) (Entry, bool) {
	valid := map[int]bool{candidate.SeasonID: true}
	if comparableAcrossSeasons && event.IsOutdoorSeason(candidate.SeasonID) {
		valid[event.IndoorSibling(candidate.SeasonID)] = true
	}
	return h.bestExcluding(candidate, valid)
}

func (h History) bestExcluding(candidate Entry, seasons map[int]bool) (Entry, bool) {
	var best Entry
	found := false
	for _, e := range h {
		if !e.Mark.Valid || sameResult(e, candidate) {
			continue
		}
		if seasons != nil && !seasons[e.SeasonID] {
			continue
		}
		if !found || e.Mark.BetterThan(best.Mark) {
			best = e
			found = true
		}
	}
	if !found {
		return Entry{}, false
	}
	if candidate.Mark.Valid && !Plausible(best.Mark, candidate.Mark) {
		return Entry{}, false
	}
	return best, true
}

// Plausible reports whether a previous mark is a credible comparison point
// for the current one: the ratio of previous to current canonical value must
// lie strictly between 0.5 and 2.0.
func Plausible(previous, current model.CanonicalMark) bool {
	if !previous.Valid || !current.Valid || current.Value <= 0 {
		return false
	}
	if math.IsInf(previous.Value, 0) {
		return false
	}
	ratio := previous.Value / current.Value
	return ratio > plausibleRatioMin && ratio < plausibleRatioMax
}

// Improvement returns the signed percentage improvement of current over
// previous, positive meaning better: faster for timed events, farther or
// higher for field events. A previous value of 0 or infinity yields no
// figure.
func Improvement(previous, current model.CanonicalMark) (float64, bool) {
	if !previous.Valid || !current.Valid {
		return 0, false
	}
	if previous.Value <= 0 || math.IsInf(previous.Value, 0) || math.IsInf(current.Value, 0) {
		return 0, false
	}
	if previous.Field {
		return (current.Value - previous.Value) / previous.Value * 100, true
	}
	return (previous.Value - current.Value) / previous.Value * 100, true
}
