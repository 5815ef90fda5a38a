// Package standards holds NCAA Division II qualifying standards and computes
// how far a mark sits from them.
package standards

import (
	"math"
	"strings"

	"github.com/prairielabs/trackwatch/internal/domain/model"
)

// Table maps canonical event name -> standard, in seconds for timed events
// and meters for field events, per gender ("M"/"W") and season.
type Table map[string]float64

// 2025-26 NCAA Division II provisional qualifying standards. Keyed by
// canonical event names as produced by the event normalizer.
var (
	indoorMen = Table{
		"60 Meters":    6.85,
		"200 Meters":   21.65,
		"400 Meters":   48.30,
		"800 Meters":   112.01,
		"Mile":         247.63,
		"3000 Meters":  492.89,
		"5000 Meters":  861.50,
		"60 Hurdles":   8.05,
		"High Jump":    2.08,
		"Pole Vault":   4.95,
		"Long Jump":    7.35,
		"Triple Jump":  14.80,
		"Shot Put":     17.20,
		"Weight Throw": 19.00,
	}
	indoorWomen = Table{
		"60 Meters":    7.61,
		"200 Meters":   24.63,
		"400 Meters":   56.50,
		"800 Meters":   133.30,
		"Mile":         294.48,
		"3000 Meters":  590.34,
		"5000 Meters":  1023.21,
		"60 Hurdles":   8.79,
		"High Jump":    1.67,
		"Pole Vault":   3.72,
		"Long Jump":    5.72,
		"Triple Jump":  11.74,
		"Shot Put":     13.64,
		"Weight Throw": 17.26,
	}
	outdoorMen = Table{
		"100 Meters":        10.55,
		"200 Meters":        21.30,
		"400 Meters":        47.20,
		"800 Meters":        110.50,
		"1500 Meters":       228.00,
		"5000 Meters":       855.00,
		"10000 Meters":      1770.00,
		"110 Hurdles":       14.30,
		"400 Hurdles":       52.50,
		"3000 Steeplechase": 555.00,
		"High Jump":         2.10,
		"Pole Vault":        5.00,
		"Long Jump":         7.45,
		"Triple Jump":       15.00,
		"Shot Put":          17.50,
		"Discus":            52.00,
		"Hammer":            56.00,
		"Javelin":           62.00,
	}
	outdoorWomen = Table{
		"100 Meters":        11.75,
		"200 Meters":        24.20,
		"400 Meters":        55.50,
		"800 Meters":        130.00,
		"1500 Meters":       270.00,
		"5000 Meters":       1005.00,
		"10000 Meters":      2100.00,
		"100 Hurdles":       14.00,
		"400 Hurdles":       61.00,
		"3000 Steeplechase": 660.00,
		"High Jump":         1.70,
		"Pole Vault":        3.80,
		"Long Jump":         5.85,
		"Triple Jump":       12.00,
		"Shot Put":          14.00,
		"Discus":            47.00,
		"Hammer":            54.00,
		"Javelin":           44.00,
	}
)

func table(indoor bool, gender string) (Table, bool) {
	switch {
	case indoor && gender == "M":
		return indoorMen, true
	case indoor && gender == "W":
		return indoorWomen, true
	case !indoor && gender == "M":
		return outdoorMen, true
	case !indoor && gender == "W":
		return outdoorWomen, true
	}
	return nil, false
}

// Lookup returns the qualifying standard for a canonical event name. Falls
// back to a substring match for event keys the normalizer could not fully
// canonicalize.
func Lookup(eventKey string, indoor bool, gender string) (float64, bool) {
	t, ok := table(indoor, gender)
	if !ok {
		return 0, false
	}
	if std, ok := t[eventKey]; ok {
		return std, true
	}
	lower := strings.ToLower(eventKey)
	for name, std := range t {
		nl := strings.ToLower(name)
		if strings.Contains(lower, nl) || strings.Contains(nl, lower) {
			return std, true
		}
	}
	return 0, false
}

// DiffPct returns the signed percentage distance of a mark from a standard,
// positive meaning the standard is met or beaten: under it for timed events,
// over it for field events.
func DiffPct(standard float64, m model.CanonicalMark) (float64, bool) {
	if !m.Valid || standard <= 0 || math.IsInf(m.Value, 0) {
		return 0, false
	}
	if m.Field {
		return (m.Value - standard) / standard * 100, true
	}
	return (standard - m.Value) / standard * 100, true
}
