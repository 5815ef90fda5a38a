// Package event maps the source's free-text event labels onto canonical
// event identities used for cross-record comparison.
package event

import (
	"regexp"
	"strconv"
	"strings"
)

// metersPerMile is the conversion used when a label carries a mile distance.
const metersPerMile = 1609.34

// Identity is the canonical key grouping all textual variants of the same
// competitive event.
type Identity struct {
	Key      string // canonical display name, e.g. "5000 Meters"
	Distance int    // meters; 0 for field events and unresolved labels
	Field    bool
}

// canonical maps lowercased source variants to canonical event names.
// Sources use inconsistent unit suffixes and abbreviations for the same
// event, sometimes within a single payload.
var canonical = map[string]string{
	// sprints
	"55 meters": "55 Meters", "55m": "55 Meters", "55": "55 Meters",
	"60 meter": "60 Meters", "60 meters": "60 Meters", "60m": "60 Meters", "60": "60 Meters",
	"100 meter": "100 Meters", "100 meters": "100 Meters", "100m": "100 Meters", "100": "100 Meters",
	"200 meter": "200 Meters", "200 meters": "200 Meters", "200m": "200 Meters", "200": "200 Meters",
	"400 meter": "400 Meters", "400 meters": "400 Meters", "400m": "400 Meters", "400": "400 Meters",

	// middle and long distance
	"800 meter": "800 Meters", "800 meters": "800 Meters", "800m": "800 Meters", "800": "800 Meters",
	"1000 meter": "1000 Meters", "1000 meters": "1000 Meters", "1000m": "1000 Meters", "1000": "1000 Meters",
	"1500 meter": "1500 Meters", "1500 meters": "1500 Meters", "1500m": "1500 Meters", "1500": "1500 Meters",
	"1 mile": "Mile", "mile": "Mile", "1600 meters": "Mile", "1600m": "Mile",
	"3000 meter": "3000 Meters", "3000 meters": "3000 Meters", "3000m": "3000 Meters", "3000": "3000 Meters",
	"5000 meter": "5000 Meters", "5000 meters": "5000 Meters", "5000m": "5000 Meters", "5000": "5000 Meters", "5k": "5000 Meters",
	"8000 meters": "8000 Meters", "8000m": "8000 Meters", "8k": "8000 Meters",
	"10000 meter": "10000 Meters", "10000 meters": "10000 Meters", "10000m": "10000 Meters", "10000": "10000 Meters", "10k": "10000 Meters",

	// hurdles and steeple
	"60 hurdles": "60 Hurdles", "60m hurdles": "60 Hurdles", "60h": "60 Hurdles",
	"100 hurdles": "100 Hurdles", "100m hurdles": "100 Hurdles", "100h": "100 Hurdles",
	"110 hurdles": "110 Hurdles", "110m hurdles": "110 Hurdles", "110h": "110 Hurdles",
	"400 hurdles": "400 Hurdles", "400m hurdles": "400 Hurdles", "400h": "400 Hurdles",
	"steeplechase": "3000 Steeplechase", "3000 steeplechase": "3000 Steeplechase", "3000m steeplechase": "3000 Steeplechase",

	// jumps and vault
	"high jump": "High Jump", "hj": "High Jump",
	"pole vault": "Pole Vault", "pv": "Pole Vault",
	"long jump": "Long Jump", "lj": "Long Jump",
	"triple jump": "Triple Jump", "tj": "Triple Jump",

	// throws
	"shot put": "Shot Put", "sp": "Shot Put",
	"weight throw": "Weight Throw", "wt": "Weight Throw",
	"discus": "Discus", "discus throw": "Discus",
	"hammer": "Hammer", "hammer throw": "Hammer",
	"javelin": "Javelin", "javelin throw": "Javelin",
}

// distances carried by canonical track event names that the name itself
// does not spell out in meters.
var canonicalDistance = map[string]int{
	"Mile":              1609,
	"3000 Steeplechase": 3000,
}

// fieldTokens identify field events (higher mark is better) by substring.
var fieldTokens = []string{"jump", "vault", "put", "throw", "discus", "hammer", "javelin"}

// comparable lists the events whose marks carry over between indoor and
// outdoor seasons within one academic year. Sprints and hurdles do not.
var comparable = map[string]bool{
	"800 Meters":   true,
	"1000 Meters":  true,
	"1500 Meters":  true,
	"Mile":         true,
	"3000 Meters":  true,
	"5000 Meters":  true,
	"10000 Meters": true,
	"High Jump":    true,
	"Pole Vault":   true,
	"Long Jump":    true,
	"Triple Jump":  true,
	"Shot Put":     true,
}

var (
	metersRe = regexp.MustCompile(`(?i)(\d+,?\d*)\s*(?:meters?|m)\b`)
	milesRe  = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*miles?\b`)
	kiloRe   = regexp.MustCompile(`(?i)(\d+)\s*k\b`)
)

// Normalize maps a raw event label to its canonical identity. Labels with no
// table entry fall back to numeric distance extraction; labels with neither
// keep their cleaned text as the key so records for the same unknown label
// still group together.
func Normalize(label string) Identity {
	cleaned := strings.Join(strings.Fields(label), " ")
	lower := strings.ToLower(cleaned)

	if name, ok := canonical[lower]; ok {
		return Identity{Key: name, Distance: distanceOf(name), Field: IsFieldLabel(name)}
	}

	if IsFieldLabel(cleaned) {
		return Identity{Key: cleaned, Field: true}
	}

	if d, ok := ExtractDistance(cleaned); ok {
		name := strconv.Itoa(d) + " Meters"
		if canon, ok := canonical[strings.ToLower(name)]; ok {
			name = canon
		}
		return Identity{Key: name, Distance: d}
	}

	return Identity{Key: cleaned}
}

func distanceOf(name string) int {
	if d, ok := canonicalDistance[name]; ok {
		return d
	}
	if d, ok := ExtractDistance(name); ok {
		return d
	}
	return 0
}

// IsFieldLabel reports whether a label names a field event. Field events are
// a fixed set: jumps, vaults and throws.
func IsFieldLabel(label string) bool {
	lower := strings.ToLower(label)
	for _, tok := range fieldTokens {
		if strings.Contains(lower, tok) {
			return true
		}
	}
	return false
}

// ComparableAcrossSeasons reports whether marks for this event carry over
// between indoor and outdoor seasons.
func (id Identity) ComparableAcrossSeasons() bool {
	return comparable[id.Key]
}

// ExtractDistance pulls a meter distance out of a free-text label, trying
// meters, miles (at 1609.34 m/mile) and kilometers in that order.
func ExtractDistance(label string) (int, bool) {
	if m := metersRe.FindStringSubmatch(label); m != nil {
		d, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
		if err == nil && d > 0 {
			return d, true
		}
	}
	if m := milesRe.FindStringSubmatch(label); m != nil {
		miles, err := strconv.ParseFloat(m[1], 64)
		if err == nil && miles > 0 {
			return int(miles * metersPerMile), true
		}
	}
	if m := kiloRe.FindStringSubmatch(label); m != nil {
		k, err := strconv.Atoi(m[1])
		if err == nil && k > 0 {
			return k * 1000, true
		}
	}
	return 0, false
}

// ClosestDistance reconciles a target distance against distances already
// seen for the athlete, tolerating unit-conversion drift of up to
// max(100 m, 5% of target). Returns the best match within tolerance.
func ClosestDistance(target int, known []int) (int, bool) {
	tolerance := float64(target) * 0.05
	if tolerance < 100 {
		tolerance = 100
	}
	best := 0
	bestDiff := tolerance
	found := false
	for _, d := range known {
		diff := float64(d - target)
		if diff < 0 {
			diff = -diff
		}
		if diff < bestDiff {
			best = d
			bestDiff = diff
			found = true
		}
	}
	return best, found
}

// indoorSeasonOffset is the source's season id convention: the indoor season
// id for academic year Y is Y+10000, while outdoor and cross country use Y.
const indoorSeasonOffset = 10000

// IsOutdoorSeason reports whether a season id denotes an outdoor (or cross
// country) season.
func IsOutdoorSeason(seasonID int) bool {
	return seasonID < indoorSeasonOffset
}

// IndoorSibling returns the indoor season id for the same academic year as
// an outdoor season id.
func IndoorSibling(seasonID int) int {
	return seasonID + indoorSeasonOffset
}
