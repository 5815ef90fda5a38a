// Package mark converts the source's heterogeneous time and distance
// notations into canonical numeric marks.
package mark

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/prairielabs/trackwatch/internal/domain/model"
)

// Sources annotate marks with PR/SR suffixes, wind/altitude letters and
// asterisks. Timed marks keep only digits, colons and dots; field marks keep
// only digits and dots.
var (
	timedNoise = regexp.MustCompile(`[A-Za-z\s\*#]+`)
	fieldNoise = regexp.MustCompile(`[^0-9.]+`)
)

// IsNonFinish reports whether the mark text is a recognized non-finish token.
func IsNonFinish(text string) bool {
	switch strings.ToUpper(strings.TrimSpace(text)) {
	case "DNS", "DNF":
		return true
	}
	return false
}

// Parse converts mark text into a canonical mark. It never fails: malformed
// input and non-finish tokens yield an invalid mark with a +Inf sentinel.
//
// Timed marks accept SS.ss, MM:SS.ss and HH:MM:SS.ss. Field marks accept a
// plain float, optionally suffixed with a unit ("18.05m").
func Parse(text string, fieldEvent bool) model.CanonicalMark {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || IsNonFinish(trimmed) {
		return model.InvalidMark(fieldEvent)
	}
	if fieldEvent {
		return parseField(trimmed)
	}
	return parseTimed(trimmed)
}

func parseField(text string) model.CanonicalMark {
	cleaned := fieldNoise.ReplaceAllString(text, "")
	meters, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || meters <= 0 {
		return model.InvalidMark(true)
	}
	return model.CanonicalMark{Value: meters, Field: true, Valid: true}
}

func parseTimed(text string) model.CanonicalMark {
	cleaned := timedNoise.ReplaceAllString(text, "")
	if cleaned == "" {
		return model.InvalidMark(false)
	}

	parts := strings.Split(cleaned, ":")
	var seconds float64
	switch len(parts) {
	case 1:
		s, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return model.InvalidMark(false)
		}
		seconds = s
	case 2:
		m, errM := strconv.ParseFloat(parts[0], 64)
		s, errS := strconv.ParseFloat(parts[1], 64)
		if errM != nil || errS != nil {
			return model.InvalidMark(false)
		}
		seconds = m*60 + s
	case 3:
		h, errH := strconv.ParseFloat(parts[0], 64)
		m, errM := strconv.ParseFloat(parts[1], 64)
		s, errS := strconv.ParseFloat(parts[2], 64)
		if errH != nil || errM != nil || errS != nil {
			return model.InvalidMark(false)
		}
		seconds = h*3600 + m*60 + s
	default:
		return model.InvalidMark(false)
	}

	if seconds <= 0 {
		return model.InvalidMark(false)
	}
	return model.CanonicalMark{Value: seconds, Field: false, Valid: true}
}

// Format renders canonical seconds back into the source's time notation:
// "SS.ss" under a minute, "M:SS.ss" under an hour, "H:MM:SS.ss" beyond.
func Format(seconds float64) string {
	switch {
	case seconds >= 3600:
		h := int(seconds / 3600)
		m := int(seconds/60) % 60
		s := seconds - float64(h)*3600 - float64(m)*60
		return fmt.Sprintf("%d:%02d:%05.2f", h, m, s)
	case seconds >= 60:
		m := int(seconds / 60)
		s := seconds - float64(m)*60
		return fmt.Sprintf("%d:%05.2f", m, s)
	default:
		return fmt.Sprintf("%.2f", seconds)
	}
}

// FormatField renders canonical meters with the source's unit suffix.
func FormatField(meters float64) string {
	return fmt.Sprintf("%.2fm", meters)
}
