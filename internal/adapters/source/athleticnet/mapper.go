package athleticnet

import (
	"strconv"
	"time"

	"github.com/prairielabs/trackwatch/internal/adapters/source"
	"github.com/prairielabs/trackwatch/internal/domain/model"
)

// mapBio flattens a bio payload into raw results. Track results resolve
// their event names through the eventsTF lookup; cross country results name
// the event by distance.
func mapBio(bio *bioResponse, athlete source.Athlete, sport string) []model.RawResult {
	if bio == nil {
		return nil
	}

	events := make(map[int]string, len(bio.EventsTF))
	for _, e := range bio.EventsTF {
		events[e.IDEvent] = e.Event
	}

	results := bio.ResultsTF
	if sport == "xc" {
		results = bio.ResultsXC
	}

	out := make([]model.RawResult, 0, len(results))
	for _, r := range results {
		out = append(out, mapResult(r, athlete, events))
	}
	return out
}

func mapResult(r bioResult, athlete source.Athlete, events map[int]string) model.RawResult {
	eventLabel := r.Event
	if eventLabel == "" {
		if name, ok := events[r.EventID]; ok {
			eventLabel = name
		} else if r.Distance > 0 {
			eventLabel = strconv.Itoa(r.Distance) + " Meters"
		} else {
			eventLabel = "Event " + strconv.Itoa(r.EventID)
		}
	}

	meetName := r.MeetName
	if meetName == "" {
		meetName = "Unknown Meet"
	}

	resultID := ""
	if r.IDResult != 0 {
		resultID = strconv.FormatInt(r.IDResult, 10)
	}

	return model.RawResult{
		AthleteID:   athlete.ID,
		AthleteName: athlete.Name,
		Gender:      normalizeGender(athlete.Gender),
		EventLabel:  eventLabel,
		MarkText:    r.Result,
		MeetID:      strconv.FormatInt(r.MeetID, 10),
		MeetName:    meetName,
		MeetDate:    parseResultDate(r.ResultDate, r.MeetDate),
		Place:       int(r.Place),
		SeasonID:    r.SeasonID,
		ResultID:    resultID,
		IsPR:        r.PersonalBest.SourceFlag,
		IsSR:        r.SeasonBest.SourceFlag,
	}
}

// parseResultDate accepts the site's "2006-01-02T15:04:05" stamps, keeping
// only the date part. A zero time stands in for missing or malformed dates.
func parseResultDate(resultDate, meetDate string) time.Time {
	for _, s := range []string{resultDate, meetDate} {
		if len(s) < 10 {
			continue
		}
		if t, err := time.Parse("2006-01-02", s[:10]); err == nil {
			return t
		}
	}
	return time.Time{}
}

// normalizeGender maps the roster's gender spellings to "M"/"W".
func normalizeGender(g string) string {
	switch g {
	case "M", "Male", "m":
		return "M"
	case "F", "Female", "W", "f", "w":
		return "W"
	}
	return ""
}
