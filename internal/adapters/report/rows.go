// Package report renders classified results for people: tabular rows, CSV,
// a JSON feed and email notifications. It contains presentation only; every
// number it prints was decided upstream.
package report

import (
	"fmt"
	"strconv"

	"github.com/prairielabs/trackwatch/internal/domain/model"
)

// absent marks a column with no value.
const absent = "-"

// Row is one result rendered as display strings, in spreadsheet column order.
type Row struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	Event        string `json:"event"`
	Mark         string `json:"mark"`
	Place        string `json:"place"`
	Date         string `json:"date"`
	Meet         string `json:"meet"`
	PreviousBest string `json:"previous_best"`
	PreviousSR   string `json:"previous_sr"`
	Improvement  string `json:"improvement_pct"`
	FromPR       string `json:"from_pr_pct"`
}

// Header returns the column names in Row order.
func Header() []string {
	return []string{
		"Name", "Type", "Event", "Mark", "Place", "Date", "Meet",
		"Previous Best", "Previous SR", "% Improvement", "% from PR",
	}
}

// FromResult renders one classified result. Missing values become dashes:
// place 0, zero dates, absent previous marks and absent percentages.
func FromResult(r model.ClassifiedResult) Row {
	row := Row{
		Name:         r.AthleteName,
		Type:         string(r.Record),
		Event:        r.EventLabel,
		Mark:         r.MarkText,
		Place:        absent,
		Date:         absent,
		Meet:         r.MeetName,
		PreviousBest: orDash(r.PreviousBest),
		PreviousSR:   orDash(r.PreviousSeasonBest),
		Improvement:  absent,
		FromPR:       absent,
	}
	if r.Place > 0 {
		row.Place = strconv.Itoa(r.Place)
	}
	if !r.MeetDate.IsZero() {
		row.Date = r.MeetDate.Format("2006-01-02")
	}
	if r.HasImprovement {
		row.Improvement = fmt.Sprintf("%+.2f%%", r.ImprovementPct)
	}
	if r.HasDistanceFromPR {
		row.FromPR = fmt.Sprintf("%.2f%%", r.DistanceFromPRPct)
	}
	return row
}

// Rows renders a batch in its given order.
func Rows(results []model.ClassifiedResult) []Row {
	rows := make([]Row, len(results))
	for i, r := range results {
		rows[i] = FromResult(r)
	}
	return rows
}

// Columns returns the row's values in Header order.
func (r Row) Columns() []string {
	return []string{
		r.Name, r.Type, r.Event, r.Mark, r.Place, r.Date, r.Meet,
		r.PreviousBest, r.PreviousSR, r.Improvement, r.FromPR,
	}
}

func orDash(s string) string {
	if s == "" {
		return absent
	}
	return s
}
