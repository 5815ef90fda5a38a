package rankings_test

import (
	"testing"

	"github.com/prairielabs/trackwatch/internal/domain/rankings"
	. "github.com/smartystreets/goconvey/convey"
)

func TestPlaceTimed(t *testing.T) {
	Convey("Given a timed performance list with two qualifying spots", t, func() {
		book := rankings.NewBook(rankings.WithQualifyingSpots(2))
		book.Add(rankings.List{
			EventKey: "5000 Meters",
			Gender:   "W",
			Marks:    []float64{870.0, 850.0, 860.0}, // unsorted on purpose
		})

		Convey("When a mark slots into the middle", func() {
			p, ok := book.Place("5000 Meters", "W", 855.0)

			Convey("Then rank and both gaps are computed", func() {
				So(ok, ShouldBeTrue)
				So(p.Rank, ShouldEqual, 2)
				So(p.Ranked, ShouldBeTrue)
				So(p.HasGapBehind, ShouldBeTrue)
				So(p.GapBehind, ShouldAlmostEqual, 5.0, 1e-9)
				So(p.HasGapAhead, ShouldBeTrue)
				So(p.GapAhead, ShouldAlmostEqual, 5.0, 1e-9)
			})
		})

		Convey("When a mark lands outside the qualifying spots", func() {
			p, ok := book.Place("5000 Meters", "W", 880.0)

			Convey("Then the gap to the last qualifying mark is reported", func() {
				So(ok, ShouldBeTrue)
				So(p.Rank, ShouldEqual, 4)
				So(p.Ranked, ShouldBeFalse)
				So(p.HasGapToQualify, ShouldBeTrue)
				So(p.GapToQualify, ShouldAlmostEqual, 20.0, 1e-9)
			})
		})

		Convey("When no list exists for the event and gender", func() {
			_, ok := book.Place("5000 Meters", "M", 855.0)

			Convey("Then placement is unavailable", func() {
				So(ok, ShouldBeFalse)
			})
		})
	})
}

func TestPlaceField(t *testing.T) {
	Convey("Given a field performance list", t, func() {
		book := rankings.NewBook(rankings.WithQualifyingSpots(2))
		book.Add(rankings.List{
			EventKey: "Pole Vault",
			Gender:   "W",
			Field:    true,
			Marks:    []float64{3.60, 3.90, 3.75},
		})

		Convey("When a higher mark arrives", func() {
			p, ok := book.Place("Pole Vault", "W", 3.80)

			Convey("Then higher ranks better", func() {
				So(ok, ShouldBeTrue)
				So(p.Rank, ShouldEqual, 2)
				So(p.Ranked, ShouldBeTrue)
			})
		})

		Convey("When the mark trails the qualifying spots", func() {
			p, ok := book.Place("Pole Vault", "W", 3.50)

			Convey("Then the deficit is in meters below the cutoff", func() {
				So(ok, ShouldBeTrue)
				So(p.Ranked, ShouldBeFalse)
				So(p.HasGapToQualify, ShouldBeTrue)
				So(p.GapToQualify, ShouldAlmostEqual, 0.25, 1e-9)
			})
		})
	})
}
