package mark_test

import (
	"testing"

	"github.com/prairielabs/trackwatch/internal/domain/mark"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParseTimed(t *testing.T) {
	Convey("Given timed marks in the source's notations", t, func() {
		Convey("When parsing a plain seconds mark", func() {
			m := mark.Parse("51.07", false)

			Convey("Then it should yield canonical seconds", func() {
				So(m.Valid, ShouldBeTrue)
				So(m.Field, ShouldBeFalse)
				So(m.Value, ShouldAlmostEqual, 51.07, 1e-9)
			})
		})

		Convey("When parsing a minutes:seconds mark", func() {
			m := mark.Parse("16:27.78", false)

			Convey("Then it should convert minutes", func() {
				So(m.Valid, ShouldBeTrue)
				So(m.Value, ShouldAlmostEqual, 987.78, 1e-9)
			})
		})

		Convey("When parsing an hours:minutes:seconds mark", func() {
			m := mark.Parse("1:02:03.50", false)

			Convey("Then it should convert hours and minutes", func() {
				So(m.Valid, ShouldBeTrue)
				So(m.Value, ShouldAlmostEqual, 3723.50, 1e-9)
			})
		})

		Convey("When the mark carries record suffixes and annotations", func() {
			m := mark.Parse("16:27.78 PR", false)
			annotated := mark.Parse("4:12.30a*", false)

			Convey("Then the noise should be stripped before parsing", func() {
				So(m.Valid, ShouldBeTrue)
				So(m.Value, ShouldAlmostEqual, 987.78, 1e-9)
				So(annotated.Valid, ShouldBeTrue)
				So(annotated.Value, ShouldAlmostEqual, 252.30, 1e-9)
			})
		})

		Convey("When the mark is malformed", func() {
			m := mark.Parse("::", false)
			empty := mark.Parse("   ", false)

			Convey("Then it should yield an invalid sentinel, never an error", func() {
				So(m.Valid, ShouldBeFalse)
				So(empty.Valid, ShouldBeFalse)
			})
		})
	})
}

func TestParseField(t *testing.T) {
	Convey("Given field marks", t, func() {
		Convey("When parsing a mark with a unit suffix", func() {
			m := mark.Parse("18.05m", true)

			Convey("Then it should yield canonical meters", func() {
				So(m.Valid, ShouldBeTrue)
				So(m.Field, ShouldBeTrue)
				So(m.Value, ShouldAlmostEqual, 18.05, 1e-9)
			})
		})

		Convey("When parsing a no-height token", func() {
			m := mark.Parse("NH", true)

			Convey("Then it should be invalid", func() {
				So(m.Valid, ShouldBeFalse)
			})
		})
	})
}

func TestNonFinish(t *testing.T) {
	Convey("Given non-finish tokens", t, func() {
		Convey("When checking DNS and DNF in any case", func() {
			Convey("Then they should be recognized and parse invalid", func() {
				So(mark.IsNonFinish("DNS"), ShouldBeTrue)
				So(mark.IsNonFinish("dnf"), ShouldBeTrue)
				So(mark.IsNonFinish(" DNF "), ShouldBeTrue)
				So(mark.IsNonFinish("16:27.78"), ShouldBeFalse)
				So(mark.Parse("DNS", false).Valid, ShouldBeFalse)
			})
		})
	})
}

func TestFormatRoundTrip(t *testing.T) {
	Convey("Given canonical second values", t, func() {
		Convey("When formatting and reparsing", func() {
			values := []float64{51.07, 112.01, 987.78, 3723.50}

			Convey("Then the round trip should agree within a hundredth", func() {
				for _, v := range values {
					got := mark.Parse(mark.Format(v), false)
					So(got.Valid, ShouldBeTrue)
					So(got.Value, ShouldAlmostEqual, v, 0.01)
				}
			})
		})

		Convey("When formatting representative values", func() {
			Convey("Then each should use the source's notation", func() {
				So(mark.Format(51.07), ShouldEqual, "51.07")
				So(mark.Format(987.78), ShouldEqual, "16:27.78")
				So(mark.Format(3723.5), ShouldEqual, "1:02:03.50")
			})
		})

		Convey("When formatting field marks", func() {
			Convey("Then they should carry the meter suffix", func() {
				So(mark.FormatField(18.05), ShouldEqual, "18.05m")
			})
		})
	})
}
