package classify_test

import (
	"testing"

	"github.com/prairielabs/trackwatch/internal/domain/best"
	"github.com/prairielabs/trackwatch/internal/domain/classify"
	"github.com/prairielabs/trackwatch/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func valid(value float64, text string) best.Entry {
	return best.Entry{
		Mark:     model.CanonicalMark{Value: value, Valid: true},
		MarkText: text,
	}
}

func TestClassifyNonFinish(t *testing.T) {
	Convey("Given a non-finish result", t, func() {
		c := classify.New()

		Convey("When flags are set anyway", func() {
			out := c.Classify(classify.Input{
				Mark:      model.InvalidMark(false),
				NonFinish: true,
				IsPR:      model.FlagTrue(),
				IsSR:      model.FlagTrue(),
			})

			Convey("Then DNS_DNF is terminal", func() {
				So(out.Record, ShouldEqual, model.RecordDNS)
				So(out.HasImprovement, ShouldBeFalse)
			})
		})
	})
}

func TestClassifyFlaggedPR(t *testing.T) {
	Convey("Given a result the source flags as a PR", t, func() {
		c := classify.New()
		cur := model.CanonicalMark{Value: 1010.00, Valid: true}

		Convey("When no previous best exists", func() {
			out := c.Classify(classify.Input{Mark: cur, IsPR: model.FlagTrue()})

			Convey("Then it is a first time", func() {
				So(out.Record, ShouldEqual, model.RecordFT)
			})
		})

		Convey("When the computed history agrees", func() {
			out := c.Classify(classify.Input{
				Mark:        cur,
				IsPR:        model.FlagTrue(),
				PrevBest:    valid(1023.21, "17:03.21"),
				HasPrevBest: true,
			})

			Convey("Then it is a PR with the improvement figure", func() {
				So(out.Record, ShouldEqual, model.RecordPR)
				So(out.PreviousBest, ShouldEqual, "17:03.21")
				So(out.HasImprovement, ShouldBeTrue)
				So(out.ImprovementPct, ShouldAlmostEqual, 1.29, 0.01)
			})
		})

		Convey("When the mark is worse than the standing best", func() {
			in := classify.Input{
				Mark:        model.CanonicalMark{Value: 1040.00, Valid: true},
				IsPR:        model.FlagTrue(),
				PrevBest:    valid(1023.21, "17:03.21"),
				HasPrevBest: true,
			}
			out := c.Classify(in)

			Convey("Then the stale flag downgrades to an ordinary result", func() {
				So(out.Record, ShouldEqual, model.RecordNone)
				So(out.HasDistanceFromPR, ShouldBeTrue)
				So(out.DistanceFromPRPct, ShouldBeGreaterThan, 0)
			})

			Convey("And with the downgrade policy off the flag is trusted", func() {
				trusting := classify.New(classify.WithStaleFlagDowngrade(false))
				out := trusting.Classify(in)
				So(out.Record, ShouldEqual, model.RecordPR)
			})
		})

		Convey("When no credible comparison point survived the filters", func() {
			out := c.Classify(classify.Input{
				Mark:        cur,
				IsPR:        model.FlagTrue(),
				PrevBest:    best.Entry{Mark: model.InvalidMark(false), MarkText: "DNF"},
				HasPrevBest: true,
			})

			Convey("Then it falls back to a first time without context", func() {
				So(out.Record, ShouldEqual, model.RecordFT)
				So(out.PreviousBest, ShouldBeEmpty)
			})
		})

		Convey("When the flag arrives as a confidence number", func() {
			asserted := c.Classify(classify.Input{Mark: cur, IsPR: model.SourceFlag{Score: 90}})
			weak := c.Classify(classify.Input{Mark: cur, IsPR: model.SourceFlag{Score: 89}})

			Convey("Then only scores at or above the threshold assert", func() {
				So(asserted.Record, ShouldEqual, model.RecordFT)
				So(weak.Record, ShouldEqual, model.RecordNone)
			})
		})
	})
}

func TestClassifyFlaggedSR(t *testing.T) {
	Convey("Given a result the source flags as a season record only", t, func() {
		c := classify.New()

		Convey("When a previous season best exists", func() {
			out := c.Classify(classify.Input{
				Mark:          model.CanonicalMark{Value: 1010.00, Valid: true},
				IsSR:          model.SourceFlag{Score: 1},
				PrevSeason:    valid(1023.21, "17:03.21"),
				HasPrevSeason: true,
			})

			Convey("Then it is an SR with the seasonal improvement", func() {
				So(out.Record, ShouldEqual, model.RecordSR)
				So(out.PreviousSeason, ShouldEqual, "17:03.21")
				So(out.HasImprovement, ShouldBeTrue)
			})
		})

		Convey("When no previous season best exists", func() {
			out := c.Classify(classify.Input{
				Mark: model.CanonicalMark{Value: 1010.00, Valid: true},
				IsSR: model.FlagTrue(),
			})

			Convey("Then it is an SR without a figure", func() {
				So(out.Record, ShouldEqual, model.RecordSR)
				So(out.HasImprovement, ShouldBeFalse)
			})
		})
	})
}

func TestClassifyOrdinary(t *testing.T) {
	Convey("Given an unflagged result", t, func() {
		c := classify.New()

		Convey("When it lands off the standing best", func() {
			out := c.Classify(classify.Input{
				Mark:        model.CanonicalMark{Value: 1040.00, Valid: true},
				PrevBest:    valid(1023.21, "17:03.21"),
				HasPrevBest: true,
			})

			Convey("Then it is NONE with distance-from-best context", func() {
				So(out.Record, ShouldEqual, model.RecordNone)
				So(out.PreviousBest, ShouldEqual, "17:03.21")
				So(out.HasDistanceFromPR, ShouldBeTrue)
				So(out.DistanceFromPRPct, ShouldBeGreaterThan, 0)
			})
		})

		Convey("When there is no history at all", func() {
			out := c.Classify(classify.Input{
				Mark: model.CanonicalMark{Value: 1040.00, Valid: true},
			})

			Convey("Then it is a bare NONE", func() {
				So(out.Record, ShouldEqual, model.RecordNone)
				So(out.HasDistanceFromPR, ShouldBeFalse)
			})
		})
	})
}
