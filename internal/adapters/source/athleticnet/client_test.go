package athleticnet_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prairielabs/trackwatch/internal/adapters/source"
	"github.com/prairielabs/trackwatch/internal/adapters/source/athleticnet"
	. "github.com/smartystreets/goconvey/convey"
)

// bioPayload mixes the site's flag encodings: booleans on some results,
// confidence-like numbers on others, and a string-typed place.
const bioPayload = `{
	"resultsTF": [
		{
			"IDResult": 90345112,
			"MeetID": 407238,
			"EventID": 27,
			"Result": "16:50.00",
			"Place": "3",
			"SeasonID": 2026,
			"ResultDate": "2026-04-18T00:00:00",
			"MeetName": "Conference Last Chance",
			"PersonalBest": 90,
			"SeasonBest": true
		},
		{
			"IDResult": 90345100,
			"MeetID": 401001,
			"EventID": 27,
			"Result": "17:03.21",
			"Place": 5,
			"SeasonID": 12026,
			"ResultDate": "2026-02-07T00:00:00",
			"MeetName": "Indoor Championships",
			"PersonalBest": null,
			"SeasonBest": 0
		}
	],
	"resultsXC": [],
	"eventsTF": [{"IDEvent": 27, "Event": "5000 Meters"}],
	"meets": {}
}`

func TestClientRecentResults(t *testing.T) {
	Convey("Given a bio endpoint", t, func(c C) {
		ctx := context.Background()
		roster := []source.Athlete{{ID: "12345", Name: "Avery Quinn", Gender: "F"}}

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c.So(r.URL.Path, ShouldEqual, "/AthleteBio/GetAthleteBioData")
			c.So(r.URL.Query().Get("athleteId"), ShouldEqual, "12345")
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(bioPayload))
		}))
		defer srv.Close()

		client := athleticnet.NewClient(roster, "tf",
			athleticnet.WithBaseURL(srv.URL),
			athleticnet.WithAthletePause(0),
		)

		Convey("When fetching recent results with a cutoff", func() {
			cutoff := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
			results, err := client.RecentResults(ctx, cutoff)

			Convey("Then only results after the cutoff map through", func() {
				So(err, ShouldBeNil)
				So(results, ShouldHaveLength, 1)

				r := results[0]
				So(r.AthleteID, ShouldEqual, "12345")
				So(r.AthleteName, ShouldEqual, "Avery Quinn")
				So(r.Gender, ShouldEqual, "W")
				So(r.EventLabel, ShouldEqual, "5000 Meters")
				So(r.MarkText, ShouldEqual, "16:50.00")
				So(r.MeetID, ShouldEqual, "407238")
				So(r.MeetName, ShouldEqual, "Conference Last Chance")
				So(r.Place, ShouldEqual, 3)
				So(r.SeasonID, ShouldEqual, 2026)
				So(r.ResultID, ShouldEqual, "90345112")
				So(r.IsPR.Score, ShouldEqual, 90)
				So(r.IsSR.Bool, ShouldBeTrue)
			})
		})

		Convey("When fetching the athlete's history", func() {
			hist, err := client.History(ctx, "12345")

			Convey("Then every season's results come back", func() {
				So(err, ShouldBeNil)
				So(hist, ShouldHaveLength, 2)
				So(hist[1].SeasonID, ShouldEqual, 12026)
				So(hist[1].IsPR.Bool, ShouldBeFalse)
				So(hist[1].IsPR.Score, ShouldEqual, 0)
			})
		})
	})
}

func TestClientRetries(t *testing.T) {
	Convey("Given an endpoint that fails transiently", t, func() {
		ctx := context.Background()
		var calls atomic.Int64

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			if calls.Add(1) <= 2 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(bioPayload))
		}))
		defer srv.Close()

		client := athleticnet.NewClient(
			[]source.Athlete{{ID: "12345", Name: "Avery Quinn", Gender: "F"}}, "tf",
			athleticnet.WithBaseURL(srv.URL),
			athleticnet.WithAthletePause(0),
			athleticnet.WithMaxRetries(5),
		)

		Convey("When fetching", func() {
			results, err := client.RecentResults(ctx, time.Time{})

			Convey("Then the fetch retries until it succeeds", func() {
				So(err, ShouldBeNil)
				So(results, ShouldHaveLength, 2)
				So(calls.Load(), ShouldEqual, 3)
			})
		})

		Convey("When fetching again", func() {
			_, _ = client.RecentResults(ctx, time.Time{})
			before := calls.Load()
			_, err := client.History(ctx, "12345")

			Convey("Then the cached bio serves history without refetching", func() {
				So(err, ShouldBeNil)
				So(calls.Load(), ShouldEqual, before)
			})
		})
	})
}

func TestClientSkipsFailingAthlete(t *testing.T) {
	Convey("Given a roster where one athlete's bio always fails", t, func() {
		ctx := context.Background()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("athleteId") == "666" {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(bioPayload))
		}))
		defer srv.Close()

		client := athleticnet.NewClient(
			[]source.Athlete{
				{ID: "666", Name: "Flaky Feed", Gender: "M"},
				{ID: "12345", Name: "Avery Quinn", Gender: "F"},
			}, "tf",
			athleticnet.WithBaseURL(srv.URL),
			athleticnet.WithAthletePause(0),
			athleticnet.WithMaxRetries(0),
		)

		Convey("When fetching recent results", func() {
			results, err := client.RecentResults(ctx, time.Time{})

			Convey("Then the rest of the roster still goes through", func() {
				So(err, ShouldBeNil)
				So(results, ShouldHaveLength, 2)
				So(results[0].AthleteID, ShouldEqual, "12345")
			})
		})
	})
}
