package report

import (
	"context"
	"net/smtp"
	"testing"
	"time"

	"github.com/prairielabs/trackwatch/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func emailResult() model.ClassifiedResult {
	return model.ClassifiedResult{
		RawResult: model.RawResult{
			AthleteName: "Avery Quinn",
			EventLabel:  "5000 Meters",
			MarkText:    "16:50.00",
			MeetName:    "Conference <Last> Chance",
			MeetDate:    time.Date(2026, 4, 18, 0, 0, 0, 0, time.UTC),
		},
		Record: model.RecordPR,
	}
}

func TestEmailNotifier(t *testing.T) {
	Convey("Given an email notifier with a stubbed transport", t, func() {
		ctx := context.Background()
		cfg := EmailConfig{
			Host:     "smtp.example.com",
			Port:     587,
			From:     "coach@example.com",
			To:       []string{"team@example.com"},
			Username: "coach@example.com",
		}

		var sentTo []string
		var sentMsg []byte
		n := NewEmailNotifier(cfg)
		n.send = func(_ string, _ smtp.Auth, _ string, to []string, msg []byte) error {
			sentTo = to
			sentMsg = msg
			return nil
		}

		Convey("When notifying with results", func() {
			t.Setenv("TRACKWATCH_SMTP_PASSWORD", "secret")
			err := n.Notify(ctx, "1 new result(s)", []model.ClassifiedResult{emailResult()})

			Convey("Then an HTML message goes to the recipients", func() {
				So(err, ShouldBeNil)
				So(sentTo, ShouldResemble, []string{"team@example.com"})
				body := string(sentMsg)
				So(body, ShouldContainSubstring, "Subject: 1 new result(s)")
				So(body, ShouldContainSubstring, "Content-Type: text/html")
				So(body, ShouldContainSubstring, "Avery Quinn")
				// Meet names are untrusted text and must be escaped.
				So(body, ShouldContainSubstring, "Conference &lt;Last&gt; Chance")
			})
		})

		Convey("When the batch is empty", func() {
			t.Setenv("TRACKWATCH_SMTP_PASSWORD", "secret")
			err := n.Notify(ctx, "nothing", nil)

			Convey("Then nothing is sent", func() {
				So(err, ShouldBeNil)
				So(sentMsg, ShouldBeNil)
			})
		})

		Convey("When the password is not set", func() {
			t.Setenv("TRACKWATCH_SMTP_PASSWORD", "")
			err := n.Notify(ctx, "x", []model.ClassifiedResult{emailResult()})

			Convey("Then the send fails up front", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}
