package report

import (
	"context"
	"fmt"
	"html"
	"net/smtp"
	"os"
	"strings"

	"github.com/prairielabs/trackwatch/internal/domain/model"
	"github.com/prairielabs/trackwatch/pkg/logger"
)

// passwordEnv names the environment variable holding the SMTP password, kept
// out of config files.
const passwordEnv = "TRACKWATCH_SMTP_PASSWORD"

// Notifier delivers a batch of new results to subscribers.
type Notifier interface {
	Notify(ctx context.Context, subject string, results []model.ClassifiedResult) error
}

// EmailConfig configures SMTP delivery.
type EmailConfig struct {
	Host     string   `koanf:"host"`
	Port     int      `koanf:"port"`
	From     string   `koanf:"from"`
	To       []string `koanf:"to"`
	Username string   `koanf:"username"`
}

// EmailNotifier sends new-result notifications as an HTML table over SMTP.
type EmailNotifier struct {
	cfg    EmailConfig
	send   func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
	logger logger.Logger
}

// NewEmailNotifier creates a notifier. The SMTP password is read from the
// TRACKWATCH_SMTP_PASSWORD environment variable at send time.
func NewEmailNotifier(cfg EmailConfig) *EmailNotifier {
	return &EmailNotifier{
		cfg:    cfg,
		send:   smtp.SendMail,
		logger: logger.Get().Named("email"),
	}
}

// Notify renders and sends the results. An empty batch sends nothing.
func (n *EmailNotifier) Notify(ctx context.Context, subject string, results []model.ClassifiedResult) error {
	if len(results) == 0 {
		return nil
	}
	password := os.Getenv(passwordEnv)
	if password == "" {
		return fmt.Errorf("email: %s not set", passwordEnv)
	}

	body := renderHTML(results)
	msg := buildMessage(n.cfg.From, n.cfg.To, subject, body)
	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)
	auth := smtp.PlainAuth("", n.cfg.Username, password, n.cfg.Host)

	if err := n.send(addr, auth, n.cfg.From, n.cfg.To, msg); err != nil {
		return fmt.Errorf("email: %w", err)
	}
	n.logger.Info(ctx, "notification sent",
		logger.Int("results", len(results)),
		logger.Int("recipients", len(n.cfg.To)),
	)
	return nil
}

func buildMessage(from string, to []string, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}

// renderHTML builds the notification table. Results arrive already in
// presentation order, so the table just follows the slice.
func renderHTML(results []model.ClassifiedResult) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	fmt.Fprintf(&b, "<p>%d new result(s):</p>", len(results))
	b.WriteString(`<table border="1" cellpadding="4" cellspacing="0">`)

	b.WriteString("<tr>")
	for _, h := range Header() {
		fmt.Fprintf(&b, "<th>%s</th>", html.EscapeString(h))
	}
	b.WriteString("</tr>")

	for _, r := range results {
		b.WriteString("<tr>")
		for _, col := range FromResult(r).Columns() {
			fmt.Fprintf(&b, "<td>%s</td>", html.EscapeString(col))
		}
		b.WriteString("</tr>")
	}

	b.WriteString("</table></body></html>")
	return b.String()
}
