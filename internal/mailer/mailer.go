// Package mailer sends reminder email. The Mailer interface keeps the sweep
// testable and lets deployments without SMTP fall back to log-only delivery.
package mailer

import (
	"context"
	"log/slog"
)

type Message struct {
	To      string
	BCC     string
	Subject string
	Text    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer writes the message to the log instead of delivering it. Used
// when no SMTP host is configured.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, msg Message) error {
	slog.Info("mail (not delivered, smtp unconfigured)",
		"to", msg.To, "bcc", msg.BCC, "subject", msg.Subject)
	return nil
}
