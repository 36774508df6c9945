package mailx

import (
	"context"
	"log/slog"
)

// LogMailer writes the email to the log instead of sending it. Used in dev
// and in tests.
type LogMailer struct {
	Logger *slog.Logger
}

func (m *LogMailer) Send(ctx context.Context, to, subject, html string) error {
	logger := m.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("email (not sent, log mailer)",
		"to", to,
		"subject", subject,
		"bytes", len(html),
	)
	return nil
}
