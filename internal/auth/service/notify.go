package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/pressroomhq/pressroom/internal/auth/domain"
	"github.com/pressroomhq/pressroom/internal/auth/store"
	"github.com/pressroomhq/pressroom/pkg/mailx"
)

// Email types throttled through the email_rate_limits table.
const (
	EmailTypeVerification  = "verification"
	EmailTypeInvitation    = "invitation"
	EmailTypePasswordReset = "password_reset"
)

// minSendInterval is the per-(recipient, type) floor between sends.
const minSendInterval = time.Minute

// NotificationService sends best-effort notification email. Sends are
// throttled per recipient and type, and failures are logged, never
// propagated: email must not roll back the transaction that triggered it.
type NotificationService struct {
	Store  store.Store
	Mailer mailx.Mailer
	Logger *slog.Logger

	Now func() time.Time
}

func (s *NotificationService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return nowUTC()
}

func (s *NotificationService) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// Send delivers one email unless a send of the same type to the same
// address happened too recently. Callers run it in a goroutine with a
// background context; nothing here fails the caller.
func (s *NotificationService) Send(ctx context.Context, to, emailType, subject, html string) {
	log := s.logger().With(
		slog.String("to", to),
		slog.String("email_type", emailType),
	)

	now := s.now()
	last, err := s.Store.EmailRateLimits().GetEmailRateLimit(ctx, to, emailType)
	switch {
	case err == nil:
		if now.Sub(last.LastSentAt) < minSendInterval {
			log.Info("email skipped, rate limited",
				slog.Time("last_sent_at", last.LastSentAt),
			)
			return
		}
	case errors.Is(err, store.ErrNotFound):
		// first send for this (recipient, type)
	default:
		log.Warn("failed to read email rate limit, sending anyway", slog.Any("error", err))
	}

	if err := s.Mailer.Send(ctx, to, subject, html); err != nil {
		log.Error("failed to send email", slog.Any("error", err))
		return
	}

	err = s.Store.EmailRateLimits().UpsertEmailRateLimit(ctx, domain.EmailRateLimit{
		Identifier: to,
		EmailType:  emailType,
		LastSentAt: now,
	})
	if err != nil {
		log.Warn("failed to record email send", slog.Any("error", err))
	}
}
