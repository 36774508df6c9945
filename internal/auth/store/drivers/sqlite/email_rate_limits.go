package sqlite

import (
	"context"

	"github.com/pressroomhq/pressroom/internal/auth/domain"
)

type emailRateLimitsRepo struct {
	q queryer
}

func (r *emailRateLimitsRepo) GetEmailRateLimit(ctx context.Context, identifier, emailType string) (domain.EmailRateLimit, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT identifier, email_type, last_sent_at
		FROM email_rate_limits WHERE identifier = ? AND email_type = ?`,
		identifier, emailType)

	var rl domain.EmailRateLimit
	if err := row.Scan(&rl.Identifier, &rl.EmailType, &rl.LastSentAt); err != nil {
		return domain.EmailRateLimit{}, mapNotFound(err)
	}
	return rl, nil
}

func (r *emailRateLimitsRepo) UpsertEmailRateLimit(ctx context.Context, rl domain.EmailRateLimit) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO email_rate_limits (identifier, email_type, last_sent_at)
		VALUES (?, ?, ?)
		ON CONFLICT (identifier, email_type) DO UPDATE SET last_sent_at = excluded.last_sent_at`,
		rl.Identifier, rl.EmailType, rl.LastSentAt,
	)
	return err
}
