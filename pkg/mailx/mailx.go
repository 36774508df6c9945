package mailx

import "context"

// Mailer sends a single pre-rendered email. Implementations must be safe for
// concurrent use. Callers log failures but do not retry; notification email
// is best-effort by design.
type Mailer interface {
	Send(ctx context.Context, to, subject, html string) error
}
