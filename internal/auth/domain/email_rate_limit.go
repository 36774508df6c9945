package domain

import "time"

// EmailRateLimit throttles outbound notification email per recipient and
// email type. A send is skipped, not failed, when the previous send is too
// recent.
type EmailRateLimit struct {
	Identifier string // usually the recipient address
	EmailType  string // e.g. "verification", "invitation", "password_reset"
	LastSentAt time.Time
}
