package domain

import "time"

// Session is an opaque-token login session. The id itself is the bearer
// secret; rows are deleted on logout or lazily when an expired row is read.
type Session struct {
	ID        string // opaque, unguessable
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is no longer valid at the given time.
// Expiry is inclusive: a session checked exactly at ExpiresAt is expired.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
