package domain

import "time"

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationRevoked  InvitationStatus = "revoked"
)

// Invitation is a token-bound, email-bound, time-limited offer to join a
// workspace at a given role. At most one pending row may exist per
// (workspace, email). A pending row becomes semantically expired once
// ExpiresAt passes; expiry is checked at read time, not by a background
// transition.
type Invitation struct {
	ID          string
	WorkspaceID string
	Email       string
	Role        Role
	InvitedBy   string
	Token       string // opaque, unguessable
	Status      InvitationStatus
	InvitedAt   time.Time
	ExpiresAt   time.Time
}

// Expired reports whether a pending invitation has timed out at the given
// time. Inclusive at the boundary, matching session expiry.
func (i Invitation) Expired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}

// Acceptable reports whether the invitation can still be accepted.
func (i Invitation) Acceptable(now time.Time) bool {
	return i.Status == InvitationPending && !i.Expired(now)
}
