package domain

import "time"

// Membership grants a user a role in a workspace. (WorkspaceID, UserID) is
// unique. Every workspace must retain at least one owner-rank membership at
// all times; any mutation that would break that is rejected atomically.
type Membership struct {
	WorkspaceID string
	UserID      string
	Role        Role
	JoinedAt    time.Time
}
