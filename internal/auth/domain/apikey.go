package domain

import "time"

// WorkspaceAPIKey is a long-lived bearer secret scoped to one workspace.
// Only the SHA-256 of the plaintext is stored; the plaintext exists exactly
// once, in the issue response. At most three live keys per workspace.
type WorkspaceAPIKey struct {
	ID          string
	WorkspaceID string
	Description string
	HashedKey   string // unique; sha256 of the plaintext, never the plaintext
	CreatedBy   string
	CreatedAt   time.Time
	LastUsedAt  *time.Time
	LastUsedIP  string
}

// MaxWorkspaceAPIKeys is the per-workspace live key quota.
const MaxWorkspaceAPIKeys = 3
