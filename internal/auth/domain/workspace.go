package domain

import "time"

// Workspace is the tenant boundary. All memberships, invitations, and API
// keys are scoped to exactly one workspace.
type Workspace struct {
	ID        string
	Name      string
	Slug      string // unique
	CreatedAt time.Time
	UpdatedAt time.Time
}
