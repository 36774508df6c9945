package store

import (
	"context"
	"errors"
	"time"

	"github.com/pressroomhq/pressroom/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite for now)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable, and a Tx facility for the multi-step operations that must be
// atomic (last-owner guard, key quota, invitation acceptance).
type Store interface {
	Users() Users
	Workspaces() Workspaces
	Memberships() Memberships
	Sessions() Sessions
	Invitations() Invitations
	APIKeys() APIKeys
	EmailRateLimits() EmailRateLimits

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed. This is the
	// recommended way to run check-then-act sequences: the precondition
	// read and the write commit or fail as a unit.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// CreateUser inserts a new user (id is provided by app via ULID).
	// Returns ErrAlreadyExists when the email is taken.
	CreateUser(ctx context.Context, u domain.User) error

	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail is used by login and by the invitation flow, which only
	// admits existing, verified accounts.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// MarkEmailVerified flips email_verified once and bumps updated_at.
	MarkEmailVerified(ctx context.Context, userID string) error

	// UpdatePasswordHash sets the password_hash (argon2) and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error
}

type Workspaces interface {
	// CreateWorkspace inserts a new workspace. Returns ErrAlreadyExists when
	// the slug is taken.
	CreateWorkspace(ctx context.Context, w domain.Workspace) error

	GetWorkspaceByID(ctx context.Context, id string) (domain.Workspace, error)
	GetWorkspaceBySlug(ctx context.Context, slug string) (domain.Workspace, error)
}

type Memberships interface {
	// CreateMembership inserts a membership row. Returns ErrAlreadyExists
	// when the (workspace, user) pair already holds one.
	CreateMembership(ctx context.Context, m domain.Membership) error

	GetMembership(ctx context.Context, workspaceID, userID string) (domain.Membership, error)

	// ListMemberships returns all members of a workspace ordered by join date.
	ListMemberships(ctx context.Context, workspaceID string) ([]domain.Membership, error)

	// UpdateMembershipRole sets the role for an existing membership.
	UpdateMembershipRole(ctx context.Context, workspaceID, userID string, role domain.Role) error

	// DeleteMembership removes the row; ErrNotFound if no row matched.
	DeleteMembership(ctx context.Context, workspaceID, userID string) error

	// CountOwners returns the number of owner-rank memberships in the
	// workspace. Must be called inside the same transaction as the mutation
	// it guards.
	CountOwners(ctx context.Context, workspaceID string) (int, error)
}

type Sessions interface {
	CreateSession(ctx context.Context, s domain.Session) error
	GetSession(ctx context.Context, id string) (domain.Session, error)

	// DeleteSession removes a single session (logout, lazy expiry).
	DeleteSession(ctx context.Context, id string) error

	// DeleteUserSessions removes every session for a user (password reset).
	DeleteUserSessions(ctx context.Context, userID string) error

	// DeleteExpiredSessions is housekeeping; lazy read-time deletion remains
	// the correctness mechanism.
	DeleteExpiredSessions(ctx context.Context, now time.Time) error
}

type Invitations interface {
	CreateInvitation(ctx context.Context, inv domain.Invitation) error

	GetInvitationByID(ctx context.Context, id string) (domain.Invitation, error)
	GetInvitationByToken(ctx context.Context, token string) (domain.Invitation, error)

	// GetPendingInvitation returns the pending row for (workspace, email),
	// regardless of time expiry; the caller decides whether it still counts.
	GetPendingInvitation(ctx context.Context, workspaceID, email string) (domain.Invitation, error)

	// ListInvitationsByWorkspace returns all invitation rows for a workspace
	// ordered by invite date (newest first).
	ListInvitationsByWorkspace(ctx context.Context, workspaceID string) ([]domain.Invitation, error)

	// UpdateInvitationStatus transitions a row's status.
	UpdateInvitationStatus(ctx context.Context, id string, status domain.InvitationStatus) error

	// DeleteExpiredInvitations purges pending rows whose expiry passed
	// before the cutoff (housekeeping).
	DeleteExpiredInvitations(ctx context.Context, cutoff time.Time) error
}

type APIKeys interface {
	CreateAPIKey(ctx context.Context, k domain.WorkspaceAPIKey) error

	GetAPIKeyByHash(ctx context.Context, hashedKey string) (domain.WorkspaceAPIKey, error)

	ListAPIKeys(ctx context.Context, workspaceID string) ([]domain.WorkspaceAPIKey, error)

	// CountAPIKeys returns the number of live keys for a workspace. Must run
	// inside the same transaction as the insert it guards.
	CountAPIKeys(ctx context.Context, workspaceID string) (int, error)

	// DeleteAPIKey is scoped to the workspace; ErrNotFound if no row
	// matched, preventing cross-workspace deletion.
	DeleteAPIKey(ctx context.Context, workspaceID, keyID string) error

	// TouchAPIKeyUsage records last_used_at/last_used_ip. Best-effort; a
	// failure must never fail the authorization decision.
	TouchAPIKeyUsage(ctx context.Context, keyID string, usedAt time.Time, ip string) error
}

type EmailRateLimits interface {
	// GetEmailRateLimit returns the last send for (identifier, type).
	GetEmailRateLimit(ctx context.Context, identifier, emailType string) (domain.EmailRateLimit, error)

	// UpsertEmailRateLimit records a send, replacing any previous row.
	UpsertEmailRateLimit(ctx context.Context, rl domain.EmailRateLimit) error
}
