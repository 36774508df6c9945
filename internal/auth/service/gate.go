package service

import (
	"context"
	"errors"

	"github.com/pressroomhq/pressroom/internal/auth/apperr"
	"github.com/pressroomhq/pressroom/internal/auth/domain"
	"github.com/pressroomhq/pressroom/internal/auth/store"
)

var (
	ErrNotAuthenticated = apperr.New(apperr.KindUnauthorized, "not authenticated")
	ErrNotAMember       = apperr.New(apperr.KindUnauthorized, "no membership in workspace")
)

// Actor is the resolved caller for a workspace-scoped request.
type Actor struct {
	UserID     string
	Workspace  domain.Workspace
	Membership domain.Membership
}

// Gate composes session resolution, membership lookup, and the role
// hierarchy into the single check every workspace-scoped entry point runs.
// State is read fresh from the store on every call; sessions are immutable
// apart from deletion, so a cache could be layered on later without
// correctness risk.
type Gate struct {
	Sessions *SessionService
	Store    store.Store
}

// Authorize resolves the caller identified by sessionID against the
// workspace named by slug and requires at least minRole. Failure order:
// Unauthorized for a missing/expired/malformed session, NotFound for an
// unknown workspace, Unauthorized for a caller with no membership, and
// Forbidden when the membership ranks below minRole.
func (g *Gate) Authorize(ctx context.Context, sessionID, workspaceSlug string, minRole domain.Role) (Actor, error) {
	userID, err := g.Sessions.Resolve(ctx, sessionID)
	if err != nil {
		// Absent and malformed sessions both read as "not authenticated"
		// to the caller; the distinction only matters in logs.
		switch apperr.KindOf(err) {
		case apperr.KindNotFound, apperr.KindValidation:
			return Actor{}, ErrNotAuthenticated
		}
		return Actor{}, err
	}

	ws, err := g.Store.Workspaces().GetWorkspaceBySlug(ctx, workspaceSlug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Actor{}, ErrWorkspaceNotFound
		}
		return Actor{}, apperr.Wrap(apperr.KindInternal, "load workspace", err)
	}

	membership, err := g.Store.Memberships().GetMembership(ctx, ws.ID, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Actor{}, ErrNotAMember
		}
		return Actor{}, apperr.Wrap(apperr.KindInternal, "load membership", err)
	}

	if membership.Role.Rank() < minRole.Rank() {
		return Actor{}, ErrInsufficientRole
	}

	return Actor{UserID: userID, Workspace: ws, Membership: membership}, nil
}
