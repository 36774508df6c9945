package service

import (
	"context"
	"testing"

	"github.com/pressroomhq/pressroom/internal/auth/apperr"
	"github.com/pressroomhq/pressroom/internal/auth/domain"
	"github.com/stretchr/testify/require"
)

func TestAuthorize(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	owner := seedUser(t, st, "owner@example.com", true)
	member := seedUser(t, st, "member@example.com", true)
	outsider := seedUser(t, st, "outsider@example.com", true)
	ws := seedWorkspace(t, st, "newsroom", owner.ID)
	addMember(t, st, ws.ID, member.ID, domain.RoleMember)

	sessions := &SessionService{Store: st}
	gate := &Gate{Sessions: sessions, Store: st}

	ownerSession, err := sessions.Create(ctx, owner.ID)
	require.NoError(t, err)
	memberSession, err := sessions.Create(ctx, member.ID)
	require.NoError(t, err)
	outsiderSession, err := sessions.Create(ctx, outsider.ID)
	require.NoError(t, err)

	t.Run("resolves actor with workspace and membership", func(t *testing.T) {
		actor, err := gate.Authorize(ctx, ownerSession.ID, ws.Slug, domain.RoleAdmin)
		require.NoError(t, err)
		require.Equal(t, owner.ID, actor.UserID)
		require.Equal(t, ws.ID, actor.Workspace.ID)
		require.Equal(t, domain.RoleOwner, actor.Membership.Role)
	})

	t.Run("missing session is unauthorized", func(t *testing.T) {
		_, err := gate.Authorize(ctx, "", ws.Slug, domain.RoleMember)
		require.ErrorIs(t, err, ErrNotAuthenticated)
		require.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
	})

	t.Run("destroyed session is unauthorized", func(t *testing.T) {
		stale, err := sessions.Create(ctx, owner.ID)
		require.NoError(t, err)
		require.NoError(t, sessions.Destroy(ctx, stale.ID))

		_, err = gate.Authorize(ctx, stale.ID, ws.Slug, domain.RoleMember)
		require.ErrorIs(t, err, ErrNotAuthenticated)
	})

	t.Run("unknown workspace is not found", func(t *testing.T) {
		_, err := gate.Authorize(ctx, ownerSession.ID, "no-such-workspace", domain.RoleMember)
		require.ErrorIs(t, err, ErrWorkspaceNotFound)
	})

	t.Run("non-member is unauthorized", func(t *testing.T) {
		_, err := gate.Authorize(ctx, outsiderSession.ID, ws.Slug, domain.RoleMember)
		require.ErrorIs(t, err, ErrNotAMember)
	})

	t.Run("insufficient rank is forbidden", func(t *testing.T) {
		_, err := gate.Authorize(ctx, memberSession.ID, ws.Slug, domain.RoleAdmin)
		require.ErrorIs(t, err, ErrInsufficientRole)
		require.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	})

	t.Run("exact rank passes", func(t *testing.T) {
		actor, err := gate.Authorize(ctx, memberSession.ID, ws.Slug, domain.RoleMember)
		require.NoError(t, err)
		require.Equal(t, member.ID, actor.UserID)
	})
}
