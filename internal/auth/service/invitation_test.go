package service

import (
	"context"
	"testing"
	"time"

	"github.com/pressroomhq/pressroom/internal/auth/domain"
	"github.com/stretchr/testify/require"
)

func TestInviteRules(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	owner := seedUser(t, st, "owner@example.com", true)
	admin := seedUser(t, st, "admin@example.com", true)
	ws := seedWorkspace(t, st, "newsroom", owner.ID)
	addMember(t, st, ws.ID, admin.ID, domain.RoleAdmin)

	svc := &InvitationService{Store: st}

	t.Run("inviter must be a member", func(t *testing.T) {
		outsider := seedUser(t, st, "outsider@example.com", true)
		_, err := svc.Invite(ctx, ws.ID, outsider.ID, "anyone@example.com", domain.RoleMember)
		require.ErrorIs(t, err, ErrInviterNotMember)
	})

	t.Run("cannot invite at own rank or above", func(t *testing.T) {
		invitee := seedUser(t, st, "invitee@example.com", true)

		_, err := svc.Invite(ctx, ws.ID, admin.ID, invitee.Email, domain.RoleAdmin)
		require.ErrorIs(t, err, ErrInsufficientRole)

		_, err = svc.Invite(ctx, ws.ID, owner.ID, invitee.Email, domain.RoleOwner)
		require.ErrorIs(t, err, ErrInsufficientRole)
	})

	t.Run("invitee must exist", func(t *testing.T) {
		_, err := svc.Invite(ctx, ws.ID, owner.ID, "nobody@example.com", domain.RoleMember)
		require.ErrorIs(t, err, ErrInviteeNotFound)
	})

	t.Run("invitee must be verified", func(t *testing.T) {
		unverified := seedUser(t, st, "unverified@example.com", false)
		_, err := svc.Invite(ctx, ws.ID, owner.ID, unverified.Email, domain.RoleMember)
		require.ErrorIs(t, err, ErrInviteeNotVerified)
	})

	t.Run("cannot invite an existing member", func(t *testing.T) {
		_, err := svc.Invite(ctx, ws.ID, owner.ID, admin.Email, domain.RoleMember)
		require.ErrorIs(t, err, ErrAlreadyMember)
	})

	t.Run("re-invite is idempotent while pending", func(t *testing.T) {
		invitee := seedUser(t, st, "pending@example.com", true)

		first, err := svc.Invite(ctx, ws.ID, owner.ID, invitee.Email, domain.RoleMember)
		require.NoError(t, err)
		require.Equal(t, domain.InvitationPending, first.Status)
		require.Equal(t, InvitationTTL, first.ExpiresAt.Sub(first.InvitedAt))

		second, err := svc.Invite(ctx, ws.ID, owner.ID, invitee.Email, domain.RoleMember)
		require.NoError(t, err)
		require.Equal(t, first.ID, second.ID)
		require.Equal(t, first.Token, second.Token)
	})
}

func TestInviteSupersedesExpiredPending(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	owner := seedUser(t, st, "owner@example.com", true)
	invitee := seedUser(t, st, "invitee@example.com", true)
	ws := seedWorkspace(t, st, "newsroom", owner.ID)

	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := &InvitationService{Store: st, Now: fixedClock(start)}

	first, err := svc.Invite(ctx, ws.ID, owner.ID, invitee.Email, domain.RoleMember)
	require.NoError(t, err)

	// Past the TTL the pending row no longer counts; a fresh invitation is
	// issued and the stale one is superseded.
	svc.Now = fixedClock(start.Add(InvitationTTL))
	second, err := svc.Invite(ctx, ws.ID, owner.ID, invitee.Email, domain.RoleMember)
	require.NoError(t, err)
	require.NotEqual(t, first.ID, second.ID)
	require.NotEqual(t, first.Token, second.Token)

	old, err := st.Invitations().GetInvitationByID(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, domain.InvitationRevoked, old.Status)
}

func TestAccept(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	owner := seedUser(t, st, "owner@example.com", true)
	invitee := seedUser(t, st, "invitee@example.com", true)
	ws := seedWorkspace(t, st, "newsroom", owner.ID)

	svc := &InvitationService{Store: st}

	inv, err := svc.Invite(ctx, ws.ID, owner.ID, invitee.Email, domain.RoleAdmin)
	require.NoError(t, err)

	t.Run("unknown token", func(t *testing.T) {
		_, err := svc.Accept(ctx, "bogus-token", invitee.ID)
		require.ErrorIs(t, err, ErrInvitationNotFound)
	})

	t.Run("token is email-bound", func(t *testing.T) {
		imposter := seedUser(t, st, "imposter@example.com", true)
		_, err := svc.Accept(ctx, inv.Token, imposter.ID)
		require.ErrorIs(t, err, ErrEmailMismatch)
	})

	t.Run("accept creates membership and flips status", func(t *testing.T) {
		membership, err := svc.Accept(ctx, inv.Token, invitee.ID)
		require.NoError(t, err)
		require.Equal(t, ws.ID, membership.WorkspaceID)
		require.Equal(t, domain.RoleAdmin, membership.Role)

		stored, err := st.Invitations().GetInvitationByID(ctx, inv.ID)
		require.NoError(t, err)
		require.Equal(t, domain.InvitationAccepted, stored.Status)
	})

	t.Run("second accept reads as not found", func(t *testing.T) {
		_, err := svc.Accept(ctx, inv.Token, invitee.ID)
		require.ErrorIs(t, err, ErrInvitationNotFound)
	})
}

func TestAcceptExpired(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	owner := seedUser(t, st, "owner@example.com", true)
	invitee := seedUser(t, st, "invitee@example.com", true)
	ws := seedWorkspace(t, st, "newsroom", owner.ID)

	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := &InvitationService{Store: st, Now: fixedClock(start)}

	inv, err := svc.Invite(ctx, ws.ID, owner.ID, invitee.Email, domain.RoleMember)
	require.NoError(t, err)

	// Expiry is inclusive at the boundary.
	svc.Now = fixedClock(inv.ExpiresAt)
	_, err = svc.Accept(ctx, inv.Token, invitee.ID)
	require.ErrorIs(t, err, ErrInvitationExpired)

	// The row stays pending; only its deadline has passed.
	stored, err := st.Invitations().GetInvitationByID(ctx, inv.ID)
	require.NoError(t, err)
	require.Equal(t, domain.InvitationPending, stored.Status)
}

func TestRevoke(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	owner := seedUser(t, st, "owner@example.com", true)
	admin := seedUser(t, st, "admin@example.com", true)
	invitee := seedUser(t, st, "invitee@example.com", true)
	ws := seedWorkspace(t, st, "newsroom", owner.ID)
	addMember(t, st, ws.ID, admin.ID, domain.RoleAdmin)

	svc := &InvitationService{Store: st}

	inv, err := svc.Invite(ctx, ws.ID, owner.ID, invitee.Email, domain.RoleAdmin)
	require.NoError(t, err)

	t.Run("revoker must outrank the invited role", func(t *testing.T) {
		err := svc.Revoke(ctx, ws.ID, admin.ID, inv.ID)
		require.ErrorIs(t, err, ErrInsufficientRole)
	})

	t.Run("wrong workspace reads as not found", func(t *testing.T) {
		other := seedWorkspace(t, st, "other", owner.ID)
		err := svc.Revoke(ctx, other.ID, owner.ID, inv.ID)
		require.ErrorIs(t, err, ErrInvitationNotFound)
	})

	t.Run("owner revokes", func(t *testing.T) {
		require.NoError(t, svc.Revoke(ctx, ws.ID, owner.ID, inv.ID))

		stored, err := st.Invitations().GetInvitationByID(ctx, inv.ID)
		require.NoError(t, err)
		require.Equal(t, domain.InvitationRevoked, stored.Status)
	})

	t.Run("revoking a non-pending invitation", func(t *testing.T) {
		err := svc.Revoke(ctx, ws.ID, owner.ID, inv.ID)
		require.ErrorIs(t, err, ErrInvitationNotPending)
	})
}

func TestListByWorkspaceHidesExpiredPending(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	owner := seedUser(t, st, "owner@example.com", true)
	stale := seedUser(t, st, "stale@example.com", true)
	fresh := seedUser(t, st, "fresh@example.com", true)
	ws := seedWorkspace(t, st, "newsroom", owner.ID)

	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := &InvitationService{Store: st, Now: fixedClock(start)}

	_, err := svc.Invite(ctx, ws.ID, owner.ID, stale.Email, domain.RoleMember)
	require.NoError(t, err)

	// Half the TTL later, a second invitation goes out.
	svc.Now = fixedClock(start.Add(InvitationTTL / 2))
	freshInv, err := svc.Invite(ctx, ws.ID, owner.ID, fresh.Email, domain.RoleMember)
	require.NoError(t, err)

	// Past the first invitation's deadline only the fresh one lists.
	svc.Now = fixedClock(start.Add(InvitationTTL))
	got, err := svc.ListByWorkspace(ctx, ws.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, freshInv.ID, got[0].ID)
}
