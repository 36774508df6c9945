package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pressroomhq/pressroom/internal/auth/apperr"
	"github.com/pressroomhq/pressroom/internal/auth/domain"
	"github.com/pressroomhq/pressroom/internal/auth/store"
	"github.com/pressroomhq/pressroom/pkg/cryptox"
	"github.com/pressroomhq/pressroom/pkg/idx"
	"github.com/pressroomhq/pressroom/pkg/slogx"
)

// InvitationTTL is how long a pending invitation stays acceptable.
const InvitationTTL = 7 * 24 * time.Hour

var (
	ErrInviterNotMember     = apperr.New(apperr.KindForbidden, "not a member")
	ErrInviteeNotFound      = apperr.New(apperr.KindNotFound, "no account for that email")
	ErrInviteeNotVerified   = apperr.New(apperr.KindConflict, "invitee email not verified")
	ErrAlreadyMember        = apperr.New(apperr.KindConflict, "already a member")
	ErrInvitationNotFound   = apperr.New(apperr.KindNotFound, "invitation not found")
	ErrInvitationExpired    = apperr.New(apperr.KindConflict, "invitation expired")
	ErrInvitationNotPending = apperr.New(apperr.KindConflict, "invitation is not pending")
	ErrEmailMismatch        = apperr.New(apperr.KindForbidden, "email mismatch")
)

// InvitationService runs the pending → accepted/revoked lifecycle. A pending
// invitation additionally becomes semantically expired once its deadline
// passes; that is checked at read time, never by a background transition.
type InvitationService struct {
	Store    store.Store
	Sessions *SessionService
	Notifier *NotificationService

	// BaseURL prefixes the accept link in invitation email.
	BaseURL string

	Now func() time.Time
}

func (s *InvitationService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return nowUTC()
}

// Invite creates a pending invitation for email to join the workspace at the
// given role. Only verified, existing accounts can be invited, the inviter
// may only assign roles below their own, and re-inviting while a pending
// invitation exists returns that invitation unchanged (idempotent).
func (s *InvitationService) Invite(ctx context.Context, workspaceID, inviterUserID, email string, role domain.Role) (domain.Invitation, error) {
	log := slogx.FromContext(ctx)

	if email == "" || !role.Valid() {
		return domain.Invitation{}, apperr.New(apperr.KindValidation, "invalid invitation request")
	}

	inviter, err := getMembership(ctx, s.Store, workspaceID, inviterUserID)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return domain.Invitation{}, ErrInviterNotMember
		}
		return domain.Invitation{}, err
	}

	if !inviter.Role.CanAssign(role) {
		log.Warn("invite rejected, role not assignable",
			slog.String("inviter_role", string(inviter.Role)),
			slog.String("requested_role", string(role)),
		)
		return domain.Invitation{}, ErrInsufficientRole
	}

	invitee, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Invitation{}, ErrInviteeNotFound
		}
		return domain.Invitation{}, apperr.Wrap(apperr.KindInternal, "load invitee", err)
	}
	if !invitee.EmailVerified {
		return domain.Invitation{}, ErrInviteeNotVerified
	}

	if _, err := s.Store.Memberships().GetMembership(ctx, workspaceID, invitee.ID); err == nil {
		return domain.Invitation{}, ErrAlreadyMember
	} else if !errors.Is(err, store.ErrNotFound) {
		return domain.Invitation{}, apperr.Wrap(apperr.KindInternal, "check existing membership", err)
	}

	now := s.now()
	var result domain.Invitation
	var created bool

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		existing, err := tx.Invitations().GetPendingInvitation(ctx, workspaceID, email)
		switch {
		case err == nil && !existing.Expired(now):
			// Idempotent: hand back the live pending invitation unchanged.
			result = existing
			return nil
		case err == nil:
			// Stale pending row; supersede it so the partial unique index
			// accepts the replacement.
			if err := tx.Invitations().UpdateInvitationStatus(ctx, existing.ID, domain.InvitationRevoked); err != nil {
				return apperr.Wrap(apperr.KindInternal, "supersede expired invitation", err)
			}
		case !errors.Is(err, store.ErrNotFound):
			return apperr.Wrap(apperr.KindInternal, "check pending invitation", err)
		}

		token, err := cryptox.GenerateToken(cryptox.TokenSize256)
		if err != nil {
			return apperr.Wrap(apperr.KindInternal, "generate invitation token", err)
		}

		result = domain.Invitation{
			ID:          idx.New().String(),
			WorkspaceID: workspaceID,
			Email:       email,
			Role:        role,
			InvitedBy:   inviterUserID,
			Token:       token,
			Status:      domain.InvitationPending,
			InvitedAt:   now,
			ExpiresAt:   now.Add(InvitationTTL),
		}
		created = true
		if err := tx.Invitations().CreateInvitation(ctx, result); err != nil {
			return apperr.Wrap(apperr.KindInternal, "create invitation", err)
		}
		return nil
	})
	if err != nil {
		return domain.Invitation{}, err
	}

	if created {
		log.Info("invitation created",
			slog.String("invitation_id", result.ID),
			slog.String("workspace_id", workspaceID),
			slog.String("role", string(role)),
		)
		if s.Notifier != nil {
			// Fire-and-forget: email failure never rolls back the invitation.
			inv := result
			go s.Notifier.Send(context.Background(), inv.Email, EmailTypeInvitation,
				"You have been invited to a workspace",
				invitationEmailBody(s.BaseURL, inv),
			)
		}
	}

	return result, nil
}

// Accept redeems an invitation token for the accepting user. The accepting
// account's email must match the invitation's email; holding the token alone
// is not enough. On success the membership row and the status transition to
// accepted commit in one transaction.
func (s *InvitationService) Accept(ctx context.Context, token, acceptingUserID string) (domain.Membership, error) {
	log := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByID(ctx, acceptingUserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Membership{}, apperr.New(apperr.KindNotFound, "user not found")
		}
		return domain.Membership{}, apperr.Wrap(apperr.KindInternal, "load accepting user", err)
	}

	now := s.now()
	var membership domain.Membership

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		inv, err := tx.Invitations().GetInvitationByToken(ctx, token)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvitationNotFound
			}
			return apperr.Wrap(apperr.KindInternal, "load invitation", err)
		}

		// A non-pending invitation is indistinguishable from an absent one
		// to the token holder.
		if inv.Status != domain.InvitationPending {
			return ErrInvitationNotFound
		}
		if inv.Expired(now) {
			return ErrInvitationExpired
		}
		if inv.Email != user.Email {
			return ErrEmailMismatch
		}

		if _, err := tx.Memberships().GetMembership(ctx, inv.WorkspaceID, user.ID); err == nil {
			return ErrAlreadyMember
		} else if !errors.Is(err, store.ErrNotFound) {
			return apperr.Wrap(apperr.KindInternal, "check existing membership", err)
		}

		membership = domain.Membership{
			WorkspaceID: inv.WorkspaceID,
			UserID:      user.ID,
			Role:        inv.Role,
			JoinedAt:    now,
		}
		if err := tx.Memberships().CreateMembership(ctx, membership); err != nil {
			return apperr.Wrap(apperr.KindInternal, "create membership", err)
		}
		if err := tx.Invitations().UpdateInvitationStatus(ctx, inv.ID, domain.InvitationAccepted); err != nil {
			return apperr.Wrap(apperr.KindInternal, "mark invitation accepted", err)
		}
		return nil
	})
	if err != nil {
		return domain.Membership{}, err
	}

	log.Info("invitation accepted",
		slog.String("workspace_id", membership.WorkspaceID),
		slog.String("user_id", membership.UserID),
		slog.String("role", string(membership.Role)),
	)
	return membership, nil
}

// Revoke cancels a pending invitation. The actor must be a member and must
// outrank the invited role.
func (s *InvitationService) Revoke(ctx context.Context, workspaceID, actingUserID, invitationID string) error {
	log := slogx.FromContext(ctx)

	acting, err := getMembership(ctx, s.Store, workspaceID, actingUserID)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return ErrInviterNotMember
		}
		return err
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		inv, err := tx.Invitations().GetInvitationByID(ctx, invitationID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvitationNotFound
			}
			return apperr.Wrap(apperr.KindInternal, "load invitation", err)
		}
		if inv.WorkspaceID != workspaceID {
			return ErrInvitationNotFound
		}
		if inv.Status != domain.InvitationPending {
			return ErrInvitationNotPending
		}
		if !acting.Role.CanManage(inv.Role) {
			return ErrInsufficientRole
		}

		if err := tx.Invitations().UpdateInvitationStatus(ctx, inv.ID, domain.InvitationRevoked); err != nil {
			return apperr.Wrap(apperr.KindInternal, "mark invitation revoked", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Info("invitation revoked",
		slog.String("invitation_id", invitationID),
		slog.String("workspace_id", workspaceID),
		slog.String("acting_user_id", actingUserID),
	)
	return nil
}

// ListByWorkspace returns the workspace's invitations, excluding pending
// rows whose expiry has passed. Expiry is a read-time check; the cleanup
// sweep only reclaims old rows and is never relied on for correctness.
func (s *InvitationService) ListByWorkspace(ctx context.Context, workspaceID string) ([]domain.Invitation, error) {
	all, err := s.Store.Invitations().ListInvitationsByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "list invitations", err)
	}

	now := s.now()
	out := make([]domain.Invitation, 0, len(all))
	for _, inv := range all {
		if inv.Status == domain.InvitationPending && inv.Expired(now) {
			continue
		}
		out = append(out, inv)
	}
	return out, nil
}

func invitationEmailBody(baseURL string, inv domain.Invitation) string {
	return fmt.Sprintf(
		`<p>You have been invited to join a workspace as %s.</p>`+
			`<p><a href="%s/invitations/accept?token=%s">Accept the invitation</a> before %s.</p>`,
		inv.Role, baseURL, inv.Token, inv.ExpiresAt.Format(time.RFC1123),
	)
}
