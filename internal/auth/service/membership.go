package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/pressroomhq/pressroom/internal/auth/apperr"
	"github.com/pressroomhq/pressroom/internal/auth/domain"
	"github.com/pressroomhq/pressroom/internal/auth/store"
	"github.com/pressroomhq/pressroom/pkg/slogx"
)

var (
	ErrInvalidRole          = apperr.New(apperr.KindValidation, "invalid role")
	ErrCannotChangeOwnRole  = apperr.New(apperr.KindForbidden, "cannot change own role")
	ErrCannotRemoveSelf     = apperr.New(apperr.KindForbidden, "cannot remove self, use leave")
	ErrMembershipNotFound   = apperr.New(apperr.KindNotFound, "membership not found")
	ErrInsufficientRole     = apperr.New(apperr.KindForbidden, "insufficient role")
	ErrLastOwnerDemotion    = apperr.New(apperr.KindConflict, "cannot demote the last owner")
	ErrLastOwnerRemoval     = apperr.New(apperr.KindConflict, "cannot remove the last owner")
	ErrLastOwnerCannotLeave = apperr.New(apperr.KindConflict, "owner cannot leave as the last owner")
)

// MembershipService mutates workspace memberships under the role hierarchy
// and the last-owner invariant. Every mutation runs its precondition reads
// and its write in one transaction; SQLite's immediate write transactions
// make the owner-count check and the update atomic as a unit, so two
// concurrent demotions of the sole owner cannot both pass the guard.
type MembershipService struct {
	Store store.Store
}

// UpdateRole changes targetUserID's role in the workspace on behalf of
// actingUserID. Actors cannot change their own role, must outrank the
// target, and may only assign roles below their own.
func (s *MembershipService) UpdateRole(ctx context.Context, workspaceID, actingUserID, targetUserID string, newRole domain.Role) error {
	log := slogx.FromContext(ctx)

	if !newRole.Valid() {
		return ErrInvalidRole
	}
	if actingUserID == targetUserID {
		return ErrCannotChangeOwnRole
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		acting, err := getMembership(ctx, tx, workspaceID, actingUserID)
		if err != nil {
			return err
		}
		target, err := getMembership(ctx, tx, workspaceID, targetUserID)
		if err != nil {
			return err
		}

		if !acting.Role.CanManage(target.Role) || !acting.Role.CanAssign(newRole) {
			return ErrInsufficientRole
		}

		// Demoting an owner needs the owner count checked in the same
		// transaction as the update.
		if target.Role == domain.RoleOwner && newRole != domain.RoleOwner {
			owners, err := tx.Memberships().CountOwners(ctx, workspaceID)
			if err != nil {
				return apperr.Wrap(apperr.KindInternal, "count owners", err)
			}
			if owners <= 1 {
				return ErrLastOwnerDemotion
			}
		}

		if err := tx.Memberships().UpdateMembershipRole(ctx, workspaceID, targetUserID, newRole); err != nil {
			return apperr.Wrap(apperr.KindInternal, "update membership role", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Info("membership role updated",
		slog.String("workspace_id", workspaceID),
		slog.String("acting_user_id", actingUserID),
		slog.String("target_user_id", targetUserID),
		slog.String("new_role", string(newRole)),
	)
	return nil
}

// Remove deletes targetUserID's membership on behalf of actingUserID.
// Self-removal goes through Leave instead, and removing the sole owner is
// rejected.
func (s *MembershipService) Remove(ctx context.Context, workspaceID, actingUserID, targetUserID string) error {
	log := slogx.FromContext(ctx)

	if actingUserID == targetUserID {
		return ErrCannotRemoveSelf
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		acting, err := getMembership(ctx, tx, workspaceID, actingUserID)
		if err != nil {
			return err
		}
		target, err := getMembership(ctx, tx, workspaceID, targetUserID)
		if err != nil {
			return err
		}

		if !acting.Role.CanManage(target.Role) {
			return ErrInsufficientRole
		}

		if target.Role == domain.RoleOwner {
			owners, err := tx.Memberships().CountOwners(ctx, workspaceID)
			if err != nil {
				return apperr.Wrap(apperr.KindInternal, "count owners", err)
			}
			if owners <= 1 {
				return ErrLastOwnerRemoval
			}
		}

		if err := tx.Memberships().DeleteMembership(ctx, workspaceID, targetUserID); err != nil {
			return apperr.Wrap(apperr.KindInternal, "delete membership", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Info("membership removed",
		slog.String("workspace_id", workspaceID),
		slog.String("acting_user_id", actingUserID),
		slog.String("target_user_id", targetUserID),
	)
	return nil
}

// Leave removes the caller's own membership, addressed by workspace slug.
// The last owner cannot leave.
func (s *MembershipService) Leave(ctx context.Context, workspaceSlug, userID string) error {
	log := slogx.FromContext(ctx)

	ws, err := s.Store.Workspaces().GetWorkspaceBySlug(ctx, workspaceSlug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrWorkspaceNotFound
		}
		return apperr.Wrap(apperr.KindInternal, "load workspace", err)
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		membership, err := getMembership(ctx, tx, ws.ID, userID)
		if err != nil {
			return err
		}

		if membership.Role == domain.RoleOwner {
			owners, err := tx.Memberships().CountOwners(ctx, ws.ID)
			if err != nil {
				return apperr.Wrap(apperr.KindInternal, "count owners", err)
			}
			if owners <= 1 {
				return ErrLastOwnerCannotLeave
			}
		}

		if err := tx.Memberships().DeleteMembership(ctx, ws.ID, userID); err != nil {
			return apperr.Wrap(apperr.KindInternal, "delete membership", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Info("member left workspace",
		slog.String("workspace_id", ws.ID),
		slog.String("user_id", userID),
	)
	return nil
}

// ListMembers returns the workspace's memberships ordered by join date.
func (s *MembershipService) ListMembers(ctx context.Context, workspaceID string) ([]domain.Membership, error) {
	members, err := s.Store.Memberships().ListMemberships(ctx, workspaceID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "list memberships", err)
	}
	return members, nil
}

// Role resolves the caller's membership in a workspace.
func (s *MembershipService) Role(ctx context.Context, workspaceID, userID string) (domain.Membership, error) {
	return getMembership(ctx, s.Store, workspaceID, userID)
}

// getMembership loads a membership through any Store (tx-scoped or not) and
// maps absence onto the tagged taxonomy.
func getMembership(ctx context.Context, st store.Store, workspaceID, userID string) (domain.Membership, error) {
	m, err := st.Memberships().GetMembership(ctx, workspaceID, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Membership{}, ErrMembershipNotFound
		}
		return domain.Membership{}, apperr.Wrap(apperr.KindInternal, "load membership", err)
	}
	return m, nil
}
