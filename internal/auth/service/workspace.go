package service

import (
	"context"
	"errors"
	"log/slog"
	"regexp"

	"github.com/pressroomhq/pressroom/internal/auth/apperr"
	"github.com/pressroomhq/pressroom/internal/auth/domain"
	"github.com/pressroomhq/pressroom/internal/auth/store"
	"github.com/pressroomhq/pressroom/pkg/idx"
	"github.com/pressroomhq/pressroom/pkg/slogx"
)

var (
	ErrInvalidWorkspaceSlug = apperr.New(apperr.KindValidation, "invalid workspace slug")
	ErrWorkspaceSlugTaken   = apperr.New(apperr.KindConflict, "workspace slug already taken")
	ErrWorkspaceNotFound    = apperr.New(apperr.KindNotFound, "workspace not found")
)

// Slugs appear in API key plaintexts, so the charset must exclude the "-"
// separator ambiguity at the edges.
var slugPattern = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?$`)

type WorkspaceService struct {
	Store store.Store
}

// Create provisions a workspace and its first owner membership in one
// transaction, so a workspace can never exist without an owner.
func (s *WorkspaceService) Create(ctx context.Context, name, slug, creatorUserID string) (domain.Workspace, error) {
	log := slogx.FromContext(ctx)

	if name == "" || !slugPattern.MatchString(slug) {
		return domain.Workspace{}, ErrInvalidWorkspaceSlug
	}

	now := nowUTC()
	ws := domain.Workspace{
		ID:        idx.New().String(),
		Name:      name,
		Slug:      slug,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Workspaces().CreateWorkspace(ctx, ws); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrWorkspaceSlugTaken
			}
			return apperr.Wrap(apperr.KindInternal, "create workspace", err)
		}

		membership := domain.Membership{
			WorkspaceID: ws.ID,
			UserID:      creatorUserID,
			Role:        domain.RoleOwner,
			JoinedAt:    now,
		}
		if err := tx.Memberships().CreateMembership(ctx, membership); err != nil {
			return apperr.Wrap(apperr.KindInternal, "create first owner membership", err)
		}
		return nil
	})
	if err != nil {
		return domain.Workspace{}, err
	}

	log.Info("workspace created",
		slog.String("workspace_id", ws.ID),
		slog.String("slug", slug),
		slog.String("owner_id", creatorUserID),
	)
	return ws, nil
}

// GetBySlug resolves a workspace by its unique slug.
func (s *WorkspaceService) GetBySlug(ctx context.Context, slug string) (domain.Workspace, error) {
	ws, err := s.Store.Workspaces().GetWorkspaceBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Workspace{}, ErrWorkspaceNotFound
		}
		return domain.Workspace{}, apperr.Wrap(apperr.KindInternal, "load workspace", err)
	}
	return ws, nil
}
