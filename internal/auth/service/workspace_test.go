package service

import (
	"context"
	"testing"

	"github.com/pressroomhq/pressroom/internal/auth/domain"
	"github.com/stretchr/testify/require"
)

func TestWorkspaceCreate(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	creator := seedUser(t, st, "creator@example.com", true)

	svc := &WorkspaceService{Store: st}

	t.Run("creator becomes first owner", func(t *testing.T) {
		ws, err := svc.Create(ctx, "The Newsroom", "newsroom", creator.ID)
		require.NoError(t, err)
		require.NotEmpty(t, ws.ID)

		m, err := st.Memberships().GetMembership(ctx, ws.ID, creator.ID)
		require.NoError(t, err)
		require.Equal(t, domain.RoleOwner, m.Role)
	})

	t.Run("duplicate slug conflicts", func(t *testing.T) {
		_, err := svc.Create(ctx, "Another", "newsroom", creator.ID)
		require.ErrorIs(t, err, ErrWorkspaceSlugTaken)
	})

	t.Run("slug validation", func(t *testing.T) {
		for _, slug := range []string{"", "UPPER", "spa ce", "-lead", "trail-", "dot.dot"} {
			_, err := svc.Create(ctx, "Bad", slug, creator.ID)
			require.ErrorIs(t, err, ErrInvalidWorkspaceSlug, "slug %q", slug)
		}
	})

	t.Run("get by slug", func(t *testing.T) {
		ws, err := svc.GetBySlug(ctx, "newsroom")
		require.NoError(t, err)
		require.Equal(t, "The Newsroom", ws.Name)

		_, err = svc.GetBySlug(ctx, "missing")
		require.ErrorIs(t, err, ErrWorkspaceNotFound)
	})
}
