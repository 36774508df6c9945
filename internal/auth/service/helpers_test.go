package service

import (
	"context"
	"testing"
	"time"

	"github.com/pressroomhq/pressroom/internal/auth/domain"
	"github.com/pressroomhq/pressroom/internal/auth/store"
	"github.com/pressroomhq/pressroom/internal/auth/store/drivers/sqlite"
	"github.com/pressroomhq/pressroom/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func seedUser(t *testing.T, st store.Store, email string, verified bool) domain.User {
	t.Helper()

	now := nowUTC()
	user := domain.User{
		ID:            idx.New().String(),
		Name:          "Test User",
		Email:         email,
		EmailVerified: verified,
		PasswordHash:  "$argon2id$v=19$m=65536,t=3,p=2$c2FsdHNhbHRzYWx0c2FsdA$aGFzaGhhc2hoYXNoaGFzaGhhc2hoYXNoaGFzaGhhc2g",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, st.Users().CreateUser(context.Background(), user))
	return user
}

func seedWorkspace(t *testing.T, st store.Store, slug, ownerID string) domain.Workspace {
	t.Helper()

	now := nowUTC()
	ws := domain.Workspace{
		ID:        idx.New().String(),
		Name:      "Workspace " + slug,
		Slug:      slug,
		CreatedAt: now,
		UpdatedAt: now,
	}
	ctx := context.Background()
	require.NoError(t, st.Workspaces().CreateWorkspace(ctx, ws))
	require.NoError(t, st.Memberships().CreateMembership(ctx, domain.Membership{
		WorkspaceID: ws.ID,
		UserID:      ownerID,
		Role:        domain.RoleOwner,
		JoinedAt:    now,
	}))
	return ws
}

func addMember(t *testing.T, st store.Store, workspaceID, userID string, role domain.Role) {
	t.Helper()

	require.NoError(t, st.Memberships().CreateMembership(context.Background(), domain.Membership{
		WorkspaceID: workspaceID,
		UserID:      userID,
		Role:        role,
		JoinedAt:    nowUTC(),
	}))
}

// fixedClock returns a Now func pinned to the given instant, truncated the
// same way the services truncate.
func fixedClock(at time.Time) func() time.Time {
	t := at.UTC().Truncate(time.Second)
	return func() time.Time { return t }
}
