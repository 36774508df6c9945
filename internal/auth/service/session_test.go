package service

import (
	"context"
	"testing"
	"time"

	"github.com/pressroomhq/pressroom/internal/auth/apperr"
	"github.com/pressroomhq/pressroom/internal/auth/store"
	"github.com/stretchr/testify/require"
)

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	user := seedUser(t, st, "alice@example.com", true)

	svc := &SessionService{Store: st}

	session, err := svc.Create(ctx, user.ID)
	require.NoError(t, err)
	require.NotEmpty(t, session.ID)
	require.Equal(t, user.ID, session.UserID)
	require.Equal(t, SessionTTL, session.ExpiresAt.Sub(session.CreatedAt))

	userID, err := svc.Resolve(ctx, session.ID)
	require.NoError(t, err)
	require.Equal(t, user.ID, userID)

	require.NoError(t, svc.Destroy(ctx, session.ID))

	_, err = svc.Resolve(ctx, session.ID)
	require.ErrorIs(t, err, ErrSessionNotFound)

	// Destroying an already-absent session is not an error.
	require.NoError(t, svc.Destroy(ctx, session.ID))
}

func TestSessionResolveRejectsMalformedID(t *testing.T) {
	ctx := context.Background()
	svc := &SessionService{Store: newTestStore(t)}

	for _, id := range []string{"", "short", "not-base64url-!!!", "abc def"} {
		_, err := svc.Resolve(ctx, id)
		require.ErrorIs(t, err, ErrMalformedSessionID, "id %q", id)
		require.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	}
}

func TestSessionExpiryIsInclusiveAndDeletesRow(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	user := seedUser(t, st, "alice@example.com", true)

	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := &SessionService{Store: st, Now: fixedClock(issued)}

	session, err := svc.Create(ctx, user.ID)
	require.NoError(t, err)

	// One second before expiry the session still resolves.
	svc.Now = fixedClock(session.ExpiresAt.Add(-time.Second))
	_, err = svc.Resolve(ctx, session.ID)
	require.NoError(t, err)

	// Exactly at expiry the session is dead and the row is deleted.
	svc.Now = fixedClock(session.ExpiresAt)
	_, err = svc.Resolve(ctx, session.ID)
	require.ErrorIs(t, err, ErrSessionExpired)
	require.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))

	_, err = st.Sessions().GetSession(ctx, session.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestSessionsAreIndependent(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	user := seedUser(t, st, "alice@example.com", true)

	svc := &SessionService{Store: st}

	first, err := svc.Create(ctx, user.ID)
	require.NoError(t, err)
	second, err := svc.Create(ctx, user.ID)
	require.NoError(t, err)
	require.NotEqual(t, first.ID, second.ID)

	require.NoError(t, svc.Destroy(ctx, first.ID))

	// The surviving session is untouched.
	userID, err := svc.Resolve(ctx, second.ID)
	require.NoError(t, err)
	require.Equal(t, user.ID, userID)
}
