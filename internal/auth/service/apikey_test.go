package service

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"

	"github.com/pressroomhq/pressroom/internal/auth/domain"
	"github.com/stretchr/testify/require"
)

func TestIssueFormat(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	owner := seedUser(t, st, "owner@example.com", true)
	ws := seedWorkspace(t, st, "newsroom", owner.ID)

	svc := &APIKeyService{Store: st}

	plaintext, key, err := svc.Issue(ctx, ws.ID, "ci pipeline", owner.ID)
	require.NoError(t, err)

	require.Regexp(t, regexp.MustCompile(`^prk-newsroom-[0-9A-Za-z]{14}$`), plaintext)
	require.Equal(t, "ci pipeline", key.Description)
	require.Equal(t, ws.ID, key.WorkspaceID)
	require.NotContains(t, key.HashedKey, plaintext)

	t.Run("unknown workspace", func(t *testing.T) {
		_, _, err := svc.Issue(ctx, "no-such-workspace", "x", owner.ID)
		require.ErrorIs(t, err, ErrWorkspaceNotFound)
	})
}

func TestIssueQuota(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	owner := seedUser(t, st, "owner@example.com", true)
	ws := seedWorkspace(t, st, "newsroom", owner.ID)

	svc := &APIKeyService{Store: st}

	for i := 0; i < domain.MaxWorkspaceAPIKeys; i++ {
		_, _, err := svc.Issue(ctx, ws.ID, "key", owner.ID)
		require.NoError(t, err)
	}

	_, _, err := svc.Issue(ctx, ws.ID, "one too many", owner.ID)
	require.ErrorIs(t, err, ErrAPIKeyQuotaExceeded)

	t.Run("quota frees up after revoke", func(t *testing.T) {
		keys, err := svc.List(ctx, ws.ID)
		require.NoError(t, err)
		require.Len(t, keys, domain.MaxWorkspaceAPIKeys)

		require.NoError(t, svc.Revoke(ctx, ws.ID, keys[0].ID))

		_, _, err = svc.Issue(ctx, ws.ID, "replacement", owner.ID)
		require.NoError(t, err)
	})

	t.Run("quota is per workspace", func(t *testing.T) {
		other := seedWorkspace(t, st, "other", owner.ID)
		_, _, err := svc.Issue(ctx, other.ID, "fresh workspace", owner.ID)
		require.NoError(t, err)
	})
}

func TestIssueQuotaUnderConcurrency(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	owner := seedUser(t, st, "owner@example.com", true)
	ws := seedWorkspace(t, st, "newsroom", owner.ID)

	svc := &APIKeyService{Store: st}

	const attempts = 10
	var wg sync.WaitGroup
	errCh := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := svc.Issue(ctx, ws.ID, "racing", owner.ID)
			errCh <- err
		}()
	}
	wg.Wait()
	close(errCh)

	var issued, rejected int
	for err := range errCh {
		switch {
		case err == nil:
			issued++
		case errors.Is(err, ErrAPIKeyQuotaExceeded):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	// The check and the insert share a transaction, so the boundary holds
	// no matter how the goroutines interleave.
	require.Equal(t, domain.MaxWorkspaceAPIKeys, issued)
	require.Equal(t, attempts-domain.MaxWorkspaceAPIKeys, rejected)

	keys, err := svc.List(ctx, ws.ID)
	require.NoError(t, err)
	require.Len(t, keys, domain.MaxWorkspaceAPIKeys)
}

func TestVerify(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	owner := seedUser(t, st, "owner@example.com", true)
	ws := seedWorkspace(t, st, "newsroom", owner.ID)

	svc := &APIKeyService{Store: st}

	plaintext, issued, err := svc.Issue(ctx, ws.ID, "ci", owner.ID)
	require.NoError(t, err)

	t.Run("valid key verifies", func(t *testing.T) {
		key, err := svc.Verify(ctx, plaintext, "203.0.113.9")
		require.NoError(t, err)
		require.Equal(t, issued.ID, key.ID)
		require.Equal(t, ws.ID, key.WorkspaceID)
	})

	t.Run("failures are uniform", func(t *testing.T) {
		for _, presented := range []string{"", "garbage", "prk-newsroom-00000000000000", plaintext + "x"} {
			_, err := svc.Verify(ctx, presented, "203.0.113.9")
			require.ErrorIs(t, err, ErrInvalidAPIKey, "presented %q", presented)
		}
	})

	t.Run("revoked key no longer verifies", func(t *testing.T) {
		require.NoError(t, svc.Revoke(ctx, ws.ID, issued.ID))
		_, err := svc.Verify(ctx, plaintext, "203.0.113.9")
		require.ErrorIs(t, err, ErrInvalidAPIKey)
	})
}

func TestRevokeIsWorkspaceScoped(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	owner := seedUser(t, st, "owner@example.com", true)
	ws := seedWorkspace(t, st, "newsroom", owner.ID)
	other := seedWorkspace(t, st, "other", owner.ID)

	svc := &APIKeyService{Store: st}

	_, key, err := svc.Issue(ctx, ws.ID, "ci", owner.ID)
	require.NoError(t, err)

	// A key id from another workspace reads as not found, not forbidden:
	// the caller learns nothing about other tenants' keys.
	err = svc.Revoke(ctx, other.ID, key.ID)
	require.ErrorIs(t, err, ErrAPIKeyNotFound)

	require.NoError(t, svc.Revoke(ctx, ws.ID, key.ID))
	err = svc.Revoke(ctx, ws.ID, key.ID)
	require.ErrorIs(t, err, ErrAPIKeyNotFound)
}
