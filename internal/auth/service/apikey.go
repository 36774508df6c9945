package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pressroomhq/pressroom/internal/auth/apperr"
	"github.com/pressroomhq/pressroom/internal/auth/domain"
	"github.com/pressroomhq/pressroom/internal/auth/store"
	"github.com/pressroomhq/pressroom/pkg/cryptox"
	"github.com/pressroomhq/pressroom/pkg/idx"
	"github.com/pressroomhq/pressroom/pkg/slogx"
)

const (
	// DefaultKeyPrefix tags every issued key so leaked secrets are easy to
	// attribute in scans.
	DefaultKeyPrefix = "prk"

	// apiKeySuffixLen is the random base62 tail, roughly 83 bits of entropy.
	apiKeySuffixLen = 14
)

var (
	ErrAPIKeyQuotaExceeded = apperr.New(apperr.KindConflict, "api key quota exceeded")
	ErrAPIKeyNotFound      = apperr.New(apperr.KindNotFound, "api key not found")
	ErrInvalidAPIKey       = apperr.New(apperr.KindUnauthorized, "invalid api key")
)

// APIKeyService issues and verifies workspace-scoped bearer keys. The
// plaintext exists exactly once, in the Issue return value; only its SHA-256
// is stored. Verification compares hashes in constant time and reports the
// same Unauthorized outcome for every failure mode.
type APIKeyService struct {
	Store  store.Store
	Logger *slog.Logger

	// Prefix overrides DefaultKeyPrefix, mainly in tests.
	Prefix string
}

func (s *APIKeyService) prefix() string {
	if s.Prefix != "" {
		return s.Prefix
	}
	return DefaultKeyPrefix
}

// generate builds the plaintext key for a workspace. This is the only place
// the plaintext is assembled.
func (s *APIKeyService) generate(workspaceSlug string) (string, error) {
	suffix, err := cryptox.GenerateBase62(apiKeySuffixLen)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s-%s", s.prefix(), workspaceSlug, suffix), nil
}

// Issue creates a new key for the workspace, enforcing the per-workspace
// quota inside the same transaction as the insert. The returned plaintext
// cannot be retrieved again.
func (s *APIKeyService) Issue(ctx context.Context, workspaceID, description, createdByUserID string) (string, domain.WorkspaceAPIKey, error) {
	log := slogx.FromContext(ctx)

	ws, err := s.Store.Workspaces().GetWorkspaceByID(ctx, workspaceID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", domain.WorkspaceAPIKey{}, ErrWorkspaceNotFound
		}
		return "", domain.WorkspaceAPIKey{}, apperr.Wrap(apperr.KindInternal, "load workspace", err)
	}

	plaintext, err := s.generate(ws.Slug)
	if err != nil {
		return "", domain.WorkspaceAPIKey{}, apperr.Wrap(apperr.KindInternal, "generate api key", err)
	}

	key := domain.WorkspaceAPIKey{
		ID:          idx.New().String(),
		WorkspaceID: workspaceID,
		Description: description,
		HashedKey:   cryptox.FingerprintToken(plaintext),
		CreatedBy:   createdByUserID,
		CreatedAt:   nowUTC(),
	}

	// Quota check and insert are one atomic unit; two concurrent issues at
	// the boundary cannot both commit.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		count, err := tx.APIKeys().CountAPIKeys(ctx, workspaceID)
		if err != nil {
			return apperr.Wrap(apperr.KindInternal, "count api keys", err)
		}
		if count >= domain.MaxWorkspaceAPIKeys {
			return ErrAPIKeyQuotaExceeded
		}
		if err := tx.APIKeys().CreateAPIKey(ctx, key); err != nil {
			return apperr.Wrap(apperr.KindInternal, "create api key", err)
		}
		return nil
	})
	if err != nil {
		return "", domain.WorkspaceAPIKey{}, err
	}

	log.Info("api key issued",
		slog.String("key_id", key.ID),
		slog.String("workspace_id", workspaceID),
		slog.String("created_by", createdByUserID),
	)
	return plaintext, key, nil
}

// Verify authenticates a presented key. Every failure, malformed input
// included, yields the same ErrInvalidAPIKey so response shape leaks nothing
// about how close the guess was. Usage recording is asynchronous and
// best-effort: it can never fail the authorization decision.
func (s *APIKeyService) Verify(ctx context.Context, presentedKey, remoteIP string) (domain.WorkspaceAPIKey, error) {
	if presentedKey == "" {
		return domain.WorkspaceAPIKey{}, ErrInvalidAPIKey
	}

	fingerprint := cryptox.FingerprintToken(presentedKey)

	key, err := s.Store.APIKeys().GetAPIKeyByHash(ctx, fingerprint)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.WorkspaceAPIKey{}, ErrInvalidAPIKey
		}
		return domain.WorkspaceAPIKey{}, apperr.Wrap(apperr.KindInternal, "load api key", err)
	}

	// The hash lookup already matched, but compare in constant time anyway
	// so the equality check itself can never become a timing oracle.
	if !cryptox.ConstantTimeEqual(fingerprint, key.HashedKey) {
		return domain.WorkspaceAPIKey{}, ErrInvalidAPIKey
	}

	go s.touchUsage(key.ID, remoteIP)

	return key, nil
}

func (s *APIKeyService) touchUsage(keyID, remoteIP string) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// Detached from the request: the caller's context may already be done.
	err := s.Store.APIKeys().TouchAPIKeyUsage(context.Background(), keyID, nowUTC(), remoteIP)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		logger.Warn("failed to record api key usage",
			slog.String("key_id", keyID),
			slog.Any("error", err),
		)
	}
}

// Revoke deletes a key, scoped to the workspace so one workspace can never
// delete another's keys.
func (s *APIKeyService) Revoke(ctx context.Context, workspaceID, keyID string) error {
	err := s.Store.APIKeys().DeleteAPIKey(ctx, workspaceID, keyID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrAPIKeyNotFound
		}
		return apperr.Wrap(apperr.KindInternal, "delete api key", err)
	}

	slogx.FromContext(ctx).Info("api key revoked",
		slog.String("key_id", keyID),
		slog.String("workspace_id", workspaceID),
	)
	return nil
}

// List returns the workspace's keys (hashes only, never plaintext).
func (s *APIKeyService) List(ctx context.Context, workspaceID string) ([]domain.WorkspaceAPIKey, error) {
	keys, err := s.Store.APIKeys().ListAPIKeys(ctx, workspaceID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "list api keys", err)
	}
	return keys, nil
}
