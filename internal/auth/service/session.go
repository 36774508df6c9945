package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/pressroomhq/pressroom/internal/auth/apperr"
	"github.com/pressroomhq/pressroom/internal/auth/domain"
	"github.com/pressroomhq/pressroom/internal/auth/store"
	"github.com/pressroomhq/pressroom/pkg/cryptox"
	"github.com/pressroomhq/pressroom/pkg/slogx"
)

// SessionTTL is how long a session lives from issuance.
const SessionTTL = 7 * 24 * time.Hour

var (
	ErrMalformedSessionID = apperr.New(apperr.KindValidation, "malformed session id")
	ErrSessionNotFound    = apperr.New(apperr.KindNotFound, "session not found")
	ErrSessionExpired     = apperr.New(apperr.KindUnauthorized, "session expired")
)

// SessionService issues and resolves opaque-token sessions. Expired rows are
// deleted lazily when read; a housekeeping sweep bounds table growth but is
// not required for correctness.
type SessionService struct {
	Store store.Store

	// Now overrides the clock in tests. Defaults to UTC seconds.
	Now func() time.Time
}

func (s *SessionService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return nowUTC()
}

// Create issues a fresh session for the user and persists it.
func (s *SessionService) Create(ctx context.Context, userID string) (domain.Session, error) {
	log := slogx.FromContext(ctx)

	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		log.Error("failed to generate session token", slog.Any("error", err))
		return domain.Session{}, apperr.Wrap(apperr.KindInternal, "generate session token", err)
	}

	now := s.now()
	session := domain.Session{
		ID:        token,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(SessionTTL),
	}

	if err := s.Store.Sessions().CreateSession(ctx, session); err != nil {
		log.Error("failed to persist session", slog.Any("error", err))
		return domain.Session{}, apperr.Wrap(apperr.KindInternal, "create session", err)
	}

	log.Debug("session created",
		slog.String("user_id", userID),
		slog.Time("expires_at", session.ExpiresAt),
	)
	return session, nil
}

// Resolve validates the token shape, loads the session, and returns the
// owning user id. An expired row is deleted on the spot and reported as
// Unauthorized; the shape check fails fast without touching the store.
func (s *SessionService) Resolve(ctx context.Context, sessionID string) (string, error) {
	if !cryptox.ValidTokenShape(sessionID, cryptox.TokenSize256) {
		return "", ErrMalformedSessionID
	}

	session, err := s.Store.Sessions().GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrSessionNotFound
		}
		return "", apperr.Wrap(apperr.KindInternal, "load session", err)
	}

	if session.Expired(s.now()) {
		// Lazy cleanup: the row is useless now, drop it before failing.
		if err := s.Store.Sessions().DeleteSession(ctx, sessionID); err != nil && !errors.Is(err, store.ErrNotFound) {
			slogx.FromContext(ctx).Warn("failed to delete expired session", slog.Any("error", err))
		}
		return "", ErrSessionExpired
	}

	return session.UserID, nil
}

// Destroy deletes the session unconditionally. Used by logout; deleting an
// already-absent session is not an error.
func (s *SessionService) Destroy(ctx context.Context, sessionID string) error {
	err := s.Store.Sessions().DeleteSession(ctx, sessionID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return apperr.Wrap(apperr.KindInternal, "destroy session", err)
	}
	return nil
}
