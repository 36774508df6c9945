package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pressroomhq/pressroom/internal/auth/apperr"
	"github.com/pressroomhq/pressroom/internal/auth/domain"
	"github.com/pressroomhq/pressroom/internal/auth/store"
	"github.com/pressroomhq/pressroom/pkg/cryptox"
	"github.com/pressroomhq/pressroom/pkg/idx"
	"github.com/pressroomhq/pressroom/pkg/slogx"
)

// Purpose-bound token lifetimes.
const (
	verifyTokenTTL = 24 * time.Hour
	resetTokenTTL  = time.Hour
)

// Token purposes. A token minted for one purpose never validates for
// another.
const (
	purposeVerifyEmail   = "verify_email"
	purposePasswordReset = "password_reset"
)

var (
	ErrInvalidRegistration = apperr.New(apperr.KindValidation, "invalid registration")
	ErrEmailTaken          = apperr.New(apperr.KindConflict, "email already registered")
	ErrInvalidCredentials  = apperr.New(apperr.KindUnauthorized, "invalid credentials")
	ErrEmailNotVerified    = apperr.New(apperr.KindForbidden, "email not verified")
	ErrInvalidActionToken  = apperr.New(apperr.KindUnauthorized, "invalid or expired token")
)

type purposeClaims struct {
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// AccountService covers registration, login, email verification, and the
// simple password-reset token flow. Verification and reset links carry
// short-lived HS256 tokens bound to a purpose, so the store holds no
// one-time-token rows.
type AccountService struct {
	Store    store.Store
	Sessions *SessionService
	Notifier *NotificationService

	// TokenSecret signs verification and reset tokens.
	TokenSecret []byte
	// Issuer is the iss claim on purpose tokens.
	Issuer string
	// BaseURL prefixes links in outbound email.
	BaseURL string

	Now func() time.Time
}

func (s *AccountService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return nowUTC()
}

// Register creates an unverified account and sends the verification email.
func (s *AccountService) Register(ctx context.Context, name, email, password string) (domain.User, error) {
	log := slogx.FromContext(ctx)

	if name == "" || len(password) < 8 {
		return domain.User{}, ErrInvalidRegistration
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return domain.User{}, ErrInvalidRegistration
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, apperr.Wrap(apperr.KindInternal, "hash password", err)
	}

	now := s.now()
	user := domain.User{
		ID:            idx.New().String(),
		Name:          name,
		Email:         email,
		EmailVerified: false,
		PasswordHash:  hash,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrEmailTaken
		}
		return domain.User{}, apperr.Wrap(apperr.KindInternal, "create user", err)
	}

	log.Info("user registered", slog.String("user_id", user.ID))

	if s.Notifier != nil {
		token, err := s.mintToken(user.ID, purposeVerifyEmail, verifyTokenTTL)
		if err != nil {
			log.Error("failed to mint verification token", slog.Any("error", err))
		} else {
			go s.Notifier.Send(context.Background(), user.Email, EmailTypeVerification,
				"Verify your email address",
				fmt.Sprintf(`<p><a href="%s/verify?token=%s">Verify your email</a> to activate your account.</p>`,
					s.BaseURL, token),
			)
		}
	}

	return user, nil
}

// VerifyEmail redeems a verification token, flips the flag, and issues a
// session so the user lands logged in.
func (s *AccountService) VerifyEmail(ctx context.Context, token string) (domain.Session, error) {
	userID, err := s.parseToken(token, purposeVerifyEmail)
	if err != nil {
		return domain.Session{}, err
	}

	if err := s.Store.Users().MarkEmailVerified(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Session{}, apperr.New(apperr.KindNotFound, "user not found")
		}
		return domain.Session{}, apperr.Wrap(apperr.KindInternal, "mark email verified", err)
	}

	slogx.FromContext(ctx).Info("email verified", slog.String("user_id", userID))
	return s.Sessions.Create(ctx, userID)
}

// Login checks credentials and issues a session. Unknown email and wrong
// password produce the identical error, and a password check runs either
// way so the two cases don't diverge in timing.
func (s *AccountService) Login(ctx context.Context, email, password string) (domain.Session, error) {
	log := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_ = cryptox.VerifyPassword(password, dummyHash)
			return domain.Session{}, ErrInvalidCredentials
		}
		return domain.Session{}, apperr.Wrap(apperr.KindInternal, "load user", err)
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		log.Info("login failed", slog.String("user_id", user.ID))
		return domain.Session{}, ErrInvalidCredentials
	}

	if !user.EmailVerified {
		return domain.Session{}, ErrEmailNotVerified
	}

	return s.Sessions.Create(ctx, user.ID)
}

// RequestPasswordReset emails a reset link. It reports success for unknown
// addresses too, so the endpoint cannot be used to probe for accounts.
func (s *AccountService) RequestPasswordReset(ctx context.Context, email string) error {
	log := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Info("password reset requested for unknown email")
			return nil
		}
		return apperr.Wrap(apperr.KindInternal, "load user", err)
	}

	token, err := s.mintToken(user.ID, purposePasswordReset, resetTokenTTL)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "mint reset token", err)
	}

	if s.Notifier != nil {
		go s.Notifier.Send(context.Background(), user.Email, EmailTypePasswordReset,
			"Reset your password",
			fmt.Sprintf(`<p><a href="%s/reset-password?token=%s">Reset your password</a>. The link expires in one hour.</p>`,
				s.BaseURL, token),
		)
	}
	return nil
}

// ResetPassword redeems a reset token, replaces the hash, and destroys every
// session the user holds.
func (s *AccountService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < 8 {
		return ErrInvalidRegistration
	}

	userID, err := s.parseToken(token, purposePasswordReset)
	if err != nil {
		return err
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "hash password", err)
	}

	if err := s.Store.Users().UpdatePasswordHash(ctx, userID, hash); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.New(apperr.KindNotFound, "user not found")
		}
		return apperr.Wrap(apperr.KindInternal, "update password hash", err)
	}

	if err := s.Store.Sessions().DeleteUserSessions(ctx, userID); err != nil {
		return apperr.Wrap(apperr.KindInternal, "revoke sessions", err)
	}

	slogx.FromContext(ctx).Info("password reset", slog.String("user_id", userID))
	return nil
}

func (s *AccountService) mintToken(userID, purpose string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := purposeClaims{
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    s.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.TokenSecret)
}

func (s *AccountService) parseToken(token, purpose string) (string, error) {
	var claims purposeClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return s.TokenSecret, nil
	}, jwt.WithIssuer(s.Issuer), jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid || claims.Purpose != purpose || claims.Subject == "" {
		return "", ErrInvalidActionToken
	}
	return claims.Subject, nil
}

// dummyHash burns an argon2 verification for unknown emails so login timing
// does not reveal whether an address is registered.
var dummyHash = func() string {
	h, err := cryptox.HashPassword("not-a-real-password")
	if err != nil {
		panic(err)
	}
	return h
}()
