package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/pressroomhq/pressroom/internal/auth/service"
	"github.com/pressroomhq/pressroom/pkg/httpx"
	"github.com/pressroomhq/pressroom/pkg/prsdk"
	"github.com/pressroomhq/pressroom/pkg/slogx"
)

// AccountHandler serves registration, login/logout, email verification,
// and the password-reset flow.
type AccountHandler struct {
	AccountService *service.AccountService
	SessionService *service.SessionService

	// SecureCookies marks session cookies Secure; off only in dev.
	SecureCookies bool
}

// HandleRegister creates an unverified account and emails a verification
// link. No session is issued until the email is verified.
func (h *AccountHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req prsdk.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid JSON body")
		return
	}

	user, err := h.AccountService.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, prsdk.UserInfo{
		UserID:        user.ID,
		Name:          user.Name,
		Email:         user.Email,
		EmailVerified: user.EmailVerified,
		CreatedAt:     user.CreatedAt.Format(time.RFC3339),
	})
}

// HandleLogin authenticates with email and password and sets the session
// cookie.
func (h *AccountHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req prsdk.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid JSON body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeBadRequest(w, "email and password are required")
		return
	}

	session, err := h.AccountService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.SetSessionCookie(w, session.ID, session.ExpiresAt, h.SecureCookies)
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, prsdk.SessionResponse{
		UserID:    session.UserID,
		ExpiresAt: session.ExpiresAt.Format(time.RFC3339),
	})
}

// HandleLogout destroys the current session and clears the cookie. Always
// succeeds; logging out twice is fine.
func (h *AccountHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sessionID := httpx.SessionIDFromContext(ctx)
	if sessionID != "" {
		if err := h.SessionService.Destroy(ctx, sessionID); err != nil {
			slogx.FromContext(ctx).Warn("failed to destroy session on logout", "error", err)
		}
	}

	httpx.ClearSessionCookie(w, h.SecureCookies)
	w.WriteHeader(http.StatusNoContent)
}

// HandleVerifyEmail redeems a verification token and logs the user in.
func (h *AccountHandler) HandleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req prsdk.VerifyEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid JSON body")
		return
	}
	if req.Token == "" {
		writeBadRequest(w, "token is required")
		return
	}

	session, err := h.AccountService.VerifyEmail(r.Context(), req.Token)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.SetSessionCookie(w, session.ID, session.ExpiresAt, h.SecureCookies)
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, prsdk.SessionResponse{
		UserID:    session.UserID,
		ExpiresAt: session.ExpiresAt.Format(time.RFC3339),
	})
}

// HandleResetRequest emails a password-reset link. Responds 202 whether or
// not the address exists.
func (h *AccountHandler) HandleResetRequest(w http.ResponseWriter, r *http.Request) {
	var req prsdk.PasswordResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid JSON body")
		return
	}
	if req.Email == "" {
		writeBadRequest(w, "email is required")
		return
	}

	if err := h.AccountService.RequestPasswordReset(r.Context(), req.Email); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

// HandleResetConfirm redeems a reset token with the new password. All of
// the user's sessions are revoked, including the one behind any cookie the
// browser still holds.
func (h *AccountHandler) HandleResetConfirm(w http.ResponseWriter, r *http.Request) {
	var req prsdk.PasswordResetConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid JSON body")
		return
	}
	if req.Token == "" {
		writeBadRequest(w, "token is required")
		return
	}

	if err := h.AccountService.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		writeError(w, r, err)
		return
	}

	httpx.ClearSessionCookie(w, h.SecureCookies)
	w.WriteHeader(http.StatusNoContent)
}
