package httpx

import (
	"net/http"
	"time"
)

// SessionCookieName is the cookie the browser client stores the opaque
// session id under.
const SessionCookieName = "pressroom_session"

// SetSessionCookie writes the session cookie. The cookie is httpOnly and
// SameSite=Lax; Secure is set outside dev so local HTTP testing still works.
// Expires mirrors the session row's expiry so the browser drops the cookie
// when the server would reject it anyway.
func SetSessionCookie(w http.ResponseWriter, sessionID string, expiresAt time.Time, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    sessionID,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie immediately (logout).
func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// SessionIDFromRequest extracts the session id from the request cookie.
// Returns "" when the cookie is absent.
func SessionIDFromRequest(r *http.Request) string {
	c, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}
