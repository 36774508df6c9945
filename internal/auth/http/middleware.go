package http

import (
	"net/http"

	"github.com/pressroomhq/pressroom/internal/auth/service"
	"github.com/pressroomhq/pressroom/pkg/httpx"
	"github.com/pressroomhq/pressroom/pkg/prsdk"
)

// SessionAuth resolves the session cookie and injects the caller identity
// into the request context. Requests without a live session get 401 before
// the handler runs. Workspace-scoped handlers still run the full
// authorization gate; this middleware only establishes who is calling.
func SessionAuth(sessions *service.SessionService) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := httpx.SessionIDFromRequest(r)
			if sessionID == "" {
				httpx.WriteJSON(w, http.StatusUnauthorized, prsdk.ErrorResponse{
					Error:            "unauthorized",
					ErrorDescription: "Authentication required",
				})
				return
			}

			userID, err := sessions.Resolve(r.Context(), sessionID)
			if err != nil {
				// Expired, unknown, and malformed all read the same; no point
				// telling an attacker which.
				httpx.WriteJSON(w, http.StatusUnauthorized, prsdk.ErrorResponse{
					Error:            "unauthorized",
					ErrorDescription: "Authentication required",
				})
				return
			}

			ctx := httpx.ContextWithAuth(r.Context(), userID, sessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
