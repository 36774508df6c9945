package http

import (
	"net/http"

	"github.com/pressroomhq/pressroom/internal/auth/domain"
	"github.com/pressroomhq/pressroom/internal/auth/service"
	"github.com/pressroomhq/pressroom/pkg/httpx"
)

// authorize runs the workspace gate for the request's {slug} path segment
// at the given minimum role. On failure the error envelope is already
// written and ok is false.
func authorize(w http.ResponseWriter, r *http.Request, gate *service.Gate, minRole domain.Role) (service.Actor, bool) {
	slug := r.PathValue("slug")
	if slug == "" {
		writeBadRequest(w, "workspace slug is required")
		return service.Actor{}, false
	}

	actor, err := gate.Authorize(r.Context(), httpx.SessionIDFromContext(r.Context()), slug, minRole)
	if err != nil {
		writeError(w, r, err)
		return service.Actor{}, false
	}
	return actor, true
}
