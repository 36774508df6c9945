package http

import (
	"log/slog"
	"net/http"

	"github.com/pressroomhq/pressroom/internal/auth/apperr"
	"github.com/pressroomhq/pressroom/pkg/httpx"
	"github.com/pressroomhq/pressroom/pkg/prsdk"
	"github.com/pressroomhq/pressroom/pkg/slogx"
)

// writeError maps a tagged service error onto the HTTP error envelope.
// Internal errors are logged with detail but reported generically; every
// other kind carries its message through, which is safe because service
// messages never include secrets or row contents.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)

	status, code := http.StatusInternalServerError, "server_error"
	switch kind {
	case apperr.KindValidation:
		status, code = http.StatusBadRequest, "invalid_request"
	case apperr.KindUnauthorized:
		status, code = http.StatusUnauthorized, "unauthorized"
	case apperr.KindForbidden:
		status, code = http.StatusForbidden, "forbidden"
	case apperr.KindNotFound:
		status, code = http.StatusNotFound, "not_found"
	case apperr.KindConflict:
		status, code = http.StatusConflict, "conflict"
	}

	desc := err.Error()
	if status == http.StatusInternalServerError {
		slogx.FromContext(r.Context()).Error("request failed", slog.Any("error", err))
		desc = "Internal server error"
	}

	httpx.WriteJSON(w, status, prsdk.ErrorResponse{
		Error:            code,
		ErrorDescription: desc,
	})
}

// writeBadRequest reports a malformed or invalid request body.
func writeBadRequest(w http.ResponseWriter, desc string) {
	httpx.WriteJSON(w, http.StatusBadRequest, prsdk.ErrorResponse{
		Error:            "invalid_request",
		ErrorDescription: desc,
	})
}
