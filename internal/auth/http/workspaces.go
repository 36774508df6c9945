package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/pressroomhq/pressroom/internal/auth/domain"
	"github.com/pressroomhq/pressroom/internal/auth/service"
	"github.com/pressroomhq/pressroom/pkg/httpx"
	"github.com/pressroomhq/pressroom/pkg/prsdk"
)

type WorkspaceHandler struct {
	WorkspaceService *service.WorkspaceService
	Gate             *service.Gate
}

// HandleCreate provisions a workspace with the caller as its first owner.
func (h *WorkspaceHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req prsdk.CreateWorkspaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid JSON body")
		return
	}

	userID := httpx.UserIDFromContext(ctx)

	ws, err := h.WorkspaceService.Create(ctx, req.Name, req.Slug, userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, prsdk.WorkspaceInfo{
		ID:        ws.ID,
		Name:      ws.Name,
		Slug:      ws.Slug,
		CreatedAt: ws.CreatedAt.Format(time.RFC3339),
	})
}

// HandleGet returns the workspace; any member can read it.
func (h *WorkspaceHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	actor, ok := authorize(w, r, h.Gate, domain.RoleMember)
	if !ok {
		return
	}

	ws := actor.Workspace
	httpx.WriteJSON(w, http.StatusOK, prsdk.WorkspaceInfo{
		ID:        ws.ID,
		Name:      ws.Name,
		Slug:      ws.Slug,
		CreatedAt: ws.CreatedAt.Format(time.RFC3339),
	})
}
