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

type MemberHandler struct {
	MembershipService *service.MembershipService
	Gate              *service.Gate
}

// HandleList returns the workspace's members. Any member can read the
// roster.
func (h *MemberHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	actor, ok := authorize(w, r, h.Gate, domain.RoleMember)
	if !ok {
		return
	}

	members, err := h.MembershipService.ListMembers(r.Context(), actor.Workspace.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response := prsdk.ListMembersResponse{
		Members: make([]prsdk.MemberInfo, len(members)),
	}
	for i, m := range members {
		response.Members[i] = prsdk.MemberInfo{
			UserID:   m.UserID,
			Role:     string(m.Role),
			JoinedAt: m.JoinedAt.Format(time.RFC3339),
		}
	}

	httpx.WriteJSON(w, http.StatusOK, response)
}

// HandleUpdateRole changes a member's role. The gate admits admins and
// owners; the service enforces the finer rules (no self-change, must
// outrank the target, last-owner guard).
func (h *MemberHandler) HandleUpdateRole(w http.ResponseWriter, r *http.Request) {
	actor, ok := authorize(w, r, h.Gate, domain.RoleAdmin)
	if !ok {
		return
	}

	var req prsdk.UpdateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid JSON body")
		return
	}

	role, ok := domain.ParseRole(req.Role)
	if !ok {
		writeBadRequest(w, "Invalid role")
		return
	}

	targetID := r.PathValue("userID")
	if err := h.MembershipService.UpdateRole(r.Context(), actor.Workspace.ID, actor.UserID, targetID, role); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleRemove removes a member from the workspace.
func (h *MemberHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	actor, ok := authorize(w, r, h.Gate, domain.RoleAdmin)
	if !ok {
		return
	}

	targetID := r.PathValue("userID")
	if err := h.MembershipService.Remove(r.Context(), actor.Workspace.ID, actor.UserID, targetID); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleLeave removes the caller's own membership.
func (h *MemberHandler) HandleLeave(w http.ResponseWriter, r *http.Request) {
	actor, ok := authorize(w, r, h.Gate, domain.RoleMember)
	if !ok {
		return
	}

	if err := h.MembershipService.Leave(r.Context(), actor.Workspace.Slug, actor.UserID); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
