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

type InvitationHandler struct {
	InvitationService *service.InvitationService
	Gate              *service.Gate
}

// HandleCreate invites an account into the workspace. Admin and above;
// the service additionally requires the inviter to outrank the invited
// role.
func (h *InvitationHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	actor, ok := authorize(w, r, h.Gate, domain.RoleAdmin)
	if !ok {
		return
	}

	var req prsdk.InviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid JSON body")
		return
	}
	if req.Email == "" {
		writeBadRequest(w, "email is required")
		return
	}

	role, ok := domain.ParseRole(req.Role)
	if !ok {
		writeBadRequest(w, "Invalid role")
		return
	}

	inv, err := h.InvitationService.Invite(r.Context(), actor.Workspace.ID, actor.UserID, req.Email, role)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, invitationInfo(inv))
}

// HandleList returns the workspace's invitations, time-expired pending
// rows excluded.
func (h *InvitationHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	actor, ok := authorize(w, r, h.Gate, domain.RoleAdmin)
	if !ok {
		return
	}

	invitations, err := h.InvitationService.ListByWorkspace(r.Context(), actor.Workspace.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response := prsdk.ListInvitationsResponse{
		Invitations: make([]prsdk.InvitationInfo, len(invitations)),
	}
	for i, inv := range invitations {
		response.Invitations[i] = invitationInfo(inv)
	}

	httpx.WriteJSON(w, http.StatusOK, response)
}

// HandleRevoke cancels a pending invitation.
func (h *InvitationHandler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	actor, ok := authorize(w, r, h.Gate, domain.RoleAdmin)
	if !ok {
		return
	}

	invitationID := r.PathValue("id")
	if err := h.InvitationService.Revoke(r.Context(), actor.Workspace.ID, actor.UserID, invitationID); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleAccept redeems an invitation token for the logged-in user. Not
// workspace-scoped: the token itself names the workspace.
func (h *InvitationHandler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req prsdk.AcceptInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid JSON body")
		return
	}
	if req.Token == "" {
		writeBadRequest(w, "token is required")
		return
	}

	membership, err := h.InvitationService.Accept(ctx, req.Token, httpx.UserIDFromContext(ctx))
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, prsdk.AcceptInviteResponse{
		WorkspaceID: membership.WorkspaceID,
		Role:        string(membership.Role),
		JoinedAt:    membership.JoinedAt.Format(time.RFC3339),
	})
}

func invitationInfo(inv domain.Invitation) prsdk.InvitationInfo {
	return prsdk.InvitationInfo{
		ID:        inv.ID,
		Email:     inv.Email,
		Role:      string(inv.Role),
		Status:    string(inv.Status),
		InvitedBy: inv.InvitedBy,
		InvitedAt: inv.InvitedAt.Format(time.RFC3339),
		ExpiresAt: inv.ExpiresAt.Format(time.RFC3339),
	}
}
