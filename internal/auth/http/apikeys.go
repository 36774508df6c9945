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

type APIKeyHandler struct {
	APIKeyService *service.APIKeyService
	Gate          *service.Gate
}

// HandleCreate issues a new API key. The plaintext appears in this
// response and nowhere else.
func (h *APIKeyHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	actor, ok := authorize(w, r, h.Gate, domain.RoleAdmin)
	if !ok {
		return
	}

	var req prsdk.CreateAPIKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid JSON body")
		return
	}

	plaintext, key, err := h.APIKeyService.Issue(r.Context(), actor.Workspace.ID, req.Description, actor.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusCreated, prsdk.CreateAPIKeyResponse{
		ID:          key.ID,
		Key:         plaintext,
		Description: key.Description,
		CreatedAt:   key.CreatedAt.Format(time.RFC3339),
	})
}

// HandleList returns the workspace's keys; hashes and plaintexts are never
// included.
func (h *APIKeyHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	actor, ok := authorize(w, r, h.Gate, domain.RoleAdmin)
	if !ok {
		return
	}

	keys, err := h.APIKeyService.List(r.Context(), actor.Workspace.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response := prsdk.ListAPIKeysResponse{
		Keys: make([]prsdk.APIKeyInfo, len(keys)),
	}
	for i, k := range keys {
		info := prsdk.APIKeyInfo{
			ID:          k.ID,
			Description: k.Description,
			CreatedBy:   k.CreatedBy,
			CreatedAt:   k.CreatedAt.Format(time.RFC3339),
			LastUsedIP:  k.LastUsedIP,
		}
		if k.LastUsedAt != nil {
			ts := k.LastUsedAt.Format(time.RFC3339)
			info.LastUsedAt = &ts
		}
		response.Keys[i] = info
	}

	httpx.WriteJSON(w, http.StatusOK, response)
}

// HandleRevoke deletes a key. The delete is workspace-scoped, so a key id
// from another workspace reads as not found.
func (h *APIKeyHandler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	actor, ok := authorize(w, r, h.Gate, domain.RoleAdmin)
	if !ok {
		return
	}

	keyID := r.PathValue("id")
	if err := h.APIKeyService.Revoke(r.Context(), actor.Workspace.ID, keyID); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
