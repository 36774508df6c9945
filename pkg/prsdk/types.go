// Package prsdk contains the request and response types for the
// workspace-auth HTTP API. Handlers marshal these; Go consumers of the
// API can decode into them directly.
package prsdk

// ErrorResponse is the standard error envelope returned by every
// endpoint on failure.
type ErrorResponse struct {
	// Error is a stable machine-readable code (e.g. "invalid_request",
	// "forbidden", "conflict")
	Error string `json:"error"`

	// ErrorDescription is a human-readable description of the error
	ErrorDescription string `json:"error_description"`
}

// ============================================================================
// Account Types
// ============================================================================

// RegisterRequest creates a new account. The account starts unverified;
// a verification link is emailed to the given address.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserInfo is the public view of an account.
type UserInfo struct {
	UserID        string `json:"user_id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	CreatedAt     string `json:"created_at"` // RFC3339
}

// LoginRequest authenticates with email and password.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse is returned when a session is issued (login, email
// verification). The session ID also travels in the session cookie.
type SessionResponse struct {
	UserID    string `json:"user_id"`
	ExpiresAt string `json:"expires_at"` // RFC3339
}

// VerifyEmailRequest redeems an emailed verification token.
type VerifyEmailRequest struct {
	Token string `json:"token"`
}

// PasswordResetRequest asks for a reset link to be emailed.
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// PasswordResetConfirmRequest redeems a reset token with a new password.
type PasswordResetConfirmRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// ============================================================================
// Workspace Types
// ============================================================================

// CreateWorkspaceRequest creates a workspace; the caller becomes its
// first owner.
type CreateWorkspaceRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// WorkspaceInfo is the public view of a workspace.
type WorkspaceInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	CreatedAt string `json:"created_at"` // RFC3339
}

// ============================================================================
// Membership Types
// ============================================================================

// MemberInfo is one row of a workspace's member listing.
type MemberInfo struct {
	UserID   string `json:"user_id"`
	Role     string `json:"role"`
	JoinedAt string `json:"joined_at"` // RFC3339
}

// ListMembersResponse contains a workspace's members ordered by join date.
type ListMembersResponse struct {
	Members []MemberInfo `json:"members"`
}

// UpdateRoleRequest changes a member's role.
type UpdateRoleRequest struct {
	Role string `json:"role"`
}

// ============================================================================
// Invitation Types
// ============================================================================

// InviteRequest invites an existing, verified account into the workspace.
type InviteRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// InvitationInfo is the public view of an invitation. The accept token is
// never included; it travels only in the invitation email.
type InvitationInfo struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Status    string `json:"status"`
	InvitedBy string `json:"invited_by"`
	InvitedAt string `json:"invited_at"` // RFC3339
	ExpiresAt string `json:"expires_at"` // RFC3339
}

// ListInvitationsResponse contains a workspace's invitations, newest first.
type ListInvitationsResponse struct {
	Invitations []InvitationInfo `json:"invitations"`
}

// AcceptInviteRequest redeems an invitation token for the logged-in user.
type AcceptInviteRequest struct {
	Token string `json:"token"`
}

// AcceptInviteResponse describes the membership the acceptance created.
type AcceptInviteResponse struct {
	WorkspaceID string `json:"workspace_id"`
	Role        string `json:"role"`
	JoinedAt    string `json:"joined_at"` // RFC3339
}

// ============================================================================
// API Key Types
// ============================================================================

// CreateAPIKeyRequest issues a new workspace API key.
type CreateAPIKeyRequest struct {
	Description string `json:"description"`
}

// CreateAPIKeyResponse contains the plaintext key. It is returned exactly
// once; only a hash is stored server-side.
type CreateAPIKeyResponse struct {
	ID          string `json:"id"`
	Key         string `json:"key"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"` // RFC3339
}

// APIKeyInfo is one row of a workspace's key listing. No key material is
// included.
type APIKeyInfo struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	CreatedBy   string  `json:"created_by"`
	CreatedAt   string  `json:"created_at"`            // RFC3339
	LastUsedAt  *string `json:"last_used_at,omitempty"` // RFC3339, null if never used
	LastUsedIP  string  `json:"last_used_ip,omitempty"`
}

// ListAPIKeysResponse contains a workspace's API keys.
type ListAPIKeysResponse struct {
	Keys []APIKeyInfo `json:"keys"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse is returned by /livez and /readyz (readyz includes the
// Checks field).
type HealthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime,omitempty"`
	Version string `json:"version,omitempty"`

	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the status of critical dependencies.
type HealthChecks struct {
	Database string `json:"database"`
}
