package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pressroomhq/pressroom/internal/auth/domain"
	"github.com/pressroomhq/pressroom/internal/auth/service"
	"github.com/pressroomhq/pressroom/internal/auth/store"
	"github.com/pressroomhq/pressroom/internal/auth/store/drivers/sqlite"
	"github.com/pressroomhq/pressroom/pkg/httpx"
	"github.com/pressroomhq/pressroom/pkg/prsdk"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	router      *Router
	st          store.Store
	accounts    *service.AccountService
	invitations *service.InvitationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	sessions := &service.SessionService{Store: st}
	accounts := &service.AccountService{
		Store:       st,
		Sessions:    sessions,
		TokenSecret: []byte("test-secret"),
		Issuer:      "test-issuer",
		BaseURL:     "http://localhost:8080",
	}
	invitations := &service.InvitationService{Store: st, Sessions: sessions}

	router := NewRouter("test", false, st, logger)
	router.SessionService = sessions
	router.AccountService = accounts
	router.WorkspaceService = &service.WorkspaceService{Store: st}
	router.MembershipService = &service.MembershipService{Store: st}
	router.InvitationService = invitations
	router.APIKeyService = &service.APIKeyService{Store: st, Logger: logger}
	router.Gate = &service.Gate{Sessions: sessions, Store: st}
	router.ApplyRoutes()

	return &testEnv{router: router, st: st, accounts: accounts, invitations: invitations}
}

// registerVerified creates an account through the service and flips the
// verification flag directly; the emailed token is not reachable from here.
func (e *testEnv) registerVerified(t *testing.T, name, email, password string) domain.User {
	t.Helper()

	user, err := e.accounts.Register(context.Background(), name, email, password)
	require.NoError(t, err)
	require.NoError(t, e.st.Users().MarkEmailVerified(context.Background(), user.ID))
	return user
}

func (e *testEnv) do(t *testing.T, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if cookie != nil {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) login(t *testing.T, email, password string) *http.Cookie {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/v1/accounts/login", prsdk.LoginRequest{
		Email:    email,
		Password: password,
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	for _, c := range rec.Result().Cookies() {
		if c.Name == httpx.SessionCookieName {
			require.True(t, c.HttpOnly)
			return c
		}
	}
	t.Fatal("no session cookie in login response")
	return nil
}

func TestWorkspaceFlow(t *testing.T) {
	env := newTestEnv(t)

	env.registerVerified(t, "Owner", "owner@example.com", "correct horse battery")
	invitee := env.registerVerified(t, "Invitee", "invitee@example.com", "another fine password")

	ownerCookie := env.login(t, "owner@example.com", "correct horse battery")
	inviteeCookie := env.login(t, "invitee@example.com", "another fine password")

	// Create a workspace; the creator is its first owner.
	rec := env.do(t, http.MethodPost, "/v1/workspaces", prsdk.CreateWorkspaceRequest{
		Name: "The Newsroom",
		Slug: "newsroom",
	}, ownerCookie)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var ws prsdk.WorkspaceInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ws))

	// The roster shows exactly the owner.
	rec = env.do(t, http.MethodGet, "/v1/workspaces/newsroom/members", nil, ownerCookie)
	require.Equal(t, http.StatusOK, rec.Code)

	var members prsdk.ListMembersResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &members))
	require.Len(t, members.Members, 1)
	require.Equal(t, "owner", members.Members[0].Role)

	t.Run("unauthenticated requests are rejected", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/v1/workspaces/newsroom/members", nil, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("non-members cannot read the roster", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/v1/workspaces/newsroom/members", nil, inviteeCookie)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown workspace is 404", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/v1/workspaces/nope/members", nil, ownerCookie)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("invitation accept joins the workspace", func(t *testing.T) {
		// Created via the service so the test can reach the accept token,
		// which the API only ever puts in email.
		inv := createInvitation(t, env, ws.ID, "owner@example.com", invitee.Email)

		rec := env.do(t, http.MethodPost, "/v1/invitations/accept", prsdk.AcceptInviteRequest{
			Token: inv.Token,
		}, inviteeCookie)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		rec = env.do(t, http.MethodGet, "/v1/workspaces/newsroom/members", nil, inviteeCookie)
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("member cannot issue api keys", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/workspaces/newsroom/keys", prsdk.CreateAPIKeyRequest{
			Description: "sneaky",
		}, inviteeCookie)
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("owner issues and revokes an api key", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/workspaces/newsroom/keys", prsdk.CreateAPIKeyRequest{
			Description: "ci",
		}, ownerCookie)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var created prsdk.CreateAPIKeyResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		require.NotEmpty(t, created.Key)

		rec = env.do(t, http.MethodDelete, "/v1/workspaces/newsroom/keys/"+created.ID, nil, ownerCookie)
		require.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("logout clears the session", func(t *testing.T) {
		cookie := env.login(t, "owner@example.com", "correct horse battery")
		rec := env.do(t, http.MethodPost, "/v1/accounts/logout", nil, cookie)
		require.Equal(t, http.StatusNoContent, rec.Code)

		rec = env.do(t, http.MethodGet, "/v1/workspaces/newsroom/members", nil, cookie)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func createInvitation(t *testing.T, env *testEnv, workspaceID, inviterEmail, inviteeEmail string) domain.Invitation {
	t.Helper()

	ctx := context.Background()
	inviter, err := env.st.Users().GetUserByEmail(ctx, inviterEmail)
	require.NoError(t, err)

	inv, err := env.invitations.Invite(ctx, workspaceID, inviter.ID, inviteeEmail, domain.RoleMember)
	require.NoError(t, err)
	return inv
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/livez", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/readyz", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var health prsdk.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	require.Equal(t, "ok", health.Status)
	require.NotNil(t, health.Checks)
	require.Equal(t, "ok", health.Checks.Database)
}
