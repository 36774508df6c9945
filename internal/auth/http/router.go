package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/pressroomhq/pressroom/internal/auth/service"
	"github.com/pressroomhq/pressroom/internal/auth/store"
	"github.com/pressroomhq/pressroom/pkg/httpx"
	"github.com/pressroomhq/pressroom/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion  string
	startTime     time.Time
	logger        *slog.Logger
	secureCookies bool

	store             store.Store
	SessionService    *service.SessionService
	AccountService    *service.AccountService
	WorkspaceService  *service.WorkspaceService
	MembershipService *service.MembershipService
	InvitationService *service.InvitationService
	APIKeyService     *service.APIKeyService
	Gate              *service.Gate
}

func NewRouter(
	buildVersion string,
	secureCookies bool,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:           http.NewServeMux(),
		buildVersion:  buildVersion,
		startTime:     time.Now(),
		secureCookies: secureCookies,
		store:         st,
		logger:        logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAccounts()
	r.registerWorkspaces()
	r.registerMembers()
	r.registerInvitations()
	r.registerAPIKeys()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAccounts() {
	h := &AccountHandler{
		AccountService: r.AccountService,
		SessionService: r.SessionService,
		SecureCookies:  r.secureCookies,
	}

	// Unauthenticated credential endpoints get the strict IP limit to slow
	// brute force and enumeration.
	r.Mux.Handle("POST /v1/accounts/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/accounts/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/accounts/verify-email",
		httpx.Chain(http.HandlerFunc(h.HandleVerifyEmail),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/accounts/password-reset/request",
		httpx.Chain(http.HandlerFunc(h.HandleResetRequest),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/accounts/password-reset/confirm",
		httpx.Chain(http.HandlerFunc(h.HandleResetConfirm),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("POST /v1/accounts/logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			SessionAuth(r.SessionService),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerWorkspaces() {
	h := &WorkspaceHandler{
		WorkspaceService: r.WorkspaceService,
		Gate:             r.Gate,
	}

	r.Mux.Handle("POST /v1/workspaces",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			SessionAuth(r.SessionService),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /v1/workspaces/{slug}",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			SessionAuth(r.SessionService),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerMembers() {
	h := &MemberHandler{
		MembershipService: r.MembershipService,
		Gate:              r.Gate,
	}

	r.Mux.Handle("GET /v1/workspaces/{slug}/members",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			SessionAuth(r.SessionService),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("PATCH /v1/workspaces/{slug}/members/{userID}",
		httpx.Chain(http.HandlerFunc(h.HandleUpdateRole),
			SessionAuth(r.SessionService),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("DELETE /v1/workspaces/{slug}/members/{userID}",
		httpx.Chain(http.HandlerFunc(h.HandleRemove),
			SessionAuth(r.SessionService),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /v1/workspaces/{slug}/leave",
		httpx.Chain(http.HandlerFunc(h.HandleLeave),
			SessionAuth(r.SessionService),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerInvitations() {
	h := &InvitationHandler{
		InvitationService: r.InvitationService,
		Gate:              r.Gate,
	}

	r.Mux.Handle("POST /v1/workspaces/{slug}/invitations",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			SessionAuth(r.SessionService),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /v1/workspaces/{slug}/invitations",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			SessionAuth(r.SessionService),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("DELETE /v1/workspaces/{slug}/invitations/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleRevoke),
			SessionAuth(r.SessionService),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	// Accept is strict: the token is a bearer secret and guesses should be
	// expensive.
	r.Mux.Handle("POST /v1/invitations/accept",
		httpx.Chain(http.HandlerFunc(h.HandleAccept),
			SessionAuth(r.SessionService),
			httpx.RateLimitByUser(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerAPIKeys() {
	h := &APIKeyHandler{
		APIKeyService: r.APIKeyService,
		Gate:          r.Gate,
	}

	r.Mux.Handle("POST /v1/workspaces/{slug}/keys",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			SessionAuth(r.SessionService),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /v1/workspaces/{slug}/keys",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			SessionAuth(r.SessionService),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("DELETE /v1/workspaces/{slug}/keys/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleRevoke),
			SessionAuth(r.SessionService),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may
	// poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
