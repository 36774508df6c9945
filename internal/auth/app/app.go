package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/pressroomhq/pressroom/internal/auth/http"
	"github.com/pressroomhq/pressroom/internal/auth/service"
	"github.com/pressroomhq/pressroom/internal/auth/store"
	"github.com/pressroomhq/pressroom/internal/auth/store/drivers/sqlite"
	"github.com/pressroomhq/pressroom/pkg/cryptox"
	"github.com/pressroomhq/pressroom/pkg/mailx"
	"github.com/pressroomhq/pressroom/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the workspace-auth service with all its
// dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db store.Store

	sessionService      *service.SessionService
	accountService      *service.AccountService
	workspaceService    *service.WorkspaceService
	membershipService   *service.MembershipService
	invitationService   *service.InvitationService
	apiKeyService       *service.APIKeyService
	notificationService *service.NotificationService
	housekeepingService *service.HousekeepingService
	gate                *service.Gate

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "workspace-auth",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("workspace-auth starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down workspace-auth...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("workspace-auth stopped")
	return nil
}

// initDatabase opens the SQLite store and applies migrations.
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initServices initializes all business logic services.
func (app *Application) initServices() {
	var mailer mailx.Mailer
	if app.cfg.SendGridAPIKey != "" {
		mailer = mailx.NewSendGridMailer(app.cfg.SendGridAPIKey, app.cfg.EmailFromName, app.cfg.EmailFromAddr)
	} else {
		app.logger.Warn("SENDGRID_API_KEY not set, email will be logged instead of sent")
		mailer = &mailx.LogMailer{Logger: app.logger}
	}

	app.notificationService = &service.NotificationService{
		Store:  app.db,
		Mailer: mailer,
		Logger: app.logger,
	}

	app.sessionService = &service.SessionService{Store: app.db}
	app.accountService = &service.AccountService{
		Store:       app.db,
		Sessions:    app.sessionService,
		Notifier:    app.notificationService,
		TokenSecret: app.tokenSecret(),
		Issuer:      app.cfg.Issuer,
		BaseURL:     app.cfg.BaseURL,
	}
	app.workspaceService = &service.WorkspaceService{Store: app.db}
	app.membershipService = &service.MembershipService{Store: app.db}
	app.invitationService = &service.InvitationService{
		Store:    app.db,
		Sessions: app.sessionService,
		Notifier: app.notificationService,
		BaseURL:  app.cfg.BaseURL,
	}
	app.apiKeyService = &service.APIKeyService{
		Store:  app.db,
		Logger: app.logger,
	}
	app.gate = &service.Gate{
		Sessions: app.sessionService,
		Store:    app.db,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// tokenSecret returns the configured HMAC secret, or a random boot-scoped
// one in dev. A random secret invalidates outstanding verification and
// reset links on every restart, which is acceptable only in dev.
func (app *Application) tokenSecret() []byte {
	if app.cfg.TokenSecret != "" {
		return []byte(app.cfg.TokenSecret)
	}

	if app.cfg.Env != "dev" {
		app.logger.Error("AUTH_TOKEN_SECRET is required outside dev")
		os.Exit(1)
	}

	app.logger.Warn("AUTH_TOKEN_SECRET not set, generating ephemeral secret")
	secret, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		app.logger.Error("failed to generate ephemeral token secret", "error", err)
		os.Exit(1)
	}
	return []byte(secret)
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		BuildVersion,
		app.cfg.Env != "dev",
		app.db,
		app.logger,
	)

	// Wire services to router
	router.SessionService = app.sessionService
	router.AccountService = app.accountService
	router.WorkspaceService = app.workspaceService
	router.MembershipService = app.membershipService
	router.InvitationService = app.invitationService
	router.APIKeyService = app.apiKeyService
	router.Gate = app.gate
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
