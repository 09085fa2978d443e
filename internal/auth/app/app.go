package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpapi "github.com/rentfuse/rentfuse/internal/auth/http"
	"github.com/rentfuse/rentfuse/internal/auth/service"
	"github.com/rentfuse/rentfuse/internal/auth/store"
	"github.com/rentfuse/rentfuse/internal/auth/store/drivers/sqlite"
	"github.com/rentfuse/rentfuse/pkg/jwtx"
	"github.com/rentfuse/rentfuse/pkg/slogx"
)

// BuildVersion should be set at build time via ldflags.
const BuildVersion = "v0.1.0"

// Application wires the auth service together.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db    store.Store
	codec *jwtx.Codec

	tokenService        *service.TokenService
	directoryService    *service.DirectoryService
	sessionService      *service.SessionService
	auditService        *service.AuditService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized. Missing or
// undersized signing secrets fail here, before the server ever listens.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "rentfuse-auth",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	codec, err := jwtx.NewCodec(cfg.JWTSecret, cfg.JWTRefreshSecret)
	if err != nil {
		return nil, fmt.Errorf("signing secrets: %w", err)
	}
	app.codec = codec

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

	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)

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

// Shutdown drains in-flight requests, stops the background workers, flushes
// the audit queue, and closes the database.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	// After the workers stop, no new events arrive; Close flushes the rest.
	app.auditService.Close()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn)
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

func (app *Application) initServices() {
	app.auditService = service.NewAuditService(app.db, app.logger, app.cfg.AuditBuffer)

	app.tokenService = &service.TokenService{
		Codec:      app.codec,
		Store:      app.db,
		Audit:      app.auditService,
		Issuer:     app.cfg.Issuer,
		Audience:   app.cfg.Audience,
		AccessTTL:  app.cfg.AccessTokenTTL,
		RefreshTTL: app.cfg.RefreshTokenTTL,
	}

	app.directoryService = &service.DirectoryService{
		Store: app.db,
		Audit: app.auditService,
	}

	app.sessionService = &service.SessionService{
		Store:    app.db,
		Lifetime: app.cfg.SessionLifetime,
		Rotation: app.cfg.SessionRotation,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.tokenService,
		app.sessionService,
		app.auditService,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

func (app *Application) initHTTP() {
	app.router = httpapi.NewRouter(BuildVersion, app.db, app.logger)
	app.router.TokenService = app.tokenService
	app.router.DirectoryService = app.directoryService
	app.router.SessionService = app.sessionService
	app.router.AuditService = app.auditService
	app.router.ApplyRoutes()

	app.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", app.cfg.Port),
		Handler: app.router,
	}
}
