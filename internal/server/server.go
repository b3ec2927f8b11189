// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/oliverandrich/website/internal/cache"
	"codeberg.org/oliverandrich/website/internal/config"
	"codeberg.org/oliverandrich/website/internal/database"
	"codeberg.org/oliverandrich/website/internal/handlers"
	"codeberg.org/oliverandrich/website/internal/i18n"
	"codeberg.org/oliverandrich/website/internal/repository"
	"codeberg.org/oliverandrich/website/internal/services/auth"
	"codeberg.org/oliverandrich/website/internal/services/captcha"
	"codeberg.org/oliverandrich/website/internal/services/comment"
	"codeberg.org/oliverandrich/website/internal/services/email"
	"codeberg.org/oliverandrich/website/internal/services/session"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v3"
)

const (
	shutdownTimeout = 10 * time.Second
	reapInterval    = 15 * time.Minute
)

// notifier delivers both activation and comment mail.
type notifier interface {
	auth.Notifier
	comment.Notifier
}

// deps holds everything the routes need.
type deps struct {
	repo     *repository.Repository
	auth     *auth.Service
	comments *comment.Service
	sessions *session.Manager
}

// Run starts the server with the given CLI command.
func Run(ctx context.Context, cmd *cli.Command) error {
	cfg := config.NewFromCLI(cmd)
	setupLogger(cfg.Log.Level, cfg.Log.Format)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		return err
	}

	slog.Info("starting server",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"base_url", cfg.Server.BaseURL,
	)

	// Database, migrations are applied on open
	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("failed to close database", "error", closeErr)
		}
	}()

	if initErr := i18n.Init(); initErr != nil {
		return fmt.Errorf("failed to init i18n: %w", initErr)
	}

	repo := repository.New(db)

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = cache.Connect(ctx, &cfg.Redis)
		if err != nil {
			slog.Warn("duplicate comment guard disabled", "addr", cfg.Redis.Addr, "error", err)
		} else {
			defer func() { _ = rdb.Close() }()
		}
	}

	mailer, err := newNotifier(&cfg.SMTP)
	if err != nil {
		return fmt.Errorf("failed to set up email: %w", err)
	}

	d := newDeps(cfg, repo, captcha.NewClient(&cfg.Captcha), mailer, rdb)
	e := newEcho(cfg, d)

	reapCtx, stopReaper := context.WithCancel(ctx)
	defer stopReaper()
	go reapSessions(reapCtx, repo, reapInterval)

	return startWithGracefulShutdown(e, cfg)
}

func newNotifier(cfg *config.SMTPConfig) (notifier, error) {
	if !cfg.Enabled() {
		slog.Warn("SMTP not configured, emails will only be logged")
		return email.LogNotifier{}, nil
	}
	return email.NewService(cfg)
}

func newDeps(cfg *config.Config, repo *repository.Repository, verifier captchaVerifier, mailer notifier, rdb *redis.Client) *deps {
	var opts []comment.Option
	if rdb != nil {
		opts = append(opts, comment.WithGuard(cache.NewCommentGuard(rdb, cfg.Redis.DedupTTL)))
	}

	return &deps{
		repo:     repo,
		auth:     auth.NewService(repo, verifier, mailer, &cfg.Auth),
		comments: comment.NewService(repo, verifier, mailer, &cfg.Comments, opts...),
		sessions: session.NewManager(&cfg.Auth),
	}
}

// captchaVerifier is satisfied by captcha.Client and test fakes.
type captchaVerifier interface {
	auth.Verifier
	comment.Verifier
}

func newEcho(cfg *config.Config, d *deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handlers.NewValidator()
	e.HTTPErrorHandler = handlers.NewErrorHandler()

	setupMiddleware(e, cfg)
	setupRoutes(e, d, cfg.Server.StaticDir)
	return e
}

// reapSessions deletes expired sessions until ctx is done.
func reapSessions(ctx context.Context, repo *repository.Repository, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := repo.DeleteExpiredSessions(ctx, time.Now())
			if err != nil {
				slog.Warn("session_reap_failed", "error", err)
				continue
			}
			if n > 0 {
				slog.Debug("session_reap", "deleted", n)
			}
		}
	}
}

func startWithGracefulShutdown(e *echo.Echo, cfg *config.Config) error {
	tlsResult, err := SetupTLS(cfg)
	if err != nil {
		return fmt.Errorf("TLS setup failed: %w", err)
	}

	errChan := make(chan error, 2)

	// HTTP redirect server for ACME mode
	var httpServer *http.Server

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	switch tlsResult.Mode {
	case TLSModeOff:
		go func() {
			slog.Info("server running", "url", cfg.Server.BaseURL)
			if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()

	case TLSModeACME:
		go func() {
			slog.Info("server running", "url", cfg.Server.BaseURL)
			if err := startTLSServer(e, ":443", tlsResult.TLSConfig); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()

		httpServer = &http.Server{
			Addr:              ":80",
			Handler:           tlsResult.HTTPHandler,
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			slog.Info("HTTP to HTTPS redirect active", "addr", ":80")
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()

	case TLSModeManual:
		go func() {
			slog.Info("server running", "url", cfg.Server.BaseURL)
			if err := startTLSServer(e, addr, tlsResult.TLSConfig); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		slog.Info("shutting down server")
	case err := <-errChan:
		slog.Error("server error", "error", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shutdown main server", "error", err)
	}
	if httpServer != nil {
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("failed to shutdown HTTP redirect server", "error", err)
		}
	}

	slog.Info("server stopped")
	return nil
}
