// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package server wires all components together and runs the HTTP API.
package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/oliverandrich/inkwell/internal/config"
	"codeberg.org/oliverandrich/inkwell/internal/database"
	"codeberg.org/oliverandrich/inkwell/internal/handlers"
	"codeberg.org/oliverandrich/inkwell/internal/i18n"
	appmw "codeberg.org/oliverandrich/inkwell/internal/middleware"
	"codeberg.org/oliverandrich/inkwell/internal/repository"
	"codeberg.org/oliverandrich/inkwell/internal/services/account"
	"codeberg.org/oliverandrich/inkwell/internal/services/admin"
	"codeberg.org/oliverandrich/inkwell/internal/services/email"
	"codeberg.org/oliverandrich/inkwell/internal/services/feed"
	"codeberg.org/oliverandrich/inkwell/internal/services/session"
	"codeberg.org/oliverandrich/inkwell/internal/storage"
	"github.com/labstack/echo/v4"
	"github.com/urfave/cli/v3"
)

// Run starts the server with the given CLI command.
func Run(ctx context.Context, cmd *cli.Command) error {
	cfg := config.NewFromCLI(cmd)
	setupLogger(cfg.Log.Level, cfg.Log.Format)

	slog.Info("starting server",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"base_url", cfg.Server.BaseURL,
	)

	// Database
	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("failed to close database", "error", closeErr)
		}
	}()

	// i18n
	if initErr := i18n.Init(); initErr != nil {
		return fmt.Errorf("failed to init i18n: %w", initErr)
	}

	// Repository
	repo := repository.New(db)

	// Sessions
	issuer, err := session.NewIssuer(cfg.Auth.JWTSecret)
	if err != nil {
		return fmt.Errorf("failed to init session issuer: %w", err)
	}

	// Mail
	var mailer email.Mailer
	if cfg.SMTP.Host != "" {
		mailer, err = email.NewService(&cfg.SMTP, cfg.Server.BaseURL)
		if err != nil {
			return fmt.Errorf("failed to init mail service: %w", err)
		}
	} else {
		slog.Warn("SMTP not configured, outgoing mail disabled")
		mailer = email.Disabled{}
	}

	// Object storage
	var store *storage.Store
	var images feed.ImageStore
	if cfg.Storage.Bucket != "" {
		store, err = storage.New(ctx, &cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to init object storage: %w", err)
		}
		images = store
	} else {
		slog.Warn("object storage not configured, image uploads disabled")
	}

	// Services
	admins := cfg.Auth.AdminSet()
	accounts := account.NewService(repo, mailer, issuer, admins)
	adminSvc := admin.NewService(repo, mailer, admins)
	feedSvc := feed.NewService(repo, images)

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	setupMiddleware(e, cfg)
	setupRoutes(e, repo, issuer, accounts, adminSvc, feedSvc, store)

	return startWithGracefulShutdown(e, cfg)
}

func setupRoutes(
	e *echo.Echo,
	repo *repository.Repository,
	issuer *session.Issuer,
	accounts *account.Service,
	adminSvc *admin.Service,
	feedSvc *feed.Service,
	store *storage.Store,
) {
	h := handlers.New()
	authH := handlers.NewAuth(accounts)
	adminH := handlers.NewAdmin(adminSvc)
	blogH := handlers.NewBlog(feedSvc, store)

	requireUser := appmw.RequireUser(issuer, repo)
	requireAdmin := appmw.RequireAdmin(adminSvc)

	e.GET("/health", h.Health)

	api := e.Group("/api/v1")

	user := api.Group("/user")
	user.POST("/signup", authH.Signup)
	user.POST("/signin", authH.Signin)
	user.POST("/verify-email", authH.VerifyEmail)
	user.POST("/resend-verification", authH.ResendVerification)
	user.PUT("/profile", authH.UpdateProfile, requireUser)

	blog := api.Group("/blog", requireUser)
	blog.GET("/bulk", blogH.List)
	blog.POST("", blogH.Create)
	blog.PUT("", blogH.Update)
	blog.POST("/upload-url", blogH.UploadURL)
	blog.GET("/:id", blogH.Get)
	blog.POST("/:id/comments", blogH.AddComment)

	adm := api.Group("/admin", requireUser, requireAdmin)
	adm.GET("/pending-users", adminH.ListPendingUsers)
	adm.PUT("/approve/:id", adminH.Approve)
	adm.PUT("/reject/:id", adminH.Reject)
}

func startWithGracefulShutdown(e *echo.Echo, cfg *config.Config) error {
	// Setup TLS
	tlsResult, err := SetupTLS(cfg)
	if err != nil {
		return fmt.Errorf("TLS setup failed: %w", err)
	}

	// Channel for server errors
	errChan := make(chan error, 2)

	// HTTP redirect server for ACME mode
	var httpServer *http.Server

	switch tlsResult.Mode {
	case TLSModeOff:
		// Plain HTTP on configured port
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		go func() {
			slog.Info("Server running", "url", cfg.Server.BaseURL)
			if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()

	case TLSModeACME:
		// HTTPS on :443
		go func() {
			slog.Info("Server running", "url", cfg.Server.BaseURL)
			if err := startTLSServer(e, ":443", tlsResult.TLSConfig); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()

		// HTTP redirect server on :80
		httpServer = &http.Server{
			Addr:              ":80",
			Handler:           tlsResult.HTTPHandler,
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			slog.Info("HTTP→HTTPS redirect active", "addr", ":80")
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()

	case TLSModeSelfSigned, TLSModeManual:
		// HTTPS on configured port
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		go func() {
			slog.Info("Server running", "url", cfg.Server.BaseURL)
			if err := startTLSServer(e, addr, tlsResult.TLSConfig); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()
	}

	// Wait for interrupt signal or error
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		slog.Info("shutting down server")
	case err := <-errChan:
		slog.Error("server error", "error", err)
		return err
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown main server
	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shutdown main server", "error", err)
	}

	// Shutdown HTTP redirect server if running
	if httpServer != nil {
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("failed to shutdown HTTP redirect server", "error", err)
		}
	}

	slog.Info("server stopped")
	return nil
}

// startTLSServer starts the Echo server with a custom TLS configuration.
func startTLSServer(e *echo.Echo, addr string, tlsConfig *tls.Config) error {
	lc := &net.ListenConfig{}
	ln, err := lc.Listen(context.Background(), "tcp", addr)
	if err != nil {
		return err
	}
	e.TLSListener = tls.NewListener(ln, tlsConfig)
	e.TLSServer.TLSConfig = tlsConfig
	return e.Server.Serve(e.TLSListener)
}
