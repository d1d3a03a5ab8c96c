// Package server wires the application together: it is the composition
// root where the database, services, handlers, and middleware are
// constructed and bound to routes, and it owns the HTTP server lifecycle.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/taskbox/internal/auth"
	"github.com/sakif/taskbox/internal/config"
	"github.com/sakif/taskbox/internal/handler"
	"github.com/sakif/taskbox/internal/metrics"
	"github.com/sakif/taskbox/internal/middleware"
	sqliteRepo "github.com/sakif/taskbox/internal/repository/sqlite"
	"github.com/sakif/taskbox/internal/service"
)

// Server holds the router and the resources it owns. The database
// connection is closed during graceful shutdown.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the full dependency chain:
//
//	sqlite.DB → repositories → services → handlers → routes
//
// Each layer receives interfaces, not concrete types below it; the wiring
// decisions all live here.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// Handler exposes the router. Used by the end-to-end tests to drive the
// full stack through httptest without binding a port.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the server's resources without going through Start's
// shutdown path. Used by tests.
func (s *Server) Close() error {
	return s.db.Close()
}

func (s *Server) setupRoutes() error {
	tokens, err := auth.NewTokenService(s.config.JWTSecret, s.config.TokenTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()
	collector := metrics.NewCollector()

	authService := service.NewAuthService(s.db, tokens, passwords, collector, s.logger)
	taskService := service.NewTaskService(s.db, s.logger)

	var google *auth.GoogleProvider
	if s.config.GoogleEnabled() {
		google = auth.NewGoogleProvider(
			s.config.GoogleClientID,
			s.config.GoogleClientSecret,
			s.config.GoogleCallbackURL,
		)
	}

	authHandler := handler.NewAuthHandler(authService, google, s.config.CookieSecure, s.logger)
	taskHandler := handler.NewTaskHandler(taskService, s.logger)

	requireAuth := auth.RequireAuth(tokens, s.db, collector, s.logger)
	credentialLimit := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig()).Middleware()

	// Global middleware, in order: request ID for tracing, real client IP
	// (the rate limiter keys on it), panic recovery, logging, metrics.
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(collector.Middleware())

	s.router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	s.router.Method(http.MethodGet, "/metrics", collector.Handler())

	// Credential endpoints: public, but rate limited per IP.
	s.router.Group(func(r chi.Router) {
		r.Use(credentialLimit)
		r.Post("/identities", authHandler.HandleSignup)
		r.Post("/sessions", authHandler.HandleLogin)
	})

	s.router.Delete("/sessions", authHandler.HandleLogout)

	if google != nil {
		s.router.Get("/auth/google/login", authHandler.HandleGoogleLogin)
		s.router.Get("/auth/google/callback", authHandler.HandleGoogleCallback)
	} else {
		s.logger.Warn("Google OAuth credentials not set — external login disabled")
	}

	// Everything below requires a valid session.
	s.router.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/identities/me", authHandler.HandleMe)
		r.Get("/tasks", taskHandler.HandleList)
		r.Post("/tasks", taskHandler.HandleCreate)
		r.Get("/tasks/{id}", taskHandler.HandleGet)
		r.Put("/tasks/{id}", taskHandler.HandleUpdate)
		r.Delete("/tasks/{id}", taskHandler.HandleDelete)
	})

	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, give in-flight requests 30
// seconds to finish, close the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
