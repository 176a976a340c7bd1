// Package server sets up the HTTP server, router, and all route definitions.
//
// This package is the "wiring" layer: the composition root. New assembles
// the whole dependency chain in one place:
//
//	sqlite.DB → repositories → services → handlers → routes
//
// main.go only reads configuration, builds the executor and calls Start.
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

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sakif/codesense/internal/auth"
	"github.com/sakif/codesense/internal/executor"
	"github.com/sakif/codesense/internal/handler"
	"github.com/sakif/codesense/internal/middleware"
	sqliteRepo "github.com/sakif/codesense/internal/repository/sqlite"
	"github.com/sakif/codesense/internal/service"
)

// Config holds server configuration.
type Config struct {
	Port   int
	DBPath string

	JWTSecret          string
	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string
	// FrontendURL is where the browser lands after GitHub sign-in.
	FrontendURL  string
	SecureCookie bool

	// CORSOrigins lists the SPA origins allowed to call the API with
	// credentials.
	CORSOrigins []string

	// RateLimitRPS and RateLimitBurst configure the per-IP token bucket.
	// RateLimitRPS <= 0 disables rate limiting.
	RateLimitRPS   float64
	RateLimitBurst int

	// WriteTimeout must exceed the longest execution (compile + run).
	WriteTimeout time.Duration

	// MetricsEnabled mounts the Prometheus handler at /metrics.
	MetricsEnabled bool
}

// Server represents the HTTP server and all its dependencies.
//
// RESOURCE MANAGEMENT:
// The Server owns the database connection and the rate limiter's janitor
// goroutine. Close releases both; Start calls it on the way out.
type Server struct {
	router  *chi.Mux
	config  Config
	logger  *slog.Logger
	db      *sqliteRepo.DB
	limiter *middleware.RateLimiter
}

// New creates a Server that runs code through exec.
//
// DEPENDENCY INJECTION & WIRING:
//  1. Open the database (sqlite.New)
//  2. Create the auth primitives (tokens, passwords, optional GitHub)
//  3. Create the services with the repositories they need
//  4. Create the handlers with the services
//  5. Wire handlers to routes
func New(cfg Config, logger *slog.Logger, exec executor.Executor) (*Server, error) {
	if exec == nil {
		return nil, errors.New("server: an executor is required")
	}

	tokens, err := auth.NewTokenService(cfg.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("server: creating token service: %w", err)
	}

	// === CREATE DATABASE ===
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("server: opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}
	if cfg.RateLimitRPS > 0 {
		s.limiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, logger)
	}

	s.setupRoutes(tokens, exec)
	return s, nil
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
//
//	GET    /api/health                       → liveness + DB check
//	POST   /api/execute/run                  → run code          (optional auth)
//	POST   /api/execute/suggestions          → input suggestion  (optional auth)
//	GET    /api/execute/languages            → supported languages
//	POST   /api/auth/register | /login       → password accounts
//	POST   /api/auth/logout                  → clear the cookie
//	GET    /api/auth/me                      → current user      (auth)
//	GET    /auth/github/login | /callback    → GitHub OAuth
//	GET    /api/history[/{id}]               → execution history (auth)
//	DELETE /api/history/{id}
//	GET    /api/history/analytics/summary
//	GET    /api/notes[/{id}], /folders, /tags → notes            (auth)
//	POST   /api/notes, PUT|DELETE /api/notes/{id}
//	GET    /metrics                          → Prometheus (when enabled)
//
// MIDDLEWARE ORDER MATTERS:
// 1. RequestID, 2. RealIP (the rate limiter keys on the real client IP),
// 3. Logger, 4. Metrics, 5. Recoverer (so a panic is counted as the 500
// it becomes), 6. CORS, 7. BodyLimit, 8. security headers, then the rate
// limiter on /api only.
func (s *Server) setupRoutes(tokens *auth.TokenService, exec executor.Executor) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(middleware.Metrics)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.config.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	s.router.Use(middleware.BodyLimit(middleware.DefaultBodyLimit))
	s.router.Use(chimiddleware.SetHeader("X-Content-Type-Options", "nosniff"))
	s.router.Use(chimiddleware.SetHeader("X-Frame-Options", "DENY"))
	s.router.Use(chimiddleware.SetHeader("Referrer-Policy", "no-referrer"))

	// === Services ===
	// The sqlite views implement the repository interfaces; services never
	// see the concrete type.
	passwords := auth.NewPasswordService()
	authService := service.NewAuthService(s.db.Users(), tokens, passwords, s.logger)
	execService := service.NewExecutionService(exec, s.db.Executions(), s.logger)
	historyService := service.NewHistoryService(s.db.Executions(), s.logger)
	noteService := service.NewNoteService(s.db.Notes(), s.logger)

	// === Handlers ===
	var github *auth.GitHubProvider
	if s.config.GitHubClientID != "" && s.config.GitHubClientSecret != "" {
		github = auth.NewGitHubProvider(s.config.GitHubClientID, s.config.GitHubClientSecret, s.config.GitHubCallbackURL)
	} else {
		s.logger.Info("GitHub sign-in disabled: GITHUB_CLIENT_ID/SECRET not set")
	}
	authHandler := handler.NewAuthHandler(authService, github, handler.AuthConfig{
		FrontendURL:  s.config.FrontendURL,
		SecureCookie: s.config.SecureCookie,
	}, s.logger)
	execHandler := handler.NewExecuteHandler(execService, s.logger)
	historyHandler := handler.NewHistoryHandler(historyService, s.logger)
	noteHandler := handler.NewNoteHandler(noteService, s.logger)
	healthHandler := handler.NewHealthHandler(s.db)

	requireAuth := auth.RequireAuth(tokens)
	optionalAuth := auth.OptionalAuth(tokens)

	if s.config.MetricsEnabled {
		s.router.Handle("/metrics", promhttp.Handler())
	}

	// === OAuth browser routes ===
	s.router.Get("/auth/github/login", authHandler.HandleGitHubLogin)
	s.router.Get("/auth/github/callback", authHandler.HandleGitHubCallback)

	// === API Routes ===
	s.router.Route("/api", func(r chi.Router) {
		if s.limiter != nil {
			r.Use(s.limiter.Handler)
		}

		r.Get("/health", healthHandler.HandleHealth)

		r.Route("/execute", func(r chi.Router) {
			r.Use(optionalAuth)
			r.Post("/run", execHandler.HandleRun)
			r.Post("/suggestions", execHandler.HandleSuggestions)
			r.Get("/languages", execHandler.HandleLanguages)
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.HandleRegister)
			r.Post("/login", authHandler.HandleLogin)
			r.Post("/logout", authHandler.HandleLogout)
			r.With(requireAuth).Get("/me", authHandler.HandleMe)
		})

		r.Route("/history", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", historyHandler.HandleList)
			r.Get("/analytics/summary", historyHandler.HandleSummary)
			r.Get("/{id}", historyHandler.HandleGet)
			r.Delete("/{id}", historyHandler.HandleDelete)
		})

		r.Route("/notes", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", noteHandler.HandleList)
			r.Post("/", noteHandler.HandleCreate)
			r.Get("/folders", noteHandler.HandleFolders)
			r.Get("/tags", noteHandler.HandleTags)
			// Older clients use the /list suffix.
			r.Get("/folders/list", noteHandler.HandleFolders)
			r.Get("/tags/list", noteHandler.HandleTags)
			r.Get("/{id}", noteHandler.HandleGet)
			r.Put("/{id}", noteHandler.HandleUpdate)
			r.Delete("/{id}", noteHandler.HandleDelete)
		})
	})
}

// Handler exposes the router, e.g. for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database and stops background goroutines.
func (s *Server) Close() error {
	if s.limiter != nil {
		s.limiter.Stop()
	}
	return s.db.Close()
}

// Start starts the HTTP server and blocks until SIGINT/SIGTERM or a
// listener error.
//
// GRACEFUL SHUTDOWN:
// 1. Stop accepting new HTTP connections
// 2. Wait for in-flight requests (including running executions) to finish
// 3. Close the database connection (flushes WAL, releases the file lock)
func (s *Server) Start() error {
	defer s.Close()

	writeTimeout := s.config.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 2 * time.Minute
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
