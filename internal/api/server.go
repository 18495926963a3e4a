// Copyright (c) 2026 LMS. All rights reserved.
// Author: Nikhilrai1

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/Nikhilrai1/lms/internal/core/course"
	"github.com/Nikhilrai1/lms/internal/platform/apperr"
	"github.com/Nikhilrai1/lms/internal/platform/config"
	"github.com/Nikhilrai1/lms/internal/platform/constants"
	"github.com/Nikhilrai1/lms/internal/platform/metrics"
	"github.com/Nikhilrai1/lms/internal/platform/middleware"
	"github.com/Nikhilrai1/lms/internal/platform/respond"
	"github.com/Nikhilrai1/lms/internal/users/account"
	"github.com/Nikhilrai1/lms/internal/users/auth"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
type Handlers struct {
	// Liveness is the /health handler. It returns 200 while the process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler. It returns 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// Authenticate is the access-token gate shared by protected routes.
	Authenticate func(http.Handler) http.Handler

	// Auth handles registration, activation and the session lifecycle.
	Auth *auth.Handler

	// Account handles the authenticated profile endpoints.
	Account *account.Handler

	// Course handles the catalogue, lesson content and authoring.
	Course *course.Handler
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups. The rate limiter sweeper stops with context.
func NewServer(context context.Context, cfg *config.Config, log *slog.Logger, collector *metrics.Metrics, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	if cfg.TrustProxyHeaders {
		r.Use(middleware.TrustProxyHeaders)
	}
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(middleware.Instrument(collector))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(context, constants.DefaultRateLimitRPS, constants.DefaultRateLimitBurst))
	r.Use(middleware.PanicRecovery())
	r.Use(middleware.CORS(cfg.Origins))
	r.Use(chimw.CleanPath)
	r.Use(chimw.RequestSize(constants.MaxBodyBytes))

	r.NotFound(routeNotFound)
	r.MethodNotAllowed(routeNotFound)

	// # Infrastructure Endpoints
	// Unauthenticated health and scrape endpoints.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)
	r.Method(http.MethodGet, "/metrics", collector.Handler())

	// # Application API
	r.Route("/api/v1", func(api chi.Router) {
		h.Auth.RegisterRoutes(api, h.Authenticate)
		h.Account.RegisterRoutes(api, h.Authenticate)
		h.Course.RegisterRoutes(api, h.Authenticate)
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// routeNotFound answers unmatched paths and methods with the JSON envelope.
func routeNotFound(writer http.ResponseWriter, request *http.Request) {
	respond.Error(writer, request, apperr.NotFound("Route "+request.URL.Path))
}

// Handler exposes the router for in-process tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server_starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
