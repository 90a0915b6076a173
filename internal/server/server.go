package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hongminglow/all-in-auth/internal/account"
	"github.com/hongminglow/all-in-auth/internal/auth"
	"github.com/hongminglow/all-in-auth/internal/config"
	"github.com/hongminglow/all-in-auth/internal/credentials"
	"github.com/hongminglow/all-in-auth/internal/http/handlers"
	"github.com/hongminglow/all-in-auth/internal/metrics"
	"github.com/hongminglow/all-in-auth/internal/middleware"
	"github.com/hongminglow/all-in-auth/internal/storage"
)

// Deps are the collaborators the server does not construct itself.
type Deps struct {
	Store    storage.UserStore
	Logger   *slog.Logger
	Registry *prometheus.Registry
	// Hasher defaults to argon2id with DefaultParams.
	Hasher credentials.Hasher
	// Tokens defaults to a wall-clock TokenManager.
	Tokens *auth.TokenManager
}

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, deps Deps) *Server {
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           NewHandler(cfg, deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return &Server{inner: httpServer}
}

// NewHandler builds the routed handler without binding a listener.
func NewHandler(cfg config.Config, deps Deps) http.Handler {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Registry == nil {
		deps.Registry = prometheus.NewRegistry()
	}
	if deps.Hasher == nil {
		deps.Hasher = credentials.NewArgon2Hasher(credentials.DefaultParams)
	}
	if deps.Tokens == nil {
		deps.Tokens = auth.NewTokenManager()
	}

	collector := metrics.NewCollector(deps.Registry)
	userTokens := auth.NewUserTokens(deps.Tokens, cfg.TokenSigningKey, cfg.TokenTTL)
	accounts := account.NewService(deps.Store, deps.Hasher, userTokens, collector)
	gate := middleware.Gate(userTokens, middleware.GateConfig{
		StrictStatus: cfg.GateStrictStatus,
		Logger:       deps.Logger,
		Metrics:      collector,
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(deps.Logger, collector))
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.CORS(cfg.CORSOrigins))

	handlers.NewHealthHandler(time.Now()).Register(r)
	handlers.NewAuthHandler(accounts, deps.Logger).Register(r)
	handlers.NewUsersHandler(accounts, deps.Logger).Register(r)
	handlers.NewGateHandler(gate).Register(r)
	r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Registry))

	return r
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}

// Addr is the configured listen address.
func (s *Server) Addr() string {
	return s.inner.Addr
}
