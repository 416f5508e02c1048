package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hongminglow/auth-examples/internal/auth"
	"github.com/hongminglow/auth-examples/internal/config"
	"github.com/hongminglow/auth-examples/internal/http/handlers"
	"github.com/hongminglow/auth-examples/internal/middleware"
	"github.com/hongminglow/auth-examples/internal/observability"
	"github.com/hongminglow/auth-examples/internal/ratelimit"
	"github.com/hongminglow/auth-examples/internal/storage"
	"github.com/hongminglow/auth-examples/internal/storage/postgres"
	"github.com/hongminglow/auth-examples/internal/storage/sqlite"
)

const protectedRoute = "GET /protected"

// Server wraps an http.Server with configured routes.
type Server struct {
	inner    *http.Server
	counters ratelimit.ClosableStore
}

// New wires up verifiers, guards and routes, and returns a ready server.
func New(cfg config.Config, store storage.UserStore, log *slog.Logger) (*Server, error) {
	basic, err := auth.NewBasicVerifier(cfg.BasicAuthUsers, cfg.BcryptCost)
	if err != nil {
		return nil, err
	}
	docs, err := handlers.NewDocsHandler()
	if err != nil {
		return nil, err
	}
	counters, err := ratelimit.NewStore(cfg.RateLimitStorageURL)
	if err != nil {
		return nil, err
	}

	tokens := auth.NewTokenManager(cfg.SecretKey, cfg.JWTTTL())
	apiKeys := auth.NewAPIKeyVerifier(cfg.APIKey)
	limiter := ratelimit.New(counters, cfg.Rate, "ratelimit:")

	mux := http.NewServeMux()
	handlers.NewHealthHandler().Register(mux)
	docs.Register(mux)
	handlers.NewAuthHandler(store, tokens, cfg.BcryptCost, log).Register(mux)

	protected := handlers.NewProtectedHandler()
	mux.Handle(protectedRoute, middleware.Chain(http.HandlerFunc(protected.JWT),
		middleware.RateLimit(limiter, protectedRoute, log),
		middleware.RequireJWT(tokens, log),
	))
	mux.Handle("GET /basic-protected", middleware.Chain(http.HandlerFunc(protected.Basic),
		middleware.RequireBasic(basic, log),
	))
	mux.Handle("GET /apikey-protected", middleware.Chain(http.HandlerFunc(protected.APIKey),
		middleware.RequireAPIKey(apiKeys, log),
	))
	if cfg.MetricsEnabled {
		mux.Handle("GET /metrics", promhttp.Handler())
	}

	handler := middleware.CORS(cfg.CORSOrigins)(
		middleware.Logging(log)(
			observability.MetricsMiddleware(mux),
		),
	)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		ErrorLog:          slog.NewLogLogger(log.Handler(), slog.LevelError),
	}

	return &Server{inner: httpServer, counters: counters}, nil
}

// Handler returns the root handler, middleware included.
func (s *Server) Handler() http.Handler {
	return s.inner.Handler
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server and releases the rate-limit
// counters.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.inner.Shutdown(ctx)
	if closeErr := s.counters.Close(); err == nil {
		err = closeErr
	}
	return err
}

// OpenStore opens the credential store named by a DATABASE_URL.
func OpenStore(ctx context.Context, databaseURL string) (storage.Backend, error) {
	switch {
	case strings.HasPrefix(databaseURL, "sqlite://"):
		return sqlite.NewUserStore(ctx, databaseURL)
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return postgres.NewUserStore(ctx, databaseURL)
	default:
		return nil, fmt.Errorf("unsupported database url %q", databaseURL)
	}
}
