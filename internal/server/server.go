package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jjudge-oj/userapi/config"
	"github.com/jjudge-oj/userapi/internal/handlers"
	"github.com/jjudge-oj/userapi/internal/logging"
	"github.com/jjudge-oj/userapi/internal/metrics"
	"github.com/jjudge-oj/userapi/internal/services"
	"go.uber.org/zap"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	deps       *Dependencies
	logger     *zap.Logger
}

// New constructs a Server with its dependencies, middleware and routes.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Server, error) {
	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	deps, err := OpenDependencies(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	router := NewRouter(cfg, deps.Users, deps.Metrics, logger)

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		deps:       deps,
		logger:     logger,
	}, nil
}

// NewRouter mounts every route on a fresh chi router.
func NewRouter(cfg config.Config, users *services.UserService, registry *metrics.Registry, logger *zap.Logger) *chi.Mux {
	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		logging.RequestLogger(logger),
		middleware.Recoverer,
		registry.Middleware,
		cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORS.AllowedOrigins,
			AllowedMethods: []string{
				http.MethodGet, http.MethodPost, http.MethodPut,
				http.MethodPatch, http.MethodDelete, http.MethodOptions,
			},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300,
		}),
		middleware.Timeout(60*time.Second),
	)

	router.Get("/healthz", handlers.Healthz)
	router.Handle("/metrics", registry.Handler())

	paginator := handlers.Paginator{
		PageSize:           cfg.Pagination.PageSize,
		PageSizeQueryParam: cfg.Pagination.PageSizeQueryParam,
		MaxPageSize:        cfg.Pagination.MaxPageSize,
	}

	router.Group(func(r chi.Router) {
		r.Use(handlers.Authenticate(users, cfg.Auth.JWTSecret, logger))
		r.Route("/auth", func(r chi.Router) {
			handlers.AuthRouter(r, handlers.NewAuthHandler(users, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, logger))
		})
		r.Route("/users", func(r chi.Router) {
			handlers.UsersRouter(r, handlers.NewUserHandler(users, paginator, logger))
		})
	})

	return router
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("server listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests, then closes the backing connections.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	return errors.Join(err, s.deps.Close())
}
