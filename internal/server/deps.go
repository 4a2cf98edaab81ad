package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jjudge-oj/userapi/config"
	"github.com/jjudge-oj/userapi/internal/cache"
	"github.com/jjudge-oj/userapi/internal/db"
	"github.com/jjudge-oj/userapi/internal/metrics"
	"github.com/jjudge-oj/userapi/internal/mq"
	"github.com/jjudge-oj/userapi/internal/services"
	"github.com/jjudge-oj/userapi/internal/store"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	driverPostgres = "postgres"
	driverMemory   = "memory"
)

// Dependencies holds the backing services shared by the HTTP server and the
// CLI commands.
type Dependencies struct {
	DB      *sql.DB
	Redis   *redis.Client
	Events  mq.Backend
	Metrics *metrics.Registry
	Users   *services.UserService
}

// OpenDependencies connects the user repository and the optional cache and
// event backend, then builds the user service on top of them.
func OpenDependencies(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Dependencies, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	deps := &Dependencies{Metrics: metrics.NewRegistry()}

	var repo services.UserRepository
	switch strings.ToLower(strings.TrimSpace(cfg.Database.Driver)) {
	case driverMemory:
		logger.Warn("using in-memory user repository; data is lost on exit")
		repo = store.NewMemoryUserRepository()
	case driverPostgres, "":
		dbConn, err := db.Open(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		deps.DB = dbConn
		repo = store.NewUserRepository(dbConn)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}

	opts := []services.Option{
		services.WithLogger(logger),
		services.WithOperationRecorder(deps.Metrics),
	}

	if cfg.Redis.Addr != "" {
		client, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			_ = deps.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		deps.Redis = client
		opts = append(opts, services.WithCache(cache.NewUserCache(client, cfg.Redis.TTL, deps.Metrics, logger)))
	}

	backend, err := mq.NewBackend(ctx, cfg)
	switch {
	case errors.Is(err, mq.ErrNoBackend):
		logger.Info("user events disabled: no message queue backend configured")
	case err != nil:
		_ = deps.Close()
		return nil, fmt.Errorf("connect message queue: %w", err)
	default:
		deps.Events = backend
		opts = append(opts, services.WithEventPublisher(mq.NewUserEventPublisher(backend, cfg.MQ.EventChannel)))
	}

	deps.Users = services.NewUserService(repo, opts...)
	return deps, nil
}

// Close releases every open connection.
func (d *Dependencies) Close() error {
	var errs []error
	if d.Events != nil {
		errs = append(errs, d.Events.Close())
	}
	if d.Redis != nil {
		errs = append(errs, d.Redis.Close())
	}
	if d.DB != nil {
		errs = append(errs, d.DB.Close())
	}
	return errors.Join(errs...)
}
