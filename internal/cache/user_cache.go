package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/jjudge-oj/userapi/config"
	"github.com/jjudge-oj/userapi/internal/metrics"
	"github.com/jjudge-oj/userapi/types"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// UserKeyPrefix namespaces user entries in Redis.
	UserKeyPrefix = "user:"
	// GenerationKeyPrefix namespaces the per-user invalidation counters.
	GenerationKeyPrefix = "user-gen:"

	defaultUserTTL = 5 * time.Minute
	pingTimeout    = 3 * time.Second
	cacheName      = "user"
)

var (
	// ErrMiss is returned when a user is not cached.
	ErrMiss = errors.New("cache miss")
	// ErrStale is returned by Set when the user was invalidated after the
	// caller read its generation.
	ErrStale = errors.New("cached user is stale")
)

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// UserCache stores users as JSON under user:<id>. Password hashes are never
// cached because types.User does not serialize them.
//
// Every Delete bumps user-gen:<id>. Readers take the generation before loading
// the row and Set only stores it while the generation is unchanged, so a row
// read before a concurrent write can never be cached after that write's
// invalidation.
type UserCache struct {
	client  redis.UniversalClient
	ttl     time.Duration
	metrics *metrics.Registry
	logger  *zap.Logger
}

func NewUserCache(client redis.UniversalClient, ttl time.Duration, metrics *metrics.Registry, logger *zap.Logger) *UserCache {
	if ttl <= 0 {
		ttl = defaultUserTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserCache{
		client:  client,
		ttl:     ttl,
		metrics: metrics,
		logger:  logger,
	}
}

func (c *UserCache) Get(ctx context.Context, id int) (types.User, error) {
	data, err := c.client.Get(ctx, userKey(id)).Bytes()
	if err != nil {
		c.metrics.TrackCacheMiss(cacheName)
		if errors.Is(err, redis.Nil) {
			return types.User{}, ErrMiss
		}
		c.logger.Error("get user from cache failed", zap.Int("user_id", id), zap.Error(err))
		return types.User{}, err
	}

	var user types.User
	if err := json.Unmarshal(data, &user); err != nil {
		c.metrics.TrackCacheMiss(cacheName)
		c.logger.Error("decode cached user failed", zap.Int("user_id", id), zap.Error(err))
		return types.User{}, err
	}

	c.metrics.TrackCacheHit(cacheName)
	return user, nil
}

// Generation returns the invalidation counter for a user, zero if it was
// never invalidated.
func (c *UserCache) Generation(ctx context.Context, id int) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey(id)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// Set caches user if no Delete happened since generation was read.
func (c *UserCache) Set(ctx context.Context, user types.User, generation int64) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}

	genKey := generationKey(user.ID)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != generation {
			return ErrStale
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, userKey(user.ID), data, c.ttl)
			return nil
		})
		return err
	}, genKey)
	if errors.Is(err, redis.TxFailedErr) {
		return ErrStale
	}
	return err
}

// Delete drops the cached user and bumps its generation.
func (c *UserCache) Delete(ctx context.Context, id int) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey(id))
		pipe.Del(ctx, userKey(id))
		return nil
	})
	return err
}

func userKey(id int) string {
	return UserKeyPrefix + strconv.Itoa(id)
}

func generationKey(id int) string {
	return GenerationKeyPrefix + strconv.Itoa(id)
}
