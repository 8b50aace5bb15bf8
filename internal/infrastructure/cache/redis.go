package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"skill-intake/internal/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultTTL = 600 * time.Second

// Redis is a JSON cache that degrades to a no-op when Redis is not
// configured or not reachable at startup. Runtime failures are returned to
// the caller and warned about once.
type Redis struct {
	client *redis.Client
	logger *zap.Logger
	ttl    time.Duration

	warnedUnavailable atomic.Bool
}

func NewRedis(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) *Redis {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Redis{logger: logger, ttl: cfg.TTL}
	if r.ttl <= 0 {
		r.ttl = defaultTTL
	}
	if !cfg.Enabled() {
		logger.Info("redis not configured, submissions cache disabled")
		return r
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unavailable, bypassing cache", zap.String("addr", cfg.Addr()), zap.Error(err))
		_ = client.Close()
		return r
	}

	r.client = client
	return r
}

func (r *Redis) isUnavailable() bool {
	return r == nil || r.client == nil
}

func (r *Redis) warnUnavailableOnce(err error) {
	if r == nil || r.logger == nil {
		return
	}
	if r.warnedUnavailable.CompareAndSwap(false, true) {
		r.logger.Warn("redis error, cache results may be stale or skipped", zap.Error(err))
	}
}

func (r *Redis) Ping(ctx context.Context) error {
	if r.isUnavailable() {
		return errors.New("redis unavailable")
	}
	return r.client.Ping(ctx).Err()
}

// Enabled reports whether a live client is attached.
func (r *Redis) Enabled() bool {
	return !r.isUnavailable()
}

func (r *Redis) Close() error {
	if r.isUnavailable() {
		return nil
	}
	return r.client.Close()
}

func (r *Redis) GetJSON(ctx context.Context, key string, out any) (bool, error) {
	if r.isUnavailable() {
		return false, nil
	}
	b, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		r.warnUnavailableOnce(err)
		return false, err
	}
	if len(b) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return false, err
	}
	return true, nil
}

func (r *Redis) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	if r.isUnavailable() {
		return nil
	}
	if ttl <= 0 {
		ttl = r.ttl
	}
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, key, b, ttl).Err(); err != nil {
		r.warnUnavailableOnce(err)
		return err
	}
	return nil
}

// Incr bumps an integer counter and returns its new value. The counter is
// stored as plain text, so GetJSON can read it back into an int64.
func (r *Redis) Incr(ctx context.Context, key string) (int64, error) {
	if r.isUnavailable() {
		return 0, nil
	}
	n, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		r.warnUnavailableOnce(err)
		return 0, err
	}
	return n, nil
}

func (r *Redis) DeleteByPattern(ctx context.Context, pattern string) error {
	if r.isUnavailable() {
		return nil
	}
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return nil
	}

	iter := r.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		k := iter.Val()
		if err := r.client.Del(ctx, k).Err(); err != nil {
			r.logger.Warn("redis delete failed", zap.String("key", k), zap.String("pattern", pattern), zap.Error(err))
		}
	}
	if err := iter.Err(); err != nil {
		r.warnUnavailableOnce(err)
		return err
	}
	return nil
}
