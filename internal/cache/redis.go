package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/festy23/teammatch/internal/config"
	"github.com/festy23/teammatch/internal/metrics"
)

const scanBatch = 200

var errStaleGeneration = errors.New("cache generation moved")

// Redis is a Cache backed by go-redis. Tags are Redis sets of full keys.
type Redis struct {
	rdb    *redis.Client
	prefix string
	logger *zap.SugaredLogger
}

// NewRedis connects to the Redis server described by cfg.
func NewRedis(cfg config.RedisConfig, logger *zap.SugaredLogger) (*Redis, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	opts.MaxRetries = 3
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisWithClient(rdb, cfg.KeyPrefix, logger), nil
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(rdb *redis.Client, prefix string, logger *zap.SugaredLogger) *Redis {
	return &Redis{rdb: rdb, prefix: prefix, logger: logger}
}

// Close closes the underlying client.
func (r *Redis) Close() error {
	return r.rdb.Close()
}

func (r *Redis) key(k string) string {
	return r.prefix + k
}

func (r *Redis) tagKey(tag string) string {
	return r.prefix + "tag:" + tag
}

func (r *Redis) generationKey() string {
	return r.prefix + "generation"
}

// Get implements Cache.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	start := time.Now()
	val, err := r.rdb.Get(ctx, r.key(key)).Bytes()
	switch {
	case err == redis.Nil:
		metrics.CacheOperations.WithLabelValues("get", "miss").Inc()
		return nil, false
	case err != nil:
		metrics.CacheOperations.WithLabelValues("get", "error").Inc()
		r.logger.Warnw("redis_get failed",
			"key_prefix", prefixForLog(key),
			"duration", time.Since(start),
			"error", err,
		)
		return nil, false
	}
	metrics.CacheOperations.WithLabelValues("get", "hit").Inc()
	r.logger.Debugw("redis_get", "key_prefix", prefixForLog(key), "duration", time.Since(start))
	return val, true
}

// Set implements Cache.
func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration, tags ...string) {
	start := time.Now()
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		r.queueSet(ctx, pipe, key, value, ttl, tags)
		return nil
	})
	if err != nil {
		metrics.CacheOperations.WithLabelValues("set", "error").Inc()
		r.logger.Warnw("redis_set failed",
			"key_prefix", prefixForLog(key),
			"tags", len(tags),
			"duration", time.Since(start),
			"error", err,
		)
		return
	}
	metrics.CacheOperations.WithLabelValues("set", "ok").Inc()
	r.logger.Debugw("redis_set", "key_prefix", prefixForLog(key), "tags", len(tags), "duration", time.Since(start))
}

func (r *Redis) queueSet(ctx context.Context, pipe redis.Pipeliner, key string, value []byte, ttl time.Duration, tags []string) {
	full := r.key(key)
	pipe.Set(ctx, full, value, ttl)
	for _, tag := range tags {
		tk := r.tagKey(tag)
		pipe.SAdd(ctx, tk, full)
		pipe.Expire(ctx, tk, ttl)
	}
}

// Generation implements Cache.
func (r *Redis) Generation(ctx context.Context) (uint64, bool) {
	gen, err := r.rdb.Get(ctx, r.generationKey()).Uint64()
	switch {
	case errors.Is(err, redis.Nil):
		return 0, true
	case err != nil:
		metrics.CacheOperations.WithLabelValues("generation", "error").Inc()
		r.logger.Warnw("redis_generation failed", "error", err)
		return 0, false
	}
	return gen, true
}

// SetIfGeneration implements Cache. The generation key is watched, so an
// invalidation racing the write aborts the transaction.
func (r *Redis) SetIfGeneration(
	ctx context.Context,
	gen uint64,
	key string,
	value []byte,
	ttl time.Duration,
	tags ...string,
) bool {
	start := time.Now()
	gk := r.generationKey()
	err := r.rdb.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, gk).Uint64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return errStaleGeneration
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			r.queueSet(ctx, pipe, key, value, ttl, tags)
			return nil
		})
		return err
	}, gk)

	switch {
	case errors.Is(err, errStaleGeneration), errors.Is(err, redis.TxFailedErr):
		metrics.CacheOperations.WithLabelValues("set", "stale").Inc()
		r.logger.Debugw("redis_set skipped after invalidation", "key_prefix", prefixForLog(key), "generation", gen)
		return false
	case err != nil:
		metrics.CacheOperations.WithLabelValues("set", "error").Inc()
		r.logger.Warnw("redis_set failed",
			"key_prefix", prefixForLog(key),
			"tags", len(tags),
			"duration", time.Since(start),
			"error", err,
		)
		return false
	}
	metrics.CacheOperations.WithLabelValues("set", "ok").Inc()
	r.logger.Debugw("redis_set", "key_prefix", prefixForLog(key), "tags", len(tags), "duration", time.Since(start))
	return true
}

func (r *Redis) bumpGeneration(ctx context.Context) {
	if err := r.rdb.Incr(ctx, r.generationKey()).Err(); err != nil {
		metrics.CacheOperations.WithLabelValues("generation", "error").Inc()
		r.logger.Warnw("redis_incr generation failed", "error", err)
	}
}

// Invalidate implements Cache.
func (r *Redis) Invalidate(ctx context.Context, keyOrPattern string) {
	r.bumpGeneration(ctx)
	if !strings.ContainsAny(keyOrPattern, "*?[") {
		r.del(ctx, r.key(keyOrPattern))
		return
	}

	var cursor uint64
	for {
		keys, next, err := r.rdb.Scan(ctx, cursor, r.key(keyOrPattern), scanBatch).Result()
		if err != nil {
			metrics.CacheOperations.WithLabelValues("invalidate", "error").Inc()
			r.logger.Warnw("redis_scan failed", "pattern", prefixForLog(keyOrPattern), "error", err)
			return
		}
		r.del(ctx, keys...)
		cursor = next
		if cursor == 0 {
			return
		}
	}
}

// InvalidateTag implements Cache.
func (r *Redis) InvalidateTag(ctx context.Context, tag string) {
	r.bumpGeneration(ctx)
	tk := r.tagKey(tag)
	keys, err := r.rdb.SMembers(ctx, tk).Result()
	if err != nil {
		metrics.CacheOperations.WithLabelValues("invalidate", "error").Inc()
		r.logger.Warnw("redis_smembers failed", "tag", tag, "error", err)
		return
	}
	r.del(ctx, append(keys, tk)...)
}

// Ping implements Cache.
func (r *Redis) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

func (r *Redis) del(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	start := time.Now()
	if err := r.rdb.Del(ctx, keys...).Err(); err != nil {
		metrics.CacheOperations.WithLabelValues("invalidate", "error").Inc()
		r.logger.Warnw("redis_del failed", "keys", len(keys), "error", err)
		return
	}
	metrics.CacheOperations.WithLabelValues("invalidate", "ok").Inc()
	r.logger.Debugw("redis_del", "keys", len(keys), "duration", time.Since(start))
}

// prefixForLog keeps only the leading key segment so user ids stay out of logs.
func prefixForLog(key string) string {
	return strings.SplitN(key, ":", 2)[0]
}
