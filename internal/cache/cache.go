// Package cache is the TTL key/value store every fetch path goes through.
// It prefers a shared Redis backend and degrades to an in-process map when
// Redis is unconfigured or unreachable.
package cache

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL applies when callers pass a non-positive TTL.
const DefaultTTL = 7 * 24 * time.Hour

// Config selects and tunes the backend. An empty RedisAddr means the store
// runs on the in-process map from the start.
type Config struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	DefaultTTL    time.Duration
}

// Health describes which backend is live and roughly how big it is.
// Size is only tracked for the memory backend.
type Health struct {
	Backend   string `json:"backend"`
	Available bool   `json:"available"`
	Size      int    `json:"size,omitempty"`
}

// Store is safe for concurrent use. The Redis-vs-memory decision is made on
// first use and kept for the process lifetime.
type Store struct {
	rdb        *redis.Client
	mem        *memoryBackend
	defaultTTL time.Duration
	logger     *slog.Logger

	probeOnce sync.Once
	useRedis  bool
}

func New(cfg Config, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	ttl := cfg.DefaultTTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	s := &Store{
		mem:        newMemoryBackend(),
		defaultTTL: ttl,
		logger:     logger,
	}
	if cfg.RedisAddr != "" {
		s.rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	}
	return s
}

// Key joins parts into a namespaced cache key.
func Key(parts ...string) string {
	return strings.Join(parts, ":")
}

// probe pings Redis once; on failure the store commits to the memory backend
// and logs the degradation a single time.
func (s *Store) probe(ctx context.Context) {
	s.probeOnce.Do(func() {
		if s.rdb == nil {
			s.logger.Info("cache: redis not configured, using in-memory store")
			return
		}
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := s.rdb.Ping(pingCtx).Err(); err != nil {
			s.logger.Warn("cache: redis unreachable, falling back to in-memory store", "error", err)
			return
		}
		s.useRedis = true
	})
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool) {
	s.probe(ctx)
	if s.useRedis {
		val, err := s.rdb.Get(ctx, key).Bytes()
		if err == redis.Nil {
			return nil, false
		}
		if err != nil {
			s.logger.Warn("cache: redis get failed", "key", key, "error", err)
			return nil, false
		}
		return val, true
	}
	return s.mem.get(key, time.Now())
}

func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	s.probe(ctx)
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	if s.useRedis {
		if err := s.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
			s.logger.Warn("cache: redis set failed", "key", key, "error", err)
		}
		return
	}
	s.mem.set(key, value, ttl, time.Now())
}

func (s *Store) Delete(ctx context.Context, key string) {
	s.probe(ctx)
	if s.useRedis {
		if err := s.rdb.Del(ctx, key).Err(); err != nil {
			s.logger.Warn("cache: redis delete failed", "key", key, "error", err)
		}
		return
	}
	s.mem.delete(key)
}

// GetOrSet returns the cached value when a valid entry exists, otherwise runs
// compute and caches its result. Concurrent callers for the same missing key
// may each run compute; last write wins. That is acceptable at this system's
// refresh cadence.
func (s *Store) GetOrSet(ctx context.Context, key string, ttl time.Duration, compute func(context.Context) ([]byte, error)) ([]byte, bool, error) {
	if val, ok := s.Get(ctx, key); ok {
		return val, true, nil
	}
	val, err := compute(ctx)
	if err != nil {
		return nil, false, err
	}
	s.Set(ctx, key, val, ttl)
	return val, false, nil
}

// ClearPrefix removes every key under the prefix and returns how many went.
func (s *Store) ClearPrefix(ctx context.Context, prefix string) int {
	s.probe(ctx)
	if s.useRedis {
		n := 0
		iter := s.rdb.Scan(ctx, 0, prefix+"*", 0).Iterator()
		for iter.Next(ctx) {
			if err := s.rdb.Del(ctx, iter.Val()).Err(); err == nil {
				n++
			}
		}
		if err := iter.Err(); err != nil {
			s.logger.Warn("cache: redis scan failed", "prefix", prefix, "error", err)
		}
		return n
	}
	return s.mem.clearPrefix(prefix)
}

func (s *Store) Health(ctx context.Context) Health {
	s.probe(ctx)
	if s.useRedis {
		available := s.rdb.Ping(ctx).Err() == nil
		return Health{Backend: "redis", Available: available}
	}
	return Health{
		Backend:   "memory",
		Available: true,
		Size:      s.mem.size(time.Now()),
	}
}
