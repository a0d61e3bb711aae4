package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/tajious/repairdesk/internal/apperror"
	"github.com/tajious/repairdesk/internal/config"
)

var errLimitExceeded = errors.New("rate limit exceeded")

type RateLimitStore interface {
	Increment(ctx context.Context, key string, window time.Duration) (int, error)
	GetCount(ctx context.Context, key string) (int, error)
}

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Increment bumps the counter and starts the window on the first hit only,
// so a steady stream of requests cannot keep a key alive forever.
func (s *RedisStore) Increment(ctx context.Context, key string, window time.Duration) (int, error) {
	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}

	if count == 1 {
		if err := s.client.Expire(ctx, key, window).Err(); err != nil {
			return 0, err
		}
	}

	return int(count), nil
}

func (s *RedisStore) GetCount(ctx context.Context, key string) (int, error) {
	count, err := s.client.Get(ctx, key).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return count, err
}

type MemoryStore struct {
	mu    sync.Mutex
	store map[string]*rateLimitEntry
	now   func() time.Time
}

type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		store: make(map[string]*rateLimitEntry),
		now:   time.Now,
	}
}

func (s *MemoryStore) Increment(_ context.Context, key string, window time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for k, entry := range s.store {
		if !now.Before(entry.expiresAt) {
			delete(s.store, k)
		}
	}

	entry, exists := s.store[key]
	if !exists {
		entry = &rateLimitEntry{expiresAt: now.Add(window)}
		s.store[key] = entry
	}

	entry.count++
	return entry.count, nil
}

func (s *MemoryStore) GetCount(_ context.Context, key string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.store[key]
	if !exists || !s.now().Before(entry.expiresAt) {
		return 0, nil
	}
	return entry.count, nil
}

type RateLimiter struct {
	store   RateLimitStore
	enabled bool
	logger  *slog.Logger
}

func NewRateLimiter(store RateLimitStore, enabled bool, logger *slog.Logger) *RateLimiter {
	return &RateLimiter{
		store:   store,
		enabled: enabled,
		logger:  logger.With("component", "rate_limiter"),
	}
}

// RateLimit applies a fixed window per client IP. scope keeps separate
// routes on separate counters.
func (r *RateLimiter) RateLimit(scope string, cfg config.RateLimitConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !r.enabled || !cfg.Enabled {
			return c.Next()
		}

		ipKey := fmt.Sprintf("rate_limit:%s:ip:%s", scope, c.IP())
		if err := r.check(c.UserContext(), ipKey, cfg); err != nil {
			return r.deny(c, err, "Too many requests from this IP")
		}
		return c.Next()
	}
}

// UserRateLimit applies a fixed window per authenticated user. It must run
// after Authenticate; anonymous requests pass untouched.
func (r *RateLimiter) UserRateLimit(scope string, cfg config.RateLimitConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal := PrincipalFrom(c)
		if !r.enabled || !cfg.Enabled || principal == nil {
			return c.Next()
		}

		userKey := fmt.Sprintf("rate_limit:%s:user:%s", scope, principal.UserID)
		if err := r.check(c.UserContext(), userKey, cfg); err != nil {
			return r.deny(c, err, "Too many requests from this user")
		}
		return c.Next()
	}
}

func (r *RateLimiter) check(ctx context.Context, key string, cfg config.RateLimitConfig) error {
	count, err := r.store.GetCount(ctx, key)
	if err != nil {
		return err
	}

	if count >= cfg.Limit {
		return errLimitExceeded
	}

	_, err = r.store.Increment(ctx, key, cfg.Window)
	return err
}

// deny answers 429 when the limit is hit. A broken counter store fails open.
func (r *RateLimiter) deny(c *fiber.Ctx, err error, message string) error {
	if !errors.Is(err, errLimitExceeded) {
		r.logger.Error("rate limit store failed", "path", c.Path(), "error", err)
		return c.Next()
	}
	return reject(c, fiber.StatusTooManyRequests, apperror.ErrTooManyRequests.WithMessage(message))
}
