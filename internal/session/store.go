package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const KeyPrefix = "refresh:"

var ErrInvalidTTL = errors.New("session ttl must be positive")

// Store keeps at most one refresh token per user. Put replaces whatever was
// stored before, which is how older sessions get revoked.
type Store interface {
	Put(ctx context.Context, userID, token string, ttl time.Duration) error
	// Get returns "" and a nil error when no session exists.
	Get(ctx context.Context, userID string) (string, error)
	Delete(ctx context.Context, userID string) error
}

func Key(userID string) string {
	return KeyPrefix + userID
}

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Put(ctx context.Context, userID, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return ErrInvalidTTL
	}
	return s.client.Set(ctx, Key(userID), token, ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, userID string) (string, error) {
	token, err := s.client.Get(ctx, Key(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return token, err
}

func (s *RedisStore) Delete(ctx context.Context, userID string) error {
	return s.client.Del(ctx, Key(userID)).Err()
}

type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	token     string
	expiresAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Put(ctx context.Context, userID, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return ErrInvalidTTL
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[Key(userID)] = memoryEntry{token: token, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, userID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, exists := s.entries[Key(userID)]
	if !exists || !s.now().Before(entry.expiresAt) {
		return "", nil
	}
	return entry.token, nil
}

func (s *MemoryStore) Delete(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, Key(userID))
	return nil
}
