package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/Abdurahmanit/GroupProject/wanderlust/internal/listing/domain"
	"github.com/redis/go-redis/v9"
)

const flashKeyPrefix = "flash:"

// RedisFlashStore keeps pending notices per session in a Redis list.
type RedisFlashStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisFlashStore(client *redis.Client, ttl time.Duration) *RedisFlashStore {
	return &RedisFlashStore{client: client, ttl: ttl}
}

func flashKey(sessionID string) string { return flashKeyPrefix + sessionID }

func (s *RedisFlashStore) Push(ctx context.Context, sessionID string, f domain.Flash) error {
	data, err := json.Marshal(f)
	if err != nil {
		return err
	}
	key := flashKey(sessionID)
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.Expire(ctx, key, s.ttl)
	_, err = pipe.Exec(ctx)
	return err
}

// Pop returns and clears the session's notices in push order.
func (s *RedisFlashStore) Pop(ctx context.Context, sessionID string) ([]domain.Flash, error) {
	key := flashKey(sessionID)
	pipe := s.client.TxPipeline()
	items := pipe.LRange(ctx, key, 0, -1)
	pipe.Del(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	out := make([]domain.Flash, 0, len(items.Val()))
	for _, raw := range items.Val() {
		var f domain.Flash
		if err := json.Unmarshal([]byte(raw), &f); err != nil {
			return nil, fmt.Errorf("decode flash: %w", err)
		}
		out = append(out, f)
	}
	return out, nil
}

type memoryFlashEntry struct {
	flashes []domain.Flash
	expires time.Time
}

// MemoryFlashStore is a process-local flash store used when Redis is not
// configured. Entries expire after ttl.
type MemoryFlashStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]*memoryFlashEntry
	now     func() time.Time
}

func NewMemoryFlashStore(ttl time.Duration) *MemoryFlashStore {
	return &MemoryFlashStore{ttl: ttl, entries: map[string]*memoryFlashEntry{}, now: time.Now}
}

func (s *MemoryFlashStore) Push(_ context.Context, sessionID string, f domain.Flash) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.evictLocked(now)
	e, ok := s.entries[sessionID]
	if !ok {
		e = &memoryFlashEntry{}
		s.entries[sessionID] = e
	}
	e.flashes = append(e.flashes, f)
	e.expires = now.Add(s.ttl)
	return nil
}

func (s *MemoryFlashStore) Pop(_ context.Context, sessionID string) ([]domain.Flash, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[sessionID]
	delete(s.entries, sessionID)
	if !ok || s.now().After(e.expires) {
		return []domain.Flash{}, nil
	}
	return e.flashes, nil
}

func (s *MemoryFlashStore) evictLocked(now time.Time) {
	for sid, e := range s.entries {
		if now.After(e.expires) {
			delete(s.entries, sid)
		}
	}
}
