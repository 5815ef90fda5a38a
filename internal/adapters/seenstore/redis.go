package seenstore

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/prairielabs/trackwatch/internal/domain/dedupe"
)

// redisKeyPrefix namespaces per-athlete sets, e.g. "trackwatch:seen:29640757".
const redisKeyPrefix = "trackwatch:seen:"

// RedisStore keeps the seen-set in Redis sets, one per athlete. Lookups hit
// an in-memory mirror hydrated by Load; MarkSeen buffers writes that Persist
// flushes in a single pipeline, so a failed flush retries the same keys.
type RedisStore struct {
	*dedupe.InMemorySeenSet
	client *redis.Client

	mu      sync.Mutex
	pending map[string][]string
}

// NewRedisStore creates a Redis-backed seen-set on an existing client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		InMemorySeenSet: dedupe.NewInMemorySeenSet(),
		client:          client,
		pending:         make(map[string][]string),
	}
}

// MarkSeen records the key in memory and buffers it for the next Persist.
func (s *RedisStore) MarkSeen(ctx context.Context, athleteID, key string) {
	if s.Seen(ctx, athleteID, key) {
		return
	}
	s.InMemorySeenSet.MarkSeen(ctx, athleteID, key)
	s.mu.Lock()
	s.pending[athleteID] = append(s.pending[athleteID], key)
	s.mu.Unlock()
}

// Load scans the per-athlete sets and hydrates the in-memory mirror.
func (s *RedisStore) Load(ctx context.Context) error {
	state := make(map[string][]string)
	iter := s.client.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		redisKey := iter.Val()
		athleteID := strings.TrimPrefix(redisKey, redisKeyPrefix)
		members, err := s.client.SMembers(ctx, redisKey).Result()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrLoad, err)
		}
		state[athleteID] = members
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrLoad, err)
	}
	s.Restore(state)
	return nil
}

// Persist flushes buffered keys with one pipelined SADD per athlete. The
// buffer is cleared only on success.
func (s *RedisStore) Persist(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) == 0 {
		return nil
	}

	pipe := s.client.Pipeline()
	for athleteID, keys := range s.pending {
		members := make([]interface{}, len(keys))
		for i, k := range keys {
			members[i] = k
		}
		pipe.SAdd(ctx, redisKeyPrefix+athleteID, members...)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	s.pending = make(map[string][]string)
	return nil
}
