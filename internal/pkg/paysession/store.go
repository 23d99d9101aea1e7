package paysession

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	KeyPrefix  = "paysession:"
	DefaultTTL = 24 * time.Hour
)

// Store persists sessions keyed by the browser session id.
type Store interface {
	Load(ctx context.Context, sessionID string) (Session, error)
	Save(ctx context.Context, sessionID string, s Session) error
}

// RedisStore keeps one hash per browser session.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (r *RedisStore) Load(ctx context.Context, sessionID string) (Session, error) {
	fields, err := r.client.HGetAll(ctx, KeyPrefix+sessionID).Result()
	if err != nil {
		return Session{}, fmt.Errorf("load payment session: %w", err)
	}
	return FromMarkers(fields), nil
}

// Save replaces the hash with the session's markers. An empty session
// deletes the key.
func (r *RedisStore) Save(ctx context.Context, sessionID string, s Session) error {
	key := KeyPrefix + sessionID
	markers := s.Markers()

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(markers) == 0 {
			return nil
		}
		values := make([]interface{}, 0, len(markers)*2)
		for k, v := range markers {
			values = append(values, k, v)
		}
		pipe.HSet(ctx, key, values...)
		pipe.Expire(ctx, key, r.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save payment session: %w", err)
	}
	return nil
}

// MemoryStore is an in-process Store for tests and single-node dev runs.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string]map[string]string{}}
}

func (m *MemoryStore) Load(_ context.Context, sessionID string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return FromMarkers(m.data[sessionID]), nil
}

func (m *MemoryStore) Save(_ context.Context, sessionID string, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	markers := s.Markers()
	if len(markers) == 0 {
		delete(m.data, sessionID)
		return nil
	}
	m.data[sessionID] = markers
	return nil
}

// Raw returns a copy of the stored markers.
func (m *MemoryStore) Raw(sessionID string) map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string, len(m.data[sessionID]))
	for k, v := range m.data[sessionID] {
		out[k] = v
	}
	return out
}
