package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vidora/vidora-web/internal/pkg/billing"
)

const snapshotKeyPrefix = "payment_return:run:"

// Snapshot is the observable progress of one run, as polled by the page.
type Snapshot struct {
	RunID     string          `json:"runId"`
	State     State           `json:"state"`
	Message   string          `json:"message"`
	Trigger   TriggerKind     `json:"trigger,omitempty"`
	Attempts  int             `json:"attempts"`
	Errors    int             `json:"errors"`
	PaymentID string          `json:"paymentId,omitempty"`
	Provider  string          `json:"provider,omitempty"`
	Outcome   billing.Outcome `json:"outcome,omitempty"`
	StartedAt time.Time       `json:"startedAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// SnapshotStore keeps the latest snapshot per browser session.
type SnapshotStore interface {
	Load(ctx context.Context, sessionID string) (*Snapshot, error)
	Save(ctx context.Context, sessionID string, s Snapshot) error
	Delete(ctx context.Context, sessionID string) error
}

// RedisSnapshots stores snapshots as JSON strings with a TTL.
type RedisSnapshots struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSnapshots(client *redis.Client, ttl time.Duration) *RedisSnapshots {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &RedisSnapshots{client: client, ttl: ttl}
}

// Load returns nil, nil when there is no snapshot.
func (r *RedisSnapshots) Load(ctx context.Context, sessionID string) (*Snapshot, error) {
	data, err := r.client.Get(ctx, snapshotKeyPrefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &s, nil
}

func (r *RedisSnapshots) Save(ctx context.Context, sessionID string, s Snapshot) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return r.client.Set(ctx, snapshotKeyPrefix+sessionID, data, r.ttl).Err()
}

func (r *RedisSnapshots) Delete(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, snapshotKeyPrefix+sessionID).Err()
}

// MemorySnapshots is an in-process SnapshotStore.
type MemorySnapshots struct {
	mu   sync.Mutex
	data map[string]Snapshot
}

func NewMemorySnapshots() *MemorySnapshots {
	return &MemorySnapshots{data: map[string]Snapshot{}}
}

func (m *MemorySnapshots) Load(_ context.Context, sessionID string) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.data[sessionID]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *MemorySnapshots) Save(_ context.Context, sessionID string, s Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[sessionID] = s
	return nil
}

func (m *MemorySnapshots) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, sessionID)
	return nil
}
