package counter

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vidora/vidora-web/internal/pkg/cache"
)

const (
	outcomesKeyPrefix = "payment_return:outcomes:"
	outcomesTTL       = 35 * 24 * time.Hour
)

// Counter keeps per-day payment-return outcome tallies in redis hashes
// for the admin dashboard.
type Counter struct {
	client *redis.Client
	now    func() time.Time
}

func New(client *redis.Client) *Counter {
	return &Counter{client: client, now: time.Now}
}

// Default returns a counter on the shared cache client.
func Default() *Counter {
	return New(cache.GetClient())
}

func dayKey(t time.Time) string {
	return outcomesKeyPrefix + t.UTC().Format("20060102")
}

// AddOutcome increments the counter for state on the current day.
func (c *Counter) AddOutcome(ctx context.Context, state string) error {
	key := dayKey(c.now())
	pipe := c.client.TxPipeline()
	pipe.HIncrBy(ctx, key, state, 1)
	pipe.Expire(ctx, key, outcomesTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to count outcome %s: %w", state, err)
	}
	return nil
}

// Outcomes sums the tallies of the last days days, today included.
func (c *Counter) Outcomes(ctx context.Context, days int) (map[string]int64, error) {
	if days <= 0 {
		days = 1
	}
	now := c.now()
	pipe := c.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, 0, days)
	for i := 0; i < days; i++ {
		cmds = append(cmds, pipe.HGetAll(ctx, dayKey(now.AddDate(0, 0, -i))))
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, err
	}

	totals := make(map[string]int64)
	for _, cmd := range cmds {
		for state, raw := range cmd.Val() {
			n, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				continue
			}
			totals[state] += n
		}
	}
	return totals, nil
}
