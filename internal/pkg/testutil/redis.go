// Package testutil holds helpers shared by package tests.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vidora/vidora-web/internal/pkg/env"
)

// Redis DBs reserved for tests; sessions use 1 and the app cache 0.
const (
	RedisDBJobQueue   = 14
	RedisDBPaySession = 13
	RedisDBReconcile  = 12
)

// RedisClient connects to the first reachable redis among CACHE_HOST and
// the usual local names, flushes db and flushes it again on cleanup. The
// test is skipped when no redis answers.
func RedisClient(t *testing.T, db int) *redis.Client {
	t.Helper()

	hosts := unique(env.GetEnv("CACHE_HOST", ""), "cache", "localhost", "127.0.0.1")
	ports := unique(env.GetEnv("CACHE_PORT", ""), "6379")
	passwords := unique(env.GetEnv("CACHE_PASSWORD", ""), "")

	var lastErr error
	for _, host := range hosts {
		for _, port := range ports {
			for _, password := range passwords {
				client := redis.NewClient(&redis.Options{
					Addr:     fmt.Sprintf("%s:%s", host, port),
					Password: password,
					DB:       db,
				})
				ctx, cancel := context.WithTimeout(context.Background(), time.Second)
				err := client.Ping(ctx).Err()
				if err == nil {
					err = client.FlushDB(ctx).Err()
				}
				cancel()
				if err != nil {
					lastErr = err
					_ = client.Close()
					continue
				}

				t.Cleanup(func() {
					_ = client.FlushDB(context.Background()).Err()
					_ = client.Close()
				})
				return client
			}
		}
	}

	t.Skipf("Skipping Redis-dependent test: no reachable Redis endpoint (%v)", lastErr)
	return nil
}

func unique(values ...string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(values))
	for i, v := range values {
		// The trailing fallback may be empty (no password).
		if v == "" && i != len(values)-1 {
			continue
		}
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
