package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// SetupTestRedis returns a Redis client for tests.
// When TEST_REDIS_ADDR is set, DB 1 of the server at that address is flushed and used.
// Otherwise an in-process miniredis is started and the returned *Miniredis controls it.
func SetupTestRedis(t testing.TB) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	if addr := os.Getenv("TEST_REDIS_ADDR"); addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr, DB: 1})
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			closeAndLog(t, "redis client", client)
			skipOrFail(t, requireRedis(), "Redis not available at", addr, err)
			return nil, nil
		}
		client.FlushDB(ctx)
		t.Cleanup(func() { closeAndLog(t, "redis client", client) })
		return client, nil
	}

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { closeAndLog(t, "redis client", client) })
	return client, mr
}
