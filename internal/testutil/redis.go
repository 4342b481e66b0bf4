//go:build integration

package testutil

import (
	"context"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
)

// SnapshotDB is the Redis database the snapshot integration tests use.
const SnapshotDB = 10

// RedisAddr returns the address of the test Redis container (IP:port).
// It first checks NEWTMN_TEST_REDIS_ADDR, then discovers the Docker container IP.
func RedisAddr() string {
	if addr := os.Getenv("NEWTMN_TEST_REDIS_ADDR"); addr != "" {
		return addr
	}
	out, err := exec.Command("docker", "inspect",
		"--format", "{{range .NetworkSettings.Networks}}{{.IPAddress}}{{end}}",
		"newtmn-test-redis").Output()
	if err != nil {
		return ""
	}
	ip := strings.TrimSpace(string(out))
	if ip == "" {
		return ""
	}
	return ip + ":6379"
}

// SkipIfNoRedis skips the test if the test Redis container is not reachable.
func SkipIfNoRedis(t *testing.T) {
	t.Helper()

	addr := RedisAddr()
	if addr == "" {
		t.Skip("test Redis not available: set NEWTMN_TEST_REDIS_ADDR")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("test Redis not reachable at %s: %v", addr, err)
	}
}

// FlushDB empties one database on the test Redis instance.
func FlushDB(t *testing.T, db int) {
	t.Helper()

	client := redis.NewClient(&redis.Options{Addr: RedisAddr(), DB: db})
	defer client.Close()

	if err := client.FlushDB(context.Background()).Err(); err != nil {
		t.Fatalf("failed to flush DB %d: %v", db, err)
	}
}

// KeyCount returns the number of keys in a Redis database.
func KeyCount(t *testing.T, db int) int {
	t.Helper()

	client := redis.NewClient(&redis.Options{Addr: RedisAddr(), DB: db})
	defer client.Close()

	n, err := client.DBSize(context.Background()).Result()
	if err != nil {
		t.Fatalf("failed to get key count for DB %d: %v", db, err)
	}
	return int(n)
}

// Context returns a context with a reasonable timeout for tests.
// The cancel function is registered via t.Cleanup.
func Context(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}
