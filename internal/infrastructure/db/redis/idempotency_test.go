package redis

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestIdempotencyKeyFormat(t *testing.T) {
	if got := idempotencyKey("users", "abc-123"); got != "idem:users:abc-123" {
		t.Errorf("key = %q", got)
	}
}

func TestNewIdempotencyStore_DefaultTTL(t *testing.T) {
	s := NewIdempotencyStore(nil, 0)
	if s.ttl != DefaultIdempotencyTTL {
		t.Errorf("ttl = %v, want %v", s.ttl, DefaultIdempotencyTTL)
	}
}

func TestIdempotencyStore_RoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}

	ctx := context.Background()
	client, err := Connect(ctx, Config{Addr: addr, Timeout: 2 * time.Second})
	if err != nil {
		t.Skipf("Failed to connect to test redis: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	store := NewIdempotencyStore(client, time.Minute)
	key := "test-" + time.Now().Format(time.RFC3339Nano)
	t.Cleanup(func() {
		client.Del(context.Background(), idempotencyKey("users", key), idempotencyKey("analytics", key))
	})

	reserved, _, err := store.Reserve(ctx, "users", key)
	if err != nil || !reserved {
		t.Fatalf("fresh key: reserved=%v err=%v", reserved, err)
	}

	reserved, id, err := store.Reserve(ctx, "users", key)
	if err != nil || reserved || id != "" {
		t.Fatalf("pending key: reserved=%v id=%q err=%v", reserved, id, err)
	}

	if err := store.Complete(ctx, "users", key, "first"); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	reserved, id, err = store.Reserve(ctx, "users", key)
	if err != nil || reserved || id != "first" {
		t.Fatalf("completed key: reserved=%v id=%q err=%v", reserved, id, err)
	}

	if reserved, _, _ := store.Reserve(ctx, "analytics", key); !reserved {
		t.Error("scopes must not share keys")
	}
	if err := store.Release(ctx, "analytics", key); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if reserved, _, _ := store.Reserve(ctx, "analytics", key); !reserved {
		t.Error("a released key must be reservable again")
	}
}
