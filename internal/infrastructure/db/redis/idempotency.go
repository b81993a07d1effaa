package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultIdempotencyTTL is how long a key is remembered when no TTL is configured.
const DefaultIdempotencyTTL = 24 * time.Hour

// reservationTTL bounds how long a reservation outlives a crashed holder.
const reservationTTL = time.Minute

// pendingValue marks a key whose first request has not stored its id yet.
const pendingValue = "pending"

// IdempotencyStore maps client-supplied Idempotency-Key values to the id of
// the entity the first request with that key created.
// Key format: idem:<scope>:<key>
//
// A key moves from absent to pending (Reserve, SETNX) to the entity id
// (Complete). Release deletes a pending key after a failed write.
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewIdempotencyStore creates an IdempotencyStore wrapping the given Redis client.
func NewIdempotencyStore(client *redis.Client, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}
	return &IdempotencyStore{client: client, ttl: ttl}
}

// Reserve claims key with SETNX. When another request holds it, the stored
// entity id is returned, or "" while that request is still pending.
func (s *IdempotencyStore) Reserve(ctx context.Context, scope, key string) (bool, string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	k := idempotencyKey(scope, key)
	ok, err := s.client.SetNX(ctx, k, pendingValue, reservationTTL).Result()
	if err != nil {
		return false, "", fmt.Errorf("idempotency reserve: %w", err)
	}
	if ok {
		return true, "", nil
	}

	val, err := s.client.Get(ctx, k).Result()
	if errors.Is(err, redis.Nil) {
		// Released or expired between the two calls; the caller polls again.
		return false, "", nil
	}
	if err != nil {
		return false, "", fmt.Errorf("idempotency lookup: %w", err)
	}
	if val == pendingValue {
		return false, "", nil
	}
	return false, val, nil
}

// Complete stores id under a reserved key for the store TTL.
func (s *IdempotencyStore) Complete(ctx context.Context, scope, key, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := s.client.Set(ctx, idempotencyKey(scope, key), id, s.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency complete: %w", err)
	}
	return nil
}

// Release drops a reservation so the next request with key can write.
func (s *IdempotencyStore) Release(ctx context.Context, scope, key string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := s.client.Del(ctx, idempotencyKey(scope, key)).Err(); err != nil {
		return fmt.Errorf("idempotency release: %w", err)
	}
	return nil
}

func idempotencyKey(scope, key string) string {
	return fmt.Sprintf("idem:%s:%s", scope, key)
}
