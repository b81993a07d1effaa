package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/opsboard/internal/core/domain"
)

// ReplayGuard abstracts the idempotency store (Redis). A key is reserved
// before the write, then completed with the id of the created entity, so
// concurrent retries never create twice.
type ReplayGuard interface {
	// Reserve claims key for the caller. When the key is already held it
	// returns the completed entity id, or "" while the holder is still writing.
	Reserve(ctx context.Context, scope, key string) (reserved bool, id string, err error)
	// Complete records the id created under a reserved key.
	Complete(ctx context.Context, scope, key, id string) error
	// Release drops a reservation whose write failed so a retry can proceed.
	Release(ctx context.Context, scope, key string) error
}

const (
	defaultReplayWait = 5 * time.Second
	replayPollEvery   = 50 * time.Millisecond
)

type noReplay struct{}

func (noReplay) Reserve(context.Context, string, string) (bool, string, error) { return true, "", nil }
func (noReplay) Complete(context.Context, string, string, string) error        { return nil }
func (noReplay) Release(context.Context, string, string) error                 { return nil }

// claim is the outcome of reserving an idempotency key for one create.
type claim struct {
	scope string
	key   string
	// held means this request owns the key and must complete or release it.
	held bool
	// replayID is the entity created by an earlier request with the same key.
	replayID string
}

// claimKey reserves key, waiting up to wait for an in-flight holder to
// finish. A broken store never fails the request: it only costs replay
// protection.
func claimKey(ctx context.Context, g ReplayGuard, log zerolog.Logger, scope, key string, wait time.Duration) (claim, error) {
	c := claim{scope: scope, key: key}
	if key == "" {
		return c, nil
	}

	deadline := time.NewTimer(wait)
	defer deadline.Stop()
	tick := time.NewTicker(replayPollEvery)
	defer tick.Stop()

	for {
		reserved, id, err := g.Reserve(ctx, scope, key)
		if err != nil {
			log.Warn().Err(err).Str("scope", scope).Msg("idempotency reserve failed, processing anyway")
			return c, nil
		}
		if reserved {
			c.held = true
			return c, nil
		}
		if id != "" {
			c.replayID = id
			return c, nil
		}

		select {
		case <-ctx.Done():
			return c, ctx.Err()
		case <-deadline.C:
			return c, domain.ErrRequestInFlight
		case <-tick.C:
		}
	}
}

func (c claim) complete(ctx context.Context, g ReplayGuard, log zerolog.Logger, id string) {
	if !c.held {
		return
	}
	if err := g.Complete(ctx, c.scope, c.key, id); err != nil {
		log.Warn().Err(err).Str("scope", c.scope).Msg("failed to store idempotency key")
	}
}

func (c claim) release(ctx context.Context, g ReplayGuard, log zerolog.Logger) {
	if !c.held {
		return
	}
	if err := g.Release(ctx, c.scope, c.key); err != nil {
		log.Warn().Err(err).Str("scope", c.scope).Msg("failed to release idempotency key")
	}
}
