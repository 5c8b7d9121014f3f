// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cooldown

import (
	"context"
	"time"

	"github.com/danielhkuo/pollkit/storage"
)

// Window is how long re-voting on a question stays blocked after a vote.
// Client-side only: the backend keeps no per-user vote state, so this is
// an advisory gate, not an enforcement boundary.
const Window = 24 * time.Hour

const keyPrefix = "voting_cooldown_"

// Gate blocks repeat voting per question code, backed by persisted
// epoch-millisecond timestamps so the block survives reloads.
type Gate struct {
	store  *storage.Store
	window time.Duration
	now    func() time.Time
}

// NewGate creates a gate with the standard 24h window.
func NewGate(store *storage.Store) *Gate {
	return &Gate{store: store, window: Window, now: time.Now}
}

// NewGateWithClock creates a gate with a custom window and clock.
func NewGateWithClock(store *storage.Store, window time.Duration, now func() time.Time) *Gate {
	return &Gate{store: store, window: window, now: now}
}

// IsOnCooldown reports whether a vote on questionCode is currently blocked.
// A missing or unparseable record means no cooldown.
func (g *Gate) IsOnCooldown(questionCode string) bool {
	return g.Remaining(questionCode) > 0
}

// Remaining returns how long until questionCode may be voted on again,
// or 0 when it is open now.
func (g *Gate) Remaining(questionCode string) time.Duration {
	lastVoteMs, ok, err := g.store.GetInt64(keyPrefix + questionCode)
	if err != nil || !ok {
		return 0
	}

	elapsed := g.now().Sub(time.UnixMilli(lastVoteMs))
	if remaining := g.window - elapsed; remaining > 0 {
		return remaining
	}
	return 0
}

// Record upserts the last-vote timestamp for questionCode to now. Called
// at the moment a vote successfully submits.
func (g *Gate) Record(questionCode string) error {
	return g.store.SetInt64(keyPrefix+questionCode, g.now().UnixMilli())
}

// Countdown emits the remaining cooldown for questionCode once per second
// while a cooldown display is active. The channel closes when the window
// lapses or ctx is cancelled, so a component teardown stops the ticker.
func (g *Gate) Countdown(ctx context.Context, questionCode string) <-chan time.Duration {
	ch := make(chan time.Duration, 1)

	go func() {
		defer close(ch)

		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()

		for {
			remaining := g.Remaining(questionCode)
			select {
			case ch <- remaining:
			case <-ctx.Done():
				return
			}
			if remaining <= 0 {
				return
			}

			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()

	return ch
}
