// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"time"
)

// Pacer spaces out successive requests by a constant delay. The first call
// to Wait returns immediately; every later call sleeps for Delay. There is
// no token bucket or adaptive backoff. A Pacer is not safe for concurrent use.
type Pacer struct {
	Delay   time.Duration
	started bool
}

// NewPacer returns a pacer with the given fixed delay.
func NewPacer(delay time.Duration) *Pacer {
	return &Pacer{Delay: delay}
}

// Wait blocks for the configured delay unless this is the first call. It
// returns ctx.Err() if the context is cancelled during the wait.
func (p *Pacer) Wait(ctx context.Context) error {
	if !p.started {
		p.started = true
		return ctx.Err()
	}
	if p.Delay <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(p.Delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
