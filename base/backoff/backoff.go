package backoff

import (
	"context"
	"time"
)

// Strategy computes the wait before retry number attempt (0 based)
type Strategy func(attempt int, start time.Duration) time.Duration

func exponential(attempt int, start time.Duration) time.Duration {
	if attempt > 32 {
		attempt = 32
	}
	return start << uint(attempt)
}

func linear(attempt int, start time.Duration) time.Duration {
	return time.Duration(attempt+1) * start
}

// Backoff is not safe for concurrent use
type Backoff struct {
	LastDuration time.Duration
	NextDuration time.Duration
	start        time.Duration
	limit        time.Duration
	attempt      int
	strategy     Strategy
}

func NewBackoff(strategy Strategy, start, limit time.Duration) *Backoff {
	b := &Backoff{strategy: strategy, start: start, limit: limit}
	b.Reset()
	return b
}

func NewExponential(start, limit time.Duration) *Backoff {
	return NewBackoff(exponential, start, limit)
}

func NewLinear(start, limit time.Duration) *Backoff {
	return NewBackoff(linear, start, limit)
}

func (b *Backoff) Reset() {
	b.attempt = 0
	b.LastDuration = 0
	b.NextDuration = b.next()
}

// Attempts is the number of completed waits since the last Reset
func (b *Backoff) Attempts() int {
	return b.attempt
}

// Backoff sleeps NextDuration and advances. It returns ctx.Err() early if ctx ends.
func (b *Backoff) Backoff(ctx context.Context) error {
	timer := time.NewTimer(b.NextDuration)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}
	b.attempt++
	b.LastDuration = b.NextDuration
	b.NextDuration = b.next()
	return nil
}

func (b *Backoff) next() time.Duration {
	d := b.strategy(b.attempt, b.start)
	if b.limit > 0 && (d > b.limit || d <= 0) {
		d = b.limit
	}
	return d
}
