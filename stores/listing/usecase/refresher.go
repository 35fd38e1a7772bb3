package usecase

import (
	"time"

	"github.com/x-xyz/nftmarket/base/backoff"
	"github.com/x-xyz/nftmarket/base/ctx"
	"github.com/x-xyz/nftmarket/base/goroutine"
	"github.com/x-xyz/nftmarket/base/log"
	"github.com/x-xyz/nftmarket/domain/listing"
)

// Refresher re-fetches the listing collection periodically. Failed or stale
// refreshes are retried with backoff instead of waiting a full interval.
type Refresher struct {
	uc       listing.UseCase
	interval time.Duration
	backoff  *backoff.Backoff
}

func NewRefresher(uc listing.UseCase, interval time.Duration, b *backoff.Backoff) *Refresher {
	return &Refresher{
		uc:       uc,
		interval: interval,
		backoff:  b,
	}
}

// Start runs the loop until c is cancelled
func (r *Refresher) Start(c ctx.Ctx) <-chan *goroutine.PanicEvent {
	return goroutine.RecoverableGo(func() {
		r.run(c)
	}, goroutine.WithName("listing-refresher"))
}

func (r *Refresher) run(c ctx.Ctx) {
	for {
		snap, err := r.uc.Refresh(c)
		if err != nil || snap.Stale {
			c.WithFields(log.Fields{
				"err":     err,
				"attempt": r.backoff.Attempts(),
				"wait":    r.backoff.NextDuration.String(),
			}).Warn("listing refresh failed, backing off")
			if err := r.backoff.Backoff(c); err != nil {
				return
			}
			continue
		}
		r.backoff.Reset()

		timer := time.NewTimer(r.interval)
		select {
		case <-c.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}
