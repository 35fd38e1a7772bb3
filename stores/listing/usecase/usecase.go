package usecase

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/viney-shih/goroutines"
	"golang.org/x/xerrors"

	"github.com/x-xyz/nftmarket/base/ctx"
	"github.com/x-xyz/nftmarket/base/listingquery"
	"github.com/x-xyz/nftmarket/base/log"
	"github.com/x-xyz/nftmarket/base/metrics"
	"github.com/x-xyz/nftmarket/domain"
	"github.com/x-xyz/nftmarket/domain/listing"
)

const persistScheduleTimeout = 3 * time.Second

type ListingUseCaseCfg struct {
	Source       listing.Source
	Repo         listing.SnapshotRepo
	Marketplace  domain.Address
	FetchTimeout time.Duration
}

type impl struct {
	source       listing.Source
	repo         listing.SnapshotRepo
	engine       *listingquery.Engine
	fetchTimeout time.Duration
	workerPool   *goroutines.Pool
	met          metrics.Service
	timeNow      func() time.Time

	// seq is handed out before fetching, guarded by atomic ops
	seq uint64

	mu      sync.RWMutex
	current *listing.Snapshot

	persistMu    sync.Mutex
	persistedSeq uint64
}

func New(cfg *ListingUseCaseCfg) listing.UseCase {
	return &impl{
		source:       cfg.Source,
		repo:         cfg.Repo,
		engine:       listingquery.New(cfg.Marketplace),
		fetchTimeout: cfg.FetchTimeout,
		workerPool:   goroutines.NewPool(1, goroutines.WithTaskQueueLength(16)),
		met:          metrics.New("listing"),
		timeNow:      time.Now,
	}
}

// Refresh fetches the whole collection. A fetch only replaces the held
// snapshot if no later fetch finished first.
func (im *impl) Refresh(c ctx.Ctx) (*listing.Snapshot, error) {
	seq := atomic.AddUint64(&im.seq, 1)
	defer im.met.BumpTime("refresh").End()

	fetchCtx, cancel := c, func() {}
	if im.fetchTimeout > 0 {
		fetchCtx, cancel = ctx.WithTimeout(c, im.fetchTimeout)
	}
	listings, err := im.source.FetchListings(fetchCtx)
	cancel()
	if err != nil {
		c.WithFields(log.Fields{
			"seq": seq,
			"err": err,
		}).Warn("source.FetchListings failed")
		return im.fallback(c, err)
	}

	listing.ClassifyAll(listings, im.engine.Marketplace())
	snap := &listing.Snapshot{
		Seq:       seq,
		FetchedAt: im.timeNow(),
		Listings:  listings,
	}

	im.mu.Lock()
	if cur := im.current; cur != nil && !cur.Stale && cur.Seq > seq {
		im.mu.Unlock()
		c.WithFields(log.Fields{
			"seq":     seq,
			"current": cur.Seq,
		}).Info("discard stale fetch")
		return cur, nil
	}
	im.current = snap
	im.mu.Unlock()

	im.persist(c, snap)
	return snap, nil
}

// fallback keeps a held snapshot, or restores the persisted one as stale
func (im *impl) fallback(c ctx.Ctx, fetchErr error) (*listing.Snapshot, error) {
	im.mu.RLock()
	cur := im.current
	im.mu.RUnlock()
	if cur != nil {
		return nil, xerrors.Errorf("refresh failed: %v: %w", fetchErr, domain.ErrDataUnavailable)
	}

	stored, err := im.repo.Load(c)
	if err == domain.ErrNotFound {
		return nil, xerrors.Errorf("no snapshot available: %v: %w", fetchErr, domain.ErrDataUnavailable)
	} else if err != nil {
		c.WithField("err", err).Error("repo.Load failed")
		return nil, xerrors.Errorf("no snapshot available: %v: %w", err, domain.ErrDataUnavailable)
	}

	// restored snapshots rank below any fetch of this process
	stale := *stored
	stale.Seq = 0
	stale.Stale = true
	listing.ClassifyAll(stale.Listings, im.engine.Marketplace())

	im.mu.Lock()
	defer im.mu.Unlock()
	if im.current != nil {
		return im.current, nil
	}
	im.current = &stale
	c.WithFields(log.Fields{
		"storedSeq": stored.Seq,
		"fetchedAt": stored.FetchedAt,
		"size":      len(stale.Listings),
	}).Warn("serving stale snapshot")
	return &stale, nil
}

func (im *impl) persist(c ctx.Ctx, snap *listing.Snapshot) {
	bg := ctx.Detach(c)
	err := im.workerPool.ScheduleWithTimeout(persistScheduleTimeout, func() {
		im.persistMu.Lock()
		defer im.persistMu.Unlock()
		if snap.Seq <= im.persistedSeq {
			return
		}
		if err := im.repo.Save(bg, snap); err != nil {
			bg.WithFields(log.Fields{
				"seq": snap.Seq,
				"err": err,
			}).Error("repo.Save failed")
			return
		}
		im.persistedSeq = snap.Seq
	})
	if err != nil {
		c.WithFields(log.Fields{
			"seq": snap.Seq,
			"err": err,
		}).Error("failed to ScheduleWithTimeout")
	}
}

func (im *impl) Snapshot(c ctx.Ctx) (*listing.Snapshot, error) {
	im.mu.RLock()
	cur := im.current
	im.mu.RUnlock()
	if cur != nil {
		return cur, nil
	}
	return im.Refresh(c)
}

func (im *impl) View(c ctx.Ctx, state listing.ViewState, viewer domain.Address) (*listing.View, error) {
	if err := state.Validate(); err != nil {
		return nil, err
	}
	snap, err := im.Snapshot(c)
	if err != nil {
		return nil, err
	}
	defer im.met.BumpTime("view", "page", string(state.Page)).End()

	derived := im.engine.DeriveView(snap.Listings, state, viewer)
	return &listing.View{
		Page:      listingquery.Paginate(derived, state.PageNum, state.PageSize),
		Counts:    im.engine.ComputeCounts(snap.Listings, viewer),
		State:     state,
		ViewMode:  state.ViewMode,
		Seq:       snap.Seq,
		FetchedAt: snap.FetchedAt,
		Stale:     snap.Stale,
	}, nil
}

func (im *impl) Counts(c ctx.Ctx, viewer domain.Address) (listing.Counts, error) {
	snap, err := im.Snapshot(c)
	if err != nil {
		return nil, err
	}
	return im.engine.ComputeCounts(snap.Listings, viewer), nil
}

func (im *impl) Portfolio(c ctx.Ctx, viewer domain.Address) (*listing.PortfolioStats, error) {
	if viewer.IsEmpty() {
		return nil, domain.ErrInvalidAddress
	}
	snap, err := im.Snapshot(c)
	if err != nil {
		return nil, err
	}
	stats := im.engine.ComputePortfolioStats(snap.Listings, viewer)
	return &stats, nil
}
