package usecase

import (
	"time"

	"github.com/x-xyz/nftmarket/base/ctx"
	"github.com/x-xyz/nftmarket/domain/healthcheck"
	"github.com/x-xyz/nftmarket/domain/listing"
)

const snapshotTimeout = 3 * time.Second

type impl struct {
	repo    healthcheck.HealthCheckRepo
	listing listing.UseCase
}

// New creates new healthCheckUsecase object representation of HealthCheckUsecase interface
func New(repo healthcheck.HealthCheckRepo, listing listing.UseCase) healthcheck.HealthCheckUsecase {
	return &impl{
		repo:    repo,
		listing: listing,
	}
}

func (im *impl) Check(c ctx.Ctx) (*healthcheck.Report, error) {
	report := &healthcheck.Report{
		Mongo:    healthcheck.StatusOk,
		Redis:    healthcheck.StatusOk,
		Listings: healthcheck.StatusOk,
	}

	var firstErr error
	if err := im.repo.PingDB(c); err != nil {
		report.Mongo = healthcheck.StatusDown
		firstErr = err
	} else if cnt, err := im.repo.CountListings(c); err == nil {
		report.StoredListings = cnt
	}

	if err := im.repo.PingCache(c); err != nil {
		report.Redis = healthcheck.StatusDown
		if firstErr == nil {
			firstErr = err
		}
	}

	snapCtx, cancel := ctx.WithTimeout(c, snapshotTimeout)
	defer cancel()
	if snap, err := im.listing.Snapshot(snapCtx); err != nil {
		report.Listings = healthcheck.StatusUnavailable
	} else {
		report.Snapshot = &healthcheck.SnapshotInfo{
			Seq:       snap.Seq,
			Size:      len(snap.Listings),
			FetchedAt: snap.FetchedAt,
			Stale:     snap.Stale,
		}
	}

	return report, firstErr
}
