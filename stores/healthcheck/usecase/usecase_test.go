package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/x-xyz/nftmarket/base/ctx"
	"github.com/x-xyz/nftmarket/domain"
	"github.com/x-xyz/nftmarket/domain/healthcheck"
	"github.com/x-xyz/nftmarket/domain/listing"
	listingMocks "github.com/x-xyz/nftmarket/domain/listing/mocks"
)

type fakeRepo struct {
	dbErr    error
	cacheErr error
	count    int
}

func (f *fakeRepo) PingDB(c ctx.Ctx) error    { return f.dbErr }
func (f *fakeRepo) PingCache(c ctx.Ctx) error { return f.cacheErr }
func (f *fakeRepo) CountListings(c ctx.Ctx) (int, error) {
	return f.count, nil
}

func TestCheck(t *testing.T) {
	fetchedAt := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	snap := &listing.Snapshot{Seq: 4, FetchedAt: fetchedAt, Listings: make([]listing.Listing, 3), Stale: true}
	dbErr := errors.New("mongo down")
	cacheErr := errors.New("redis down")

	tests := []struct {
		desc       string
		repo       *fakeRepo
		snap       *listing.Snapshot
		snapErr    error
		wantErr    error
		wantReport healthcheck.Report
	}{
		{
			desc: "healthy",
			repo: &fakeRepo{count: 3},
			snap: snap,
			wantReport: healthcheck.Report{
				Mongo:          healthcheck.StatusOk,
				Redis:          healthcheck.StatusOk,
				Listings:       healthcheck.StatusOk,
				StoredListings: 3,
				Snapshot:       &healthcheck.SnapshotInfo{Seq: 4, Size: 3, FetchedAt: fetchedAt, Stale: true},
			},
		},
		{
			desc:    "no snapshot is tolerated",
			repo:    &fakeRepo{},
			snapErr: domain.ErrDataUnavailable,
			wantReport: healthcheck.Report{
				Mongo:    healthcheck.StatusOk,
				Redis:    healthcheck.StatusOk,
				Listings: healthcheck.StatusUnavailable,
			},
		},
		{
			desc:    "storage down",
			repo:    &fakeRepo{dbErr: dbErr, cacheErr: cacheErr, count: 3},
			snap:    snap,
			wantErr: dbErr,
			wantReport: healthcheck.Report{
				Mongo:    healthcheck.StatusDown,
				Redis:    healthcheck.StatusDown,
				Listings: healthcheck.StatusOk,
				Snapshot: &healthcheck.SnapshotInfo{Seq: 4, Size: 3, FetchedAt: fetchedAt, Stale: true},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			uc := &listingMocks.UseCase{}
			uc.On("Snapshot", mock.Anything).Return(tt.snap, tt.snapErr).Once()

			report, err := New(tt.repo, uc).Check(ctx.Background())
			require.Equal(t, tt.wantErr, err)
			require.Equal(t, tt.wantReport, *report)
			uc.AssertExpectations(t)
		})
	}
}
