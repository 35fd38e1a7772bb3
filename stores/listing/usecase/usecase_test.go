package usecase

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/nftmarket/base/ctx"
	"github.com/x-xyz/nftmarket/domain"
	"github.com/x-xyz/nftmarket/domain/listing"
)

var (
	mockCtx         = ctx.Background()
	mockMarketplace = domain.Address("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	mockAlice       = domain.Address("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	mockBob         = domain.Address("0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC")
	mockNow         = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
)

type fakeSource struct {
	mu    sync.Mutex
	fetch func(call int) ([]listing.Listing, error)
	calls int
}

func (f *fakeSource) FetchListings(c ctx.Ctx) ([]listing.Listing, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	f.mu.Unlock()
	return f.fetch(call)
}

type fakeRepo struct {
	saved  chan *listing.Snapshot
	stored *listing.Snapshot
	err    error
}

func (f *fakeRepo) Save(c ctx.Ctx, s *listing.Snapshot) error {
	f.saved <- s
	return nil
}

func (f *fakeRepo) Load(c ctx.Ctx) (*listing.Snapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.stored == nil {
		return nil, domain.ErrNotFound
	}
	return f.stored, nil
}

func mockListings() []listing.Listing {
	return []listing.Listing{
		{TokenId: "1", Seller: mockAlice, Owner: mockMarketplace, EthPrice: "1.5", ListedAt: mockNow.Add(-3 * time.Hour)},
		{TokenId: "2", Seller: mockAlice, Owner: mockMarketplace, UsdcPrice: "2.25", ListedAt: mockNow.Add(-2 * time.Hour)},
		{TokenId: "3", Seller: mockBob, Owner: mockAlice, Sold: true, ListedAt: mockNow.Add(-1 * time.Hour)},
	}
}

type usecaseSuite struct {
	suite.Suite
	source *fakeSource
	repo   *fakeRepo
	im     *impl
}

func (s *usecaseSuite) SetupTest() {
	s.source = &fakeSource{fetch: func(int) ([]listing.Listing, error) { return mockListings(), nil }}
	s.repo = &fakeRepo{saved: make(chan *listing.Snapshot, 8)}
	s.im = New(&ListingUseCaseCfg{
		Source:       s.source,
		Repo:         s.repo,
		Marketplace:  mockMarketplace,
		FetchTimeout: time.Second,
	}).(*impl)
	s.im.timeNow = func() time.Time { return mockNow }
}

func TestUsecaseSuite(t *testing.T) {
	suite.Run(t, new(usecaseSuite))
}

func (s *usecaseSuite) waitSaved() *listing.Snapshot {
	select {
	case snap := <-s.repo.saved:
		return snap
	case <-time.After(time.Second):
		s.FailNow("snapshot was not persisted")
		return nil
	}
}

func (s *usecaseSuite) TestRefresh() {
	snap, err := s.im.Refresh(mockCtx)
	s.Require().NoError(err)
	s.Equal(uint64(1), snap.Seq)
	s.Equal(mockNow, snap.FetchedAt)
	s.False(snap.Stale)
	s.Equal(listing.StatusListed, snap.Listings[0].Status)
	s.Equal(listing.StatusListed, snap.Listings[1].Status)
	s.Equal(listing.StatusSold, snap.Listings[2].Status)

	s.Equal(snap, s.waitSaved())

	cur, err := s.im.Snapshot(mockCtx)
	s.NoError(err)
	s.Equal(snap, cur)
	s.Equal(1, s.source.calls)
}

func (s *usecaseSuite) TestSnapshotFetchesOnce() {
	_, err := s.im.Snapshot(mockCtx)
	s.NoError(err)
	_, err = s.im.Snapshot(mockCtx)
	s.NoError(err)
	s.Equal(1, s.source.calls)
}

func (s *usecaseSuite) TestStaleFetchNeverOverwrites() {
	entered := make(chan struct{})
	release := make(chan struct{})
	older := mockListings()[:1]
	s.source.fetch = func(call int) ([]listing.Listing, error) {
		if call == 1 {
			close(entered)
			<-release
			return older, nil
		}
		return mockListings(), nil
	}

	done := make(chan *listing.Snapshot)
	go func() {
		snap, _ := s.im.Refresh(mockCtx)
		done <- snap
	}()
	<-entered

	newer, err := s.im.Refresh(mockCtx)
	s.Require().NoError(err)
	s.Equal(uint64(2), newer.Seq)

	close(release)
	got := <-done
	s.Equal(newer, got)

	cur, err := s.im.Snapshot(mockCtx)
	s.NoError(err)
	s.Equal(uint64(2), cur.Seq)
	s.Len(cur.Listings, 3)
}

func (s *usecaseSuite) TestRefreshFailedWithoutAnything() {
	s.source.fetch = func(int) ([]listing.Listing, error) { return nil, errors.New("rpc down") }

	_, err := s.im.Refresh(mockCtx)
	s.ErrorIs(err, domain.ErrDataUnavailable)

	_, err = s.im.View(mockCtx, listing.DefaultViewState(listing.PageMarketplace), "")
	s.ErrorIs(err, domain.ErrDataUnavailable)
}

func (s *usecaseSuite) TestRefreshFailedFallsBackToStored() {
	fail := true
	s.source.fetch = func(int) ([]listing.Listing, error) {
		if fail {
			return nil, errors.New("rpc down")
		}
		return mockListings(), nil
	}
	s.repo.stored = &listing.Snapshot{Seq: 41, FetchedAt: mockNow.Add(-time.Hour), Listings: mockListings()[:2]}

	snap, err := s.im.Refresh(mockCtx)
	s.Require().NoError(err)
	s.True(snap.Stale)
	s.Equal(uint64(0), snap.Seq)
	s.Len(snap.Listings, 2)

	view, err := s.im.View(mockCtx, listing.DefaultViewState(listing.PageMarketplace), "")
	s.Require().NoError(err)
	s.True(view.Stale)
	s.Equal(2, view.Total)

	fail = false
	snap, err = s.im.Refresh(mockCtx)
	s.Require().NoError(err)
	s.False(snap.Stale)
	s.Len(snap.Listings, 3)
}

func (s *usecaseSuite) TestRefreshFailedKeepsCurrent() {
	first, err := s.im.Refresh(mockCtx)
	s.Require().NoError(err)

	s.source.fetch = func(int) ([]listing.Listing, error) { return nil, errors.New("rpc down") }
	_, err = s.im.Refresh(mockCtx)
	s.ErrorIs(err, domain.ErrDataUnavailable)

	cur, err := s.im.Snapshot(mockCtx)
	s.NoError(err)
	s.Equal(first, cur)
}

func (s *usecaseSuite) TestView() {
	state := listing.DefaultViewState(listing.PageMarketplace).WithSort(listing.SortPriceHigh)
	state.PageSize = 1

	view, err := s.im.View(mockCtx, state, mockAlice)
	s.Require().NoError(err)
	s.Equal(3, view.Total)
	s.Equal(3, view.TotalPages)
	s.Equal(1, view.PageNum)
	s.Require().Len(view.Items, 1)
	s.Equal(domain.TokenId("2"), view.Items[0].TokenId)
	s.Equal(listing.ViewGrid, view.ViewMode)
	s.Equal(3, view.Counts[listing.CategoryAll])
	s.Equal(1, view.Counts[listing.CategoryEth])
	s.Equal(1, view.Counts[listing.CategoryOwned])
	s.Equal(uint64(1), view.Seq)

	_, err = s.im.View(mockCtx, state.WithCategory(listing.CategoryOwned), mockAlice)
	s.ErrorIs(err, domain.ErrBadParamInput)
}

func (s *usecaseSuite) TestCountsAndPortfolio() {
	counts, err := s.im.Counts(mockCtx, mockBob)
	s.NoError(err)
	s.Equal(1, counts[listing.CategorySold])
	s.Equal(0, counts[listing.CategoryListed])

	stats, err := s.im.Portfolio(mockCtx, mockAlice)
	s.NoError(err)
	s.Equal(&listing.PortfolioStats{Owned: 1, Listed: 2, Sold: 0, PortfolioValue: "3.7500"}, stats)

	stats, err = s.im.Portfolio(mockCtx, mockBob)
	s.NoError(err)
	s.Equal(&listing.PortfolioStats{Owned: 0, Listed: 0, Sold: 1, PortfolioValue: "0.0000"}, stats)

	_, err = s.im.Portfolio(mockCtx, "")
	s.Equal(domain.ErrInvalidAddress, err)
}
