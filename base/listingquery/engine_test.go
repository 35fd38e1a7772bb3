package listingquery

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/nftmarket/domain"
	"github.com/x-xyz/nftmarket/domain/listing"
)

const (
	marketplace = domain.Address("0xFEEDFACEFEEDFACEFEEDFACEFEEDFACEFEEDFACE")
	alice       = domain.Address("0xABCDDDDDDDDDDDDDDDDDDDDDDDDDDDDDDDDDDDDD")
	bob         = domain.Address("0xB0BEEEEEEEEEEEEEEEEEEEEEEEEEEEEEEEEEEEEE")
)

var base = time.Date(2022, 7, 1, 0, 0, 0, 0, time.UTC)

func at(minutes int) time.Time {
	return base.Add(time.Duration(minutes) * time.Minute)
}

// addresses only carry the digit 0 so numeric searches hit token ids alone

type engineTestSuite struct {
	suite.Suite
	engine   *Engine
	listings []listing.Listing
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(engineTestSuite))
}

func (s *engineTestSuite) SetupTest() {
	s.engine = New(marketplace)
	s.listings = []listing.Listing{
		// listed by alice for eth
		{TokenId: "1", Seller: alice, Owner: marketplace, EthPrice: "0.9", ListedAt: at(1)},
		// listed by bob for usdc and eth
		{TokenId: "2", Seller: bob, Owner: marketplace, EthPrice: "4.999", UsdcPrice: "2", ListedAt: at(2)},
		// held by alice
		{TokenId: "3", Seller: bob, Owner: alice, ListedAt: at(3)},
		// sold by alice to bob
		{TokenId: "12", Seller: alice, Owner: bob, EthPrice: "6", Sold: true, ListedAt: at(4)},
		// listed by bob for usdt
		{TokenId: "21", Seller: bob, Owner: marketplace, UsdtPrice: "7", ListedAt: at(5)},
	}
}

func tokenIds(ls []listing.Listing) []domain.TokenId {
	ids := []domain.TokenId{}
	for _, l := range ls {
		ids = append(ids, l.TokenId)
	}
	return ids
}

func marketplaceState() listing.ViewState {
	return listing.DefaultViewState(listing.PageMarketplace)
}

func collectionState() listing.ViewState {
	return listing.DefaultViewState(listing.PageCollection)
}

func (s *engineTestSuite) TestPriceHighExample() {
	ls := []listing.Listing{
		{TokenId: "1", EthPrice: "1"},
		{TokenId: "2", UsdcPrice: "3"},
	}
	got := s.engine.DeriveView(ls, marketplaceState().WithSort(listing.SortPriceHigh), "")
	s.Equal([]domain.TokenId{"2", "1"}, tokenIds(got))
}

func (s *engineTestSuite) TestSearchAddressCaseInsensitive() {
	got := s.engine.DeriveView(s.listings, marketplaceState().WithSearch("0xabc"), "")
	s.ElementsMatch([]domain.TokenId{"1", "3", "12"}, tokenIds(got))
}

func (s *engineTestSuite) TestSearchTokenIdCaseSensitive() {
	ls := []listing.Listing{{TokenId: "ab12", Seller: bob, Owner: bob}}
	s.Len(s.engine.DeriveView(ls, marketplaceState().WithSearch("ab1"), ""), 1)
	s.Len(s.engine.DeriveView(ls, marketplaceState().WithSearch("AB1"), ""), 0)
}

func (s *engineTestSuite) TestMidRangeBoundaries() {
	got := s.engine.DeriveView(s.listings, marketplaceState().WithPriceRange(listing.PriceRangeMid), "")
	s.Equal([]domain.TokenId{"2"}, tokenIds(got))
}

func (s *engineTestSuite) TestPriceRanges() {
	tests := []struct {
		desc string
		r    listing.PriceRange
		want []domain.TokenId
	}{
		{desc: "low includes unpriced", r: listing.PriceRangeLow, want: []domain.TokenId{"3", "1"}},
		{desc: "high", r: listing.PriceRangeHigh, want: []domain.TokenId{"21", "12"}},
		{desc: "all", r: listing.PriceRangeAll, want: []domain.TokenId{"21", "12", "3", "2", "1"}},
	}
	for _, tt := range tests {
		got := s.engine.DeriveView(s.listings, marketplaceState().WithPriceRange(tt.r), "")
		s.Equal(tt.want, tokenIds(got), tt.desc)
	}
}

func (s *engineTestSuite) TestCurrencyCategory() {
	tests := []struct {
		desc     string
		category listing.Category
		want     []domain.TokenId
	}{
		{desc: "eth", category: listing.CategoryEth, want: []domain.TokenId{"12", "2", "1"}},
		{desc: "usdc", category: listing.CategoryUsdc, want: []domain.TokenId{"2"}},
		{desc: "usdt", category: listing.CategoryUsdt, want: []domain.TokenId{"21"}},
	}
	for _, tt := range tests {
		got := s.engine.DeriveView(s.listings, marketplaceState().WithCategory(tt.category), "")
		s.Equal(tt.want, tokenIds(got), tt.desc)
	}
}

func (s *engineTestSuite) TestMarketplaceSearchSkipsCurrencyFilter() {
	// token 3 has no usdt price, search alone decides
	state := marketplaceState().WithCategory(listing.CategoryUsdt).WithSearch("3")
	got := s.engine.DeriveView(s.listings, state, "")
	s.Equal([]domain.TokenId{"3"}, tokenIds(got))
}

func (s *engineTestSuite) TestCollectionSearchComposesWithRole() {
	state := collectionState().WithCategory(listing.CategoryListed).WithSearch("1")
	got := s.engine.DeriveView(s.listings, state, alice)
	s.Equal([]domain.TokenId{"1"}, tokenIds(got))

	got = s.engine.DeriveView(s.listings, state, bob)
	s.Equal([]domain.TokenId{"21"}, tokenIds(got))

	state = collectionState().WithCategory(listing.CategoryOwned).WithSearch("2")
	s.Empty(s.engine.DeriveView(s.listings, state, alice))
}

func (s *engineTestSuite) TestRoleCategories() {
	tests := []struct {
		desc     string
		category listing.Category
		viewer   domain.Address
		want     []domain.TokenId
	}{
		{desc: "owned by alice", category: listing.CategoryOwned, viewer: alice, want: []domain.TokenId{"3"}},
		{desc: "owned by bob", category: listing.CategoryOwned, viewer: bob.ToLower(), want: []domain.TokenId{"12"}},
		{desc: "listed by alice", category: listing.CategoryListed, viewer: alice, want: []domain.TokenId{"1"}},
		{desc: "listed by bob", category: listing.CategoryListed, viewer: bob, want: []domain.TokenId{"21", "2"}},
		{desc: "listed without viewer", category: listing.CategoryListed, viewer: "", want: []domain.TokenId{}},
		{desc: "all of alice", category: listing.CategoryAll, viewer: alice, want: []domain.TokenId{"12", "3", "1"}},
		{desc: "all of stranger", category: listing.CategoryAll, viewer: "0x0000000000000000000000000000000000000001", want: []domain.TokenId{}},
		{desc: "sold by alice", category: listing.CategorySold, viewer: alice, want: []domain.TokenId{"12"}},
		{desc: "sold by bob", category: listing.CategorySold, viewer: bob, want: []domain.TokenId{}},
		{desc: "owned without viewer", category: listing.CategoryOwned, viewer: "", want: []domain.TokenId{}},
	}
	for _, tt := range tests {
		got := s.engine.DeriveView(s.listings, collectionState().WithCategory(tt.category), tt.viewer)
		s.Equal(tt.want, tokenIds(got), tt.desc)
	}
}

func (s *engineTestSuite) TestSortOrders() {
	tests := []struct {
		desc string
		by   listing.SortOption
		want []domain.TokenId
	}{
		{desc: "newest", by: listing.SortNewest, want: []domain.TokenId{"21", "12", "3", "2", "1"}},
		{desc: "oldest", by: listing.SortOldest, want: []domain.TokenId{"1", "2", "3", "12", "21"}},
		{desc: "price low", by: listing.SortPriceLow, want: []domain.TokenId{"3", "1", "2", "12", "21"}},
		{desc: "price high", by: listing.SortPriceHigh, want: []domain.TokenId{"21", "12", "2", "1", "3"}},
	}
	for _, tt := range tests {
		got := s.engine.DeriveView(s.listings, marketplaceState().WithSort(tt.by), "")
		s.Equal(tt.want, tokenIds(got), tt.desc)
	}
}

func (s *engineTestSuite) TestSortIsStable() {
	ls := []listing.Listing{
		{TokenId: "a", EthPrice: "1", ListedAt: base},
		{TokenId: "b", EthPrice: "2", ListedAt: base},
		{TokenId: "c", UsdcPrice: "1", ListedAt: base},
		{TokenId: "d", EthPrice: "1", ListedAt: base},
	}
	s.Equal([]domain.TokenId{"a", "c", "d", "b"}, tokenIds(s.engine.DeriveView(ls, marketplaceState().WithSort(listing.SortPriceLow), "")))
	s.Equal([]domain.TokenId{"b", "a", "c", "d"}, tokenIds(s.engine.DeriveView(ls, marketplaceState().WithSort(listing.SortPriceHigh), "")))
	s.Equal([]domain.TokenId{"a", "b", "c", "d"}, tokenIds(s.engine.DeriveView(ls, marketplaceState().WithSort(listing.SortNewest), "")))
}

func (s *engineTestSuite) TestPriceSortsReverseEachOther() {
	// distinct highest prices
	low := tokenIds(s.engine.DeriveView(s.listings, marketplaceState().WithSort(listing.SortPriceLow), ""))
	high := tokenIds(s.engine.DeriveView(s.listings, marketplaceState().WithSort(listing.SortPriceHigh), ""))
	for i := range low {
		s.Equal(low[i], high[len(high)-1-i])
	}
}

func (s *engineTestSuite) TestSubsequenceAndInputUntouched() {
	before := make([]listing.Listing, len(s.listings))
	copy(before, s.listings)

	states := []listing.ViewState{
		marketplaceState().WithSort(listing.SortPriceHigh),
		marketplaceState().WithCategory(listing.CategoryEth).WithPriceRange(listing.PriceRangeHigh),
		collectionState().WithCategory(listing.CategoryListed).WithSort(listing.SortOldest),
		collectionState().WithSearch("0xb0b"),
	}
	ids := map[domain.TokenId]bool{}
	for _, l := range s.listings {
		ids[l.TokenId] = true
	}
	for _, st := range states {
		got := s.engine.DeriveView(s.listings, st, alice)
		s.LessOrEqual(len(got), len(s.listings))
		for _, l := range got {
			s.True(ids[l.TokenId])
		}
	}
	s.Equal(before, s.listings)
}

func (s *engineTestSuite) TestIdempotentWithDefaults() {
	once := s.engine.DeriveView(s.listings, marketplaceState(), "")
	twice := s.engine.DeriveView(once, marketplaceState(), "")
	s.Equal(once, twice)
	s.Len(once, len(s.listings))
}

func (s *engineTestSuite) TestEmptyInput() {
	s.Empty(s.engine.DeriveView(nil, marketplaceState().WithSearch("x"), alice))
	counts := s.engine.ComputeCounts(nil, alice)
	for _, c := range listing.Categories {
		s.Equal(0, counts[c])
	}
	s.Equal("0.0000", s.engine.ComputePortfolioStats(nil, alice).PortfolioValue)
}

func (s *engineTestSuite) TestComputeCounts() {
	counts := s.engine.ComputeCounts(s.listings, alice)
	s.Equal(listing.Counts{
		listing.CategoryAll:    5,
		listing.CategoryEth:    3,
		listing.CategoryUsdc:   1,
		listing.CategoryUsdt:   1,
		listing.CategoryOwned:  1,
		listing.CategoryListed: 1,
		listing.CategorySold:   1,
	}, counts)

	counts = s.engine.ComputeCounts(s.listings, bob)
	s.Equal(1, counts[listing.CategoryOwned])
	s.Equal(2, counts[listing.CategoryListed])
	s.Equal(0, counts[listing.CategorySold])
}

func (s *engineTestSuite) TestCountsIgnoreViewState() {
	// counts only take the collection and the viewer, deriving views in
	// between must not change them
	before := s.engine.ComputeCounts(s.listings, alice)
	s.engine.DeriveView(s.listings, marketplaceState().WithCategory(listing.CategoryUsdc).WithSearch("2"), alice)
	s.Equal(before, s.engine.ComputeCounts(s.listings, alice))
}

func (s *engineTestSuite) TestPortfolioValueExample() {
	ls := []listing.Listing{
		{TokenId: "1", Seller: alice, Owner: marketplace, EthPrice: "1.5"},
		{TokenId: "2", Seller: alice, Owner: marketplace, UsdcPrice: "2.25"},
	}
	stats := s.engine.ComputePortfolioStats(ls, alice)
	s.Equal("3.7500", stats.PortfolioValue)
	s.Equal(2, stats.Listed)
}

func (s *engineTestSuite) TestComputePortfolioStats() {
	stats := s.engine.ComputePortfolioStats(s.listings, alice)
	s.Equal(listing.PortfolioStats{
		Owned:          1,
		Listed:         1,
		Sold:           1,
		PortfolioValue: "0.9000",
	}, stats)

	stats = s.engine.ComputePortfolioStats(s.listings, bob)
	s.Equal(listing.PortfolioStats{
		Owned:          1,
		Listed:         2,
		Sold:           0,
		PortfolioValue: "11.9990",
	}, stats)
}

func (s *engineTestSuite) TestPortfolioOfOtherSellersIsEmpty() {
	ls := []listing.Listing{
		{TokenId: "1", Seller: bob, Owner: marketplace, EthPrice: "4"},
		{TokenId: "2", Seller: bob, Owner: marketplace, UsdcPrice: "6"},
	}
	empty := listing.PortfolioStats{PortfolioValue: "0.0000"}
	s.Equal(empty, s.engine.ComputePortfolioStats(ls, alice))
	s.Equal(empty, s.engine.ComputePortfolioStats(ls, "0x0000000000000000000000000000000000000001"))
	s.Empty(s.engine.DeriveView(ls, collectionState().WithCategory(listing.CategoryListed), alice))
}

func (s *engineTestSuite) TestPaginate() {
	view := s.engine.DeriveView(s.listings, marketplaceState(), "")

	p := Paginate(view, 2, 2)
	s.Equal([]domain.TokenId{"3", "2"}, tokenIds(p.Items))
	s.Equal(5, p.Total)
	s.Equal(3, p.TotalPages)

	p = Paginate(view, 3, 2)
	s.Equal([]domain.TokenId{"1"}, tokenIds(p.Items))

	p = Paginate(view, 9, 2)
	s.Empty(p.Items)
	s.NotNil(p.Items)

	// (page-1)*pageSize overflows int
	p = Paginate(view[:1], 4611686018427387905, 2)
	s.Empty(p.Items)
	s.Equal(1, p.TotalPages)

	p = Paginate(view, 0, 0)
	s.Equal(1, p.PageNum)
	s.Equal(listing.DefaultPageSize, p.PageSize)
	s.Len(p.Items, 5)

	p = Paginate(nil, 1, 10)
	s.Equal(0, p.TotalPages)
}
