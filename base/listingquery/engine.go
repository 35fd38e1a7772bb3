// Package listingquery derives the visible listing sequence, badge counts and
// portfolio stats from an immutable listing snapshot. Everything here is pure,
// inputs are never mutated and no function fails.
package listingquery

import (
	"github.com/shopspring/decimal"

	"github.com/x-xyz/nftmarket/domain"
	"github.com/x-xyz/nftmarket/domain/listing"
)

const portfolioValueDecimals = 4

// Engine evaluates view states against listing snapshots of one marketplace
type Engine struct {
	marketplace domain.Address
}

// New returns an engine bound to the marketplace contract address, which
// decides whether an item is escrowed for sale.
func New(marketplace domain.Address) *Engine {
	return &Engine{marketplace: marketplace}
}

// Marketplace returns the escrow address listed items are held by
func (e *Engine) Marketplace() domain.Address {
	return e.marketplace
}

// DeriveView filters and sorts listings according to state. The result is a
// new slice and always a sub-sequence of the input in terms of membership.
func (e *Engine) DeriveView(listings []listing.Listing, state listing.ViewState, viewer domain.Address) []listing.Listing {
	m := newMatcher(state.Search)
	out := make([]listing.Listing, 0, len(listings))
	for i := range listings {
		l := &listings[i]
		if !e.keep(l, state, viewer, m) {
			continue
		}
		out = append(out, *l)
	}
	sortListings(out, state.SortBy)
	return out
}

func (e *Engine) keep(l *listing.Listing, state listing.ViewState, viewer domain.Address, m matcher) bool {
	if !state.PriceRange.Contains(l.Highest()) {
		return false
	}

	if state.Page == listing.PageCollection {
		if !listing.InCollection(l, viewer) {
			return false
		}
		if role, ok := state.Category.Role(); ok {
			if !listing.HasRole(listing.Roles(l, viewer, e.marketplace), role) {
				return false
			}
		}
		return m.empty() || m.match(l)
	}

	// on the marketplace page a search query replaces the currency filter
	if !m.empty() {
		return m.match(l)
	}
	if c, ok := state.Category.Currency(); ok {
		return l.ForSaleIn(c)
	}
	return true
}

// ComputeCounts returns the badge count of every category over the whole
// collection, role badges only count the viewer's collection. Filter and
// search state never affect it.
func (e *Engine) ComputeCounts(listings []listing.Listing, viewer domain.Address) listing.Counts {
	counts := listing.Counts{}
	for _, c := range listing.Categories {
		counts[c] = 0
	}
	counts[listing.CategoryAll] = len(listings)

	for i := range listings {
		l := &listings[i]
		for _, c := range listing.Currencies {
			if l.ForSaleIn(c) {
				counts[listing.Category(c)]++
			}
		}
		roles := listing.Roles(l, viewer, e.marketplace)
		if listing.HasRole(roles, listing.RoleOwned) {
			counts[listing.CategoryOwned]++
		}
		if listing.HasRole(roles, listing.RoleListed) {
			counts[listing.CategoryListed]++
		}
		if listing.HasRole(roles, listing.RoleSold) {
			counts[listing.CategorySold]++
		}
	}
	return counts
}

// ComputePortfolioStats counts the viewer's roles and sums the highest price
// of every item the viewer has listed.
func (e *Engine) ComputePortfolioStats(listings []listing.Listing, viewer domain.Address) listing.PortfolioStats {
	stats := listing.PortfolioStats{}
	value := decimal.Zero
	for i := range listings {
		l := &listings[i]
		roles := listing.Roles(l, viewer, e.marketplace)
		if listing.HasRole(roles, listing.RoleOwned) {
			stats.Owned++
		}
		if listing.HasRole(roles, listing.RoleListed) {
			stats.Listed++
			value = value.Add(l.Highest())
		}
		if listing.HasRole(roles, listing.RoleSold) {
			stats.Sold++
		}
	}
	stats.PortfolioValue = value.StringFixed(portfolioValueDecimals)
	return stats
}
