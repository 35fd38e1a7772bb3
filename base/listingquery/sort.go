package listingquery

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/x-xyz/nftmarket/domain/listing"
)

// sortListings orders ls in place. The sort is stable so equal keys keep
// their snapshot order.
func sortListings(ls []listing.Listing, by listing.SortOption) {
	switch by {
	case listing.SortOldest:
		sort.SliceStable(ls, func(i, j int) bool {
			return ls[i].ListedAt.Before(ls[j].ListedAt)
		})
	case listing.SortPriceLow, listing.SortPriceHigh:
		sortByHighest(ls, by == listing.SortPriceHigh)
	default:
		sort.SliceStable(ls, func(i, j int) bool {
			return ls[i].ListedAt.After(ls[j].ListedAt)
		})
	}
}

type pricedListing struct {
	listing listing.Listing
	highest decimal.Decimal
}

func sortByHighest(ls []listing.Listing, desc bool) {
	priced := make([]pricedListing, len(ls))
	for i := range ls {
		priced[i] = pricedListing{listing: ls[i], highest: ls[i].Highest()}
	}
	sort.SliceStable(priced, func(i, j int) bool {
		if desc {
			return priced[i].highest.GreaterThan(priced[j].highest)
		}
		return priced[i].highest.LessThan(priced[j].highest)
	})
	for i := range priced {
		ls[i] = priced[i].listing
	}
}
