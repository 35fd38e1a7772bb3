package listingquery

import (
	"strings"

	"github.com/x-xyz/nftmarket/domain/listing"
)

// matcher holds a search query in both forms. Token ids are matched against
// the raw query, addresses against the lower-cased one.
type matcher struct {
	raw   string
	lower string
}

func newMatcher(query string) matcher {
	return matcher{raw: query, lower: strings.ToLower(query)}
}

func (m matcher) empty() bool {
	return m.raw == ""
}

func (m matcher) match(l *listing.Listing) bool {
	return strings.Contains(l.TokenId.String(), m.raw) ||
		strings.Contains(l.Seller.ToLowerStr(), m.lower) ||
		strings.Contains(l.Owner.ToLowerStr(), m.lower)
}
