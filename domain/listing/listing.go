package listing

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/x-xyz/nftmarket/domain"
)

type Currency string

const (
	CurrencyEth  Currency = "eth"
	CurrencyUsdc Currency = "usdc"
	CurrencyUsdt Currency = "usdt"
)

// Currencies lists every supported payment currency in display order
var Currencies = []Currency{CurrencyEth, CurrencyUsdc, CurrencyUsdt}

var currencyDecimals = map[Currency]int32{
	CurrencyEth:  18,
	CurrencyUsdc: 6,
	CurrencyUsdt: 6,
}

func (c Currency) IsValid() bool {
	_, ok := currencyDecimals[c]
	return ok
}

// Decimals returns the token decimals used on chain
func (c Currency) Decimals() int32 {
	return currencyDecimals[c]
}

func ParseCurrency(s string) (Currency, error) {
	c := Currency(strings.ToLower(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", domain.ErrInvalidCurrency
	}
	return c, nil
}

// Listing is one marketplace record as read from the marketplace contract.
// Prices are decimal strings, "0" or "" means not for sale in that currency.
type Listing struct {
	TokenId   domain.TokenId `json:"tokenId" bson:"tokenId"`
	Seller    domain.Address `json:"seller" bson:"seller"`
	Owner     domain.Address `json:"owner" bson:"owner"`
	EthPrice  string         `json:"ethPrice" bson:"ethPrice"`
	UsdcPrice string         `json:"usdcPrice" bson:"usdcPrice"`
	UsdtPrice string         `json:"usdtPrice" bson:"usdtPrice"`
	Sold      bool           `json:"sold" bson:"sold"`
	ListedAt  time.Time      `json:"listedAt" bson:"listedAt"`

	// Status is derived from Owner and Sold once per snapshot, see Classify
	Status Status `json:"status" bson:"status"`
}

// ParsePrice never fails, malformed or empty strings are worth zero.
func ParsePrice(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Price returns the listing price in the given currency
func (l *Listing) Price(c Currency) decimal.Decimal {
	switch c {
	case CurrencyEth:
		return ParsePrice(l.EthPrice)
	case CurrencyUsdc:
		return ParsePrice(l.UsdcPrice)
	case CurrencyUsdt:
		return ParsePrice(l.UsdtPrice)
	}
	return decimal.Zero
}

// ForSaleIn reports whether the listing has a positive price in c
func (l *Listing) ForSaleIn(c Currency) bool {
	return l.Price(c).IsPositive()
}

// Highest is the maximum of the three prices, not their sum. The value is
// compared against ETH denominated buckets whichever currency produced it.
func (l *Listing) Highest() decimal.Decimal {
	highest := decimal.Zero
	for _, c := range Currencies {
		if p := l.Price(c); p.GreaterThan(highest) {
			highest = p
		}
	}
	return highest
}

// Status is the lifecycle state of a listing, independent of who looks at it.
type Status string

const (
	StatusUnknown Status = ""
	// StatusHeld means the token sits in a wallet
	StatusHeld Status = "held"
	// StatusListed means the token is escrowed by the marketplace and purchasable
	StatusListed Status = "listed"
	// StatusSold means a sale completed
	StatusSold Status = "sold"
)

// Classify derives the status from the raw owner and sold fields. A listed
// item is owned by the marketplace contract and not sold yet.
func Classify(l *Listing, marketplace domain.Address) Status {
	switch {
	case l.Sold:
		return StatusSold
	case l.Owner.Equals(marketplace):
		return StatusListed
	default:
		return StatusHeld
	}
}

// ClassifyAll fills Status of every listing in place
func ClassifyAll(ls []Listing, marketplace domain.Address) {
	for i := range ls {
		ls[i].Status = Classify(&ls[i], marketplace)
	}
}

// StatusFor returns the carried status, or classifies on the fly when the
// listing did not go through ClassifyAll.
func (l *Listing) StatusFor(marketplace domain.Address) Status {
	if l.Status != StatusUnknown {
		return l.Status
	}
	return Classify(l, marketplace)
}

// Role is the relation between a viewer and a listing. The flags are not
// mutually exclusive.
type Role uint8

const RoleNone Role = 0

const (
	RoleOwned Role = 1 << iota
	RoleListed
	RoleSold
)

func HasRole(roles, flag Role) bool {
	return roles&flag != 0
}

// InCollection reports whether the listing is in the viewer's collection,
// either held by the viewer or put up for sale by them
func InCollection(l *Listing, viewer domain.Address) bool {
	if viewer.IsEmpty() {
		return false
	}
	return l.Owner.Equals(viewer) || l.Seller.Equals(viewer)
}

// Roles computes the viewer relative roles of a listing:
//   owned:  owner == viewer
//   listed: owner == marketplace && !sold, within the viewer's collection
//   sold:   sold && seller == viewer
func Roles(l *Listing, viewer, marketplace domain.Address) Role {
	roles := RoleNone
	if !InCollection(l, viewer) {
		return roles
	}
	if l.Owner.Equals(viewer) {
		roles |= RoleOwned
	}
	if l.StatusFor(marketplace) == StatusListed {
		roles |= RoleListed
	}
	if l.Sold && l.Seller.Equals(viewer) {
		roles |= RoleSold
	}
	return roles
}

// Snapshot is an immutable copy of the whole listing collection
type Snapshot struct {
	Seq       uint64    `json:"seq" bson:"seq"`
	FetchedAt time.Time `json:"fetchedAt" bson:"fetchedAt"`
	Listings  []Listing `json:"-" bson:"-"`
	// Stale is set when the snapshot was restored from storage after a failed fetch
	Stale bool `json:"stale" bson:"-"`
}

// Find returns the listing with the given token id
func (s *Snapshot) Find(tokenId domain.TokenId) (*Listing, bool) {
	for i := range s.Listings {
		if s.Listings[i].TokenId == tokenId {
			return &s.Listings[i], true
		}
	}
	return nil, false
}
