package listing

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/xerrors"

	"github.com/x-xyz/nftmarket/domain"
)

// PageContext selects which category set applies
type PageContext string

const (
	PageMarketplace PageContext = "marketplace"
	PageCollection  PageContext = "collection"
)

type Category string

const (
	CategoryAll Category = "all"
	// marketplace page
	CategoryEth  Category = "eth"
	CategoryUsdc Category = "usdc"
	CategoryUsdt Category = "usdt"
	// collection page
	CategoryOwned  Category = "owned"
	CategoryListed Category = "listed"
	CategorySold   Category = "sold"
)

// Categories lists every category in badge order
var Categories = []Category{
	CategoryAll,
	CategoryEth,
	CategoryUsdc,
	CategoryUsdt,
	CategoryOwned,
	CategoryListed,
	CategorySold,
}

var pageCategories = map[PageContext][]Category{
	PageMarketplace: {CategoryAll, CategoryEth, CategoryUsdc, CategoryUsdt},
	PageCollection:  {CategoryAll, CategoryOwned, CategoryListed, CategorySold},
}

func (p PageContext) IsValid() bool {
	_, ok := pageCategories[p]
	return ok
}

// Allows reports whether c can be selected on page p
func (p PageContext) Allows(c Category) bool {
	for _, allowed := range pageCategories[p] {
		if allowed == c {
			return true
		}
	}
	return false
}

// Currency maps a marketplace category to its currency
func (c Category) Currency() (Currency, bool) {
	switch c {
	case CategoryEth:
		return CurrencyEth, true
	case CategoryUsdc:
		return CurrencyUsdc, true
	case CategoryUsdt:
		return CurrencyUsdt, true
	}
	return "", false
}

// Role maps a collection category to its role flag
func (c Category) Role() (Role, bool) {
	switch c {
	case CategoryOwned:
		return RoleOwned, true
	case CategoryListed:
		return RoleListed, true
	case CategorySold:
		return RoleSold, true
	}
	return RoleNone, false
}

// PriceRange buckets the highest price of a listing, in ETH units
type PriceRange string

const (
	PriceRangeAll  PriceRange = "all"
	PriceRangeLow  PriceRange = "low"
	PriceRangeMid  PriceRange = "mid"
	PriceRangeHigh PriceRange = "high"
)

var (
	priceOne  = decimal.NewFromInt(1)
	priceFive = decimal.NewFromInt(5)
)

func (r PriceRange) IsValid() bool {
	switch r {
	case PriceRangeAll, PriceRangeLow, PriceRangeMid, PriceRangeHigh:
		return true
	}
	return false
}

// Contains checks the bucket: low < 1 <= mid < 5 <= high
func (r PriceRange) Contains(highest decimal.Decimal) bool {
	switch r {
	case PriceRangeLow:
		return highest.LessThan(priceOne)
	case PriceRangeMid:
		return highest.GreaterThanOrEqual(priceOne) && highest.LessThan(priceFive)
	case PriceRangeHigh:
		return highest.GreaterThanOrEqual(priceFive)
	}
	return true
}

type SortOption string

const (
	SortNewest    SortOption = "newest"
	SortOldest    SortOption = "oldest"
	SortPriceLow  SortOption = "price-low"
	SortPriceHigh SortOption = "price-high"
)

func (o SortOption) IsValid() bool {
	switch o {
	case SortNewest, SortOldest, SortPriceLow, SortPriceHigh:
		return true
	}
	return false
}

// ViewMode only affects presentation
type ViewMode string

const (
	ViewGrid ViewMode = "grid"
	ViewList ViewMode = "list"
)

func (m ViewMode) IsValid() bool {
	return m == ViewGrid || m == ViewList
}

const (
	DefaultPageSize = 24
	MaxPageSize     = 100
)

// query keys of ViewState
const (
	QueryContext    = "context"
	QueryCategory   = "category"
	QueryPriceRange = "priceRange"
	QuerySearch     = "search"
	QuerySortBy     = "sortBy"
	QueryView       = "view"
	QueryPage       = "page"
	QueryPageSize   = "pageSize"
)

// ViewState is the full filter, sort and pagination state of one listing
// view. It is a value type, every With* method returns a modified copy.
type ViewState struct {
	Page       PageContext `json:"context"`
	Category   Category    `json:"category"`
	PriceRange PriceRange  `json:"priceRange"`
	Search     string      `json:"search"`
	SortBy     SortOption  `json:"sortBy"`
	ViewMode   ViewMode    `json:"view"`
	PageNum    int         `json:"page"`
	PageSize   int         `json:"pageSize"`
}

func DefaultViewState(page PageContext) ViewState {
	return ViewState{
		Page:       page,
		Category:   CategoryAll,
		PriceRange: PriceRangeAll,
		SortBy:     SortNewest,
		ViewMode:   ViewGrid,
		PageNum:    1,
		PageSize:   DefaultPageSize,
	}
}

// Validate checks every enum and that the category belongs to the page context.
func (s ViewState) Validate() error {
	if !s.Page.IsValid() {
		return xerrors.Errorf("unknown page context %q: %w", s.Page, domain.ErrBadParamInput)
	}
	if !s.Page.Allows(s.Category) {
		return xerrors.Errorf("category %q not allowed on %s page: %w", s.Category, s.Page, domain.ErrBadParamInput)
	}
	if !s.PriceRange.IsValid() {
		return xerrors.Errorf("unknown price range %q: %w", s.PriceRange, domain.ErrBadParamInput)
	}
	if !s.SortBy.IsValid() {
		return xerrors.Errorf("unknown sort option %q: %w", s.SortBy, domain.ErrBadParamInput)
	}
	if !s.ViewMode.IsValid() {
		return xerrors.Errorf("unknown view mode %q: %w", s.ViewMode, domain.ErrBadParamInput)
	}
	if s.PageNum < 1 || s.PageSize < 1 || s.PageSize > MaxPageSize {
		return xerrors.Errorf("invalid pagination %d/%d: %w", s.PageNum, s.PageSize, domain.ErrBadParamInput)
	}
	return nil
}

// ParseViewState builds a ViewState from url query values. Missing keys take
// their defaults, a page size above MaxPageSize is clamped.
func ParseViewState(values url.Values) (ViewState, error) {
	page := PageMarketplace
	if v := values.Get(QueryContext); v != "" {
		page = PageContext(strings.ToLower(v))
	}
	s := DefaultViewState(page)

	if v := values.Get(QueryCategory); v != "" {
		s.Category = Category(strings.ToLower(v))
	}
	if v := values.Get(QueryPriceRange); v != "" {
		s.PriceRange = PriceRange(strings.ToLower(v))
	}
	if v := values.Get(QuerySortBy); v != "" {
		s.SortBy = SortOption(strings.ToLower(v))
	}
	if v := values.Get(QueryView); v != "" {
		s.ViewMode = ViewMode(strings.ToLower(v))
	}
	s.Search = strings.TrimSpace(values.Get(QuerySearch))

	if v := values.Get(QueryPage); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return ViewState{}, xerrors.Errorf("invalid page %q: %w", v, domain.ErrBadParamInput)
		}
		s.PageNum = n
	}
	if v := values.Get(QueryPageSize); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return ViewState{}, xerrors.Errorf("invalid page size %q: %w", v, domain.ErrBadParamInput)
		}
		if n > MaxPageSize {
			n = MaxPageSize
		}
		s.PageSize = n
	}

	if err := s.Validate(); err != nil {
		return ViewState{}, err
	}
	return s, nil
}

// Encode is the inverse of ParseViewState
func (s ViewState) Encode() url.Values {
	v := url.Values{}
	v.Set(QueryContext, string(s.Page))
	v.Set(QueryCategory, string(s.Category))
	v.Set(QueryPriceRange, string(s.PriceRange))
	if s.Search != "" {
		v.Set(QuerySearch, s.Search)
	}
	v.Set(QuerySortBy, string(s.SortBy))
	v.Set(QueryView, string(s.ViewMode))
	v.Set(QueryPage, strconv.Itoa(s.PageNum))
	v.Set(QueryPageSize, strconv.Itoa(s.PageSize))
	return v
}

// filter changes jump back to the first page

func (s ViewState) WithCategory(c Category) ViewState {
	s.Category = c
	s.PageNum = 1
	return s
}

func (s ViewState) WithPriceRange(r PriceRange) ViewState {
	s.PriceRange = r
	s.PageNum = 1
	return s
}

func (s ViewState) WithSearch(q string) ViewState {
	s.Search = strings.TrimSpace(q)
	s.PageNum = 1
	return s
}

func (s ViewState) WithSort(o SortOption) ViewState {
	s.SortBy = o
	s.PageNum = 1
	return s
}

func (s ViewState) WithViewMode(m ViewMode) ViewState {
	s.ViewMode = m
	return s
}

func (s ViewState) WithPage(page int) ViewState {
	s.PageNum = page
	return s
}
