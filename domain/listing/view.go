package listing

import (
	"time"

	"github.com/x-xyz/nftmarket/base/ctx"
	"github.com/x-xyz/nftmarket/domain"
)

// Counts holds the badge count of every category
type Counts map[Category]int

type PortfolioStats struct {
	Owned  int `json:"owned"`
	Listed int `json:"listed"`
	Sold   int `json:"sold"`
	// PortfolioValue is the sum of the highest price of listed items, 4 decimals
	PortfolioValue string `json:"portfolioValue"`
}

// Page is one slice of a derived view
type Page struct {
	Items      []Listing `json:"items"`
	Total      int       `json:"total"`
	PageNum    int       `json:"page"`
	PageSize   int       `json:"pageSize"`
	TotalPages int       `json:"totalPages"`
}

type View struct {
	Page
	Counts    Counts    `json:"counts"`
	State     ViewState `json:"state"`
	ViewMode  ViewMode  `json:"viewMode"`
	Seq       uint64    `json:"seq"`
	FetchedAt time.Time `json:"fetchedAt"`
	Stale     bool      `json:"stale"`
}

// Source reads the whole listing collection from its origin
type Source interface {
	FetchListings(ctx ctx.Ctx) ([]Listing, error)
}

// SnapshotRepo keeps the last good snapshot across restarts
type SnapshotRepo interface {
	Save(ctx ctx.Ctx, snapshot *Snapshot) error
	// Load returns domain.ErrNotFound if nothing was saved yet
	Load(ctx ctx.Ctx) (*Snapshot, error)
}

type UseCase interface {
	// Refresh re-fetches the whole collection and swaps the snapshot
	Refresh(ctx ctx.Ctx) (*Snapshot, error)
	// Snapshot returns the current snapshot, loading one if none is held yet
	Snapshot(ctx ctx.Ctx) (*Snapshot, error)
	View(ctx ctx.Ctx, state ViewState, viewer domain.Address) (*View, error)
	Counts(ctx ctx.Ctx, viewer domain.Address) (Counts, error)
	Portfolio(ctx ctx.Ctx, viewer domain.Address) (*PortfolioStats, error)
}
