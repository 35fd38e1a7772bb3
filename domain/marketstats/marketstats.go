package marketstats

import (
	"github.com/x-xyz/nftmarket/base/ctx"
)

// AggregateStats is the marketplace wide summary reported by the contract
type AggregateStats struct {
	TotalTokens int64 `json:"totalTokens"`
	TotalSold   int64 `json:"totalSold"`
	TotalListed int64 `json:"totalListed"`
}

type Source interface {
	FetchAggregateStats(ctx ctx.Ctx) (*AggregateStats, error)
}

type UseCase interface {
	Get(ctx ctx.Ctx) (*AggregateStats, error)
	// Invalidate drops the cached stats, called after confirmed transactions
	Invalidate(ctx ctx.Ctx) error
}
