package repository

import (
	"github.com/x-xyz/nftmarket/base/ctx"
	"github.com/x-xyz/nftmarket/base/metrics"
	"github.com/x-xyz/nftmarket/domain/listing"
	"github.com/x-xyz/nftmarket/domain/marketstats"
)

// MarketReader is the read side of the marketplace contract
type MarketReader interface {
	FetchMarketItems(ctx ctx.Ctx) ([]listing.Listing, error)
	GetMarketStats(ctx ctx.Ctx) (*marketstats.AggregateStats, error)
}

// ChainSource serves listings and aggregate stats straight from the contract
type ChainSource interface {
	listing.Source
	marketstats.Source
}

type chainSource struct {
	market MarketReader
	met    metrics.Service
}

func NewChainSource(market MarketReader) ChainSource {
	return &chainSource{
		market: market,
		met:    metrics.New("listing_source"),
	}
}

func (im *chainSource) FetchListings(c ctx.Ctx) ([]listing.Listing, error) {
	defer im.met.BumpTime("fetch_listings").End()

	res, err := im.market.FetchMarketItems(c)
	if err != nil {
		im.met.BumpSum("fetch_failed", 1)
		c.WithField("err", err).Error("market.FetchMarketItems failed")
		return nil, err
	}
	im.met.BumpAvg("listings", float64(len(res)))
	return res, nil
}

func (im *chainSource) FetchAggregateStats(c ctx.Ctx) (*marketstats.AggregateStats, error) {
	defer im.met.BumpTime("fetch_stats").End()

	res, err := im.market.GetMarketStats(c)
	if err != nil {
		c.WithField("err", err).Error("market.GetMarketStats failed")
		return nil, err
	}
	return res, nil
}
