package usecase

import (
	"golang.org/x/xerrors"

	"github.com/x-xyz/nftmarket/base/ctx"
	"github.com/x-xyz/nftmarket/domain"
	"github.com/x-xyz/nftmarket/domain/marketstats"
	"github.com/x-xyz/nftmarket/service/cache"
)

const aggregateKey = "aggregate"

type impl struct {
	source marketstats.Source
	cache  cache.Service
}

// New serves the aggregate stats from cache, falling back to the source on miss
func New(source marketstats.Source, cache cache.Service) marketstats.UseCase {
	return &impl{source, cache}
}

func (im *impl) Get(c ctx.Ctx) (*marketstats.AggregateStats, error) {
	res := &marketstats.AggregateStats{}
	if err := im.cache.GetByFunc(c, aggregateKey, res, func() (interface{}, error) {
		stats, err := im.source.FetchAggregateStats(c)
		if err != nil {
			return nil, xerrors.Errorf("%v: %w", err, domain.ErrDataUnavailable)
		}
		return stats, nil
	}); err != nil {
		c.WithField("err", err).Error("cache.GetByFunc failed")
		return nil, err
	}
	return res, nil
}

func (im *impl) Invalidate(c ctx.Ctx) error {
	if err := im.cache.Del(c, aggregateKey); err != nil {
		c.WithField("err", err).Error("cache.Del failed")
		return err
	}
	return nil
}
