package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/x-xyz/nftmarket/base/ctx"
	"github.com/x-xyz/nftmarket/domain"
	hcdomain "github.com/x-xyz/nftmarket/domain/healthcheck"
	"github.com/x-xyz/nftmarket/domain/keys"
	"github.com/x-xyz/nftmarket/service/query"
	"github.com/x-xyz/nftmarket/service/redis"
)

const pingTimeout = 2 * time.Second

// Pinger is satisfied by *mongoclient.Client
type Pinger interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
}

type impl struct {
	mgoClient  Pinger
	query      query.Mongo
	redisCache redis.Service
}

// New creates new healthCheckRepo object representation of HealthCheckRepo interface
func New(
	mgoClient Pinger,
	query query.Mongo,
	redisCache redis.Service,
) hcdomain.HealthCheckRepo {
	return &impl{
		mgoClient:  mgoClient,
		query:      query,
		redisCache: redisCache,
	}
}

func (im *impl) PingDB(context ctx.Ctx) error {
	ctx, cancel := ctx.WithTimeout(context, pingTimeout)
	defer cancel()
	if err := im.mgoClient.Ping(ctx, readpref.Primary()); err != nil {
		context.WithField("err", err).Error("ping mongo error")
		return err
	}
	return nil
}

func (im *impl) PingCache(context ctx.Ctx) error {
	ctx, cancel := ctx.WithTimeout(context, pingTimeout)
	defer cancel()
	if err := im.redisCache.Set(ctx, keys.RedisKey(keys.PfxHealthCheck, "testset"), []byte("1"), 30*time.Second); err != nil {
		context.WithField("err", err).Error("test redis set failed")
		return err
	}
	return nil
}

// CountListings counts the listings persisted by the last saved snapshot
func (im *impl) CountListings(context ctx.Ctx) (int, error) {
	ctx, cancel := ctx.WithTimeout(context, pingTimeout)
	defer cancel()
	cnt, err := im.query.Count(ctx, domain.TableListings, bson.M{})
	if err != nil {
		context.WithField("err", err).Error("query.Count failed")
		return 0, err
	}
	return cnt, nil
}
