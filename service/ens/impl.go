package ens

import (
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	goens "github.com/wealdtech/go-ens/v3"

	"github.com/x-xyz/nftmarket/base/ctx"
	"github.com/x-xyz/nftmarket/base/log"
	"github.com/x-xyz/nftmarket/domain"
	"github.com/x-xyz/nftmarket/domain/keys"
	"github.com/x-xyz/nftmarket/service/cache"
	"github.com/x-xyz/nftmarket/service/cache/provider/primitive"
	redisCache "github.com/x-xyz/nftmarket/service/cache/provider/redis"
	"github.com/x-xyz/nftmarket/service/redis"
)

const localTtl = 30 * time.Second

type resolveFunc func(backend bind.ContractBackend, name string) (common.Address, error)

type impl struct {
	backend bind.ContractBackend
	cache   cache.Service
	resolve resolveFunc
}

// New resolves through backend, caching in process for 30s and in redis for ttl
func New(backend bind.ContractBackend, redis redis.Service, ttl time.Duration) ENS {
	return &impl{
		backend: backend,
		cache: cache.NewCompound(
			cache.New(cache.ServiceConfig{
				Ttl:   localTtl,
				Pfx:   keys.PfxEns,
				Cache: primitive.NewPrimitive("ens", 32),
			}),
			cache.New(cache.ServiceConfig{
				Ttl:   ttl,
				Pfx:   keys.PfxEns,
				Cache: redisCache.NewRedis(redis),
			}),
		),
		resolve: goens.Resolve,
	}
}

func (im *impl) Resolve(ctx ctx.Ctx, name string) (domain.Address, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	res := domain.Address("")
	key := keys.RedisKey("resolve", name)
	err := im.cache.GetByFunc(ctx, key, &res, func() (interface{}, error) {
		addr, err := im.resolve(im.backend, name)
		if isUnregistered(err) {
			val := domain.Address("")
			return &val, nil
		}
		if err != nil {
			ctx.WithFields(log.Fields{
				"err":  err,
				"name": name,
			}).Error("failed to goens.Resolve")
			return nil, err
		}
		val := domain.Address(addr.Hex())
		return &val, nil
	})

	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
		}).Error("failed to cache.GetByFunc")
		return "", err
	}
	if res.IsEmpty() {
		return "", domain.ErrNotFound
	}
	return res, nil
}

func isUnregistered(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "unregistered name") || strings.Contains(msg, "no address")
}
