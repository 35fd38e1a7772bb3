package repository

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/x-xyz/nftmarket/base/ctx"
	"github.com/x-xyz/nftmarket/base/log"
	"github.com/x-xyz/nftmarket/domain"
	"github.com/x-xyz/nftmarket/domain/keys"
	"github.com/x-xyz/nftmarket/domain/trade"
	"github.com/x-xyz/nftmarket/service/redis"
)

type redisLock struct {
	redis redis.Service
	ttl   time.Duration
}

// NewRedisLock shares the per token lock between instances. The ttl bounds
// how long a crashed holder keeps a token locked.
func NewRedisLock(redis redis.Service, ttl time.Duration) trade.Lock {
	return &redisLock{redis, ttl}
}

func (im *redisLock) Acquire(c ctx.Ctx, tokenId domain.TokenId) (func(), error) {
	key := keys.RedisKey(keys.PfxTradeLock, tokenId.String())
	token := []byte(uuid.NewString())

	ok, err := im.redis.SetNX(c, key, token, im.ttl)
	if err != nil {
		c.WithFields(log.Fields{
			"err": err,
			"key": key,
		}).Error("redis.SetNX failed")
		return nil, err
	}
	if !ok {
		return nil, domain.ErrTxInFlight
	}

	return func() {
		// the holder may have outlived the ttl, never drop someone else's lock
		if _, err := im.redis.DelIfEqual(ctx.Detach(c), key, token); err != nil {
			c.WithFields(log.Fields{
				"err": err,
				"key": key,
			}).Error("redis.DelIfEqual failed")
		}
	}, nil
}

type localLock struct {
	mu     sync.Mutex
	locked map[domain.TokenId]struct{}
}

// NewLocalLock only serialises transactions within this process
func NewLocalLock() trade.Lock {
	return &localLock{locked: make(map[domain.TokenId]struct{})}
}

func (im *localLock) Acquire(_ ctx.Ctx, tokenId domain.TokenId) (func(), error) {
	im.mu.Lock()
	defer im.mu.Unlock()

	if _, ok := im.locked[tokenId]; ok {
		return nil, domain.ErrTxInFlight
	}
	im.locked[tokenId] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			im.mu.Lock()
			delete(im.locked, tokenId)
			im.mu.Unlock()
		})
	}, nil
}
