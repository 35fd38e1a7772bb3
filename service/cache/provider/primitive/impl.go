package primitive

import (
	"time"

	"github.com/coocood/freecache"

	"github.com/x-xyz/nftmarket/base/ctx"
	"github.com/x-xyz/nftmarket/service/cache/provider"
)

type impl struct {
	name  string
	cache *freecache.Cache
}

// NewPrimitive returns an in-process cache of sizeMB megabytes
func NewPrimitive(name string, sizeMB int) provider.Provider {
	return &impl{name, freecache.NewCache(sizeMB * 1024 * 1024)}
}

// NewPrimitiveWithTimer lets tests control expiration
func NewPrimitiveWithTimer(name string, sizeMB int, timer freecache.Timer) provider.Provider {
	return &impl{name, freecache.NewCacheCustomTimer(sizeMB*1024*1024, timer)}
}

func (im *impl) Get(c ctx.Ctx, key string) ([]byte, time.Duration, error) {
	val, expireAt, err := im.cache.GetWithExpiration([]byte(key))
	if err == freecache.ErrNotFound {
		return nil, 0, provider.ErrNotFound
	} else if err != nil {
		c.WithField("err", err).WithField("key", key).Error("cache.Get failed")
		return nil, 0, err
	}
	ttl := time.Duration(0)
	if expireAt > 0 {
		ttl, _ = im.ttl(key)
	}
	return val, ttl, nil
}

func (im *impl) ttl(key string) (time.Duration, error) {
	sec, err := im.cache.TTL([]byte(key))
	if err != nil {
		return 0, err
	}
	return time.Duration(sec) * time.Second, nil
}

func (im *impl) Set(c ctx.Ctx, key string, value []byte, ttl time.Duration) error {
	if err := im.cache.Set([]byte(key), value, int(ttl.Seconds())); err != nil {
		c.WithFields(map[string]interface{}{"err": err, "key": key, "cache": im.name}).Error("cache.Set failed")
		return err
	}
	return nil
}

func (im *impl) Del(c ctx.Ctx, key string) error {
	im.cache.Del([]byte(key))
	return nil
}
