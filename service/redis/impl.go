package redis

import (
	"time"

	"github.com/gomodule/redigo/redis"

	"github.com/x-xyz/nftmarket/base/ctx"
	"github.com/x-xyz/nftmarket/base/metrics"
	"github.com/x-xyz/nftmarket/domain/keys"
)

const (
	// retTTLNoKey is the return value of TTL when the key does not exist
	retTTLNoKey = -2
	// retTTLNoExpire is the return value of TTL when the key has no expire
	retTTLNoExpire = -1

	delBatchSize = 100
)

var delIfEqualScript = redis.NewScript(1, `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type redImpl struct {
	name string
	met  metrics.Service
	pool *redis.Pool
}

func New(name string, metrics metrics.Service, pool *redis.Pool) Service {
	return &redImpl{
		name: name,
		met:  metrics,
		pool: pool,
	}
}

func (r *redImpl) tags(fn, key string) []string {
	return []string{"func", fn, "cluster", r.name, "prefix", keys.GetPrefix(key)}
}

func (r *redImpl) getConn() (redis.Conn, error) {
	defer r.met.BumpTime("getconn.time", "cluster", r.name).End()
	conn := r.pool.Get()
	if err := conn.Err(); err != nil {
		r.met.BumpSum("getConn.err", 1, "cluster", r.name)
		return nil, err
	}
	return conn, nil
}

func (r *redImpl) connDo(commandName string, args ...interface{}) (interface{}, error) {
	conn, err := r.getConn()
	if err != nil {
		return nil, err
	}
	reply, err := conn.Do(commandName, args...)
	// release the connection as early as possible
	if err := conn.Close(); err != nil {
		r.met.BumpSum("conn.Close.err", 1, "cluster", r.name)
	}
	return reply, err
}

func (r *redImpl) Get(ctx ctx.Ctx, key string) ([]byte, error) {
	tags := r.tags("get", key)
	defer r.met.BumpTime("time", tags...).End()

	val, err := redis.Bytes(r.connDo("GET", key))
	if err == redis.ErrNil {
		return nil, ErrNotFound
	} else if err != nil {
		ctx.WithField("err", err).Error("GET redis failed")
		return nil, err
	}
	r.met.BumpHistogram("bytes", float64(len(val)), tags...)
	return val, nil
}

func (r *redImpl) Set(ctx ctx.Ctx, key string, val []byte, expire time.Duration) error {
	tags := r.tags("set", key)
	defer r.met.BumpTime("time", tags...).End()
	r.met.BumpHistogram("bytes", float64(len(val)), tags...)

	args := redis.Args{}.Add(key, val)
	if expire != Forever {
		args = args.Add("PX", expire.Milliseconds())
	}
	if _, err := r.connDo("SET", args...); err != nil {
		ctx.WithField("err", err).Error("SET redis failed")
		return err
	}
	return nil
}

func (r *redImpl) SetNX(ctx ctx.Ctx, key string, val []byte, expire time.Duration) (bool, error) {
	defer r.met.BumpTime("time", r.tags("setnx", key)...).End()

	args := redis.Args{}.Add(key, val, "NX")
	if expire != Forever {
		args = args.Add("PX", expire.Milliseconds())
	}
	_, err := redis.String(r.connDo("SET", args...))
	if err == redis.ErrNil {
		return false, nil
	} else if err != nil {
		ctx.WithField("err", err).Error("SET NX redis failed")
		return false, err
	}
	return true, nil
}

func (r *redImpl) Del(ctx ctx.Ctx, ks ...string) (int, error) {
	if len(ks) == 0 {
		return 0, ErrEmptyKeys
	}
	tags := r.tags("del", ks[0])
	defer r.met.BumpTime("time", tags...).End()

	affected := 0
	for start := 0; start < len(ks); start += delBatchSize {
		end := start + delBatchSize
		if end > len(ks) {
			end = len(ks)
		}
		n, err := redis.Int(r.connDo("DEL", redis.Args{}.AddFlat(ks[start:end])...))
		if err != nil {
			ctx.WithField("err", err).Error("DEL redis failed")
			return 0, err
		}
		affected += n
	}
	return affected, nil
}

func (r *redImpl) DelIfEqual(ctx ctx.Ctx, key string, val []byte) (bool, error) {
	defer r.met.BumpTime("time", r.tags("delifequal", key)...).End()

	conn, err := r.getConn()
	if err != nil {
		return false, err
	}
	defer conn.Close()

	n, err := redis.Int(delIfEqualScript.Do(conn, key, val))
	if err != nil {
		ctx.WithField("err", err).Error("DelIfEqual script failed")
		return false, err
	}
	return n == 1, nil
}

func (r *redImpl) TTL(ctx ctx.Ctx, key string) (int, error) {
	defer r.met.BumpTime("time", r.tags("ttl", key)...).End()
	res, err := redis.Int(r.connDo("TTL", key))
	if err != nil {
		ctx.WithField("err", err).Error("TTL redis failed")
		return 0, err
	}
	switch res {
	case retTTLNoKey:
		return res, ErrNotFound
	case retTTLNoExpire:
		return res, ErrNoTTL
	}
	return res, nil
}
