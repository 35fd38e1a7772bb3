package redis

import (
	"errors"
	"time"

	"github.com/x-xyz/nftmarket/base/ctx"
)

// Forever means no expiration
const Forever = time.Duration(0)

var (
	// ErrNotFound is returned when the key does not exist
	ErrNotFound = errors.New("redis key not found")
	// ErrNoTTL is returned by TTL when the key has no expiration
	ErrNoTTL = errors.New("redis key has no ttl")
	// ErrEmptyKeys is returned by Del without keys
	ErrEmptyKeys = errors.New("no keys given")
)

// Service is the subset of redis commands used by locks and caches
type Service interface {
	Get(ctx ctx.Ctx, key string) ([]byte, error)
	Set(ctx ctx.Ctx, key string, val []byte, expire time.Duration) error
	// SetNX sets key only if it does not exist and reports whether it did
	SetNX(ctx ctx.Ctx, key string, val []byte, expire time.Duration) (bool, error)
	Del(ctx ctx.Ctx, keys ...string) (int, error)
	// DelIfEqual deletes key only while it still holds val
	DelIfEqual(ctx ctx.Ctx, key string, val []byte) (bool, error)
	// TTL returns the remaining seconds
	TTL(ctx ctx.Ctx, key string) (int, error)
}
