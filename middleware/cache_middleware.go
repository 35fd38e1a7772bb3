package middleware

import (
	"bufio"
	"bytes"
	"hash/fnv"
	"io"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/nftmarket/base/ctx"
	"github.com/x-xyz/nftmarket/base/log"
	"github.com/x-xyz/nftmarket/service/cache"
	"github.com/x-xyz/nftmarket/service/cache/provider"
)

const (
	cacheMiddlewarePfx = "httpCacheMiddleware"
	// HeaderXCache reports HIT or MISS
	HeaderXCache = "X-Cache"
	// local layer never holds a response longer than this
	maxLocalTTL = 10 * time.Second
	// larger bodies skip the local layer
	maxLocalBody = 256 * 1024
)

var (
	cacheMiddlewareLocalCache  provider.Provider
	cacheMiddlewareSharedCache provider.Provider

	once = sync.Once{}
)

// SetupCache sets the in process and shared layers used by CacheHttp
func SetupCache(local, shared provider.Provider) {
	once.Do(func() {
		cacheMiddlewareLocalCache = local
		cacheMiddlewareSharedCache = shared
	})
}

// Response is the cached response data structure.
type Response struct {
	Status int
	Value  []byte
	Header http.Header
}

type bodyDumpResponseWriter struct {
	statusCode int
	io.Writer
	http.ResponseWriter
}

func (w *bodyDumpResponseWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *bodyDumpResponseWriter) Write(b []byte) (int, error) {
	return w.Writer.Write(b)
}

func (w *bodyDumpResponseWriter) Flush() {
	w.ResponseWriter.(http.Flusher).Flush()
}

func (w *bodyDumpResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return w.ResponseWriter.(http.Hijacker).Hijack()
}

// cacheKey hashes path and query, query values are sorted by Encode
func cacheKey(req *http.Request) string {
	hash := fnv.New64a()
	hash.Write([]byte(req.URL.Path))
	hash.Write([]byte{'?'})
	hash.Write([]byte(req.URL.Query().Encode()))
	return strconv.FormatUint(hash.Sum64(), 36)
}

// CacheHttp caches successful GET responses for ttl
func CacheHttp(ttl time.Duration) echo.MiddlewareFunc {
	if cacheMiddlewareLocalCache == nil || cacheMiddlewareSharedCache == nil {
		panic("need SetupCache before using CacheHttp")
	}

	localTTL := maxLocalTTL
	if ttl < localTTL {
		localTTL = ttl
	}
	local := cache.New(cache.ServiceConfig{
		Ttl:   localTTL,
		Pfx:   cacheMiddlewarePfx,
		Cache: cacheMiddlewareLocalCache,
	})
	shared := cache.New(cache.ServiceConfig{
		Ttl:   ttl,
		Pfx:   cacheMiddlewarePfx,
		Cache: cacheMiddlewareSharedCache,
	})
	both := cache.NewCompound(local, shared)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method != http.MethodGet {
				return next(c)
			}
			cont := c.Get("ctx").(ctx.Ctx)
			key := cacheKey(c.Request())

			cached := Response{}
			if err := both.Get(cont, key, &cached); err == nil {
				for k, v := range cached.Header {
					c.Response().Header()[k] = v
				}
				c.Response().Header().Set(HeaderXCache, "HIT")
				c.Response().WriteHeader(cached.Status)
				_, err := c.Response().Write(cached.Value)
				return err
			} else if err != cache.ErrNotFound {
				cont.WithField("err", err).Error("failed to cache.Get")
			}

			c.Response().Header().Set(HeaderXCache, "MISS")
			body := new(bytes.Buffer)
			writer := &bodyDumpResponseWriter{
				statusCode:     http.StatusOK,
				Writer:         io.MultiWriter(c.Response().Writer, body),
				ResponseWriter: c.Response().Writer,
			}
			c.Response().Writer = writer
			if err := next(c); err != nil {
				c.Error(err)
			}
			if writer.statusCode >= 300 {
				return nil
			}

			res := Response{
				Status: writer.statusCode,
				Value:  body.Bytes(),
				Header: c.Response().Header().Clone(),
			}
			res.Header.Del(HeaderXCache)
			target := both
			if body.Len() > maxLocalBody {
				target = shared
			}
			if err := target.Set(cont, key, &res); err != nil {
				cont.WithFields(log.Fields{
					"err":  err,
					"size": body.Len(),
				}).Error("failed to cache.Set")
			}
			return nil
		}
	}
}
