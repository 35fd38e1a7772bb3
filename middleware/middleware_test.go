package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/nftmarket/base/ctx"
	"github.com/x-xyz/nftmarket/service/cache/provider/primitive"
)

type middlewareSuite struct {
	suite.Suite
	e *echo.Echo
}

func (s *middlewareSuite) SetupSuite() {
	SetupCache(primitive.NewPrimitive("local", 1), primitive.NewPrimitive("shared", 1))
}

func (s *middlewareSuite) SetupTest() {
	s.e = echo.New()
}

func TestMiddlewareSuite(t *testing.T) {
	suite.Run(t, new(middlewareSuite))
}

func (s *middlewareSuite) serve(mw echo.MiddlewareFunc, h echo.HandlerFunc, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := s.e.NewContext(req, rec)
	c.Set("ctx", ctx.Background())
	s.NoError(mw(h)(c))
	return rec
}

func (s *middlewareSuite) TestAddContext() {
	m := InitMiddleware()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := s.e.NewContext(req, rec)
	c.Response().Header().Set(echo.HeaderXRequestID, "req-1")

	err := m.AddContext()(func(c echo.Context) error {
		cont, ok := c.Get("ctx").(ctx.Ctx)
		s.True(ok)
		s.Equal("req-1", cont.Value("requestID"))
		return c.NoContent(http.StatusNoContent)
	})(c)
	s.NoError(err)
	s.Equal(http.StatusNoContent, rec.Code)
}

func (s *middlewareSuite) TestCacheHttp() {
	calls := 0
	h := func(c echo.Context) error {
		calls++
		return c.String(http.StatusOK, "counts")
	}
	mw := CacheHttp(30 * time.Second)

	rec := s.serve(mw, h, "/listings/counts?viewer=b&a=1")
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("counts", rec.Body.String())
	s.Equal("MISS", rec.Header().Get(HeaderXCache))

	// same query in another order
	rec = s.serve(mw, h, "/listings/counts?a=1&viewer=b")
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("counts", rec.Body.String())
	s.Equal("HIT", rec.Header().Get(HeaderXCache))
	s.Equal(1, calls)

	rec = s.serve(mw, h, "/listings/counts?viewer=c")
	s.Equal("MISS", rec.Header().Get(HeaderXCache))
	s.Equal(2, calls)
}

func (s *middlewareSuite) TestCacheHttpSkipsErrors() {
	calls := 0
	h := func(c echo.Context) error {
		calls++
		return c.String(http.StatusServiceUnavailable, "unavailable")
	}
	mw := CacheHttp(30 * time.Second)

	for i := 0; i < 2; i++ {
		rec := s.serve(mw, h, "/stats?fail=1")
		s.Equal(http.StatusServiceUnavailable, rec.Code)
	}
	s.Equal(2, calls)
}

func (s *middlewareSuite) TestIsValidAddressOrName() {
	h := func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}
	cases := []struct {
		desc string
		in   string
		want int
	}{
		{desc: "address", in: "0x70997970C51812dc3A010C7d01b50e0d17dc79C8", want: http.StatusOK},
		{desc: "ens name", in: "alice.eth", want: http.StatusOK},
		{desc: "garbage", in: "alice", want: http.StatusBadRequest},
	}
	for _, c := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		ec := s.e.NewContext(req, rec)
		ec.SetParamNames("address")
		ec.SetParamValues(c.in)
		s.NoError(IsValidAddressOrName("address")(h)(ec), c.desc)
		s.Equal(c.want, rec.Code, c.desc)
	}
}
