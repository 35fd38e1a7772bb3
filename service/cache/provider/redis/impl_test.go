package redis

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/nftmarket/base/ctx"
	"github.com/x-xyz/nftmarket/service/cache/provider"
	"github.com/x-xyz/nftmarket/service/redis"
	mockRedis "github.com/x-xyz/nftmarket/service/redis/mocks"
)

var (
	mockCtx = ctx.Background()
)

type testsuite struct {
	suite.Suite
	im    *impl
	redis *mockRedis.Service
}

func (ts *testsuite) SetupTest() {
	ts.redis = &mockRedis.Service{}
	ts.im = NewRedis(ts.redis).(*impl)
}

func (ts *testsuite) TearDownTest() {
	ts.redis.AssertExpectations(ts.T())
}

func Test(t *testing.T) {
	suite.Run(t, new(testsuite))
}

func (ts *testsuite) TestSet() {
	k := "key"
	v := []byte("value")

	ts.redis.On("Set", mockCtx, k, v, time.Second).Return(nil).Once()
	ts.NoError(ts.im.Set(mockCtx, k, v, time.Second))
}

func (ts *testsuite) TestGet() {
	k := "key"
	v := []byte("value")
	errUnknown := errors.New("conn closed")

	cases := []struct {
		desc    string
		mockFn  func()
		wantVal []byte
		wantTTL time.Duration
		wantErr error
	}{
		{
			desc: "not found",
			mockFn: func() {
				ts.redis.On("Get", mockCtx, k).Return(nil, redis.ErrNotFound).Once()
			},
			wantErr: provider.ErrNotFound,
		},
		{
			desc: "hit with ttl",
			mockFn: func() {
				ts.redis.On("Get", mockCtx, k).Return(v, nil).Once()
				ts.redis.On("TTL", mockCtx, k).Return(30, nil).Once()
			},
			wantVal: v,
			wantTTL: 30 * time.Second,
		},
		{
			desc: "hit without ttl",
			mockFn: func() {
				ts.redis.On("Get", mockCtx, k).Return(v, nil).Once()
				ts.redis.On("TTL", mockCtx, k).Return(-1, redis.ErrNoTTL).Once()
			},
			wantVal: v,
		},
		{
			desc: "expired before ttl",
			mockFn: func() {
				ts.redis.On("Get", mockCtx, k).Return(v, nil).Once()
				ts.redis.On("TTL", mockCtx, k).Return(-2, redis.ErrNotFound).Once()
			},
			wantErr: provider.ErrNotFound,
		},
		{
			desc: "get failed",
			mockFn: func() {
				ts.redis.On("Get", mockCtx, k).Return(nil, errUnknown).Once()
			},
			wantErr: errUnknown,
		},
	}

	for _, c := range cases {
		c.mockFn()
		res, ttl, err := ts.im.Get(mockCtx, k)
		ts.Equal(c.wantVal, res, c.desc)
		ts.Equal(c.wantTTL, ttl, c.desc)
		ts.Equal(c.wantErr, err, c.desc)
	}
}

func (ts *testsuite) TestDel() {
	ts.redis.On("Del", mockCtx, "key").Return(1, nil).Once()
	ts.NoError(ts.im.Del(mockCtx, "key"))
}
