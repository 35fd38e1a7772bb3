package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/x-xyz/nftmarket/base/ctx"
	"github.com/x-xyz/nftmarket/base/delivery"
	"github.com/x-xyz/nftmarket/domain"
	"github.com/x-xyz/nftmarket/domain/marketstats"
	"github.com/x-xyz/nftmarket/domain/marketstats/mocks"
)

func TestGetStats(t *testing.T) {
	tests := []struct {
		desc       string
		stats      *marketstats.AggregateStats
		err        error
		wantStatus int
	}{
		{
			desc:       "ok",
			stats:      &marketstats.AggregateStats{TotalTokens: 3, TotalSold: 1, TotalListed: 2},
			wantStatus: http.StatusOK,
		},
		{
			desc:       "source down",
			err:        domain.ErrDataUnavailable,
			wantStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			uc := &mocks.UseCase{}
			uc.On("Get", mock.Anything).Return(tt.stats, tt.err).Once()

			e := echo.New()
			e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
				return func(c echo.Context) error {
					c.Set("ctx", ctx.Background())
					return next(c)
				}
			})
			New(e, uc)

			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))
			require.Equal(t, tt.wantStatus, rec.Code)

			if tt.stats != nil {
				res := struct {
					Data   marketstats.AggregateStats `json:"data"`
					Status delivery.JsonResponseStatus `json:"status"`
				}{}
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
				require.Equal(t, *tt.stats, res.Data)
				require.Equal(t, delivery.JsonResponseStatusSuccess, res.Status)
			}
			uc.AssertExpectations(t)
		})
	}
}
