package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/nftmarket/base/ctx"
	"github.com/x-xyz/nftmarket/domain"
	"github.com/x-xyz/nftmarket/domain/listing"
	listingMocks "github.com/x-xyz/nftmarket/domain/listing/mocks"
	ensMocks "github.com/x-xyz/nftmarket/service/ens/mocks"
)

const alice = domain.Address("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")

type handlerSuite struct {
	suite.Suite
	e   *echo.Echo
	uc  *listingMocks.UseCase
	ens *ensMocks.ENS
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(handlerSuite))
}

func (s *handlerSuite) SetupTest() {
	s.e = echo.New()
	s.e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("ctx", ctx.Background())
			return next(c)
		}
	})
	s.uc = &listingMocks.UseCase{}
	s.ens = &ensMocks.ENS{}
	New(s.e, s.uc, s.ens)
}

func (s *handlerSuite) TearDownTest() {
	s.uc.AssertExpectations(s.T())
	s.ens.AssertExpectations(s.T())
}

func (s *handlerSuite) do(method, target string) (int, map[string]interface{}) {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	body := map[string]interface{}{}
	s.NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func (s *handlerSuite) TestGetView() {
	state := listing.DefaultViewState(listing.PageMarketplace).WithCategory(listing.CategoryEth)
	view := &listing.View{
		Page:  listing.Page{Total: 0, PageNum: 1, PageSize: state.PageSize},
		State: state,
		Seq:   3,
	}
	s.uc.On("View", mock.Anything, state, domain.Address("")).Return(view, nil).Once()

	code, body := s.do(http.MethodGet, "/listings?category=eth")
	s.Equal(http.StatusOK, code)
	s.Equal("success", body["status"])
	data := body["data"].(map[string]interface{})
	s.Equal(float64(3), data["seq"])
}

func (s *handlerSuite) TestGetViewBadParams() {
	tests := []struct {
		desc   string
		target string
	}{
		{desc: "unknown context", target: "/listings?context=shop"},
		{desc: "category of other page", target: "/listings?category=owned"},
		{desc: "unknown sort", target: "/listings?sortBy=random"},
		{desc: "page not a number", target: "/listings?page=x"},
		{desc: "viewer not an address", target: "/listings?viewer=alice"},
	}

	for _, t := range tests {
		code, body := s.do(http.MethodGet, t.target)
		s.Equal(http.StatusBadRequest, code, t.desc)
		s.Equal("fail", body["status"], t.desc)
	}
}

func (s *handlerSuite) TestGetViewResolvesEns() {
	state := listing.DefaultViewState(listing.PageCollection)
	s.ens.On("Resolve", mock.Anything, "alice.eth").Return(alice, nil).Once()
	s.uc.On("View", mock.Anything, state, alice).Return(&listing.View{State: state}, nil).Once()

	code, _ := s.do(http.MethodGet, "/listings?context=collection&viewer=alice.eth")
	s.Equal(http.StatusOK, code)
}

func (s *handlerSuite) TestGetViewUnknownEns() {
	s.ens.On("Resolve", mock.Anything, "nobody.eth").Return(domain.Address(""), domain.ErrNotFound).Once()

	code, _ := s.do(http.MethodGet, "/listings?viewer=nobody.eth")
	s.Equal(http.StatusNotFound, code)
}

func (s *handlerSuite) TestGetCounts() {
	counts := listing.Counts{listing.CategoryAll: 4, listing.CategoryOwned: 1}
	s.uc.On("Counts", mock.Anything, alice).Return(counts, nil).Once()

	code, body := s.do(http.MethodGet, "/listings/counts?viewer="+string(alice))
	s.Equal(http.StatusOK, code)
	data := body["data"].(map[string]interface{})
	s.Equal(float64(4), data["all"])
	s.Equal(float64(1), data["owned"])
}

func (s *handlerSuite) TestGetState() {
	code, body := s.do(http.MethodGet, "/listings/state?sortBy=PRICE-LOW&search=%20ape%20&pageSize=1000")
	s.Equal(http.StatusOK, code)

	data := body["data"].(map[string]interface{})
	state := data["state"].(map[string]interface{})
	s.Equal("price-low", state["sortBy"])
	s.Equal("ape", state["search"])
	s.Equal(float64(listing.MaxPageSize), state["pageSize"])

	// the normalised query parses back into the same state
	code, again := s.do(http.MethodGet, "/listings/state?"+data["query"].(string))
	s.Equal(http.StatusOK, code)
	s.Equal(data, again["data"])
}

func (s *handlerSuite) TestRefresh() {
	fetchedAt := time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC)
	snap := &listing.Snapshot{
		Listings:  []listing.Listing{{TokenId: "1"}, {TokenId: "2"}},
		FetchedAt: fetchedAt,
		Seq:       5,
	}
	s.uc.On("Refresh", mock.Anything).Return(snap, nil).Once()

	code, body := s.do(http.MethodPost, "/listings/refresh")
	s.Equal(http.StatusOK, code)
	data := body["data"].(map[string]interface{})
	s.Equal(float64(5), data["seq"])
	s.Equal(float64(2), data["size"])
	s.Equal(false, data["stale"])
}

func (s *handlerSuite) TestRefreshUnavailable() {
	s.uc.On("Refresh", mock.Anything).Return(nil, domain.ErrDataUnavailable).Once()

	code, body := s.do(http.MethodPost, "/listings/refresh")
	s.Equal(http.StatusServiceUnavailable, code)
	s.Equal("fail", body["status"])
}

func (s *handlerSuite) TestGetPortfolio() {
	stats := &listing.PortfolioStats{Owned: 1, Listed: 2, Sold: 0, PortfolioValue: "3.7500"}
	s.uc.On("Portfolio", mock.Anything, alice).Return(stats, nil).Once()

	code, body := s.do(http.MethodGet, "/account/"+string(alice)+"/portfolio")
	s.Equal(http.StatusOK, code)
	data := body["data"].(map[string]interface{})
	s.Equal("3.7500", data["portfolioValue"])
	s.Equal(float64(2), data["listed"])
}

func (s *handlerSuite) TestGetPortfolioInvalidAddress() {
	code, _ := s.do(http.MethodGet, "/account/0x1234/portfolio")
	s.Equal(http.StatusBadRequest, code)
}
