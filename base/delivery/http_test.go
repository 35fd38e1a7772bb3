package delivery

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
	"golang.org/x/xerrors"

	"github.com/x-xyz/nftmarket/domain"
)

type httpTestSuite struct {
	suite.Suite
}

func TestHttpSuite(t *testing.T) {
	suite.Run(t, new(httpTestSuite))
}

func (s *httpTestSuite) do(status int, data interface{}) (*httptest.ResponseRecorder, JsonResponse) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	s.Require().NoError(MakeJsonResp(c, status, data))
	var resp JsonResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func (s *httpTestSuite) TestSuccess() {
	rec, resp := s.do(http.StatusOK, map[string]int{"a": 1})
	s.Equal(http.StatusOK, rec.Code)
	s.Equal(JsonResponseStatusSuccess, resp.Status)
}

func (s *httpTestSuite) TestErrorMapping() {
	tests := []struct {
		desc string
		err  error
		want int
	}{
		{desc: "not found", err: domain.ErrNotFound, want: http.StatusNotFound},
		{desc: "wrapped bad param", err: xerrors.Errorf("parse: %w", domain.ErrBadParamInput), want: http.StatusBadRequest},
		{desc: "tx in flight", err: domain.ErrTxInFlight, want: http.StatusConflict},
		{desc: "no data", err: domain.ErrDataUnavailable, want: http.StatusServiceUnavailable},
		{desc: "unknown keeps given status", err: xerrors.New("boom"), want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		rec, resp := s.do(http.StatusInternalServerError, tt.err)
		s.Equal(tt.want, rec.Code, tt.desc)
		s.Equal(JsonResponseStatusFail, resp.Status, tt.desc)
		s.Equal(tt.err.Error(), resp.Data, tt.desc)
	}
}
