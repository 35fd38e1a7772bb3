package delivery

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/nftmarket/domain"
	"github.com/x-xyz/nftmarket/service/query"
)

type JsonResponseStatus string

const (
	JsonResponseStatusSuccess JsonResponseStatus = "success"
	JsonResponseStatusFail    JsonResponseStatus = "fail"
)

type JsonResponse struct {
	Data   interface{}        `json:"data"`
	Status JsonResponseStatus `json:"status"`
}

var errStatus = []struct {
	errs   []error
	status int
}{
	{errs: []error{domain.ErrNotFound, query.ErrNotFound}, status: http.StatusNotFound},
	{
		errs: []error{
			domain.ErrBadParamInput,
			domain.ErrInvalidAddress,
			domain.ErrInvalidCurrency,
			domain.ErrInvalidPrice,
			domain.ErrInvalidNumberFormat,
			domain.ErrNotForSale,
			domain.ErrPriceMismatch,
		},
		status: http.StatusBadRequest,
	},
	{errs: []error{domain.ErrTxInFlight, domain.ErrConflict}, status: http.StatusConflict},
	{errs: []error{domain.ErrDataUnavailable, domain.ErrSignerUnavailable}, status: http.StatusServiceUnavailable},
}

// StatusOf maps known domain errors to a http status, fallback is used otherwise
func StatusOf(err error, fallback int) int {
	for _, e := range errStatus {
		for _, target := range e.errs {
			if errors.Is(err, target) {
				return e.status
			}
		}
	}
	return fallback
}

func MakeJsonResp(c echo.Context, status int, data interface{}) error {
	if err, ok := data.(error); ok {
		status = StatusOf(err, status)
		data = err.Error()
	}

	if status >= 400 {
		return c.JSON(status, JsonResponse{data, JsonResponseStatusFail})
	}

	if status >= 200 && status < 300 {
		return c.JSON(status, JsonResponse{data, JsonResponseStatusSuccess})
	}

	return c.JSON(status, data)
}
