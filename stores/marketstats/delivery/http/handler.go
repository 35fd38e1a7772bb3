package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/nftmarket/base/ctx"
	"github.com/x-xyz/nftmarket/base/delivery"
	"github.com/x-xyz/nftmarket/domain/marketstats"
)

type handler struct {
	statsUC marketstats.UseCase
}

func New(e *echo.Echo, statsUC marketstats.UseCase) {
	h := &handler{statsUC}
	e.GET("/stats", h.get)
}

func (h *handler) get(_ctx echo.Context) error {
	ctx := _ctx.Get("ctx").(ctx.Ctx)
	stats, err := h.statsUC.Get(ctx)
	if err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(_ctx, http.StatusOK, stats)
}
