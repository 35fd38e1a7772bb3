package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/nftmarket/base/ctx"
	"github.com/x-xyz/nftmarket/base/delivery"
	"github.com/x-xyz/nftmarket/domain"
	"github.com/x-xyz/nftmarket/domain/trade"
)

type handler struct {
	tradeUC trade.UseCase
}

type pendingResp struct {
	TokenIds []domain.TokenId `json:"tokenIds"`
}

func New(e *echo.Echo, tradeUC trade.UseCase) {
	h := &handler{tradeUC}

	g := e.Group("/trade")

	g.POST("/purchase", h.purchase)

	g.POST("/price", h.updatePrice)

	g.GET("/pending", h.pending)
}

// A failed or still pending transaction is a 200, the result carries its
// status and the user facing message.
func (h *handler) purchase(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	req := trade.PurchaseRequest{}
	if err := c.Bind(&req); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if err := c.Validate(req); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	res, err := h.tradeUC.Purchase(ctx, req)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

func (h *handler) updatePrice(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	req := trade.PriceUpdateRequest{}
	if err := c.Bind(&req); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if err := c.Validate(req); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	res, err := h.tradeUC.UpdatePrice(ctx, req)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

func (h *handler) pending(c echo.Context) error {
	return delivery.MakeJsonResp(c, http.StatusOK, pendingResp{h.tradeUC.Pending()})
}
