package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/nftmarket/base/ctx"
	"github.com/x-xyz/nftmarket/base/delivery"
	"github.com/x-xyz/nftmarket/base/validator"
	"github.com/x-xyz/nftmarket/domain"
	"github.com/x-xyz/nftmarket/domain/listing"
	"github.com/x-xyz/nftmarket/middleware"
	"github.com/x-xyz/nftmarket/service/ens"
)

const queryViewer = "viewer"

type handler struct {
	listing listing.UseCase
	ens     ens.ENS
}

type stateResp struct {
	State listing.ViewState `json:"state"`
	Query string            `json:"query"`
}

type refreshResp struct {
	Seq       uint64    `json:"seq"`
	Size      int       `json:"size"`
	FetchedAt time.Time `json:"fetchedAt"`
	Stale     bool      `json:"stale"`
}

// New registers the listing routes. readMiddlewares wrap the cacheable GET
// routes. ensService may be nil, ens names are then rejected.
func New(e *echo.Echo, uc listing.UseCase, ensService ens.ENS, readMiddlewares ...echo.MiddlewareFunc) {
	h := &handler{uc, ensService}

	g := e.Group("/listings")

	g.GET("", h.getView, readMiddlewares...)

	g.GET("/counts", h.getCounts, readMiddlewares...)

	g.GET("/state", h.getState)

	g.POST("/refresh", h.refresh)

	e.GET("/account/:address/portfolio", h.getPortfolio, append([]echo.MiddlewareFunc{middleware.IsValidAddressOrName("address")}, readMiddlewares...)...)
}

// resolveViewer accepts an empty value, an address or an ens name
func (h *handler) resolveViewer(c ctx.Ctx, raw string) (domain.Address, error) {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return "", nil
	case validator.IsValidAddress(raw):
		return domain.Address(raw), nil
	case ens.IsName(raw) && h.ens != nil:
		return h.ens.Resolve(c, raw)
	}
	return "", domain.ErrInvalidAddress
}

func (h *handler) getView(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	state, err := listing.ParseViewState(c.QueryParams())
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	viewer, err := h.resolveViewer(ctx, c.QueryParam(queryViewer))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	view, err := h.listing.View(ctx, state, viewer)
	if err != nil {
		ctx.WithField("err", err).Error("listing.View failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, view)
}

func (h *handler) getCounts(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	viewer, err := h.resolveViewer(ctx, c.QueryParam(queryViewer))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	counts, err := h.listing.Counts(ctx, viewer)
	if err != nil {
		ctx.WithField("err", err).Error("listing.Counts failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, counts)
}

// getState normalises the query so clients can round trip it through the url
func (h *handler) getState(c echo.Context) error {
	state, err := listing.ParseViewState(c.QueryParams())
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, stateResp{
		State: state,
		Query: state.Encode().Encode(),
	})
}

func (h *handler) refresh(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	snap, err := h.listing.Refresh(ctx)
	if err != nil {
		ctx.WithField("err", err).Error("listing.Refresh failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, refreshResp{
		Seq:       snap.Seq,
		Size:      len(snap.Listings),
		FetchedAt: snap.FetchedAt,
		Stale:     snap.Stale,
	})
}

func (h *handler) getPortfolio(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	viewer, err := h.resolveViewer(ctx, c.Param("address"))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	stats, err := h.listing.Portfolio(ctx, viewer)
	if err != nil {
		ctx.WithField("err", err).Error("listing.Portfolio failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, stats)
}
