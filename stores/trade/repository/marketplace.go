package repository

import (
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/x-xyz/nftmarket/base/ctx"
	"github.com/x-xyz/nftmarket/base/log"
	"github.com/x-xyz/nftmarket/domain"
	"github.com/x-xyz/nftmarket/domain/listing"
	"github.com/x-xyz/nftmarket/domain/trade"
)

// MarketWriter is the write side of the marketplace contract
type MarketWriter interface {
	Buy(ctx ctx.Ctx, tokenId domain.TokenId, currency listing.Currency, price decimal.Decimal) (*types.Transaction, error)
	UpdateListingPrices(ctx ctx.Ctx, tokenId domain.TokenId, prices trade.Prices) (*types.Transaction, error)
	WaitMined(ctx ctx.Ctx, tx *types.Transaction) (*trade.Receipt, error)
}

type marketplace struct {
	market MarketWriter
}

func NewMarketplace(market MarketWriter) trade.Marketplace {
	return &marketplace{market}
}

func (im *marketplace) SubmitPurchase(c ctx.Ctx, tokenId domain.TokenId, currency listing.Currency, price decimal.Decimal) (trade.TxHandle, error) {
	tx, err := im.market.Buy(c, tokenId, currency, price)
	if err != nil {
		c.WithFields(log.Fields{
			"err":      err,
			"tokenId":  tokenId,
			"currency": currency,
			"price":    price.String(),
		}).Error("market.Buy failed")
		return nil, err
	}
	return im.handle(tx), nil
}

func (im *marketplace) SubmitPriceUpdate(c ctx.Ctx, tokenId domain.TokenId, prices trade.Prices) (trade.TxHandle, error) {
	tx, err := im.market.UpdateListingPrices(c, tokenId, prices)
	if err != nil {
		c.WithFields(log.Fields{
			"err":     err,
			"tokenId": tokenId,
		}).Error("market.UpdateListingPrices failed")
		return nil, err
	}
	return im.handle(tx), nil
}

func (im *marketplace) handle(tx *types.Transaction) *txHandle {
	return &txHandle{
		id:     uuid.NewString(),
		tx:     tx,
		market: im.market,
	}
}

type txHandle struct {
	id     string
	tx     *types.Transaction
	market MarketWriter
}

func (h *txHandle) ID() string {
	return h.id
}

func (h *txHandle) Hash() domain.TxHash {
	return domain.TxHash(h.tx.Hash().Hex())
}

func (h *txHandle) Wait(c ctx.Ctx) (*trade.Receipt, error) {
	return h.market.WaitMined(c, h.tx)
}
