package trade

import (
	"github.com/shopspring/decimal"

	"github.com/x-xyz/nftmarket/base/ctx"
	"github.com/x-xyz/nftmarket/domain"
	"github.com/x-xyz/nftmarket/domain/listing"
)

type PurchaseRequest struct {
	TokenId  domain.TokenId `json:"tokenId" validate:"required,numeric"`
	Currency string         `json:"currency" validate:"required,oneof=eth usdc usdt"`
	// Price must equal the listed price of the currency
	Price string `json:"price" validate:"required"`
}

// PriceUpdateRequest sets all three prices at once, empty means "0"
type PriceUpdateRequest struct {
	TokenId   domain.TokenId `json:"tokenId" validate:"required,numeric"`
	EthPrice  string         `json:"ethPrice"`
	UsdcPrice string         `json:"usdcPrice"`
	UsdtPrice string         `json:"usdtPrice"`
}

type Prices struct {
	Eth  decimal.Decimal
	Usdc decimal.Decimal
	Usdt decimal.Decimal
}

type ReceiptStatus string

const (
	ReceiptSuccess ReceiptStatus = "success"
	ReceiptFailed  ReceiptStatus = "failed"
)

type Receipt struct {
	Hash        domain.TxHash      `json:"hash"`
	BlockNumber domain.BlockNumber `json:"blockNumber"`
	Status      ReceiptStatus      `json:"status"`
}

// TxHandle is a submitted transaction
type TxHandle interface {
	ID() string
	Hash() domain.TxHash
	// Wait blocks until the transaction is mined or ctx is done
	Wait(ctx ctx.Ctx) (*Receipt, error)
}

type ResultStatus string

const (
	ResultConfirmed ResultStatus = "confirmed"
	ResultFailed    ResultStatus = "failed"
	// ResultPending is returned when the transaction outlived the wait, the
	// token stays locked until it is mined
	ResultPending ResultStatus = "pending"
)

type Result struct {
	ID      string         `json:"id"`
	TokenId domain.TokenId `json:"tokenId"`
	TxHash  domain.TxHash  `json:"txHash,omitempty"`
	Status  ResultStatus   `json:"status"`
	Kind    ErrorKind      `json:"kind,omitempty"`
	Message string         `json:"message"`
}

// Marketplace is the write path of the marketplace contract
type Marketplace interface {
	SubmitPurchase(ctx ctx.Ctx, tokenId domain.TokenId, currency listing.Currency, price decimal.Decimal) (TxHandle, error)
	SubmitPriceUpdate(ctx ctx.Ctx, tokenId domain.TokenId, prices Prices) (TxHandle, error)
}

// Lock serialises transactions per token
type Lock interface {
	// Acquire returns domain.ErrTxInFlight if the token is already locked
	Acquire(ctx ctx.Ctx, tokenId domain.TokenId) (release func(), err error)
}

type UseCase interface {
	Purchase(ctx ctx.Ctx, req PurchaseRequest) (*Result, error)
	UpdatePrice(ctx ctx.Ctx, req PriceUpdateRequest) (*Result, error)
	// Pending lists tokens with a transaction in flight on this instance
	Pending() []domain.TokenId
}
