package contract

import (
	"math/big"
	"time"

	ethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"
	"golang.org/x/xerrors"

	baseabi "github.com/x-xyz/nftmarket/base/abi"
	bCtx "github.com/x-xyz/nftmarket/base/ctx"
	"github.com/x-xyz/nftmarket/base/ethereum"
	"github.com/x-xyz/nftmarket/base/log"
	"github.com/x-xyz/nftmarket/domain"
	"github.com/x-xyz/nftmarket/domain/listing"
	"github.com/x-xyz/nftmarket/domain/marketstats"
	"github.com/x-xyz/nftmarket/domain/trade"
	"github.com/x-xyz/nftmarket/service/chain"
)

var paymentTokens = map[listing.Currency]uint8{
	listing.CurrencyEth:  baseabi.PaymentEth,
	listing.CurrencyUsdc: baseabi.PaymentUsdc,
	listing.CurrencyUsdt: baseabi.PaymentUsdt,
}

type Marketplace struct {
	chainService chain.Client
	abi          ethabi.ABI
	address      common.Address
}

func NewMarketplace(chainService chain.Client, address domain.Address) *Marketplace {
	return &Marketplace{
		chainService: chainService,
		abi:          baseabi.MarketplaceABI,
		address:      common.HexToAddress(string(address)),
	}
}

func (m *Marketplace) Address() domain.Address {
	return domain.Address(m.address.Hex())
}

// FetchMarketItems returns every item ever created on the marketplace
func (m *Marketplace) FetchMarketItems(ctx bCtx.Ctx) ([]listing.Listing, error) {
	method := "fetchMarketItems"
	unpacked, err := m.chainService.Call(ctx, m.address, m.abi, method)
	if err != nil {
		return nil, err
	}
	if len(unpacked) != 1 {
		return nil, xerrors.Errorf("%s returned %d values", method, len(unpacked))
	}
	items := *ethabi.ConvertType(unpacked[0], new([]baseabi.MarketItem)).(*[]baseabi.MarketItem)

	res := make([]listing.Listing, 0, len(items))
	for _, item := range items {
		res = append(res, ToListing(item))
	}
	return res, nil
}

func ToListing(item baseabi.MarketItem) listing.Listing {
	listedAt := time.Time{}
	if item.ListedAt != nil && item.ListedAt.Sign() > 0 {
		listedAt = time.Unix(item.ListedAt.Int64(), 0).UTC()
	}
	return listing.Listing{
		TokenId:   domain.TokenId(item.TokenId.String()),
		Seller:    domain.Address(item.Seller.Hex()),
		Owner:     domain.Address(item.Owner.Hex()),
		EthPrice:  ethereum.FromBaseUnits(item.EthPrice, listing.CurrencyEth.Decimals()).String(),
		UsdcPrice: ethereum.FromBaseUnits(item.UsdcPrice, listing.CurrencyUsdc.Decimals()).String(),
		UsdtPrice: ethereum.FromBaseUnits(item.UsdtPrice, listing.CurrencyUsdt.Decimals()).String(),
		Sold:      item.Sold,
		ListedAt:  listedAt,
	}
}

func (m *Marketplace) GetMarketStats(ctx bCtx.Ctx) (*marketstats.AggregateStats, error) {
	method := "getMarketStats"
	unpacked, err := m.chainService.Call(ctx, m.address, m.abi, method)
	if err != nil {
		return nil, err
	}
	if len(unpacked) != 3 {
		return nil, xerrors.Errorf("%s returned %d values", method, len(unpacked))
	}
	return &marketstats.AggregateStats{
		TotalTokens: unpacked[0].(*big.Int).Int64(),
		TotalSold:   unpacked[1].(*big.Int).Int64(),
		TotalListed: unpacked[2].(*big.Int).Int64(),
	}, nil
}

// Buy pays price in the given currency, eth is sent as value and tokens are
// pulled by the contract from the signer's prior allowance
func (m *Marketplace) Buy(ctx bCtx.Ctx, tokenId domain.TokenId, currency listing.Currency, price decimal.Decimal) (*types.Transaction, error) {
	id, err := tokenId.BigInt()
	if err != nil {
		return nil, err
	}
	if currency == listing.CurrencyEth {
		value, err := ethereum.ToBaseUnits(price, currency.Decimals())
		if err != nil {
			return nil, err
		}
		return m.chainService.Transact(ctx, m.address, m.abi, value, "buyWithETH", id)
	}
	payment, ok := paymentTokens[currency]
	if !ok {
		return nil, domain.ErrInvalidCurrency
	}
	return m.chainService.Transact(ctx, m.address, m.abi, nil, "buyWithToken", id, payment)
}

func (m *Marketplace) UpdateListingPrices(ctx bCtx.Ctx, tokenId domain.TokenId, prices trade.Prices) (*types.Transaction, error) {
	id, err := tokenId.BigInt()
	if err != nil {
		return nil, err
	}
	eth, err := ethereum.ToBaseUnits(prices.Eth, listing.CurrencyEth.Decimals())
	if err != nil {
		return nil, err
	}
	usdc, err := ethereum.ToBaseUnits(prices.Usdc, listing.CurrencyUsdc.Decimals())
	if err != nil {
		return nil, err
	}
	usdt, err := ethereum.ToBaseUnits(prices.Usdt, listing.CurrencyUsdt.Decimals())
	if err != nil {
		return nil, err
	}
	return m.chainService.Transact(ctx, m.address, m.abi, nil, "updateListingPrices", id, eth, usdc, usdt)
}

// WaitMined waits for tx and logs the marketplace events it emitted
func (m *Marketplace) WaitMined(ctx bCtx.Ctx, tx *types.Transaction) (*trade.Receipt, error) {
	receipt, err := m.chainService.WaitMined(ctx, tx)
	if err != nil {
		return nil, err
	}

	res := &trade.Receipt{
		Hash:   domain.TxHash(receipt.TxHash.Hex()),
		Status: trade.ReceiptFailed,
	}
	if receipt.BlockNumber != nil {
		res.BlockNumber = domain.BlockNumber(receipt.BlockNumber.Uint64())
	}
	if receipt.Status == types.ReceiptStatusSuccessful {
		res.Status = trade.ReceiptSuccess
	}

	for _, l := range receipt.Logs {
		if l.Address != m.address {
			continue
		}
		if sold, err := baseabi.ToMarketItemSoldLog(l); err == nil {
			ctx.WithFields(log.Fields{
				"tokenId":  sold.TokenId.String(),
				"buyer":    sold.Buyer.Hex(),
				"price":    sold.Price.String(),
				"currency": sold.Currency,
				"txHash":   res.Hash,
			}).Info("market item sold")
		} else if updated, err := baseabi.ToListingPriceUpdatedLog(l); err == nil {
			ctx.WithFields(log.Fields{
				"tokenId":   updated.TokenId.String(),
				"ethPrice":  updated.EthPrice.String(),
				"usdcPrice": updated.UsdcPrice.String(),
				"usdtPrice": updated.UsdtPrice.String(),
				"txHash":    res.Hash,
			}).Info("listing price updated")
		}
	}
	return res, nil
}
