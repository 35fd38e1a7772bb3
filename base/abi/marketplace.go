package abi

import (
	"errors"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// payment token ids accepted by buyWithToken
const (
	PaymentEth  uint8 = 0
	PaymentUsdc uint8 = 1
	PaymentUsdt uint8 = 2
)

var ErrUnexpectedLog = errors.New("unexpected log")

var MarketplaceABI abi.ABI

func init() {
	_abi, err := abi.JSON(strings.NewReader(marketplaceABIJson))
	if err != nil {
		panic("Failed to parse marketplace abi")
	}
	MarketplaceABI = _abi
}

// MarketItem mirrors the tuple returned by fetchMarketItems
type MarketItem struct {
	TokenId   *big.Int
	Seller    common.Address
	Owner     common.Address
	EthPrice  *big.Int
	UsdcPrice *big.Int
	UsdtPrice *big.Int
	Sold      bool
	ListedAt  *big.Int
}

type MarketItemSoldLog struct {
	TokenId  *big.Int       // indexed
	Seller   common.Address // indexed
	Buyer    common.Address // indexed
	Price    *big.Int
	Currency uint8
}

type ListingPriceUpdatedLog struct {
	TokenId   *big.Int // indexed
	EthPrice  *big.Int
	UsdcPrice *big.Int
	UsdtPrice *big.Int
}

func ToMarketItemSoldLog(log *types.Log) (*MarketItemSoldLog, error) {
	ev := MarketplaceABI.Events["MarketItemSold"]
	if len(log.Topics) != 4 || log.Topics[0] != ev.ID {
		return nil, ErrUnexpectedLog
	}
	var l MarketItemSoldLog
	if err := MarketplaceABI.UnpackIntoInterface(&l, "MarketItemSold", log.Data); err != nil {
		return nil, err
	}
	l.TokenId = log.Topics[1].Big()
	l.Seller = common.BytesToAddress(log.Topics[2].Bytes())
	l.Buyer = common.BytesToAddress(log.Topics[3].Bytes())
	return &l, nil
}

func ToListingPriceUpdatedLog(log *types.Log) (*ListingPriceUpdatedLog, error) {
	ev := MarketplaceABI.Events["ListingPriceUpdated"]
	if len(log.Topics) != 2 || log.Topics[0] != ev.ID {
		return nil, ErrUnexpectedLog
	}
	var l ListingPriceUpdatedLog
	if err := MarketplaceABI.UnpackIntoInterface(&l, "ListingPriceUpdated", log.Data); err != nil {
		return nil, err
	}
	l.TokenId = log.Topics[1].Big()
	return &l, nil
}

var marketplaceABIJson = `
[
	{
		"inputs": [],
		"name": "fetchMarketItems",
		"outputs": [
			{
				"components": [
					{"internalType": "uint256", "name": "tokenId", "type": "uint256"},
					{"internalType": "address payable", "name": "seller", "type": "address"},
					{"internalType": "address payable", "name": "owner", "type": "address"},
					{"internalType": "uint256", "name": "ethPrice", "type": "uint256"},
					{"internalType": "uint256", "name": "usdcPrice", "type": "uint256"},
					{"internalType": "uint256", "name": "usdtPrice", "type": "uint256"},
					{"internalType": "bool", "name": "sold", "type": "bool"},
					{"internalType": "uint256", "name": "listedAt", "type": "uint256"}
				],
				"internalType": "struct NFTMarketplace.MarketItem[]",
				"name": "",
				"type": "tuple[]"
			}
		],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [],
		"name": "getMarketStats",
		"outputs": [
			{"internalType": "uint256", "name": "totalTokens", "type": "uint256"},
			{"internalType": "uint256", "name": "totalSold", "type": "uint256"},
			{"internalType": "uint256", "name": "totalListed", "type": "uint256"}
		],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [
			{"internalType": "uint256", "name": "tokenId", "type": "uint256"}
		],
		"name": "buyWithETH",
		"outputs": [],
		"stateMutability": "payable",
		"type": "function"
	},
	{
		"inputs": [
			{"internalType": "uint256", "name": "tokenId", "type": "uint256"},
			{"internalType": "uint8", "name": "paymentToken", "type": "uint8"}
		],
		"name": "buyWithToken",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [
			{"internalType": "uint256", "name": "tokenId", "type": "uint256"},
			{"internalType": "uint256", "name": "ethPrice", "type": "uint256"},
			{"internalType": "uint256", "name": "usdcPrice", "type": "uint256"},
			{"internalType": "uint256", "name": "usdtPrice", "type": "uint256"}
		],
		"name": "updateListingPrices",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "internalType": "uint256", "name": "tokenId", "type": "uint256"},
			{"indexed": true, "internalType": "address", "name": "seller", "type": "address"},
			{"indexed": true, "internalType": "address", "name": "buyer", "type": "address"},
			{"indexed": false, "internalType": "uint256", "name": "price", "type": "uint256"},
			{"indexed": false, "internalType": "uint8", "name": "currency", "type": "uint8"}
		],
		"name": "MarketItemSold",
		"type": "event"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "internalType": "uint256", "name": "tokenId", "type": "uint256"},
			{"indexed": false, "internalType": "uint256", "name": "ethPrice", "type": "uint256"},
			{"indexed": false, "internalType": "uint256", "name": "usdcPrice", "type": "uint256"},
			{"indexed": false, "internalType": "uint256", "name": "usdtPrice", "type": "uint256"}
		],
		"name": "ListingPriceUpdated",
		"type": "event"
	}
]
`
