package chain

import (
	"crypto/ecdsa"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	bCtx "github.com/x-xyz/nftmarket/base/ctx"
	baseEth "github.com/x-xyz/nftmarket/base/ethereum"
	"github.com/x-xyz/nftmarket/base/log"
	"github.com/x-xyz/nftmarket/base/metrics"
	"github.com/x-xyz/nftmarket/domain"
)

type ClientCfg struct {
	RpcUrl  string
	ChainId int64
	// PrivateKey is optional, without it the client is read only
	PrivateKey         string
	MaxConcurrentCalls int
}

// Backend is what ethclient offers for contract calls, transactions and receipts
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
}

type Client interface {
	Call(ctx bCtx.Ctx, addr common.Address, _abi abi.ABI, method string, params ...interface{}) ([]interface{}, error)
	Transact(ctx bCtx.Ctx, addr common.Address, _abi abi.ABI, value *big.Int, method string, params ...interface{}) (*types.Transaction, error)
	WaitMined(ctx bCtx.Ctx, tx *types.Transaction) (*types.Receipt, error)
	// Backend is exposed for libraries taking a bind.ContractBackend
	Backend() Backend
	// Signer returns the transacting account, false when read only
	Signer() (common.Address, bool)
}

type clientImpl struct {
	backend Backend
	chainId *big.Int
	key     *ecdsa.PrivateKey
	signer  common.Address
	met     metrics.Service
}

func NewClient(ctx bCtx.Ctx, cfg *ClientCfg) (Client, error) {
	client, err := ethclient.DialContext(ctx, cfg.RpcUrl)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"url": cfg.RpcUrl,
		}).Error("failed to dial rpc")
		return nil, err
	}

	var key *ecdsa.PrivateKey
	if cfg.PrivateKey != "" {
		k, addr, err := baseEth.ParsePrivateKey(cfg.PrivateKey)
		if err != nil {
			ctx.WithField("err", err).Error("baseEth.ParsePrivateKey failed")
			return nil, err
		}
		key = k
		ctx.WithField("signer", addr.Hex()).Info("transactions enabled")
	} else {
		ctx.Warn("no signer key configured, client is read only")
	}

	throttled := baseEth.NewThrottledClient(client, cfg.MaxConcurrentCalls)
	return NewClientWithBackend(throttled, big.NewInt(cfg.ChainId), key), nil
}

// NewClientWithBackend builds a client over any backend, key may be nil
func NewClientWithBackend(backend Backend, chainId *big.Int, key *ecdsa.PrivateKey) Client {
	c := &clientImpl{
		backend: backend,
		chainId: chainId,
		key:     key,
		met:     metrics.New("chain"),
	}
	if key != nil {
		c.signer = baseEth.AddressOf(key)
	}
	return c
}

func (c *clientImpl) Backend() Backend {
	return c.backend
}

func (c *clientImpl) Signer() (common.Address, bool) {
	return c.signer, c.key != nil
}

func (c *clientImpl) Call(ctx bCtx.Ctx, addr common.Address, _abi abi.ABI, method string, params ...interface{}) ([]interface{}, error) {
	defer c.met.BumpTime("call", "method", method).End()

	data, err := _abi.Pack(method, params...)
	if err != nil {
		ctx.WithFields(log.Fields{
			"method": method,
			"params": params,
			"err":    err,
		}).Error("abi.Pack failed")
		return nil, err
	}
	msg := ethereum.CallMsg{
		To:   &addr,
		Data: data,
	}
	res, err := c.backend.CallContract(ctx, msg, nil)
	if err != nil {
		ctx.WithFields(log.Fields{
			"method": method,
			"err":    err,
		}).Error("client.CallContract failed")
		return nil, err
	}
	unpacked, err := _abi.Unpack(method, res)
	if err != nil {
		ctx.WithFields(log.Fields{
			"method": method,
			"err":    err,
		}).Error("abi.Unpack failed")
		return nil, err
	}
	return unpacked, nil
}

func (c *clientImpl) Transact(ctx bCtx.Ctx, addr common.Address, _abi abi.ABI, value *big.Int, method string, params ...interface{}) (*types.Transaction, error) {
	if c.key == nil {
		return nil, domain.ErrSignerUnavailable
	}
	defer c.met.BumpTime("transact", "method", method).End()

	opts, err := bind.NewKeyedTransactorWithChainID(c.key, c.chainId)
	if err != nil {
		ctx.WithField("err", err).Error("bind.NewKeyedTransactorWithChainID failed")
		return nil, err
	}
	opts.Context = ctx
	opts.Value = value

	contract := bind.NewBoundContract(addr, _abi, c.backend, c.backend, c.backend)
	tx, err := contract.Transact(opts, method, params...)
	if err != nil {
		ctx.WithFields(log.Fields{
			"method": method,
			"params": params,
			"err":    err,
		}).Warn("contract.Transact failed")
		return nil, err
	}
	ctx.WithFields(log.Fields{
		"method": method,
		"txHash": tx.Hash().Hex(),
		"nonce":  tx.Nonce(),
	}).Info("transaction sent")
	return tx, nil
}

func (c *clientImpl) WaitMined(ctx bCtx.Ctx, tx *types.Transaction) (*types.Receipt, error) {
	defer c.met.BumpTime("wait_mined").End()

	receipt, err := bind.WaitMined(ctx, c.backend, tx)
	if err != nil {
		ctx.WithFields(log.Fields{
			"txHash": tx.Hash().Hex(),
			"err":    err,
		}).Warn("bind.WaitMined failed")
		return nil, err
	}
	return receipt, nil
}
