package ethereum

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/x-xyz/nftmarket/base/log"
)

// slowAcquire is the wait above which acquiring a token gets logged
const slowAcquire = time.Second

// ThrottledClient limits the number of concurrent rpc calls of the methods
// used by contract reads and writes
type ThrottledClient struct {
	*ethclient.Client
	tokens chan struct{}
}

func NewThrottledClient(client *ethclient.Client, n int) *ThrottledClient {
	if n < 1 {
		n = 1
	}
	return &ThrottledClient{
		Client: client,
		tokens: make(chan struct{}, n),
	}
}

func (c *ThrottledClient) CallContract(ctx context.Context, msg ethereum.CallMsg, number *big.Int) ([]byte, error) {
	if err := c.acquire(ctx, "CallContract"); err != nil {
		return nil, err
	}
	defer c.release()
	return c.Client.CallContract(ctx, msg, number)
}

func (c *ThrottledClient) CodeAt(ctx context.Context, address common.Address, number *big.Int) ([]byte, error) {
	if err := c.acquire(ctx, "CodeAt"); err != nil {
		return nil, err
	}
	defer c.release()
	return c.Client.CodeAt(ctx, address, number)
}

func (c *ThrottledClient) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	if err := c.acquire(ctx, "PendingNonceAt"); err != nil {
		return 0, err
	}
	defer c.release()
	return c.Client.PendingNonceAt(ctx, account)
}

func (c *ThrottledClient) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	if err := c.acquire(ctx, "EstimateGas"); err != nil {
		return 0, err
	}
	defer c.release()
	return c.Client.EstimateGas(ctx, msg)
}

func (c *ThrottledClient) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	if err := c.acquire(ctx, "SendTransaction"); err != nil {
		return err
	}
	defer c.release()
	return c.Client.SendTransaction(ctx, tx)
}

func (c *ThrottledClient) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	if err := c.acquire(ctx, "TransactionReceipt"); err != nil {
		return nil, err
	}
	defer c.release()
	return c.Client.TransactionReceipt(ctx, hash)
}

func (c *ThrottledClient) acquire(ctx context.Context, method string) error {
	start := time.Now()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case c.tokens <- struct{}{}:
	}
	if waited := time.Since(start); waited > slowAcquire {
		log.Log().WithFields(log.Fields{
			"method": method,
			"waited": waited.String(),
			"inUse":  len(c.tokens),
		}).Warn("rpc throttled")
	}
	return nil
}

func (c *ThrottledClient) release() {
	<-c.tokens
}
