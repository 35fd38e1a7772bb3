package usecase

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/xerrors"

	"github.com/x-xyz/nftmarket/base/ctx"
	"github.com/x-xyz/nftmarket/base/goroutine"
	"github.com/x-xyz/nftmarket/base/log"
	"github.com/x-xyz/nftmarket/base/metrics"
	"github.com/x-xyz/nftmarket/domain"
	"github.com/x-xyz/nftmarket/domain/listing"
	"github.com/x-xyz/nftmarket/domain/marketstats"
	"github.com/x-xyz/nftmarket/domain/notification"
	"github.com/x-xyz/nftmarket/domain/trade"
)

const (
	defaultTxTimeout      = 5 * time.Minute
	defaultPendingTimeout = 30 * time.Minute
)

const (
	actionPurchase    = "purchase"
	actionPriceUpdate = "price_update"
)

var actionTitles = map[string]string{
	actionPurchase:    "Purchase",
	actionPriceUpdate: "Price update",
}

type TradeUseCaseCfg struct {
	Marketplace     trade.Marketplace
	Lock            trade.Lock
	Listing         listing.UseCase
	Stats           marketstats.UseCase
	Notifier        notification.Sink
	MarketplaceAddr domain.Address
	TxTimeout       time.Duration
	// PendingTimeout bounds the background wait once TxTimeout passed
	PendingTimeout time.Duration
}

type impl struct {
	market          trade.Marketplace
	lock            trade.Lock
	listing         listing.UseCase
	stats           marketstats.UseCase
	notifier        notification.Sink
	marketplaceAddr domain.Address
	txTimeout       time.Duration
	pendingTimeout  time.Duration
	met             metrics.Service

	mu      sync.Mutex
	pending map[domain.TokenId]struct{}
	// wg tracks background waits and post confirmation refreshes
	wg sync.WaitGroup
}

func New(cfg *TradeUseCaseCfg) trade.UseCase {
	return newImpl(cfg)
}

func newImpl(cfg *TradeUseCaseCfg) *impl {
	txTimeout := cfg.TxTimeout
	if txTimeout <= 0 {
		txTimeout = defaultTxTimeout
	}
	pendingTimeout := cfg.PendingTimeout
	if pendingTimeout <= 0 {
		pendingTimeout = defaultPendingTimeout
	}
	return &impl{
		market:          cfg.Marketplace,
		lock:            cfg.Lock,
		listing:         cfg.Listing,
		stats:           cfg.Stats,
		notifier:        cfg.Notifier,
		marketplaceAddr: cfg.MarketplaceAddr,
		txTimeout:       txTimeout,
		pendingTimeout:  pendingTimeout,
		met:             metrics.New("trade"),
		pending:         make(map[domain.TokenId]struct{}),
	}
}

func (im *impl) Purchase(c ctx.Ctx, req trade.PurchaseRequest) (*trade.Result, error) {
	c = ctx.WithLogFields(c, log.Fields{"tokenId": req.TokenId, "currency": req.Currency})

	currency, err := listing.ParseCurrency(req.Currency)
	if err != nil {
		return nil, err
	}
	price, err := parsePrice(req.Price)
	if err != nil {
		return nil, err
	}
	if !price.IsPositive() {
		return nil, xerrors.Errorf("price must be positive: %w", domain.ErrInvalidPrice)
	}

	l, err := im.find(c, req.TokenId)
	if err != nil {
		return nil, err
	}
	if l.StatusFor(im.marketplaceAddr) != listing.StatusListed || !l.ForSaleIn(currency) {
		return nil, xerrors.Errorf("token %s in %s: %w", req.TokenId, currency, domain.ErrNotForSale)
	}
	if listed := l.Price(currency); !listed.Equal(price) {
		return nil, xerrors.Errorf("listed %s, offered %s: %w", listed, price, domain.ErrPriceMismatch)
	}

	return im.execute(c, req.TokenId, actionPurchase, func(c ctx.Ctx) (trade.TxHandle, error) {
		return im.market.SubmitPurchase(c, req.TokenId, currency, price)
	})
}

func (im *impl) UpdatePrice(c ctx.Ctx, req trade.PriceUpdateRequest) (*trade.Result, error) {
	c = ctx.WithLogFields(c, log.Fields{"tokenId": req.TokenId})

	prices := trade.Prices{}
	for _, p := range []struct {
		raw string
		dst *decimal.Decimal
	}{
		{req.EthPrice, &prices.Eth},
		{req.UsdcPrice, &prices.Usdc},
		{req.UsdtPrice, &prices.Usdt},
	} {
		d, err := parsePrice(p.raw)
		if err != nil {
			return nil, err
		}
		if d.IsNegative() {
			return nil, xerrors.Errorf("negative price %s: %w", p.raw, domain.ErrInvalidPrice)
		}
		*p.dst = d
	}

	if _, err := im.find(c, req.TokenId); err != nil {
		return nil, err
	}

	return im.execute(c, req.TokenId, actionPriceUpdate, func(c ctx.Ctx) (trade.TxHandle, error) {
		return im.market.SubmitPriceUpdate(c, req.TokenId, prices)
	})
}

func (im *impl) Pending() []domain.TokenId {
	im.mu.Lock()
	defer im.mu.Unlock()

	res := make([]domain.TokenId, 0, len(im.pending))
	for id := range im.pending {
		res = append(res, id)
	}
	sort.Slice(res, func(i, j int) bool { return res[i] < res[j] })
	return res
}

// parsePrice treats an empty string as zero
func parsePrice(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, xerrors.Errorf("price %q: %w", s, domain.ErrInvalidNumberFormat)
	}
	return d, nil
}

func (im *impl) find(c ctx.Ctx, tokenId domain.TokenId) (*listing.Listing, error) {
	snap, err := im.listing.Snapshot(c)
	if err != nil {
		c.WithField("err", err).Error("listing.Snapshot failed")
		return nil, err
	}
	l, ok := snap.Find(tokenId)
	if !ok {
		return nil, xerrors.Errorf("token %s: %w", tokenId, domain.ErrNotFound)
	}
	return l, nil
}

// execute runs one transaction under the token lock and turns its outcome
// into a Result. Only lock and signer errors are returned as errors. A
// transaction still unmined after txTimeout keeps the lock until a background
// wait sees its receipt.
func (im *impl) execute(c ctx.Ctx, tokenId domain.TokenId, action string, submit func(ctx.Ctx) (trade.TxHandle, error)) (*trade.Result, error) {
	release, err := im.lock.Acquire(c, tokenId)
	if err != nil {
		if !errors.Is(err, domain.ErrTxInFlight) {
			c.WithField("err", err).Error("lock.Acquire failed")
		}
		return nil, err
	}
	im.track(tokenId)
	done := func() {
		im.untrack(tokenId)
		release()
	}
	handedOff := false
	defer func() {
		if !handedOff {
			done()
		}
	}()

	defer im.met.BumpTime("execute", "action", action).End()

	handle, err := submit(c)
	if errors.Is(err, domain.ErrSignerUnavailable) {
		return nil, err
	} else if err != nil {
		return im.fail(c, uuid.NewString(), tokenId, "", action, err), nil
	}

	c = ctx.WithLogFields(c, log.Fields{"txHash": handle.Hash()})
	c.Info("transaction submitted")

	waitCtx, cancel := ctx.WithTimeout(c, im.txTimeout)
	defer cancel()
	receipt, err := handle.Wait(waitCtx)
	if err != nil && waitCtx.Err() == context.DeadlineExceeded {
		handedOff = true
		im.waitInBackground(c, handle, tokenId, action, done)
		return &trade.Result{
			ID:      handle.ID(),
			TokenId: tokenId,
			TxHash:  handle.Hash(),
			Status:  trade.ResultPending,
			Message: actionTitles[action] + " submitted, waiting for confirmation.",
		}, nil
	}
	return im.finish(c, handle, tokenId, action, receipt, err), nil
}

// waitInBackground keeps the token locked until the receipt arrives or
// pendingTimeout passes, then reports the outcome like execute would.
func (im *impl) waitInBackground(c ctx.Ctx, handle trade.TxHandle, tokenId domain.TokenId, action string, done func()) {
	c.WithField("timeout", im.pendingTimeout).Warn("transaction still pending, waiting in background")
	im.met.BumpSum("pending", 1, "action", action)

	bg, cancel := ctx.WithTimeout(ctx.Detach(c), im.pendingTimeout)
	im.wg.Add(1)
	goroutine.RecoverableGo(func() {
		receipt, err := handle.Wait(bg)
		im.finish(bg, handle, tokenId, action, receipt, err)
	}, goroutine.WithName("trade.wait"), goroutine.WithAfterEnded(func() {
		cancel()
		done()
		im.wg.Done()
	}))
}

func (im *impl) finish(c ctx.Ctx, handle trade.TxHandle, tokenId domain.TokenId, action string, receipt *trade.Receipt, err error) *trade.Result {
	if err != nil {
		return im.fail(c, handle.ID(), tokenId, handle.Hash(), action, err)
	}
	if receipt.Status != trade.ReceiptSuccess {
		return im.fail(c, handle.ID(), tokenId, handle.Hash(), action, errors.New("execution reverted"))
	}

	title := actionTitles[action]
	res := &trade.Result{
		ID:      handle.ID(),
		TokenId: tokenId,
		TxHash:  handle.Hash(),
		Status:  trade.ResultConfirmed,
		Message: title + " confirmed.",
	}
	im.met.BumpSum("confirmed", 1, "action", action)
	im.notify(c, notification.LevelSuccess, res, title+" confirmed")
	im.afterConfirmed(c)
	return res
}

func (im *impl) fail(c ctx.Ctx, id string, tokenId domain.TokenId, hash domain.TxHash, action string, err error) *trade.Result {
	kind := trade.Classify(err)
	c.WithFields(log.Fields{
		"err":  err,
		"kind": kind,
	}).Warn("transaction failed")
	im.met.BumpSum("failed", 1, "action", action, "reason", string(kind))

	res := &trade.Result{
		ID:      id,
		TokenId: tokenId,
		TxHash:  hash,
		Status:  trade.ResultFailed,
		Kind:    kind,
		Message: trade.Message(kind),
	}
	im.notify(c, notification.LevelError, res, actionTitles[action]+" failed")
	return res
}

// notify never fails the transaction
func (im *impl) notify(c ctx.Ctx, level notification.Level, res *trade.Result, title string) {
	n := notification.New(level, title, res.Message)
	n.TokenId = res.TokenId
	n.TxHash = res.TxHash
	if err := im.notifier.Notify(c, n); err != nil {
		c.WithField("err", err).Warn("notifier.Notify failed")
	}
}

// afterConfirmed drops the cached stats and reloads the whole collection
// in the background, the caller already has its result.
func (im *impl) afterConfirmed(c ctx.Ctx) {
	detached := ctx.Detach(c)
	if err := im.stats.Invalidate(detached); err != nil {
		c.WithField("err", err).Warn("stats.Invalidate failed")
	}

	im.wg.Add(1)
	goroutine.RecoverableGo(func() {
		if _, err := im.listing.Refresh(detached); err != nil {
			detached.WithField("err", err).Warn("listing.Refresh failed")
		}
	}, goroutine.WithName("trade.refresh"), goroutine.WithAfterEnded(im.wg.Done))
}

func (im *impl) track(tokenId domain.TokenId) {
	im.mu.Lock()
	im.pending[tokenId] = struct{}{}
	im.mu.Unlock()
}

func (im *impl) untrack(tokenId domain.TokenId) {
	im.mu.Lock()
	delete(im.pending, tokenId)
	im.mu.Unlock()
}
