package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/x-xyz/nftmarket/base/backoff"
	"github.com/x-xyz/nftmarket/base/config"
	"github.com/x-xyz/nftmarket/base/ctx"
	"github.com/x-xyz/nftmarket/base/database/mongoclient"
	"github.com/x-xyz/nftmarket/base/database/redisclient"
	"github.com/x-xyz/nftmarket/base/log"
	"github.com/x-xyz/nftmarket/base/metrics"
	bValidator "github.com/x-xyz/nftmarket/base/validator"
	"github.com/x-xyz/nftmarket/domain"
	"github.com/x-xyz/nftmarket/domain/keys"
	"github.com/x-xyz/nftmarket/domain/notification"
	mmiddleware "github.com/x-xyz/nftmarket/middleware"
	"github.com/x-xyz/nftmarket/service/cache"
	"github.com/x-xyz/nftmarket/service/cache/provider/primitive"
	redisCache "github.com/x-xyz/nftmarket/service/cache/provider/redis"
	"github.com/x-xyz/nftmarket/service/chain"
	"github.com/x-xyz/nftmarket/service/chain/contract"
	"github.com/x-xyz/nftmarket/service/ens"
	"github.com/x-xyz/nftmarket/service/notify"
	"github.com/x-xyz/nftmarket/service/query"
	"github.com/x-xyz/nftmarket/service/redis"
	ens_delivery "github.com/x-xyz/nftmarket/stores/ens/delivery/http"
	hc_delivery "github.com/x-xyz/nftmarket/stores/healthcheck/delivery/http"
	hc_repo "github.com/x-xyz/nftmarket/stores/healthcheck/repository"
	hc_usecase "github.com/x-xyz/nftmarket/stores/healthcheck/usecase"
	listing_delivery "github.com/x-xyz/nftmarket/stores/listing/delivery/http"
	listing_repository "github.com/x-xyz/nftmarket/stores/listing/repository"
	listing_usecase "github.com/x-xyz/nftmarket/stores/listing/usecase"
	marketstats_delivery "github.com/x-xyz/nftmarket/stores/marketstats/delivery/http"
	marketstats_usecase "github.com/x-xyz/nftmarket/stores/marketstats/usecase"
	trade_delivery "github.com/x-xyz/nftmarket/stores/trade/delivery/http"
	trade_repository "github.com/x-xyz/nftmarket/stores/trade/repository"
	trade_usecase "github.com/x-xyz/nftmarket/stores/trade/usecase"
)

const (
	datadogPort = 8125
	// read endpoints are served from cache for this long
	readCacheTtl        = 5 * time.Second
	statsLocalTtl       = 5 * time.Second
	refreshBackoffStart = 2 * time.Second
)

func main() {
	path, err := config.ParseFlags(os.Args[1:])
	if err != nil {
		log.Log().WithField("err", err).Panic("config.ParseFlags failed")
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Log().WithField("err", err).Panic("config.Load failed")
	}

	log.SetDebug(cfg.Debug)
	defer log.Sync()
	if cfg.Debug {
		log.Log().Info("Service RUN on DEBUG mode")
	}

	if cfg.DatadogHost != "" {
		if err := metrics.Init(metrics.Config{
			Host:    cfg.DatadogHost,
			Port:    datadogPort,
			EnvName: cfg.EnvName,
			AppName: cfg.AppName,
			PodName: cfg.PodName,
		}); err != nil {
			log.Log().WithField("err", err).Warn("metrics.Init failed, falling back to log")
		}
	}

	// init echo
	e := echo.New()
	e.Use(middleware.Recover())
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{}))
	e.Use(middleware.RequestID())
	middL := mmiddleware.InitMiddleware()
	e.Use(middL.ResponseLogger())
	e.Use(middL.AddContext())
	e.Use(middleware.CORS())
	e.Validator = bValidator.NewCustomValidator(bValidator.New())

	context := ctx.Background()

	// init mongo client
	context.Info("init mongo")
	mongoClient := mongoclient.MustConnect(mongoclient.Options{
		URI:                cfg.Mongo.URI,
		AuthDBName:         cfg.Mongo.AuthDBName,
		DBName:             cfg.Mongo.DBName,
		SSL:                cfg.Mongo.EnableSSL,
		SetSafe:            cfg.Mongo.SetSafe,
		PoolSizeMultiplier: cfg.Mongo.PoolSizeMultiplier,
	})
	q := query.New(mongoClient)

	// init redis cache
	context.Info("init redis cache")
	redisCachePool := redisclient.MustConnectRedis(cfg.RedisCache.URI, cfg.RedisCache.Password, redisclient.RedisParam{
		PoolMultiplier: cfg.RedisCache.PoolMultiplier,
		Retry:          cfg.RedisCache.Retry,
	})
	redisService := redis.New("redis_cache", metrics.New("redis_cache"), redisCachePool)
	mmiddleware.SetupCache(primitive.NewPrimitive("http", 64), redisCache.NewRedis(redisService))

	// init chain service
	context.Info("init chain")
	chainService, err := chain.NewClient(context, &chain.ClientCfg{
		RpcUrl:             cfg.Chain.RpcURL,
		ChainId:            cfg.Chain.ChainId,
		PrivateKey:         cfg.Signer.PrivateKey,
		MaxConcurrentCalls: cfg.Chain.MaxConcurrentCalls,
	})
	if err != nil {
		context.WithField("err", err).Panic("chain.NewClient failed")
	}
	marketplaceAddr := domain.Address(cfg.Marketplace.Address)
	marketplace := contract.NewMarketplace(chainService, marketplaceAddr)

	// ens lives on mainnet, names are rejected without an endpoint
	var ensService ens.ENS
	if cfg.Chain.EnsRpcURL != "" {
		ensChain, err := chain.NewClient(context, &chain.ClientCfg{
			RpcUrl:             cfg.Chain.EnsRpcURL,
			ChainId:            1,
			MaxConcurrentCalls: cfg.Chain.MaxConcurrentCalls,
		})
		if err != nil {
			context.WithField("err", err).Warn("ens disabled")
		} else {
			ensService = ens.New(ensChain.Backend(), redisService, cfg.Cache.EnsTTL)
		}
	}

	sinks := []notification.Sink{notify.NewLogSink()}
	if cfg.Discord.BotKey != "" && cfg.Discord.ChannelId != "" {
		discord, err := notify.NewDiscordSink(cfg.Discord.BotKey, cfg.Discord.ChannelId)
		if err != nil {
			context.WithField("err", err).Warn("discord notifications disabled")
		} else {
			sinks = append(sinks, discord)
		}
	}
	notifier := notify.NewMultiSink(sinks...)

	// repositories
	chainSource := listing_repository.NewChainSource(marketplace)
	snapshotRepo := listing_repository.NewSnapshotRepo(q)
	txLock := trade_repository.NewLocalLock()
	if cfg.Marketplace.TxLockTTL > 0 {
		txLock = trade_repository.NewRedisLock(redisService, cfg.Marketplace.TxLockTTL)
	}
	hcRepo := hc_repo.New(mongoClient, q, redisService)

	// usecases
	listingUC := listing_usecase.New(&listing_usecase.ListingUseCaseCfg{
		Source:       chainSource,
		Repo:         snapshotRepo,
		Marketplace:  marketplaceAddr,
		FetchTimeout: cfg.Marketplace.FetchTimeout,
	})
	statsUC := marketstats_usecase.New(chainSource, cache.NewCompound(
		cache.New(cache.ServiceConfig{
			Ttl:   statsLocalTtl,
			Pfx:   keys.PfxMarketStats,
			Cache: primitive.NewPrimitive("marketStats", 1),
		}),
		cache.New(cache.ServiceConfig{
			Ttl:   cfg.Cache.StatsTTL,
			Pfx:   keys.PfxMarketStats,
			Cache: redisCache.NewRedis(redisService),
		}),
	))
	tradeUC := trade_usecase.New(&trade_usecase.TradeUseCaseCfg{
		Marketplace:     trade_repository.NewMarketplace(marketplace),
		Lock:            txLock,
		Listing:         listingUC,
		Stats:           statsUC,
		Notifier:        notifier,
		MarketplaceAddr: marketplaceAddr,
		TxTimeout:       cfg.Marketplace.TxTimeout,
		PendingTimeout:  cfg.Marketplace.TxPendingTimeout,
	})
	hc := hc_usecase.New(hcRepo, listingUC)

	readCache := mmiddleware.CacheHttp(readCacheTtl)
	hc_delivery.New(e, hc)
	listing_delivery.New(e, listingUC, ensService, readCache)
	marketstats_delivery.New(e, statsUC)
	trade_delivery.New(e, tradeUC)
	if ensService != nil {
		ens_delivery.New(e, ensService, readCache)
	}

	refreshCtx, stopRefresh := ctx.WithCancel(context)
	refresher := listing_usecase.NewRefresher(listingUC, cfg.Marketplace.RefreshInterval,
		backoff.NewExponential(refreshBackoffStart, cfg.Marketplace.RefreshInterval))
	refresher.Start(refreshCtx)

	go func() {
		if err := e.Start(cfg.Server.Address); err != nil && err != http.ErrServerClosed {
			log.Log().WithField("err", err).Error("shutting down the server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 10 seconds.
	// Use a buffered channel to avoid missing signals as recommended for signal.Notify
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	sig := <-quit
	log.Log().WithField("signal", sig).Info("received signal")
	stopRefresh()
	ctx, cancel := ctx.WithTimeout(context, cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Log().WithField("err", err).Error("shutting down the server")
	} else {
		log.Log().Info("shutdown server successfully")
	}
}
