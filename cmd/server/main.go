package main

import (
	"context"
	"log"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/storecore/api/handler"
	"github.com/fastygo/storecore/internal/catalog"
	"github.com/fastygo/storecore/internal/config"
	"github.com/fastygo/storecore/internal/engine"
	"github.com/fastygo/storecore/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/storecore/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/storecore/internal/infrastructure/redis"
	"github.com/fastygo/storecore/internal/infrastructure/snapshot"
	"github.com/fastygo/storecore/internal/infrastructure/upstream"
	"github.com/fastygo/storecore/internal/middleware"
	"github.com/fastygo/storecore/internal/router"
	"github.com/fastygo/storecore/internal/services/lifecycle"
	"github.com/fastygo/storecore/pkg/httpcontext"
	"github.com/fastygo/storecore/pkg/logger"
	"github.com/fastygo/storecore/repository"
	"github.com/fastygo/storecore/repository/postgres"
	redisRepo "github.com/fastygo/storecore/repository/redis"
	accountUC "github.com/fastygo/storecore/usecase/account"
	catalogUC "github.com/fastygo/storecore/usecase/catalog"
	favoritesUC "github.com/fastygo/storecore/usecase/favorites"
	purchaseUC "github.com/fastygo/storecore/usecase/purchase"
	recommendUC "github.com/fastygo/storecore/usecase/recommend"
	searchUC "github.com/fastygo/storecore/usecase/search"
	togetherUC "github.com/fastygo/storecore/usecase/together"
	trendingUC "github.com/fastygo/storecore/usecase/trending"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pgInfra.Close(pool, zapLogger)
		return nil
	})

	var users repository.UserRepository = postgres.NewUserRepository(pool)
	history := postgres.NewTransactionRepository(pool)

	var redisClient *redislib.Client
	if cfg.UserCache.Enabled {
		redisClient, err = redisInfra.NewClient(appCtx, cfg.Redis)
		if err != nil {
			zapLogger.Warn("redis unavailable, user cache disabled", zap.Error(err))
		} else {
			users = redisRepo.NewUserCache(users, redisClient, cfg.UserCache.TTL, zapLogger)
			manager.Register("redis", func(ctx context.Context) error {
				return redisClient.Close()
			})
		}
	}

	snapshots, err := snapshot.Open(cfg.Catalog.SnapshotPath, "catalog", 0)
	if err != nil {
		zapLogger.Fatal("failed to open snapshot store", zap.Error(err))
	}
	manager.Register("snapshots", func(ctx context.Context) error {
		return snapshots.Close()
	})

	provider := upstream.NewClient(cfg.Catalog.UpstreamURL, cfg.Catalog.Limit, cfg.Catalog.FetchTimeout, zapLogger)
	cache := catalog.New(provider, cfg.Catalog.TTL, zapLogger, catalog.WithStore(snapshots))
	if err := cache.Warm(appCtx); err != nil {
		zapLogger.Warn("catalog warm-up from snapshot failed", zap.Error(err))
	}

	refresher, err := catalog.NewRefresher(cache, cfg.Catalog.RefreshInterval, cfg.Catalog.FetchTimeout, zapLogger)
	if err != nil {
		zapLogger.Fatal("invalid catalog refresh interval", zap.Error(err))
	}
	refresher.Start()
	manager.Register("catalog_refresher", func(ctx context.Context) error {
		refresher.Stop(ctx)
		return nil
	})

	registry := engine.Build(cfg.Engines.Dir, config.EngineNames, cfg.Engines.Remote, cfg.Engines.Timeout)
	dispatcher := engine.NewDispatcher(registry, engine.Config{
		Timeout:       cfg.Engines.Timeout,
		MaxConcurrent: int64(cfg.Engines.MaxConcurrent),
	}, zapLogger)

	mon := monitor.New(monitor.Deps{
		Postgres:  pool,
		Redis:     redisClient,
		Snapshots: snapshots,
		Catalog:   cache,
		Engines:   dispatcher.Names,
	}, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Catalog: apiHandler.NewCatalogHandler(
			catalogUC.New(cache),
			searchUC.New(cache, dispatcher, zapLogger),
			ctxAdapter, zapLogger),
		Recommendation: apiHandler.NewRecommendationHandler(apiHandler.RecommendationDeps{
			Recommend: recommendUC.New(cache, users, history, dispatcher, zapLogger),
			Trending:  trendingUC.New(cache, history, dispatcher, zapLogger),
			Together:  togetherUC.New(cache, history, dispatcher, zapLogger),
			Favorites: favoritesUC.New(cache, users, history, dispatcher, zapLogger),
		}, ctxAdapter, zapLogger),
		Purchase: apiHandler.NewPurchaseHandler(purchaseUC.New(users, history, zapLogger), ctxAdapter, zapLogger),
		Account:  apiHandler.NewAccountHandler(accountUC.New(users, zapLogger), ctxAdapter, zapLogger),
		Health:   apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	r := router.New(handlers, router.Options{
		ServiceAuth:   middleware.ServiceToken(cfg.JWT.Secret, cfg.JWT.Issuer, zapLogger),
		EnableMetrics: cfg.HTTP.EnableMetrics,
		SlowRequest:   cfg.Engines.Timeout,
		Logger:        zapLogger,
	})

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Concurrency:  cfg.HTTP.MaxConn,
		Name:         cfg.AppName,
	}

	zapLogger.Info("server starting",
		zap.String("address", cfg.Address()),
		zap.Strings("engines", registry.Names()))
	manager.Go("http_server", func() error {
		return server.ListenAndServe(cfg.Address())
	}, func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	if err := manager.Run(appCtx); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
