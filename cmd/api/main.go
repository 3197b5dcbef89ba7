package main

import (
	"context"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/angelmondragon/giftstore-backend/api"
	"github.com/angelmondragon/giftstore-backend/api/routes"
	"github.com/angelmondragon/giftstore-backend/internal/media"
	"github.com/angelmondragon/giftstore-backend/internal/orders"
	"github.com/angelmondragon/giftstore-backend/internal/products"
	"github.com/angelmondragon/giftstore-backend/internal/stores"
	"github.com/angelmondragon/giftstore-backend/pkg/config"
	"github.com/angelmondragon/giftstore-backend/pkg/enums"
	"github.com/angelmondragon/giftstore-backend/pkg/instance"
	"github.com/angelmondragon/giftstore-backend/pkg/jsonstore"
	"github.com/angelmondragon/giftstore-backend/pkg/logger"
	"github.com/angelmondragon/giftstore-backend/pkg/mailer"
	"github.com/angelmondragon/giftstore-backend/pkg/metrics"
	"github.com/angelmondragon/giftstore-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormatOrDefault(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(cfg.Storage.DataDir, 0o755); err != nil {
		logg.Error(ctx, "failed to create data dir", err)
		os.Exit(1)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	} else {
		logg.Warn(ctx, "redis not configured; using process-local locks and no rate limits")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	storeMetrics := metrics.NewStoreMetrics(reg)

	collectionOpts := func(name string) []jsonstore.Option {
		opts := []jsonstore.Option{
			jsonstore.WithMetrics(storeMetrics),
			jsonstore.WithFileMode(fs.FileMode(cfg.Storage.FileMode)),
		}
		if redisClient != nil {
			locker, err := jsonstore.NewRedisLocker(redisClient, name, cfg.Redis.LockTTL)
			if err != nil {
				logg.Error(ctx, "failed to build collection lock", err)
				os.Exit(1)
			}
			opts = append(opts, jsonstore.WithLocker(locker))
		}
		return opts
	}

	storeColl, err := jsonstore.NewCollection[stores.Store]("stores", cfg.Storage.StoresPath(), collectionOpts("stores")...)
	if err != nil {
		logg.Error(ctx, "failed to open stores collection", err)
		os.Exit(1)
	}
	storeSeq, err := jsonstore.NewSequence("st_", jsonstore.SidecarPath(cfg.Storage.StoresPath()))
	if err != nil {
		logg.Error(ctx, "failed to open store id sequence", err)
		os.Exit(1)
	}
	storeRepo, err := stores.NewRepository(storeColl, storeSeq)
	if err != nil {
		logg.Error(ctx, "failed to create store repository", err)
		os.Exit(1)
	}

	productColl, err := jsonstore.NewCollection[products.Product]("products", cfg.Storage.ProductsPath(), collectionOpts("products")...)
	if err != nil {
		logg.Error(ctx, "failed to open products collection", err)
		os.Exit(1)
	}
	productSeq, err := jsonstore.NewSequence("p_", jsonstore.SidecarPath(cfg.Storage.ProductsPath()))
	if err != nil {
		logg.Error(ctx, "failed to open product id sequence", err)
		os.Exit(1)
	}
	productRepo, err := products.NewRepository(productColl, productSeq)
	if err != nil {
		logg.Error(ctx, "failed to create product repository", err)
		os.Exit(1)
	}

	orderColl, err := jsonstore.NewCollection[orders.Order]("orders", cfg.Storage.OrdersPath(), collectionOpts("orders")...)
	if err != nil {
		logg.Error(ctx, "failed to open orders collection", err)
		os.Exit(1)
	}
	orderRepo, err := orders.NewRepository(orderColl)
	if err != nil {
		logg.Error(ctx, "failed to create order repository", err)
		os.Exit(1)
	}

	storeAssets, err := media.NewStorage(enums.MediaKindStore, cfg.Storage.StoreAssets, logg)
	if err != nil {
		logg.Error(ctx, "failed to prepare store uploads", err)
		os.Exit(1)
	}
	productAssets, err := media.NewStorage(enums.MediaKindProduct, cfg.Storage.ProductAssets, logg)
	if err != nil {
		logg.Error(ctx, "failed to prepare product uploads", err)
		os.Exit(1)
	}

	mail, err := mailer.New(cfg.SMTP, logg, metrics.NewMailMetrics(reg))
	if err != nil {
		logg.Error(ctx, "failed to create mailer", err)
		os.Exit(1)
	}

	storeService, err := stores.NewService(storeRepo, storeAssets, logg)
	if err != nil {
		logg.Error(ctx, "failed to create store service", err)
		os.Exit(1)
	}
	productService, err := products.NewService(productRepo, productAssets, logg, cfg.Media.MaxProductImages)
	if err != nil {
		logg.Error(ctx, "failed to create product service", err)
		os.Exit(1)
	}
	orderService, err := orders.NewService(productRepo, storeRepo, orderRepo, mail, logg)
	if err != nil {
		logg.Error(ctx, "failed to create order service", err)
		os.Exit(1)
	}

	var redisStore routes.RedisStore
	if redisClient != nil {
		redisStore = redisClient
	}

	handler := routes.NewRouter(cfg, logg, reg, metrics.NewHTTPMetrics(reg), redisStore, storeService, productService, orderService)

	addr := ":" + cfg.App.Port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
		"data_dir": cfg.Storage.DataDir,
	})
	logg.Info(logCtx, "starting api server")

	if err := api.Serve(ctx, api.NewServer(addr, handler), logg); err != nil {
		logg.Error(logCtx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(logCtx, "api server stopped")
}
