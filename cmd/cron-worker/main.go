package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/giftstore-backend/internal/cron"
	"github.com/angelmondragon/giftstore-backend/internal/media"
	"github.com/angelmondragon/giftstore-backend/internal/products"
	"github.com/angelmondragon/giftstore-backend/internal/stores"
	"github.com/angelmondragon/giftstore-backend/pkg/config"
	"github.com/angelmondragon/giftstore-backend/pkg/enums"
	"github.com/angelmondragon/giftstore-backend/pkg/instance"
	"github.com/angelmondragon/giftstore-backend/pkg/jsonstore"
	"github.com/angelmondragon/giftstore-backend/pkg/logger"
	"github.com/angelmondragon/giftstore-backend/pkg/metrics"
	"github.com/angelmondragon/giftstore-backend/pkg/redis"
)

const lockScopeFormat = "cron-worker:%s"

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormatOrDefault(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storeMetrics := metrics.NewStoreMetrics(prometheus.DefaultRegisterer)
	var (
		lock           cron.Lock = cron.NewLocalLock()
		collectionOpts           = func(string) []jsonstore.Option {
			return []jsonstore.Option{
				jsonstore.WithMetrics(storeMetrics),
				jsonstore.WithFileMode(fs.FileMode(cfg.Storage.FileMode)),
			}
		}
	)
	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()

		lock, err = cron.NewRedisLock(redisClient, lockScope(cfg.App.Env), 0)
		if err != nil {
			logg.Error(ctx, "failed to create cron lock", err)
			os.Exit(1)
		}
		collectionOpts = func(name string) []jsonstore.Option {
			locker, err := jsonstore.NewRedisLocker(redisClient, name, cfg.Redis.LockTTL)
			if err != nil {
				logg.Error(ctx, "failed to build collection lock", err)
				os.Exit(1)
			}
			return []jsonstore.Option{
				jsonstore.WithMetrics(storeMetrics),
				jsonstore.WithFileMode(fs.FileMode(cfg.Storage.FileMode)),
				jsonstore.WithLocker(locker),
			}
		}
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

	storeAssets, err := media.NewStorage(enums.MediaKindStore, cfg.Storage.StoreAssets, logg)
	if err != nil {
		logg.Error(ctx, "failed to open store uploads", err)
		os.Exit(1)
	}
	productAssets, err := media.NewStorage(enums.MediaKindProduct, cfg.Storage.ProductAssets, logg)
	if err != nil {
		logg.Error(ctx, "failed to open product uploads", err)
		os.Exit(1)
	}

	cleanup, err := cron.NewOrphanedUploadCleanupJob(cron.OrphanedUploadCleanupJobParams{
		Logger:        logg,
		Stores:        storeRepo,
		Products:      productRepo,
		StoreAssets:   storeAssets,
		ProductAssets: productAssets,
		MaxAge:        cfg.Cron.OrphanMaxAge,
	})
	if err != nil {
		logg.Error(ctx, "failed to create cleanup job", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(cleanup),
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(ctx, "failed to create cron service", err)
		os.Exit(1)
	}

	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"interval": cfg.Cron.Interval.String(),
		"instance": instance.GetID(),
	})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func lockScope(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockScopeFormat, env)
}
