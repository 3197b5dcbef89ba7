package routes

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/angelmondragon/giftstore-backend/api/controllers"
	"github.com/angelmondragon/giftstore-backend/api/middleware"
	"github.com/angelmondragon/giftstore-backend/api/validators"
	"github.com/angelmondragon/giftstore-backend/internal/orders"
	"github.com/angelmondragon/giftstore-backend/internal/products"
	"github.com/angelmondragon/giftstore-backend/internal/stores"
	"github.com/angelmondragon/giftstore-backend/pkg/config"
	"github.com/angelmondragon/giftstore-backend/pkg/logger"
	"github.com/angelmondragon/giftstore-backend/pkg/metrics"
	"github.com/angelmondragon/giftstore-backend/pkg/redis"
)

// RedisStore is what the router needs from redis: counters for rate limits
// and a ping for readiness. Pass nil when redis is not configured.
type RedisStore interface {
	middleware.RateLimitStore
	redis.Pinger
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	gatherer prometheus.Gatherer,
	httpMetrics *metrics.HTTPMetrics,
	redisStore RedisStore,
	storeService stores.Service,
	productService products.Service,
	orderService orders.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	var limiter middleware.RateLimitStore
	if redisStore != nil {
		limiter = redisStore
	}
	orderPolicy := middleware.NewRateLimitPolicy("order", cfg.RateLimit.OrderWindow, cfg.RateLimit.OrderLimit)
	loginPolicy := middleware.NewRateLimitPolicy("login", cfg.RateLimit.LoginWindow, cfg.RateLimit.LoginLimit).
		WithEmailLimit("email", cfg.RateLimit.LoginLimit)

	uploadLimit := cfg.Media.MaxUploadBytes()
	jsonBody := chimw.RequestSize(validators.MaxJSONBodyBytes)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, readinessChecks(cfg, redisStore)))
	})
	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	// stores
	r.Post("/createStore", controllers.CreateStore(storeService, logg, uploadLimit))
	r.Get("/viewStores", controllers.ViewStores(storeService, logg))
	r.Get("/store/{storeId}", controllers.GetStore(storeService, logg))
	r.With(jsonBody).Post("/changeStatus", controllers.ChangeStoreStatus(storeService, logg))
	r.With(jsonBody).Post("/updateStore", controllers.UpdateStore(storeService, logg))
	r.With(jsonBody, middleware.RateLimit(loginPolicy, limiter, logg)).Post("/storeLogin", controllers.StoreLogin(storeService, logg))

	// products
	r.Post("/addProduct", controllers.AddProduct(productService, logg, uploadLimit))
	r.Get("/viewProducts", controllers.ViewProducts(productService, logg))
	r.Get("/products/{storeId}", controllers.StoreProducts(productService, logg))
	r.Get("/product/{productId}", controllers.GetProduct(productService, logg))
	r.With(jsonBody).Post("/updateProductStatus", controllers.UpdateProductStatus(productService, logg))
	r.With(jsonBody).Post("/deleteProduct", controllers.DeleteProduct(productService, logg))
	r.Post("/updateProduct", controllers.UpdateProduct(productService, logg, uploadLimit))

	// orders
	r.With(jsonBody, middleware.RateLimit(orderPolicy, limiter, logg)).Post("/orderProduct", controllers.OrderProduct(orderService, logg))
	r.Get("/storeOrders/{storeId}", controllers.StoreOrders(orderService, logg))
	r.Get("/allOrders", controllers.AllOrders(orderService, logg))
	r.With(jsonBody).Post("/updateOrderStatus", controllers.UpdateOrderStatus(orderService, logg))

	mountStatic(r, cfg.Storage.StorePrefix, cfg.Storage.StoreAssets)
	mountStatic(r, cfg.Storage.ProductPrefix, cfg.Storage.ProductAssets)

	return r
}

func mountStatic(r chi.Router, prefix, dir string) {
	if prefix == "" || dir == "" {
		return
	}
	r.Handle(prefix+"/*", controllers.StaticAssets(prefix, dir))
}

func readinessChecks(cfg *config.Config, redisStore RedisStore) map[string]controllers.ReadinessCheck {
	checks := map[string]controllers.ReadinessCheck{
		"data_dir": func(context.Context) error { return dirWritable(cfg.Storage.DataDir) },
	}
	if redisStore != nil {
		checks["redis"] = redisStore.Ping
	}
	return checks
}

func dirWritable(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	probe, err := os.CreateTemp(dir, ".ready-*")
	if err != nil {
		return err
	}
	return multierr.Combine(probe.Close(), os.Remove(probe.Name()))
}
