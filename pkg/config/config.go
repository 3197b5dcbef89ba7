package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App       AppConfig
	Storage   StorageConfig
	Media     MediaConfig
	SMTP      SMTPConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Cron      CronConfig
	CORS      CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if port := strings.TrimSpace(os.Getenv(EnvPortOverride)); port != "" {
		cfg.App.Port = port
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.App.Port) == "" {
		return fmt.Errorf("%s is required", EnvPort)
	}
	if c.Media.MaxProductImages <= 0 {
		return fmt.Errorf("%s must be positive", EnvMaxProductImages)
	}
	if c.SMTP.Host != "" && c.SMTP.Port <= 0 {
		return fmt.Errorf("%s must be positive when %s is set", EnvSMTPPort, EnvSMTPHost)
	}
	return nil
}

type AppConfig struct {
	Env          string `envconfig:"GIFTSTORE_APP_ENV" default:"dev"`
	Port         string `envconfig:"GIFTSTORE_APP_PORT" default:"5000"`
	LogLevel     string `envconfig:"GIFTSTORE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GIFTSTORE_LOG_WARN_STACK" default:"false"`
	LogFormat    string `envconfig:"GIFTSTORE_LOG_FORMAT"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// LogFormatOrDefault prefers the configured format and otherwise logs to the
// console in dev and as JSON elsewhere.
func (a AppConfig) LogFormatOrDefault() string {
	if a.LogFormat != "" {
		return a.LogFormat
	}
	if a.IsDev() {
		return "console"
	}
	return "json"
}

// StorageConfig locates the JSON collections and the uploaded asset folders.
type StorageConfig struct {
	DataDir       string `envconfig:"GIFTSTORE_DATA_DIR" default:"./data"`
	StoresFile    string `envconfig:"GIFTSTORE_STORES_FILE" default:"stores.json"`
	ProductsFile  string `envconfig:"GIFTSTORE_PRODUCTS_FILE" default:"products.json"`
	OrdersFile    string `envconfig:"GIFTSTORE_ORDERS_FILE" default:"orders.json"`
	StoreAssets   string `envconfig:"GIFTSTORE_STORE_ASSETS_DIR" default:"./uploads/stores"`
	ProductAssets string `envconfig:"GIFTSTORE_PRODUCT_ASSETS_DIR" default:"./uploads/products"`
	StorePrefix   string `envconfig:"GIFTSTORE_STORE_ASSETS_PREFIX" default:"/uploads/stores"`
	ProductPrefix string `envconfig:"GIFTSTORE_PRODUCT_ASSETS_PREFIX" default:"/uploads/products"`
	FileMode      uint32 `envconfig:"GIFTSTORE_DATA_FILE_MODE" default:"0644"`
}

func (s StorageConfig) StoresPath() string   { return s.resolve(s.StoresFile) }
func (s StorageConfig) ProductsPath() string { return s.resolve(s.ProductsFile) }
func (s StorageConfig) OrdersPath() string   { return s.resolve(s.OrdersFile) }

func (s StorageConfig) resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.DataDir, name)
}

type MediaConfig struct {
	MaxUploadMB      int `envconfig:"GIFTSTORE_MAX_UPLOAD_MB" default:"10"`
	MaxProductImages int `envconfig:"GIFTSTORE_MAX_PRODUCT_IMAGES" default:"5"`
}

// MaxUploadBytes is the request body cap applied to multipart endpoints.
func (m MediaConfig) MaxUploadBytes() int64 {
	if m.MaxUploadMB <= 0 {
		return 0
	}
	return int64(m.MaxUploadMB) << 20
}

type SMTPConfig struct {
	Host     string        `envconfig:"GIFTSTORE_SMTP_HOST"`
	Port     int           `envconfig:"GIFTSTORE_SMTP_PORT" default:"587"`
	User     string        `envconfig:"GIFTSTORE_SMTP_USER"`
	Password string        `envconfig:"GIFTSTORE_SMTP_PASSWORD"`
	From     string        `envconfig:"GIFTSTORE_SMTP_FROM"`
	Timeout  time.Duration `envconfig:"GIFTSTORE_SMTP_TIMEOUT" default:"15s"`

	BreakerMinRequests  uint32        `envconfig:"GIFTSTORE_SMTP_BREAKER_MIN_REQUESTS" default:"3"`
	BreakerFailureRatio float64       `envconfig:"GIFTSTORE_SMTP_BREAKER_FAILURE_RATIO" default:"0.6"`
	BreakerOpenTimeout  time.Duration `envconfig:"GIFTSTORE_SMTP_BREAKER_OPEN_TIMEOUT" default:"30s"`
}

// Enabled reports whether a real SMTP relay is configured.
func (s SMTPConfig) Enabled() bool {
	return strings.TrimSpace(s.Host) != ""
}

// Sender returns the envelope from address, falling back to the SMTP user.
func (s SMTPConfig) Sender() string {
	if from := strings.TrimSpace(s.From); from != "" {
		return from
	}
	return s.User
}

type RedisConfig struct {
	URL          string        `envconfig:"GIFTSTORE_REDIS_URL"`
	Address      string        `envconfig:"GIFTSTORE_REDIS_ADDR"`
	Password     string        `envconfig:"GIFTSTORE_REDIS_PASSWORD"`
	DB           int           `envconfig:"GIFTSTORE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GIFTSTORE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GIFTSTORE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GIFTSTORE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GIFTSTORE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GIFTSTORE_REDIS_WRITE_TIMEOUT" default:"5s"`
	LockTTL      time.Duration `envconfig:"GIFTSTORE_REDIS_LOCK_TTL" default:"10s"`
}

// Enabled reports whether Redis backed locks and rate limits should be used.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type RateLimitConfig struct {
	OrderWindow time.Duration `envconfig:"GIFTSTORE_RATE_LIMIT_ORDER_WINDOW" default:"1m"`
	OrderLimit  int           `envconfig:"GIFTSTORE_RATE_LIMIT_ORDER_LIMIT" default:"10"`
	LoginWindow time.Duration `envconfig:"GIFTSTORE_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginLimit  int           `envconfig:"GIFTSTORE_RATE_LIMIT_LOGIN_LIMIT" default:"5"`
}

type CronConfig struct {
	Interval     time.Duration `envconfig:"GIFTSTORE_CRON_INTERVAL" default:"1h"`
	OrphanMaxAge time.Duration `envconfig:"GIFTSTORE_CRON_ORPHAN_MAX_AGE" default:"24h"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"GIFTSTORE_CORS_ALLOWED_ORIGINS" default:"*"`
}
