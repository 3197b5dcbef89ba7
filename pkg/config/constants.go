package config

const (
	// EnvPrefix is empty; every field spells out its full variable name.
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv       = "GIFTSTORE_APP_ENV"
	EnvPort         = "GIFTSTORE_APP_PORT"
	EnvPortOverride = "PORT"
	EnvLogLevel     = "GIFTSTORE_LOG_LEVEL"

	EnvDataDir      = "GIFTSTORE_DATA_DIR"
	EnvStoresFile   = "GIFTSTORE_STORES_FILE"
	EnvProductsFile = "GIFTSTORE_PRODUCTS_FILE"
	EnvOrdersFile   = "GIFTSTORE_ORDERS_FILE"

	EnvMaxUploadMB      = "GIFTSTORE_MAX_UPLOAD_MB"
	EnvMaxProductImages = "GIFTSTORE_MAX_PRODUCT_IMAGES"

	EnvSMTPHost     = "GIFTSTORE_SMTP_HOST"
	EnvSMTPPort     = "GIFTSTORE_SMTP_PORT"
	EnvSMTPUser     = "GIFTSTORE_SMTP_USER"
	EnvSMTPPassword = "GIFTSTORE_SMTP_PASSWORD"
	EnvSMTPFrom     = "GIFTSTORE_SMTP_FROM"

	EnvRedisURL  = "GIFTSTORE_REDIS_URL"
	EnvRedisAddr = "GIFTSTORE_REDIS_ADDR"

	EnvCronInterval = "GIFTSTORE_CRON_INTERVAL"
	EnvCORSOrigins  = "GIFTSTORE_CORS_ALLOWED_ORIGINS"
)
