package config

// EnvPrefix is passed to envconfig; individual fields carry fully-qualified
// names so the prefix stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names shared with tests and tooling.
const (
	EnvAppEnv            = "SHOPVEDA_APP_ENV"
	EnvPort              = "SHOPVEDA_APP_PORT"
	EnvDBDSN             = "SHOPVEDA_DB_DSN"
	EnvRedisURL          = "SHOPVEDA_REDIS_URL"
	EnvJWTSecret         = "SHOPVEDA_JWT_SECRET"
	EnvCarrierEmail      = "SHOPVEDA_CARRIER_EMAIL"
	EnvCarrierPassword   = "SHOPVEDA_CARRIER_PASSWORD"
	EnvRazorpayKeyID     = "SHOPVEDA_RAZORPAY_KEY_ID"
	EnvRazorpayKeySecret = "SHOPVEDA_RAZORPAY_KEY_SECRET"
)
