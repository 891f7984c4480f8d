package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App         AppConfig
	DB          DBConfig
	Redis       RedisConfig
	JWT         JWTConfig
	Carrier     CarrierConfig
	Razorpay    RazorpayConfig
	Tracking    TrackingConfig
	RateLimit   RateLimitConfig
	Fulfillment FulfillmentConfig
	Features    FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SHOPVEDA_APP_ENV" required:"true"`
	Port         string `envconfig:"SHOPVEDA_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"SHOPVEDA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SHOPVEDA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"SHOPVEDA_DB_DSN" required:"true"`

	MaxOpenConns    int           `envconfig:"SHOPVEDA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SHOPVEDA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SHOPVEDA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SHOPVEDA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SHOPVEDA_REDIS_URL"`
	Address      string        `envconfig:"SHOPVEDA_REDIS_ADDR"`
	Password     string        `envconfig:"SHOPVEDA_REDIS_PASSWORD"`
	DB           int           `envconfig:"SHOPVEDA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SHOPVEDA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SHOPVEDA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SHOPVEDA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SHOPVEDA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SHOPVEDA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"SHOPVEDA_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"SHOPVEDA_JWT_ISSUER" default:"shopveda"`
	ExpirationMinutes int    `envconfig:"SHOPVEDA_JWT_EXPIRATION_MINUTES" default:"60"`
}

// CarrierConfig holds the logistics-provider credentials and the fixed
// defaults used when composing shipment requests.
type CarrierConfig struct {
	BaseURL  string        `envconfig:"SHOPVEDA_CARRIER_BASE_URL" default:"https://apiv2.shiprocket.in/v1/external"`
	Email    string        `envconfig:"SHOPVEDA_CARRIER_EMAIL"`
	Password string        `envconfig:"SHOPVEDA_CARRIER_PASSWORD"`
	TokenTTL time.Duration `envconfig:"SHOPVEDA_CARRIER_TOKEN_TTL" default:"240h"`
	Timeout  time.Duration `envconfig:"SHOPVEDA_CARRIER_TIMEOUT" default:"15s"`

	PickupLocation   string  `envconfig:"SHOPVEDA_CARRIER_PICKUP_LOCATION" default:"Primary"`
	DefaultLengthCM  float64 `envconfig:"SHOPVEDA_CARRIER_DEFAULT_LENGTH_CM" default:"10"`
	DefaultBreadthCM float64 `envconfig:"SHOPVEDA_CARRIER_DEFAULT_BREADTH_CM" default:"10"`
	DefaultHeightCM  float64 `envconfig:"SHOPVEDA_CARRIER_DEFAULT_HEIGHT_CM" default:"10"`
	DefaultWeightKG  float64 `envconfig:"SHOPVEDA_CARRIER_DEFAULT_WEIGHT_KG" default:"0.5"`
}

type RazorpayConfig struct {
	KeyID     string `envconfig:"SHOPVEDA_RAZORPAY_KEY_ID"`
	KeySecret string `envconfig:"SHOPVEDA_RAZORPAY_KEY_SECRET"`
}

type TrackingConfig struct {
	PollInterval time.Duration `envconfig:"SHOPVEDA_TRACKING_POLL_INTERVAL" default:"10m"`
	BatchSize    int           `envconfig:"SHOPVEDA_TRACKING_BATCH_SIZE" default:"50"`
	LockTTL      time.Duration `envconfig:"SHOPVEDA_TRACKING_LOCK_TTL" default:"5m"`
}

// FulfillmentConfig sets the checkout pricing knobs. Money values are whole
// rupees; the GST rate is a fraction of the items subtotal.
type FulfillmentConfig struct {
	GSTRate               float64 `envconfig:"SHOPVEDA_FULFILLMENT_GST_RATE" default:"0.18"`
	FreeShippingThreshold int     `envconfig:"SHOPVEDA_FULFILLMENT_FREE_SHIPPING_THRESHOLD" default:"1000"`
	FlatShippingFee       int     `envconfig:"SHOPVEDA_FULFILLMENT_FLAT_SHIPPING_FEE" default:"50"`
}

type RateLimitConfig struct {
	CheckoutWindow    time.Duration `envconfig:"SHOPVEDA_RL_CHECKOUT_WINDOW" default:"1m"`
	CheckoutIPLimit   int           `envconfig:"SHOPVEDA_RL_CHECKOUT_IP_LIMIT" default:"10"`
	CheckoutUserLimit int           `envconfig:"SHOPVEDA_RL_CHECKOUT_USER_LIMIT" default:"5"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SHOPVEDA_AUTO_MIGRATE" default:"false"`
}
