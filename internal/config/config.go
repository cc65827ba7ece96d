package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the service and the seed command.
type Config struct {
	ServiceName string `mapstructure:"SERVICE_NAME"`
	HTTPPort    string `mapstructure:"HTTP_PORT"`

	MongoURI            string        `mapstructure:"MONGO_URI"`
	MongoDatabase       string        `mapstructure:"MONGO_DATABASE"`
	MongoConnectTimeout time.Duration `mapstructure:"MONGO_CONNECT_TIMEOUT"`

	RedisAddress  string        `mapstructure:"REDIS_ADDRESS"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int           `mapstructure:"REDIS_DB"`
	CacheTTL      time.Duration `mapstructure:"CACHE_TTL"`
	FlashTTL      time.Duration `mapstructure:"FLASH_TTL"`

	NATSURL string `mapstructure:"NATS_URL"`

	JWTSecret     string        `mapstructure:"JWT_SECRET"`
	SecureCookies bool          `mapstructure:"SECURE_COOKIES"`
	SessionTTL    time.Duration `mapstructure:"SESSION_TTL"`

	ImageStoreDriver    string `mapstructure:"IMAGE_STORE_DRIVER"`
	ImageStoreEndpoint  string `mapstructure:"IMAGE_STORE_ENDPOINT"`
	ImageStoreAccessKey string `mapstructure:"IMAGE_STORE_ACCESS_KEY"`
	ImageStoreSecretKey string `mapstructure:"IMAGE_STORE_SECRET_KEY"`
	ImageStoreBucket    string `mapstructure:"IMAGE_STORE_BUCKET"`
	ImageStoreRegion    string `mapstructure:"IMAGE_STORE_REGION"`
	ImageStoreUseSSL    bool   `mapstructure:"IMAGE_STORE_USE_SSL"`
	ImageDeliveryURL    string `mapstructure:"IMAGE_DELIVERY_URL"`
	ImageFolder         string `mapstructure:"IMAGE_FOLDER"`
	MaxUploadBytes      int64  `mapstructure:"MAX_UPLOAD_BYTES"`

	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUsername string `mapstructure:"SMTP_EMAIL"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`

	PrometheusMetricsPort  string `mapstructure:"PROMETHEUS_METRICS_PORT"`
	LogLevel               string `mapstructure:"LOG_LEVEL"`
	LogFormat              string `mapstructure:"LOG_FORMAT"`
	OTExporterOTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

const defaultJWTSecret = "change-me-wanderlust-secret"

// Image store drivers.
const (
	DriverMinIO = "minio"
	DriverS3    = "s3"
)

// LoadConfig reads configuration from the environment. A .env file, if any, is
// expected to be loaded by the caller beforehand.
func LoadConfig() (*Config, error) {
	v := viper.New()

	v.SetDefault("SERVICE_NAME", "wanderlust")
	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("MONGO_URI", "mongodb://127.0.0.1:27017")
	v.SetDefault("MONGO_DATABASE", "wanderlust")
	v.SetDefault("MONGO_CONNECT_TIMEOUT", "10s")
	v.SetDefault("REDIS_ADDRESS", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_TTL", "10m")
	v.SetDefault("FLASH_TTL", "5m")
	v.SetDefault("NATS_URL", "")
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("SECURE_COOKIES", false)
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("IMAGE_STORE_DRIVER", DriverMinIO)
	v.SetDefault("IMAGE_STORE_ENDPOINT", "localhost:9000")
	v.SetDefault("IMAGE_STORE_ACCESS_KEY", "minioadmin")
	v.SetDefault("IMAGE_STORE_SECRET_KEY", "minioadmin")
	v.SetDefault("IMAGE_STORE_BUCKET", "wanderlust-images")
	v.SetDefault("IMAGE_STORE_REGION", "us-east-1")
	v.SetDefault("IMAGE_STORE_USE_SSL", false)
	v.SetDefault("IMAGE_DELIVERY_URL", "")
	v.SetDefault("IMAGE_FOLDER", "wanderlust_DEV")
	v.SetDefault("MAX_UPLOAD_BYTES", 10<<20)
	v.SetDefault("SMTP_HOST", "")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_EMAIL", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("PROMETHEUS_METRICS_PORT", "9095")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")

	v.AutomaticEnv()
	// ATLAS_DB is the name the hosted deployment uses for the connection string.
	if err := v.BindEnv("MONGO_URI", "MONGO_URI", "ATLAS_DB"); err != nil {
		return nil, fmt.Errorf("bind MONGO_URI: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.ImageStoreDriver = strings.ToLower(strings.TrimSpace(cfg.ImageStoreDriver))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings the service cannot start without.
func (c *Config) Validate() error {
	if c.MongoURI == "" {
		return fmt.Errorf("config: MONGO_URI is required")
	}
	if c.MongoDatabase == "" {
		return fmt.Errorf("config: MONGO_DATABASE is required")
	}
	if c.ImageStoreDriver != DriverMinIO && c.ImageStoreDriver != DriverS3 {
		return fmt.Errorf("config: unsupported IMAGE_STORE_DRIVER %q", c.ImageStoreDriver)
	}
	if c.ImageStoreBucket == "" {
		return fmt.Errorf("config: IMAGE_STORE_BUCKET is required")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("config: MAX_UPLOAD_BYTES must be positive")
	}
	return nil
}

// InsecureJWTSecret reports whether the JWT secret is unset or still the default.
func (c *Config) InsecureJWTSecret() bool {
	return c.JWTSecret == "" || c.JWTSecret == defaultJWTSecret
}

// MailEnabled reports whether SMTP settings are complete.
func (c *Config) MailEnabled() bool {
	return c.SMTPHost != "" && c.SMTPUsername != ""
}
