package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/sergio-nezhigay/images-creator/pkg/config"
)

// Config holds all configuration for the bundle image service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort     int           `env:"HTTP_PORT" envDefault:"8080"`
	CORSOrigins  []string      `env:"CORS_ALLOWED_ORIGINS" envDefault:"" envSeparator:","`
	ReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"120s"`

	// Shopify Admin API
	ShopifyShopDomain  string        `env:"SHOPIFY_SHOP_DOMAIN"`
	ShopifyAccessToken string        `env:"SHOPIFY_ACCESS_TOKEN"`
	ShopifyAPIVersion  string        `env:"SHOPIFY_API_VERSION" envDefault:"2024-10"`
	ShopifyTimeout     time.Duration `env:"SHOPIFY_TIMEOUT" envDefault:"15s"`

	// Image compositing backend: cloudinary or demo.
	ImageBackend        string `env:"IMAGE_BACKEND" envDefault:"demo"`
	CloudinaryCloudName string `env:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string `env:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string `env:"CLOUDINARY_API_SECRET"`
	CloudinaryFolder    string `env:"CLOUDINARY_FOLDER" envDefault:"bundles"`

	// Component query cache
	CacheEnabled  bool          `env:"CACHE_ENABLED" envDefault:"false"`
	CacheTTL      time.Duration `env:"CACHE_TTL" envDefault:"5m"`
	RedisHost     string        `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int           `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string        `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`

	// Kafka
	KafkaEnabled bool     `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Tracing
	TracingEnabled  bool    `env:"TRACING_ENABLED" envDefault:"false"`
	TracingEndpoint string  `env:"TRACING_ENDPOINT" envDefault:"localhost:4318"`
	TracingSample   float64 `env:"TRACING_SAMPLE_RATE" envDefault:"0.1"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load service config: %w", err)
	}
	return cfg, nil
}

// ShopifyEndpoint returns the Admin GraphQL endpoint for the configured shop.
func (c *Config) ShopifyEndpoint() string {
	return fmt.Sprintf("https://%s/admin/api/%s/graphql.json", c.ShopifyShopDomain, c.ShopifyAPIVersion)
}

// RedisAddr returns the Redis host:port address.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}
