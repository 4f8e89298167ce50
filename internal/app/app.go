// Package app wires together all dependencies and runs the service.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sergio-nezhigay/images-creator/pkg/cache"
	"github.com/sergio-nezhigay/images-creator/pkg/health"
	"github.com/sergio-nezhigay/images-creator/pkg/httpclient"
	pkgkafka "github.com/sergio-nezhigay/images-creator/pkg/kafka"
	"github.com/sergio-nezhigay/images-creator/pkg/middleware"
	"github.com/sergio-nezhigay/images-creator/pkg/tracing"

	"github.com/sergio-nezhigay/images-creator/internal/config"
	"github.com/sergio-nezhigay/images-creator/internal/event"
	handler "github.com/sergio-nezhigay/images-creator/internal/handler/http"
	"github.com/sergio-nezhigay/images-creator/internal/imaging"
	"github.com/sergio-nezhigay/images-creator/internal/service"
	"github.com/sergio-nezhigay/images-creator/internal/shopify"
)

// App wires together all dependencies and runs the bundle image service.
type App struct {
	cfg             *config.Config
	logger          *slog.Logger
	httpServer      *http.Server
	producer        *pkgkafka.Producer
	redis           *cache.Redis
	tracingShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Tracing (no-op unless enabled).
	tracingShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:  "images-creator",
		Environment:  cfg.Environment,
		OTLPEndpoint: cfg.TracingEndpoint,
		SampleRate:   cfg.TracingSample,
		Enabled:      cfg.TracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	// Outbound HTTP: one retrying client shared for pooling, with a separate
	// circuit breaker per downstream so a compositing outage cannot reject
	// commerce queries.
	outbound := httpclient.New(httpclient.Config{
		Timeout:         cfg.ShopifyTimeout,
		MaxRetries:      3,
		RetryWaitMin:    500 * time.Millisecond,
		RetryWaitMax:    5 * time.Second,
		MaxConnsPerHost: 20,
	})
	shopifyHTTP := httpclient.NewCircuitBreakerClient(
		outbound, httpclient.DefaultCircuitBreakerConfig("shopify"), logger)
	imagingHTTP := httpclient.NewCircuitBreakerClient(
		outbound, httpclient.DefaultCircuitBreakerConfig("cloudinary"), logger)

	// Shopify Admin GraphQL gateway.
	shopifyClient, err := shopify.NewClient(shopify.Config{
		ShopDomain:  cfg.ShopifyShopDomain,
		AccessToken: cfg.ShopifyAccessToken,
		APIVersion:  cfg.ShopifyAPIVersion,
		Timeout:     cfg.ShopifyTimeout,
	}, shopifyHTTP, logger)
	if err != nil {
		return nil, fmt.Errorf("create shopify client: %w", err)
	}

	var gateway shopify.Gateway = shopifyClient
	var redis *cache.Redis
	if cfg.CacheEnabled {
		redis, err = cache.NewRedis(ctx, cache.RedisConfig{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		gateway = shopify.NewCachedGateway(shopifyClient, redis, cfg.CacheTTL, logger)
		logger.Info("component query cache enabled",
			slog.String("addr", cfg.RedisAddr()),
			slog.Duration("ttl", cfg.CacheTTL),
		)
	}

	// Imaging backend.
	backend, err := imaging.New(imaging.Config{
		Backend:             cfg.ImageBackend,
		CloudinaryCloudName: cfg.CloudinaryCloudName,
		CloudinaryAPIKey:    cfg.CloudinaryAPIKey,
		CloudinaryAPISecret: cfg.CloudinaryAPISecret,
		CloudinaryFolder:    cfg.CloudinaryFolder,
	}, imagingHTTP, logger)
	if err != nil {
		return nil, fmt.Errorf("create imaging backend: %w", err)
	}
	logger.Info("imaging backend selected", slog.String("backend", backend.Name()))

	// Optional Kafka producer for bundle.image.updated events.
	var producer *pkgkafka.Producer
	var publisher service.ImageUpdatedPublisher
	if cfg.KafkaEnabled {
		producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		publisher = event.NewProducer(producer, logger)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}

	// Build the dependency graph.
	resolver := service.NewResolver(gateway, logger)
	builder := service.NewBuilder(backend, logger)
	orchestrator := service.NewOrchestrator(resolver, builder, gateway, publisher, logger)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("shopify", shopifyClient.Ping)
	if redis != nil {
		healthHandler.Register("redis", redis.Ping)
	}
	if producer != nil {
		healthHandler.Register("kafka", producer.Ping)
	}

	// HTTP router.
	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.Environment = cfg.Environment
	if len(cfg.CORSOrigins) > 0 {
		corsCfg.AllowedOrigins = cfg.CORSOrigins
	}

	router := handler.NewRouter(resolver, builder, orchestrator, healthHandler, corsCfg, logger)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:             cfg,
		logger:          logger,
		httpServer:      httpServer,
		producer:        producer,
		redis:           redis,
		tracingShutdown: tracingShutdown,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
	}

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
		}
	}

	if err := a.tracingShutdown(shutdownCtx); err != nil {
		a.logger.Error("tracing shutdown error", slog.String("error", err.Error()))
	}

	a.logger.Info("application shutdown complete")
	return nil
}
