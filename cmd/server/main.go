package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/irfndi/statspulse-go/internal/api"
	"github.com/irfndi/statspulse-go/internal/api/handlers"
	"github.com/irfndi/statspulse-go/internal/cache"
	"github.com/irfndi/statspulse-go/internal/config"
	"github.com/irfndi/statspulse-go/internal/credential"
	"github.com/irfndi/statspulse-go/internal/database"
	"github.com/irfndi/statspulse-go/internal/logging"
	"github.com/irfndi/statspulse-go/internal/middleware"
	"github.com/irfndi/statspulse-go/internal/observability"
	"github.com/irfndi/statspulse-go/internal/services"
	"github.com/irfndi/statspulse-go/internal/telemetry"
	"github.com/irfndi/statspulse-go/internal/upstream"
	"github.com/irfndi/statspulse-go/internal/window"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const serviceName = "statspulse-go"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Application failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := logging.NewLogger(cfg.LogLevel, cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	provider, err := telemetry.InitTelemetry(ctx, telemetry.TelemetryConfig{
		Enabled:        cfg.Telemetry.Enabled,
		Exporter:       cfg.Telemetry.Exporter,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: cfg.Telemetry.ServiceVersion,
		Environment:    cfg.Environment,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("Failed to shutdown telemetry")
		}
	}()
	if otelLogger, ok := provider.Logger(); ok {
		logger.AddHook(logging.NewOTLPHook(otelLogger))
	}

	if err := observability.InitSentry(cfg.Sentry, cfg.Telemetry.ServiceVersion, cfg.Environment); err != nil {
		logger.WithError(err).Warn("Failed to initialize Sentry, continuing without error reporting")
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		observability.Flush(flushCtx)
	}()

	app, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	if app.warmer != nil && app.creds.Configured() {
		go app.warmer.WarmCache(ctx)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           app.router,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logging.LogStartup(logger, serviceName, cfg.Telemetry.ServiceVersion, cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
	case <-ctx.Done():
		logging.LogShutdown(logger, serviceName, "signal received")
	}

	// Give outstanding requests a deadline for completion
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("Server exited gracefully")
	return nil
}

// app is the wired service graph behind the HTTP server.
type app struct {
	router *gin.Engine
	store  cache.Store
	redis  *database.RedisClient
	creds  *credential.Store
	warmer *services.CacheWarmingService
}

func (a *app) Close() {
	if a.store != nil {
		_ = a.store.Close()
	}
	if a.redis != nil {
		a.redis.Close()
	}
}

func newApp(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*app, error) {
	a := &app{}

	a.creds = credential.NewStore(cfg.Upstream.AccessToken, cfg.Upstream.TokenType, nil)
	if !a.creds.Configured() {
		logger.Warn("ACCESS_TOKEN is not set, upstream requests will be refused until one is configured")
	}

	healthChecks := map[string]handlers.HealthChecker{}
	switch cfg.Cache.Backend {
	case config.CacheBackendRedis:
		redisClient, err := database.NewRedisConnection(cfg.Redis, logger)
		if err != nil {
			return nil, err
		}
		a.redis = redisClient
		a.store = cache.NewRedisCache(redisClient.Client, cfg.Cache.DefaultTTL, cfg.Cache.KeyPrefix)
		healthChecks["redis"] = redisClient
	default:
		a.store = cache.NewMemoryCache(cfg.Cache.DefaultTTL,
			cache.WithSweepInterval(cfg.Cache.SweepInterval),
			cache.WithLogger(logger),
		)
	}
	logger.WithField("backend", cfg.Cache.Backend).Info("Cache initialized")

	client := upstream.NewClient(cfg.Upstream, a.creds, logger)
	cacheAnalytics := services.NewCacheAnalyticsService(a.store, cfg.Cache.Backend)
	analytics := services.NewAnalyticsService(client, a.store, cfg.Cache, logger, cacheAnalytics)
	if cfg.Cache.WarmOnStartup {
		a.warmer = services.NewCacheWarmingService(analytics, cfg.Cache.WarmTickers, logger)
	}

	deps := api.Dependencies{
		Numbers:        services.NewNumberService(window.New(cfg.Window.Capacity), client, a.creds, cfg.Window.FetchTimeout, logger),
		Analytics:      analytics,
		CacheAnalytics: cacheAnalytics,
		Credentials:    a.creds,
		HealthChecks:   healthChecks,
		Version:        cfg.Telemetry.ServiceVersion,
		Logger:         logger,
	}
	if cfg.RateLimit.Enabled {
		deps.RateLimiter = middleware.NewRateLimiter(ctx, cfg.RateLimit.Requests, cfg.RateLimit.Window)
	}

	if cfg.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.Recovery(logger))
	router.Use(otelgin.Middleware(serviceName))
	router.Use(middleware.RequestID())
	router.Use(middleware.SentryHub())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORS(cfg.Server.AllowedOrigins))

	api.SetupRoutes(router, deps)
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not Found"})
	})

	a.router = router
	return a, nil
}
