package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Environment string          `mapstructure:"environment"`
	LogLevel    string          `mapstructure:"log_level"`
	Server      ServerConfig    `mapstructure:"server"`
	Upstream    UpstreamConfig  `mapstructure:"upstream"`
	Window      WindowConfig    `mapstructure:"window"`
	Cache       CacheConfig     `mapstructure:"cache"`
	Redis       RedisConfig     `mapstructure:"redis"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"`
	Telemetry   TelemetryConfig `mapstructure:"telemetry"`
	Sentry      SentryConfig    `mapstructure:"sentry"`
}

type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// UpstreamConfig describes the third-party numeric data service.
type UpstreamConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	AccessToken string        `mapstructure:"access_token" json:"-" yaml:"-"`
	TokenType   string        `mapstructure:"token_type"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type WindowConfig struct {
	Capacity     int           `mapstructure:"capacity"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
}

type CacheConfig struct {
	Backend         string        `mapstructure:"backend"`
	DefaultTTL      time.Duration `mapstructure:"default_ttl"`
	CurrentPriceTTL time.Duration `mapstructure:"current_price_ttl"`
	SweepInterval   time.Duration `mapstructure:"sweep_interval"`
	KeyPrefix       string        `mapstructure:"key_prefix"`
	// WarmOnStartup preloads the catalog, and the prices of WarmTickers, once the
	// server starts.
	WarmOnStartup bool     `mapstructure:"warm_on_startup"`
	WarmTickers   []string `mapstructure:"warm_tickers"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

type TelemetryConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	Exporter       string  `mapstructure:"exporter"`
	OTLPEndpoint   string  `mapstructure:"otlp_endpoint"`
	ServiceName    string  `mapstructure:"service_name"`
	ServiceVersion string  `mapstructure:"service_version"`
	SampleRate     float64 `mapstructure:"sample_rate"`
}

// SentryConfig defines settings for Sentry error reporting.
type SentryConfig struct {
	// Enabled controls whether Sentry reporting is active.
	Enabled bool `mapstructure:"enabled"`
	// DSN is the Data Source Name for the Sentry project.
	DSN string `mapstructure:"dsn" json:"-" yaml:"-"`
	// Environment is the environment tag sent to Sentry. Defaults to the app environment.
	Environment string `mapstructure:"environment"`
	// Release is the release version tag. Defaults to the telemetry service version.
	Release string `mapstructure:"release"`
	// TracesSampleRate is the fraction of transactions Sentry traces. Zero disables it.
	TracesSampleRate float64 `mapstructure:"traces_sample_rate"`
}

const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// Load reads configuration from an optional .env file, an optional config.yaml and
// the process environment, in increasing order of precedence.
func Load() (*Config, error) {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Legacy variable names still set by existing deployments.
	bindings := map[string]string{
		"upstream.access_token": "ACCESS_TOKEN",
		"upstream.token_type":   "TOKEN_TYPE",
		"upstream.base_url":     "STOCK_API_BASE_URL",
		"server.port":           "PORT",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s environment variable: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.Environment = strings.ToLower(config.Environment)
	config.Cache.Backend = strings.ToLower(config.Cache.Backend)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate rejects configurations the services cannot run with.
func (c *Config) Validate() error {
	if c.Upstream.BaseURL == "" {
		return errors.New("upstream base URL is required")
	}
	if c.Window.Capacity <= 0 {
		return fmt.Errorf("window capacity must be positive, got %d", c.Window.Capacity)
	}
	if c.Window.FetchTimeout <= 0 {
		return fmt.Errorf("window fetch timeout must be positive, got %s", c.Window.FetchTimeout)
	}
	if c.Cache.DefaultTTL <= 0 || c.Cache.CurrentPriceTTL <= 0 {
		return errors.New("cache TTLs must be positive")
	}
	switch c.Cache.Backend {
	case CacheBackendMemory, CacheBackendRedis:
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	if c.RateLimit.Enabled && (c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0) {
		return errors.New("rate limit requests and window must be positive when enabled")
	}
	if c.Sentry.TracesSampleRate < 0 || c.Sentry.TracesSampleRate > 1 {
		return fmt.Errorf("sentry traces sample rate must be within [0, 1], got %v", c.Sentry.TracesSampleRate)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("log_level", "info")

	v.SetDefault("server.port", 9876)
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("upstream.base_url", "http://20.244.56.144/evaluation-service")
	v.SetDefault("upstream.access_token", "")
	v.SetDefault("upstream.token_type", "Bearer")
	v.SetDefault("upstream.timeout", "10s")

	v.SetDefault("window.capacity", 10)
	v.SetDefault("window.fetch_timeout", "500ms")

	v.SetDefault("cache.backend", CacheBackendMemory)
	v.SetDefault("cache.default_ttl", "300s")
	v.SetDefault("cache.current_price_ttl", "60s")
	v.SetDefault("cache.sweep_interval", "60s")
	v.SetDefault("cache.key_prefix", "statspulse:")
	v.SetDefault("cache.warm_on_startup", true)
	v.SetDefault("cache.warm_tickers", []string{})

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 100)
	v.SetDefault("rate_limit.window", "15m")

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.exporter", "stdout")
	v.SetDefault("telemetry.otlp_endpoint", "localhost:4318")
	v.SetDefault("telemetry.service_name", "statspulse-go")
	v.SetDefault("telemetry.service_version", "1.0.0")
	v.SetDefault("telemetry.sample_rate", 1.0)

	v.SetDefault("sentry.enabled", false)
	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.environment", "")
	v.SetDefault("sentry.release", "")
	v.SetDefault("sentry.traces_sample_rate", 0.0)
}
