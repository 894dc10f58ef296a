package api

import (
	"github.com/gin-gonic/gin"
	"github.com/irfndi/statspulse-go/internal/api/handlers"
	"github.com/irfndi/statspulse-go/internal/middleware"
	"github.com/sirupsen/logrus"
)

// Dependencies are the services the HTTP layer is built on.
type Dependencies struct {
	Numbers        handlers.NumberFetcher
	Analytics      handlers.StockAnalytics
	CacheAnalytics handlers.CacheAnalyticsInterface
	Credentials    handlers.CredentialStatus
	HealthChecks   map[string]handlers.HealthChecker
	// RateLimiter guards the stock analytics routes. Nil disables limiting.
	RateLimiter *middleware.RateLimiter
	Version     string
	Logger      *logrus.Logger
}

func SetupRoutes(router *gin.Engine, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler(deps.Credentials, deps.HealthChecks, deps.Version, deps.Logger)
	numbersHandler := handlers.NewNumbersHandler(deps.Numbers)
	stocksHandler := handlers.NewStocksHandler(deps.Analytics, deps.Logger)
	cacheHandler := handlers.NewCacheHandler(deps.CacheAnalytics)

	router.GET("/health", healthHandler.HealthCheck)

	// Sliding window
	router.GET("/numbers/:kind", numbersHandler.GetNumbers)

	// Stock analytics
	analytics := router.Group("")
	if deps.RateLimiter != nil {
		analytics.Use(deps.RateLimiter.Middleware())
	}
	{
		analytics.GET("/stocks", stocksHandler.GetStocks)
		analytics.GET("/stocks/:ticker", stocksHandler.GetStock)
		analytics.GET("/stocks/:ticker/history", stocksHandler.GetHistory)
		analytics.GET("/stocks/:ticker/average", stocksHandler.GetAverage)
		analytics.GET("/correlation", stocksHandler.GetCorrelation)
	}

	// Cache monitoring
	cache := router.Group("/cache")
	{
		cache.GET("/stats", cacheHandler.GetCacheStats)
		cache.GET("/stats/:category", cacheHandler.GetCacheStatsByCategory)
		cache.POST("/stats/reset", cacheHandler.ResetCacheStats)
	}
}
