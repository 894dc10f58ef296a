package services

import (
	"context"
	"time"

	"github.com/irfndi/statspulse-go/internal/logging"
	"github.com/sirupsen/logrus"
)

// CacheWarmingService handles cache warming on application startup.
type CacheWarmingService struct {
	analytics *AnalyticsService
	tickers   []string
	logger    *logrus.Logger
}

// NewCacheWarmingService creates a warmer for the catalog and the current price and
// default history of each ticker.
func NewCacheWarmingService(analytics *AnalyticsService, tickers []string, logger *logrus.Logger) *CacheWarmingService {
	return &CacheWarmingService{
		analytics: analytics,
		tickers:   tickers,
		logger:    logger,
	}
}

// WarmCache loads everything through the analytics service so it lands in the cache
// under the usual keys. Failures are logged and skipped. It returns the number of
// entries that failed to load.
func (c *CacheWarmingService) WarmCache(ctx context.Context) int {
	logger := logging.WithComponent(c.logger, "cache_warming")
	logger.Info("Starting cache warming")
	start := time.Now()
	failed := 0

	if _, err := c.analytics.GetAllStocks(ctx); err != nil {
		logger.WithError(err).Warn("Failed to warm stock catalog")
		failed++
	}

	for _, ticker := range c.tickers {
		if ctx.Err() != nil {
			break
		}
		log := logger.WithField("ticker", ticker)
		if _, err := c.analytics.GetCurrentPrice(ctx, ticker); err != nil {
			log.WithError(err).Warn("Failed to warm current price")
			failed++
		}
		if _, err := c.analytics.GetPriceHistory(ctx, ticker, DefaultMinutes); err != nil {
			log.WithError(err).Warn("Failed to warm price history")
			failed++
		}
	}

	logger.WithFields(logrus.Fields{
		"duration_ms": time.Since(start).Milliseconds(),
		"tickers":     len(c.tickers),
		"failed":      failed,
	}).Info("Cache warming completed")
	return failed
}
