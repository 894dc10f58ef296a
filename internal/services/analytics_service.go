package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/irfndi/statspulse-go/internal/cache"
	"github.com/irfndi/statspulse-go/internal/config"
	"github.com/irfndi/statspulse-go/internal/logging"
	"github.com/irfndi/statspulse-go/internal/models"
	"github.com/irfndi/statspulse-go/internal/observability"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultMinutes is the history window used when the caller gives none.
const DefaultMinutes = 50

// Cache categories reported by CacheAnalyticsService.
const (
	CategoryStocks      = "stocks"
	CategoryStock       = "stock"
	CategoryHistory     = "history"
	CategoryAverage     = "average"
	CategoryCorrelation = "correlation"
)

// PriceSource is the upstream side of the analytics service.
type PriceSource interface {
	GetStocks(ctx context.Context) (map[string]string, error)
	GetStock(ctx context.Context, ticker string) (models.PriceSample, error)
	GetPriceHistory(ctx context.Context, ticker string, minutes int) ([]models.PriceSample, error)
}

// AnalyticsService answers stock queries from the cache, falling back to upstream
// and caching what it computes.
type AnalyticsService struct {
	source          PriceSource
	store           cache.Store
	defaultTTL      time.Duration
	currentPriceTTL time.Duration
	logger          *logrus.Logger
	stats           *CacheAnalyticsService
	tracer          trace.Tracer
}

// NewAnalyticsService creates an AnalyticsService. stats may be nil.
func NewAnalyticsService(source PriceSource, store cache.Store, cfg config.CacheConfig, logger *logrus.Logger, stats *CacheAnalyticsService) *AnalyticsService {
	currentPriceTTL := cfg.CurrentPriceTTL
	if currentPriceTTL <= 0 {
		currentPriceTTL = 60 * time.Second
	}
	return &AnalyticsService{
		source:          source,
		store:           store,
		defaultTTL:      cfg.DefaultTTL,
		currentPriceTTL: currentPriceTTL,
		logger:          logger,
		stats:           stats,
		tracer:          otel.Tracer("statspulse/services"),
	}
}

// NormalizeTicker trims and upper-cases a ticker symbol.
func NormalizeTicker(ticker string) string {
	return cases.Upper(language.Und).String(strings.TrimSpace(ticker))
}

func timeRange(minutes int) string {
	return strconv.Itoa(minutes) + " minutes"
}

// GetAllStocks returns the catalog of tradable stocks.
func (s *AnalyticsService) GetAllStocks(ctx context.Context) (models.StocksResponse, error) {
	ctx, span := s.tracer.Start(ctx, "AnalyticsService.GetAllStocks")
	defer span.End()

	return cached(ctx, s, span, CategoryStocks, "all_stocks", s.defaultTTL, func(ctx context.Context) (models.StocksResponse, error) {
		stocks, err := s.source.GetStocks(ctx)
		if err != nil {
			return models.StocksResponse{}, err
		}
		return models.StocksResponse{Stocks: stocks}, nil
	})
}

// GetCurrentPrice returns the latest price of ticker. It is cached for the short
// current-price TTL.
func (s *AnalyticsService) GetCurrentPrice(ctx context.Context, ticker string) (models.StockPriceResponse, error) {
	ticker = NormalizeTicker(ticker)
	ctx, span := s.tracer.Start(ctx, "AnalyticsService.GetCurrentPrice",
		trace.WithAttributes(attribute.String("stock.ticker", ticker)),
	)
	defer span.End()

	return cached(ctx, s, span, CategoryStock, "stock_"+ticker, s.currentPriceTTL, func(ctx context.Context) (models.StockPriceResponse, error) {
		sample, err := s.source.GetStock(ctx, ticker)
		if err != nil {
			return models.StockPriceResponse{}, err
		}
		return models.StockPriceResponse{
			Stock:         ticker,
			Price:         sample.Price,
			LastUpdatedAt: sample.LastUpdatedAt,
		}, nil
	})
}

// GetPriceHistory returns the samples of ticker over the trailing minutes.
func (s *AnalyticsService) GetPriceHistory(ctx context.Context, ticker string, minutes int) (models.PriceHistoryResponse, error) {
	ticker = NormalizeTicker(ticker)
	ctx, span := s.tracer.Start(ctx, "AnalyticsService.GetPriceHistory",
		trace.WithAttributes(
			attribute.String("stock.ticker", ticker),
			attribute.Int("stock.minutes", minutes),
		),
	)
	defer span.End()

	key := fmt.Sprintf("history_%s_%d", ticker, minutes)
	return cached(ctx, s, span, CategoryHistory, key, s.defaultTTL, func(ctx context.Context) (models.PriceHistoryResponse, error) {
		history, err := s.source.GetPriceHistory(ctx, ticker, minutes)
		if err != nil {
			return models.PriceHistoryResponse{}, err
		}
		return models.PriceHistoryResponse{
			Stock:        ticker,
			TimeRange:    timeRange(minutes),
			PriceHistory: history,
		}, nil
	})
}

// GetAveragePrice returns the history of ticker together with its mean price,
// rounded to 6 decimal places.
func (s *AnalyticsService) GetAveragePrice(ctx context.Context, ticker string, minutes int) (models.AveragePriceResponse, error) {
	ticker = NormalizeTicker(ticker)
	ctx, span := s.tracer.Start(ctx, "AnalyticsService.GetAveragePrice",
		trace.WithAttributes(
			attribute.String("stock.ticker", ticker),
			attribute.Int("stock.minutes", minutes),
		),
	)
	defer span.End()

	key := fmt.Sprintf("average_%s_%d", ticker, minutes)
	return cached(ctx, s, span, CategoryAverage, key, s.defaultTTL, func(ctx context.Context) (models.AveragePriceResponse, error) {
		history, err := s.source.GetPriceHistory(ctx, ticker, minutes)
		if err != nil {
			return models.AveragePriceResponse{}, err
		}
		return models.AveragePriceResponse{
			Stock:        ticker,
			TimeRange:    timeRange(minutes),
			AveragePrice: RoundTo(MeanPrice(history), 6),
			PriceHistory: history,
		}, nil
	})
}

// GetCorrelation returns the Pearson correlation of two price histories.
//
// Both histories are fetched concurrently and the first failure fails the whole
// operation. The longer history is truncated to the length of the shorter by
// keeping its prefix. With fewer than two aligned samples the correlation is 0.
func (s *AnalyticsService) GetCorrelation(ctx context.Context, ticker1, ticker2 string, minutes int) (models.CorrelationResponse, error) {
	ticker1 = NormalizeTicker(ticker1)
	ticker2 = NormalizeTicker(ticker2)
	ctx, span := s.tracer.Start(ctx, "AnalyticsService.GetCorrelation",
		trace.WithAttributes(
			attribute.String("stock.ticker1", ticker1),
			attribute.String("stock.ticker2", ticker2),
			attribute.Int("stock.minutes", minutes),
		),
	)
	defer span.End()

	key := fmt.Sprintf("correlation_%s_%s_%d", ticker1, ticker2, minutes)
	return cached(ctx, s, span, CategoryCorrelation, key, s.defaultTTL, func(ctx context.Context) (models.CorrelationResponse, error) {
		var history1, history2 []models.PriceSample

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			history1, err = s.source.GetPriceHistory(gctx, ticker1, minutes)
			return err
		})
		g.Go(func() error {
			var err error
			history2, err = s.source.GetPriceHistory(gctx, ticker2, minutes)
			return err
		})
		if err := g.Wait(); err != nil {
			return models.CorrelationResponse{}, err
		}

		n := min(len(history1), len(history2))
		history1 = history1[:n]
		history2 = history2[:n]

		correlation := 0.0
		if n > 1 {
			var err error
			correlation, err = PearsonCorrelation(models.Prices(history1), models.Prices(history2))
			if err != nil {
				return models.CorrelationResponse{}, err
			}
		}

		return models.CorrelationResponse{
			Correlation: correlation,
			TimeRange:   timeRange(minutes),
			Stocks: map[string]models.StockSeries{
				ticker1: {AveragePrice: RoundTo(MeanPrice(history1), 6), PriceHistory: history1},
				ticker2: {AveragePrice: RoundTo(MeanPrice(history2), 6), PriceHistory: history2},
			},
		}, nil
	})
}

// cached serves key from the store or computes it with load. Load errors are
// classified and never cached. Store errors are logged and do not fail the call.
func cached[T any](ctx context.Context, s *AnalyticsService, span trace.Span, category, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	log := s.logger.WithFields(logrus.Fields{"category": category, "key": key})

	value, ok, err := cache.GetJSON[T](ctx, s.store, key)
	if err != nil {
		log.WithError(err).Warn("Cache read failed, treating as miss")
	}
	if ok {
		s.stats.RecordHit(category)
		span.SetAttributes(attribute.Bool("cache.hit", true))
		logging.LogCacheOperation(s.logger, category, key, true)
		return value, nil
	}
	s.stats.RecordMiss(category)
	span.SetAttributes(attribute.Bool("cache.hit", false))
	logging.LogCacheOperation(s.logger, category, key, false)

	value, err = load(ctx)
	if err != nil {
		var zero T
		err = classifyUpstreamError(err, false)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.WithError(err).Error("Failed to load analytics data")
		if !errors.Is(err, ErrCredentialUnavailable) {
			observability.CaptureException(ctx, err, map[string]string{"cache.category": category, "cache.key": key})
		}
		return zero, err
	}

	if err := cache.SetJSON(ctx, s.store, key, value, ttl); err != nil {
		log.WithError(err).Warn("Cache write failed")
	}
	return value, nil
}
