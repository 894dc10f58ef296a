package handlers

import (
	"context"
	"io"

	"github.com/irfndi/statspulse-go/internal/models"
	"github.com/irfndi/statspulse-go/internal/services"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// MockStockAnalytics is a mock implementation of StockAnalytics
type MockStockAnalytics struct {
	mock.Mock
}

func (m *MockStockAnalytics) GetAllStocks(ctx context.Context) (models.StocksResponse, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.StocksResponse), args.Error(1)
}

func (m *MockStockAnalytics) GetCurrentPrice(ctx context.Context, ticker string) (models.StockPriceResponse, error) {
	args := m.Called(ctx, ticker)
	return args.Get(0).(models.StockPriceResponse), args.Error(1)
}

func (m *MockStockAnalytics) GetPriceHistory(ctx context.Context, ticker string, minutes int) (models.PriceHistoryResponse, error) {
	args := m.Called(ctx, ticker, minutes)
	return args.Get(0).(models.PriceHistoryResponse), args.Error(1)
}

func (m *MockStockAnalytics) GetAveragePrice(ctx context.Context, ticker string, minutes int) (models.AveragePriceResponse, error) {
	args := m.Called(ctx, ticker, minutes)
	return args.Get(0).(models.AveragePriceResponse), args.Error(1)
}

func (m *MockStockAnalytics) GetCorrelation(ctx context.Context, ticker1, ticker2 string, minutes int) (models.CorrelationResponse, error) {
	args := m.Called(ctx, ticker1, ticker2, minutes)
	return args.Get(0).(models.CorrelationResponse), args.Error(1)
}

// MockNumberFetcher is a mock implementation of NumberFetcher
type MockNumberFetcher struct {
	mock.Mock
}

func (m *MockNumberFetcher) Fetch(ctx context.Context, kind models.NumberKind) (models.NumbersResponse, error) {
	args := m.Called(ctx, kind)
	return args.Get(0).(models.NumbersResponse), args.Error(1)
}

// MockHealthChecker is a mock implementation of HealthChecker
type MockHealthChecker struct {
	mock.Mock
}

func (m *MockHealthChecker) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockCacheAnalytics is a mock implementation of CacheAnalyticsInterface
type MockCacheAnalytics struct {
	mock.Mock
}

func (m *MockCacheAnalytics) GetStats(category string) services.CacheStats {
	args := m.Called(category)
	return args.Get(0).(services.CacheStats)
}

func (m *MockCacheAnalytics) GetMetrics(ctx context.Context) (*services.CacheMetrics, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.CacheMetrics), args.Error(1)
}

func (m *MockCacheAnalytics) ResetStats() {
	m.Called()
}

type staticCredential bool

func (s staticCredential) Configured() bool { return bool(s) }
