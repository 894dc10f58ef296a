package services

import (
	"context"

	"github.com/irfndi/statspulse-go/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockNumberSource implements NumberSource for testing
type MockNumberSource struct {
	mock.Mock
}

func (m *MockNumberSource) GetNumbers(ctx context.Context, kind models.NumberKind) ([]float64, error) {
	args := m.Called(ctx, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float64), args.Error(1)
}

// MockPriceSource implements PriceSource for testing
type MockPriceSource struct {
	mock.Mock
}

func (m *MockPriceSource) GetStocks(ctx context.Context) (map[string]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

func (m *MockPriceSource) GetStock(ctx context.Context, ticker string) (models.PriceSample, error) {
	args := m.Called(ctx, ticker)
	return args.Get(0).(models.PriceSample), args.Error(1)
}

func (m *MockPriceSource) GetPriceHistory(ctx context.Context, ticker string, minutes int) ([]models.PriceSample, error) {
	args := m.Called(ctx, ticker, minutes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PriceSample), args.Error(1)
}
