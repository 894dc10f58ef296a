package models

import "time"

// PriceSample is one point of an upstream price history.
type PriceSample struct {
	Price         float64   `json:"price"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
}

// Prices extracts the numeric prices of a history, preserving order.
func Prices(history []PriceSample) []float64 {
	prices := make([]float64, len(history))
	for i, s := range history {
		prices[i] = s.Price
	}
	return prices
}

// StocksResponse is the cached catalog of tradable stocks, keyed by company name.
type StocksResponse struct {
	Stocks map[string]string `json:"stocks"`
}

// StockPriceResponse is the latest known price for one ticker.
type StockPriceResponse struct {
	Stock         string    `json:"stock"`
	Price         float64   `json:"price"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
}

// PriceHistoryResponse is the trailing price history for one ticker.
type PriceHistoryResponse struct {
	Stock        string        `json:"stock"`
	TimeRange    string        `json:"timeRange"`
	PriceHistory []PriceSample `json:"priceHistory"`
}

// AveragePriceResponse is a price history together with its mean.
type AveragePriceResponse struct {
	Stock        string        `json:"stock"`
	TimeRange    string        `json:"timeRange"`
	AveragePrice float64       `json:"averagePrice"`
	PriceHistory []PriceSample `json:"priceHistory"`
}

// StockSeries is one side of a correlation result.
type StockSeries struct {
	AveragePrice float64       `json:"averagePrice"`
	PriceHistory []PriceSample `json:"priceHistory"`
}

// CorrelationResponse is the Pearson correlation of two truncated price histories.
type CorrelationResponse struct {
	Correlation float64                `json:"correlation"`
	TimeRange   string                 `json:"timeRange"`
	Stocks      map[string]StockSeries `json:"stocks"`
}
