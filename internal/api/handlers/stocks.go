package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/irfndi/statspulse-go/internal/middleware"
	"github.com/irfndi/statspulse-go/internal/models"
	"github.com/irfndi/statspulse-go/internal/utils"
	"github.com/sirupsen/logrus"
)

// StockAnalytics is the analytics service as seen by the HTTP layer.
type StockAnalytics interface {
	GetAllStocks(ctx context.Context) (models.StocksResponse, error)
	GetCurrentPrice(ctx context.Context, ticker string) (models.StockPriceResponse, error)
	GetPriceHistory(ctx context.Context, ticker string, minutes int) (models.PriceHistoryResponse, error)
	GetAveragePrice(ctx context.Context, ticker string, minutes int) (models.AveragePriceResponse, error)
	GetCorrelation(ctx context.Context, ticker1, ticker2 string, minutes int) (models.CorrelationResponse, error)
}

// StocksHandler serves the stock analytics endpoints.
type StocksHandler struct {
	analytics StockAnalytics
	logger    *logrus.Logger
}

func NewStocksHandler(analytics StockAnalytics, logger *logrus.Logger) *StocksHandler {
	return &StocksHandler{
		analytics: analytics,
		logger:    logger,
	}
}

// GetStocks handles GET /stocks.
func (h *StocksHandler) GetStocks(c *gin.Context) {
	resp, err := h.analytics.GetAllStocks(c.Request.Context())
	if err != nil {
		writeAnalyticsError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetStock handles GET /stocks/:ticker.
func (h *StocksHandler) GetStock(c *gin.Context) {
	ticker := c.Param("ticker")
	middleware.AddSpanAttribute(c, "stock.ticker", ticker)

	resp, err := h.analytics.GetCurrentPrice(c.Request.Context(), ticker)
	if err != nil {
		writeAnalyticsError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetHistory handles GET /stocks/:ticker/history.
func (h *StocksHandler) GetHistory(c *gin.Context) {
	ticker := c.Param("ticker")
	minutes, err := parseMinutes(c)
	if err != nil {
		writeAnalyticsError(c, h.logger, err)
		return
	}
	middleware.AddSpanAttribute(c, "stock.ticker", ticker)
	middleware.AddSpanAttribute(c, "stock.minutes", minutes)

	resp, err := h.analytics.GetPriceHistory(c.Request.Context(), ticker, minutes)
	if err != nil {
		writeAnalyticsError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetAverage handles GET /stocks/:ticker/average.
func (h *StocksHandler) GetAverage(c *gin.Context) {
	ticker := c.Param("ticker")
	minutes, err := parseMinutes(c)
	if err != nil {
		writeAnalyticsError(c, h.logger, err)
		return
	}
	middleware.AddSpanAttribute(c, "stock.ticker", ticker)
	middleware.AddSpanAttribute(c, "stock.minutes", minutes)

	resp, err := h.analytics.GetAveragePrice(c.Request.Context(), ticker, minutes)
	if err != nil {
		writeAnalyticsError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetCorrelation handles GET /correlation?ticker1=&ticker2=&minutes=.
func (h *StocksHandler) GetCorrelation(c *gin.Context) {
	ticker1 := strings.TrimSpace(c.Query("ticker1"))
	ticker2 := strings.TrimSpace(c.Query("ticker2"))
	if ticker1 == "" || ticker2 == "" {
		field := "ticker1"
		if ticker1 != "" {
			field = "ticker2"
		}
		writeAnalyticsError(c, h.logger, utils.NewValidationError(field, "Both ticker1 and ticker2 parameters are required"))
		return
	}
	minutes, err := parseMinutes(c)
	if err != nil {
		writeAnalyticsError(c, h.logger, err)
		return
	}

	resp, err := h.analytics.GetCorrelation(c.Request.Context(), ticker1, ticker2, minutes)
	if err != nil {
		writeAnalyticsError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
