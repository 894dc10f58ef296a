package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/irfndi/statspulse-go/internal/services"
)

// CacheAnalyticsInterface defines the interface for cache analytics operations
type CacheAnalyticsInterface interface {
	GetStats(category string) services.CacheStats
	GetMetrics(ctx context.Context) (*services.CacheMetrics, error)
	ResetStats()
}

// CacheHandler handles cache monitoring endpoints
type CacheHandler struct {
	cacheAnalytics CacheAnalyticsInterface
}

// NewCacheHandler creates a new cache handler
func NewCacheHandler(cacheAnalytics CacheAnalyticsInterface) *CacheHandler {
	return &CacheHandler{
		cacheAnalytics: cacheAnalytics,
	}
}

// GetCacheStats returns hit/miss counters for every category and the live key count.
func (h *CacheHandler) GetCacheStats(c *gin.Context) {
	metrics, err := h.cacheAnalytics.GetMetrics(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to get cache metrics",
			"message": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, metrics)
}

// GetCacheStatsByCategory returns cache statistics for a specific category
func (h *CacheHandler) GetCacheStatsByCategory(c *gin.Context) {
	category := c.Param("category")
	c.JSON(http.StatusOK, gin.H{
		"category": category,
		"stats":    h.cacheAnalytics.GetStats(category),
	})
}

// ResetCacheStats clears every counter.
func (h *CacheHandler) ResetCacheStats(c *gin.Context) {
	h.cacheAnalytics.ResetStats()
	c.JSON(http.StatusOK, gin.H{"message": "Cache statistics reset"})
}
