package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/irfndi/statspulse-go/internal/middleware"
	"github.com/irfndi/statspulse-go/internal/services"
	"github.com/irfndi/statspulse-go/internal/utils"
	"github.com/sirupsen/logrus"
)

// parseMinutes reads the optional minutes query parameter.
func parseMinutes(c *gin.Context) (int, error) {
	raw, ok := c.GetQuery("minutes")
	if !ok || raw == "" {
		return services.DefaultMinutes, nil
	}
	minutes, err := strconv.Atoi(raw)
	if err != nil || minutes <= 0 {
		return 0, utils.NewValidationErrorf("minutes", "minutes must be a positive integer, got %q", raw)
	}
	return minutes, nil
}

// writeValidationError answers 400 naming the rejected parameter.
func writeValidationError(c *gin.Context, ve *utils.ValidationError) {
	middleware.AddSpanAttribute(c, "validation.field", ve.Field)
	c.JSON(http.StatusBadRequest, gin.H{"error": ve.Message, "field": ve.Field})
}

// writeAnalyticsError maps a service error onto an HTTP response.
func writeAnalyticsError(c *gin.Context, logger *logrus.Logger, err error) {
	// Rejected input is the caller's fault, not a failed span.
	if !utils.IsValidationError(err) {
		middleware.RecordError(c, err, "analytics request failed")
	}

	var ve *utils.ValidationError
	switch {
	case errors.As(err, &ve):
		writeValidationError(c, ve)
	case errors.Is(err, services.ErrCredentialUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Service unavailable: access token not configured",
		})
	case errors.Is(err, services.ErrUpstreamFailure):
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "Failed to fetch data from upstream",
			"message": err.Error(),
		})
	default:
		logger.WithFields(logrus.Fields{
			"path":       c.Request.URL.Path,
			"request_id": middleware.GetRequestID(c),
		}).WithError(err).Error("Unhandled analytics error")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal Server Error",
			"message": "Something went wrong",
		})
	}
}
