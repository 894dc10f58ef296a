package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/irfndi/statspulse-go/internal/middleware"
	"github.com/irfndi/statspulse-go/internal/models"
	"github.com/irfndi/statspulse-go/internal/services"
	"github.com/irfndi/statspulse-go/internal/utils"
)

// NumberFetcher feeds the sliding window.
type NumberFetcher interface {
	Fetch(ctx context.Context, kind models.NumberKind) (models.NumbersResponse, error)
}

// NumbersHandler serves the sliding-window endpoint.
type NumbersHandler struct {
	numbers NumberFetcher
}

func NewNumbersHandler(numbers NumberFetcher) *NumbersHandler {
	return &NumbersHandler{numbers: numbers}
}

// GetNumbers handles GET /numbers/:kind.
//
// Every response except 400 carries the window state. Upstream failures other than
// a rejected credential are answered with 200 and an error field.
func (h *NumbersHandler) GetNumbers(c *gin.Context) {
	kind, ok := models.ParseNumberKind(c.Param("kind"))
	if !ok {
		writeValidationError(c, &utils.ValidationError{
			Field:   "kind",
			Message: "Invalid number ID. Use p (prime), f (fibonacci), e (even), or r (random).",
		})
		return
	}
	middleware.AddSpanAttribute(c, "numbers.kind", string(kind))

	resp, err := h.numbers.Fetch(c.Request.Context(), kind)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, resp)
	case errors.Is(err, services.ErrCredentialUnavailable):
		resp.Error = "Service unavailable: access token not configured"
		c.JSON(http.StatusServiceUnavailable, resp)
	case errors.Is(err, services.ErrUnauthorized):
		resp.Error = "Authorization failed: access token expired or invalid"
		c.JSON(http.StatusUnauthorized, resp)
	default:
		middleware.RecordError(c, err, "failed to fetch numbers")
		resp.Error = "Failed to fetch numbers from third-party API"
		c.JSON(http.StatusOK, resp)
	}
}
