package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupHealthRouter(h *HealthHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/health", h.HealthCheck)
	return router
}

func TestHealthHandler_HealthCheck(t *testing.T) {
	tests := []struct {
		name           string
		configured     bool
		redisError     error
		expectedStatus int
		expectedAuth   string
		expectedState  string
	}{
		{"configured and healthy", true, nil, http.StatusOK, "Configured", "UP"},
		{"missing credential still up", false, nil, http.StatusOK, "Missing", "UP"},
		{"redis down", true, errors.New("connection refused"), http.StatusServiceUnavailable, "Configured", "DEGRADED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			redis := &MockHealthChecker{}
			redis.On("HealthCheck", mock.Anything).Return(tt.redisError)

			h := NewHealthHandler(staticCredential(tt.configured), map[string]HealthChecker{"redis": redis}, "1.0.0", quietLogger())
			w := serve(setupHealthRouter(h), "/health")

			assert.Equal(t, tt.expectedStatus, w.Code)
			var body HealthResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.expectedState, body.Status)
			assert.Equal(t, tt.expectedAuth, body.Auth)
			assert.Equal(t, "1.0.0", body.Version)
			assert.NotEmpty(t, body.Uptime)
			assert.False(t, body.Timestamp.IsZero())
			if tt.redisError == nil {
				assert.Equal(t, "healthy", body.Services["redis"])
			} else {
				assert.Contains(t, body.Services["redis"], "unhealthy")
			}
			redis.AssertExpectations(t)
		})
	}
}

func TestHealthHandler_NoDependencies(t *testing.T) {
	h := NewHealthHandler(staticCredential(true), nil, "dev", quietLogger())
	w := serve(setupHealthRouter(h), "/health")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"UP"`)
}
