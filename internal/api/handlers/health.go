package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/sirupsen/logrus"
)

var startTime = time.Now()

// CredentialStatus reports whether an access credential is held.
type CredentialStatus interface {
	Configured() bool
}

// HealthChecker is a dependency probed by /health.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type HealthHandler struct {
	creds   CredentialStatus
	checks  map[string]HealthChecker
	version string
	logger  *logrus.Logger
}

type SystemInfo struct {
	MemoryUsedPercent float64 `json:"memory_used_percent"`
	MemoryAvailableMB uint64  `json:"memory_available_mb"`
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Auth      string            `json:"auth"`
	Services  map[string]string `json:"services"`
	Version   string            `json:"version"`
	Uptime    string            `json:"uptime"`
	System    *SystemInfo       `json:"system,omitempty"`
}

// NewHealthHandler creates a handler. checks names optional dependencies, such as
// the Redis cache backend.
func NewHealthHandler(creds CredentialStatus, checks map[string]HealthChecker, version string, logger *logrus.Logger) *HealthHandler {
	return &HealthHandler{
		creds:   creds,
		checks:  checks,
		version: version,
		logger:  logger,
	}
}

// HealthCheck handles GET /health. A failing dependency turns the status to DEGRADED
// and the code to 503.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	services := make(map[string]string, len(h.checks))
	status := "UP"
	for name, check := range h.checks {
		if err := check.HealthCheck(ctx); err != nil {
			h.logger.WithError(err).WithField("service", name).Warn("Health check failed")
			services[name] = "unhealthy: " + err.Error()
			status = "DEGRADED"
			continue
		}
		services[name] = "healthy"
	}

	auth := "Missing"
	if h.creds.Configured() {
		auth = "Configured"
	}

	response := HealthResponse{
		Status:    status,
		Timestamp: time.Now(),
		Auth:      auth,
		Services:  services,
		Version:   h.version,
		Uptime:    time.Since(startTime).Round(time.Second).String(),
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		response.System = &SystemInfo{
			MemoryUsedPercent: vm.UsedPercent,
			MemoryAvailableMB: vm.Available / 1024 / 1024,
		}
	}

	code := http.StatusOK
	if status != "UP" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, response)
}
