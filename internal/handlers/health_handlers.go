package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"maintitrack/internal/services"
)

// HealthHandlers handles health check endpoints
type HealthHandlers struct {
	redis  *redis.Client
	proofs services.ProofService
}

// NewHealthHandlers creates a new health handlers instance
func NewHealthHandlers(redisClient *redis.Client, proofs services.ProofService) *HealthHandlers {
	return &HealthHandlers{redis: redisClient, proofs: proofs}
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

// HealthCheck reports the status of the persistence and storage collaborators.
// The service stays "degraded" rather than failing outright: the ledger keeps
// serving from memory when a collaborator is down.
func (h *HealthHandlers) HealthCheck(c echo.Context) error {
	ctx := c.Request().Context()
	health := &HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  make(map[string]string),
	}

	if err := h.redis.Ping(ctx).Err(); err != nil {
		health.Services["redis"] = "unhealthy: " + err.Error()
		health.Status = "degraded"
	} else {
		health.Services["redis"] = "healthy"
	}

	if h.proofs != nil {
		if h.proofs.Healthy(ctx) {
			health.Services["minio"] = "healthy"
		} else {
			health.Services["minio"] = "unhealthy"
			health.Status = "degraded"
		}
	}

	status := http.StatusOK
	if health.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, health)
}

// Readiness is a lightweight liveness probe.
func (h *HealthHandlers) Readiness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
