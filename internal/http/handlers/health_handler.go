package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/complaint-voice-backend/internal/bridge"
)

// HealthHandler предоставляет endpoint для проверки здоровья сервиса.
type HealthHandler struct {
	db       *sqlx.DB
	registry *bridge.Registry
}

// NewHealthHandler создаёт новый health handler.
func NewHealthHandler(db *sqlx.DB, registry *bridge.Registry) *HealthHandler {
	return &HealthHandler{db: db, registry: registry}
}

// HealthResponse представляет ответ health check.
type HealthResponse struct {
	Status      string            `json:"status"`
	Timestamp   time.Time         `json:"timestamp"`
	ActiveCalls int               `json:"active_calls"`
	Checks      map[string]string `json:"checks"`
}

// Health обрабатывает GET /health.
func (h *HealthHandler) Health(c *gin.Context) {
	checks := make(map[string]string)
	status := "healthy"

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		checks["database"] = "unhealthy: " + err.Error()
		status = "unhealthy"
	} else {
		checks["database"] = "healthy"
	}

	stats := h.db.Stats()
	if stats.OpenConnections > stats.MaxOpenConnections {
		checks["connection_pool"] = "warning: too many connections"
	} else {
		checks["connection_pool"] = "healthy"
	}

	statusCode := http.StatusOK
	if status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	activeCalls := 0
	if h.registry != nil {
		activeCalls = h.registry.Len()
	}

	c.JSON(statusCode, HealthResponse{
		Status:      status,
		Timestamp:   time.Now(),
		ActiveCalls: activeCalls,
		Checks:      checks,
	})
}
