// internal/handlers/health.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/farmfresh/farm-backend/internal/database"
)

type HealthHandler struct {
	factory *database.Factory
}

func NewHealthHandler(factory *database.Factory) *HealthHandler {
	return &HealthHandler{factory: factory}
}

// GET /health
func (h *HealthHandler) Check(c *gin.Context) {
	dbStatus := "connected"
	if _, err := h.factory.Get(c.Request.Context()); err != nil {
		dbStatus = "unavailable"
	}

	status := http.StatusOK
	overall := "healthy"
	if dbStatus != "connected" {
		status = http.StatusServiceUnavailable
		overall = "degraded"
	}

	c.JSON(status, gin.H{
		"status":   overall,
		"backend":  h.factory.Backend(),
		"database": dbStatus,
		"version":  "1.0.0",
	})
}
