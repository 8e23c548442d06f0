package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/techdesk/helpdesk-service/internal/persistence"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	pool  *pgxpool.Pool
	redis *persistence.Redis
}

// NewHealthHandler constructs handler.
func NewHealthHandler(pool *pgxpool.Pool, redis *persistence.Redis) *HealthHandler {
	return &HealthHandler{pool: pool, redis: redis}
}

// Live GET /health/live.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Ready GET /health/ready — verifies backing store connectivity.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	checks := fiber.Map{"postgres": "ok", "redis": "ok"}
	healthy := true

	if h.pool == nil {
		checks["postgres"] = "not configured"
		healthy = false
	} else if err := h.pool.Ping(c.UserContext()); err != nil {
		checks["postgres"] = err.Error()
		healthy = false
	}
	if err := h.redis.Ping(c.UserContext()); err != nil {
		checks["redis"] = err.Error()
		healthy = false
	}

	status := "ready"
	if !healthy {
		status = "degraded"
		c.Status(http.StatusServiceUnavailable)
	}
	return c.JSON(fiber.Map{"status": status, "checks": checks})
}
