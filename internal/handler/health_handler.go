package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/cart-coupon-service/internal/service"
)

// Pinger is an interface for health check ping operations.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	pool Pinger
}

// NewHealthHandler creates a new HealthHandler with the given database pool.
func NewHealthHandler(pool Pinger) *HealthHandler {
	return &HealthHandler{pool: pool}
}

// Check pings the database. It replies 200 with data {"status":"healthy"}
// or 503 with data {"status":"unhealthy"} when the database is unreachable.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	if err := h.pool.Ping(c.Context()); err != nil {
		log.Error().Err(err).Msg("health check failed: database unreachable")
		return c.Status(fiber.StatusServiceUnavailable).JSON(Response{
			StatusCode: fiber.StatusServiceUnavailable,
			Data:       fiber.Map{"status": "unhealthy"},
			Message:    "database connection failed",
			Error:      service.KindInternal.String(),
		})
	}
	return respond(c, fiber.StatusOK, fiber.Map{"status": "healthy"}, "ok")
}
