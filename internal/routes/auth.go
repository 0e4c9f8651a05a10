package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fiberhub/portal/internal/auth"
)

// RegisterAuthRoutes wires authentication endpoints. Register and login share
// the rate limiter since both accept credentials.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler, rateLimiter fiber.Handler) {
	group := r.Group("/auth")
	if rateLimiter != nil {
		group.Post("/register", rateLimiter, h.Register)
		group.Post("/login", rateLimiter, h.Login)
	} else {
		group.Post("/register", h.Register)
		group.Post("/login", h.Login)
	}
	group.Post("/refresh", h.Refresh)
}
