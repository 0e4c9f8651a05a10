package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fiberhub/portal/internal/resident"
)

// RegisterResidentRoutes wires the resident's own dashboard endpoints.
func RegisterResidentRoutes(r fiber.Router, h *resident.Handler) {
	me := r.Group("/me")
	me.Get("", h.Me)
	me.Patch("/alias", h.UpdateAlias)
	me.Get("/history", h.History)
	me.Post("/messages", h.SendMessage)
	me.Post("/messages/read", h.MarkMessagesRead)
}
