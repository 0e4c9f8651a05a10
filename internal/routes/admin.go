package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fiberhub/portal/internal/admin"
)

// RegisterAdminRoutes wires the staff management surface. The group is
// already gated by JWTAuth plus RequireAdmin.
func RegisterAdminRoutes(r fiber.Router, h *admin.Handler) {
	r.Get("/residents", h.ListResidents)
	r.Post("/residents", h.CreateResident)
	r.Get("/residents/:id", h.GetResident)
	r.Delete("/residents/:id", h.DeleteResident)

	r.Patch("/residents/:id/profile", h.UpdateProfile)
	r.Patch("/residents/:id/service", h.UpdateService)

	r.Post("/residents/:id/history", h.AddHistoryItem)
	r.Put("/residents/:id/history/:itemId", h.UpdateHistoryItem)
	r.Delete("/residents/:id/history/:itemId", h.DeleteHistoryItem)

	r.Post("/residents/:id/messages", h.SendMessage)
	r.Post("/residents/:id/messages/read", h.MarkMessagesRead)
	r.Post("/residents/:id/notify-overdue", h.NotifyOverdue)
}
