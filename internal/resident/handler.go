package resident

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/fiberhub/portal/internal/billing"
	"github.com/fiberhub/portal/internal/chat"
	"github.com/fiberhub/portal/internal/profile"
)

// Handler exposes the resident's own dashboard data: profile, billing state,
// WiFi credentials and the thread with staff.
type Handler struct {
	profiles profile.Repository
	billing  *billing.Service
	chat     *chat.Service
}

// NewHandler builds a resident HTTP handler.
func NewHandler(profiles profile.Repository, billingSvc *billing.Service, chatSvc *chat.Service) *Handler {
	return &Handler{profiles: profiles, billing: billingSvc, chat: chatSvc}
}

type meResponse struct {
	profile.Profile
	WifiQR          string `json:"wifiQR,omitempty"`
	UnreadFromAdmin int    `json:"unreadFromAdmin"`
}

// Me returns the caller's profile aggregate with the overdue check applied,
// so a stale "pending" never reaches the screen.
func (h *Handler) Me(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	p, err := h.profiles.Get(c.UserContext(), uid)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, "profile not found")
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	h.billing.Reconcile(c.UserContext(), &p)

	return c.Status(http.StatusOK).JSON(meResponse{
		Profile:         p,
		WifiQR:          profile.WifiQRPayload(p.WifiSSID, p.WifiPass),
		UnreadFromAdmin: chat.UnreadFrom(p, profile.RoleAdmin),
	})
}

type aliasRequest struct {
	Alias string `json:"alias"`
}

// UpdateAlias lets the resident set or clear their display alias.
func (h *Handler) UpdateAlias(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	var req aliasRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := h.profiles.Update(c.UserContext(), uid, profile.Updates{Alias: &req.Alias}); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"alias": req.Alias})
}

// History returns the caller's payment history, newest first.
func (h *Handler) History(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	p, err := h.profiles.Get(c.UserContext(), uid)
	if err != nil {
		return fiber.NewError(http.StatusNotFound, "profile not found")
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"paymentHistory": p.PaymentHistory})
}

type messageRequest struct {
	Text string `json:"text"`
}

// SendMessage appends a message to the caller's thread, authored as resident.
func (h *Handler) SendMessage(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	var req messageRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	msg, err := h.chat.Send(c.UserContext(), uid, profile.RoleResident, req.Text)
	if err != nil {
		if errors.Is(err, chat.ErrEmptyMessage) {
			return fiber.NewError(http.StatusBadRequest, "message text is required")
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusCreated).JSON(msg)
}

// MarkMessagesRead flags staff messages in the caller's thread as read.
func (h *Handler) MarkMessagesRead(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	if err := h.chat.MarkRead(c.UserContext(), uid, profile.RoleAdmin); err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.SendStatus(http.StatusNoContent)
}
