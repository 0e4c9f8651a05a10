package admin

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/fiberhub/portal/internal/billing"
	"github.com/fiberhub/portal/internal/chat"
	"github.com/fiberhub/portal/internal/identity"
	"github.com/fiberhub/portal/internal/profile"
)

// Handler exposes the staff-side management surface: the resident table, the
// per-resident manager, history CRUD with status sync, and the chat thread
// from the admin side.
type Handler struct {
	ids      *identity.Service
	profiles profile.Repository
	billing  *billing.Service
	chat     *chat.Service
}

// NewHandler builds an admin HTTP handler.
func NewHandler(ids *identity.Service, profiles profile.Repository, billingSvc *billing.Service, chatSvc *chat.Service) *Handler {
	return &Handler{ids: ids, profiles: profiles, billing: billingSvc, chat: chatSvc}
}

type residentRow struct {
	ID                 string         `json:"id"`
	Username           string         `json:"username"`
	Alias              string         `json:"alias,omitempty"`
	PaymentStatus      profile.Status `json:"paymentStatus"`
	NextPaymentDate    string         `json:"nextPaymentDate"`
	InternetSpeed      int            `json:"internetSpeed"`
	UnreadFromResident int            `json:"unreadFromResident"`
}

// ListResidents renders the resident table. Each row passes through the
// overdue derivation first, so the table never shows a stale "pending".
func (h *Handler) ListResidents(c *fiber.Ctx) error {
	residents, err := h.profiles.ListByRole(c.UserContext(), profile.RoleResident)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	rows := make([]residentRow, 0, len(residents))
	for i := range residents {
		p := &residents[i]
		h.billing.Reconcile(c.UserContext(), p)
		rows = append(rows, residentRow{
			ID:                 p.ID,
			Username:           p.Username,
			Alias:              p.Alias,
			PaymentStatus:      p.PaymentStatus,
			NextPaymentDate:    p.NextPaymentDate,
			InternetSpeed:      p.InternetSpeed,
			UnreadFromResident: chat.UnreadFrom(*p, profile.RoleResident),
		})
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"residents": rows})
}

type residentDetail struct {
	profile.Profile
	WifiQR string `json:"wifiQR,omitempty"`
}

// GetResident returns the full aggregate for the manager modal.
func (h *Handler) GetResident(c *fiber.Ctx) error {
	p, err := h.getProfile(c)
	if err != nil {
		return err
	}
	h.billing.Reconcile(c.UserContext(), &p)
	return c.Status(http.StatusOK).JSON(residentDetail{
		Profile: p,
		WifiQR:  profile.WifiQRPayload(p.WifiSSID, p.WifiPass),
	})
}

type profileUpdateRequest struct {
	Alias string `json:"alias"`
}

// UpdateProfile edits the resident's display attributes.
func (h *Handler) UpdateProfile(c *fiber.Ctx) error {
	var req profileUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	userID := c.Params("id")
	if err := h.profiles.Update(c.UserContext(), userID, profile.Updates{Alias: &req.Alias}); err != nil {
		return h.mapRepoError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"alias": req.Alias})
}

type serviceUpdateRequest struct {
	InternetSpeed int    `json:"internetSpeed"`
	WifiSSID      string `json:"wifiSSID"`
	WifiPass      string `json:"wifiPass"`
	GeneratePass  bool   `json:"generatePass"`
}

// UpdateService edits connection speed and the WiFi pair. With generatePass
// set, a fresh passphrase is generated server-side and returned along with
// the QR payload.
func (h *Handler) UpdateService(c *fiber.Ctx) error {
	var req serviceUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.InternetSpeed <= 0 {
		return fiber.NewError(http.StatusBadRequest, "internetSpeed must be positive")
	}
	if req.GeneratePass {
		pass, err := profile.GenerateWifiPass()
		if err != nil {
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		req.WifiPass = pass
	}

	userID := c.Params("id")
	updates := profile.Updates{
		InternetSpeed: &req.InternetSpeed,
		WifiSSID:      &req.WifiSSID,
		WifiPass:      &req.WifiPass,
	}
	if err := h.profiles.Update(c.UserContext(), userID, updates); err != nil {
		return h.mapRepoError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"internetSpeed": req.InternetSpeed,
		"wifiSSID":      req.WifiSSID,
		"wifiPass":      req.WifiPass,
		"wifiQR":        profile.WifiQRPayload(req.WifiSSID, req.WifiPass),
	})
}

type historyRequest struct {
	Period string `json:"period"`
	Date   string `json:"date"`
	Amount string `json:"amount"`
	Status string `json:"status"`
}

type historySyncResponse struct {
	PaymentStatus   profile.Status        `json:"paymentStatus"`
	NextPaymentDate string                `json:"nextPaymentDate"`
	PaymentHistory  []profile.HistoryItem `json:"paymentHistory"`
}

// AddHistoryItem records a new billing period, then synchronizes the
// profile's status and advances the next due date by one month.
func (h *Handler) AddHistoryItem(c *fiber.Ctx) error {
	return h.saveHistoryItem(c, "", http.StatusCreated)
}

// UpdateHistoryItem edits an existing record; status is re-synchronized but
// the next due date is left alone.
func (h *Handler) UpdateHistoryItem(c *fiber.Ctx) error {
	return h.saveHistoryItem(c, c.Params("itemId"), http.StatusOK)
}

func (h *Handler) saveHistoryItem(c *fiber.Ctx, itemID string, okStatus int) error {
	var req historyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	p, err := h.billing.SaveHistoryItem(c.UserContext(), c.Params("id"), itemID, billing.HistoryInput{
		Period: req.Period,
		Date:   req.Date,
		Amount: req.Amount,
		Status: profile.Status(req.Status),
	})
	if err != nil {
		if errors.Is(err, billing.ErrInvalidStatus) {
			return fiber.NewError(http.StatusBadRequest, "status must be paid, pending or overdue")
		}
		return h.mapRepoError(err)
	}
	return c.Status(okStatus).JSON(historySyncResponse{
		PaymentStatus:   p.PaymentStatus,
		NextPaymentDate: p.NextPaymentDate,
		PaymentHistory:  p.PaymentHistory,
	})
}

// DeleteHistoryItem removes one record without re-deriving the status.
func (h *Handler) DeleteHistoryItem(c *fiber.Ctx) error {
	if err := h.billing.DeleteHistoryItem(c.UserContext(), c.Params("id"), c.Params("itemId")); err != nil {
		return h.mapRepoError(err)
	}
	return c.SendStatus(http.StatusNoContent)
}

type messageRequest struct {
	Text string `json:"text"`
}

// SendMessage appends a staff message to the resident's thread.
func (h *Handler) SendMessage(c *fiber.Ctx) error {
	var req messageRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	msg, err := h.chat.Send(c.UserContext(), c.Params("id"), profile.RoleAdmin, req.Text)
	if err != nil {
		if errors.Is(err, chat.ErrEmptyMessage) {
			return fiber.NewError(http.StatusBadRequest, "message text is required")
		}
		return h.mapRepoError(err)
	}
	return c.Status(http.StatusCreated).JSON(msg)
}

// MarkMessagesRead flags the resident's messages as read by staff.
func (h *Handler) MarkMessagesRead(c *fiber.Ctx) error {
	if err := h.chat.MarkRead(c.UserContext(), c.Params("id"), profile.RoleResident); err != nil {
		return h.mapRepoError(err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// NotifyOverdue pushes the templated overdue warning into the resident's
// thread. Refused while the derived status is anything but overdue.
func (h *Handler) NotifyOverdue(c *fiber.Ctx) error {
	msg, err := h.chat.SendOverdueNotice(c.UserContext(), c.Params("id"))
	if err != nil {
		if errors.Is(err, chat.ErrNotOverdue) {
			return fiber.NewError(http.StatusConflict, "resident is not overdue")
		}
		return h.mapRepoError(err)
	}
	return c.Status(http.StatusCreated).JSON(msg)
}

type createResidentRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CreateResident provisions a resident account plus its default profile.
func (h *Handler) CreateResident(c *fiber.Ctx) error {
	var req createResidentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	account, err := h.ids.Register(c.UserContext(), identity.Credentials{
		Username: req.Username,
		Password: req.Password,
		Role:     profile.RoleResident,
	})
	if err != nil {
		if errors.Is(err, identity.ErrAlreadyRegistered) || errors.Is(err, identity.ErrPasswordMismatch) {
			return fiber.NewError(http.StatusConflict, err.Error())
		}
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"id":       account.ID,
		"username": account.Username,
		"role":     account.Role,
	})
}

// DeleteResident removes the profile rows and the identity-store entry.
func (h *Handler) DeleteResident(c *fiber.Ctx) error {
	if err := h.ids.Delete(c.UserContext(), c.Params("id")); err != nil {
		return h.mapRepoError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": "deleted"})
}

func (h *Handler) getProfile(c *fiber.Ctx) (profile.Profile, error) {
	p, err := h.profiles.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return profile.Profile{}, h.mapRepoError(err)
	}
	return p, nil
}

func (h *Handler) mapRepoError(err error) error {
	if errors.Is(err, profile.ErrNotFound) || errors.Is(err, identity.ErrNotFound) {
		return fiber.NewError(http.StatusNotFound, "resident not found")
	}
	return fiber.NewError(http.StatusInternalServerError, err.Error())
}
