package auth

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/fiberhub/portal/internal/identity"
)

// User-visible messages kept in Spanish, matching the portal frontend.
const (
	msgAccountDeactivated = "Tu cuenta ha sido desactivada o eliminada por el administrador."
	msgPasswordMismatch   = "El usuario ya existe y la contraseña no coincide. Contacte con Administración."
	msgAlreadyRegistered  = "El usuario ya está registrado correctamente. Por favor inicie sesión."
)

// Handler exposes auth endpoints for register/login/refresh/logout.
type Handler struct {
	ids *identity.Service
	svc *Service
}

// NewHandler constructs an auth HTTP handler.
func NewHandler(ids *identity.Service, svc *Service) *Handler {
	return &Handler{ids: ids, svc: svc}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type sessionResponse struct {
	UserID       string `json:"user_id"`
	Username     string `json:"username"`
	Role         string `json:"role"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Register signs up a resident (or admin) and returns a session. A conflict
// with a zombie account is resolved transparently when the password matches.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	account, err := h.ids.Register(c.UserContext(), identity.Credentials{
		Username: req.Username,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrPasswordMismatch):
			return fiber.NewError(http.StatusConflict, msgPasswordMismatch)
		case errors.Is(err, identity.ErrAlreadyRegistered):
			return fiber.NewError(http.StatusConflict, msgAlreadyRegistered)
		case errors.Is(err, identity.ErrWeakPassword):
			return fiber.NewError(http.StatusBadRequest, "password must be at least 6 characters")
		default:
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
	}
	return h.session(c, http.StatusCreated, account)
}

// Login validates credentials and returns a token pair. Accounts whose
// profile row was deleted are denied outright.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	account, err := h.ids.Authenticate(c.UserContext(), identity.Credentials{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, identity.ErrAccountDeactivated) {
			return fiber.NewError(http.StatusForbidden, msgAccountDeactivated)
		}
		return fiber.NewError(http.StatusUnauthorized, "invalid credentials")
	}
	return h.session(c, http.StatusOK, account)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh issues a new access token using a valid refresh token.
func (h *Handler) Refresh(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	token, exp, err := h.svc.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return fiber.NewError(http.StatusUnauthorized, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"access_token": token, "expires_in": exp})
}

// Logout invalidates existing tokens by bumping the token version.
func (h *Handler) Logout(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	if uid == "" {
		return fiber.NewError(http.StatusUnauthorized, "not signed in")
	}
	if err := h.svc.Logout(c.UserContext(), uid); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": "logged_out"})
}

func (h *Handler) session(c *fiber.Ctx, status int, account identity.Account) error {
	pair, err := h.svc.Issue(account)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(status).JSON(sessionResponse{
		UserID:       account.ID,
		Username:     account.Username,
		Role:         account.Role,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	})
}
