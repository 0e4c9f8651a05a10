package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/fiberhub/portal/internal/auth"
	"github.com/fiberhub/portal/internal/config"
	"github.com/fiberhub/portal/internal/identity"
	"github.com/fiberhub/portal/internal/profile"
)

// JWTAuth validates access tokens, checks the token version, and re-verifies
// that the account's profile row still exists. The profile re-check is what
// turns an admin-side delete into an immediate lockout instead of letting the
// session ride until the token expires.
func JWTAuth(cfg config.Config, accounts identity.Repository, profiles profile.Repository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return fiber.NewError(http.StatusUnauthorized, "missing bearer token")
		}
		tokenStr := strings.TrimSpace(authz[len("Bearer "):])
		claims, err := auth.ParseAndVerifyHS256(tokenStr, []byte(cfg.JWTSecret))
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "invalid token")
		}
		sub, _ := claims["sub"].(string)
		verFloat, _ := claims["ver"].(float64)
		ver := int(verFloat)

		account, err := accounts.FindByID(c.UserContext(), sub)
		if err != nil || account.TokenVersion != ver {
			return fiber.NewError(http.StatusUnauthorized, "token invalidated")
		}

		exists, err := profiles.Exists(c.UserContext(), sub)
		if err != nil {
			return fiber.NewError(http.StatusInternalServerError, "profile lookup failed")
		}
		if !exists {
			return fiber.NewError(http.StatusUnauthorized, "account deactivated")
		}

		role, _ := claims["role"].(string)
		username, _ := claims["username"].(string)
		c.Locals("user_id", sub)
		c.Locals("role", role)
		c.Locals("username", username)
		c.Locals("token_version", ver)
		return c.Next()
	}
}

// RequireAdmin gates a route group to accounts carrying the admin role.
// JWTAuth must run first.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals("role").(string)
		if role != profile.RoleAdmin {
			return fiber.NewError(http.StatusForbidden, "admin role required")
		}
		return c.Next()
	}
}
