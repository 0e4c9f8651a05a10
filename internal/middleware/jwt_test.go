package middleware

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/fiberhub/portal/internal/auth"
	"github.com/fiberhub/portal/internal/config"
	"github.com/fiberhub/portal/internal/identity"
	"github.com/fiberhub/portal/internal/profile"
)

func jwtTestConfig() config.Config {
	return config.Config{
		JWTSecret:       "access-secret",
		RefreshSecret:   "refresh-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 30 * 24 * time.Hour,
	}
}

func setupJWTApp(t *testing.T) (*fiber.App, *auth.Service, identity.Repository, profile.Repository) {
	t.Helper()
	cfg := jwtTestConfig()
	accounts := identity.NewMemoryRepository()
	profiles := profile.NewMemoryRepository()

	app := fiber.New()
	protected := app.Group("/", JWTAuth(cfg, accounts, profiles))
	protected.Get("/me", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"user_id": c.Locals("user_id"), "role": c.Locals("role")})
	})
	admin := protected.Group("/admin", RequireAdmin())
	admin.Get("/residents", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	return app, auth.NewService(cfg, accounts), accounts, profiles
}

func seedSession(t *testing.T, tokens *auth.Service, accounts identity.Repository, profiles profile.Repository, role string) (identity.Account, auth.TokenPair) {
	t.Helper()
	account := identity.Account{
		ID:       "acct-" + role,
		Username: "carlos",
		Email:    "carlos-" + role + "@portal.local",
		Role:     role,
	}
	if err := accounts.Create(context.Background(), account); err != nil {
		t.Fatalf("seed account: %v", err)
	}
	if err := profiles.Create(context.Background(), profile.Profile{
		ID: account.ID, Username: account.Username, Role: role,
	}); err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	pair, err := tokens.Issue(account)
	if err != nil {
		t.Fatalf("issue tokens: %v", err)
	}
	return account, pair
}

func getWithToken(t *testing.T, app *fiber.App, path, token string) int {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodGet, path, nil)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	return resp.StatusCode
}

func TestJWTAuthAcceptsValidToken(t *testing.T) {
	app, tokens, accounts, profiles := setupJWTApp(t)
	_, pair := seedSession(t, tokens, accounts, profiles, profile.RoleResident)

	if code := getWithToken(t, app, "/me", pair.AccessToken); code != fiber.StatusOK {
		t.Fatalf("expected %d got %d", fiber.StatusOK, code)
	}
}

func TestJWTAuthRejectsMissingOrGarbageToken(t *testing.T) {
	app, _, _, _ := setupJWTApp(t)

	if code := getWithToken(t, app, "/me", ""); code != fiber.StatusUnauthorized {
		t.Fatalf("expected %d without token, got %d", fiber.StatusUnauthorized, code)
	}
	if code := getWithToken(t, app, "/me", "garbage"); code != fiber.StatusUnauthorized {
		t.Fatalf("expected %d for garbage token, got %d", fiber.StatusUnauthorized, code)
	}
}

func TestJWTAuthRejectsBumpedTokenVersion(t *testing.T) {
	app, tokens, accounts, profiles := setupJWTApp(t)
	account, pair := seedSession(t, tokens, accounts, profiles, profile.RoleResident)

	if err := accounts.UpdateTokenVersion(context.Background(), account.ID, account.TokenVersion+1); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	if code := getWithToken(t, app, "/me", pair.AccessToken); code != fiber.StatusUnauthorized {
		t.Fatalf("expected stale token rejected, got %d", code)
	}
}

func TestJWTAuthLocksOutDeletedProfile(t *testing.T) {
	app, tokens, accounts, profiles := setupJWTApp(t)
	account, pair := seedSession(t, tokens, accounts, profiles, profile.RoleResident)

	// Admin deletes the resident mid-session; the live token stops working
	// on the very next request.
	if err := profiles.Delete(context.Background(), account.ID); err != nil {
		t.Fatalf("delete profile: %v", err)
	}
	if code := getWithToken(t, app, "/me", pair.AccessToken); code != fiber.StatusUnauthorized {
		t.Fatalf("expected lockout after profile delete, got %d", code)
	}
}

func TestRequireAdmin(t *testing.T) {
	app, tokens, accounts, profiles := setupJWTApp(t)
	_, residentPair := seedSession(t, tokens, accounts, profiles, profile.RoleResident)
	_, adminPair := seedSession(t, tokens, accounts, profiles, profile.RoleAdmin)

	if code := getWithToken(t, app, "/admin/residents", residentPair.AccessToken); code != fiber.StatusForbidden {
		t.Fatalf("expected %d for resident, got %d", fiber.StatusForbidden, code)
	}
	if code := getWithToken(t, app, "/admin/residents", adminPair.AccessToken); code != fiber.StatusOK {
		t.Fatalf("expected %d for admin, got %d", fiber.StatusOK, code)
	}
}
