package middleware

import (
	"net/http/httptest"
	"strings"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

func setupLoginApp(t *testing.T, cache *redis.Client, maxPerMin int) *fiber.App {
	t.Helper()
	app := fiber.New()
	app.Post("/login", LoginRateLimit(cache, maxPerMin), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestLoginRateLimitBlocksAfterThreshold(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer cache.Close()

	app := setupLoginApp(t, cache, 3)

	post := func(username string) int {
		req := httptest.NewRequest(fiber.MethodPost, "/login", strings.NewReader(`{"username":"`+username+`"}`))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		return resp.StatusCode
	}

	for i := 0; i < 3; i++ {
		if code := post("carlos"); code != fiber.StatusOK {
			t.Fatalf("attempt %d: expected %d got %d", i+1, fiber.StatusOK, code)
		}
	}
	if code := post("carlos"); code != fiber.StatusTooManyRequests {
		t.Fatalf("expected %d after threshold, got %d", fiber.StatusTooManyRequests, code)
	}

	// The counter is keyed per username; another resident is unaffected.
	if code := post("ana"); code != fiber.StatusOK {
		t.Fatalf("expected independent counter for ana, got %d", code)
	}
}

func TestLoginRateLimitNoopWithoutRedis(t *testing.T) {
	app := setupLoginApp(t, nil, 1)

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(fiber.MethodPost, "/login", strings.NewReader(`{"username":"carlos"}`))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("expected pass-through without redis, got %d", resp.StatusCode)
		}
	}
}
