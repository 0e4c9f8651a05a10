package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/fiberhub/portal/internal/admin"
	"github.com/fiberhub/portal/internal/auth"
	"github.com/fiberhub/portal/internal/billing"
	"github.com/fiberhub/portal/internal/chat"
	"github.com/fiberhub/portal/internal/config"
	"github.com/fiberhub/portal/internal/identity"
	"github.com/fiberhub/portal/internal/middleware"
	"github.com/fiberhub/portal/internal/notification"
	"github.com/fiberhub/portal/internal/profile"
	"github.com/fiberhub/portal/internal/resident"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Services holds the wired application services; the watcher reuses them.
type Services struct {
	Profiles profile.Repository
	Accounts identity.Repository
	Billing  *billing.Service
	Chat     *chat.Service
	Notifier notification.Notifier
}

// Setup configures middlewares and all application routes, returning the
// wired services for reuse outside the HTTP surface.
func Setup(app *fiber.App, d Deps) (Services, error) {
	// Enforce DB/Redis presence outside of dev, even though main also checks.
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return Services{}, fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return Services{}, fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	app.Use(middleware.Audit(d.Logger))

	// Repositories: Postgres when available, in-memory fallback for dev.
	var profiles profile.Repository
	var accounts identity.Repository
	if d.DB != nil {
		profiles = profile.NewPostgresRepository(d.DB)
		accounts = identity.NewPostgresRepository(d.DB)
	} else {
		profiles = profile.NewMemoryRepository()
		accounts = identity.NewMemoryRepository()
	}

	var notifier notification.Notifier
	if d.Cache != nil {
		notifier = notification.NewRedisNotifier(d.Cache)
	} else {
		notifier = notification.NewLoggerNotifier(d.Logger)
	}

	// Services and handlers
	billingSvc := billing.NewService(profiles, d.Logger)
	chatSvc := chat.NewService(profiles, notifier)
	identitySvc := identity.NewService(accounts, profiles, d.Logger)
	authSvc := auth.NewService(d.Cfg, accounts)
	authHandler := auth.NewHandler(identitySvc, authSvc)
	residentHandler := resident.NewHandler(profiles, billingSvc, chatSvc)
	adminHandler := admin.NewHandler(identitySvc, profiles, billingSvc, chatSvc)

	// Health
	RegisterHealthRoutes(app, d)

	// API routes
	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	// Public routes
	rateLimiter := middleware.LoginRateLimit(d.Cache, d.Cfg.LoginAttempts)
	RegisterAuthRoutes(api, authHandler, rateLimiter)

	// Protected routes
	jwtmw := middleware.JWTAuth(d.Cfg, accounts, profiles)
	protected := api.Group("", jwtmw)
	protected.Post("/auth/logout", authHandler.Logout)
	RegisterResidentRoutes(protected, residentHandler)

	adminGroup := protected.Group("/admin", middleware.RequireAdmin())
	if d.Cache != nil {
		adminGroup.Use(middleware.Idempotency(d.Cache, 24*time.Hour, d.Logger))
	}
	RegisterAdminRoutes(adminGroup, adminHandler)

	return Services{
		Profiles: profiles,
		Accounts: accounts,
		Billing:  billingSvc,
		Chat:     chatSvc,
		Notifier: notifier,
	}, nil
}
