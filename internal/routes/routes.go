package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/advocate-bot/internal/config"
	"github.com/ahmetcoskunkizilkaya/advocate-bot/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/advocate-bot/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	users middleware.UserLookup,
	webhookHandler *handlers.WebhookHandler,
	healthHandler *handlers.HealthHandler,
	adminHandler *handlers.AdminHandler,
) {
	// Messenger delivers here; no rate limit, batches can burst.
	app.Get("/webhook", webhookHandler.Verify)
	app.Post("/webhook", middleware.VerifySignature(cfg.AppSecret), webhookHandler.Receive)

	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	admin := api.Group("/admin", middleware.AdminRequired(cfg, users))
	admin.Get("/reports", adminHandler.ListReports)
	admin.Get("/reports/:id", adminHandler.GetReport)
	admin.Get("/posts", adminHandler.ListPosts)
	admin.Post("/broadcast", adminHandler.Broadcast)
	admin.Put("/users/:id/role", adminHandler.UpdateRole)
}
