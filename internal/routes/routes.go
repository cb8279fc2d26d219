package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/zafira-bot/zafira-backend/internal/config"
	"github.com/zafira-bot/zafira-backend/internal/handlers"
	"github.com/zafira-bot/zafira-backend/internal/middleware"
	"github.com/zafira-bot/zafira-backend/internal/services"
	"github.com/zafira-bot/zafira-backend/internal/storage"
)

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, cfg *config.Config, store storage.Store,
	sessions *services.SessionManager, zafira *services.ZafiraService) {

	// Root endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Zafira - assistente de compras 🛍️",
			"version": "2.0.0",
			"endpoints": fiber.Map{
				"health":  "/health",
				"webhook": "/webhook",
				"admin":   "/admin",
			},
		})
	})

	healthHandler := handlers.NewHealthHandler("2.0.0")
	app.Get("/health", healthHandler.Check)

	// ========== WEBHOOK ROUTES ==========
	webhookHandler := handlers.NewWebhookHandler(cfg, zafira)
	app.Get("/webhook", webhookHandler.Verify)
	app.Post("/webhook", webhookHandler.Receive)

	// ========== ADMIN ROUTES ==========
	adminHandler := handlers.NewAdminHandler(store, sessions)
	admin := app.Group("/admin", middleware.RequireAdminKey(cfg))
	admin.Get("/overview", adminHandler.Overview)
	admin.Get("/tickets/:user", adminHandler.Tickets)
}
