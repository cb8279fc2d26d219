package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/zafira-bot/zafira-backend/internal/config"
	"github.com/zafira-bot/zafira-backend/internal/routes"
	"github.com/zafira-bot/zafira-backend/internal/services"
	"github.com/zafira-bot/zafira-backend/internal/storage"
)

func main() {
	cfg := config.Load()

	// Session and ticket state is in-memory by design: Zafira keeps no
	// database.
	store := storage.NewMemoryStore()
	storage.SetStore(store)

	sessionManager := services.NewSessionManager(0)
	services.SetSessionManager(sessionManager)

	whatsappService := services.NewWhatsAppService(cfg)
	services.SetWhatsAppService(whatsappService)

	aliexpressService := services.NewAliExpressService(cfg)
	mercadoLivreService := services.NewMercadoLivreService(cfg)
	groceryService := services.NewGroceryService(cfg)
	groqService := services.NewGroqService(cfg)

	zafira := services.NewZafiraService(cfg, store, sessionManager,
		whatsappService, aliexpressService, mercadoLivreService,
		groceryService, groqService)

	log.Println("✅ All services initialized")

	// Create fiber app
	app := fiber.New(fiber.Config{
		AppName: "Zafira v2.0.0",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Admin-Key",
		AllowMethods: "GET, POST, OPTIONS",
	}))

	routes.SetupRoutes(app, cfg, store, sessionManager, zafira)

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("\n🛑 Gracefully shutting down...")
		sessionManager.Stop()
		_ = app.Shutdown()
	}()

	log.Println("========================================")
	log.Printf("🚀 Zafira starting on port %s", cfg.Port)
	log.Printf("📱 WhatsApp: %s", credentialStatus(cfg.WhatsAppToken != "" && cfg.PhoneNumberID != ""))
	log.Printf("🛒 AliExpress: %s (sign: %s)", credentialStatus(cfg.AliExpressAppKey != ""), cfg.AliExpressSignMethod)
	log.Printf("🤖 Groq: %s", credentialStatus(cfg.GroqAPIKey != ""))
	log.Println("========================================")

	log.Fatal(app.Listen(":" + cfg.Port))
}

func credentialStatus(configured bool) string {
	if configured {
		return "Configured"
	}
	return "Not configured"
}
