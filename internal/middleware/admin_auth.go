package middleware

import (
	"crypto/subtle"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/zafira-bot/zafira-backend/internal/config"
)

// RequireAdminKey guards the operator endpoints with the X-Admin-Key
// header. When no ADMIN_API_KEY is configured the endpoints stay open;
// that is logged loudly at startup.
func RequireAdminKey(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if cfg.AdminAPIKey == "" {
			return c.Next()
		}

		key := c.Get("X-Admin-Key")
		if subtle.ConstantTimeCompare([]byte(key), []byte(cfg.AdminAPIKey)) != 1 {
			log.Printf("⚠️  Rejected admin request from %s", c.IP())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid admin key",
			})
		}
		return c.Next()
	}
}
