package handlers

import (
	"encoding/json"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/zafira-bot/zafira-backend/internal/config"
	"github.com/zafira-bot/zafira-backend/internal/services"
)

// WebhookHandler handles WhatsApp Cloud API webhook requests
type WebhookHandler struct {
	cfg    *config.Config
	zafira *services.ZafiraService
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(cfg *config.Config, zafira *services.ZafiraService) *WebhookHandler {
	return &WebhookHandler{cfg: cfg, zafira: zafira}
}

// Verify answers the WhatsApp subscription handshake: echo hub.challenge
// when the verify token matches, 403 otherwise.
func (h *WebhookHandler) Verify(c *fiber.Ctx) error {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && token != "" && token == h.cfg.VerifyToken {
		log.Println("✅ Webhook verified")
		return c.SendString(challenge)
	}

	log.Println("⚠️  Webhook verification failed - token mismatch")
	return c.SendStatus(fiber.StatusForbidden)
}

// Receive processes inbound webhook events. It always acks 200 regardless
// of the processing outcome - WhatsApp retries on non-2xx and a retry storm
// helps nobody. Anomalies are logged instead.
func (h *WebhookHandler) Receive(c *fiber.Ctx) error {
	var payload map[string]interface{}
	if err := json.Unmarshal(c.Body(), &payload); err != nil {
		log.Printf("⚠️  Ignoring unparseable webhook body: %v", err)
		return c.JSON(fiber.Map{"status": "ok"})
	}

	messages := ExtractMessages(payload)
	if len(messages) == 0 {
		log.Println("Webhook carried no actionable messages (status callback or unknown shape)")
		return c.JSON(fiber.Map{"status": "ok"})
	}

	for _, msg := range messages {
		if ws := services.GetWhatsAppService(); ws != nil && msg.MessageID != "" {
			if err := ws.MarkAsRead(msg.MessageID); err != nil {
				log.Printf("⚠️  Could not mark %s as read: %v", msg.MessageID, err)
			}
		}

		switch msg.Kind {
		case InboundText:
			log.Printf("📱 Message from %s: %s", msg.From, msg.Text)
			h.zafira.ProcessMessage(msg.From, msg.Text)
		case InboundListReply:
			log.Printf("📱 List selection from %s: %s", msg.From, msg.SelectionID)
			h.zafira.HandleSelection(msg.From, msg.SelectionID)
		}
	}

	return c.JSON(fiber.Map{"status": "ok"})
}
