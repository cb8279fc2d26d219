package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/zafira-bot/zafira-backend/internal/services"
	"github.com/zafira-bot/zafira-backend/internal/storage"
)

// AdminHandler exposes monitoring endpoints for operators
type AdminHandler struct {
	store    storage.Store
	sessions *services.SessionManager
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(store storage.Store, sessions *services.SessionManager) *AdminHandler {
	return &AdminHandler{store: store, sessions: sessions}
}

// Overview returns session statistics and ticket counts
func (h *AdminHandler) Overview(c *fiber.Ctx) error {
	ticketCount, err := h.store.CountSupportTickets()
	if err != nil {
		log.Printf("❌ Failed to count tickets: %v", err)
	}

	return c.JSON(fiber.Map{
		"sessions": h.sessions.Stats(),
		"tickets": fiber.Map{
			"total": ticketCount,
		},
	})
}

// Tickets lists the support tickets for one user
func (h *AdminHandler) Tickets(c *fiber.Ctx) error {
	userID := c.Params("user")
	tickets, err := h.store.GetSupportTicketsByUser(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"user":    userID,
		"tickets": tickets,
	})
}
