package storage

import (
	"github.com/zafira-bot/zafira-backend/internal/models"
)

var storeInstance Store

// SetStore sets the global store instance (call from main.go)
func SetStore(s Store) {
	storeInstance = s
}

// GetStore returns the global store instance
func GetStore() Store {
	return storeInstance
}

// Store defines the interface for storage operations
type Store interface {
	// Support ticket operations
	CreateSupportTicket(ticket *models.SupportTicket) (*models.SupportTicket, error)
	GetSupportTicket(ticketID string) (*models.SupportTicket, error)
	GetSupportTicketsByUser(userID string) ([]*models.SupportTicket, error)
	UpdateSupportTicket(ticket *models.SupportTicket) error
	CountSupportTickets() (int, error)
}
