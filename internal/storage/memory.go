package storage

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zafira-bot/zafira-backend/internal/models"
)

// MemoryStore holds all data in memory. Zafira intentionally has no
// database: tickets live for the process lifetime only.
type MemoryStore struct {
	tickets  map[string]*models.SupportTicket
	ticketMu sync.RWMutex
}

// NewMemoryStore creates a new in-memory storage
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tickets: make(map[string]*models.SupportTicket),
	}
}

func (m *MemoryStore) CreateSupportTicket(ticket *models.SupportTicket) (*models.SupportTicket, error) {
	m.ticketMu.Lock()
	defer m.ticketMu.Unlock()

	if ticket.TicketID == "" {
		ticket.TicketID = "TK-" + uuid.NewString()[:8]
	}
	if ticket.Status == "" {
		ticket.Status = models.TicketStatusOpen
	}
	ticket.CreatedAt = time.Now()

	m.tickets[ticket.TicketID] = ticket
	return ticket, nil
}

func (m *MemoryStore) GetSupportTicket(ticketID string) (*models.SupportTicket, error) {
	m.ticketMu.RLock()
	defer m.ticketMu.RUnlock()

	ticket, exists := m.tickets[ticketID]
	if !exists {
		return nil, fmt.Errorf("ticket not found")
	}
	return ticket, nil
}

func (m *MemoryStore) GetSupportTicketsByUser(userID string) ([]*models.SupportTicket, error) {
	m.ticketMu.RLock()
	defer m.ticketMu.RUnlock()

	var tickets []*models.SupportTicket
	for _, t := range m.tickets {
		if t.UserID == userID {
			tickets = append(tickets, t)
		}
	}
	return tickets, nil
}

func (m *MemoryStore) UpdateSupportTicket(ticket *models.SupportTicket) error {
	m.ticketMu.Lock()
	defer m.ticketMu.Unlock()

	if _, exists := m.tickets[ticket.TicketID]; !exists {
		return fmt.Errorf("ticket not found")
	}
	m.tickets[ticket.TicketID] = ticket
	return nil
}

func (m *MemoryStore) CountSupportTickets() (int, error) {
	m.ticketMu.RLock()
	defer m.ticketMu.RUnlock()
	return len(m.tickets), nil
}
