package models

import "time"

// Ticket statuses
const (
	TicketStatusOpen     = "open"
	TicketStatusResolved = "resolved"
)

// SupportTicket is created when a user reports a problem via the bot.
type SupportTicket struct {
	TicketID    string     `json:"ticket_id"`
	UserID      string     `json:"user_id"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
}
