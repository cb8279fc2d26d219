package models

import "time"

// AdminState tracks where a sender is in the admin authentication flow.
type AdminState int

const (
	AdminNone AdminState = iota
	AdminAwaitingPIN
	AdminAuthenticated
)

// Session stores per-sender conversation state for the process lifetime.
// History is a bounded FIFO of raw inbound messages, oldest evicted first.
type Session struct {
	SenderID    string     `json:"sender_id"`
	History     []string   `json:"history"`
	AdminState  AdminState `json:"admin_state"`
	AdminExpiry time.Time  `json:"admin_expiry"`
	CreatedAt   time.Time  `json:"created_at"`
	LastActive  time.Time  `json:"last_active"`
}

// AdminActive reports whether the session holds an unexpired admin grant.
func (s *Session) AdminActive(now time.Time) bool {
	return s.AdminState == AdminAuthenticated && now.Before(s.AdminExpiry)
}
