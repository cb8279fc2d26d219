package services

import (
	"log"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/zafira-bot/zafira-backend/internal/models"
)

const (
	defaultHistoryCap = 10
	adminWindow       = 30 * time.Minute
	sessionIdleTTL    = 12 * time.Hour
	lastSearchTTL     = 30 * time.Minute
)

// SessionManager keeps per-sender conversation state: a bounded message
// history, the admin authentication state, and the sender's most recent
// search results. Sessions idle past the TTL are evicted by a background
// sweep so long-running deployments don't grow without bound.
type SessionManager struct {
	sessions   map[string]*models.Session
	mu         sync.RWMutex
	historyCap int
	lastSearch *gocache.Cache
	now        func() time.Time
	stop       chan struct{}
}

var sessionManagerInstance *SessionManager

// SetSessionManager sets the global session manager instance (call from main.go)
func SetSessionManager(sm *SessionManager) {
	sessionManagerInstance = sm
}

// GetSessionManager returns the global session manager instance
func GetSessionManager() *SessionManager {
	return sessionManagerInstance
}

// NewSessionManager creates a new session manager
func NewSessionManager(historyCap int) *SessionManager {
	if historyCap <= 0 {
		historyCap = defaultHistoryCap
	}
	sm := &SessionManager{
		sessions:   make(map[string]*models.Session),
		historyCap: historyCap,
		lastSearch: gocache.New(lastSearchTTL, 10*time.Minute),
		now:        time.Now,
		stop:       make(chan struct{}),
	}
	go sm.cleanupIdleSessions()
	return sm
}

// Stop halts the background cleanup routine.
func (sm *SessionManager) Stop() {
	close(sm.stop)
}

// Push appends a message to the sender's history, evicting the oldest entry
// past capacity, and returns the current history.
func (sm *SessionManager) Push(senderID, message string) []string {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	session := sm.getOrCreateLocked(senderID)
	session.History = append(session.History, message)
	if len(session.History) > sm.historyCap {
		session.History = session.History[len(session.History)-sm.historyCap:]
	}
	session.LastActive = sm.now()

	out := make([]string, len(session.History))
	copy(out, session.History)
	return out
}

// History returns the sender's message history. Unknown senders get an
// empty slice, never an error.
func (sm *SessionManager) History(senderID string) []string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	session, exists := sm.sessions[senderID]
	if !exists {
		return []string{}
	}
	out := make([]string, len(session.History))
	copy(out, session.History)
	return out
}

// AdminState returns the sender's current admin state, degrading an expired
// grant back to none.
func (sm *SessionManager) AdminState(senderID string) models.AdminState {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	session, exists := sm.sessions[senderID]
	if !exists {
		return models.AdminNone
	}
	if session.AdminState == models.AdminAuthenticated && !session.AdminActive(sm.now()) {
		session.AdminState = models.AdminNone
		log.Printf("Admin session expired for %s", senderID)
	}
	return session.AdminState
}

// BeginAdminAuth moves the sender to awaiting-PIN.
func (sm *SessionManager) BeginAdminAuth(senderID string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	session := sm.getOrCreateLocked(senderID)
	session.AdminState = models.AdminAwaitingPIN
}

// CompleteAdminAuth grants admin mode until now + the admin window.
func (sm *SessionManager) CompleteAdminAuth(senderID string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	session := sm.getOrCreateLocked(senderID)
	session.AdminState = models.AdminAuthenticated
	session.AdminExpiry = sm.now().Add(adminWindow)
	log.Printf("✅ Admin mode granted to %s until %s", senderID, session.AdminExpiry.Format("15:04"))
}

// ExtendAdminAuth slides the expiry forward on each authenticated turn.
func (sm *SessionManager) ExtendAdminAuth(senderID string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	session, exists := sm.sessions[senderID]
	if !exists || session.AdminState != models.AdminAuthenticated {
		return
	}
	session.AdminExpiry = sm.now().Add(adminWindow)
}

// EndAdminAuth drops the sender back to normal routing.
func (sm *SessionManager) EndAdminAuth(senderID string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	session, exists := sm.sessions[senderID]
	if !exists {
		return
	}
	session.AdminState = models.AdminNone
	session.AdminExpiry = time.Time{}
}

// RememberSearch caches the sender's latest results. Keyed by sender so
// concurrent users cannot overwrite each other's results.
func (sm *SessionManager) RememberSearch(senderID, query string, products []models.Product) {
	sm.lastSearch.Set(senderID, &models.LastSearch{Query: query, Products: products}, gocache.DefaultExpiration)
}

// LastSearch returns the sender's cached results, or nil when nothing
// recent exists.
func (sm *SessionManager) LastSearch(senderID string) *models.LastSearch {
	v, found := sm.lastSearch.Get(senderID)
	if !found {
		return nil
	}
	return v.(*models.LastSearch)
}

// SessionStats provides session statistics for monitoring
type SessionStats struct {
	ActiveSessions int `json:"active_sessions"`
	AdminSessions  int `json:"admin_sessions"`
	CachedSearches int `json:"cached_searches"`
}

// Stats returns current session statistics
func (sm *SessionManager) Stats() SessionStats {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	stats := SessionStats{
		ActiveSessions: len(sm.sessions),
		CachedSearches: sm.lastSearch.ItemCount(),
	}
	now := sm.now()
	for _, s := range sm.sessions {
		if s.AdminActive(now) {
			stats.AdminSessions++
		}
	}
	return stats
}

func (sm *SessionManager) getOrCreateLocked(senderID string) *models.Session {
	session, exists := sm.sessions[senderID]
	if !exists {
		session = &models.Session{
			SenderID:   senderID,
			History:    make([]string, 0, sm.historyCap),
			CreatedAt:  sm.now(),
			LastActive: sm.now(),
		}
		sm.sessions[senderID] = session
		log.Printf("Session created for %s", senderID)
	}
	return session
}

// cleanupIdleSessions runs periodically and drops senders idle past the TTL.
func (sm *SessionManager) cleanupIdleSessions() {
	ticker := time.NewTicker(30 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-sm.stop:
			return
		case <-ticker.C:
			cutoff := sm.now().Add(-sessionIdleTTL)
			sm.mu.Lock()
			for id, session := range sm.sessions {
				if session.LastActive.Before(cutoff) {
					delete(sm.sessions, id)
					log.Printf("Cleaned up idle session for %s", id)
				}
			}
			sm.mu.Unlock()
		}
	}
}
