package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/zafira-bot/zafira-backend/internal/models"
)

func TestPushBoundsHistory(t *testing.T) {
	sm := NewSessionManager(3)
	defer sm.Stop()

	for i := 1; i <= 7; i++ {
		sm.Push("user1", fmt.Sprintf("m%d", i))
	}

	history := sm.History("user1")
	if len(history) != 3 {
		t.Fatalf("history length = %d, want 3", len(history))
	}
	want := []string{"m5", "m6", "m7"}
	for i, msg := range want {
		if history[i] != msg {
			t.Errorf("history[%d] = %q, want %q", i, history[i], msg)
		}
	}
}

func TestHistoryUnknownSender(t *testing.T) {
	sm := NewSessionManager(0)
	defer sm.Stop()

	history := sm.History("nobody")
	if history == nil || len(history) != 0 {
		t.Errorf("History(unknown) = %v, want empty slice", history)
	}
}

func TestHistoryIsolationBetweenSenders(t *testing.T) {
	sm := NewSessionManager(5)
	defer sm.Stop()

	sm.Push("alice", "hello from alice")
	sm.Push("bob", "hello from bob")

	if got := sm.History("alice"); len(got) != 1 || got[0] != "hello from alice" {
		t.Errorf("alice history = %v", got)
	}
	if got := sm.History("bob"); len(got) != 1 || got[0] != "hello from bob" {
		t.Errorf("bob history = %v", got)
	}
}

func TestAdminFlow(t *testing.T) {
	sm := NewSessionManager(0)
	defer sm.Stop()

	current := time.Unix(1700000000, 0)
	sm.now = func() time.Time { return current }

	if sm.AdminState("admin1") != models.AdminNone {
		t.Fatal("fresh sender should start at AdminNone")
	}

	sm.BeginAdminAuth("admin1")
	if sm.AdminState("admin1") != models.AdminAwaitingPIN {
		t.Fatal("BeginAdminAuth should move to awaiting-PIN")
	}

	// wrong PIN handling keeps the state at awaiting-PIN indefinitely
	if sm.AdminState("admin1") != models.AdminAwaitingPIN {
		t.Fatal("state should stay awaiting-PIN until the correct PIN arrives")
	}

	sm.CompleteAdminAuth("admin1")
	if sm.AdminState("admin1") != models.AdminAuthenticated {
		t.Fatal("CompleteAdminAuth should authenticate")
	}

	// sliding expiry: 20 minutes in, an extension pushes expiry forward
	current = current.Add(20 * time.Minute)
	sm.ExtendAdminAuth("admin1")
	current = current.Add(25 * time.Minute) // 45min total, 25 since extension
	if sm.AdminState("admin1") != models.AdminAuthenticated {
		t.Fatal("extended grant should still be active")
	}

	// past the window with no extension the grant lapses
	current = current.Add(31 * time.Minute)
	if sm.AdminState("admin1") != models.AdminNone {
		t.Fatal("expired grant should revert to AdminNone")
	}
}

func TestEndAdminAuth(t *testing.T) {
	sm := NewSessionManager(0)
	defer sm.Stop()

	sm.BeginAdminAuth("admin1")
	sm.CompleteAdminAuth("admin1")
	sm.EndAdminAuth("admin1")
	if sm.AdminState("admin1") != models.AdminNone {
		t.Error("EndAdminAuth should drop back to AdminNone")
	}
}

func TestLastSearchIsPerSender(t *testing.T) {
	sm := NewSessionManager(0)
	defer sm.Stop()

	sm.RememberSearch("alice", "fone", []models.Product{{Title: "Fone A", Link: "https://a"}})
	sm.RememberSearch("bob", "tenis", []models.Product{{Title: "Tenis B", Link: "https://b"}})

	if last := sm.LastSearch("alice"); last == nil || last.Query != "fone" {
		t.Errorf("alice last search = %+v, want query fone", last)
	}
	if last := sm.LastSearch("bob"); last == nil || last.Query != "tenis" {
		t.Errorf("bob last search = %+v, want query tenis", last)
	}
	if sm.LastSearch("carol") != nil {
		t.Error("unknown sender should have no cached search")
	}
}

func TestStats(t *testing.T) {
	sm := NewSessionManager(0)
	defer sm.Stop()

	sm.Push("u1", "oi")
	sm.Push("u2", "olá")
	sm.BeginAdminAuth("u1")
	sm.CompleteAdminAuth("u1")
	sm.RememberSearch("u2", "fone", nil)

	stats := sm.Stats()
	if stats.ActiveSessions != 2 {
		t.Errorf("ActiveSessions = %d, want 2", stats.ActiveSessions)
	}
	if stats.AdminSessions != 1 {
		t.Errorf("AdminSessions = %d, want 1", stats.AdminSessions)
	}
	if stats.CachedSearches != 1 {
		t.Errorf("CachedSearches = %d, want 1", stats.CachedSearches)
	}
}
