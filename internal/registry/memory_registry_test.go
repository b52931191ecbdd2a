package registry

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/lumen-live/relay-service/internal/config"
	"github.com/lumen-live/relay-service/internal/hub"
)

func newTestClient() *hub.Client {
	return hub.NewClient(nil, config.Default().WebSocket)
}

func TestRegisterAssignsUniqueIDs(t *testing.T) {
	reg := NewMemoryRegistry()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := reg.Register(newTestClient())
		if id == "" {
			t.Fatal("Register returned empty connection ID")
		}
		if seen[id] {
			t.Fatalf("Register returned duplicate connection ID %q", id)
		}
		seen[id] = true
	}

	if got := len(reg.Clients()); got != 100 {
		t.Errorf("Clients() returned %d entries, want 100", got)
	}
}

func TestBindUsername(t *testing.T) {
	reg := NewMemoryRegistry()
	id := reg.Register(newTestClient())

	if err := reg.BindUsername(id, "alice"); err != nil {
		t.Fatalf("BindUsername failed: %v", err)
	}

	if !reg.UsernameExists("alice") {
		t.Error("UsernameExists(alice) = false after bind")
	}
	if name, ok := reg.Username(id); !ok || name != "alice" {
		t.Errorf("Username(%q) = (%q, %v), want (alice, true)", id, name, ok)
	}
	if _, ok := reg.LookupByUsername("alice"); !ok {
		t.Error("LookupByUsername(alice) not found after bind")
	}
}

func TestBindUsernameRejectsDuplicate(t *testing.T) {
	reg := NewMemoryRegistry()
	first := reg.Register(newTestClient())
	second := reg.Register(newTestClient())

	if err := reg.BindUsername(first, "alice"); err != nil {
		t.Fatalf("first bind failed: %v", err)
	}
	if err := reg.BindUsername(second, "alice"); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("second bind returned %v, want ErrUsernameTaken", err)
	}

	// The original binding must be untouched.
	if name, ok := reg.Username(first); !ok || name != "alice" {
		t.Errorf("original binding lost: Username = (%q, %v)", name, ok)
	}
	if _, ok := reg.Username(second); ok {
		t.Error("losing connection unexpectedly has a username bound")
	}
}

func TestBindUsernameSameConnectionIsIdempotent(t *testing.T) {
	reg := NewMemoryRegistry()
	id := reg.Register(newTestClient())

	if err := reg.BindUsername(id, "alice"); err != nil {
		t.Fatalf("bind failed: %v", err)
	}
	if err := reg.BindUsername(id, "alice"); err != nil {
		t.Fatalf("re-bind of own name failed: %v", err)
	}
	if got := len(reg.Usernames()); got != 1 {
		t.Errorf("Usernames() has %d entries after re-bind, want 1", got)
	}
}

func TestBindUsernameRejectsEmpty(t *testing.T) {
	reg := NewMemoryRegistry()
	id := reg.Register(newTestClient())

	if err := reg.BindUsername(id, ""); !errors.Is(err, ErrEmptyUsername) {
		t.Fatalf("BindUsername(\"\") returned %v, want ErrEmptyUsername", err)
	}
}

func TestBindUsernameUnknownConnection(t *testing.T) {
	reg := NewMemoryRegistry()

	if err := reg.BindUsername("no-such-id", "alice"); !errors.Is(err, ErrNotRegistered) {
		t.Fatalf("BindUsername on unknown ID returned %v, want ErrNotRegistered", err)
	}
}

// TestBindUsernameConcurrentSingleWinner verifies that when many
// connections race to claim the same username, exactly one wins and
// the rest observe a failure rather than partial state.
func TestBindUsernameConcurrentSingleWinner(t *testing.T) {
	reg := NewMemoryRegistry()

	const contenders = 32
	ids := make([]string, contenders)
	for i := range ids {
		ids[i] = reg.Register(newTestClient())
	}

	var wg sync.WaitGroup
	results := make(chan error, contenders)
	for _, id := range ids {
		wg.Add(1)
		go func(connID string) {
			defer wg.Done()
			results <- reg.BindUsername(connID, "alice")
		}(id)
	}
	wg.Wait()
	close(results)

	var wins, losses int
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrUsernameTaken):
			losses++
		default:
			t.Errorf("unexpected bind error: %v", err)
		}
	}

	if wins != 1 {
		t.Errorf("got %d winners, want exactly 1", wins)
	}
	if losses != contenders-1 {
		t.Errorf("got %d losers, want %d", losses, contenders-1)
	}
	if got := len(reg.Usernames()); got != 1 {
		t.Errorf("Usernames() has %d entries, want 1", got)
	}
}

func TestUnregisterRemovesBinding(t *testing.T) {
	reg := NewMemoryRegistry()
	id := reg.Register(newTestClient())
	if err := reg.BindUsername(id, "alice"); err != nil {
		t.Fatalf("bind failed: %v", err)
	}

	reg.Unregister(id)

	if reg.UsernameExists("alice") {
		t.Error("username still exists after Unregister")
	}
	if got := len(reg.Clients()); got != 0 {
		t.Errorf("Clients() has %d entries after Unregister, want 0", got)
	}
}

func TestUnregisterIsIdempotent(t *testing.T) {
	reg := NewMemoryRegistry()
	id := reg.Register(newTestClient())
	if err := reg.BindUsername(id, "alice"); err != nil {
		t.Fatalf("bind failed: %v", err)
	}

	reg.Unregister(id)
	reg.Unregister(id) // disconnect race: second call must be a no-op

	if reg.UsernameExists("alice") {
		t.Error("username resurrected by second Unregister")
	}
	if got := len(reg.Usernames()); got != 0 {
		t.Errorf("Usernames() has %d entries, want 0", got)
	}
}

func TestUsernamesReflectsLiveSessions(t *testing.T) {
	reg := NewMemoryRegistry()

	ids := make([]string, 3)
	for i := range ids {
		ids[i] = reg.Register(newTestClient())
		if err := reg.BindUsername(ids[i], fmt.Sprintf("user-%d", i)); err != nil {
			t.Fatalf("bind %d failed: %v", i, err)
		}
	}

	reg.Unregister(ids[1])

	names := reg.Usernames()
	if len(names) != 2 {
		t.Fatalf("Usernames() has %d entries, want 2", len(names))
	}
	for _, name := range names {
		if name == "user-1" {
			t.Error("unregistered user still in roster")
		}
	}
}
