package session

import (
	"testing"
	"time"
)

// fakeIO is a minimal in-memory LineIO for exercising Session without a
// real transport.
type fakeIO struct {
	in     chan string
	out    []string
	closed bool
}

func newFakeIO() *fakeIO { return &fakeIO{in: make(chan string, 8)} }

func (f *fakeIO) ReadLine(timeout time.Duration) (string, bool) {
	select {
	case line, ok := <-f.in:
		return line, ok
	case <-time.After(timeout):
		return "", false
	}
}
func (f *fakeIO) WriteLine(text string) { f.out = append(f.out, text) }
func (f *fakeIO) EnableEcho()           {}
func (f *fakeIO) DisableEcho()          {}
func (f *fakeIO) Close(reason string)   { f.closed = true }

func TestNewSessionStartsConnected(t *testing.T) {
	s := New("sess-1", newFakeIO(), "127.0.0.1:1234")
	if s.State() != StateConnected {
		t.Fatalf("got state %v, want Connected", s.State())
	}
	if s.PlayerID() != "" {
		t.Fatal("fresh session should have no player id")
	}
}

func TestAuthenticateTransitionsState(t *testing.T) {
	s := New("sess-1", newFakeIO(), "127.0.0.1:1234")
	s.IncAuthAttempt()
	s.IncAuthAttempt()

	s.Authenticate("p1", "Hero", true, "ko", 3, 4)

	if s.State() != StateAuthenticated {
		t.Fatalf("got state %v, want Authenticated", s.State())
	}
	if s.PlayerID() != "p1" || s.Username() != "Hero" {
		t.Fatalf("got player=%q user=%q", s.PlayerID(), s.Username())
	}
	if !s.IsAdmin() {
		t.Fatal("expected admin flag set")
	}
	if s.Locale() != "ko" {
		t.Fatalf("got locale %q, want ko", s.Locale())
	}
	x, y := s.Coords()
	if x != 3 || y != 4 {
		t.Fatalf("got coords (%d,%d), want (3,4)", x, y)
	}
	if s.AuthAttempts() != 0 {
		t.Fatal("Authenticate should reset the failed-attempt counter")
	}
}

func TestCombatFlagsRoundTrip(t *testing.T) {
	s := New("sess-1", newFakeIO(), "")
	if in, _ := s.InCombat(); in {
		t.Fatal("new session should not be in combat")
	}
	s.EnterCombat("combat-7")
	in, id := s.InCombat()
	if !in || id != "combat-7" {
		t.Fatalf("got in=%v id=%q", in, id)
	}
	s.SetDefending(true)
	s.ExitCombat()
	in, _ = s.InCombat()
	if in {
		t.Fatal("ExitCombat should clear the combat flag")
	}
	if s.Defending() {
		t.Fatal("ExitCombat should also clear Defending")
	}
}

func TestHandleTableResolvesNumericRefs(t *testing.T) {
	s := New("sess-1", newFakeIO(), "")
	s.SetHandles(map[int]RoomHandle{1: {Kind: "monster", ID: "m1"}, 2: {Kind: "player", ID: "p2"}})

	h, ok := s.ResolveHandle(1)
	if !ok || h.Kind != "monster" || h.ID != "m1" {
		t.Fatalf("got %+v ok=%v", h, ok)
	}
	if _, ok := s.ResolveHandle(99); ok {
		t.Fatal("expected no handle for an unset index")
	}
}

func TestFollowingRoundTrip(t *testing.T) {
	s := New("sess-1", newFakeIO(), "")
	s.SetFollowing("Mentor")
	if s.FollowingPlayer() != "Mentor" {
		t.Fatalf("got %q, want Mentor", s.FollowingPlayer())
	}
	s.ClearFollowing()
	if s.FollowingPlayer() != "" {
		t.Fatal("expected following cleared")
	}
}

func TestIdleForGrowsAndTouchResets(t *testing.T) {
	s := New("sess-1", newFakeIO(), "")
	time.Sleep(5 * time.Millisecond)
	if s.IdleFor() <= 0 {
		t.Fatal("expected positive idle duration")
	}
	s.Touch()
	if s.IdleFor() > 5*time.Millisecond {
		t.Fatal("Touch should reset idle duration close to zero")
	}
}
