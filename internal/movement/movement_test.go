package movement

import (
	"strings"
	"testing"
	"time"

	"mudengine/internal/config"
	"mudengine/internal/database"
	"mudengine/internal/session"
	"mudengine/internal/world"
)

// setupStore opens a throwaway in-memory sqlite database, runs the
// schema, and returns a loaded world.Store seeded with a two-room map
// (origin and its north neighbor).
func setupStore(t *testing.T) *world.Store {
	t.Helper()
	cfg := &config.Config{DBType: "sqlite", DBName: ":memory:", DBMaxConnections: 1, DBMaxIdleConns: 1, DefaultSpawnRoomID: "origin"}
	if err := database.Initialize(cfg); err != nil {
		t.Fatalf("database.Initialize: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	// Initialize seeds the spawn room "origin" at (0,0); give it the
	// fixture's titles and descriptions.
	origin := &database.Room{ID: "origin", X: 0, Y: 0, TitleEn: "Town Square", DescriptionEn: "A quiet square.", TitleKo: "광장", DescriptionKo: "조용한 광장."}
	north := &database.Room{ID: "north-room", X: 0, Y: 1, TitleEn: "North Gate", DescriptionEn: "A stone archway.", TitleKo: "북문", DescriptionKo: "돌 아치길."}
	if err := database.UpdateRoom(origin); err != nil {
		t.Fatalf("update origin room: %v", err)
	}
	if err := database.CreateRoom(north); err != nil {
		t.Fatalf("create north room: %v", err)
	}

	store := world.New("origin", nil)
	if err := store.Load(); err != nil {
		t.Fatalf("store.Load: %v", err)
	}
	return store
}

type fakeIO struct{ out []string }

func (f *fakeIO) ReadLine(time.Duration) (string, bool) { return "", false }
func (f *fakeIO) WriteLine(text string)                 { f.out = append(f.out, text) }
func (f *fakeIO) EnableEcho()                           {}
func (f *fakeIO) DisableEcho()                           {}
func (f *fakeIO) Close(string)                           {}

func newMover(t *testing.T, store *world.Store) (*Mover, *session.Registry) {
	reg := session.NewRegistry(nil, time.Minute, time.Minute, nil)
	return &Mover{Store: store, Sessions: reg}, reg
}

func TestMovePlayerByDirectionSucceedsNorth(t *testing.T) {
	store := setupStore(t)
	mover, reg := newMover(t, store)

	io := &fakeIO{}
	sess := session.New("s1", io, "")
	sess.Authenticate("p1", "Wanderer", false, "en", 0, 0)
	reg.Add(sess)

	if err := mover.MovePlayerByDirection(sess, "north", false); err != nil {
		t.Fatalf("MovePlayerByDirection: %v", err)
	}
	x, y := sess.Coords()
	if x != 0 || y != 1 {
		t.Fatalf("got coords (%d,%d), want (0,1)", x, y)
	}
}

func TestMovePlayerByDirectionNoExit(t *testing.T) {
	store := setupStore(t)
	mover, reg := newMover(t, store)

	io := &fakeIO{}
	sess := session.New("s1", io, "")
	sess.Authenticate("p1", "Wanderer", false, "en", 0, 0)
	reg.Add(sess)

	err := mover.MovePlayerByDirection(sess, "south", false)
	if err == nil {
		t.Fatal("expected an error moving into a nonexistent exit")
	}
	x, y := sess.Coords()
	if x != 0 || y != 0 {
		t.Fatalf("coords should be unchanged on failed move, got (%d,%d)", x, y)
	}
	found := false
	for _, line := range io.out {
		if line != "" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a rejection message written to the session")
	}
}

func TestMovePlayerByDirectionBlockedInCombat(t *testing.T) {
	store := setupStore(t)
	mover, reg := newMover(t, store)

	io := &fakeIO{}
	sess := session.New("s1", io, "")
	sess.Authenticate("p1", "Wanderer", false, "en", 0, 0)
	sess.EnterCombat("combat-1")
	reg.Add(sess)

	if err := mover.MovePlayerByDirection(sess, "north", false); err == nil {
		t.Fatal("expected move to be blocked while in combat")
	}
	x, y := sess.Coords()
	if x != 0 || y != 0 {
		t.Fatal("coords should not change when move is blocked")
	}
}

func TestMovePlayerByDirectionPropagatesToFollowers(t *testing.T) {
	store := setupStore(t)
	mover, reg := newMover(t, store)

	leaderIO := &fakeIO{}
	leader := session.New("leader", leaderIO, "")
	leader.Authenticate("p1", "Leader", false, "en", 0, 0)
	reg.Add(leader)

	followerIO := &fakeIO{}
	follower := session.New("follower", followerIO, "")
	follower.Authenticate("p2", "Follower", false, "en", 0, 0)
	follower.SetFollowing("Leader")
	reg.Add(follower)

	if err := mover.MovePlayerByDirection(leader, "north", false); err != nil {
		t.Fatalf("MovePlayerByDirection: %v", err)
	}

	fx, fy := follower.Coords()
	if fx != 0 || fy != 1 {
		t.Fatalf("expected follower to be pulled to (0,1), got (%d,%d)", fx, fy)
	}
}

func TestRenderRoomViewListsOtherPlayers(t *testing.T) {
	store := setupStore(t)
	mover, reg := newMover(t, store)

	io1 := &fakeIO{}
	s1 := session.New("s1", io1, "")
	s1.Authenticate("p1", "Alice", false, "en", 0, 0)
	reg.Add(s1)

	io2 := &fakeIO{}
	s2 := session.New("s2", io2, "")
	s2.Authenticate("p2", "Bob", false, "en", 0, 0)
	reg.Add(s2)

	mover.RenderRoomView(s1)

	if len(io1.out) != 1 {
		t.Fatalf("expected one rendered room view, got %d", len(io1.out))
	}
	view := io1.out[0]
	if !strings.Contains(view, "Bob") {
		t.Fatalf("expected room view to mention Bob, got %q", view)
	}
	if _, ok := s1.ResolveHandle(1); !ok {
		t.Fatal("expected handle 1 to resolve after rendering")
	}
}
