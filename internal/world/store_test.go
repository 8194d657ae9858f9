package world

import (
	"testing"

	"mudengine/internal/database"
)

func newTestStore() *Store {
	s := New("default-room", nil)
	s.roomsByID["default-room"] = &database.Room{ID: "default-room", X: 0, Y: 0}
	s.roomsByCoord[Coord{0, 0}] = s.roomsByID["default-room"]

	north := &database.Room{ID: "room-north", X: 0, Y: 1}
	s.roomsByID[north.ID] = north
	s.roomsByCoord[Coord{0, 1}] = north

	portalDest := &database.Room{ID: "room-portal", X: 5, Y: 5}
	s.roomsByID[portalDest.ID] = portalDest
	s.roomsByCoord[Coord{5, 5}] = portalDest

	s.connections[Coord{0, 0}] = []database.Connection{
		{FromX: 0, FromY: 0, ToX: 5, ToY: 5, Keyword: "enter"},
	}
	return s
}

func TestComputeExitsAdjacencyAndPortal(t *testing.T) {
	s := newTestStore()

	exits, err := s.ComputeExits("default-room")
	if err != nil {
		t.Fatalf("ComputeExits: %v", err)
	}
	if exits[North] != "room-north" {
		t.Errorf("expected north exit to room-north, got %q", exits[North])
	}
	if exits[Enter] != "room-portal" {
		t.Errorf("expected enter exit to room-portal, got %q", exits[Enter])
	}
	if _, ok := exits[South]; ok {
		t.Errorf("did not expect a south exit")
	}
}

func TestComputeExitsUnknownRoom(t *testing.T) {
	s := newTestStore()
	if _, err := s.ComputeExits("does-not-exist"); err == nil {
		t.Error("expected error for unknown room")
	}
}

func TestGetRoomAtMiss(t *testing.T) {
	s := newTestStore()
	if r := s.GetRoomAt(99, 99); r != nil {
		t.Errorf("expected nil for unoccupied coordinate, got %+v", r)
	}
}

func TestCreateMonsterRespectsGlobalCap(t *testing.T) {
	s := newTestStore()
	s.SetGlobalCap("goblin", 1)

	s.monsters["existing"] = &database.Monster{ID: "existing", TemplateID: "goblin", IsAlive: true}

	m := &database.Monster{ID: "new-goblin", TemplateID: "goblin", IsAlive: true}
	// The cap check runs before CreateMonster touches the database, so a
	// rejected create needs no database.
	if err := s.CreateMonster(m); err == nil {
		t.Fatalf("expected CreateMonster to reject a goblin beyond the global cap")
	}
}

func TestDeltaKnownDirections(t *testing.T) {
	cases := map[Direction][2]int{
		North: {0, 1},
		South: {0, -1},
		East:  {1, 0},
		West:  {-1, 0},
	}
	for dir, want := range cases {
		dx, dy, ok := Delta(dir)
		if !ok || dx != want[0] || dy != want[1] {
			t.Errorf("Delta(%s) = (%d,%d,%v), want (%d,%d,true)", dir, dx, dy, ok, want[0], want[1])
		}
	}
	if _, _, ok := Delta(Enter); ok {
		t.Error("Delta(Enter) should not resolve to a fixed offset")
	}
}
