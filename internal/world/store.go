// File: internal/world/store.go
// MUD Engine - World Store (C2)

// Package world is the single authoritative in-memory view of rooms,
// objects, monsters, and NPCs, backed by internal/database for
// persistence: Load reads every aggregate into RWMutex-guarded maps up
// front, and a lookup that misses returns not-found without going back
// to the database. Rooms carry no stored exit table, only
// (x,y); exits are computed on demand from coordinate adjacency plus a
// small portal table.
package world

import (
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"mudengine/internal/apperrors"

	"mudengine/internal/database"
)

// Direction is one of the four cardinals the dispatcher understands
// plus the portal pseudo-direction "enter".
type Direction string

const (
	North Direction = "north"
	South Direction = "south"
	East  Direction = "east"
	West  Direction = "west"
	Enter Direction = "enter"
)

// Delta returns the coordinate change for a cardinal direction. Enter
// has no fixed delta; it is resolved via the portal table instead.
func Delta(d Direction) (dx, dy int, ok bool) {
	switch d {
	case North:
		return 0, 1, true
	case South:
		return 0, -1, true
	case East:
		return 1, 0, true
	case West:
		return -1, 0, true
	default:
		return 0, 0, false
	}
}

// Coord is an (x,y) pair.
type Coord struct{ X, Y int }

// Store is the process-wide authoritative world state.
type Store struct {
	log *log.Logger

	mu           sync.RWMutex
	roomsByID    map[string]*database.Room
	roomsByCoord map[Coord]*database.Room
	connections  map[Coord][]database.Connection // keyed by origin coord

	objects map[string]*database.GameObject // objectID -> object
	npcs    map[string]*database.NPC

	monMu    sync.RWMutex
	monsters map[string]*database.Monster // monsterID -> monster

	defaultRoomID string

	globalCaps map[string]int // templateID -> max alive instances
}

// New creates an empty store. Call Load to prime it from the database.
func New(defaultRoomID string, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(nopWriter{}, "[world] ", log.LstdFlags)
	}
	return &Store{
		log:           logger,
		roomsByID:     make(map[string]*database.Room),
		roomsByCoord:  make(map[Coord]*database.Room),
		connections:   make(map[Coord][]database.Connection),
		objects:       make(map[string]*database.GameObject),
		npcs:          make(map[string]*database.NPC),
		monsters:      make(map[string]*database.Monster),
		defaultRoomID: defaultRoomID,
		globalCaps:    make(map[string]int),
	}
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }

// SetGlobalCap registers the maximum number of simultaneously-alive
// instances of templateID permitted across the whole world.
func (s *Store) SetGlobalCap(templateID string, max int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.globalCaps[templateID] = max
}

// Load reads every room, connection, object, monster, and NPC from the
// database into memory.
func (s *Store) Load() error {
	rooms, err := database.GetAllRooms()
	if err != nil {
		return fmt.Errorf("load rooms: %w", err)
	}
	conns, err := database.GetAllConnections()
	if err != nil {
		return fmt.Errorf("load connections: %w", err)
	}
	objs, err := database.GetAllObjects()
	if err != nil {
		return fmt.Errorf("load objects: %w", err)
	}
	mons, err := database.GetAllMonsters()
	if err != nil {
		return fmt.Errorf("load monsters: %w", err)
	}
	npcs, err := database.GetAllNPCs()
	if err != nil {
		return fmt.Errorf("load npcs: %w", err)
	}

	s.mu.Lock()
	for _, r := range rooms {
		s.roomsByID[r.ID] = r
		s.roomsByCoord[Coord{r.X, r.Y}] = r
	}
	for _, c := range conns {
		origin := Coord{c.FromX, c.FromY}
		s.connections[origin] = append(s.connections[origin], c)
	}
	for _, o := range objs {
		s.objects[o.ID] = o
	}
	for _, n := range npcs {
		s.npcs[n.ID] = n
	}
	s.mu.Unlock()

	s.monMu.Lock()
	for _, m := range mons {
		s.monsters[m.ID] = m
	}
	s.monMu.Unlock()

	s.log.Printf("loaded %d rooms, %d connections, %d objects, %d monsters, %d npcs",
		len(rooms), len(conns), len(objs), len(mons), len(npcs))

	return s.IntegritySweep()
}

// GetRoom returns a room by id.
func (s *Store) GetRoom(id string) (*database.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.roomsByID[id]
	if !ok {
		return nil, apperrors.NotFound("error.room_not_found", map[string]any{"id": id})
	}
	return r, nil
}

// GetRoomAt returns the room at (x,y), or nil if none exists.
func (s *Store) GetRoomAt(x, y int) *database.Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.roomsByCoord[Coord{x, y}]
}

// CreateRoom persists and indexes a new room.
func (s *Store) CreateRoom(r *database.Room) error {
	if err := database.CreateRoom(r); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roomsByID[r.ID] = r
	s.roomsByCoord[Coord{r.X, r.Y}] = r
	return nil
}

// UpdateRoom persists changes and keeps both indexes consistent (in
// case of a coordinate change).
func (s *Store) UpdateRoom(r *database.Room) error {
	s.mu.Lock()
	if old, ok := s.roomsByID[r.ID]; ok {
		delete(s.roomsByCoord, Coord{old.X, old.Y})
	}
	s.mu.Unlock()

	if err := database.UpdateRoom(r); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.roomsByID[r.ID] = r
	s.roomsByCoord[Coord{r.X, r.Y}] = r
	return nil
}

// DeleteRoom removes a room, first relocating any room-located objects
// to the store's default room.
func (s *Store) DeleteRoom(id string) error {
	s.mu.Lock()
	room, ok := s.roomsByID[id]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("room not found: %s", id)
	}

	for _, obj := range s.GetObjectsIn(database.LocationRoom, id) {
		if err := s.MoveObject(obj.ID, database.LocationRoom, s.defaultRoomID); err != nil {
			s.log.Printf("relocate object %s on room delete: %v", obj.ID, err)
		}
	}

	if err := database.DeleteRoom(id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.roomsByID, id)
	delete(s.roomsByCoord, Coord{room.X, room.Y})
	delete(s.connections, Coord{room.X, room.Y})
	return nil
}

// ComputeExits synthesizes the direction->roomID map for roomID from
// coordinate adjacency plus the portal connection table.
func (s *Store) ComputeExits(roomID string) (map[Direction]string, error) {
	room, err := s.GetRoom(roomID)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	exits := make(map[Direction]string)
	for _, d := range []Direction{North, South, East, West} {
		dx, dy, _ := Delta(d)
		if dest, ok := s.roomsByCoord[Coord{room.X + dx, room.Y + dy}]; ok {
			exits[d] = dest.ID
		}
	}
	for _, c := range s.connections[Coord{room.X, room.Y}] {
		if dest, ok := s.roomsByCoord[Coord{c.ToX, c.ToY}]; ok {
			exits[Direction(c.Keyword)] = dest.ID
		}
	}
	return exits, nil
}

// CreateConnection adds a portal link, validating both endpoints exist.
func (s *Store) CreateConnection(c database.Connection) error {
	s.mu.RLock()
	_, fromOK := s.roomsByCoord[Coord{c.FromX, c.FromY}]
	_, toOK := s.roomsByCoord[Coord{c.ToX, c.ToY}]
	s.mu.RUnlock()
	if !fromOK || !toOK {
		return apperrors.UserInput("error.exit_endpoints_missing", nil)
	}
	if err := database.CreateConnection(c); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	origin := Coord{c.FromX, c.FromY}
	s.connections[origin] = append(s.connections[origin], c)
	return nil
}

// GetObjectsIn returns every object located in {room|inventory|container} id.
func (s *Store) GetObjectsIn(locType database.LocationType, id string) []*database.GameObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*database.GameObject
	for _, o := range s.objects {
		if o.LocationType == locType && o.LocationID == id {
			out = append(out, o)
		}
	}
	return out
}

// CreateObject persists and indexes a new object.
func (s *Store) CreateObject(o *database.GameObject) error {
	if err := database.CreateObject(o); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[o.ID] = o
	return nil
}

// MoveObject relocates an object, validating the target room/owner exists.
func (s *Store) MoveObject(objectID string, locType database.LocationType, locID string) error {
	if locType == database.LocationRoom {
		if _, err := s.GetRoom(locID); err != nil {
			return fmt.Errorf("move object: %w", err)
		}
	}
	if err := database.MoveObject(objectID, locType, locID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if o, ok := s.objects[objectID]; ok {
		o.LocationType = locType
		o.LocationID = locID
	}
	return nil
}

// DeleteObject destroys an object.
func (s *Store) DeleteObject(objectID string) error {
	if err := database.DeleteObject(objectID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, objectID)
	return nil
}

// GetMonstersAt returns alive monsters at (x,y).
func (s *Store) GetMonstersAt(x, y int) []*database.Monster {
	s.monMu.RLock()
	defer s.monMu.RUnlock()
	var out []*database.Monster
	for _, m := range s.monsters {
		if m.IsAlive && m.X == x && m.Y == y {
			out = append(out, m)
		}
	}
	return out
}

// AllMonsters returns every tracked monster instance (alive or not).
func (s *Store) AllMonsters() []*database.Monster {
	s.monMu.RLock()
	defer s.monMu.RUnlock()
	out := make([]*database.Monster, 0, len(s.monsters))
	for _, m := range s.monsters {
		out = append(out, m)
	}
	return out
}

// CreateMonster persists and indexes a new monster instance, enforcing
// the template's global cap if one is registered.
func (s *Store) CreateMonster(m *database.Monster) error {
	s.mu.RLock()
	cap, capped := s.globalCaps[m.TemplateID]
	s.mu.RUnlock()

	if capped {
		alive := 0
		s.monMu.RLock()
		for _, existing := range s.monsters {
			if existing.TemplateID == m.TemplateID && existing.IsAlive {
				alive++
			}
		}
		s.monMu.RUnlock()
		if alive >= cap {
			return fmt.Errorf("global cap reached for template %s", m.TemplateID)
		}
	}

	if err := database.CreateMonster(m); err != nil {
		return err
	}
	s.monMu.Lock()
	defer s.monMu.Unlock()
	s.monsters[m.ID] = m
	return nil
}

// UpdateMonster persists a mutated monster snapshot's HP and position
// and stores the snapshot in memory.
func (s *Store) UpdateMonster(m *database.Monster) error {
	if err := database.UpdateMonsterHP(m.ID, m.CurrentHP); err != nil {
		return err
	}
	if err := database.UpdateMonsterPosition(m.ID, m.X, m.Y); err != nil {
		return err
	}
	s.monMu.Lock()
	defer s.monMu.Unlock()
	s.monsters[m.ID] = m
	return nil
}

// MoveMonster relocates a roaming monster and persists the new coordinates.
func (s *Store) MoveMonster(id string, x, y int) error {
	if err := database.UpdateMonsterPosition(id, x, y); err != nil {
		return err
	}
	s.monMu.Lock()
	defer s.monMu.Unlock()
	if m, ok := s.monsters[id]; ok {
		m.X, m.Y = x, y
	}
	return nil
}

// KillMonster marks a monster dead: HP=0, alive=false, death stamped.
func (s *Store) KillMonster(id string) error {
	if err := database.KillMonster(id); err != nil {
		return err
	}
	s.monMu.Lock()
	defer s.monMu.Unlock()
	if m, ok := s.monsters[id]; ok {
		m.IsAlive = false
		m.CurrentHP = 0
		now := time.Now()
		m.LastDeathTime.Time, m.LastDeathTime.Valid = now, true
	}
	return nil
}

// RespawnMonster resets HP to maxHP and alive=true at the monster's
// stored spawn coordinates.
func (s *Store) RespawnMonster(id string, maxHP int) error {
	if err := database.RespawnMonster(id, maxHP); err != nil {
		return err
	}
	s.monMu.Lock()
	defer s.monMu.Unlock()
	if m, ok := s.monsters[id]; ok {
		m.IsAlive = true
		m.CurrentHP = maxHP
		m.X, m.Y = m.SpawnX, m.SpawnY
	}
	return nil
}

// GetNPCsAt returns active NPCs at (x,y).
func (s *Store) GetNPCsAt(x, y int) []*database.NPC {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*database.NPC
	for _, n := range s.npcs {
		if n.IsActive && n.X == x && n.Y == y {
			out = append(out, n)
		}
	}
	return out
}

// GetNPCsInRoom translates a room id to coordinates and returns its NPCs.
func (s *Store) GetNPCsInRoom(roomID string) ([]*database.NPC, error) {
	room, err := s.GetRoom(roomID)
	if err != nil {
		return nil, err
	}
	return s.GetNPCsAt(room.X, room.Y), nil
}

// DefaultRoomID returns the room new/orphaned state relocates to.
func (s *Store) DefaultRoomID() string { return s.defaultRoomID }

// IntegritySweep detects objects whose location no longer resolves and
// relocates them to the default room, and culls monsters above their
// template's global cap, oldest-first, logging how many it relocated
// and culled. The returned error is always nil.
func (s *Store) IntegritySweep() error {
	relocated := 0

	s.mu.RLock()
	var orphans []*database.GameObject
	for _, o := range s.objects {
		if o.LocationType != database.LocationRoom {
			continue
		}
		if _, ok := s.roomsByID[o.LocationID]; !ok {
			orphans = append(orphans, o)
		}
	}
	s.mu.RUnlock()

	for _, o := range orphans {
		if err := s.MoveObject(o.ID, database.LocationRoom, s.defaultRoomID); err != nil {
			s.log.Printf("integrity: failed to relocate object %s: %v", o.ID, err)
			continue
		}
		relocated++
	}

	culled := 0
	s.mu.RLock()
	caps := make(map[string]int, len(s.globalCaps))
	for k, v := range s.globalCaps {
		caps[k] = v
	}
	s.mu.RUnlock()

	for templateID, max := range caps {
		s.monMu.Lock()
		var instances []*database.Monster
		for _, m := range s.monsters {
			if m.TemplateID == templateID && m.IsAlive {
				instances = append(instances, m)
			}
		}
		s.monMu.Unlock()

		if len(instances) <= max {
			continue
		}
		// Oldest-first cull.
		for i := 0; i < len(instances); i++ {
			for j := i + 1; j < len(instances); j++ {
				if instances[j].CreatedAt.Before(instances[i].CreatedAt) {
					instances[i], instances[j] = instances[j], instances[i]
				}
			}
		}
		excess := instances[:len(instances)-max]
		for _, m := range excess {
			if err := database.DeleteMonster(m.ID); err != nil {
				s.log.Printf("integrity: failed to cull monster %s: %v", m.ID, err)
				continue
			}
			s.monMu.Lock()
			delete(s.monsters, m.ID)
			s.monMu.Unlock()
			culled++
		}
	}

	if relocated > 0 || culled > 0 {
		s.log.Printf("integrity sweep: relocated %d objects, culled %d monsters", relocated, culled)
	}
	return nil
}

// RandomCardinal returns a random cardinal direction, used by the
// monster roaming pass.
func RandomCardinal(r *rand.Rand) Direction {
	dirs := []Direction{North, South, East, West}
	return dirs[r.Intn(len(dirs))]
}
