// File: internal/monster/lifecycle.go
// MUD Engine - Monster Lifecycle (C6)

// Package monster drives monster respawn, initial spawn, and roaming
// on its own 30-second heartbeat task, separate from the scheduler's
// tick loop (C8). Aggro checks for C5 are served from the world
// store's live monster index.
package monster

import (
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"time"

	"mudengine/internal/combat"
	"mudengine/internal/database"
	"mudengine/internal/eventbus"
	"mudengine/internal/session"
	"mudengine/internal/world"
)

// SpawnDescriptor is one entry in a room's spawn table.
type SpawnDescriptor struct {
	TemplateID  string
	MaxPerRoom  int
	SpawnChance float64
}

// Template is the data a new monster instance is copied from.
type Template struct {
	NameEn, NameKo string
	DescEn, DescKo string
	MonsterType    database.MonsterType
	Behavior       database.MonsterBehavior
	StatsBlob      string
	GoldReward     int
	DropItemsBlob  string
	RespawnDelay   int
	AggroRange     int
	RoamingRange   int
	FactionID      string
}

type roamConfig struct {
	RoamChance float64 `json:"roam_chance"`
	MinX       int     `json:"min_x"`
	MaxX       int     `json:"max_x"`
	MinY       int     `json:"min_y"`
	MaxY       int     `json:"max_y"`
}

// RoomBroadcaster is the narrow slice of C9 the lifecycle needs.
type RoomBroadcaster interface {
	BroadcastToRoom(x, y int, localeKey string, args map[string]any, exclude *session.Session)
}

// Lifecycle owns spawn tables and the instance-management loop.
type Lifecycle struct {
	log *log.Logger

	store       *world.Store
	bus         *eventbus.Bus
	broadcaster RoomBroadcaster
	rng         *rand.Rand

	spawnPoints map[string][]SpawnDescriptor // room id -> descriptors
	templates   map[string]Template

	stopCh chan struct{}
}

// New constructs a Lifecycle. Call RegisterTemplate/RegisterSpawnPoint
// during setup, then Run in its own goroutine.
func New(store *world.Store, bus *eventbus.Bus, broadcaster RoomBroadcaster, logger *log.Logger) *Lifecycle {
	if logger == nil {
		logger = log.New(nopWriter{}, "[monster] ", log.LstdFlags)
	}
	return &Lifecycle{
		log:         logger,
		store:       store,
		bus:         bus,
		broadcaster: broadcaster,
		rng:         rand.New(rand.NewSource(1)),
		spawnPoints: make(map[string][]SpawnDescriptor),
		templates:   make(map[string]Template),
		stopCh:      make(chan struct{}),
	}
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }

func (l *Lifecycle) RegisterTemplate(id string, t Template) {
	l.templates[id] = t
}

func (l *Lifecycle) RegisterSpawnPoint(roomID string, d SpawnDescriptor) {
	l.spawnPoints[roomID] = append(l.spawnPoints[roomID], d)
}

// Run blocks, ticking every 30 seconds until Stop is called.
func (l *Lifecycle) Run() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.RunOnce()
		case <-l.stopCh:
			return
		}
	}
}

func (l *Lifecycle) Stop() { close(l.stopCh) }

// RunOnce executes the respawn, initial-spawn, and roaming passes once.
// Exported so tests can trigger an out-of-band pass.
func (l *Lifecycle) RunOnce() {
	l.respawnPass()
	l.initialSpawnPass()
	l.roamingPass()
}

func (l *Lifecycle) respawnPass() {
	now := time.Now()
	for _, m := range l.store.AllMonsters() {
		if m.IsAlive {
			continue
		}
		if !m.LastDeathTime.Valid {
			continue
		}
		if now.Sub(m.LastDeathTime.Time) < time.Duration(m.RespawnDelaySec)*time.Second {
			continue
		}
		stats := combat.ParseStats(m.StatsBlob, combat.DefaultMonsterStats())
		if err := l.store.RespawnMonster(m.ID, stats.MaxHP); err != nil {
			l.log.Printf("respawn %s: %v", m.ID, err)
			continue
		}
		l.publish(eventbus.MonsterSpawned, m.ID, m.SpawnX, m.SpawnY)
	}
}

func (l *Lifecycle) initialSpawnPass() {
	for roomID, descriptors := range l.spawnPoints {
		room, err := l.store.GetRoom(roomID)
		if err != nil {
			continue
		}
		for _, d := range descriptors {
			tmpl, ok := l.templates[d.TemplateID]
			if !ok {
				continue
			}
			alive := 0
			for _, m := range l.store.GetMonstersAt(room.X, room.Y) {
				if m.TemplateID == d.TemplateID {
					alive++
				}
			}
			if alive >= d.MaxPerRoom {
				continue
			}
			if l.rng.Float64() > d.SpawnChance {
				continue
			}
			inst := &database.Monster{
				TemplateID:      d.TemplateID,
				NameEn:          tmpl.NameEn,
				NameKo:          tmpl.NameKo,
				DescEn:          tmpl.DescEn,
				DescKo:          tmpl.DescKo,
				MonsterType:     tmpl.MonsterType,
				Behavior:        tmpl.Behavior,
				StatsBlob:       tmpl.StatsBlob,
				GoldReward:      tmpl.GoldReward,
				DropItemsBlob:   tmpl.DropItemsBlob,
				SpawnX:          room.X,
				SpawnY:          room.Y,
				X:               room.X,
				Y:               room.Y,
				RespawnDelaySec: tmpl.RespawnDelay,
				AggroRange:      tmpl.AggroRange,
				RoamingRange:    tmpl.RoamingRange,
				IsAlive:         true,
				FactionID:       tmpl.FactionID,
			}
			stats := combat.ParseStats(tmpl.StatsBlob, combat.DefaultMonsterStats())
			inst.CurrentHP = stats.MaxHP
			if err := l.store.CreateMonster(inst); err != nil {
				l.log.Printf("spawn %s in %s: %v", d.TemplateID, roomID, err)
				continue
			}
			l.publish(eventbus.MonsterSpawned, inst.ID, room.X, room.Y)
		}
	}
}

// SpawnAt instantiates templateID at (x,y) immediately, bypassing the
// spawn-table chance roll. Used by the admin "spawnmonster" verb.
func (l *Lifecycle) SpawnAt(templateID string, x, y int) (*database.Monster, error) {
	tmpl, ok := l.templates[templateID]
	if !ok {
		return nil, fmt.Errorf("unknown monster template: %s", templateID)
	}
	stats := combat.ParseStats(tmpl.StatsBlob, combat.DefaultMonsterStats())
	inst := &database.Monster{
		TemplateID: templateID,
		NameEn:     tmpl.NameEn, NameKo: tmpl.NameKo,
		DescEn: tmpl.DescEn, DescKo: tmpl.DescKo,
		MonsterType: tmpl.MonsterType, Behavior: tmpl.Behavior,
		StatsBlob: tmpl.StatsBlob, CurrentHP: stats.MaxHP,
		GoldReward: tmpl.GoldReward, DropItemsBlob: tmpl.DropItemsBlob,
		SpawnX: x, SpawnY: y, X: x, Y: y,
		RespawnDelaySec: tmpl.RespawnDelay, AggroRange: tmpl.AggroRange,
		RoamingRange: tmpl.RoamingRange, IsAlive: true, FactionID: tmpl.FactionID,
	}
	if err := l.store.CreateMonster(inst); err != nil {
		return nil, err
	}
	l.publish(eventbus.MonsterSpawned, inst.ID, x, y)
	return inst, nil
}

func (l *Lifecycle) roamingPass() {
	for _, m := range l.store.AllMonsters() {
		if !m.IsAlive {
			continue
		}
		if m.Behavior != database.BehaviorRoaming && m.Behavior != database.BehaviorTerritorial {
			continue
		}
		cfg := parseRoamConfig(m.PropertiesBlob, m.SpawnX, m.SpawnY, m.RoamingRange)
		if l.rng.Float64() > cfg.RoamChance {
			continue
		}
		dir := world.RandomCardinal(l.rng)
		dx, dy, _ := world.Delta(dir)
		nx, ny := m.X+dx, m.Y+dy
		if nx < cfg.MinX || nx > cfg.MaxX || ny < cfg.MinY || ny > cfg.MaxY {
			continue
		}
		dest := l.store.GetRoomAt(nx, ny)
		if dest == nil {
			continue
		}
		oldX, oldY := m.X, m.Y
		if err := l.store.MoveMonster(m.ID, nx, ny); err != nil {
			continue
		}
		if l.broadcaster != nil {
			l.broadcaster.BroadcastToRoom(oldX, oldY, "room.leave", map[string]any{"player": m.NameEn}, nil)
			l.broadcaster.BroadcastToRoom(nx, ny, "room.enter", map[string]any{"player": m.NameEn}, nil)
		}
		l.publish(eventbus.MonsterMoved, m.ID, nx, ny)
	}
}

func parseRoamConfig(blob string, spawnX, spawnY, roamingRange int) roamConfig {
	cfg := roamConfig{
		RoamChance: 0.1,
		MinX:       spawnX - roamingRange, MaxX: spawnX + roamingRange,
		MinY: spawnY - roamingRange, MaxY: spawnY + roamingRange,
	}
	if blob == "" {
		return cfg
	}
	var parsed struct {
		Roam *roamConfig `json:"roam_config"`
	}
	if err := json.Unmarshal([]byte(blob), &parsed); err == nil && parsed.Roam != nil {
		if parsed.Roam.RoamChance > 0 {
			cfg.RoamChance = parsed.Roam.RoamChance
		}
		if parsed.Roam.MaxX != 0 || parsed.Roam.MinX != 0 {
			cfg.MinX, cfg.MaxX = parsed.Roam.MinX, parsed.Roam.MaxX
		}
		if parsed.Roam.MaxY != 0 || parsed.Roam.MinY != 0 {
			cfg.MinY, cfg.MaxY = parsed.Roam.MinY, parsed.Roam.MaxY
		}
	}
	return cfg
}

func (l *Lifecycle) publish(kind eventbus.Kind, monsterID string, x, y int) {
	if l.bus == nil {
		return
	}
	l.bus.Publish(eventbus.Event{Kind: kind, Target: monsterID, Data: map[string]any{"x": x, "y": y}})
}

// AggroCheck returns the first aggressive, alive monster at (x,y) —
// called by C5 on player arrival. "not yet engaged" is approximated by
// alive (a monster already in combat is still alive but a second
// player attacking it starts a new Combat registered under the new
// attacker — engagement exclusivity is enforced at the combat engine
// layer, not here).
func AggroCheck(store *world.Store, x, y int) *database.Monster {
	for _, m := range store.GetMonstersAt(x, y) {
		if m.MonsterType == database.MonsterAggressive {
			return m
		}
	}
	return nil
}
