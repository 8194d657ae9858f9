// File: internal/combat/combat.go
// MUD Engine - Combat Engine (C7)

package combat

import (
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"mudengine/internal/database"
	"mudengine/internal/eventbus"
	"mudengine/internal/locale"
	"mudengine/internal/session"
	"mudengine/internal/world"
)

// Outcome is how a combat ended.
type Outcome string

const (
	OutcomePlayerWon Outcome = "player_won"
	OutcomePlayerLost Outcome = "player_lost"
	OutcomeFled        Outcome = "fled"
)

// Combat is one active player-vs-monster encounter, run by its own
// turn-loop goroutine (one task per active combat, per the
// concurrency model).
type Combat struct {
	ID string

	engine *Engine

	sess        *session.Session
	playerStats Stats

	monster      *database.Monster
	monsterStats Stats

	playerTurn bool // whose turn is it now
	defendFlag [2]bool // [0]=player defending, [1]=monster defending, cleared at start of that side's next turn

	actionCh chan string
	doneCh   chan struct{}
}

// Engine owns every active Combat and the configuration shared by them.
type Engine struct {
	log *log.Logger

	store       *world.Store
	sessions    *session.Registry
	bus         *eventbus.Bus
	broadcaster RoomBroadcaster

	turnTimeout   time.Duration
	respawnRoomID string

	mu       sync.Mutex
	byID     map[string]*Combat
	byPlayer map[string]*Combat // keyed by session id
}

// RoomBroadcaster is the narrow slice of C9 the combat engine needs;
// kept as an interface to avoid an import cycle with internal/broadcast.
type RoomBroadcaster interface {
	BroadcastToRoom(x, y int, localeKey string, args map[string]any, exclude *session.Session)
}

// NewEngine constructs a combat engine. broadcaster may be nil in
// tests; narration is then skipped.
func NewEngine(store *world.Store, sessions *session.Registry, bus *eventbus.Bus, broadcaster RoomBroadcaster, turnTimeout time.Duration, respawnRoomID string, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.New(nopWriter{}, "[combat] ", log.LstdFlags)
	}
	return &Engine{
		log:           logger,
		store:         store,
		sessions:      sessions,
		bus:           bus,
		broadcaster:   broadcaster,
		turnTimeout:   turnTimeout,
		respawnRoomID: respawnRoomID,
		byID:          make(map[string]*Combat),
		byPlayer:      make(map[string]*Combat),
	}
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }

func rollD(sides int) int {
	if sides <= 0 {
		return 1
	}
	return rand.Intn(sides) + 1
}

func rollDice(count, sides, bonus int) int {
	total := bonus
	for i := 0; i < count; i++ {
		total += rollD(sides)
	}
	if total < 0 {
		total = 0
	}
	return total
}

// Start initiates combat between sess and monster, rolling initiative
// and spawning the turn-loop goroutine. Returns the combat id.
func (e *Engine) Start(sess *session.Session, player *database.Player, monster *database.Monster) (string, error) {
	e.mu.Lock()
	if _, already := e.byPlayer[sess.ID]; already {
		e.mu.Unlock()
		return "", fmt.Errorf("already in combat")
	}
	e.mu.Unlock()

	pStats := ParseStats(player.StatsBlob, DefaultPlayerStats())
	mStats := ParseStats(monster.StatsBlob, DefaultMonsterStats())
	if mStats.HP <= 0 {
		mStats.HP = monster.CurrentHP
	}

	playerInit := rollD(20) + pStats.DexModifier()
	monsterInit := rollD(20) + mStats.DexModifier()
	playerGoesFirst := playerInit > monsterInit || (playerInit == monsterInit && pStats.Dexterity >= mStats.Dexterity)

	c := &Combat{
		ID:           fmt.Sprintf("combat-%s-%s", sess.ID, monster.ID),
		engine:       e,
		sess:         sess,
		playerStats:  pStats,
		monster:      monster,
		monsterStats: mStats,
		playerTurn:   playerGoesFirst,
		actionCh:     make(chan string, 1),
		doneCh:       make(chan struct{}),
	}

	e.mu.Lock()
	e.byID[c.ID] = c
	e.byPlayer[sess.ID] = c
	e.mu.Unlock()

	sess.EnterCombat(c.ID)
	x, y := sess.Coords()
	e.narrateRoom(x, y, "combat.initiated", map[string]any{"player": sess.Username(), "monster": monster.NameEn}, nil)
	if e.bus != nil {
		e.bus.Publish(eventbus.Event{Kind: eventbus.CombatStarted, Source: sess.Username(), Target: monster.ID})
	}

	go c.run()
	return c.ID, nil
}

// SubmitAction delivers a player's chosen action to their active
// combat, if it is currently their turn. Returns false if no combat
// or it is not the player's turn.
func (e *Engine) SubmitAction(sessionID, action string) bool {
	e.mu.Lock()
	c, ok := e.byPlayer[sessionID]
	e.mu.Unlock()
	if !ok || !c.playerTurn {
		return false
	}
	select {
	case c.actionCh <- action:
		return true
	default:
		return false
	}
}

// InCombat reports whether a session currently has an active combat.
func (e *Engine) InCombat(sessionID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.byPlayer[sessionID]
	return ok
}

func (e *Engine) narrateRoom(x, y int, key string, args map[string]any, exclude *session.Session) {
	if e.broadcaster == nil {
		return
	}
	e.broadcaster.BroadcastToRoom(x, y, key, args, exclude)
}

func (c *Combat) run() {
	defer close(c.doneCh)

	for {
		if c.playerTurn {
			if c.defendFlag[0] {
				c.defendFlag[0] = false
				c.sess.SetDefending(false)
			}
		} else {
			c.defendFlag[1] = false
		}

		var action string
		if c.playerTurn {
			select {
			case action = <-c.actionCh:
			case <-time.After(c.engine.turnTimeout):
				action = "attack"
			}
		} else {
			action = c.monsterDecide()
		}

		ended, outcome := c.resolve(c.playerTurn, action)
		if ended {
			c.engine.end(c, outcome)
			return
		}
		c.playerTurn = !c.playerTurn
	}
}

func (c *Combat) monsterDecide() string {
	if c.monsterStats.MaxHP > 0 && c.monsterStats.HP*4 < c.monsterStats.MaxHP {
		return "flee"
	}
	return "attack"
}

// resolve applies one actor's action and reports whether combat ended
// and with what outcome.
func (c *Combat) resolve(isPlayerActing bool, action string) (bool, Outcome) {
	switch action {
	case "defend":
		if isPlayerActing {
			c.defendFlag[0] = true
			c.sess.SetDefending(true)
		} else {
			c.defendFlag[1] = true
		}
		return false, ""

	case "flee":
		actorStats, otherStats := c.playerStats, c.monsterStats
		if !isPlayerActing {
			actorStats, otherStats = c.monsterStats, c.playerStats
		}
		gap := actorStats.DexModifier() - otherStats.DexModifier()
		chance := 0.5 + float64(gap)*0.05
		if chance < 0.05 {
			chance = 0.05
		}
		if chance > 0.95 {
			chance = 0.95
		}
		if rand.Float64() < chance {
			if isPlayerActing {
				return true, OutcomeFled
			}
			// Monster flees: treat as a won encounter with no loot.
			return true, OutcomePlayerWon
		}
		return false, ""

	default: // "attack"
		var attacker, defender *Stats
		if isPlayerActing {
			attacker, defender = &c.playerStats, &c.monsterStats
		} else {
			attacker, defender = &c.monsterStats, &c.playerStats
		}

		toHit := rollD(20) + attacker.AttackBonus
		if toHit >= defender.ArmorClass {
			dmg := rollDice(attacker.DamageDice, attacker.DamageSides, attacker.DamageBonus)
			defendingIdx := 1
			if isPlayerActing {
				defendingIdx = 1 // defender is monster
			} else {
				defendingIdx = 0 // defender is player
			}
			if c.defendFlag[defendingIdx] {
				dmg /= 2
			}
			defender.HP -= dmg
			if defender.HP < 0 {
				defender.HP = 0
			}
			c.narrateHit(isPlayerActing, dmg)
		} else {
			c.narrateMiss(isPlayerActing)
		}

		c.persist()

		if c.monsterStats.HP <= 0 {
			return true, OutcomePlayerWon
		}
		if c.playerStats.HP <= 0 {
			return true, OutcomePlayerLost
		}
		return false, ""
	}
}

func (c *Combat) narrateHit(playerHit bool, dmg int) {
	x, y := c.sess.Coords()
	if playerHit {
		c.engine.narrateRoom(x, y, "combat.player_hits", map[string]any{"player": c.sess.Username(), "monster": c.monster.NameEn, "dmg": dmg}, nil)
	} else {
		c.engine.narrateRoom(x, y, "combat.monster_hits", map[string]any{"player": c.sess.Username(), "monster": c.monster.NameEn, "dmg": dmg}, nil)
	}
}

func (c *Combat) narrateMiss(playerActing bool) {
	x, y := c.sess.Coords()
	if playerActing {
		c.engine.narrateRoom(x, y, "combat.player_misses", map[string]any{"player": c.sess.Username(), "monster": c.monster.NameEn}, nil)
	} else {
		c.engine.narrateRoom(x, y, "combat.monster_misses", map[string]any{"player": c.sess.Username(), "monster": c.monster.NameEn}, nil)
	}
}

func (c *Combat) persist() {
	if err := database.UpdateMonsterHP(c.monster.ID, c.monsterStats.HP); err != nil {
		c.engine.log.Printf("persist monster hp: %v", err)
	}
	pid := c.sess.PlayerID()
	if pid == "" {
		return
	}
	if err := database.UpdatePlayerStats(pid, c.playerStats.Encode()); err != nil {
		c.engine.log.Printf("persist player stats: %v", err)
	}
}

// end tears down a finished combat, applying termination effects per
// spec §4.7, publishes CombatEnded, and clears both sides' flags.
func (e *Engine) end(c *Combat, outcome Outcome) {
	e.mu.Lock()
	delete(e.byID, c.ID)
	delete(e.byPlayer, c.sess.ID)
	e.mu.Unlock()

	x, y := c.sess.Coords()

	switch outcome {
	case OutcomePlayerWon:
		if err := e.store.KillMonster(c.monster.ID); err != nil {
			e.log.Printf("kill monster %s: %v", c.monster.ID, err)
		}
		e.resolveDrops(c)
		e.narrateRoom(x, y, "combat.monster_defeated", map[string]any{"player": c.sess.Username(), "monster": c.monster.NameEn}, nil)

	case OutcomePlayerLost:
		c.playerStats.HP = c.playerStats.MaxHP / 2
		if c.playerStats.HP < 1 {
			c.playerStats.HP = 1
		}
		if pid := c.sess.PlayerID(); pid != "" {
			database.UpdatePlayerStats(pid, c.playerStats.Encode())
			database.UpdatePlayerLocation(pid, e.respawnRoomID)
		}
		if room, err := e.store.GetRoom(e.respawnRoomID); err == nil {
			c.sess.SetCoords(room.X, room.Y)
		}
		c.sess.IO.WriteLine(locale.Get(locale.Tag(c.sess.Locale()), "combat.you_died"))
		e.narrateRoom(x, y, "combat.player_defeated", map[string]any{"player": c.sess.Username(), "monster": c.monster.NameEn}, nil)

	case OutcomeFled:
		e.narrateRoom(x, y, "combat.player_fled", map[string]any{"player": c.sess.Username()}, nil)
	}

	c.sess.ExitCombat()
	if e.bus != nil {
		e.bus.Publish(eventbus.Event{Kind: eventbus.CombatEnded, Source: c.sess.Username(), Target: c.monster.ID,
			Data: map[string]any{"outcome": string(outcome)}})
	}
}

// dropEntry is one row of a monster's drop_items_blob loot table.
type dropEntry struct {
	NameEn        string  `json:"name_en"`
	NameKo        string  `json:"name_ko"`
	DescEn        string  `json:"description_en"`
	DescKo        string  `json:"description_ko"`
	Category      string  `json:"category"`
	Chance        float64 `json:"chance"`
	EquipmentSlot string  `json:"equipment_slot"`
}

// resolveDrops rolls each drop-table entry and instantiates successes
// into the player's inventory. Gold reward is added to the player's
// stats blob.
func (e *Engine) resolveDrops(c *Combat) {
	pid := c.sess.PlayerID()
	if pid == "" {
		return
	}

	if c.monster.GoldReward > 0 {
		player, err := database.GetPlayer(pid)
		if err == nil {
			stats := ParseStats(player.StatsBlob, DefaultPlayerStats())
			stats.Gold += c.monster.GoldReward
			database.UpdatePlayerStats(pid, stats.Encode())
		}
		c.sess.IO.WriteLine(fmt.Sprintf("You find %d gold.", c.monster.GoldReward))
	}

	var entries []dropEntry
	if c.monster.DropItemsBlob != "" {
		_ = json.Unmarshal([]byte(c.monster.DropItemsBlob), &entries)
	}
	for _, d := range entries {
		if d.Chance <= 0 || rand.Float64() > d.Chance {
			continue
		}
		obj := &database.GameObject{
			NameEn: d.NameEn, NameKo: d.NameKo,
			DescriptionEn: d.DescEn, DescriptionKo: d.DescKo,
			Category: d.Category, EquipmentSlot: d.EquipmentSlot,
			LocationType: database.LocationInventory, LocationID: pid,
		}
		if err := e.store.CreateObject(obj); err != nil {
			e.log.Printf("resolve drop %s for %s: %v", d.NameEn, pid, err)
			continue
		}
		c.sess.IO.WriteLine(fmt.Sprintf("You loot %s.", objectName(c.sess, obj)))
	}
}

func objectName(sess *session.Session, o *database.GameObject) string {
	if locale.Tag(sess.Locale()) == locale.Korean {
		return o.NameKo
	}
	return o.NameEn
}
