package combat

import (
	"testing"
	"time"

	"mudengine/internal/config"
	"mudengine/internal/database"
	"mudengine/internal/locale"
	"mudengine/internal/session"
	"mudengine/internal/world"
)

func setupStore(t *testing.T) *world.Store {
	t.Helper()
	cfg := &config.Config{DBType: "sqlite", DBName: ":memory:", DBMaxConnections: 1, DBMaxIdleConns: 1, DefaultSpawnRoomID: "arena"}
	if err := database.Initialize(cfg); err != nil {
		t.Fatalf("database.Initialize: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	// Initialize seeds the spawn room "arena" at (0,0); give it the
	// fixture's titles and descriptions.
	room := &database.Room{ID: "arena", X: 0, Y: 0, TitleEn: "Arena", DescriptionEn: "A dueling ground.", TitleKo: "경기장", DescriptionKo: "결투장."}
	if err := database.UpdateRoom(room); err != nil {
		t.Fatalf("update seeded room: %v", err)
	}
	store := world.New("arena", nil)
	if err := store.Load(); err != nil {
		t.Fatalf("store.Load: %v", err)
	}
	return store
}

type fakeIO struct{ out []string }

func (f *fakeIO) ReadLine(time.Duration) (string, bool) { return "", false }
func (f *fakeIO) WriteLine(text string)                 { f.out = append(f.out, text) }
func (f *fakeIO) EnableEcho()                           {}
func (f *fakeIO) DisableEcho()                          {}
func (f *fakeIO) Close(string)                          {}

// waitUntilResolved polls the engine until the session is no longer in
// an active combat, or fails the test after timeout.
func waitUntilResolved(t *testing.T, e *Engine, sessionID string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if !e.InCombat(sessionID) {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("combat did not resolve in time")
}

func TestStartRejectsDoubleEngagement(t *testing.T) {
	store := setupStore(t)
	reg := session.NewRegistry(nil, time.Minute, time.Minute, nil)
	e := NewEngine(store, reg, nil, nil, 5*time.Second, "arena", nil)

	sess := session.New("s1", &fakeIO{}, "")
	sess.Authenticate("p1", "Hero", false, "en", 0, 0)
	reg.Add(sess)

	player := &database.Player{ID: "p1", StatsBlob: DefaultPlayerStats().Encode()}
	monster := &database.Monster{ID: "m1", NameEn: "Rat", StatsBlob: Stats{HP: 1000, MaxHP: 1000, ArmorClass: 50, AttackBonus: -100}.Encode(), CurrentHP: 1000}

	if _, err := e.Start(sess, player, monster); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer func() {
		// Drain the combat so its goroutine doesn't leak past the test:
		// both sides are built to always miss, so force an end via a
		// high-probability flee instead of waiting out the turn timeout.
		deadline := time.Now().Add(2 * time.Second)
		for time.Now().Before(deadline) && e.InCombat(sess.ID) {
			e.SubmitAction(sess.ID, "flee")
			time.Sleep(time.Millisecond)
		}
	}()

	if _, err := e.Start(sess, player, monster); err == nil {
		t.Fatal("expected Start to reject a second engagement for the same session")
	}
}

func TestCombatPlayerGuaranteedWin(t *testing.T) {
	store := setupStore(t)
	reg := session.NewRegistry(nil, time.Minute, time.Minute, nil)
	// A short turn timeout makes the idle player's turn default to an
	// attack almost at once.
	e := NewEngine(store, reg, nil, nil, 10*time.Millisecond, "arena", nil)

	io := &fakeIO{}
	sess := session.New("s1", io, "")
	sess.Authenticate("p1", "Hero", false, "en", 0, 0)
	reg.Add(sess)

	// Player always hits for overkill damage; monster never hits back.
	pStats := Stats{HP: 20, MaxHP: 20, Dexterity: 12, ArmorClass: 10, AttackBonus: 100, DamageDice: 1, DamageSides: 1, DamageBonus: 100}
	mStats := Stats{HP: 1, MaxHP: 1, Dexterity: 8, ArmorClass: 1, AttackBonus: -100, DamageDice: 1, DamageSides: 1}
	player := &database.Player{ID: "p1", StatsBlob: pStats.Encode()}
	monster := &database.Monster{ID: "m1", NameEn: "Training Dummy", StatsBlob: mStats.Encode(), CurrentHP: 1, GoldReward: 7}

	if _, err := e.Start(sess, player, monster); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !e.InCombat(sess.ID) {
		t.Fatal("expected session to be marked in-combat immediately after Start")
	}

	waitUntilResolved(t, e, sess.ID)

	if in, _ := sess.InCombat(); in {
		t.Fatal("session should have exited combat state")
	}
	alive := store.GetMonstersAt(0, 0)
	if len(alive) != 0 {
		t.Fatal("defeated monster should no longer be among the alive monsters at its room")
	}

	foundGold := false
	for _, line := range io.out {
		if line == "You find 7 gold." {
			foundGold = true
		}
	}
	if !foundGold {
		t.Fatalf("expected a gold-find message, got %v", io.out)
	}
}

func TestCombatPlayerDefeatedRespawns(t *testing.T) {
	store := setupStore(t)
	reg := session.NewRegistry(nil, time.Minute, time.Minute, nil)
	// A short turn timeout makes the idle player's turn default to an
	// attack almost at once.
	e := NewEngine(store, reg, nil, nil, 10*time.Millisecond, "arena", nil)

	io := &fakeIO{}
	sess := session.New("s1", io, "")
	sess.Authenticate("p1", "Hero", false, "en", 0, 0)
	reg.Add(sess)

	// Monster always hits for overkill damage; player never hits back.
	pStats := Stats{HP: 10, MaxHP: 10, Dexterity: 8, ArmorClass: 50, AttackBonus: -100, DamageDice: 1, DamageSides: 1}
	mStats := Stats{HP: 100, MaxHP: 100, Dexterity: 12, ArmorClass: 1, AttackBonus: 100, DamageDice: 1, DamageSides: 1, DamageBonus: 100}
	player := &database.Player{ID: "p1", StatsBlob: pStats.Encode()}
	monster := &database.Monster{ID: "m1", NameEn: "Ogre", StatsBlob: mStats.Encode(), CurrentHP: 100}

	if _, err := e.Start(sess, player, monster); err != nil {
		t.Fatalf("Start: %v", err)
	}

	waitUntilResolved(t, e, sess.ID)

	x, y := sess.Coords()
	arena := store.GetRoomAt(0, 0)
	if arena == nil {
		t.Fatal("expected arena room to exist")
	}
	if x != arena.X || y != arena.Y {
		t.Fatalf("respawn room id is also (0,0) in this fixture; got (%d,%d)", x, y)
	}

	want := locale.Get(locale.English, "combat.you_died")
	diedMsg := false
	for _, line := range io.out {
		if line == want {
			diedMsg = true
		}
	}
	if !diedMsg {
		t.Fatalf("expected the death message to be written, got %v", io.out)
	}
}
