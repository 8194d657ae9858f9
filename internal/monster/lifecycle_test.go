package monster

import (
	"testing"
	"time"

	"mudengine/internal/config"
	"mudengine/internal/database"
	"mudengine/internal/world"
)

func setupStore(t *testing.T) *world.Store {
	t.Helper()
	cfg := &config.Config{DBType: "sqlite", DBName: ":memory:", DBMaxConnections: 1, DBMaxIdleConns: 1, DefaultSpawnRoomID: "spawn-room"}
	if err := database.Initialize(cfg); err != nil {
		t.Fatalf("database.Initialize: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	// Initialize seeds the spawn room "spawn-room" at (0,0); give it the
	// fixture's titles and descriptions.
	room := &database.Room{ID: "spawn-room", X: 0, Y: 0, TitleEn: "Glade", DescriptionEn: "A forest glade.", TitleKo: "공터", DescriptionKo: "숲속 공터."}
	if err := database.UpdateRoom(room); err != nil {
		t.Fatalf("update seeded room: %v", err)
	}

	store := world.New("spawn-room", nil)
	if err := store.Load(); err != nil {
		t.Fatalf("store.Load: %v", err)
	}
	return store
}

func goblinTemplate() Template {
	return Template{
		NameEn: "Goblin", NameKo: "고블린",
		DescEn: "A snarling goblin.", DescKo: "으르렁대는 고블린.",
		MonsterType:  database.MonsterAggressive,
		Behavior:     database.BehaviorStationary,
		StatsBlob:    `{"max_hp":20,"attack":5,"defense":2}`,
		GoldReward:   5,
		RespawnDelay: 60,
		AggroRange:   1,
	}
}

func TestSpawnAtCreatesAliveMonster(t *testing.T) {
	store := setupStore(t)
	l := New(store, nil, nil, nil)
	l.RegisterTemplate("goblin", goblinTemplate())

	m, err := l.SpawnAt("goblin", 0, 0)
	if err != nil {
		t.Fatalf("SpawnAt: %v", err)
	}
	if !m.IsAlive || m.CurrentHP != 20 {
		t.Fatalf("got alive=%v hp=%d, want alive=true hp=20", m.IsAlive, m.CurrentHP)
	}

	found := store.GetMonstersAt(0, 0)
	if len(found) != 1 || found[0].ID != m.ID {
		t.Fatalf("expected the new monster to be indexed at (0,0), got %v", found)
	}
}

func TestSpawnAtUnknownTemplateErrors(t *testing.T) {
	store := setupStore(t)
	l := New(store, nil, nil, nil)
	if _, err := l.SpawnAt("does-not-exist", 0, 0); err == nil {
		t.Fatal("expected an error for an unregistered template")
	}
}

func TestInitialSpawnPassRespectsMaxPerRoom(t *testing.T) {
	store := setupStore(t)
	l := New(store, nil, nil, nil)
	l.RegisterTemplate("goblin", goblinTemplate())
	l.RegisterSpawnPoint("spawn-room", SpawnDescriptor{TemplateID: "goblin", MaxPerRoom: 1, SpawnChance: 1.0})

	l.RunOnce()
	l.RunOnce()
	l.RunOnce()

	alive := store.GetMonstersAt(0, 0)
	if len(alive) != 1 {
		t.Fatalf("expected exactly one goblin after repeated spawn passes, got %d", len(alive))
	}
}

func TestRespawnPassWaitsForDelay(t *testing.T) {
	store := setupStore(t)
	l := New(store, nil, nil, nil)
	l.RegisterTemplate("goblin", goblinTemplate())

	m, err := l.SpawnAt("goblin", 0, 0)
	if err != nil {
		t.Fatalf("SpawnAt: %v", err)
	}
	if err := store.KillMonster(m.ID); err != nil {
		t.Fatalf("KillMonster: %v", err)
	}

	l.RunOnce()
	if alive := store.GetMonstersAt(0, 0); len(alive) != 0 {
		t.Fatal("monster should still be dead before its respawn delay elapses")
	}

	store.AllMonsters()[0].LastDeathTime.Time = time.Now().Add(-2 * time.Minute)
	l.RunOnce()
	if alive := store.GetMonstersAt(0, 0); len(alive) != 1 {
		t.Fatal("expected the monster to respawn once its delay has elapsed")
	}
}

func TestAggroCheckFindsOnlyAggressiveMonsters(t *testing.T) {
	store := setupStore(t)
	l := New(store, nil, nil, nil)
	l.RegisterTemplate("goblin", goblinTemplate())

	if _, err := l.SpawnAt("goblin", 0, 0); err != nil {
		t.Fatalf("SpawnAt: %v", err)
	}
	if AggroCheck(store, 0, 0) == nil {
		t.Fatal("expected an aggressive monster to trigger aggro")
	}
	if AggroCheck(store, 5, 5) != nil {
		t.Fatal("expected no aggro at an empty coordinate")
	}
}
