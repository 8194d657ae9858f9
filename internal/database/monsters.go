package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MonsterType and Behavior mirror the original source's enums
// (monster.py MonsterType/MonsterBehavior), persisted as plain text.
type MonsterType string
type MonsterBehavior string

const (
	MonsterAggressive MonsterType = "AGGRESSIVE"
	MonsterPassive    MonsterType = "PASSIVE"
	MonsterNeutral    MonsterType = "NEUTRAL"

	BehaviorStationary  MonsterBehavior = "STATIONARY"
	BehaviorRoaming     MonsterBehavior = "ROAMING"
	BehaviorTerritorial MonsterBehavior = "TERRITORIAL"
)

// Monster mirrors the monsters table.
type Monster struct {
	ID              string
	TemplateID      string
	NameEn, NameKo  string
	DescEn, DescKo  string
	MonsterType     MonsterType
	Behavior        MonsterBehavior
	StatsBlob       string
	CurrentHP       int
	GoldReward      int
	DropItemsBlob   string
	SpawnX, SpawnY  int
	X, Y            int
	RespawnDelaySec int
	AggroRange      int
	RoamingRange    int
	IsAlive         bool
	LastDeathTime   sql.NullTime
	FactionID       string
	PropertiesBlob  string
	CreatedAt       time.Time
}

const monsterColumns = `id, template_id, name_en, name_ko, description_en, description_ko,
	monster_type, behavior, stats_blob, current_hp, gold_reward, drop_items_blob,
	spawn_x, spawn_y, x, y, respawn_delay_secs, aggro_range, roaming_range,
	is_alive, last_death_time, faction_id, properties_blob, created_at`

func scanMonster(row interface{ Scan(dest ...any) error }) (*Monster, error) {
	m := &Monster{}
	var mType, behavior string
	err := row.Scan(
		&m.ID, &m.TemplateID, &m.NameEn, &m.NameKo, &m.DescEn, &m.DescKo,
		&mType, &behavior, &m.StatsBlob, &m.CurrentHP, &m.GoldReward, &m.DropItemsBlob,
		&m.SpawnX, &m.SpawnY, &m.X, &m.Y, &m.RespawnDelaySec, &m.AggroRange, &m.RoamingRange,
		&m.IsAlive, &m.LastDeathTime, &m.FactionID, &m.PropertiesBlob, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.MonsterType, m.Behavior = MonsterType(mType), MonsterBehavior(behavior)
	return m, nil
}

// CreateMonster inserts a new monster instance.
func CreateMonster(m *Monster) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.StatsBlob == "" {
		m.StatsBlob = "{}"
	}
	if m.DropItemsBlob == "" {
		m.DropItemsBlob = "[]"
	}
	if m.PropertiesBlob == "" {
		m.PropertiesBlob = "{}"
	}
	m.CreatedAt = time.Now()

	_, err := DB.Exec(`
		INSERT INTO monsters (id, template_id, name_en, name_ko, description_en, description_ko,
			monster_type, behavior, stats_blob, current_hp, gold_reward, drop_items_blob,
			spawn_x, spawn_y, x, y, respawn_delay_secs, aggro_range, roaming_range,
			is_alive, faction_id, properties_blob, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.TemplateID, m.NameEn, m.NameKo, m.DescEn, m.DescKo,
		string(m.MonsterType), string(m.Behavior), m.StatsBlob, m.CurrentHP, m.GoldReward, m.DropItemsBlob,
		m.SpawnX, m.SpawnY, m.X, m.Y, m.RespawnDelaySec, m.AggroRange, m.RoamingRange,
		m.IsAlive, m.FactionID, m.PropertiesBlob, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("create monster: %w", err)
	}
	return nil
}

// GetMonster retrieves a monster instance by id.
func GetMonster(id string) (*Monster, error) {
	row := DB.QueryRow(`SELECT `+monsterColumns+` FROM monsters WHERE id = ?`, id)
	m, err := scanMonster(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("monster not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get monster: %w", err)
	}
	return m, nil
}

// GetMonstersAt returns alive monsters at (x,y).
func GetMonstersAt(x, y int) ([]*Monster, error) {
	rows, err := DB.Query(`SELECT `+monsterColumns+` FROM monsters WHERE x=? AND y=? AND is_alive=1`, x, y)
	if err != nil {
		return nil, fmt.Errorf("query monsters at: %w", err)
	}
	defer rows.Close()

	var out []*Monster
	for rows.Next() {
		m, err := scanMonster(rows)
		if err != nil {
			return nil, fmt.Errorf("scan monster: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetAllMonsters returns every monster instance, used to prime the world store.
func GetAllMonsters() ([]*Monster, error) {
	rows, err := DB.Query(`SELECT ` + monsterColumns + ` FROM monsters ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("query monsters: %w", err)
	}
	defer rows.Close()

	var out []*Monster
	for rows.Next() {
		m, err := scanMonster(rows)
		if err != nil {
			return nil, fmt.Errorf("scan monster: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// CountAliveByTemplate returns the current alive-instance count for a template.
func CountAliveByTemplate(templateID string) (int, error) {
	var n int
	err := DB.QueryRow(`SELECT COUNT(*) FROM monsters WHERE template_id=? AND is_alive=1`, templateID).Scan(&n)
	return n, err
}

// UpdateMonsterPosition relocates a live monster (used by the roaming pass).
func UpdateMonsterPosition(id string, x, y int) error {
	_, err := DB.Exec(`UPDATE monsters SET x=?, y=? WHERE id=?`, x, y, id)
	return err
}

// KillMonster zeroes HP, clears alive, and stamps the death time.
func KillMonster(id string) error {
	_, err := DB.Exec(`UPDATE monsters SET is_alive=0, current_hp=0, last_death_time=? WHERE id=?`, time.Now(), id)
	return err
}

// RespawnMonster resets HP to max (caller supplies max from stats) and
// marks the monster alive at its original spawn coordinates.
func RespawnMonster(id string, maxHP int) error {
	m, err := GetMonster(id)
	if err != nil {
		return err
	}
	_, err = DB.Exec(`UPDATE monsters SET is_alive=1, current_hp=?, x=?, y=? WHERE id=?`,
		maxHP, m.SpawnX, m.SpawnY, id)
	return err
}

// UpdateMonsterHP persists a live monster's current HP during combat.
func UpdateMonsterHP(id string, hp int) error {
	_, err := DB.Exec(`UPDATE monsters SET current_hp=? WHERE id=?`, hp, id)
	return err
}

// DeleteMonster permanently removes an instance (used by global-cap culling).
func DeleteMonster(id string) error {
	_, err := DB.Exec(`DELETE FROM monsters WHERE id=?`, id)
	return err
}
