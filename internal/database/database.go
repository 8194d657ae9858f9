// File: internal/database/database.go
// MUD Engine - Database Connection Manager

package database

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"mudengine/internal/config"
)

// DB is the global database connection.
var DB *sql.DB

// dbType records which driver is active, since some queries need
// placeholder syntax that differs between sqlite (?) and postgres ($n).
var dbType string

// Placeholder returns the positional placeholder for argument index n
// (1-based) appropriate to the active driver.
func Placeholder(n int) string {
	if dbType == "postgres" {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// Initialize opens and initializes the database connection.
func Initialize(cfg *config.Config) error {
	log.Println("Initializing database connection...")

	var err error
	dbType = cfg.DBType

	switch cfg.DBType {
	case "sqlite":
		err = initializeSQLite(cfg)
	case "postgres":
		err = initializePostgreSQL(cfg)
	default:
		return fmt.Errorf("unsupported database type: %s", cfg.DBType)
	}

	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := DB.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	DB.SetMaxOpenConns(cfg.DBMaxConnections)
	DB.SetMaxIdleConns(cfg.DBMaxIdleConns)

	log.Printf("Database connection established (%s)", cfg.DBType)

	needsInit, err := needsInitialization()
	if err != nil {
		return fmt.Errorf("failed to check initialization status: %w", err)
	}

	if needsInit {
		log.Println("Database appears to be new, initializing schema...")
		if err := initializeSchema(cfg); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
		log.Println("Database schema initialized successfully")
	} else {
		log.Println("Database schema already exists")
	}

	return nil
}

// initializeSQLite sets up SQLite database connection.
func initializeSQLite(cfg *config.Config) error {
	dbDir := filepath.Dir(cfg.DBName)
	if dbDir != "" && dbDir != "." {
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	var err error
	DB, err = sql.Open("sqlite3", cfg.DBName)
	if err != nil {
		return fmt.Errorf("failed to open SQLite database: %w", err)
	}

	if _, err := DB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := DB.Exec("PRAGMA journal_mode = WAL"); err != nil {
		log.Printf("Warning: failed to set WAL mode: %v", err)
	}

	return nil
}

// initializePostgreSQL sets up PostgreSQL database connection.
func initializePostgreSQL(cfg *config.Config) error {
	connStr := cfg.GetConnectionString()
	var err error
	DB, err = sql.Open("postgres", connStr)
	if err != nil {
		return fmt.Errorf("failed to open PostgreSQL database: %w", err)
	}
	return nil
}

// needsInitialization checks if the database schema needs to be created.
func needsInitialization() (bool, error) {
	var query string
	if dbType == "postgres" {
		query = `SELECT table_name FROM information_schema.tables WHERE table_name='rooms'`
	} else {
		query = `SELECT name FROM sqlite_master WHERE type='table' AND name='rooms'`
	}

	var tableName string
	err := DB.QueryRow(query).Scan(&tableName)
	if err == sql.ErrNoRows {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return false, nil
}

// schemaSQLite is the table DDL matching spec §6's persisted layout:
// players, rooms (coordinate-indexed), room_connections (portals),
// game_objects, monsters, npcs.
const schemaSQLite = `
CREATE TABLE IF NOT EXISTS rooms (
    id TEXT PRIMARY KEY,
    x INTEGER NOT NULL,
    y INTEGER NOT NULL,
    title_en TEXT NOT NULL,
    title_ko TEXT NOT NULL DEFAULT '',
    description_en TEXT NOT NULL,
    description_ko TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (x, y)
);

CREATE TABLE IF NOT EXISTS room_connections (
    from_x INTEGER NOT NULL,
    from_y INTEGER NOT NULL,
    to_x INTEGER NOT NULL,
    to_y INTEGER NOT NULL,
    keyword TEXT NOT NULL DEFAULT 'enter',
    PRIMARY KEY (from_x, from_y, keyword)
);

CREATE TABLE IF NOT EXISTS players (
    id TEXT PRIMARY KEY,
    username TEXT UNIQUE NOT NULL,
    password_hash TEXT NOT NULL,
    mfa_secret TEXT NOT NULL DEFAULT '',
    display_name TEXT NOT NULL,
    last_name_change TIMESTAMP,
    preferred_locale TEXT NOT NULL DEFAULT 'en',
    is_admin BOOLEAN DEFAULT 0,
    last_room_id TEXT,
    stats_blob TEXT NOT NULL DEFAULT '{}',
    faction_id TEXT NOT NULL DEFAULT 'adventurer',
    quest_progress_blob TEXT NOT NULL DEFAULT '{}',
    completed_quests_blob TEXT NOT NULL DEFAULT '[]',
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    last_login TIMESTAMP,
    last_logout TIMESTAMP
);

CREATE TABLE IF NOT EXISTS game_objects (
    id TEXT PRIMARY KEY,
    name_en TEXT NOT NULL,
    name_ko TEXT NOT NULL DEFAULT '',
    description_en TEXT NOT NULL,
    description_ko TEXT NOT NULL DEFAULT '',
    category TEXT NOT NULL DEFAULT 'misc',
    weight REAL DEFAULT 0.0,
    equipment_slot TEXT NOT NULL DEFAULT '',
    is_equipped BOOLEAN DEFAULT 0,
    stackable BOOLEAN DEFAULT 0,
    max_stack INTEGER DEFAULT 1,
    properties_blob TEXT NOT NULL DEFAULT '{}',
    location_type TEXT NOT NULL,
    location_id TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS monsters (
    id TEXT PRIMARY KEY,
    template_id TEXT NOT NULL,
    name_en TEXT NOT NULL,
    name_ko TEXT NOT NULL DEFAULT '',
    description_en TEXT NOT NULL DEFAULT '',
    description_ko TEXT NOT NULL DEFAULT '',
    monster_type TEXT NOT NULL DEFAULT 'NEUTRAL',
    behavior TEXT NOT NULL DEFAULT 'STATIONARY',
    stats_blob TEXT NOT NULL DEFAULT '{}',
    current_hp INTEGER NOT NULL DEFAULT 0,
    gold_reward INTEGER DEFAULT 0,
    drop_items_blob TEXT NOT NULL DEFAULT '[]',
    spawn_x INTEGER NOT NULL,
    spawn_y INTEGER NOT NULL,
    x INTEGER NOT NULL,
    y INTEGER NOT NULL,
    respawn_delay_secs INTEGER DEFAULT 60,
    aggro_range INTEGER DEFAULT 0,
    roaming_range INTEGER DEFAULT 0,
    is_alive BOOLEAN DEFAULT 1,
    last_death_time TIMESTAMP,
    faction_id TEXT NOT NULL DEFAULT 'hostile',
    properties_blob TEXT NOT NULL DEFAULT '{}',
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS npcs (
    id TEXT PRIMARY KEY,
    name_en TEXT NOT NULL,
    name_ko TEXT NOT NULL DEFAULT '',
    description_en TEXT NOT NULL DEFAULT '',
    description_ko TEXT NOT NULL DEFAULT '',
    npc_type TEXT NOT NULL DEFAULT 'friendly',
    x INTEGER NOT NULL,
    y INTEGER NOT NULL,
    dialogue_blob TEXT NOT NULL DEFAULT '{}',
    shop_inventory_blob TEXT NOT NULL DEFAULT '[]',
    properties_blob TEXT NOT NULL DEFAULT '{}',
    is_active BOOLEAN DEFAULT 1,
    faction_id TEXT NOT NULL DEFAULT 'neutral'
);

CREATE INDEX IF NOT EXISTS idx_rooms_xy ON rooms(x, y);
CREATE INDEX IF NOT EXISTS idx_objects_location ON game_objects(location_type, location_id);
CREATE INDEX IF NOT EXISTS idx_monsters_xy ON monsters(x, y);
CREATE INDEX IF NOT EXISTS idx_monsters_template ON monsters(template_id);
CREATE INDEX IF NOT EXISTS idx_npcs_xy ON npcs(x, y);
CREATE INDEX IF NOT EXISTS idx_players_username ON players(username);
`

// initializeSchema creates all database tables and seeds a default room.
func initializeSchema(cfg *config.Config) error {
	if _, err := DB.Exec(schemaSQLite); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	log.Println("Database tables created successfully")

	if err := insertInitialData(cfg); err != nil {
		return fmt.Errorf("failed to insert initial data: %w", err)
	}

	return nil
}

// insertInitialData seeds the spawn room at (0,0), with config's
// DefaultSpawnRoomID as its id (a fixed id when that is empty).
func insertInitialData(cfg *config.Config) error {
	log.Println("Inserting initial data...")

	spawnID := cfg.DefaultSpawnRoomID
	if spawnID == "" {
		spawnID = "10000000-0000-0000-0000-000000000002"
	}

	_, err := DB.Exec(`
		INSERT INTO rooms (id, x, y, title_en, title_ko, description_en, description_ko)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		spawnID, 0, 0,
		"Town Square", "마을 광장",
		"You stand in the bustling town square. A large fountain dominates the center, with merchants hawking their wares around its edge.",
		"분수가 중앙에 자리한 번화한 마을 광장입니다. 상인들이 주변에서 물건을 팔고 있습니다.",
	)
	if err != nil {
		return fmt.Errorf("failed to insert spawn room: %w", err)
	}

	log.Println("Initial data inserted successfully")
	return nil
}

// Close closes the database connection.
func Close() error {
	if DB != nil {
		log.Println("Closing database connection...")
		return DB.Close()
	}
	return nil
}
