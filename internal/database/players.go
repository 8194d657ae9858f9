package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Player mirrors the players table. Stats/quest/faction blobs stay as
// opaque JSON strings here; internal/world unmarshals them into the
// runtime Player type it hands to the rest of the engine.
type Player struct {
	ID                  string
	Username            string
	PasswordHash        string
	MFASecret           string
	DisplayName         string
	LastNameChange      sql.NullTime
	PreferredLocale     string
	IsAdmin             bool
	LastRoomID          sql.NullString
	StatsBlob           string
	FactionID           string
	QuestProgressBlob   string
	CompletedQuestsBlob string
	CreatedAt           time.Time
	LastLogin           sql.NullTime
	LastLogout          sql.NullTime
}

const playerColumns = `id, username, password_hash, mfa_secret, display_name, last_name_change,
	preferred_locale, is_admin, last_room_id, stats_blob, faction_id,
	quest_progress_blob, completed_quests_blob, created_at, last_login, last_logout`

func scanPlayer(row interface{ Scan(dest ...any) error }) (*Player, error) {
	p := &Player{}
	err := row.Scan(
		&p.ID, &p.Username, &p.PasswordHash, &p.MFASecret, &p.DisplayName, &p.LastNameChange,
		&p.PreferredLocale, &p.IsAdmin, &p.LastRoomID, &p.StatsBlob, &p.FactionID,
		&p.QuestProgressBlob, &p.CompletedQuestsBlob, &p.CreatedAt, &p.LastLogin, &p.LastLogout,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// CreatePlayer registers a new player account.
func CreatePlayer(p *Player) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.DisplayName == "" {
		p.DisplayName = p.Username
	}
	if p.PreferredLocale == "" {
		p.PreferredLocale = "en"
	}
	if p.StatsBlob == "" {
		p.StatsBlob = "{}"
	}
	if p.FactionID == "" {
		p.FactionID = "adventurer"
	}
	if p.QuestProgressBlob == "" {
		p.QuestProgressBlob = "{}"
	}
	if p.CompletedQuestsBlob == "" {
		p.CompletedQuestsBlob = "[]"
	}
	p.CreatedAt = time.Now()

	_, err := DB.Exec(`
		INSERT INTO players (id, username, password_hash, mfa_secret, display_name, preferred_locale,
			is_admin, stats_blob, faction_id, quest_progress_blob, completed_quests_blob, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.Username, p.PasswordHash, p.MFASecret, p.DisplayName, p.PreferredLocale,
		p.IsAdmin, p.StatsBlob, p.FactionID, p.QuestProgressBlob, p.CompletedQuestsBlob, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("create player: %w", err)
	}
	return nil
}

// GetPlayerByUsername looks up a player by unique username.
func GetPlayerByUsername(username string) (*Player, error) {
	row := DB.QueryRow(`SELECT `+playerColumns+` FROM players WHERE username = ?`, username)
	p, err := scanPlayer(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get player by username: %w", err)
	}
	return p, nil
}

// GetPlayer looks up a player by id.
func GetPlayer(id string) (*Player, error) {
	row := DB.QueryRow(`SELECT `+playerColumns+` FROM players WHERE id = ?`, id)
	p, err := scanPlayer(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("player not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get player: %w", err)
	}
	return p, nil
}

// UpdatePlayerLocation persists the player's last-known room for reconnect.
func UpdatePlayerLocation(playerID, roomID string) error {
	_, err := DB.Exec(`UPDATE players SET last_room_id = ? WHERE id = ?`, roomID, playerID)
	if err != nil {
		return fmt.Errorf("update player location: %w", err)
	}
	return nil
}

// UpdatePlayerDisplayName renames a player and stamps last_name_change
// unless skipStamp is set (the admin-bypass case: bypasses the cooldown
// but does not itself reset the clock, so a subsequent non-admin
// rename still measures from the player's own last change).
func UpdatePlayerDisplayName(playerID, newName string, skipStamp bool) error {
	if skipStamp {
		_, err := DB.Exec(`UPDATE players SET display_name = ? WHERE id = ?`, newName, playerID)
		if err != nil {
			return fmt.Errorf("update display name: %w", err)
		}
		return nil
	}
	_, err := DB.Exec(`UPDATE players SET display_name = ?, last_name_change = ? WHERE id = ?`,
		newName, time.Now(), playerID)
	if err != nil {
		return fmt.Errorf("update display name: %w", err)
	}
	return nil
}

// UpdatePlayerLocale persists a player's language preference.
func UpdatePlayerLocale(playerID, loc string) error {
	_, err := DB.Exec(`UPDATE players SET preferred_locale = ? WHERE id = ?`, loc, playerID)
	return err
}

// UpdatePlayerLoginStamp records a successful login.
func UpdatePlayerLoginStamp(playerID string) error {
	_, err := DB.Exec(`UPDATE players SET last_login = ? WHERE id = ?`, time.Now(), playerID)
	return err
}

// UpdatePlayerLogoutStamp records a session ending.
func UpdatePlayerLogoutStamp(playerID string) error {
	_, err := DB.Exec(`UPDATE players SET last_logout = ? WHERE id = ?`, time.Now(), playerID)
	return err
}

// UpdatePlayerStats persists the player's serialized stats blob.
func UpdatePlayerStats(playerID, statsBlob string) error {
	_, err := DB.Exec(`UPDATE players SET stats_blob = ? WHERE id = ?`, statsBlob, playerID)
	return err
}

// UpdatePlayerMFASecret sets or clears a player's TOTP secret.
func UpdatePlayerMFASecret(playerID, secret string) error {
	_, err := DB.Exec(`UPDATE players SET mfa_secret = ? WHERE id = ?`, secret, playerID)
	return err
}

// CountAdmins returns the number of admin accounts.
func CountAdmins() (int, error) {
	var n int
	err := DB.QueryRow(`SELECT COUNT(*) FROM players WHERE is_admin = 1`).Scan(&n)
	return n, err
}
