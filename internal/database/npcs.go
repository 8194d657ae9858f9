package database

import (
	"fmt"

	"github.com/google/uuid"
)

// NPC mirrors the npcs table: friendly, stationary, with dialogue and
// an optional shop inventory. Content is data-driven; this repository
// only provides CRUD and coordinate lookup.
type NPC struct {
	ID                string
	NameEn, NameKo    string
	DescEn, DescKo    string
	NPCType           string
	X, Y              int
	DialogueBlob      string
	ShopInventoryBlob string
	PropertiesBlob    string
	IsActive          bool
	FactionID         string
}

const npcColumns = `id, name_en, name_ko, description_en, description_ko, npc_type, x, y,
	dialogue_blob, shop_inventory_blob, properties_blob, is_active, faction_id`

func scanNPC(row interface{ Scan(dest ...any) error }) (*NPC, error) {
	n := &NPC{}
	err := row.Scan(&n.ID, &n.NameEn, &n.NameKo, &n.DescEn, &n.DescKo, &n.NPCType, &n.X, &n.Y,
		&n.DialogueBlob, &n.ShopInventoryBlob, &n.PropertiesBlob, &n.IsActive, &n.FactionID)
	if err != nil {
		return nil, err
	}
	return n, nil
}

// CreateNPC inserts a new NPC. Faction defaults to "neutral": NPCs are
// townsfolk by default, neither the player's own faction nor hostile.
func CreateNPC(n *NPC) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.DialogueBlob == "" {
		n.DialogueBlob = "{}"
	}
	if n.ShopInventoryBlob == "" {
		n.ShopInventoryBlob = "[]"
	}
	if n.PropertiesBlob == "" {
		n.PropertiesBlob = "{}"
	}
	if n.FactionID == "" {
		n.FactionID = "neutral"
	}
	_, err := DB.Exec(`
		INSERT INTO npcs (id, name_en, name_ko, description_en, description_ko, npc_type, x, y,
			dialogue_blob, shop_inventory_blob, properties_blob, is_active, faction_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, n.ID, n.NameEn, n.NameKo, n.DescEn, n.DescKo, n.NPCType, n.X, n.Y,
		n.DialogueBlob, n.ShopInventoryBlob, n.PropertiesBlob, n.IsActive, n.FactionID)
	if err != nil {
		return fmt.Errorf("create npc: %w", err)
	}
	return nil
}

// GetNPCsAt returns active NPCs at (x,y).
func GetNPCsAt(x, y int) ([]*NPC, error) {
	rows, err := DB.Query(`SELECT `+npcColumns+` FROM npcs WHERE x=? AND y=? AND is_active=1`, x, y)
	if err != nil {
		return nil, fmt.Errorf("query npcs: %w", err)
	}
	defer rows.Close()

	var out []*NPC
	for rows.Next() {
		n, err := scanNPC(rows)
		if err != nil {
			return nil, fmt.Errorf("scan npc: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// GetAllNPCs returns every NPC, used to prime the world store.
func GetAllNPCs() ([]*NPC, error) {
	rows, err := DB.Query(`SELECT ` + npcColumns + ` FROM npcs`)
	if err != nil {
		return nil, fmt.Errorf("query npcs: %w", err)
	}
	defer rows.Close()

	var out []*NPC
	for rows.Next() {
		n, err := scanNPC(rows)
		if err != nil {
			return nil, fmt.Errorf("scan npc: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
