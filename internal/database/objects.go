package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// LocationType enumerates where a GameObject can reside.
type LocationType string

const (
	LocationRoom      LocationType = "room"
	LocationInventory LocationType = "inventory"
	LocationContainer LocationType = "container"
)

// GameObject mirrors the game_objects table.
type GameObject struct {
	ID             string
	NameEn         string
	NameKo         string
	DescriptionEn  string
	DescriptionKo  string
	Category       string
	Weight         float64
	EquipmentSlot  string
	IsEquipped     bool
	Stackable      bool
	MaxStack       int
	PropertiesBlob string
	LocationType   LocationType
	LocationID     string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

const objectColumns = `id, name_en, name_ko, description_en, description_ko, category, weight,
	equipment_slot, is_equipped, stackable, max_stack, properties_blob, location_type, location_id,
	created_at, updated_at`

func scanObject(row interface{ Scan(dest ...any) error }) (*GameObject, error) {
	o := &GameObject{}
	var loc string
	err := row.Scan(
		&o.ID, &o.NameEn, &o.NameKo, &o.DescriptionEn, &o.DescriptionKo, &o.Category, &o.Weight,
		&o.EquipmentSlot, &o.IsEquipped, &o.Stackable, &o.MaxStack, &o.PropertiesBlob, &loc, &o.LocationID,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	o.LocationType = LocationType(loc)
	return o, nil
}

// CreateObject inserts a new object into its current location.
func CreateObject(o *GameObject) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	if o.PropertiesBlob == "" {
		o.PropertiesBlob = "{}"
	}
	if o.MaxStack == 0 {
		o.MaxStack = 1
	}
	now := time.Now()
	o.CreatedAt, o.UpdatedAt = now, now

	_, err := DB.Exec(`
		INSERT INTO game_objects (id, name_en, name_ko, description_en, description_ko, category, weight,
			equipment_slot, is_equipped, stackable, max_stack, properties_blob, location_type, location_id,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, o.ID, o.NameEn, o.NameKo, o.DescriptionEn, o.DescriptionKo, o.Category, o.Weight,
		o.EquipmentSlot, o.IsEquipped, o.Stackable, o.MaxStack, o.PropertiesBlob, string(o.LocationType), o.LocationID,
		o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create object: %w", err)
	}
	return nil
}

// GetObject retrieves a single object by id.
func GetObject(id string) (*GameObject, error) {
	row := DB.QueryRow(`SELECT `+objectColumns+` FROM game_objects WHERE id = ?`, id)
	o, err := scanObject(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("object not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get object: %w", err)
	}
	return o, nil
}

// GetObjectsIn returns every object located in {room|inventory|container} id.
func GetObjectsIn(locType LocationType, id string) ([]*GameObject, error) {
	rows, err := DB.Query(`SELECT `+objectColumns+` FROM game_objects WHERE location_type = ? AND location_id = ?`,
		string(locType), id)
	if err != nil {
		return nil, fmt.Errorf("query objects: %w", err)
	}
	defer rows.Close()

	var out []*GameObject
	for rows.Next() {
		o, err := scanObject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan object: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// GetAllObjects returns every object, used to prime the world store.
func GetAllObjects() ([]*GameObject, error) {
	rows, err := DB.Query(`SELECT ` + objectColumns + ` FROM game_objects`)
	if err != nil {
		return nil, fmt.Errorf("query objects: %w", err)
	}
	defer rows.Close()

	var out []*GameObject
	for rows.Next() {
		o, err := scanObject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan object: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// MoveObject relocates an object to a new location, validating nothing
// about the target itself (the world store validates existence).
func MoveObject(objectID string, locType LocationType, locID string) error {
	result, err := DB.Exec(`UPDATE game_objects SET location_type=?, location_id=?, updated_at=? WHERE id=?`,
		string(locType), locID, time.Now(), objectID)
	if err != nil {
		return fmt.Errorf("move object: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("object not found: %s", objectID)
	}
	return nil
}

// SetObjectEquipped toggles an inventory item's equipped flag.
func SetObjectEquipped(objectID string, equipped bool) error {
	_, err := DB.Exec(`UPDATE game_objects SET is_equipped=?, updated_at=? WHERE id=?`,
		equipped, time.Now(), objectID)
	if err != nil {
		return fmt.Errorf("set object equipped: %w", err)
	}
	return nil
}

// DeleteObject destroys an object (consumed/destroyed lifecycle end).
func DeleteObject(id string) error {
	result, err := DB.Exec(`DELETE FROM game_objects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("object not found: %s", id)
	}
	return nil
}
