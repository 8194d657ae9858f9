package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Room is identified by both an opaque id and a unique (x,y) pair.
// Exits are never stored here; they are derived on demand from
// coordinate adjacency by the world store (internal/world).
type Room struct {
	ID            string
	X, Y          int
	TitleEn       string
	TitleKo       string
	DescriptionEn string
	DescriptionKo string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Connection is a portal/`enter`-style link between two coordinates
// that adjacency alone would not imply.
type Connection struct {
	FromX, FromY int
	ToX, ToY     int
	Keyword      string
}

// CreateRoom inserts a new room, generating its id if unset.
func CreateRoom(r *Room) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	now := time.Now()
	r.CreatedAt, r.UpdatedAt = now, now

	_, err := DB.Exec(`
		INSERT INTO rooms (id, x, y, title_en, title_ko, description_en, description_ko, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.X, r.Y, r.TitleEn, r.TitleKo, r.DescriptionEn, r.DescriptionKo, r.CreatedAt, r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create room: %w", err)
	}
	return nil
}

func scanRoom(row interface {
	Scan(dest ...any) error
}) (*Room, error) {
	r := &Room{}
	err := row.Scan(&r.ID, &r.X, &r.Y, &r.TitleEn, &r.TitleKo, &r.DescriptionEn, &r.DescriptionKo, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return r, nil
}

const roomColumns = `id, x, y, title_en, title_ko, description_en, description_ko, created_at, updated_at`

// GetRoom retrieves a room by id.
func GetRoom(id string) (*Room, error) {
	row := DB.QueryRow(`SELECT `+roomColumns+` FROM rooms WHERE id = ?`, id)
	r, err := scanRoom(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("room not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get room: %w", err)
	}
	return r, nil
}

// GetRoomAt retrieves the room at (x,y), if any.
func GetRoomAt(x, y int) (*Room, error) {
	row := DB.QueryRow(`SELECT `+roomColumns+` FROM rooms WHERE x = ? AND y = ?`, x, y)
	r, err := scanRoom(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get room at (%d,%d): %w", x, y, err)
	}
	return r, nil
}

// GetAllRooms returns every room, used to prime the in-memory world store.
func GetAllRooms() ([]*Room, error) {
	rows, err := DB.Query(`SELECT ` + roomColumns + ` FROM rooms`)
	if err != nil {
		return nil, fmt.Errorf("query rooms: %w", err)
	}
	defer rows.Close()

	var out []*Room
	for rows.Next() {
		r, err := scanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// UpdateRoom persists changes to an existing room.
func UpdateRoom(r *Room) error {
	r.UpdatedAt = time.Now()
	result, err := DB.Exec(`
		UPDATE rooms SET x=?, y=?, title_en=?, title_ko=?, description_en=?, description_ko=?, updated_at=?
		WHERE id = ?
	`, r.X, r.Y, r.TitleEn, r.TitleKo, r.DescriptionEn, r.DescriptionKo, r.UpdatedAt, r.ID)
	if err != nil {
		return fmt.Errorf("update room: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("room not found: %s", r.ID)
	}
	return nil
}

// DeleteRoom removes a room and any portal connections touching it.
// Callers (internal/world) are responsible for relocating any objects
// still referencing this room to the default room first.
func DeleteRoom(id string) error {
	room, err := GetRoom(id)
	if err != nil {
		return err
	}
	if _, err := DB.Exec(`DELETE FROM room_connections WHERE (from_x=? AND from_y=?) OR (to_x=? AND to_y=?)`, room.X, room.Y, room.X, room.Y); err != nil {
		return fmt.Errorf("delete room connections: %w", err)
	}
	result, err := DB.Exec(`DELETE FROM rooms WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete room: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("room not found: %s", id)
	}
	return nil
}

// CreateConnection adds a portal link from (fromX,fromY) to (toX,toY)
// reachable via keyword (defaults to "enter").
func CreateConnection(c Connection) error {
	if c.Keyword == "" {
		c.Keyword = "enter"
	}
	_, err := DB.Exec(`
		INSERT INTO room_connections (from_x, from_y, to_x, to_y, keyword) VALUES (?, ?, ?, ?, ?)
	`, c.FromX, c.FromY, c.ToX, c.ToY, c.Keyword)
	if err != nil {
		return fmt.Errorf("create connection: %w", err)
	}
	return nil
}

// GetAllConnections returns every portal connection, used to prime the
// in-memory world store.
func GetAllConnections() ([]Connection, error) {
	rows, err := DB.Query(`SELECT from_x, from_y, to_x, to_y, keyword FROM room_connections`)
	if err != nil {
		return nil, fmt.Errorf("query connections: %w", err)
	}
	defer rows.Close()

	var out []Connection
	for rows.Next() {
		var c Connection
		if err := rows.Scan(&c.FromX, &c.FromY, &c.ToX, &c.ToY, &c.Keyword); err != nil {
			return nil, fmt.Errorf("scan connection: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
