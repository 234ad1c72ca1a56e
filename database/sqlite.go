package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS rooms (
	id         TEXT PRIMARY KEY,
	code       TEXT NOT NULL UNIQUE,
	host_id    TEXT NOT NULL,
	game_state TEXT,
	status     TEXT NOT NULL,
	version    INTEGER NOT NULL,
	created_at INTEGER NOT NULL,
	active_at  INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS room_players (
	id          TEXT PRIMARY KEY,
	room_id     TEXT NOT NULL,
	player_id   TEXT NOT NULL,
	player_name TEXT NOT NULL,
	slot        INTEGER NOT NULL CHECK (slot BETWEEN 0 AND 4),
	is_online   INTEGER NOT NULL,
	joined_at   INTEGER NOT NULL,
	UNIQUE (room_id, slot),
	UNIQUE (room_id, player_id)
);
`

const roomColumns = "id, code, host_id, game_state, status, version, created_at, active_at"

const playerColumns = "id, room_id, player_id, player_name, slot, is_online, joined_at"

// SQLiteStore is the durable Store. Change events are published in process
// after each committed write.
type SQLiteStore struct {
	*Feed
	db *sql.DB
}

func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	if dsn == "" {
		dsn = "file:stud.db?_busy_timeout=5000"
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if _, err = db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return &SQLiteStore{Feed: NewFeed(), db: db}, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRoom(row scanner) (*Room, error) {
	var (
		room      Room
		state     sql.NullString
		status    string
		createdAt int64
		activeAt  int64
	)
	err := row.Scan(&room.ID, &room.Code, &room.HostID, &state, &status, &room.Version, &createdAt, &activeAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	room.Status = RoomStatus(status)
	room.CreatedAt = time.Unix(0, createdAt)
	room.ActiveAt = time.Unix(0, activeAt)
	if state.Valid {
		if err = decodeState(&room, []byte(state.String)); err != nil {
			return nil, fmt.Errorf("failed to decode game state of room %s: %w", room.ID, err)
		}
	}
	return &room, nil
}

func scanPlayer(row scanner) (*RoomPlayer, error) {
	var (
		p        RoomPlayer
		online   int
		joinedAt int64
	)
	err := row.Scan(&p.ID, &p.RoomID, &p.PlayerID, &p.PlayerName, &p.Slot, &online, &joinedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	p.Online = online != 0
	p.JoinedAt = time.Unix(0, joinedAt)
	return &p, nil
}

func stateColumn(room *Room) (sql.NullString, error) {
	data, err := encodeState(room)
	if err != nil || data == nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func boolColumn(b bool) int {
	if b {
		return 1
	}
	return 0
}

// constraintError maps unique violations to the package's sentinel errors.
func constraintError(err error) error {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) || sqliteErr.Code != sqlite3.ErrConstraint {
		return err
	}
	msg := sqliteErr.Error()
	switch {
	case strings.Contains(msg, "room_players.slot"):
		return ErrSlotTaken
	case strings.Contains(msg, "room_players.player_id"):
		return ErrAlreadySeated
	case strings.Contains(msg, "rooms.code"):
		return ErrCodeTaken
	case sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey, sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique:
		return ErrConflict
	}
	return err
}

func (s *SQLiteStore) CreateRoom(ctx context.Context, room *Room) error {
	state, err := stateColumn(room)
	if err != nil {
		return err
	}
	room.Version = 1
	_, err = s.db.ExecContext(ctx, "INSERT INTO rooms ("+roomColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		room.ID, room.Code, room.HostID, state, string(room.Status), room.Version, room.CreatedAt.UnixNano(), room.ActiveAt.UnixNano())
	if err != nil {
		room.Version = 0
		return constraintError(err)
	}
	s.Publish(Event{Kind: RoomCreated, RoomID: room.ID, Room: room})
	return nil
}

func (s *SQLiteStore) GetRoom(ctx context.Context, id string) (*Room, error) {
	return scanRoom(s.db.QueryRowContext(ctx, "SELECT "+roomColumns+" FROM rooms WHERE id = ?", id))
}

func (s *SQLiteStore) GetRoomByCode(ctx context.Context, code string) (*Room, error) {
	return scanRoom(s.db.QueryRowContext(ctx, "SELECT "+roomColumns+" FROM rooms WHERE code = ?", code))
}

func (s *SQLiteStore) ListRooms(ctx context.Context) ([]*Room, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+roomColumns+" FROM rooms ORDER BY created_at, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := make([]*Room, 0)
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, room)
	}
	return list, rows.Err()
}

func (s *SQLiteStore) UpdateRoom(ctx context.Context, room *Room) error {
	state, err := stateColumn(room)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		"UPDATE rooms SET code = ?, host_id = ?, game_state = ?, status = ?, version = version + 1, active_at = ? WHERE id = ? AND version = ?",
		room.Code, room.HostID, state, string(room.Status), room.ActiveAt.UnixNano(), room.ID, room.Version)
	if err != nil {
		return constraintError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var exists int
		err = s.db.QueryRowContext(ctx, "SELECT 1 FROM rooms WHERE id = ?", room.ID).Scan(&exists)
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return ErrConflict
	}
	room.Version++
	s.Publish(Event{Kind: RoomUpdated, RoomID: room.ID, Room: room})
	return nil
}

func (s *SQLiteStore) DeleteRoom(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM rooms WHERE id = ?", id)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		_ = tx.Rollback()
		return ErrNotFound
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM room_players WHERE room_id = ?", id); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err = tx.Commit(); err != nil {
		return err
	}
	s.Publish(Event{Kind: RoomDeleted, RoomID: id})
	return nil
}

func (s *SQLiteStore) AddRoomPlayer(ctx context.Context, p *RoomPlayer) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	var exists int
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM rooms WHERE id = ?", p.RoomID).Scan(&exists)
	if err == sql.ErrNoRows {
		_ = tx.Rollback()
		return ErrNotFound
	}
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	_, err = tx.ExecContext(ctx, "INSERT INTO room_players ("+playerColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
		p.ID, p.RoomID, p.PlayerID, p.PlayerName, p.Slot, boolColumn(p.Online), p.JoinedAt.UnixNano())
	if err != nil {
		_ = tx.Rollback()
		return constraintError(err)
	}
	if err = tx.Commit(); err != nil {
		return err
	}
	s.Publish(Event{Kind: PlayersChanged, RoomID: p.RoomID})
	return nil
}

func (s *SQLiteStore) ListRoomPlayers(ctx context.Context, roomID string) ([]*RoomPlayer, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+playerColumns+" FROM room_players WHERE room_id = ? ORDER BY slot", roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := make([]*RoomPlayer, 0)
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func (s *SQLiteStore) UpdateRoomPlayer(ctx context.Context, p *RoomPlayer) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE room_players SET player_name = ?, slot = ?, is_online = ? WHERE room_id = ? AND player_id = ?",
		p.PlayerName, p.Slot, boolColumn(p.Online), p.RoomID, p.PlayerID)
	if err != nil {
		return constraintError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	s.Publish(Event{Kind: PlayersChanged, RoomID: p.RoomID})
	return nil
}

func (s *SQLiteStore) DeleteRoomPlayer(ctx context.Context, roomID, playerID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM room_players WHERE room_id = ? AND player_id = ?", roomID, playerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	s.Publish(Event{Kind: PlayersChanged, RoomID: roomID})
	return nil
}

func (s *SQLiteStore) Close() error {
	s.Feed.Close()
	return s.db.Close()
}
