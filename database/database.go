package database

import (
	"context"
	"errors"
	"fmt"
	"sort"

	jsoniter "github.com/json-iterator/go"

	"github.com/ihou-ev/10cardstad/stud/game"
)

var (
	ErrNotFound      = errors.New("database: not found")
	ErrConflict      = errors.New("database: version conflict")
	ErrSlotTaken     = errors.New("database: slot taken")
	ErrAlreadySeated = errors.New("database: player already seated")
	ErrCodeTaken     = errors.New("database: room code taken")
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Store persists rooms and seats and pushes every change to subscribers.
type Store interface {
	CreateRoom(ctx context.Context, room *Room) error
	GetRoom(ctx context.Context, id string) (*Room, error)
	GetRoomByCode(ctx context.Context, code string) (*Room, error)
	ListRooms(ctx context.Context) ([]*Room, error)
	// UpdateRoom writes room only if its Version matches the stored one.
	// On success room.Version is advanced, otherwise ErrConflict is returned.
	UpdateRoom(ctx context.Context, room *Room) error
	// DeleteRoom removes the room together with its seats.
	DeleteRoom(ctx context.Context, id string) error

	AddRoomPlayer(ctx context.Context, p *RoomPlayer) error
	ListRoomPlayers(ctx context.Context, roomID string) ([]*RoomPlayer, error)
	UpdateRoomPlayer(ctx context.Context, p *RoomPlayer) error
	DeleteRoomPlayer(ctx context.Context, roomID, playerID string) error

	Subscribe(roomID string) chan Event
	SubscribeLobby() chan Event
	Unsubscribe(ch chan Event)
	Close() error
}

// Open returns the store named by driver. dsn is only used by sqlite.
func Open(driver, dsn string) (Store, error) {
	switch driver {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite", "sqlite3":
		return NewSQLiteStore(dsn)
	}
	return nil, fmt.Errorf("database: unknown driver %q", driver)
}

// FindRoomPlayer picks playerID out of a seat list.
func FindRoomPlayer(players []*RoomPlayer, playerID string) *RoomPlayer {
	for _, p := range players {
		if p.PlayerID == playerID {
			return p
		}
	}
	return nil
}

func sortBySlot(players []*RoomPlayer) {
	sort.Slice(players, func(i, j int) bool {
		return players[i].Slot < players[j].Slot
	})
}

// storedState is the game_state column: the game plus the lineup it was
// dealt to, so both change in the same write.
type storedState struct {
	game.State
	Lineup []string `json:"lineup,omitempty"`
}

func encodeState(room *Room) ([]byte, error) {
	if room.GameState == nil {
		return nil, nil
	}
	return json.Marshal(storedState{State: *room.GameState, Lineup: room.Lineup})
}

func decodeState(room *Room, data []byte) error {
	room.GameState, room.Lineup = nil, nil
	if len(data) == 0 {
		return nil
	}
	var stored storedState
	if err := json.Unmarshal(data, &stored); err != nil {
		return err
	}
	room.GameState, room.Lineup = &stored.State, stored.Lineup
	return nil
}

func sortRooms(rooms []*Room) {
	sort.Slice(rooms, func(i, j int) bool {
		if !rooms[i].CreatedAt.Equal(rooms[j].CreatedAt) {
			return rooms[i].CreatedAt.Before(rooms[j].CreatedAt)
		}
		return rooms[i].ID < rooms[j].ID
	})
}
