package database

import (
	"time"

	"github.com/ihou-ev/10cardstad/stud/game"
)

type RoomStatus string

const (
	StatusWaiting  RoomStatus = "waiting"
	StatusPlaying  RoomStatus = "playing"
	StatusFinished RoomStatus = "finished"
)

// Room is the record every participant of a table reads and writes.
// Version is bumped by the store on each successful update. Lineup[i] is
// the player id seated as player i of GameState; it is written together
// with GameState.
type Room struct {
	ID        string      `json:"id"`
	Code      string      `json:"code"`
	HostID    string      `json:"hostId"`
	GameState *game.State `json:"gameState"`
	Lineup    []string    `json:"lineup,omitempty"`
	Status    RoomStatus  `json:"status"`
	Version   int64       `json:"version"`
	CreatedAt time.Time   `json:"createdAt"`
	ActiveAt  time.Time   `json:"activeAt"`
}

func (r *Room) Clone() *Room {
	if r == nil {
		return nil
	}
	c := *r
	if r.GameState != nil {
		s := r.GameState.Clone()
		c.GameState = &s
	}
	if r.Lineup != nil {
		c.Lineup = append([]string{}, r.Lineup...)
	}
	return &c
}

// GamePlayer is the id playerID plays under in GameState, or -1.
func (r *Room) GamePlayer(playerID string) int {
	for i, id := range r.Lineup {
		if id == playerID {
			return i
		}
	}
	return -1
}

// Expired reports whether the room has been idle longer than ttl.
func (r *Room) Expired(now time.Time, ttl time.Duration) bool {
	return ttl > 0 && r.ActiveAt.Add(ttl).Before(now)
}

// RoomPlayer is a seat. Slot is unique per room, so is PlayerID.
type RoomPlayer struct {
	ID         string    `json:"id"`
	RoomID     string    `json:"roomId"`
	PlayerID   string    `json:"playerId"`
	PlayerName string    `json:"playerName"`
	Slot       int       `json:"slot"`
	Online     bool      `json:"isOnline"`
	JoinedAt   time.Time `json:"joinedAt"`
}

func (p RoomPlayer) String() string {
	return p.PlayerName + "[" + p.PlayerID + "]"
}
