package model

import (
	"github.com/ihou-ev/10cardstad/database"
	"github.com/ihou-ev/10cardstad/stud/card"
	"github.com/ihou-ev/10cardstad/stud/game"
)

// Seat is one occupant as a given viewer may see it. Hole cards are only
// filled in for the viewer's own seat, or for everyone once the game is over.
type Seat struct {
	Slot     int         `json:"slot"`
	PlayerID string      `json:"playerId"`
	Name     string      `json:"name"`
	Online   bool        `json:"online"`
	Host     bool        `json:"host"`
	Trigger  bool        `json:"trigger"`
	Waiting  bool        `json:"waiting"`
	Winner   bool        `json:"winner"`
	Door     []card.Card `json:"door"`
	Revealed []card.Card `json:"revealed"`
	Hidden   int         `json:"hidden"`
	Hole     []card.Card `json:"hole,omitempty"`
	Hand     string      `json:"hand,omitempty"`
	InGame   bool        `json:"inGame"`
}

type Room struct {
	ID      string     `json:"id"`
	Code    string     `json:"code"`
	Status  string     `json:"status"`
	HostID  string     `json:"hostId"`
	Phase   game.Phase `json:"phase,omitempty"`
	Round   int        `json:"round"`
	Version int64      `json:"version"`
	Seats   []Seat     `json:"seats"`
}

type RoomSummary struct {
	ID      string `json:"id"`
	Code    string `json:"code"`
	Status  string `json:"status"`
	Players int    `json:"players"`
	Online  int    `json:"online"`
}

func Summary(room *database.Room, players []*database.RoomPlayer) RoomSummary {
	online := 0
	for _, p := range players {
		if p.Online {
			online++
		}
	}
	return RoomSummary{
		ID:      room.ID,
		Code:    room.Code,
		Status:  string(room.Status),
		Players: len(players),
		Online:  online,
	}
}

// View builds the room as viewerID sees it. An empty viewerID sees no hole cards.
func View(room *database.Room, players []*database.RoomPlayer, viewerID string) Room {
	view := Room{
		ID:      room.ID,
		Code:    room.Code,
		Status:  string(room.Status),
		HostID:  room.HostID,
		Version: room.Version,
		Seats:   make([]Seat, 0, len(players)),
	}
	state := room.GameState
	if state != nil {
		view.Phase = state.Phase
		view.Round = state.CurrentRound
	}
	var trigger string
	for _, p := range players {
		if p.Online && trigger == "" {
			trigger = p.PlayerID
		}
	}
	for _, p := range players {
		seat := Seat{
			Slot:     p.Slot,
			PlayerID: p.PlayerID,
			Name:     p.PlayerName,
			Online:   p.Online,
			Host:     p.PlayerID == room.HostID,
			Trigger:  p.PlayerID == trigger,
		}
		if state != nil {
			fillCards(&seat, *state, room.GamePlayer(p.PlayerID), p.PlayerID == viewerID)
		}
		view.Seats = append(view.Seats, seat)
	}
	return view
}

func fillCards(seat *Seat, state game.State, id int, own bool) {
	gp, ok := state.Player(id)
	if !ok {
		return
	}
	seat.InGame = true
	seat.Door = gp.DoorCards
	seat.Revealed = gp.RevealedHoleCards
	seat.Hidden = len(gp.HoleCards)
	seat.Waiting = state.IsWaiting(gp.ID)
	seat.Winner = state.IsWinner(gp.ID)
	finished := state.Phase == game.Finished
	if own || finished {
		seat.Hole = gp.HoleCards
	}
	if finished {
		seat.Hand = state.FinalHand(gp.ID).String()
	} else {
		seat.Hand = state.VisibleHand(gp.ID).String()
	}
}
