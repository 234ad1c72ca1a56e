package game

import (
	"github.com/ihou-ev/10cardstad/stud/card"
	"github.com/ihou-ev/10cardstad/stud/hand"
)

type Phase string

const (
	Dealing   Phase = "dealing"
	Revealing Phase = "revealing"
	Showdown  Phase = "showdown"
	Finished  Phase = "finished"
)

// Player is one seat. ID is the seat index and never changes during a game.
type Player struct {
	ID                int         `json:"id"`
	Name              string      `json:"name"`
	DoorCards         []card.Card `json:"doorCards"`
	HoleCards         []card.Card `json:"holeCards"`
	RevealedHoleCards []card.Card `json:"revealedHoleCards"`
}

// Visible is what everyone at the table can see.
func (p Player) Visible() []card.Card {
	return card.Join(p.DoorCards, p.RevealedHoleCards)
}

func (p Player) All() []card.Card {
	return card.Join(p.DoorCards, p.RevealedHoleCards, p.HoleCards)
}

func (p Player) clone() Player {
	p.DoorCards = cloneCards(p.DoorCards)
	p.HoleCards = cloneCards(p.HoleCards)
	p.RevealedHoleCards = cloneCards(p.RevealedHoleCards)
	return p
}

type Reveal struct {
	PlayerID int       `json:"playerId"`
	Card     card.Card `json:"card"`
}

type RevealEvent struct {
	Round   int      `json:"round"`
	Reveals []Reveal `json:"reveals"`
}

// State is a value: transitions return a new State and never modify their input.
type State struct {
	Players           []Player      `json:"players"`
	DeadCards         []card.Card   `json:"deadCards"`
	Phase             Phase         `json:"phase"`
	CurrentRound      int           `json:"currentRound"`
	RevealHistory     []RevealEvent `json:"revealHistory"`
	Winners           []int         `json:"winners"`
	WaitingForPlayers []int         `json:"waitingForPlayers"`
}

func (s State) Clone() State {
	next := s
	if s.Players != nil {
		next.Players = make([]Player, len(s.Players))
		for i, p := range s.Players {
			next.Players[i] = p.clone()
		}
	}
	next.DeadCards = cloneCards(s.DeadCards)
	if s.RevealHistory != nil {
		next.RevealHistory = make([]RevealEvent, len(s.RevealHistory))
		for i, e := range s.RevealHistory {
			next.RevealHistory[i] = RevealEvent{Round: e.Round, Reveals: append([]Reveal(nil), e.Reveals...)}
		}
	}
	next.Winners = cloneInts(s.Winners)
	next.WaitingForPlayers = cloneInts(s.WaitingForPlayers)
	return next
}

func (s State) Player(id int) (Player, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return Player{}, false
	}
	return s.Players[i], true
}

func (s State) indexOf(id int) int {
	for i, p := range s.Players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (s State) IsWaiting(id int) bool {
	return containsInt(s.WaitingForPlayers, id)
}

func (s State) IsWinner(id int) bool {
	return containsInt(s.Winners, id)
}

// RoundOpen reports whether some player still has to reveal this round.
func (s State) RoundOpen() bool {
	return s.Phase == Revealing && len(s.WaitingForPlayers) > 0
}

func (s State) HoleCardsLeft() bool {
	for _, p := range s.Players {
		if len(p.HoleCards) > 0 {
			return true
		}
	}
	return false
}

// VisibleHand ranks what the table can currently see of a player.
func (s State) VisibleHand(id int) hand.Result {
	p, _ := s.Player(id)
	return hand.Best(p.Visible())
}

// FinalHand ranks all of a player's cards.
func (s State) FinalHand(id int) hand.Result {
	p, _ := s.Player(id)
	return hand.Best(p.All())
}

func cloneCards(cards []card.Card) []card.Card {
	if cards == nil {
		return nil
	}
	return append(make([]card.Card, 0, len(cards)), cards...)
}

func cloneInts(ids []int) []int {
	if ids == nil {
		return nil
	}
	return append(make([]int, 0, len(ids)), ids...)
}

func containsInt(ids []int, id int) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func removeInt(ids []int, id int) []int {
	list := make([]int, 0, len(ids))
	for _, v := range ids {
		if v != id {
			list = append(list, v)
		}
	}
	return list
}
