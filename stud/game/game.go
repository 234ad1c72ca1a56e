package game

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/ihou-ev/10cardstad/stud/card"
	"github.com/ihou-ev/10cardstad/stud/hand"
)

const (
	MinPlayers = 2
	MaxPlayers = 5
)

var ErrPlayerCount = errors.New("game: invalid number of players")

// Initialize deals deck as given, without shuffling.
func Initialize(names []string, configs []card.DealingConfig, deck []card.Card) (State, error) {
	if len(names) < MinPlayers || len(names) > MaxPlayers {
		return State{}, fmt.Errorf("%w: %d", ErrPlayerCount, len(names))
	}
	if len(configs) != len(names) {
		return State{}, fmt.Errorf("%w: %d names, %d dealing configs", ErrPlayerCount, len(names), len(configs))
	}
	s := State{Phase: Dealing}
	dealt, err := card.Deal(deck, configs)
	if err != nil {
		return State{}, err
	}
	s.Players = make([]Player, len(names))
	for i, name := range names {
		s.Players[i] = Player{
			ID:                i,
			Name:              name,
			DoorCards:         dealt.Seats[i].Door,
			HoleCards:         dealt.Seats[i].Hole,
			RevealedHoleCards: []card.Card{},
		}
	}
	s.DeadCards = dealt.Dead
	s.RevealHistory = []RevealEvent{}
	s.WaitingForPlayers = []int{}
	s.Phase = Revealing
	return s, nil
}

// NewGame shuffles a fresh deck with rng and deals it.
func NewGame(names []string, configs []card.DealingConfig, rng *rand.Rand) (State, error) {
	return Initialize(names, configs, card.Shuffle(card.NewDeck(), rng))
}

// StartRound picks the players whose visible hand is weakest among those
// still holding hole cards. Every player tied at the minimum must reveal.
// A round that is already open is left alone.
func StartRound(s State) State {
	if s.Phase != Revealing || len(s.WaitingForPlayers) > 0 {
		return s
	}
	var (
		weakest         []int
		weakestStrength hand.Strength
	)
	for _, p := range s.Players {
		if len(p.HoleCards) == 0 {
			continue
		}
		strength := hand.Best(p.Visible()).Strength
		switch {
		case weakest == nil || strength.Compare(weakestStrength) < 0:
			weakest, weakestStrength = []int{p.ID}, strength
		case strength.Compare(weakestStrength) == 0:
			weakest = append(weakest, p.ID)
		}
	}
	next := s.Clone()
	if len(weakest) == 0 {
		next.Phase = Showdown
		return next
	}
	next.WaitingForPlayers = weakest
	return next
}

// RevealCard is TryReveal without the changed flag.
func RevealCard(s State, playerID, cardID int) State {
	next, _ := TryReveal(s, playerID, cardID)
	return next
}

// TryReveal turns one hole card face up. It returns s unchanged and false
// when the player is not waiting or the card is not one of their hole cards.
func TryReveal(s State, playerID, cardID int) (State, bool) {
	if s.Phase != Revealing || !s.IsWaiting(playerID) {
		return s, false
	}
	i := s.indexOf(playerID)
	if i < 0 {
		return s, false
	}
	at := card.IndexOf(s.Players[i].HoleCards, cardID)
	if at < 0 {
		return s, false
	}
	next := s.Clone()
	p := &next.Players[i]
	revealed := p.HoleCards[at]
	p.HoleCards = card.Remove(p.HoleCards, cardID)
	p.RevealedHoleCards = append(p.RevealedHoleCards, revealed)

	reveal := Reveal{PlayerID: playerID, Card: revealed}
	if n := len(next.RevealHistory); n > 0 && next.RevealHistory[n-1].Round == next.CurrentRound {
		next.RevealHistory[n-1].Reveals = append(next.RevealHistory[n-1].Reveals, reveal)
	} else {
		next.RevealHistory = append(next.RevealHistory, RevealEvent{Round: next.CurrentRound, Reveals: []Reveal{reveal}})
	}

	next.WaitingForPlayers = removeInt(next.WaitingForPlayers, playerID)
	if len(next.WaitingForPlayers) == 0 {
		next.CurrentRound++
		if !next.HoleCardsLeft() {
			next.Phase = Showdown
		}
	}
	return next, true
}

// DetermineWinner ranks every player's full hand. All players sharing the
// best strength win.
func DetermineWinner(s State) State {
	if s.Phase != Showdown {
		return s
	}
	var (
		winners      []int
		bestStrength hand.Strength
	)
	for _, p := range s.Players {
		strength := hand.Best(p.All()).Strength
		switch {
		case winners == nil || strength.Compare(bestStrength) > 0:
			winners, bestStrength = []int{p.ID}, strength
		case strength.Compare(bestStrength) == 0:
			winners = append(winners, p.ID)
		}
	}
	next := s.Clone()
	next.Winners = winners
	next.WaitingForPlayers = []int{}
	next.Phase = Finished
	return next
}

// Advance moves a game that is not waiting on anyone one step forward.
func Advance(s State) State {
	switch {
	case s.Phase == Revealing && len(s.WaitingForPlayers) == 0:
		return StartRound(s)
	case s.Phase == Showdown:
		return DetermineWinner(s)
	}
	return s
}

// Settle advances until some player has to act or the game is finished.
func Settle(s State) State {
	for {
		next := Advance(s)
		if next.Phase == s.Phase && len(next.WaitingForPlayers) == len(s.WaitingForPlayers) {
			return next
		}
		s = next
	}
}
