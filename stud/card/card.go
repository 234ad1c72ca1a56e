package card

import (
	"fmt"

	"github.com/fatih/color"
)

type Suit int

const (
	Spade Suit = iota
	Heart
	Diamond
	Club
)

var Suits = []Suit{Spade, Heart, Diamond, Club}

var suitSymbols = map[Suit]string{
	Spade:   "♠",
	Heart:   "♥",
	Diamond: "♦",
	Club:    "♣",
}

func (s Suit) String() string {
	return suitSymbols[s]
}

// Red reports whether the suit is printed in red.
func (s Suit) Red() bool {
	return s == Heart || s == Diamond
}

type Rank int

const (
	Two   Rank = 2
	Jack  Rank = 11
	Queen Rank = 12
	King  Rank = 13
	Ace   Rank = 14
)

var rankFaces = map[Rank]string{
	10:    "10",
	Jack:  "J",
	Queen: "Q",
	King:  "K",
	Ace:   "A",
}

func (r Rank) String() string {
	if face, ok := rankFaces[r]; ok {
		return face
	}
	return fmt.Sprintf("%d", int(r))
}

// Card is immutable once the deck is built. ID is unique within a game.
type Card struct {
	ID   int  `json:"id"`
	Suit Suit `json:"suit"`
	Rank Rank `json:"rank"`
}

func (c Card) String() string {
	return c.Rank.String() + c.Suit.String()
}

var (
	red   = color.New(color.FgHiRed).SprintfFunc()
	black = color.New(color.FgHiWhite).SprintfFunc()
)

// Paint renders the card for a terminal.
func (c Card) Paint() string {
	if c.Suit.Red() {
		return red("%s", c.String())
	}
	return black("%s", c.String())
}

func Contains(cards []Card, id int) bool {
	return IndexOf(cards, id) >= 0
}

func IndexOf(cards []Card, id int) int {
	for i, c := range cards {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// Remove returns a copy of cards without the card identified by id.
func Remove(cards []Card, id int) []Card {
	list := make([]Card, 0, len(cards))
	for _, c := range cards {
		if c.ID != id {
			list = append(list, c)
		}
	}
	return list
}

func Join(groups ...[]Card) []Card {
	n := 0
	for _, g := range groups {
		n += len(g)
	}
	list := make([]Card, 0, n)
	for _, g := range groups {
		list = append(list, g...)
	}
	return list
}
