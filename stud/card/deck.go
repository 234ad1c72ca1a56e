package card

import (
	"errors"
	"fmt"
	"math/rand"
)

const DeckSize = 52

var (
	ErrNotEnoughCards = errors.New("card: dealing config needs more cards than the deck holds")
	ErrInvalidConfig  = errors.New("card: invalid dealing config")
)

// DealingConfig is the number of face-up and face-down cards one seat receives.
type DealingConfig struct {
	Door int `json:"door"`
	Hole int `json:"hole"`
}

func (c DealingConfig) Total() int {
	return c.Door + c.Hole
}

// StandardConfigs returns the symmetric 5/5 deal for n seats.
func StandardConfigs(n int) []DealingConfig {
	configs := make([]DealingConfig, n)
	for i := range configs {
		configs[i] = DealingConfig{Door: 5, Hole: 5}
	}
	return configs
}

// NewDeck builds the 52 cards ordered by suit then rank. IDs run 0..51.
func NewDeck() []Card {
	cards := make([]Card, 0, DeckSize)
	for _, suit := range Suits {
		for rank := Two; rank <= Ace; rank++ {
			cards = append(cards, Card{ID: len(cards), Suit: suit, Rank: rank})
		}
	}
	return cards
}

// Shuffle returns a uniformly permuted copy of cards.
func Shuffle(cards []Card, rng *rand.Rand) []Card {
	shuffled := make([]Card, len(cards))
	copy(shuffled, cards)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled
}

type Hand struct {
	Door []Card `json:"door"`
	Hole []Card `json:"hole"`
}

type Dealt struct {
	Seats []Hand `json:"seats"`
	Dead  []Card `json:"dead"`
}

// Deal slices deck sequentially: door then hole per seat, the remainder is dead.
func Deal(deck []Card, configs []DealingConfig) (Dealt, error) {
	need := 0
	for i, c := range configs {
		if c.Door < 0 || c.Hole < 0 {
			return Dealt{}, fmt.Errorf("%w: seat %d door=%d hole=%d", ErrInvalidConfig, i, c.Door, c.Hole)
		}
		need += c.Total()
	}
	if need > len(deck) {
		return Dealt{}, fmt.Errorf("%w: need %d, have %d", ErrNotEnoughCards, need, len(deck))
	}
	dealt := Dealt{Seats: make([]Hand, len(configs))}
	offset := 0
	take := func(n int) []Card {
		group := make([]Card, n)
		copy(group, deck[offset:offset+n])
		offset += n
		return group
	}
	for i, c := range configs {
		dealt.Seats[i].Door = take(c.Door)
		dealt.Seats[i].Hole = take(c.Hole)
	}
	dealt.Dead = take(len(deck) - offset)
	return dealt, nil
}
