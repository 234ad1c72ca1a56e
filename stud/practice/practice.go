package practice

import (
	"fmt"
	"math/rand"

	"github.com/ihou-ev/10cardstad/stud/card"
	"github.com/ihou-ev/10cardstad/stud/game"
	"github.com/ihou-ev/10cardstad/stud/hand"
)

type Difficulty int

const (
	Easy Difficulty = iota + 1
	Normal
	Hard
	Open
)

var Difficulties = []Difficulty{Easy, Normal, Hard, Open}

var difficultyNames = map[Difficulty]string{
	Easy:   "Easy",
	Normal: "Normal",
	Hard:   "Hard",
	Open:   "Open",
}

func (d Difficulty) String() string {
	return difficultyNames[d]
}

// Config is the human seat's deal. Open deals everything face up.
func (d Difficulty) Config() card.DealingConfig {
	switch d {
	case Easy:
		return card.DealingConfig{Door: 7, Hole: 3}
	case Hard:
		return card.DealingConfig{Door: 3, Hole: 7}
	case Open:
		return card.DealingConfig{Door: 10, Hole: 0}
	}
	return card.DealingConfig{Door: 5, Hole: 5}
}

// Configs puts the human at seat 0 and deals every bot the normal 5/5.
func Configs(d Difficulty, bots int) []card.DealingConfig {
	configs := card.StandardConfigs(bots + 1)
	configs[0] = d.Config()
	return configs
}

const Human = 0

// Table is a local game against bots. No room or store is involved.
type Table struct {
	Difficulty Difficulty
	State      game.State
}

func NewTable(name string, bots int, d Difficulty, rng *rand.Rand) (*Table, error) {
	if bots < 1 || bots > game.MaxPlayers-1 {
		return nil, fmt.Errorf("%w: %d bots", game.ErrPlayerCount, bots)
	}
	names := []string{name}
	for i := 1; i <= bots; i++ {
		names = append(names, fmt.Sprintf("Bot %d", i))
	}
	state, err := game.NewGame(names, Configs(d, bots), rng)
	if err != nil {
		return nil, err
	}
	t := &Table{Difficulty: d, State: state}
	t.Play()
	return t, nil
}

func (t *Table) HumanWaiting() bool {
	return t.State.IsWaiting(Human)
}

func (t *Table) Finished() bool {
	return t.State.Phase == game.Finished
}

// Reveal plays the human's card and lets the bots catch up.
func (t *Table) Reveal(cardID int) bool {
	next, ok := game.TryReveal(t.State, Human, cardID)
	if !ok {
		return false
	}
	t.State = next
	t.Play()
	return true
}

// Play runs bot turns and round changes until the human has to act or the
// game is over.
func (t *Table) Play() {
	for {
		t.State = game.Settle(t.State)
		if !t.State.RoundOpen() || t.HumanWaiting() {
			return
		}
		for _, id := range t.State.WaitingForPlayers {
			p, _ := t.State.Player(id)
			t.State = game.RevealCard(t.State, id, BotChoice(p).ID)
		}
	}
}

// BotChoice picks the hole card that makes the visible hand strongest.
func BotChoice(p game.Player) card.Card {
	var (
		choice card.Card
		best   hand.Result
	)
	for i, c := range p.HoleCards {
		r := hand.Best(append(p.Visible(), c))
		if i == 0 || hand.Compare(r, best) > 0 {
			choice, best = c, r
		}
	}
	return choice
}
