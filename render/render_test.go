package render

import (
	"math/rand"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ihou-ev/10cardstad/model"
	"github.com/ihou-ev/10cardstad/stud/card"
	"github.com/ihou-ev/10cardstad/stud/game"
	"github.com/ihou-ev/10cardstad/stud/practice"
)

func init() {
	color.NoColor = true
}

func TestLobby(t *testing.T) {
	out := Lobby([]model.RoomSummary{
		{Code: "ABC234", Players: 3, Online: 2, Status: "waiting"},
	})
	assert.Contains(t, out, "Code")
	assert.Contains(t, out, "ABC234")
	assert.Contains(t, out, "waiting")
}

func TestChoices(t *testing.T) {
	out := Choices([]card.Card{
		{ID: 0, Suit: card.Spade, Rank: 14},
		{ID: 1, Suit: card.Heart, Rank: 10},
	})
	assert.Equal(t, "1.A♠ 2.10♥ \n", out)
}

func TestRoom(t *testing.T) {
	view := model.Room{
		Code:   "XYZ789",
		Status: "playing",
		Phase:  game.Revealing,
		Round:  2,
		Seats: []model.Seat{
			{
				Slot: 0, PlayerID: "a", Name: "ann", Online: true, Host: true, InGame: true, Waiting: true,
				Door:   []card.Card{{ID: 12, Suit: card.Spade, Rank: 14}},
				Hole:   []card.Card{{ID: 13, Suit: card.Heart, Rank: 2}},
				Hidden: 1,
				Hand:   "High Card",
			},
			{
				Slot: 1, PlayerID: "b", Name: "bob", InGame: true,
				Door:   []card.Card{{ID: 25, Suit: card.Heart, Rank: 14}},
				Hidden: 1,
				Hand:   "High Card",
			},
		},
	}
	out := Room(view, "a")
	assert.Contains(t, out, "Room XYZ789")
	assert.Contains(t, out, "revealing round 2")
	assert.Contains(t, out, "ann")
	assert.Contains(t, out, "host")
	assert.Contains(t, out, "bob")
	assert.Contains(t, out, "offline")
	assert.Contains(t, out, "1 down")
	assert.Contains(t, out, "Your turn")
	assert.Contains(t, out, "1.2♥")

	out = Room(view, "b")
	assert.NotContains(t, out, "Your turn")
	assert.NotContains(t, out, "2♥")
}

func TestTableText(t *testing.T) {
	table, err := practice.NewTable("me", 2, practice.Normal, rand.New(rand.NewSource(3)))
	require.NoError(t, err)

	out := TableText(table)
	assert.Contains(t, out, "Practice [Normal]")
	assert.Contains(t, out, "me")
	assert.Contains(t, out, "Bot 1")
	if table.HumanWaiting() {
		assert.Contains(t, out, "Your turn")
	}

	for !table.Finished() {
		human, _ := table.State.Player(practice.Human)
		require.True(t, table.Reveal(human.HoleCards[0].ID))
	}
	out = TableText(table)
	assert.Contains(t, out, "WINNER")
	assert.NotContains(t, out, "Your turn")
}
