package state

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/spf13/cast"

	"github.com/ihou-ev/10cardstad/client"
	"github.com/ihou-ev/10cardstad/consts"
	"github.com/ihou-ev/10cardstad/render"
	"github.com/ihou-ev/10cardstad/stud/game"
	"github.com/ihou-ev/10cardstad/stud/practice"
)

type practiceTable struct {
	m *Machine
}

func (s *practiceTable) Next(player *client.Player) (consts.StateID, error) {
	if err := render.DifficultyOptions(player); err != nil {
		return 0, player.WriteError(err)
	}
	selected, err := player.AskForInt()
	if err != nil {
		return 0, player.WriteError(err)
	}
	difficulty := practice.Difficulty(selected)
	if difficulty < practice.Easy || difficulty > practice.Open {
		return 0, player.WriteError(consts.ErrorsInputInvalid)
	}
	err = player.WriteString(fmt.Sprintf("How many bots? (1-%d)\n", game.MaxPlayers-1))
	if err != nil {
		return 0, player.WriteError(err)
	}
	bots, err := player.AskForInt()
	if err != nil {
		return 0, player.WriteError(err)
	}
	table, err := practice.NewTable(player.Name, bots, difficulty, rand.New(rand.NewSource(s.m.seed())))
	if err != nil {
		return 0, player.WriteError(consts.ErrorsGamePlayersInvalid)
	}
	for !table.Finished() {
		if err = render.Table(player, table); err != nil {
			return 0, player.WriteError(err)
		}
		if err = playHuman(player, table); err != nil {
			if e, ok := err.(consts.Error); ok && !e.Exit {
				_ = player.WriteError(err)
				continue
			}
			return 0, player.WriteError(err)
		}
	}
	if err = render.Table(player, table); err != nil {
		return 0, player.WriteError(err)
	}
	_ = player.WriteString("Type 'new' to play again, anything else to go home.\n")
	signal, err := player.AskForString()
	if err != nil {
		return 0, player.WriteError(err)
	}
	if strings.ToLower(signal) == "new" {
		return consts.StatePractice, nil
	}
	return consts.StateHome, nil
}

func playHuman(player *client.Player, table *practice.Table) error {
	signal, err := player.AskForString(consts.RevealTimeout)
	human, _ := table.State.Player(practice.Human)
	if err == consts.ErrorsTimeout {
		table.Reveal(practice.BotChoice(human).ID)
		return nil
	}
	if err != nil {
		return err
	}
	index, err := cast.ToIntE(signal)
	if err != nil || index < 1 || index > len(human.HoleCards) {
		return consts.ErrorsCardInvalid
	}
	if !table.Reveal(human.HoleCards[index-1].ID) {
		return consts.ErrorsNotYourTurn
	}
	return nil
}

func (*practiceTable) Exit(player *client.Player) consts.StateID {
	return consts.StateHome
}
