package state

import (
	"github.com/ihou-ev/10cardstad/client"
	"github.com/ihou-ev/10cardstad/consts"
	"github.com/ihou-ev/10cardstad/render"
)

type home struct{}

func (*home) Next(player *client.Player) (consts.StateID, error) {
	err := render.HomeOptions(player)
	if err != nil {
		return 0, player.WriteError(err)
	}
	selected, err := player.AskForInt()
	if err != nil {
		return 0, player.WriteError(err)
	}
	switch selected {
	case 1:
		return consts.StateJoin, nil
	case 2:
		return consts.StateCreate, nil
	case 3:
		return consts.StatePractice, nil
	}
	return 0, player.WriteError(consts.ErrorsInputInvalid)
}

func (*home) Exit(player *client.Player) consts.StateID {
	return 0
}
