package state

import (
	"github.com/ihou-ev/10cardstad/client"
	"github.com/ihou-ev/10cardstad/consts"
	"github.com/ihou-ev/10cardstad/render"
)

type welcome struct{}

func (*welcome) Next(player *client.Player) (consts.StateID, error) {
	err := render.Welcome(player)
	if err != nil {
		return 0, player.WriteError(err)
	}
	return consts.StateHome, nil
}

func (*welcome) Exit(player *client.Player) consts.StateID {
	return 0
}
