package state

import (
	"context"
	"fmt"

	"github.com/ihou-ev/10cardstad/client"
	"github.com/ihou-ev/10cardstad/consts"
)

type create struct {
	m *Machine
}

func (s *create) Next(player *client.Player) (consts.StateID, error) {
	snap, err := s.m.svc.CreateRoom(context.Background(), player.ID, player.Name)
	if err != nil {
		return 0, player.WriteError(err)
	}
	player.SetRoom(snap.Room.ID)
	err = player.WriteString(fmt.Sprintf("Create room successful, code : %s\n", snap.Room.Code))
	if err != nil {
		return 0, player.WriteError(err)
	}
	return consts.StateWaiting, nil
}

func (*create) Exit(_ *client.Player) consts.StateID {
	return consts.StateHome
}
