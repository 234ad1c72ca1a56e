package state

import (
	"context"

	"github.com/ihou-ev/10cardstad/client"
	"github.com/ihou-ev/10cardstad/consts"
	"github.com/ihou-ev/10cardstad/database"
	"github.com/ihou-ev/10cardstad/model"
	"github.com/ihou-ev/10cardstad/render"
)

type join struct {
	m *Machine
}

func (s *join) Next(player *client.Player) (consts.StateID, error) {
	ctx := context.Background()
	rooms, err := s.m.svc.Rooms(ctx)
	if err != nil {
		return 0, player.WriteError(err)
	}
	summaries := make([]model.RoomSummary, 0, len(rooms))
	for _, snap := range rooms {
		summaries = append(summaries, model.Summary(snap.Room, snap.Players))
	}
	if err = render.RoomList(player, summaries); err != nil {
		return 0, player.WriteError(err)
	}
	if err = player.WriteString("Please input room code: \n"); err != nil {
		return 0, player.WriteError(err)
	}
	signal, err := player.AskForString()
	if err != nil {
		return 0, player.WriteError(err)
	}
	if signal == "" || isLs(signal) {
		return consts.StateJoin, nil
	}
	snap, err := s.m.svc.JoinRoom(ctx, signal, player.ID, player.Name)
	if err != nil {
		return 0, player.WriteError(err)
	}
	player.SetRoom(snap.Room.ID)
	if snap.Room.Status == database.StatusWaiting {
		return consts.StateWaiting, nil
	}
	return consts.StateGame, nil
}

func (*join) Exit(player *client.Player) consts.StateID {
	return consts.StateHome
}
