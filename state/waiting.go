package state

import (
	"context"
	"fmt"
	"strings"

	"github.com/ratel-online/core/log"

	"github.com/ihou-ev/10cardstad/client"
	"github.com/ihou-ev/10cardstad/consts"
	"github.com/ihou-ev/10cardstad/database"
	"github.com/ihou-ev/10cardstad/model"
	"github.com/ihou-ev/10cardstad/render"
	"github.com/ihou-ev/10cardstad/service"
)

type waiting struct {
	m *Machine
}

func (s *waiting) Next(player *client.Player) (consts.StateID, error) {
	roomID := player.RoomID()
	if roomID == "" {
		return 0, consts.ErrorsExist
	}
	events := s.m.svc.Subscribe(roomID)
	defer s.m.svc.Unsubscribe(events)

	access, err := s.waitingForStart(player, roomID, events)
	if err != nil {
		return 0, player.WriteError(err)
	}
	if access {
		return consts.StateGame, nil
	}
	return s.Exit(player), nil
}

func (s *waiting) Exit(player *client.Player) consts.StateID {
	leave(s.m.svc, player)
	return consts.StateHome
}

func leave(svc *service.Service, player *client.Player) {
	roomID := player.RoomID()
	if roomID == "" {
		return
	}
	if err := svc.LeaveRoom(context.Background(), roomID, player.ID); err != nil {
		log.Errorf("player %s leave room %s: %v\n", player, roomID, err)
	}
	player.SetRoom("")
}

func (s *waiting) waitingForStart(player *client.Player, roomID string, events chan database.Event) (bool, error) {
	ctx := context.Background()
	snap, err := s.m.svc.Snapshot(ctx, roomID)
	if err != nil {
		return false, err
	}
	if snap.Room.Status != database.StatusWaiting {
		return true, nil
	}
	showRoom(player, snap)
	_ = player.WriteString("Type 'start' to deal once everyone is here, 'ls' to view the room.\n")

	player.StartTransaction()
	defer player.StopTransaction()
	for {
		signal, err := player.AskForStringWithoutTransaction(consts.WaitingPoll)
		if err != nil && err != consts.ErrorsTimeout {
			return false, err
		}
		if changed, gone := drain(events); gone {
			return false, consts.ErrorsRoomInvalid
		} else if changed {
			if snap, err = s.m.svc.Snapshot(ctx, roomID); err != nil {
				return false, err
			}
			if snap.Room.Status != database.StatusWaiting {
				return true, nil
			}
			showRoom(player, snap)
		}
		signal = strings.ToLower(signal)
		switch {
		case isLs(signal):
			if snap, err = s.m.svc.Snapshot(ctx, roomID); err != nil {
				return false, err
			}
			showRoom(player, snap)
		case signal == "start" || signal == "s":
			if _, err = s.m.svc.StartGame(ctx, roomID, player.ID); err != nil {
				if e, ok := err.(consts.Error); ok && !e.Exit {
					_ = player.WriteError(err)
					continue
				}
				return false, err
			}
			return true, nil
		case signal != "":
			_ = player.WriteString(fmt.Sprintf("Unknown command %q\n", signal))
		}
	}
}

// drain empties the subscription without blocking. It reports whether
// anything arrived and whether the room is gone.
func drain(events chan database.Event) (changed, gone bool) {
	for {
		select {
		case e, ok := <-events:
			if !ok || e.Kind == database.RoomDeleted {
				return true, true
			}
			changed = true
		default:
			return changed, false
		}
	}
}

func showRoom(player *client.Player, snap *service.Snapshot) {
	_ = render.RoomInfo(player, model.View(snap.Room, snap.Players, player.ID))
}
