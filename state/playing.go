package state

import (
	"context"
	"strings"

	"github.com/spf13/cast"

	"github.com/ihou-ev/10cardstad/client"
	"github.com/ihou-ev/10cardstad/consts"
	"github.com/ihou-ev/10cardstad/database"
	"github.com/ihou-ev/10cardstad/model"
	"github.com/ihou-ev/10cardstad/service"
)

type playing struct {
	m *Machine
}

func (s *playing) Next(player *client.Player) (consts.StateID, error) {
	roomID := player.RoomID()
	if roomID == "" {
		return 0, consts.ErrorsExist
	}
	events := s.m.svc.Subscribe(roomID)
	defer s.m.svc.Unsubscribe(events)

	ctx := context.Background()
	if err := s.m.svc.Connect(ctx, roomID, player.ID); err != nil {
		return 0, player.WriteError(err)
	}
	snap, err := s.refresh(player, roomID)
	if err != nil {
		return 0, player.WriteError(err)
	}
	_ = player.WriteString("Type a card number to reveal it, 'ls' to view, 'next' to move on, 'new' to deal again.\n")

	player.StartTransaction()
	defer player.StopTransaction()
	for {
		signal, err := player.AskForStringWithoutTransaction(consts.WaitingPoll)
		if err != nil && err != consts.ErrorsTimeout {
			return 0, player.WriteError(err)
		}
		if changed, gone := drain(events); gone {
			return 0, player.WriteError(consts.ErrorsRoomInvalid)
		} else if changed {
			if snap, err = s.refresh(player, roomID); err != nil {
				return 0, player.WriteError(err)
			}
		}
		if snap.Room.Status == database.StatusWaiting {
			return consts.StateWaiting, nil
		}
		if signal == "" {
			continue
		}
		if err = s.command(ctx, player, snap, strings.ToLower(signal)); err != nil {
			if e, ok := err.(consts.Error); ok && !e.Exit {
				_ = player.WriteError(err)
				continue
			}
			return 0, player.WriteError(err)
		}
	}
}

func (s *playing) Exit(player *client.Player) consts.StateID {
	leave(s.m.svc, player)
	return consts.StateHome
}

// refresh reloads the room, draws it, and hands the game to the autoplayer
// when nobody online is holding it up. Only the trigger's session schedules.
func (s *playing) refresh(player *client.Player, roomID string) (*service.Snapshot, error) {
	snap, err := s.m.svc.Snapshot(context.Background(), roomID)
	if err != nil {
		return nil, err
	}
	showRoom(player, snap)
	if trigger := service.Trigger(snap.Players); trigger != nil && trigger.PlayerID == player.ID &&
		service.Pending(snap.Room, snap.Players) {
		s.m.auto.Schedule(roomID, player.ID)
	}
	return snap, nil
}

func (s *playing) command(ctx context.Context, player *client.Player, snap *service.Snapshot, signal string) error {
	roomID := snap.Room.ID
	switch {
	case isLs(signal):
		showRoom(player, snap)
		return nil
	case signal == "next" || signal == "n":
		_, _, err := s.m.svc.AdvanceRound(ctx, roomID)
		return err
	case signal == "new":
		_, err := s.m.svc.NewGame(ctx, roomID, player.ID)
		return err
	}
	index, err := cast.ToIntE(signal)
	if err != nil {
		return consts.ErrorsInputInvalid
	}
	return s.reveal(ctx, player, roomID, index)
}

// reveal plays the index-th hole card, counted from 1, as listed on screen.
func (s *playing) reveal(ctx context.Context, player *client.Player, roomID string, index int) error {
	snap, err := s.m.svc.Snapshot(ctx, roomID)
	if err != nil {
		return err
	}
	if snap.Room.Status != database.StatusPlaying {
		return consts.ErrorsGameNotStarted
	}
	var seat *model.Seat
	view := model.View(snap.Room, snap.Players, player.ID)
	for i := range view.Seats {
		if view.Seats[i].PlayerID == player.ID {
			seat = &view.Seats[i]
		}
	}
	if seat == nil || !seat.InGame {
		return consts.ErrorsNotSeated
	}
	if !seat.Waiting {
		return consts.ErrorsNotYourTurn
	}
	if index < 1 || index > len(seat.Hole) {
		return consts.ErrorsCardInvalid
	}
	_, ok, err := s.m.svc.RevealCard(ctx, roomID, player.ID, seat.Hole[index-1].ID)
	if err != nil {
		return err
	}
	if !ok {
		return consts.ErrorsNotYourTurn
	}
	return nil
}
