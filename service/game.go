package service

import (
	"context"
	"errors"
	"math/rand"

	"github.com/ratel-online/core/log"

	"github.com/ihou-ev/10cardstad/consts"
	"github.com/ihou-ev/10cardstad/database"
	"github.com/ihou-ev/10cardstad/stud/card"
	"github.com/ihou-ev/10cardstad/stud/game"
)

// StartGame deals a new game in a waiting room. Only the host may start.
func (s *Service) StartGame(ctx context.Context, roomID, playerID string) (*database.Room, error) {
	return s.deal(ctx, roomID, playerID, database.StatusWaiting)
}

// NewGame deals again in a finished room with the occupants still online.
func (s *Service) NewGame(ctx context.Context, roomID, playerID string) (*database.Room, error) {
	return s.deal(ctx, roomID, playerID, database.StatusFinished)
}

func (s *Service) deal(ctx context.Context, roomID, playerID string, from database.RoomStatus) (*database.Room, error) {
	room, _, err := s.update(ctx, roomID, func(room *database.Room, players []*database.RoomPlayer) (bool, error) {
		if err := checkDeal(room, players, playerID, from); err != nil {
			return false, err
		}
		var lineup, names []string
		for _, p := range players {
			if p.Online {
				lineup = append(lineup, p.PlayerID)
				names = append(names, p.PlayerName)
			}
		}
		var (
			state game.State
			err   error
		)
		s.withRand(func(rng *rand.Rand) {
			state, err = game.NewGame(names, card.StandardConfigs(len(names)), rng)
		})
		if err != nil {
			return false, err
		}
		state = game.StartRound(state)
		room.GameState = &state
		room.Lineup = lineup
		room.Status = database.StatusPlaying
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	log.Infof("room %s game started with %d players\n", roomID, len(room.GameState.Players))
	if err = s.compact(ctx, room); err != nil {
		log.Errorf("room %s compact seats: %v\n", roomID, err)
	}
	return room, nil
}

func checkDeal(room *database.Room, players []*database.RoomPlayer, playerID string, from database.RoomStatus) error {
	if room.HostID != playerID {
		return consts.ErrorsNotHost
	}
	if room.Status != from {
		if room.Status == database.StatusPlaying {
			return consts.ErrorsJoinFailForRoomRunning
		}
		return consts.ErrorsGameNotFinished
	}
	online := 0
	for _, p := range players {
		if p.Online {
			online++
		}
	}
	if online < consts.MinPlayers || online > consts.MaxPlayers {
		return consts.ErrorsGamePlayersInvalid
	}
	return nil
}

// compact drops the seats left out of the room's lineup and renumbers the
// rest so a seat's slot matches its player id in the game. It runs after
// the deal is committed; seats map to players through the lineup, so a
// partial compaction only leaves gaps in the slot numbers.
func (s *Service) compact(ctx context.Context, room *database.Room) error {
	players, err := s.store.ListRoomPlayers(ctx, room.ID)
	if err != nil {
		return err
	}
	var keep []*database.RoomPlayer
	for _, p := range players {
		if room.GamePlayer(p.PlayerID) >= 0 {
			keep = append(keep, p)
			continue
		}
		if err := s.store.DeleteRoomPlayer(ctx, p.RoomID, p.PlayerID); err != nil && !errors.Is(err, database.ErrNotFound) {
			return err
		}
		log.Infof("%s removed from room %s while offline\n", p, p.RoomID)
	}
	// seats come in slot order, so each target slot is already free
	for _, p := range keep {
		if slot := room.GamePlayer(p.PlayerID); p.Slot != slot {
			p.Slot = slot
			if err := s.store.UpdateRoomPlayer(ctx, p); err != nil {
				return err
			}
		}
	}
	return nil
}

// RevealCard applies one reveal for the seated player. An ineligible reveal
// reports changed=false and no error.
func (s *Service) RevealCard(ctx context.Context, roomID, playerID string, cardID int) (*database.Room, bool, error) {
	return s.update(ctx, roomID, func(room *database.Room, players []*database.RoomPlayer) (bool, error) {
		if room.Status != database.StatusPlaying || room.GameState == nil {
			return false, consts.ErrorsGameNotStarted
		}
		seat := database.FindRoomPlayer(players, playerID)
		if seat == nil {
			return false, consts.ErrorsNotSeated
		}
		id := room.GamePlayer(playerID)
		if id < 0 {
			return false, consts.ErrorsNotSeated
		}
		next, ok := game.TryReveal(*room.GameState, id, cardID)
		if !ok {
			return false, nil
		}
		room.GameState = &next
		return true, nil
	})
}

// AdvanceRound opens the next round, or settles the showdown.
func (s *Service) AdvanceRound(ctx context.Context, roomID string) (*database.Room, bool, error) {
	room, changed, err := s.update(ctx, roomID, func(room *database.Room, _ []*database.RoomPlayer) (bool, error) {
		if room.Status != database.StatusPlaying || room.GameState == nil {
			return false, nil
		}
		next := game.Advance(*room.GameState)
		if !progressed(*room.GameState, next) {
			return false, nil
		}
		setState(room, next)
		return true, nil
	})
	if changed && room.Status == database.StatusFinished {
		log.Infof("room %s game finished, winners %v\n", roomID, room.GameState.Winners)
	}
	return room, changed, err
}

func progressed(prev, next game.State) bool {
	return prev.Phase != next.Phase ||
		prev.CurrentRound != next.CurrentRound ||
		len(prev.WaitingForPlayers) != len(next.WaitingForPlayers)
}

func setState(room *database.Room, state game.State) {
	room.GameState = &state
	if state.Phase == game.Finished {
		room.Status = database.StatusFinished
	}
}
