package service

import (
	"context"
	"errors"
	"math/rand"
	"strings"

	"github.com/google/uuid"
	"github.com/ratel-online/core/log"

	"github.com/ihou-ev/10cardstad/consts"
	"github.com/ihou-ev/10cardstad/database"
)

func (s *Service) newCode() string {
	buf := strings.Builder{}
	s.withRand(func(rng *rand.Rand) {
		for i := 0; i < consts.RoomCodeLength; i++ {
			buf.WriteByte(consts.RoomCodeAlphabet[rng.Intn(len(consts.RoomCodeAlphabet))])
		}
	})
	return buf.String()
}

// CreateRoom opens a room with the creator seated at slot 0 as host.
func (s *Service) CreateRoom(ctx context.Context, playerID, name string) (*Snapshot, error) {
	now := s.opts.Now()
	room := &database.Room{
		ID:        uuid.NewString(),
		HostID:    playerID,
		Status:    database.StatusWaiting,
		CreatedAt: now,
		ActiveAt:  now,
	}
	var err error
	for attempt := 0; attempt < s.opts.MaxAttempts; attempt++ {
		room.Code = s.newCode()
		if err = s.store.CreateRoom(ctx, room); !errors.Is(err, database.ErrCodeTaken) {
			break
		}
	}
	if err != nil {
		return nil, roomErr(err)
	}
	seat := &database.RoomPlayer{
		ID:         uuid.NewString(),
		RoomID:     room.ID,
		PlayerID:   playerID,
		PlayerName: name,
		Slot:       0,
		Online:     true,
		JoinedAt:   now,
	}
	if err = s.store.AddRoomPlayer(ctx, seat); err != nil {
		_ = s.store.DeleteRoom(ctx, room.ID)
		return nil, roomErr(err)
	}
	log.Infof("room %s created by %s, code %s\n", room.ID, seat, room.Code)
	return &Snapshot{Room: room, Players: []*database.RoomPlayer{seat}}, nil
}

// lowestFreeSlot returns -1 when every slot is taken.
func lowestFreeSlot(players []*database.RoomPlayer) int {
	used := map[int]bool{}
	for _, p := range players {
		used[p.Slot] = true
	}
	for slot := 0; slot < consts.MaxPlayers; slot++ {
		if !used[slot] {
			return slot
		}
	}
	return -1
}

// JoinRoom seats the player at the lowest free slot. A player who is already
// seated is marked online again instead.
func (s *Service) JoinRoom(ctx context.Context, code, playerID, name string) (*Snapshot, error) {
	room, err := s.store.GetRoomByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, roomErr(err)
	}
	for attempt := 0; attempt < s.opts.MaxAttempts; attempt++ {
		snap, err := s.Snapshot(ctx, room.ID)
		if err != nil {
			return nil, err
		}
		if seat := snap.Seat(playerID); seat != nil {
			if err = s.Connect(ctx, room.ID, playerID); err != nil {
				return nil, err
			}
			return s.Snapshot(ctx, room.ID)
		}
		if snap.Room.Status == database.StatusPlaying {
			return nil, consts.ErrorsJoinFailForRoomRunning
		}
		slot := lowestFreeSlot(snap.Players)
		if slot < 0 {
			return nil, consts.ErrorsRoomPlayersIsFull
		}
		seat := &database.RoomPlayer{
			ID:         uuid.NewString(),
			RoomID:     room.ID,
			PlayerID:   playerID,
			PlayerName: name,
			Slot:       slot,
			Online:     true,
			JoinedAt:   s.opts.Now(),
		}
		err = s.store.AddRoomPlayer(ctx, seat)
		if errors.Is(err, database.ErrSlotTaken) || errors.Is(err, database.ErrAlreadySeated) {
			continue
		}
		if err != nil {
			return nil, roomErr(err)
		}
		log.Infof("%s joined room %s at slot %d\n", seat, room.ID, slot)
		return s.Snapshot(ctx, room.ID)
	}
	return nil, consts.ErrorsBusy
}

// LeaveRoom frees the seat outside of a running game. During a game the
// seat is kept so its cards survive, and the player only goes offline.
func (s *Service) LeaveRoom(ctx context.Context, roomID, playerID string) error {
	room, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		return roomErr(err)
	}
	if room.Status == database.StatusPlaying {
		return s.setOnline(ctx, roomID, playerID, false)
	}
	if err = s.store.DeleteRoomPlayer(ctx, roomID, playerID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return consts.ErrorsNotSeated
		}
		return roomErr(err)
	}
	log.Infof("player %s left room %s\n", playerID, roomID)
	return s.tidy(ctx, roomID)
}

func (s *Service) Connect(ctx context.Context, roomID, playerID string) error {
	return s.setOnline(ctx, roomID, playerID, true)
}

// Disconnect marks the player offline during a game and behaves like
// LeaveRoom otherwise.
func (s *Service) Disconnect(ctx context.Context, roomID, playerID string) error {
	room, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		return roomErr(err)
	}
	if room.Status != database.StatusPlaying {
		return s.LeaveRoom(ctx, roomID, playerID)
	}
	return s.setOnline(ctx, roomID, playerID, false)
}

func (s *Service) setOnline(ctx context.Context, roomID, playerID string, online bool) error {
	players, err := s.store.ListRoomPlayers(ctx, roomID)
	if err != nil {
		return roomErr(err)
	}
	seat := database.FindRoomPlayer(players, playerID)
	if seat == nil {
		return consts.ErrorsNotSeated
	}
	if seat.Online != online {
		seat.Online = online
		if err = s.store.UpdateRoomPlayer(ctx, seat); err != nil {
			return roomErr(err)
		}
		log.Infof("%s online=%v in room %s\n", seat, online, roomID)
	}
	return s.tidy(ctx, roomID)
}

// tidy deletes a room nobody is online in and moves the host role to the
// lowest online slot when the host is gone or offline.
func (s *Service) tidy(ctx context.Context, roomID string) error {
	reclaimed, err := s.reclaim(ctx, roomID)
	if err != nil || reclaimed {
		return err
	}
	room, changed, err := s.update(ctx, roomID, func(room *database.Room, players []*database.RoomPlayer) (bool, error) {
		host := database.FindRoomPlayer(players, room.HostID)
		if host != nil && host.Online {
			return false, nil
		}
		next := Trigger(players)
		if next == nil || next.PlayerID == room.HostID {
			return false, nil
		}
		room.HostID = next.PlayerID
		return true, nil
	})
	if errors.Is(err, consts.ErrorsRoomInvalid) {
		return nil
	}
	if err == nil && changed {
		log.Infof("room %s host transferred to %s\n", roomID, room.HostID)
	}
	return err
}

// reclaim deletes the room with its seats when no occupant is online.
func (s *Service) reclaim(ctx context.Context, roomID string) (bool, error) {
	players, err := s.store.ListRoomPlayers(ctx, roomID)
	if err != nil {
		return false, roomErr(err)
	}
	if Trigger(players) != nil {
		return false, nil
	}
	err = s.store.DeleteRoom(ctx, roomID)
	if errors.Is(err, database.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, roomErr(err)
	}
	log.Infof("room %s has no online player, removed.\n", roomID)
	return true, nil
}
