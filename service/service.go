package service

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/ratel-online/core/log"

	"github.com/ihou-ev/10cardstad/consts"
	"github.com/ihou-ev/10cardstad/database"
)

type Options struct {
	Rand          *rand.Rand
	Now           func() time.Time
	AutoPlayDelay time.Duration
	RoomTTL       time.Duration
	// MaxAttempts bounds the re-read loop after a version conflict.
	MaxAttempts int
}

// Service applies player actions to rooms. Every action re-reads the room,
// runs a pure transition and writes it back with a version check.
type Service struct {
	store database.Store
	opts  Options

	rngMu sync.Mutex
	rng   *rand.Rand
}

func New(store database.Store, opts Options) *Service {
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.AutoPlayDelay <= 0 {
		opts.AutoPlayDelay = consts.AutoPlayDelay
	}
	if opts.RoomTTL <= 0 {
		opts.RoomTTL = consts.RoomTTL
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 8
	}
	return &Service{store: store, opts: opts, rng: opts.Rand}
}

func (s *Service) Store() database.Store {
	return s.store
}

func (s *Service) AutoPlayDelay() time.Duration {
	return s.opts.AutoPlayDelay
}

func (s *Service) withRand(fn func(rng *rand.Rand)) {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	fn(s.rng)
}

// Snapshot is a room together with its seats ordered by slot.
type Snapshot struct {
	Room    *database.Room         `json:"room"`
	Players []*database.RoomPlayer `json:"players"`
}

func (s *Snapshot) Seat(playerID string) *database.RoomPlayer {
	return database.FindRoomPlayer(s.Players, playerID)
}

func (s *Service) Snapshot(ctx context.Context, roomID string) (*Snapshot, error) {
	room, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		return nil, roomErr(err)
	}
	players, err := s.store.ListRoomPlayers(ctx, roomID)
	if err != nil {
		return nil, roomErr(err)
	}
	return &Snapshot{Room: room, Players: players}, nil
}

// RoomByCode looks a room up by its share code, ignoring case.
func (s *Service) RoomByCode(ctx context.Context, code string) (*Snapshot, error) {
	room, err := s.store.GetRoomByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, roomErr(err)
	}
	return s.Snapshot(ctx, room.ID)
}

func (s *Service) Rooms(ctx context.Context) ([]*Snapshot, error) {
	rooms, err := s.store.ListRooms(ctx)
	if err != nil {
		return nil, roomErr(err)
	}
	list := make([]*Snapshot, 0, len(rooms))
	for _, room := range rooms {
		players, err := s.store.ListRoomPlayers(ctx, room.ID)
		if err != nil {
			return nil, roomErr(err)
		}
		list = append(list, &Snapshot{Room: room, Players: players})
	}
	return list, nil
}

func (s *Service) Subscribe(roomID string) chan database.Event {
	return s.store.Subscribe(roomID)
}

func (s *Service) SubscribeLobby() chan database.Event {
	return s.store.SubscribeLobby()
}

func (s *Service) Unsubscribe(ch chan database.Event) {
	s.store.Unsubscribe(ch)
}

// Trigger is the online occupant with the lowest slot, or nil.
func Trigger(players []*database.RoomPlayer) *database.RoomPlayer {
	var trigger *database.RoomPlayer
	for _, p := range players {
		if p.Online && (trigger == nil || p.Slot < trigger.Slot) {
			trigger = p
		}
	}
	return trigger
}

type mutation func(room *database.Room, players []*database.RoomPlayer) (bool, error)

// update runs fn against the freshest room and seats until its write is not
// rejected by a concurrent writer. fn returning false commits nothing.
func (s *Service) update(ctx context.Context, roomID string, fn mutation) (*database.Room, bool, error) {
	for attempt := 0; attempt < s.opts.MaxAttempts; attempt++ {
		room, err := s.store.GetRoom(ctx, roomID)
		if err != nil {
			return nil, false, roomErr(err)
		}
		players, err := s.store.ListRoomPlayers(ctx, roomID)
		if err != nil {
			return nil, false, roomErr(err)
		}
		changed, err := fn(room, players)
		if err != nil {
			return nil, false, roomErr(err)
		}
		if !changed {
			return room, false, nil
		}
		room.ActiveAt = s.opts.Now()
		err = s.store.UpdateRoom(ctx, room)
		if errors.Is(err, database.ErrConflict) {
			log.Infof("room %s version conflict, retry %d\n", roomID, attempt+1)
			continue
		}
		if err != nil {
			return nil, false, roomErr(err)
		}
		return room, true, nil
	}
	return nil, false, consts.ErrorsBusy
}

// roomErr turns store failures into errors a client can be shown. Anything
// the store does not explain is logged and reported as busy.
func roomErr(err error) error {
	if e, ok := err.(consts.Error); ok {
		return e
	}
	if errors.Is(err, database.ErrNotFound) {
		return consts.ErrorsRoomInvalid
	}
	log.Errorf("store: %v\n", err)
	return consts.ErrorsBusy
}
