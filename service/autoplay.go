package service

import (
	"context"
	"sync"
	"time"

	"github.com/ratel-online/core/log"
	"github.com/ratel-online/core/util/async"

	"github.com/ihou-ev/10cardstad/database"
	"github.com/ihou-ev/10cardstad/stud/game"
)

// Pending reports whether the game can move without an online player
// acting: an offline player owes a reveal, a round has closed, or the
// showdown is unsettled.
func Pending(room *database.Room, players []*database.RoomPlayer) bool {
	if room == nil || room.Status != database.StatusPlaying || room.GameState == nil {
		return false
	}
	state := room.GameState
	if !state.RoundOpen() {
		return state.Phase == game.Revealing || state.Phase == game.Showdown
	}
	for _, p := range players {
		if id := room.GamePlayer(p.PlayerID); !p.Online && id >= 0 && state.IsWaiting(id) {
			return true
		}
	}
	return false
}

// AutoPlay acts for offline occupants. It only runs for the current trigger
// and re-checks everything against the latest room first, because the
// offline player may have come back and played during the delay. Each
// offline waiting player reveals their first hole card, then the game is
// advanced until someone has to act.
func (s *Service) AutoPlay(ctx context.Context, roomID, actorID string) (*database.Room, bool, error) {
	room, changed, err := s.update(ctx, roomID, func(room *database.Room, players []*database.RoomPlayer) (bool, error) {
		trigger := Trigger(players)
		if trigger == nil || trigger.PlayerID != actorID {
			return false, nil
		}
		if !Pending(room, players) {
			return false, nil
		}
		state := *room.GameState
		for _, p := range players {
			id := room.GamePlayer(p.PlayerID)
			if p.Online || id < 0 || !state.IsWaiting(id) {
				continue
			}
			seat, _ := state.Player(id)
			if len(seat.HoleCards) == 0 {
				continue
			}
			var ok bool
			if state, ok = game.TryReveal(state, id, seat.HoleCards[0].ID); ok {
				log.Infof("room %s: %s revealed %s for offline %s\n", roomID, trigger, seat.HoleCards[0], p)
			}
		}
		if !state.RoundOpen() {
			state = game.Settle(state)
		}
		if !progressed(*room.GameState, state) && len(state.RevealHistory) == len(room.GameState.RevealHistory) {
			return false, nil
		}
		setState(room, state)
		return true, nil
	})
	if changed && room.Status == database.StatusFinished {
		log.Infof("room %s game finished, winners %v\n", roomID, room.GameState.Winners)
	}
	return room, changed, err
}

// Autoplayer runs AutoPlay after a fixed delay, at most one pending run per
// room. Scheduling again replaces the pending run.
type Autoplayer struct {
	svc   *Service
	delay time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer
	closed bool
}

func NewAutoplayer(svc *Service) *Autoplayer {
	return &Autoplayer{
		svc:    svc,
		delay:  svc.opts.AutoPlayDelay,
		timers: map[string]*time.Timer{},
	}
}

func (a *Autoplayer) Schedule(roomID, actorID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	if t, ok := a.timers[roomID]; ok {
		t.Stop()
	}
	var timer *time.Timer
	timer = time.AfterFunc(a.delay, func() {
		a.mu.Lock()
		if a.timers[roomID] != timer {
			a.mu.Unlock()
			return
		}
		delete(a.timers, roomID)
		a.mu.Unlock()
		async.Async(func() {
			if _, _, err := a.svc.AutoPlay(context.Background(), roomID, actorID); err != nil {
				log.Errorf("room %s auto play failed: %v\n", roomID, err)
			}
		})
	})
	a.timers[roomID] = timer
}

func (a *Autoplayer) Cancel(roomID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if t, ok := a.timers[roomID]; ok {
		t.Stop()
		delete(a.timers, roomID)
	}
}

func (a *Autoplayer) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	for id, t := range a.timers {
		t.Stop()
		delete(a.timers, id)
	}
}
