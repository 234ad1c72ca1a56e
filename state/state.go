package state

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/ratel-online/core/log"
	"github.com/ratel-online/core/util/async"

	"github.com/ihou-ev/10cardstad/client"
	"github.com/ihou-ev/10cardstad/consts"
	"github.com/ihou-ev/10cardstad/service"
)

const maxFailures = 3

type State interface {
	Next(player *client.Player) (consts.StateID, error)
	Exit(player *client.Player) consts.StateID
}

// Machine drives every connected player through the menus and rooms.
type Machine struct {
	svc    *service.Service
	auto   *service.Autoplayer
	states map[consts.StateID]State

	rngMu sync.Mutex
	rng   *rand.Rand
}

func New(svc *service.Service, auto *service.Autoplayer, rng *rand.Rand) *Machine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	m := &Machine{svc: svc, auto: auto, rng: rng, states: map[consts.StateID]State{}}
	m.register(consts.StateWelcome, &welcome{})
	m.register(consts.StateHome, &home{})
	m.register(consts.StateJoin, &join{m})
	m.register(consts.StateCreate, &create{m})
	m.register(consts.StateWaiting, &waiting{m})
	m.register(consts.StateGame, &playing{m})
	m.register(consts.StatePractice, &practiceTable{m})
	return m
}

func (m *Machine) register(id consts.StateID, state State) {
	m.states[id] = state
}

// seed hands out independent seeds for practice tables.
func (m *Machine) seed() int64 {
	m.rngMu.Lock()
	defer m.rngMu.Unlock()
	return m.rng.Int63()
}

func (m *Machine) Run(player *client.Player) {
	defer func() {
		if err := recover(); err != nil {
			async.PrintStackTrace(err)
		}
	}()
	if player.GetState() == 0 {
		player.State(consts.StateWelcome)
	}
	// unexplained errors send the player home; a connection that keeps
	// failing is given up on
	failures := 0
	for player.Online() {
		state := m.states[player.GetState()]
		stateID, err := state.Next(player)
		if _, ok := err.(consts.Error); ok || err == nil {
			failures = 0
		}
		if err != nil {
			if e, ok := err.(consts.Error); ok {
				if e.Exit {
					stateID = state.Exit(player)
				}
				if e == consts.ErrorsChanClosed {
					break
				}
			} else {
				log.Error(err)
				failures++
				if failures >= maxFailures {
					state.Exit(player)
					break
				}
				_ = player.WriteError(consts.ErrorsBusy)
				stateID = state.Exit(player)
			}
		}
		if stateID > 0 {
			player.State(stateID)
		}
	}
}

func isExit(signal string) bool {
	signal = strings.ToLower(signal)
	return signal == "exit" || signal == "e"
}

func isLs(signal string) bool {
	signal = strings.ToLower(signal)
	return signal == "ls" || signal == "v"
}
