package consts

import (
	"time"

	"github.com/ratel-online/core/consts"
)

type StateID int

const (
	_ StateID = iota
	StateWelcome
	StateHome
	StateJoin
	StateCreate
	StateWaiting
	StateGame
	StatePractice
)

const (
	IsStart = consts.IsStart
	IsStop  = consts.IsStop

	MinPlayers = 2
	MaxPlayers = 5

	RoomCodeLength   = 6
	RoomCodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

	AutoPlayDelay = 3 * time.Second
	RoomTTL       = 24 * time.Hour
	SweepInterval = time.Minute
	RevealTimeout = 60 * time.Second
	WaitingPoll   = time.Second
)

type Error struct {
	Code int
	Msg  string
	Exit bool
}

func (e Error) Error() string {
	return e.Msg
}

func NewErr(code int, exit bool, msg string) Error {
	return Error{Code: code, Exit: exit, Msg: msg}
}

var (
	ErrorsExist                  = NewErr(1, true, "Exist. ")
	ErrorsChanClosed             = NewErr(1, true, "Chan closed. ")
	ErrorsTimeout                = NewErr(1, false, "Timeout. ")
	ErrorsInputInvalid           = NewErr(1, false, "Input invalid. ")
	ErrorsAuthFail               = NewErr(1, true, "Auth fail. ")
	ErrorsRoomInvalid            = NewErr(1, true, "Room invalid. ")
	ErrorsRoomPlayersIsFull      = NewErr(1, false, "Room players is full. ")
	ErrorsJoinFailForRoomRunning = NewErr(1, false, "Join fail, room is running. ")
	ErrorsGamePlayersInvalid     = NewErr(1, false, "Game players invalid. ")
	ErrorsNotHost                = NewErr(1, false, "Only the host can do that. ")
	ErrorsGameNotStarted         = NewErr(1, false, "Game not started. ")
	ErrorsGameNotFinished        = NewErr(1, false, "Game not finished. ")
	ErrorsNotYourTurn            = NewErr(1, false, "Not your turn to reveal. ")
	ErrorsCardInvalid            = NewErr(1, false, "Card invalid. ")
	ErrorsNotSeated              = NewErr(1, true, "You are not seated in this room. ")
	ErrorsBusy                   = NewErr(1, false, "Room is busy, try again. ")

	RoomStates = map[string]string{
		"waiting":  "Waiting",
		"playing":  "Playing",
		"finished": "Finished",
	}
)
