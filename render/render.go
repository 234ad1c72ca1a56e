package render

import (
	"bytes"
	"fmt"
	"strings"

	constx "github.com/ratel-online/core/consts"
	coremodel "github.com/ratel-online/core/model"

	"github.com/ihou-ev/10cardstad/client"
	"github.com/ihou-ev/10cardstad/model"
	"github.com/ihou-ev/10cardstad/stud/card"
	"github.com/ihou-ev/10cardstad/stud/game"
	"github.com/ihou-ev/10cardstad/stud/practice"
)

func Welcome(player *client.Player) error {
	return player.WriteObject(coremodel.Data{
		Code: constx.CodeWelcome,
		Msg:  fmt.Sprintf("Hi %s, Welcome to 10 card stud! \n", player.Name),
	})
}

func HomeOptions(player *client.Player) error {
	buf := bytes.Buffer{}
	buf.WriteString("1.Join\n")
	buf.WriteString("2.New\n")
	buf.WriteString("3.Practice\n")
	return player.WriteObject(coremodel.Options{
		Data: coremodel.Data{
			Code: constx.CodeHomeOptions,
			Msg:  buf.String(),
		},
		Options: []coremodel.Option{
			{ID: 1, Name: "Join"},
			{ID: 2, Name: "New"},
			{ID: 3, Name: "Practice"},
		},
	})
}

func DifficultyOptions(player *client.Player) error {
	buf := bytes.Buffer{}
	buf.WriteString("Please select difficulty\n")
	for _, d := range practice.Difficulties {
		cfg := d.Config()
		buf.WriteString(fmt.Sprintf("%d.%s (%d up, %d down)\n", d, d, cfg.Door, cfg.Hole))
	}
	return player.WriteString(buf.String())
}

func RoomList(player *client.Player, rooms []model.RoomSummary) error {
	return player.WriteObject(coremodel.Data{
		Code: constx.CodeRoomList,
		Msg:  Lobby(rooms),
	})
}

func Lobby(rooms []model.RoomSummary) string {
	buf := bytes.Buffer{}
	buf.WriteString(fmt.Sprintf("%-10s%-10s%-10s%-10s\n", "Code", "Players", "Online", "State"))
	for _, room := range rooms {
		buf.WriteString(fmt.Sprintf("%-10s%-10d%-10d%-10s\n", room.Code, room.Players, room.Online, room.Status))
	}
	return buf.String()
}

func RoomInfo(player *client.Player, room model.Room) error {
	return player.WriteString(Room(room, player.ID))
}

// Room draws the table as viewerID sees it. The viewer's hole cards are
// numbered so they can be picked by index.
func Room(room model.Room, viewerID string) string {
	buf := bytes.Buffer{}
	buf.WriteString(fmt.Sprintf("Room %s  [%s]", room.Code, room.Status))
	if room.Phase != "" {
		buf.WriteString(fmt.Sprintf("  %s round %d", room.Phase, room.Round))
	}
	buf.WriteString("\n")
	finished := room.Phase == game.Finished
	for _, seat := range room.Seats {
		buf.WriteString(seatLine(seat, finished))
	}
	for _, seat := range room.Seats {
		if seat.PlayerID != viewerID || !seat.InGame {
			continue
		}
		if seat.Waiting {
			buf.WriteString("Your turn, reveal one of:\n")
			buf.WriteString(Choices(seat.Hole))
		} else if len(seat.Hole) > 0 && !finished {
			buf.WriteString("Your hole cards: " + paint(seat.Hole) + "\n")
		}
	}
	return buf.String()
}

func seatLine(seat model.Seat, finished bool) string {
	var tags []string
	if seat.Host {
		tags = append(tags, "host")
	}
	if !seat.Online {
		tags = append(tags, "offline")
	}
	if seat.Waiting {
		tags = append(tags, "reveal")
	}
	if seat.Winner {
		tags = append(tags, "WINNER")
	}
	line := fmt.Sprintf("%d. %-12s", seat.Slot+1, seat.Name)
	if len(tags) > 0 {
		line += " (" + strings.Join(tags, ", ") + ")"
	}
	if !seat.InGame {
		return line + "\n"
	}
	line += "\n   " + paint(seat.Door)
	if len(seat.Revealed) > 0 {
		line += " | " + paint(seat.Revealed)
	}
	switch {
	case finished && len(seat.Hole) > 0:
		line += " | " + paint(seat.Hole)
	case !finished && seat.Hidden > 0:
		line += fmt.Sprintf(" | %d down", seat.Hidden)
	}
	line += "  " + seat.Hand
	return line + "\n"
}

// Choices numbers cards from 1.
func Choices(cards []card.Card) string {
	buf := bytes.Buffer{}
	for i, c := range cards {
		buf.WriteString(fmt.Sprintf("%d.%s ", i+1, c.Paint()))
	}
	buf.WriteString("\n")
	return buf.String()
}

func Table(player *client.Player, t *practice.Table) error {
	return player.WriteString(TableText(t))
}

func TableText(t *practice.Table) string {
	s := t.State
	buf := bytes.Buffer{}
	buf.WriteString(fmt.Sprintf("Practice [%s]  %s round %d\n", t.Difficulty, s.Phase, s.CurrentRound))
	finished := s.Phase == game.Finished
	for _, p := range s.Players {
		line := fmt.Sprintf("%d. %-12s", p.ID+1, p.Name)
		if s.IsWinner(p.ID) {
			line += " (WINNER)"
		}
		line += "\n   " + paint(p.DoorCards)
		if len(p.RevealedHoleCards) > 0 {
			line += " | " + paint(p.RevealedHoleCards)
		}
		if finished {
			if len(p.HoleCards) > 0 {
				line += " | " + paint(p.HoleCards)
			}
			line += "  " + s.FinalHand(p.ID).String()
		} else {
			line += fmt.Sprintf(" | %d down  %s", len(p.HoleCards), s.VisibleHand(p.ID))
		}
		buf.WriteString(line + "\n")
	}
	if !finished && t.HumanWaiting() {
		human, _ := s.Player(practice.Human)
		buf.WriteString("Your turn, reveal one of:\n")
		buf.WriteString(Choices(human.HoleCards))
	}
	return buf.String()
}

func paint(cards []card.Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.Paint()
	}
	return strings.Join(parts, " ")
}
