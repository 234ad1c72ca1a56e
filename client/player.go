package client

import (
	"context"
	"fmt"
	"strconv"
	stringx "strings"
	"sync"
	"time"

	"github.com/ratel-online/core/log"
	"github.com/ratel-online/core/model"
	"github.com/ratel-online/core/protocol"
	"github.com/ratel-online/core/util/json"
	"github.com/spf13/cast"

	"github.com/ihou-ev/10cardstad/consts"
)

// Conn is the part of a ratel connection a player needs.
type Conn interface {
	Read() (*protocol.Packet, error)
	Write(packet protocol.Packet) error
	Close() error
}

// Leaver is told when a seated player's connection drops.
type Leaver interface {
	Disconnect(ctx context.Context, roomID, playerID string) error
}

type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	conn   Conn
	data   chan *protocol.Packet
	state  consts.StateID
	mu     sync.Mutex
	read   bool
	online bool
	roomID string
}

func Connected(conn Conn, info *model.AuthInfo) *Player {
	p := &Player{
		ID:   strconv.FormatInt(info.ID, 10),
		Name: info.Name,
	}
	p.Conn(conn)
	return p
}

func (p *Player) Conn(conn Conn) {
	p.conn = conn
	p.data = make(chan *protocol.Packet, 8)
	p.online = true
}

func (p *Player) RoomID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.roomID
}

func (p *Player) SetRoom(roomID string) {
	p.mu.Lock()
	p.roomID = roomID
	p.mu.Unlock()
}

func (p *Player) Online() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.online
}

func (p *Player) Write(bytes []byte) error {
	return p.conn.Write(protocol.Packet{
		Body: bytes,
	})
}

func (p *Player) WriteString(data string) error {
	return p.conn.Write(protocol.Packet{
		Body: []byte(data),
	})
}

func (p *Player) WriteObject(data interface{}) error {
	return p.conn.Write(protocol.Packet{
		Body: json.Marshal(data),
	})
}

func (p *Player) WriteError(err error) error {
	if err == consts.ErrorsExist {
		return err
	}
	_ = p.conn.Write(protocol.Packet{
		Body: []byte(err.Error() + "\n"),
	})
	return err
}

// Offline closes the connection and releases the seat, if any.
func (p *Player) Offline(leaver Leaver) {
	p.mu.Lock()
	if !p.online {
		p.mu.Unlock()
		return
	}
	p.online = false
	roomID := p.roomID
	close(p.data)
	p.mu.Unlock()
	_ = p.conn.Close()
	if roomID != "" {
		if err := leaver.Disconnect(context.Background(), roomID, p.ID); err != nil {
			log.Errorf("player %s offline from room %s: %v\n", p, roomID, err)
		}
	}
}

// Listening forwards packets to whoever is waiting on an answer. Packets
// that arrive outside of a transaction are dropped.
func (p *Player) Listening() error {
	for {
		pack, err := p.conn.Read()
		if err != nil {
			log.Error(err)
			return err
		}
		p.mu.Lock()
		if p.read && p.online {
			select {
			case p.data <- pack:
			default:
			}
		}
		p.mu.Unlock()
	}
}

func (p *Player) AskForPacket(timeout ...time.Duration) (*protocol.Packet, error) {
	p.StartTransaction()
	defer p.StopTransaction()
	return p.askForPacket(timeout...)
}

func (p *Player) askForPacket(timeout ...time.Duration) (*protocol.Packet, error) {
	var packet *protocol.Packet
	if len(timeout) > 0 {
		select {
		case packet = <-p.data:
		case <-time.After(timeout[0]):
			return nil, consts.ErrorsTimeout
		}
	} else {
		packet = <-p.data
	}
	if packet == nil {
		return nil, consts.ErrorsChanClosed
	}
	single := stringx.ToLower(stringx.TrimSpace(packet.String()))
	if single == "exit" || single == "e" {
		return nil, consts.ErrorsExist
	}
	return packet, nil
}

func (p *Player) AskForInt(timeout ...time.Duration) (int, error) {
	packet, err := p.AskForPacket(timeout...)
	if err != nil {
		return 0, err
	}
	v, err := cast.ToIntE(stringx.TrimSpace(packet.String()))
	if err != nil {
		return 0, consts.ErrorsInputInvalid
	}
	return v, nil
}

func (p *Player) AskForString(timeout ...time.Duration) (string, error) {
	packet, err := p.AskForPacket(timeout...)
	if err != nil {
		return "", err
	}
	return stringx.TrimSpace(packet.String()), nil
}

func (p *Player) AskForStringWithoutTransaction(timeout ...time.Duration) (string, error) {
	packet, err := p.askForPacket(timeout...)
	if err != nil {
		return "", err
	}
	return stringx.TrimSpace(packet.String()), nil
}

func (p *Player) StartTransaction() {
	p.mu.Lock()
	p.read = true
	p.mu.Unlock()
	_ = p.WriteString(consts.IsStart)
}

func (p *Player) StopTransaction() {
	p.mu.Lock()
	p.read = false
	p.mu.Unlock()
	_ = p.WriteString(consts.IsStop)
}

func (p *Player) State(s consts.StateID) {
	p.state = s
}

func (p *Player) GetState() consts.StateID {
	return p.state
}

func (p *Player) String() string {
	return fmt.Sprintf("%s[%s]", p.Name, p.ID)
}
