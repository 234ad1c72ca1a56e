package state

import (
	"context"
	"errors"
	"io"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/ratel-online/core/model"
	"github.com/ratel-online/core/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ihou-ev/10cardstad/client"
	"github.com/ihou-ev/10cardstad/consts"
	"github.com/ihou-ev/10cardstad/database"
	"github.com/ihou-ev/10cardstad/service"
)

func init() {
	color.NoColor = true
}

// scriptConn feeds lines to a player only while a transaction is open, the
// way a ratel client answers prompts.
type scriptConn struct {
	mu     sync.Mutex
	in     chan string
	out    strings.Builder
	open   bool
	starts int
	seen   int
	closed bool
}

func newScriptConn() *scriptConn {
	return &scriptConn{in: make(chan string, 8)}
}

func (c *scriptConn) Read() (*protocol.Packet, error) {
	s, ok := <-c.in
	if !ok {
		return nil, io.EOF
	}
	return &protocol.Packet{Body: []byte(s)}, nil
}

func (c *scriptConn) Write(p protocol.Packet) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch string(p.Body) {
	case consts.IsStart:
		c.open = true
		c.starts++
	case consts.IsStop:
		c.open = false
	default:
		c.out.Write(p.Body)
	}
	return nil
}

func (c *scriptConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.in)
	}
	return nil
}

func (c *scriptConn) output() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.out.String()
}

// say waits for a prompt newer than the previous answer, unless keep is set
// and the same prompt is still open.
func (c *scriptConn) say(t *testing.T, line string, keep bool) {
	t.Helper()
	require.Eventually(t, func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.open && (keep || c.starts > c.seen)
	}, 2*time.Second, 5*time.Millisecond)
	c.mu.Lock()
	c.seen = c.starts
	c.mu.Unlock()
	time.Sleep(5 * time.Millisecond)
	c.in <- line
}

func newMachine(t *testing.T) (*Machine, *service.Service) {
	t.Helper()
	store := database.NewMemoryStore()
	svc := service.New(store, service.Options{Rand: rand.New(rand.NewSource(1)), AutoPlayDelay: 10 * time.Millisecond})
	auto := service.NewAutoplayer(svc)
	t.Cleanup(func() {
		auto.Close()
		_ = store.Close()
	})
	return New(svc, auto, rand.New(rand.NewSource(2))), svc
}

func connect(m *Machine, id int64, name string) (*client.Player, *scriptConn) {
	conn := newScriptConn()
	player := client.Connected(conn, &model.AuthInfo{ID: id, Name: name})
	go func() {
		_ = player.Listening()
	}()
	go m.Run(player)
	return player, conn
}

// flaky fails with errs in order, then reports a closed connection.
type flaky struct {
	errs  []error
	calls int
	exits int
}

func (f *flaky) Next(*client.Player) (consts.StateID, error) {
	f.calls++
	if len(f.errs) == 0 {
		return 0, consts.ErrorsChanClosed
	}
	err := f.errs[0]
	f.errs = f.errs[1:]
	return 0, err
}

func (f *flaky) Exit(*client.Player) consts.StateID {
	f.exits++
	return consts.StateHome
}

func TestRunRecoversFromUnexplainedErrors(t *testing.T) {
	run := func(t *testing.T, f *flaky) (*client.Player, *scriptConn) {
		m, _ := newMachine(t)
		m.register(consts.StateWelcome, f)
		m.register(consts.StateHome, f)
		conn := newScriptConn()
		player := client.Connected(conn, &model.AuthInfo{ID: 7, Name: "eve"})
		m.Run(player)
		return player, conn
	}

	t.Run("player_is_sent_home", func(t *testing.T) {
		f := &flaky{errs: []error{errors.New("database: disk full")}}
		player, conn := run(t, f)
		require.Equal(t, 2, f.calls)
		require.Equal(t, 2, f.exits)
		require.Equal(t, consts.StateHome, player.GetState())
		require.Contains(t, conn.output(), consts.ErrorsBusy.Error())
	})

	t.Run("consts_errors_reset_the_count", func(t *testing.T) {
		boom := errors.New("boom")
		f := &flaky{errs: []error{boom, boom, consts.ErrorsInputInvalid, boom, boom}}
		run(t, f)
		require.Equal(t, 6, f.calls)
	})

	t.Run("repeated_failures_end_the_loop", func(t *testing.T) {
		f := &flaky{errs: []error{io.ErrClosedPipe, io.ErrClosedPipe, io.ErrClosedPipe, io.ErrClosedPipe}}
		run(t, f)
		require.Equal(t, maxFailures, f.calls)
		require.Len(t, f.errs, 1)
	})
}

func TestRoomFlow(t *testing.T) {
	m, svc := newMachine(t)
	ctx := context.Background()

	host, hostConn := connect(m, 1, "ann")
	defer host.Offline(svc)
	hostConn.say(t, "2", false)

	var code, roomID string
	require.Eventually(t, func() bool {
		rooms, err := svc.Rooms(ctx)
		if err != nil || len(rooms) != 1 {
			return false
		}
		code, roomID = rooms[0].Room.Code, rooms[0].Room.ID
		return true
	}, 2*time.Second, 5*time.Millisecond)
	assert.Contains(t, hostConn.output(), code)

	guest, guestConn := connect(m, 2, "bob")
	defer guest.Offline(svc)
	guestConn.say(t, "1", false)
	guestConn.say(t, strings.ToLower(code), false)
	require.Eventually(t, func() bool {
		snap, err := svc.Snapshot(ctx, roomID)
		return err == nil && len(snap.Players) == 2
	}, 2*time.Second, 5*time.Millisecond)

	hostConn.say(t, "start", true)
	require.Eventually(t, func() bool {
		snap, err := svc.Snapshot(ctx, roomID)
		return err == nil && snap.Room.Status == database.StatusPlaying
	}, 2*time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool {
		return strings.Contains(guestConn.output(), "playing")
	}, 2*time.Second, 5*time.Millisecond)
}

func TestPracticeFlow(t *testing.T) {
	m, svc := newMachine(t)

	player, conn := connect(m, 7, "solo")
	defer player.Offline(svc)
	conn.say(t, "3", false)
	conn.say(t, "4", false)
	conn.say(t, "2", false)
	require.Eventually(t, func() bool {
		return strings.Contains(conn.output(), "play again")
	}, 2*time.Second, 5*time.Millisecond)
	assert.Contains(t, conn.output(), "WINNER")
	assert.Contains(t, conn.output(), "Bot 2")

	conn.say(t, "home", false)
	require.Eventually(t, func() bool {
		return strings.Count(conn.output(), "3.Practice") == 2
	}, 2*time.Second, 5*time.Millisecond)
}

func TestOfflineEndsSession(t *testing.T) {
	m, svc := newMachine(t)
	player, conn := connect(m, 3, "cy")
	conn.say(t, "2", false)
	require.Eventually(t, func() bool {
		rooms, _ := svc.Rooms(context.Background())
		return len(rooms) == 1
	}, 2*time.Second, 5*time.Millisecond)

	player.Offline(svc)
	require.Eventually(t, func() bool {
		rooms, _ := svc.Rooms(context.Background())
		return len(rooms) == 0
	}, 2*time.Second, 5*time.Millisecond)
}

func TestDrain(t *testing.T) {
	ch := make(chan database.Event, 4)
	changed, gone := drain(ch)
	assert.False(t, changed)
	assert.False(t, gone)

	ch <- database.Event{Kind: database.PlayersChanged}
	ch <- database.Event{Kind: database.RoomUpdated}
	changed, gone = drain(ch)
	assert.True(t, changed)
	assert.False(t, gone)

	ch <- database.Event{Kind: database.RoomDeleted}
	_, gone = drain(ch)
	assert.True(t, gone)

	close(ch)
	_, gone = drain(ch)
	assert.True(t, gone)
}

func TestSignals(t *testing.T) {
	assert.True(t, isExit("EXIT"))
	assert.True(t, isExit("e"))
	assert.False(t, isExit("exits"))
	assert.True(t, isLs("ls"))
	assert.True(t, isLs("V"))
	assert.False(t, isLs("list"))
}
