package database

import "sync"

type EventKind string

const (
	RoomCreated    EventKind = "room_created"
	RoomUpdated    EventKind = "room_updated"
	RoomDeleted    EventKind = "room_deleted"
	PlayersChanged EventKind = "players_changed"
)

// Event carries a snapshot of the room for room events. Subscribers are
// expected to re-read seats on PlayersChanged.
type Event struct {
	Kind   EventKind `json:"kind"`
	RoomID string    `json:"roomId"`
	Room   *Room     `json:"room,omitempty"`
}

const feedBuffer = 16

// Feed fans change events out to room and lobby subscribers.
type Feed struct {
	mu     sync.Mutex
	rooms  map[string]map[chan Event]struct{}
	lobby  map[chan Event]struct{}
	owners map[chan Event]string
}

func NewFeed() *Feed {
	return &Feed{
		rooms:  map[string]map[chan Event]struct{}{},
		lobby:  map[chan Event]struct{}{},
		owners: map[chan Event]string{},
	}
}

func (f *Feed) Subscribe(roomID string) chan Event {
	ch := make(chan Event, feedBuffer)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rooms[roomID] == nil {
		f.rooms[roomID] = map[chan Event]struct{}{}
	}
	f.rooms[roomID][ch] = struct{}{}
	f.owners[ch] = roomID
	return ch
}

func (f *Feed) SubscribeLobby() chan Event {
	ch := make(chan Event, feedBuffer)
	f.mu.Lock()
	f.lobby[ch] = struct{}{}
	f.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber and closes its channel. Safe to call twice.
func (f *Feed) Unsubscribe(ch chan Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if roomID, ok := f.owners[ch]; ok {
		delete(f.owners, ch)
		delete(f.rooms[roomID], ch)
		if len(f.rooms[roomID]) == 0 {
			delete(f.rooms, roomID)
		}
		close(ch)
		return
	}
	if _, ok := f.lobby[ch]; ok {
		delete(f.lobby, ch)
		close(ch)
	}
}

// Publish never blocks. A lagging subscriber misses the event and catches
// up on the next one, since every event makes it re-read the room.
func (f *Feed) Publish(e Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.rooms[e.RoomID] {
		send(ch, Event{Kind: e.Kind, RoomID: e.RoomID, Room: e.Room.Clone()})
	}
	for ch := range f.lobby {
		send(ch, Event{Kind: e.Kind, RoomID: e.RoomID, Room: e.Room.Clone()})
	}
}

func send(ch chan Event, e Event) {
	select {
	case ch <- e:
	default:
	}
}

func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.owners {
		close(ch)
	}
	for ch := range f.lobby {
		close(ch)
	}
	f.rooms = map[string]map[chan Event]struct{}{}
	f.lobby = map[chan Event]struct{}{}
	f.owners = map[chan Event]string{}
}
