package database

import (
	"context"
	"sync"

	"github.com/awesome-cap/hashmap"
)

// MemoryStore keeps encoded rooms in hashmaps. The hashmaps are not safe
// for reads racing writes, so every access goes through mu.
type MemoryStore struct {
	*Feed

	mu    sync.RWMutex
	rooms *hashmap.HashMap // id -> []byte
	codes *hashmap.HashMap // code -> id
	seats *hashmap.HashMap // room id -> []RoomPlayer
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		Feed:  NewFeed(),
		rooms: hashmap.New(),
		codes: hashmap.New(),
		seats: hashmap.New(),
	}
}

func (s *MemoryStore) load(id string) (*Room, error) {
	v, ok := s.rooms.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	room := &Room{}
	if err := json.Unmarshal(v.([]byte), room); err != nil {
		return nil, err
	}
	return room, nil
}

func (s *MemoryStore) save(room *Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return err
	}
	s.rooms.Set(room.ID, data)
	return nil
}

func (s *MemoryStore) seatList(roomID string) []RoomPlayer {
	if v, ok := s.seats.Get(roomID); ok {
		return v.([]RoomPlayer)
	}
	return nil
}

func (s *MemoryStore) CreateRoom(_ context.Context, room *Room) error {
	s.mu.Lock()
	if _, ok := s.rooms.Get(room.ID); ok {
		s.mu.Unlock()
		return ErrConflict
	}
	if _, ok := s.codes.Get(room.Code); ok {
		s.mu.Unlock()
		return ErrCodeTaken
	}
	room.Version = 1
	if err := s.save(room); err != nil {
		s.mu.Unlock()
		return err
	}
	s.codes.Set(room.Code, room.ID)
	s.seats.Set(room.ID, []RoomPlayer{})
	s.mu.Unlock()
	s.Publish(Event{Kind: RoomCreated, RoomID: room.ID, Room: room})
	return nil
}

func (s *MemoryStore) GetRoom(_ context.Context, id string) (*Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.load(id)
}

func (s *MemoryStore) GetRoomByCode(_ context.Context, code string) (*Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.codes.Get(code)
	if !ok {
		return nil, ErrNotFound
	}
	return s.load(v.(string))
}

func (s *MemoryStore) ListRooms(_ context.Context) ([]*Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var err error
	list := make([]*Room, 0)
	s.rooms.Foreach(func(e *hashmap.Entry) {
		room := &Room{}
		if uerr := json.Unmarshal(e.Value().([]byte), room); uerr != nil {
			err = uerr
			return
		}
		list = append(list, room)
	})
	if err != nil {
		return nil, err
	}
	sortRooms(list)
	return list, nil
}

func (s *MemoryStore) UpdateRoom(_ context.Context, room *Room) error {
	s.mu.Lock()
	stored, err := s.load(room.ID)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if stored.Version != room.Version {
		s.mu.Unlock()
		return ErrConflict
	}
	if stored.Code != room.Code {
		s.codes.Del(stored.Code)
		s.codes.Set(room.Code, room.ID)
	}
	room.Version++
	if err = s.save(room); err != nil {
		room.Version--
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()
	s.Publish(Event{Kind: RoomUpdated, RoomID: room.ID, Room: room})
	return nil
}

func (s *MemoryStore) DeleteRoom(_ context.Context, id string) error {
	s.mu.Lock()
	stored, err := s.load(id)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.rooms.Del(id)
	s.codes.Del(stored.Code)
	s.seats.Del(id)
	s.mu.Unlock()
	s.Publish(Event{Kind: RoomDeleted, RoomID: id})
	return nil
}

func (s *MemoryStore) AddRoomPlayer(_ context.Context, p *RoomPlayer) error {
	s.mu.Lock()
	if _, ok := s.rooms.Get(p.RoomID); !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	seats := s.seatList(p.RoomID)
	for _, seat := range seats {
		if seat.PlayerID == p.PlayerID {
			s.mu.Unlock()
			return ErrAlreadySeated
		}
		if seat.Slot == p.Slot {
			s.mu.Unlock()
			return ErrSlotTaken
		}
	}
	s.seats.Set(p.RoomID, append(append([]RoomPlayer{}, seats...), *p))
	s.mu.Unlock()
	s.Publish(Event{Kind: PlayersChanged, RoomID: p.RoomID})
	return nil
}

func (s *MemoryStore) ListRoomPlayers(_ context.Context, roomID string) ([]*RoomPlayer, error) {
	s.mu.RLock()
	seats := s.seatList(roomID)
	s.mu.RUnlock()
	list := make([]*RoomPlayer, 0, len(seats))
	for i := range seats {
		seat := seats[i]
		list = append(list, &seat)
	}
	sortBySlot(list)
	return list, nil
}

func (s *MemoryStore) UpdateRoomPlayer(_ context.Context, p *RoomPlayer) error {
	s.mu.Lock()
	seats := s.seatList(p.RoomID)
	at := -1
	for i, seat := range seats {
		if seat.PlayerID == p.PlayerID {
			at = i
		} else if seat.Slot == p.Slot {
			s.mu.Unlock()
			return ErrSlotTaken
		}
	}
	if at < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}
	next := append([]RoomPlayer{}, seats...)
	next[at] = *p
	s.seats.Set(p.RoomID, next)
	s.mu.Unlock()
	s.Publish(Event{Kind: PlayersChanged, RoomID: p.RoomID})
	return nil
}

func (s *MemoryStore) DeleteRoomPlayer(_ context.Context, roomID, playerID string) error {
	s.mu.Lock()
	seats := s.seatList(roomID)
	next := make([]RoomPlayer, 0, len(seats))
	for _, seat := range seats {
		if seat.PlayerID != playerID {
			next = append(next, seat)
		}
	}
	if len(next) == len(seats) {
		s.mu.Unlock()
		return ErrNotFound
	}
	s.seats.Set(roomID, next)
	s.mu.Unlock()
	s.Publish(Event{Kind: PlayersChanged, RoomID: roomID})
	return nil
}

func (s *MemoryStore) Close() error {
	s.Feed.Close()
	return nil
}
