package service

import (
	"context"
	"time"

	"github.com/ratel-online/core/log"
)

// Sweep removes rooms idle past the TTL and rooms nobody is online in.
// It returns how many rooms were removed.
func (s *Service) Sweep(ctx context.Context) (int, error) {
	rooms, err := s.store.ListRooms(ctx)
	if err != nil {
		return 0, err
	}
	now := s.opts.Now()
	removed := 0
	for _, room := range rooms {
		if room.Expired(now, s.opts.RoomTTL) {
			if err = s.store.DeleteRoom(ctx, room.ID); err == nil {
				log.Infof("room %s is timeout %v, removed.\n", room.ID, s.opts.RoomTTL)
				removed++
			}
			continue
		}
		reclaimed, err := s.reclaim(ctx, room.ID)
		if err != nil {
			log.Error(err)
			continue
		}
		if reclaimed {
			removed++
		}
	}
	return removed, nil
}

// RunSweeper sweeps every interval until ctx is done.
func (s *Service) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				log.Error(err)
			}
		}
	}
}
