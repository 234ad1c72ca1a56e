package config

import (
	"fmt"
	"os"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cast"

	"github.com/ihou-ev/10cardstad/consts"
)

type Config struct {
	TCPAddr       string        `json:"tcpAddr"`
	HTTPAddr      string        `json:"httpAddr"`
	Store         string        `json:"store"`
	DSN           string        `json:"dsn"`
	AutoPlayDelay time.Duration `json:"-"`
	SweepInterval time.Duration `json:"-"`
	RoomTTL       time.Duration `json:"-"`
}

// file durations are strings like "3s" or plain milliseconds.
type file struct {
	Config
	AutoPlayDelay interface{} `json:"autoPlayDelay"`
	SweepInterval interface{} `json:"sweepInterval"`
	RoomTTL       interface{} `json:"roomTtl"`
}

func Default() Config {
	return Config{
		TCPAddr:       ":9999",
		HTTPAddr:      ":9998",
		Store:         "memory",
		DSN:           "file:stud.db?_busy_timeout=5000",
		AutoPlayDelay: consts.AutoPlayDelay,
		SweepInterval: consts.SweepInterval,
		RoomTTL:       consts.RoomTTL,
	}
}

// Load reads path over the defaults, then applies STUD_* environment
// overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return cfg, err
		default:
			if err = decode(data, &cfg); err != nil {
				return cfg, fmt.Errorf("config %s: %w", path, err)
			}
		}
	}
	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func decode(data []byte, cfg *Config) error {
	f := file{Config: *cfg}
	if err := jsoniter.Unmarshal(data, &f); err != nil {
		return err
	}
	*cfg = f.Config
	durations := []struct {
		raw interface{}
		dst *time.Duration
	}{
		{f.AutoPlayDelay, &cfg.AutoPlayDelay},
		{f.SweepInterval, &cfg.SweepInterval},
		{f.RoomTTL, &cfg.RoomTTL},
	}
	for _, d := range durations {
		if d.raw == nil {
			continue
		}
		v, err := toDuration(d.raw)
		if err != nil {
			return err
		}
		*d.dst = v
	}
	return nil
}

func toDuration(raw interface{}) (time.Duration, error) {
	if f, ok := raw.(float64); ok {
		return time.Duration(f) * time.Millisecond, nil
	}
	return cast.ToDurationE(raw)
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"STUD_TCP_ADDR":  &cfg.TCPAddr,
		"STUD_HTTP_ADDR": &cfg.HTTPAddr,
		"STUD_STORE":     &cfg.Store,
		"STUD_DSN":       &cfg.DSN,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	durations := map[string]*time.Duration{
		"STUD_AUTOPLAY_DELAY": &cfg.AutoPlayDelay,
		"STUD_SWEEP_INTERVAL": &cfg.SweepInterval,
		"STUD_ROOM_TTL":       &cfg.RoomTTL,
	}
	for key, dst := range durations {
		v, ok := lookup(key)
		if !ok {
			continue
		}
		d, err := cast.ToDurationE(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = d
	}
	return nil
}
