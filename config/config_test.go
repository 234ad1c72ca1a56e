package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("missing_file_gives_defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "none.json"))
		require.NoError(t, err)
		require.Equal(t, Default(), cfg)
	})

	t.Run("file_overrides_defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "stud.json")
		body := `{"tcpAddr": ":7000", "store": "sqlite", "autoPlayDelay": "500ms", "roomTtl": 60000}`
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
		cfg, err := Load(path)
		require.NoError(t, err)
		require.Equal(t, ":7000", cfg.TCPAddr)
		require.Equal(t, "sqlite", cfg.Store)
		require.Equal(t, 500*time.Millisecond, cfg.AutoPlayDelay)
		require.Equal(t, time.Minute, cfg.RoomTTL)
		require.Equal(t, Default().HTTPAddr, cfg.HTTPAddr)
		require.Equal(t, Default().SweepInterval, cfg.SweepInterval)
	})

	t.Run("bad_file_is_an_error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "stud.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"autoPlayDelay": "soon"}`), 0o644))
		_, err := Load(path)
		require.Error(t, err)
	})
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"STUD_STORE":          "sqlite",
		"STUD_DSN":            "file:test.db",
		"STUD_AUTOPLAY_DELAY": "2s",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
	cfg := Default()
	require.NoError(t, applyEnv(&cfg, lookup))
	require.Equal(t, "sqlite", cfg.Store)
	require.Equal(t, "file:test.db", cfg.DSN)
	require.Equal(t, 2*time.Second, cfg.AutoPlayDelay)

	env["STUD_ROOM_TTL"] = "forever"
	require.Error(t, applyEnv(&cfg, lookup))
}
