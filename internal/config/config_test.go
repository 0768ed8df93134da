package config

import (
	"os"
	"path/filepath"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CONFIG_FILE", "PORT", "DATABASE_URL", "MAX_ROOMS", "MAX_SESSIONS",
		"LOCK_TIMEOUT_SECS", "STALE_LOCK_SECS", "ROOM_TTL_MINUTES",
		"SWEEP_INTERVAL_SECS", "DEFAULT_DIFFICULTY",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want %q", cfg.Port, "8080")
	}
	if cfg.DatabaseURL != "" {
		t.Errorf("DatabaseURL = %q, want empty", cfg.DatabaseURL)
	}
	if cfg.MaxRooms != 1000 {
		t.Errorf("MaxRooms = %d, want %d", cfg.MaxRooms, 1000)
	}
	if cfg.MaxSessions != 10000 {
		t.Errorf("MaxSessions = %d, want %d", cfg.MaxSessions, 10000)
	}
	if cfg.LockTimeoutSecs != 5 {
		t.Errorf("LockTimeoutSecs = %d, want %d", cfg.LockTimeoutSecs, 5)
	}
	if cfg.StaleLockSecs != 30 {
		t.Errorf("StaleLockSecs = %d, want %d", cfg.StaleLockSecs, 30)
	}
	if cfg.DefaultDifficulty != "medium" {
		t.Errorf("DefaultDifficulty = %q, want %q", cfg.DefaultDifficulty, "medium")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "3000")
	t.Setenv("MAX_ROOMS", "5")
	t.Setenv("DEFAULT_DIFFICULTY", "hard")

	cfg := Load()

	if cfg.Port != "3000" {
		t.Errorf("Port = %q, want %q", cfg.Port, "3000")
	}
	if cfg.MaxRooms != 5 {
		t.Errorf("MaxRooms = %d, want %d", cfg.MaxRooms, 5)
	}
	if cfg.DefaultDifficulty != "hard" {
		t.Errorf("DefaultDifficulty = %q, want %q", cfg.DefaultDifficulty, "hard")
	}
}

func TestLoad_InvalidInt(t *testing.T) {
	clearEnv(t)
	t.Setenv("MAX_ROOMS", "abc")

	cfg := Load()

	if cfg.MaxRooms != 1000 {
		t.Errorf("MaxRooms = %d, want %d (fallback)", cfg.MaxRooms, 1000)
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("port: \"9090\"\nmax_rooms: 42\nroom_ttl_minutes: 10\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want %q", cfg.Port, "9090")
	}
	if cfg.MaxRooms != 42 {
		t.Errorf("MaxRooms = %d, want %d", cfg.MaxRooms, 42)
	}
	if cfg.RoomTTLMinutes != 10 {
		t.Errorf("RoomTTLMinutes = %d, want %d", cfg.RoomTTLMinutes, 10)
	}
}

func TestLoad_EnvBeatsFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("port: \"9090\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "7070")

	cfg := Load()

	if cfg.Port != "7070" {
		t.Errorf("Port = %q, want %q (env should win)", cfg.Port, "7070")
	}
}
