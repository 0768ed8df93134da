package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port        string `yaml:"port"`
	DatabaseURL string `yaml:"database_url"`

	MaxRooms    int `yaml:"max_rooms"`
	MaxSessions int `yaml:"max_sessions"`

	LockTimeoutSecs   int `yaml:"lock_timeout_secs"`
	StaleLockSecs     int `yaml:"stale_lock_secs"`
	RoomTTLMinutes    int `yaml:"room_ttl_minutes"`
	SweepIntervalSecs int `yaml:"sweep_interval_secs"`

	DefaultDifficulty string `yaml:"default_difficulty"`
}

func (c Config) LockTimeout() time.Duration    { return time.Duration(c.LockTimeoutSecs) * time.Second }
func (c Config) StaleLockAfter() time.Duration { return time.Duration(c.StaleLockSecs) * time.Second }
func (c Config) RoomTTL() time.Duration        { return time.Duration(c.RoomTTLMinutes) * time.Minute }
func (c Config) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalSecs) * time.Second
}

// Load reads configuration from an optional YAML file named by CONFIG_FILE,
// then applies environment variable overrides on top.
func Load() Config {
	cfg := Config{
		Port:              "8080",
		MaxRooms:          1000,
		MaxSessions:       10000,
		LockTimeoutSecs:   5,
		StaleLockSecs:     30,
		RoomTTLMinutes:    30,
		SweepIntervalSecs: 300,
		DefaultDifficulty: "medium",
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if data, err := os.ReadFile(path); err == nil {
			yaml.Unmarshal(data, &cfg)
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.MaxRooms = getEnvInt("MAX_ROOMS", cfg.MaxRooms)
	cfg.MaxSessions = getEnvInt("MAX_SESSIONS", cfg.MaxSessions)
	cfg.LockTimeoutSecs = getEnvInt("LOCK_TIMEOUT_SECS", cfg.LockTimeoutSecs)
	cfg.StaleLockSecs = getEnvInt("STALE_LOCK_SECS", cfg.StaleLockSecs)
	cfg.RoomTTLMinutes = getEnvInt("ROOM_TTL_MINUTES", cfg.RoomTTLMinutes)
	cfg.SweepIntervalSecs = getEnvInt("SWEEP_INTERVAL_SECS", cfg.SweepIntervalSecs)
	cfg.DefaultDifficulty = getEnv("DEFAULT_DIFFICULTY", cfg.DefaultDifficulty)
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
