package internal

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
)

const (
	BadgerDriver = "badger"
	RedisDriver  = "redis"
)

type Config struct {
	Host     string `env:"HOST,default=0.0.0.0"`
	Port     int    `env:"PORT,default=5000"`
	LogLevel string `env:"LOG_LEVEL,default=INFO"`

	StorageDriver  string `env:"STORAGE_DRIVER,default=badger"`
	BadgerFilepath string `env:"BADGER_FILEPATH,default=./data/chat-room"`
	RedisAddr      string `env:"REDIS_ADDR,default=localhost:6379"`
	RedisPassword  string `env:"REDIS_PASSWORD"`
	RedisDB        int    `env:"REDIS_DB,default=0"`
	RedisKeyPrefix string `env:"REDIS_KEY_PREFIX,default=chat-room"`

	SweepInterval       time.Duration `env:"SWEEP_INTERVAL,default=15s"`
	InactivityThreshold time.Duration `env:"INACTIVITY_THRESHOLD,default=10s"`
	RestartInterval     time.Duration `env:"RESTART_INTERVAL,default=1s"`
	ReportInterval      time.Duration `env:"REPORT_INTERVAL,default=1m"`
	MessageRetention    *int          `env:"MESSAGE_RETENTION"`
	RoomTimezone        string        `env:"ROOM_TIMEZONE,default=Local"`

	CensoredWords   string `env:"CENSORED_WORDS"`
	CensorCharacter string `env:"CENSOR_CHARACTER,default=*"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=5s"`
}

// Validate rejects combinations go-env cannot check on its own.
func (c Config) Validate() error {
	if !lo.Contains([]string{BadgerDriver, RedisDriver}, c.StorageDriver) {
		return fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q", BadgerDriver, RedisDriver, c.StorageDriver)
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("SWEEP_INTERVAL must be positive, got %s", c.SweepInterval)
	}
	if c.InactivityThreshold <= 0 {
		return fmt.Errorf("INACTIVITY_THRESHOLD must be positive, got %s", c.InactivityThreshold)
	}
	if c.MessageRetention != nil && *c.MessageRetention <= 0 {
		return fmt.Errorf("MESSAGE_RETENTION must be positive when set, got %d", *c.MessageRetention)
	}
	return nil
}

// CensoredWordList splits CENSORED_WORDS on commas, blanks are dropped.
func (c Config) CensoredWordList() []string {
	return lo.Compact(lo.Map(strings.Split(c.CensoredWords, ","), func(word string, _ int) string {
		return strings.TrimSpace(word)
	}))
}

func (c Config) Location() (*time.Location, error) {
	location, err := time.LoadLocation(c.RoomTimezone)
	if err != nil {
		return nil, fmt.Errorf("ROOM_TIMEZONE: %w", err)
	}
	return location, nil
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CENSOR_CHARACTER must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
