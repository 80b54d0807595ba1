package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends accepted by CHESS_STORE.
const (
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

type AppConfig struct {
	HTTPAddr       string
	RequestTimeout time.Duration

	StoreKind   string
	SaveDir     string
	DefaultSlot string
	RedisURL    string
	SaveTTL     time.Duration
	SQLitePath  string

	DatabaseURL string

	StartFEN    string
	MessagesDir string
	SquareSize  int

	ServerURL string
}

// Load reads an optional .env file and then the process environment.
func Load() (*AppConfig, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds the config from the process environment only.
func FromEnv() (*AppConfig, error) {
	cfg := &AppConfig{
		HTTPAddr:       ":8080",
		RequestTimeout: 10 * time.Second,
		StoreKind:      StoreFile,
		SaveDir:        ".",
		DefaultSlot:    "chess_save",
		SaveTTL:        30 * 24 * time.Hour,
		SQLitePath:     "chess.db",
		SquareSize:     80,
		ServerURL:      "http://localhost:8080",
	}

	if v := strings.TrimSpace(os.Getenv("HTTP_ADDR")); v != "" {
		cfg.HTTPAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("HTTP_REQUEST_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("HTTP_REQUEST_TIMEOUT: invalid duration %q", v)
		}
		cfg.RequestTimeout = d
	}

	if v := strings.TrimSpace(os.Getenv("CHESS_STORE")); v != "" {
		cfg.StoreKind = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv("CHESS_SAVE_DIR")); v != "" {
		cfg.SaveDir = v
	}
	if v := strings.TrimSpace(os.Getenv("CHESS_DEFAULT_SLOT")); v != "" {
		cfg.DefaultSlot = v
	}
	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	if v := strings.TrimSpace(os.Getenv("CHESS_SAVE_TTL")); v != "" {
		ttl, err := parseTTL(v)
		if err != nil {
			return nil, fmt.Errorf("CHESS_SAVE_TTL: %w", err)
		}
		cfg.SaveTTL = ttl
	}
	if v := strings.TrimSpace(os.Getenv("SQLITE_PATH")); v != "" {
		cfg.SQLitePath = v
	}

	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))

	cfg.StartFEN = strings.TrimSpace(os.Getenv("CHESS_START_FEN"))
	cfg.MessagesDir = strings.TrimSpace(os.Getenv("CHESS_MESSAGES_DIR"))
	if v := strings.TrimSpace(os.Getenv("CHESS_SQUARE_SIZE")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SquareSize = n
		}
	}

	if v := strings.TrimSpace(os.Getenv("CHESS_SERVER_URL")); v != "" {
		cfg.ServerURL = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field requirements.
func (c *AppConfig) Validate() error {
	switch c.StoreKind {
	case StoreFile:
		if c.SaveDir == "" {
			return errors.New("CHESS_SAVE_DIR is required for the file store")
		}
	case StoreRedis:
		if c.RedisURL == "" {
			return errors.New("REDIS_URL is required when CHESS_STORE=redis")
		}
	case StoreSQLite:
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required when CHESS_STORE=sqlite")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("CHESS_STORE: unknown backend %q", c.StoreKind)
	}
	if strings.ContainsAny(c.DefaultSlot, `/\`) {
		return fmt.Errorf("CHESS_DEFAULT_SLOT: invalid slot %q", c.DefaultSlot)
	}
	return nil
}

// parseTTL accepts seconds ("3600") or a Go duration ("72h").
func parseTTL(v string) (time.Duration, error) {
	if n, err := strconv.Atoi(v); err == nil {
		if n <= 0 {
			return 0, fmt.Errorf("must be positive, got %d", n)
		}
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", v)
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive, got %s", d)
	}
	return d, nil
}
