package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/park285/cheese-chess/internal/chess"
	"github.com/park285/cheese-chess/internal/obslog"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultSaveTTL = 30 * 24 * time.Hour

// RedisStore keeps each slot as a JSON string under chess:save:<slot>.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore wraps an existing client. ttl <= 0 uses the 30 day default.
func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = defaultSaveTTL
	}
	return &RedisStore{rdb: rdb, ttl: ttl}
}

// NewRedisStoreFromURL parses a redis:// URL and pings the server.
func NewRedisStoreFromURL(ctx context.Context, url string, ttl time.Duration) (*RedisStore, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedisStore(rdb, ttl), nil
}

func (s *RedisStore) keySave(slot string) string { return "chess:save:" + slot }

func (s *RedisStore) Save(ctx context.Context, slot string, state *chess.GameState) error {
	key, err := normalizeSlot(slot)
	if err != nil {
		return err
	}
	raw, err := Marshal(state)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, s.keySave(key), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	obslog.L().Info("store_save", zap.String("backend", "redis"), zap.String("slot", key))
	return nil
}

func (s *RedisStore) Load(ctx context.Context, slot string) (*chess.GameState, error) {
	key, err := normalizeSlot(slot)
	if err != nil {
		return nil, err
	}
	raw, err := s.rdb.Get(ctx, s.keySave(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: slot %q", ErrNoState, key)
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return Unmarshal(raw)
}

func (s *RedisStore) Close() error { return s.rdb.Close() }
