package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/park285/cheese-chess/internal/chess"
	"github.com/park285/cheese-chess/internal/obslog"
	"go.uber.org/zap"
)

const createSavesTable = `CREATE TABLE IF NOT EXISTS saves (
	slot TEXT PRIMARY KEY,
	record TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`

// SQLiteStore keeps one row per slot in a local database file.
type SQLiteStore struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// sqlite allows one writer; keep the pool small.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(createSavesTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create saves table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Save(ctx context.Context, slot string, state *chess.GameState) error {
	key, err := normalizeSlot(slot)
	if err != nil {
		return err
	}
	raw, err := Marshal(state)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO saves (slot, record, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(slot) DO UPDATE SET record = excluded.record, updated_at = excluded.updated_at`,
		key, string(raw), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert save: %w", err)
	}
	obslog.L().Info("store_save", zap.String("backend", "sqlite"), zap.String("slot", key))
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context, slot string) (*chess.GameState, error) {
	key, err := normalizeSlot(slot)
	if err != nil {
		return nil, err
	}
	var payload string
	err = s.db.QueryRowContext(ctx, `SELECT record FROM saves WHERE slot = ?`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: slot %q", ErrNoState, key)
	}
	if err != nil {
		return nil, fmt.Errorf("select save: %w", err)
	}
	return Unmarshal([]byte(payload))
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
