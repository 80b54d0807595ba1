package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/park285/cheese-chess/internal/chess"
	"github.com/park285/cheese-chess/internal/obslog"
	"go.uber.org/zap"
)

// FileStore keeps one JSON file per slot under dir.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	if strings.TrimSpace(dir) == "" {
		dir = "."
	}
	return &FileStore{dir: dir}
}

func (f *FileStore) path(slot string) (string, error) {
	s, err := normalizeSlot(slot)
	if err != nil {
		return "", err
	}
	return filepath.Join(f.dir, s+".json"), nil
}

func (f *FileStore) Save(ctx context.Context, slot string, state *chess.GameState) error {
	p, err := f.path(slot)
	if err != nil {
		return err
	}
	raw, err := Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return fmt.Errorf("create save dir: %w", err)
	}
	// write-then-rename so a crash never leaves a half-written save behind
	tmp, err := os.CreateTemp(f.dir, ".save-*")
	if err != nil {
		return fmt.Errorf("create temp save: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write save: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close save: %w", err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename save: %w", err)
	}
	obslog.L().Info("store_save", zap.String("backend", "file"), zap.String("path", p))
	return nil
}

func (f *FileStore) Load(ctx context.Context, slot string) (*chess.GameState, error) {
	p, err := f.path(slot)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		obslog.L().Info("store_load_miss", zap.String("backend", "file"), zap.String("path", p))
		return nil, fmt.Errorf("%w: %s not found", ErrNoState, p)
	}
	if err != nil {
		return nil, fmt.Errorf("read save: %w", err)
	}
	return Unmarshal(raw)
}
