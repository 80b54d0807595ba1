package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/park285/cheese-chess/internal/chess"
)

// MemoryStore is a process-local Store used in tests and when no backend is configured.
type MemoryStore struct {
	mu    sync.RWMutex
	slots map[string]*chess.GameState
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{slots: make(map[string]*chess.GameState)}
}

func (m *MemoryStore) Save(ctx context.Context, slot string, state *chess.GameState) error {
	key, err := normalizeSlot(slot)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.slots[key] = state.Clone()
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Load(ctx context.Context, slot string) (*chess.GameState, error) {
	key, err := normalizeSlot(slot)
	if err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.slots[key]
	if !ok {
		return nil, fmt.Errorf("%w: slot %q", ErrNoState, key)
	}
	return s.Clone(), nil
}
