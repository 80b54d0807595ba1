package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/park285/cheese-chess/internal/chess"
)

// DefaultSlot matches the legacy save file name (chess_save.json).
const DefaultSlot = "chess_save"

var ErrInvalidSlot = errors.New("invalid slot name")

// Store persists game states by slot name.
type Store interface {
	Save(ctx context.Context, slot string, state *chess.GameState) error
	// Load returns a fresh state or an error wrapping ErrNoState.
	Load(ctx context.Context, slot string) (*chess.GameState, error)
}

// normalizeSlot trims the slot and falls back to DefaultSlot. Slot names end
// up in file names and keys, so path separators are rejected.
func normalizeSlot(slot string) (string, error) {
	s := strings.TrimSpace(slot)
	if s == "" {
		return DefaultSlot, nil
	}
	if strings.ContainsAny(s, `/\`) || s == "." || s == ".." {
		return "", fmt.Errorf("%w %q", ErrInvalidSlot, slot)
	}
	return s, nil
}
