package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/park285/cheese-chess/internal/chess"
)

// ErrNoState is returned when a slot has nothing loadable: missing file or
// key, or a malformed record. Callers keep their current state.
var ErrNoState = errors.New("no saved game state")

// Record is the fixed persistence format: an 8x8 grid of piece codes and
// the side to move as "w"/"b". There is no version field.
type Record struct {
	Board       [][]string `json:"board"`
	CurrentTurn string     `json:"current_turn"`
}

// Encode converts a game state into its persisted record.
func Encode(s *chess.GameState) *Record {
	rec := &Record{Board: make([][]string, chess.Size), CurrentTurn: s.Turn.Code()}
	for row := 0; row < chess.Size; row++ {
		rec.Board[row] = make([]string, chess.Size)
		for col := 0; col < chess.Size; col++ {
			rec.Board[row][col] = s.Board[row][col].Code()
		}
	}
	return rec
}

// Decode validates a record and builds a fresh game state from it.
func Decode(rec *Record) (*chess.GameState, error) {
	if rec == nil {
		return nil, fmt.Errorf("%w: empty record", ErrNoState)
	}
	if len(rec.Board) != chess.Size {
		return nil, fmt.Errorf("%w: board has %d rows", ErrNoState, len(rec.Board))
	}
	turn, err := chess.ParseColor(rec.CurrentTurn)
	if err != nil || len(rec.CurrentTurn) != 1 {
		return nil, fmt.Errorf("%w: bad current_turn %q", ErrNoState, rec.CurrentTurn)
	}
	state := &chess.GameState{Turn: turn}
	for row, cells := range rec.Board {
		if len(cells) != chess.Size {
			return nil, fmt.Errorf("%w: row %d has %d cells", ErrNoState, row, len(cells))
		}
		for col, code := range cells {
			p, err := chess.ParsePiece(code)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrNoState, err)
			}
			state.Board[row][col] = p
		}
	}
	return state, nil
}

// Marshal renders the record JSON for a state.
func Marshal(s *chess.GameState) ([]byte, error) {
	return json.Marshal(Encode(s))
}

// Unmarshal parses record JSON. Both keys must be present.
func Unmarshal(raw []byte) (*chess.GameState, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoState, err)
	}
	for _, key := range []string{"board", "current_turn"} {
		if _, ok := fields[key]; !ok {
			return nil, fmt.Errorf("%w: missing key %q", ErrNoState, key)
		}
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoState, err)
	}
	return Decode(&rec)
}
