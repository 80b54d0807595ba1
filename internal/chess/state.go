package chess

import (
	"fmt"
	"strings"
)

// Move is a (from, to) pair. Its text form is coordinate notation, "e2e4".
type Move struct {
	From Square
	To   Square
}

func (m Move) String() string { return m.From.String() + m.To.String() }

// ParseMove parses coordinate notation such as "e2e4" (a "-" separator is tolerated).
func ParseMove(s string) (Move, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), "-", "")
	if len(s) != 4 {
		return Move{}, fmt.Errorf("invalid move %q", s)
	}
	from, err := ParseSquare(s[:2])
	if err != nil {
		return Move{}, err
	}
	to, err := ParseSquare(s[2:])
	if err != nil {
		return Move{}, err
	}
	return Move{From: from, To: to}, nil
}

// GameState is the board plus the side to move; the unit of save/restore.
type GameState struct {
	Board Board
	Turn  Color
}

// NewInitialState returns the standard starting position with white to move.
func NewInitialState() *GameState {
	return &GameState{Board: InitialBoard(), Turn: White}
}

// Clone returns an independent copy.
func (s *GameState) Clone() *GameState {
	cp := *s
	return &cp
}

// ApplyMove moves the piece on from to to, overwriting any occupant, and
// flips the turn. The move is not validated; callers check it against
// LegalDestinations first. The overwritten occupant is returned.
func (s *GameState) ApplyMove(from, to Square) Piece {
	captured := s.Board.At(to)
	s.Board.Set(to, s.Board.At(from))
	s.Board.Set(from, Empty)
	s.Turn = s.Turn.Opponent()
	return captured
}
