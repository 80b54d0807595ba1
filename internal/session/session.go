package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/park285/cheese-chess/internal/chess"
	"github.com/park285/cheese-chess/internal/store"
)

var (
	ErrNotYourTurn   = errors.New("piece does not belong to the side to move")
	ErrIllegalMove   = errors.New("destination is not reachable")
	ErrEmptySquare   = errors.New("no piece on square")
	ErrGameOver      = errors.New("game is over")
	ErrInvalidSquare = errors.New("square is off the board")
)

type Status int

const (
	StatusActive Status = iota
	StatusCheckmate
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusCheckmate:
		return "checkmate"
	default:
		return "unknown"
	}
}

// Session is one interactive game. It is not safe for concurrent use;
// Manager serializes access.
type Session struct {
	ID           string
	State        *chess.GameState
	Selected     *chess.Square
	Destinations chess.SquareSet
	Moves        []chess.Move
	Status       Status
	Winner       chess.Color
	StartedAt    time.Time
	UpdatedAt    time.Time

	now func() time.Time
}

// Outcome describes what a Click or Move did.
type Outcome struct {
	Moved     bool
	Move      chess.Move
	Piece     chess.Piece
	Captured  chess.Piece
	Selected  bool
	Cleared   bool
	Check     bool
	Checkmate bool
	// Loser is the side that was mated; NoColor otherwise.
	Loser chess.Color
}

// New starts a session from state, or from the initial position when state is nil.
func New(id string, state *chess.GameState) *Session {
	if state == nil {
		state = chess.NewInitialState()
	}
	s := &Session{ID: id, State: state.Clone(), now: time.Now}
	s.StartedAt = s.now()
	s.UpdatedAt = s.StartedAt
	s.refreshStatus()
	return s
}

func (s *Session) Finished() bool { return s.Status != StatusActive }

// Click follows the board's point-and-click flow: with a piece selected, a
// click on one of its destinations moves it and any click clears the
// selection; with nothing selected, a click on a piece of the side to move
// selects it.
func (s *Session) Click(sq chess.Square) (Outcome, error) {
	if !sq.Valid() {
		return Outcome{}, ErrInvalidSquare
	}
	if s.Finished() {
		return Outcome{}, ErrGameOver
	}
	if s.Selected != nil {
		from := *s.Selected
		dests := s.Destinations
		s.clearSelection()
		if dests.Has(sq) {
			return s.apply(from, sq), nil
		}
		return Outcome{Cleared: true}, nil
	}
	if !s.State.Board.At(sq).Is(s.State.Turn) {
		return Outcome{}, nil
	}
	s.selectSquare(sq)
	return Outcome{Selected: true}, nil
}

// Select picks a piece of the side to move and computes its destinations.
func (s *Session) Select(sq chess.Square) (chess.SquareSet, error) {
	if err := s.checkMover(sq); err != nil {
		return nil, err
	}
	s.selectSquare(sq)
	return s.Destinations, nil
}

// Move applies from->to after checking ownership and reachability.
func (s *Session) Move(from, to chess.Square) (Outcome, error) {
	if err := s.checkMover(from); err != nil {
		return Outcome{}, err
	}
	if !to.Valid() {
		return Outcome{}, ErrInvalidSquare
	}
	if !chess.LegalDestinations(&s.State.Board, from).Has(to) {
		return Outcome{}, fmt.Errorf("%w: %s to %s", ErrIllegalMove, from, to)
	}
	s.clearSelection()
	return s.apply(from, to), nil
}

func (s *Session) checkMover(sq chess.Square) error {
	if !sq.Valid() {
		return ErrInvalidSquare
	}
	if s.Finished() {
		return ErrGameOver
	}
	p := s.State.Board.At(sq)
	if p.IsEmpty() {
		return fmt.Errorf("%w %s", ErrEmptySquare, sq)
	}
	if p.Color != s.State.Turn {
		return ErrNotYourTurn
	}
	return nil
}

func (s *Session) selectSquare(sq chess.Square) {
	s.Selected = &sq
	s.Destinations = chess.LegalDestinations(&s.State.Board, sq)
	s.UpdatedAt = s.now()
}

func (s *Session) clearSelection() {
	s.Selected = nil
	s.Destinations = nil
	s.UpdatedAt = s.now()
}

func (s *Session) apply(from, to chess.Square) Outcome {
	mover := s.State.Turn
	piece := s.State.Board.At(from)
	captured := s.State.ApplyMove(from, to)
	s.Moves = append(s.Moves, chess.Move{From: from, To: to})
	s.UpdatedAt = s.now()

	out := Outcome{Moved: true, Move: chess.Move{From: from, To: to}, Piece: piece, Captured: captured}
	side := s.State.Turn
	if chess.InCheck(&s.State.Board, side) {
		out.Check = true
		if chess.IsCheckmate(&s.State.Board, side) {
			out.Checkmate = true
			out.Loser = side
			s.Status = StatusCheckmate
			s.Winner = mover
		}
	}
	return out
}

// refreshStatus derives the status of a freshly loaded position.
func (s *Session) refreshStatus() {
	side := s.State.Turn
	if chess.InCheck(&s.State.Board, side) && chess.IsCheckmate(&s.State.Board, side) {
		s.Status = StatusCheckmate
		s.Winner = side.Opponent()
		return
	}
	s.Status = StatusActive
	s.Winner = chess.NoColor
}

// Save writes the current state to slot.
func (s *Session) Save(ctx context.Context, st store.Store, slot string) error {
	return st.Save(ctx, slot, s.State)
}

// Load replaces the state wholesale from slot. On any failure the session is
// left untouched and the error wraps store.ErrNoState when nothing was loadable.
func (s *Session) Load(ctx context.Context, st store.Store, slot string) error {
	state, err := st.Load(ctx, slot)
	if err != nil {
		return err
	}
	s.State = state
	s.Moves = nil
	s.clearSelection()
	s.refreshStatus()
	return nil
}

// Snapshot is an immutable copy of a session for readers outside the lock.
// SafeDestinations and LegalMoves are display hints that exclude self-check;
// moves themselves are still validated pseudo-legally.
type Snapshot struct {
	ID               string
	State            chess.GameState
	Selected         *chess.Square
	Destinations     []chess.Square
	SafeDestinations []chess.Square
	LegalMoves       int
	Moves            []chess.Move
	Status           Status
	Winner           chess.Color
	InCheck          bool
	StartedAt        time.Time
	UpdatedAt        time.Time
}

func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		ID:           s.ID,
		State:        *s.State,
		Destinations: s.Destinations.Sorted(),
		Moves:        append([]chess.Move(nil), s.Moves...),
		Status:       s.Status,
		Winner:       s.Winner,
		InCheck:      chess.InCheck(&s.State.Board, s.State.Turn),
		StartedAt:    s.StartedAt,
		UpdatedAt:    s.UpdatedAt,
	}
	if !s.Finished() {
		snap.LegalMoves = len(chess.LegalMoves(&s.State.Board, s.State.Turn))
	}
	if s.Selected != nil {
		sel := *s.Selected
		snap.Selected = &sel
		snap.SafeDestinations = chess.SafeDestinations(&s.State.Board, sel).Sorted()
	}
	return snap
}
