package session

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/park285/cheese-chess/internal/chess"
	"github.com/park285/cheese-chess/internal/store"
)

func sq(t *testing.T, s string) chess.Square {
	t.Helper()
	v, err := chess.ParseSquare(s)
	if err != nil {
		t.Fatalf("ParseSquare(%q): %v", s, err)
	}
	return v
}

func click(t *testing.T, s *Session, square string) Outcome {
	t.Helper()
	out, err := s.Click(sq(t, square))
	if err != nil {
		t.Fatalf("Click(%s): %v", square, err)
	}
	return out
}

func TestClickSelectThenMove(t *testing.T) {
	s := New("t", nil)

	out := click(t, s, "e2")
	if !out.Selected || s.Selected == nil || *s.Selected != sq(t, "e2") {
		t.Fatalf("e2 not selected: %+v", out)
	}
	if diff := cmp.Diff([]chess.Square{sq(t, "e4"), sq(t, "e3")}, s.Destinations.Sorted()); diff != "" {
		t.Fatalf("destinations (-want +got):\n%s", diff)
	}

	out = click(t, s, "e4")
	if !out.Moved || out.Move.String() != "e2e4" {
		t.Fatalf("expected e2e4, got %+v", out)
	}
	if s.Selected != nil || s.Destinations != nil {
		t.Fatalf("selection should be cleared after a move")
	}
	if s.State.Turn != chess.Black {
		t.Fatalf("turn = %s", s.State.Turn)
	}
}

func TestClickOpponentPieceDoesNothing(t *testing.T) {
	s := New("t", nil)
	out := click(t, s, "e7")
	if out != (Outcome{}) || s.Selected != nil {
		t.Fatalf("black piece selected on white's turn: %+v", out)
	}
	if out := click(t, s, "e4"); out != (Outcome{}) {
		t.Fatalf("empty square click: %+v", out)
	}
}

func TestClickOutsideDestinationsClearsWithoutReselect(t *testing.T) {
	s := New("t", nil)
	click(t, s, "e2")
	out := click(t, s, "d2")
	if !out.Cleared || out.Moved {
		t.Fatalf("expected clear only, got %+v", out)
	}
	if s.Selected != nil {
		t.Fatalf("d2 must not be selected by the clearing click")
	}
	if s.State.Turn != chess.White {
		t.Fatalf("turn changed without a move")
	}
}

func TestMoveValidation(t *testing.T) {
	s := New("t", nil)
	cases := []struct {
		from, to string
		want     error
	}{
		{"e4", "e5", ErrEmptySquare},
		{"e7", "e5", ErrNotYourTurn},
		{"e2", "e5", ErrIllegalMove},
		{"g1", "g3", ErrIllegalMove},
	}
	for _, tc := range cases {
		if _, err := s.Move(sq(t, tc.from), sq(t, tc.to)); !errors.Is(err, tc.want) {
			t.Errorf("Move(%s,%s) err = %v, want %v", tc.from, tc.to, err, tc.want)
		}
	}
	if _, err := s.Move(sq(t, "g1"), chess.Sq(8, 0)); !errors.Is(err, ErrInvalidSquare) {
		t.Errorf("off-board destination err = %v", err)
	}
	if len(s.Moves) != 0 || s.State.Turn != chess.White {
		t.Fatalf("rejected moves must not change state")
	}
}

func TestFoolsMateEndsSession(t *testing.T) {
	s := New("t", nil)
	var last Outcome
	for _, mv := range [][2]string{{"f2", "f3"}, {"e7", "e5"}, {"g2", "g4"}, {"d8", "h4"}} {
		out, err := s.Move(sq(t, mv[0]), sq(t, mv[1]))
		if err != nil {
			t.Fatalf("Move %v: %v", mv, err)
		}
		last = out
	}
	if !last.Check || !last.Checkmate || last.Loser != chess.White {
		t.Fatalf("outcome = %+v", last)
	}
	if s.Status != StatusCheckmate || s.Winner != chess.Black {
		t.Fatalf("status=%s winner=%s", s.Status, s.Winner)
	}
	if _, err := s.Click(sq(t, "a2")); !errors.Is(err, ErrGameOver) {
		t.Fatalf("click after mate err = %v", err)
	}
	if _, err := s.Move(sq(t, "a2"), sq(t, "a3")); !errors.Is(err, ErrGameOver) {
		t.Fatalf("move after mate err = %v", err)
	}
}

func TestCheckWithoutMate(t *testing.T) {
	b := chess.Board{}
	b.Set(sq(t, "e1"), chess.NewPiece(chess.White, chess.King))
	b.Set(sq(t, "a8"), chess.NewPiece(chess.Black, chess.King))
	b.Set(sq(t, "h2"), chess.NewPiece(chess.White, chess.Rook))
	s := New("t", &chess.GameState{Board: b, Turn: chess.White})

	out, err := s.Move(sq(t, "h2"), sq(t, "h8"))
	if err != nil {
		t.Fatal(err)
	}
	if !out.Check || out.Checkmate || s.Finished() {
		t.Fatalf("expected plain check, got %+v status=%s", out, s.Status)
	}
}

func TestSaveLoad(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	s := New("t", nil)

	if err := s.Load(ctx, st, ""); !errors.Is(err, store.ErrNoState) {
		t.Fatalf("load from empty store err = %v", err)
	}
	if s.State.Turn != chess.White || s.State.Board != chess.InitialBoard() {
		t.Fatalf("failed load changed the session")
	}

	click(t, s, "b1")
	click(t, s, "c3")
	if err := s.Save(ctx, st, ""); err != nil {
		t.Fatalf("Save: %v", err)
	}
	saved := *s.State

	click(t, s, "a7")
	click(t, s, "a6")
	click(t, s, "g1") // selection is dropped by a load
	if err := s.Load(ctx, st, ""); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(saved, *s.State); diff != "" {
		t.Fatalf("loaded state (-want +got):\n%s", diff)
	}
	if s.Selected != nil || len(s.Moves) != 0 {
		t.Fatalf("selection/history should reset on load")
	}
}

func TestNewFromMatedPositionIsFinished(t *testing.T) {
	b := chess.Board{}
	b.Set(sq(t, "a8"), chess.NewPiece(chess.Black, chess.King))
	b.Set(sq(t, "b7"), chess.NewPiece(chess.White, chess.Queen))
	b.Set(sq(t, "c6"), chess.NewPiece(chess.White, chess.King))
	s := New("t", &chess.GameState{Board: b, Turn: chess.Black})
	if !s.Finished() || s.Winner != chess.White {
		t.Fatalf("status=%s winner=%s", s.Status, s.Winner)
	}
}

func TestSnapshotIsDetached(t *testing.T) {
	s := New("t", nil)
	click(t, s, "g1")
	snap := s.Snapshot()
	click(t, s, "f3")
	if snap.State.Turn != chess.White || snap.Selected == nil || len(snap.Destinations) != 2 {
		t.Fatalf("snapshot changed with the session: %+v", snap)
	}
}

func TestSnapshotHintsExcludeSelfCheck(t *testing.T) {
	if got := New("t", nil).Snapshot().LegalMoves; got != 20 {
		t.Fatalf("initial LegalMoves = %d, want 20", got)
	}

	b := chess.Board{}
	b.Set(sq(t, "e1"), chess.NewPiece(chess.White, chess.King))
	b.Set(sq(t, "e2"), chess.NewPiece(chess.White, chess.Rook))
	b.Set(sq(t, "e8"), chess.NewPiece(chess.Black, chess.Rook))
	b.Set(sq(t, "a8"), chess.NewPiece(chess.Black, chess.King))
	s := New("t", &chess.GameState{Board: b, Turn: chess.White})
	click(t, s, "e2")

	snap := s.Snapshot()
	if len(snap.Destinations) != 13 {
		t.Fatalf("pseudo-legal destinations = %d, want 13", len(snap.Destinations))
	}
	var got []string
	for _, d := range snap.SafeDestinations {
		got = append(got, d.String())
	}
	want := []string{"e8", "e7", "e6", "e5", "e4", "e3"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("safe destinations (-want +got):\n%s", diff)
	}
}
