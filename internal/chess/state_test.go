package chess

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewInitialState(t *testing.T) {
	s := NewInitialState()
	if s.Turn != White {
		t.Fatalf("turn = %s, want white", s.Turn)
	}
	if diff := cmp.Diff(InitialBoard(), s.Board); diff != "" {
		t.Fatalf("board mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyMoveClearsSourceAndFlipsTurn(t *testing.T) {
	s := NewInitialState()
	from, to := Sq(6, 4), Sq(4, 4)
	captured := s.ApplyMove(from, to)

	if !captured.IsEmpty() {
		t.Errorf("captured = %s, want empty", captured)
	}
	if !s.Board.At(from).IsEmpty() {
		t.Errorf("source square still occupied by %s", s.Board.At(from))
	}
	if got := s.Board.At(to); got != NewPiece(White, Pawn) {
		t.Errorf("destination = %s, want wP", got)
	}
	if s.Turn != Black {
		t.Errorf("turn = %s, want black", s.Turn)
	}
	if LegalDestinations(&s.Board, from).Len() != 0 {
		t.Errorf("vacated square should generate no moves")
	}
}

func TestApplyMoveOverwritesCapture(t *testing.T) {
	s := &GameState{Board: *place(t, "e4=wP", "d5=bN", "a1=wK", "h8=bK"), Turn: White}
	captured := s.ApplyMove(Sq(4, 4), Sq(3, 3))
	if captured != NewPiece(Black, Knight) {
		t.Fatalf("captured = %s, want bN", captured)
	}
	if s.Board.At(Sq(3, 3)) != NewPiece(White, Pawn) {
		t.Fatalf("capturing pawn missing")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	s := NewInitialState()
	cp := s.Clone()
	cp.ApplyMove(Sq(6, 0), Sq(5, 0))
	if s.Turn != White || s.Board.At(Sq(6, 0)).IsEmpty() {
		t.Fatalf("clone shares state with the original")
	}
}

func TestParseMove(t *testing.T) {
	m, err := ParseMove("e2-e4")
	if err != nil {
		t.Fatalf("ParseMove: %v", err)
	}
	if m.From != Sq(6, 4) || m.To != Sq(4, 4) {
		t.Fatalf("ParseMove = %+v", m)
	}
	if m.String() != "e2e4" {
		t.Fatalf("String = %q", m.String())
	}
	for _, bad := range []string{"", "e2", "e2e9", "z1e4"} {
		if _, err := ParseMove(bad); err == nil {
			t.Errorf("ParseMove(%q) expected error", bad)
		}
	}
}

func TestParseColor(t *testing.T) {
	for in, want := range map[string]Color{"w": White, "b": Black, "White": White, " black ": Black} {
		got, err := ParseColor(in)
		if err != nil || got != want {
			t.Errorf("ParseColor(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseColor("x"); err == nil {
		t.Errorf("ParseColor(x) expected error")
	}
	if White.Opponent() != Black || Black.Opponent() != White {
		t.Errorf("Opponent mismatch")
	}
}
