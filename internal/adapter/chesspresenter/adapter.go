package chesspresenter

import (
	"github.com/park285/cheese-chess/internal/chess"
	"github.com/park285/cheese-chess/internal/domain"
	"github.com/park285/cheese-chess/internal/notation"
	"github.com/park285/cheese-chess/internal/session"
	"github.com/park285/cheese-chess/internal/store"
	"github.com/park285/cheese-chess/pkg/chessdto"
)

func ToDTOView(s session.Snapshot) *chessdto.SessionView {
	rec := store.Encode(&s.State)
	view := &chessdto.SessionView{
		SessionID:    s.ID,
		Board:        rec.Board,
		CurrentTurn:  rec.CurrentTurn,
		FEN:          notation.ToFEN(&s.State),
		Destinations: squareStrings(s.Destinations),
		LegalMoves:   s.LegalMoves,
		Moves:        moveStrings(s.Moves),
		MoveCount:    len(s.Moves),
		InCheck:      s.InCheck,
		Status:       s.Status.String(),
		StartedAt:    s.StartedAt,
		UpdatedAt:    s.UpdatedAt,
	}
	if s.Selected != nil {
		view.Selected = s.Selected.String()
		view.SafeDestinations = squareStrings(s.SafeDestinations)
	}
	if s.Winner != chess.NoColor {
		view.Winner = s.Winner.String()
	}
	return view
}

func ToDTOOutcome(o session.Outcome) *chessdto.MoveOutcome {
	out := &chessdto.MoveOutcome{
		Moved:     o.Moved,
		Selected:  o.Selected,
		Cleared:   o.Cleared,
		Check:     o.Check,
		Checkmate: o.Checkmate,
	}
	if o.Moved {
		out.Move = o.Move.String()
		out.Piece = o.Piece.Code()
		if !o.Captured.IsEmpty() {
			out.Captured = o.Captured.Code()
		}
	}
	if o.Loser != chess.NoColor {
		out.Loser = o.Loser.String()
	}
	return out
}

func ToDTOEvent(ev session.Event) *chessdto.SessionEvent {
	return &chessdto.SessionEvent{
		Kind:    string(ev.Kind),
		Outcome: ToDTOOutcome(ev.Outcome),
		Session: ToDTOView(ev.Snapshot),
	}
}

func ToDTOResults(list []*domain.GameResult) []*chessdto.GameResult {
	out := make([]*chessdto.GameResult, 0, len(list))
	for _, r := range list {
		if r == nil {
			continue
		}
		out = append(out, &chessdto.GameResult{
			ID:         r.ID,
			SessionID:  r.SessionID,
			Winner:     r.Winner,
			Loser:      r.Loser,
			Method:     r.Method,
			Moves:      append([]string(nil), r.MovesCoord...),
			FinalFEN:   r.FinalFEN,
			Movetext:   r.Movetext,
			StartedAt:  r.StartedAt,
			EndedAt:    r.EndedAt,
			DurationMS: r.Duration.Milliseconds(),
		})
	}
	return out
}

func squareStrings(list []chess.Square) []string {
	out := make([]string, 0, len(list))
	for _, sq := range list {
		out = append(out, sq.String())
	}
	return out
}

func moveStrings(list []chess.Move) []string {
	out := make([]string, 0, len(list))
	for _, mv := range list {
		out = append(out, mv.String())
	}
	return out
}
