package chesspresenter

import (
	"fmt"
	"strings"
	"time"

	"github.com/park285/cheese-chess/internal/msgcat"
	"github.com/park285/cheese-chess/pkg/chessdto"
)

// MessageKeys are the catalog entries the Formatter renders.
var MessageKeys = []string{
	"game.started", "game.turn", "game.check", "game.checkmate", "game.over",
	"store.saved", "store.loaded", "store.not_found", "store.failed",
	"move.not_your_turn", "move.illegal", "move.empty_square", "move.selected", "move.deselected",
}

// Formatter turns DTOs into the user-facing text shown by front ends.
type Formatter struct {
	cat *msgcat.Catalog
}

func NewFormatter(cat *msgcat.Catalog) *Formatter {
	return &Formatter{cat: cat}
}

func (f *Formatter) text(key string, data map[string]any) string {
	if f == nil || f.cat == nil {
		return key
	}
	return f.cat.Text(key, data)
}

// Outcome describes a click/move result. Checkmate announces the loser by
// their turn code, e.g. "Checkmate! W loses.".
func (f *Formatter) Outcome(o *chessdto.MoveOutcome, view *chessdto.SessionView) string {
	if o == nil || view == nil {
		return ""
	}
	switch {
	case o.Checkmate:
		return f.text("game.checkmate", map[string]any{"Loser": loserCode(o.Loser)})
	case o.Check:
		return f.text("game.check", map[string]any{"Turn": turnName(view.CurrentTurn)})
	case o.Moved:
		return f.text("game.turn", map[string]any{"Turn": turnName(view.CurrentTurn)})
	case o.Selected:
		return f.text("move.selected", map[string]any{"Square": view.Selected, "Count": len(view.Destinations)})
	case o.Cleared:
		return f.text("move.deselected", nil)
	}
	return ""
}

func (f *Formatter) Status(view *chessdto.SessionView) string {
	if view == nil {
		return ""
	}
	if view.Status == "checkmate" {
		return f.text("game.over", map[string]any{"Winner": turnName(view.Winner)})
	}
	if view.InCheck {
		return f.text("game.check", map[string]any{"Turn": turnName(view.CurrentTurn)})
	}
	return f.text("game.turn", map[string]any{"Turn": turnName(view.CurrentTurn)})
}

func (f *Formatter) Started(view *chessdto.SessionView) string {
	if view == nil {
		return ""
	}
	return f.text("game.started", map[string]any{"Turn": turnName(view.CurrentTurn)})
}

func (f *Formatter) Saved() string    { return f.text("store.saved", nil) }
func (f *Formatter) Loaded() string   { return f.text("store.loaded", nil) }
func (f *Formatter) NotFound() string { return f.text("store.not_found", nil) }

func (f *Formatter) SaveFailed(err error) string {
	return f.text("store.failed", map[string]any{"Error": err.Error()})
}

// MoveError renders a rejected move by domain error code.
func (f *Formatter) MoveError(code string, from, to, turn string) string {
	switch code {
	case chessdto.CodeNotYourTurn:
		return f.text("move.not_your_turn", map[string]any{"Turn": turnName(turn)})
	case chessdto.CodeIllegalMove:
		return f.text("move.illegal", map[string]any{"From": from, "To": to})
	case chessdto.CodeEmptySquare:
		return f.text("move.empty_square", map[string]any{"Square": from})
	case chessdto.CodeGameOver:
		return f.text("game.over", map[string]any{"Winner": "the other side"})
	default:
		return code
	}
}

// Board draws the view as text, rank 8 at the top. Empty squares print ".",
// destinations of the selection "*", and the selected piece is upper-cased (wP -> WP).
func (f *Formatter) Board(view *chessdto.SessionView) string {
	if view == nil || len(view.Board) == 0 {
		return ""
	}
	dests := make(map[string]bool, len(view.Destinations))
	for _, d := range view.Destinations {
		dests[d] = true
	}
	var sb strings.Builder
	for row, cells := range view.Board {
		rank := 8 - row
		sb.WriteString(fmt.Sprintf("%d ", rank))
		for col, code := range cells {
			name := fmt.Sprintf("%c%d", 'a'+col, rank)
			cell := code
			switch {
			case code == "--" && dests[name]:
				cell = " *"
			case code == "--":
				cell = " ."
			case name == view.Selected:
				cell = strings.ToUpper(code[:1]) + code[1:]
			}
			sb.WriteString(" ")
			sb.WriteString(cell)
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("   a  b  c  d  e  f  g  h\n")
	sb.WriteString(fmt.Sprintf("Moves: %s\n", formatRecentMoves(view.Moves)))
	sb.WriteString(f.Status(view))
	return sb.String()
}

func (f *Formatter) History(games []*chessdto.GameResult) string {
	if len(games) == 0 {
		return "No finished games."
	}
	var sb strings.Builder
	sb.WriteString("Recent games\n")
	for _, g := range games {
		sb.WriteString(fmt.Sprintf("• #%d %s %s, %s wins (%d moves)", g.ID, formatShortTime(g.EndedAt), g.Method, g.Winner, len(g.Moves)))
		if d := formatGameDuration(time.Duration(g.DurationMS) * time.Millisecond); d != "" {
			sb.WriteString(", ")
			sb.WriteString(d)
		}
		sb.WriteByte('\n')
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatRecentMoves(moves []string) string {
	if len(moves) == 0 {
		return "-"
	}
	const limit = 6
	if len(moves) <= limit {
		return strings.Join(moves, " ")
	}
	return "… " + strings.Join(moves[len(moves)-limit:], " ")
}

func formatShortTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func formatGameDuration(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(time.Second).String()
}

func turnName(code string) string {
	switch strings.ToLower(strings.TrimSpace(code)) {
	case "w", "white":
		return "White"
	case "b", "black":
		return "Black"
	default:
		return code
	}
}

func loserCode(color string) string {
	switch strings.ToLower(strings.TrimSpace(color)) {
	case "white", "w":
		return "W"
	case "black", "b":
		return "B"
	default:
		return strings.ToUpper(color)
	}
}
