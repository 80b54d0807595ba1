package archive

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/park285/cheese-chess/internal/domain"
)

// Repository stores finished games.
type Repository interface {
	SaveResult(ctx context.Context, r *domain.GameResult) error
	RecentResults(ctx context.Context, limit int) ([]*domain.GameResult, error)
}

func mapResultToPGN(winner string) string {
	switch strings.ToLower(strings.TrimSpace(winner)) {
	case "white":
		return "1-0"
	case "black":
		return "0-1"
	case "draw":
		return "1/2-1/2"
	default:
		return "*"
	}
}

// BuildMovetext renders PGN-style headers followed by numbered coordinate moves
// and the result token.
func BuildMovetext(r *domain.GameResult) string {
	if r == nil {
		return ""
	}
	result := mapResultToPGN(r.Winner)
	var b strings.Builder
	date := r.EndedAt
	if date.IsZero() {
		date = time.Now()
	}
	b.WriteString("[Event \"Cheese Chess\"]\n")
	b.WriteString(fmt.Sprintf("[Date \"%04d.%02d.%02d\"]\n", date.Year(), int(date.Month()), date.Day()))
	if strings.TrimSpace(r.Method) != "" {
		b.WriteString(fmt.Sprintf("[Termination \"%s\"]\n", sanitizePGN(strings.ToLower(r.Method))))
	}
	if strings.TrimSpace(r.FinalFEN) != "" {
		b.WriteString(fmt.Sprintf("[FinalFEN \"%s\"]\n", sanitizePGN(r.FinalFEN)))
	}
	b.WriteString(fmt.Sprintf("[Result \"%s\"]\n\n", result))

	for i := 0; i < len(r.MovesCoord); i += 2 {
		b.WriteString(fmt.Sprintf("%d. %s", i/2+1, strings.TrimSpace(r.MovesCoord[i])))
		if i+1 < len(r.MovesCoord) {
			b.WriteString(" ")
			b.WriteString(strings.TrimSpace(r.MovesCoord[i+1]))
		}
		b.WriteString(" ")
	}
	b.WriteString(result)
	return b.String()
}

func sanitizePGN(s string) string {
	s = strings.ReplaceAll(s, "\\", " ")
	s = strings.ReplaceAll(s, "\"", "'")
	return strings.TrimSpace(s)
}
