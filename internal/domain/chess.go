package domain

import "time"

// GameResult is a finished game as archived.
type GameResult struct {
	ID          int64
	SessionID   string
	Winner      string // "white" | "black"
	Loser       string
	Method      string // "checkmate"
	MovesCoord  []string
	FinalRecord []byte // persisted record JSON of the final position
	FinalFEN    string
	Movetext    string
	StartedAt   time.Time
	EndedAt     time.Time
	Duration    time.Duration
}
