package chessdto

import "time"

// SessionView is the wire form of a live session. SafeDestinations omits
// destinations that would leave the mover in check.
type SessionView struct {
	SessionID        string     `json:"session_id"`
	Board            [][]string `json:"board"`
	CurrentTurn      string     `json:"current_turn"`
	FEN              string     `json:"fen"`
	Selected         string     `json:"selected,omitempty"`
	Destinations     []string   `json:"destinations"`
	SafeDestinations []string   `json:"safe_destinations,omitempty"`
	LegalMoves       int        `json:"legal_moves"`
	Moves            []string   `json:"moves"`
	MoveCount        int        `json:"move_count"`
	InCheck          bool       `json:"in_check"`
	Status           string     `json:"status"`
	Winner           string     `json:"winner,omitempty"`
	Message          string     `json:"message,omitempty"`
	StartedAt        time.Time  `json:"started_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// SessionEvent is pushed over the websocket stream.
type SessionEvent struct {
	Kind    string       `json:"kind"`
	Outcome *MoveOutcome `json:"outcome,omitempty"`
	Session *SessionView `json:"session"`
}
