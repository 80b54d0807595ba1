package chessdto

import "time"

type GameResult struct {
	ID         int64     `json:"id"`
	SessionID  string    `json:"session_id"`
	Winner     string    `json:"winner"`
	Loser      string    `json:"loser"`
	Method     string    `json:"method"`
	Moves      []string  `json:"moves"`
	FinalFEN   string    `json:"final_fen"`
	Movetext   string    `json:"movetext"`
	StartedAt  time.Time `json:"started_at"`
	EndedAt    time.Time `json:"ended_at"`
	DurationMS int64     `json:"duration_ms"`
}

type HistoryResponse struct {
	Games []*GameResult `json:"games"`
}
