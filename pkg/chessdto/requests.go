package chessdto

type CreateSessionRequest struct {
	FEN string `json:"fen,omitempty"`
}

type ClickRequest struct {
	Square string `json:"square"`
}

type MoveRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type SlotRequest struct {
	Slot string `json:"slot,omitempty"`
}

type ActionResponse struct {
	Outcome *MoveOutcome `json:"outcome,omitempty"`
	Session *SessionView `json:"session"`
	Message string       `json:"message,omitempty"`
}

type FENResponse struct {
	FEN string `json:"fen"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
}
