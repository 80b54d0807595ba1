package chessdto

type MoveOutcome struct {
	Moved     bool   `json:"moved"`
	Move      string `json:"move,omitempty"`
	Piece     string `json:"piece,omitempty"`
	Captured  string `json:"captured,omitempty"`
	Selected  bool   `json:"selected,omitempty"`
	Cleared   bool   `json:"cleared,omitempty"`
	Check     bool   `json:"check"`
	Checkmate bool   `json:"checkmate"`
	Loser     string `json:"loser,omitempty"`
}

type DestinationsResponse struct {
	Square       string   `json:"square"`
	Destinations []string `json:"destinations"`
}
