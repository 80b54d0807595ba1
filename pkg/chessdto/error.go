package chessdto

const (
	CodeBadRequest   = "bad_request"
	CodeNotFound     = "not_found"
	CodeNotYourTurn  = "not_your_turn"
	CodeIllegalMove  = "illegal_move"
	CodeEmptySquare  = "empty_square"
	CodeGameOver     = "game_over"
	CodeNoSavedState = "no_saved_state"
	CodeInternal     = "internal"
)

type DomainError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable,omitempty"`
}

func (e DomainError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return "chess service error"
}
