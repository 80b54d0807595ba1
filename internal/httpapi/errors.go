package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/park285/cheese-chess/internal/notation"
	"github.com/park285/cheese-chess/internal/session"
	"github.com/park285/cheese-chess/internal/store"
	"github.com/park285/cheese-chess/pkg/chessdto"
)

var errBadRequest = errors.New("bad request")

// toDomainError maps package sentinels onto a wire error and HTTP status.
func toDomainError(err error) (int, chessdto.DomainError) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound, chessdto.DomainError{Code: chessdto.CodeNotFound, Message: err.Error()}
	case errors.Is(err, session.ErrNotYourTurn):
		return http.StatusConflict, chessdto.DomainError{Code: chessdto.CodeNotYourTurn, Message: err.Error()}
	case errors.Is(err, session.ErrGameOver):
		return http.StatusConflict, chessdto.DomainError{Code: chessdto.CodeGameOver, Message: err.Error()}
	case errors.Is(err, session.ErrIllegalMove):
		return http.StatusUnprocessableEntity, chessdto.DomainError{Code: chessdto.CodeIllegalMove, Message: err.Error()}
	case errors.Is(err, session.ErrEmptySquare):
		return http.StatusUnprocessableEntity, chessdto.DomainError{Code: chessdto.CodeEmptySquare, Message: err.Error()}
	case errors.Is(err, store.ErrNoState):
		return http.StatusNotFound, chessdto.DomainError{Code: chessdto.CodeNoSavedState, Message: err.Error()}
	case errors.Is(err, session.ErrInvalidSquare), errors.Is(err, notation.ErrInvalidFEN),
		errors.Is(err, store.ErrInvalidSlot), errors.Is(err, errBadRequest):
		return http.StatusBadRequest, chessdto.DomainError{Code: chessdto.CodeBadRequest, Message: err.Error()}
	default:
		return http.StatusInternalServerError, chessdto.DomainError{Code: chessdto.CodeInternal, Message: "internal error", Retryable: true}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status, de := toDomainError(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("http_internal_error", zapErr(err))
	}
	writeJSON(w, status, de)
}
