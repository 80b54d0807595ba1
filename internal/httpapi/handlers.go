package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/park285/cheese-chess/internal/adapter/chesspresenter"
	"github.com/park285/cheese-chess/internal/chess"
	"github.com/park285/cheese-chess/internal/notation"
	"github.com/park285/cheese-chess/internal/render"
	"github.com/park285/cheese-chess/internal/session"
	"github.com/park285/cheese-chess/internal/store"
	"github.com/park285/cheese-chess/pkg/chessdto"
)

const maxBodyBytes = 1 << 16

func zapErr(err error) zap.Field { return zap.Error(err) }

// decode reads an optional JSON body; an empty body leaves v untouched.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

func parseSquare(raw string) (chess.Square, error) {
	sq, err := chess.ParseSquare(strings.TrimSpace(raw))
	if err != nil {
		return chess.Square{}, fmt.Errorf("%w: %v", session.ErrInvalidSquare, err)
	}
	return sq, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, chessdto.HealthResponse{Status: "ok", Sessions: len(s.sessions.List())})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req chessdto.CreateSessionRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	var start *chess.GameState
	if strings.TrimSpace(req.FEN) != "" {
		st, err := notation.FromFEN(req.FEN)
		if err != nil {
			s.writeError(w, err)
			return
		}
		start = st
	}
	view := chesspresenter.ToDTOView(s.sessions.Create(r.Context(), start))
	writeJSON(w, http.StatusCreated, chessdto.ActionResponse{Session: view, Message: s.formatter.Started(view)})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	snap, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	view := chesspresenter.ToDTOView(snap)
	view.Message = s.formatter.Status(view)
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDestinations(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("square")
	sq, err := parseSquare(raw)
	if err != nil {
		s.writeError(w, err)
		return
	}
	list, err := s.sessions.Destinations(chi.URLParam(r, "id"), sq)
	if err != nil {
		s.writeError(w, err)
		return
	}
	out := chessdto.DestinationsResponse{Square: sq.String(), Destinations: make([]string, 0, len(list))}
	for _, d := range list {
		out.Destinations = append(out.Destinations, d.String())
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	var req chessdto.ClickRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	sq, err := parseSquare(req.Square)
	if err != nil {
		s.writeError(w, err)
		return
	}
	out, snap, err := s.sessions.Click(r.Context(), chi.URLParam(r, "id"), sq)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeAction(w, out, snap)
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req chessdto.MoveRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	from, err := parseSquare(req.From)
	if err != nil {
		s.writeError(w, err)
		return
	}
	to, err := parseSquare(req.To)
	if err != nil {
		s.writeError(w, err)
		return
	}
	out, snap, err := s.sessions.Move(r.Context(), chi.URLParam(r, "id"), from, to)
	if err != nil {
		status, de := toDomainError(err)
		if status < http.StatusInternalServerError && de.Code != chessdto.CodeNotFound {
			de.Message = s.formatter.MoveError(de.Code, from.String(), to.String(), snap.State.Turn.Code())
		}
		writeJSON(w, status, de)
		return
	}
	s.writeAction(w, out, snap)
}

func (s *Server) writeAction(w http.ResponseWriter, out session.Outcome, snap session.Snapshot) {
	view := chesspresenter.ToDTOView(snap)
	dto := chesspresenter.ToDTOOutcome(out)
	writeJSON(w, http.StatusOK, chessdto.ActionResponse{
		Outcome: dto,
		Session: view,
		Message: s.formatter.Outcome(dto, view),
	})
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	var req chessdto.SlotRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	id := chi.URLParam(r, "id")
	if err := s.sessions.Save(r.Context(), id, req.Slot); err != nil {
		s.writeError(w, err)
		return
	}
	snap, err := s.sessions.Get(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chessdto.ActionResponse{Session: chesspresenter.ToDTOView(snap), Message: s.formatter.Saved()})
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	var req chessdto.SlotRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	snap, err := s.sessions.Load(r.Context(), chi.URLParam(r, "id"), req.Slot)
	if errors.Is(err, store.ErrNoState) {
		writeJSON(w, http.StatusNotFound, chessdto.DomainError{Code: chessdto.CodeNoSavedState, Message: s.formatter.NotFound()})
		return
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chessdto.ActionResponse{Session: chesspresenter.ToDTOView(snap), Message: s.formatter.Loaded()})
}

func (s *Server) handleFEN(w http.ResponseWriter, r *http.Request) {
	snap, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chessdto.FENResponse{FEN: notation.ToFEN(&snap.State)})
}

func (s *Server) handleBoardPNG(w http.ResponseWriter, r *http.Request) {
	snap, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	opts := render.Options{Selected: snap.Selected}
	if snap.Selected != nil {
		opts.Destinations = make(chess.SquareSet, len(snap.Destinations))
		for _, d := range snap.Destinations {
			opts.Destinations[d] = struct{}{}
		}
	}
	if n := len(snap.Moves); n > 0 {
		last := snap.Moves[n-1]
		opts.LastMove = &last
	}
	if v, _ := strconv.ParseBool(r.URL.Query().Get("coords")); v {
		opts.Coordinates = true
	}
	png, err := s.renderer.RenderPNG(r.Context(), &snap.State.Board, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.writeError(w, fmt.Errorf("%w: limit %q", errBadRequest, v))
			return
		}
		limit = n
	}
	list, err := s.sessions.RecentResults(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chessdto.HistoryResponse{Games: chesspresenter.ToDTOResults(list)})
}
