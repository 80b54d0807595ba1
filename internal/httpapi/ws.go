package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/park285/cheese-chess/internal/adapter/chesspresenter"
	"github.com/park285/cheese-chess/pkg/chessdto"
)

const (
	wsWriteTimeout = 5 * time.Second
	wsPingInterval = 30 * time.Second
)

// handleWS streams session events as chessdto.SessionEvent frames. The first
// frame is a "snapshot" of the current view; the stream ends when the session
// is deleted or the client goes away.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	snap, err := s.sessions.Get(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	events, cancel, err := s.sessions.Subscribe(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	defer cancel()

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		CompressionMode: websocket.CompressionNoContextTakeover,
	})
	if err != nil {
		s.log.Warn("ws_accept_failed", zap.String("session_id", id), zap.Error(err))
		return
	}
	defer conn.Close(websocket.StatusInternalError, "unexpected close")

	// inbound frames are ignored; CloseRead cancels ctx once the peer closes
	ctx := conn.CloseRead(r.Context())
	s.log.Info("ws_open", zap.String("session_id", id))

	first := &chessdto.SessionEvent{Kind: "snapshot", Session: chesspresenter.ToDTOView(snap)}
	if err := s.wsWrite(ctx, conn, first); err != nil {
		return
	}

	ping := time.NewTicker(wsPingInterval)
	defer ping.Stop()
	for {
		select {
		case <-ctx.Done():
			s.log.Info("ws_closed", zap.String("session_id", id))
			return
		case <-ping.C:
			pctx, pcancel := context.WithTimeout(ctx, wsWriteTimeout)
			err := conn.Ping(pctx)
			pcancel()
			if err != nil {
				return
			}
		case ev, ok := <-events:
			if !ok {
				conn.Close(websocket.StatusNormalClosure, "session closed")
				return
			}
			if err := s.wsWrite(ctx, conn, chesspresenter.ToDTOEvent(ev)); err != nil {
				s.log.Debug("ws_write_failed", zap.String("session_id", id), zap.Error(err))
				return
			}
		}
	}
}

func (s *Server) wsWrite(ctx context.Context, conn *websocket.Conn, v any) error {
	wctx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	return wsjson.Write(wctx, conn, v)
}
