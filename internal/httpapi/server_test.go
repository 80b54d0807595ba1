package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/park285/cheese-chess/internal/adapter/chesspresenter"
	"github.com/park285/cheese-chess/internal/msgcat"
	"github.com/park285/cheese-chess/internal/render"
	"github.com/park285/cheese-chess/internal/session"
	"github.com/park285/cheese-chess/internal/store"
	"github.com/park285/cheese-chess/pkg/chessdto"
)

type fixture struct {
	srv  *httptest.Server
	mgr  *session.Manager
	logs *observer.ObservedLogs
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)
	cat, err := msgcat.New("")
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	mgr := session.NewManager(session.Options{Store: store.NewMemoryStore(), Logger: logger})
	api := New(mgr, render.New(32), chesspresenter.NewFormatter(cat), WithLogger(logger))
	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)
	return &fixture{srv: srv, mgr: mgr, logs: logs}
}

func (f *fixture) do(t *testing.T, method, path string, body any, out any) int {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, f.srv.URL+path, rd)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := f.srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func (f *fixture) create(t *testing.T, fen string) *chessdto.SessionView {
	t.Helper()
	var resp chessdto.ActionResponse
	if code := f.do(t, http.MethodPost, "/sessions", chessdto.CreateSessionRequest{FEN: fen}, &resp); code != http.StatusCreated {
		t.Fatalf("create status = %d", code)
	}
	return resp.Session
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	f.create(t, "")
	var h chessdto.HealthResponse
	if code := f.do(t, http.MethodGet, "/health", nil, &h); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if diff := cmp.Diff(chessdto.HealthResponse{Status: "ok", Sessions: 1}, h); diff != "" {
		t.Fatalf("health mismatch (-want +got):\n%s", diff)
	}
}

func TestCreateAndGet(t *testing.T) {
	f := newFixture(t)
	view := f.create(t, "")
	if view.CurrentTurn != "w" || view.Status != "active" {
		t.Fatalf("unexpected view %+v", view)
	}
	if view.Board[0][4] != "bK" || view.Board[7][4] != "wK" {
		t.Fatalf("kings misplaced: %v / %v", view.Board[0], view.Board[7])
	}

	var got chessdto.SessionView
	if code := f.do(t, http.MethodGet, "/sessions/"+view.SessionID, nil, &got); code != http.StatusOK {
		t.Fatalf("get status = %d", code)
	}
	if got.Message != "White to move." {
		t.Fatalf("message = %q", got.Message)
	}
}

func TestCreateFromFEN(t *testing.T) {
	f := newFixture(t)
	view := f.create(t, "k7/1Q6/2K5/8/8/8/8/8 b - - 0 1")
	if view.Status != "checkmate" || view.Winner != "white" {
		t.Fatalf("status=%q winner=%q", view.Status, view.Winner)
	}

	var de chessdto.DomainError
	code := f.do(t, http.MethodPost, "/sessions", chessdto.CreateSessionRequest{FEN: "not a fen"}, &de)
	if code != http.StatusBadRequest || de.Code != chessdto.CodeBadRequest {
		t.Fatalf("bad fen: status=%d err=%+v", code, de)
	}
}

func TestUnknownSession(t *testing.T) {
	f := newFixture(t)
	var de chessdto.DomainError
	if code := f.do(t, http.MethodGet, "/sessions/missing", nil, &de); code != http.StatusNotFound {
		t.Fatalf("status = %d", code)
	}
	if de.Code != chessdto.CodeNotFound {
		t.Fatalf("code = %q", de.Code)
	}
}

func TestDestinations(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, "").SessionID

	var resp chessdto.DestinationsResponse
	if code := f.do(t, http.MethodGet, "/sessions/"+id+"/destinations?square=g1", nil, &resp); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	want := chessdto.DestinationsResponse{Square: "g1", Destinations: []string{"f3", "h3"}}
	if diff := cmp.Diff(want, resp); diff != "" {
		t.Fatalf("destinations mismatch (-want +got):\n%s", diff)
	}

	var de chessdto.DomainError
	if code := f.do(t, http.MethodGet, "/sessions/"+id+"/destinations?square=z9", nil, &de); code != http.StatusBadRequest {
		t.Fatalf("bad square status = %d", code)
	}
}

func TestClickFlow(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, "").SessionID

	var sel chessdto.ActionResponse
	if code := f.do(t, http.MethodPost, "/sessions/"+id+"/click", chessdto.ClickRequest{Square: "e2"}, &sel); code != http.StatusOK {
		t.Fatalf("select status = %d", code)
	}
	if !sel.Outcome.Selected || sel.Session.Selected != "e2" {
		t.Fatalf("selection not recorded: %+v", sel.Session)
	}
	if diff := cmp.Diff([]string{"e4", "e3"}, sel.Session.Destinations); diff != "" {
		t.Fatalf("destinations (-want +got):\n%s", diff)
	}

	var mv chessdto.ActionResponse
	f.do(t, http.MethodPost, "/sessions/"+id+"/click", chessdto.ClickRequest{Square: "e4"}, &mv)
	if !mv.Outcome.Moved || mv.Outcome.Move != "e2e4" {
		t.Fatalf("outcome = %+v", mv.Outcome)
	}
	if mv.Session.CurrentTurn != "b" || mv.Session.Board[4][4] != "wP" || mv.Session.Selected != "" {
		t.Fatalf("session after move = %+v", mv.Session)
	}
}

func TestMoveErrors(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, "").SessionID

	cases := []struct {
		name   string
		req    chessdto.MoveRequest
		status int
		code   string
	}{
		{"wrong side", chessdto.MoveRequest{From: "e7", To: "e5"}, http.StatusConflict, chessdto.CodeNotYourTurn},
		{"unreachable", chessdto.MoveRequest{From: "e2", To: "e5"}, http.StatusUnprocessableEntity, chessdto.CodeIllegalMove},
		{"empty", chessdto.MoveRequest{From: "e4", To: "e5"}, http.StatusUnprocessableEntity, chessdto.CodeEmptySquare},
		{"off board", chessdto.MoveRequest{From: "i2", To: "e5"}, http.StatusBadRequest, chessdto.CodeBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var de chessdto.DomainError
			code := f.do(t, http.MethodPost, "/sessions/"+id+"/move", tc.req, &de)
			if code != tc.status || de.Code != tc.code {
				t.Fatalf("status=%d code=%q, want %d %q", code, de.Code, tc.status, tc.code)
			}
			if de.Message == "" {
				t.Fatal("empty message")
			}
		})
	}
}

func TestFoolsMateOverHTTP(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, "").SessionID

	var last chessdto.ActionResponse
	for _, mv := range [][2]string{{"f2", "f3"}, {"e7", "e5"}, {"g2", "g4"}, {"d8", "h4"}} {
		last = chessdto.ActionResponse{}
		if code := f.do(t, http.MethodPost, "/sessions/"+id+"/move", chessdto.MoveRequest{From: mv[0], To: mv[1]}, &last); code != http.StatusOK {
			t.Fatalf("move %v status = %d", mv, code)
		}
	}
	if !last.Outcome.Checkmate || last.Outcome.Loser != "white" {
		t.Fatalf("outcome = %+v", last.Outcome)
	}
	if last.Message != "Checkmate! W loses." {
		t.Fatalf("message = %q", last.Message)
	}

	var de chessdto.DomainError
	if code := f.do(t, http.MethodPost, "/sessions/"+id+"/click", chessdto.ClickRequest{Square: "a2"}, &de); code != http.StatusConflict {
		t.Fatalf("click after mate status = %d", code)
	}

	var hist chessdto.HistoryResponse
	if code := f.do(t, http.MethodGet, "/results?limit=5", nil, &hist); code != http.StatusOK {
		t.Fatalf("results status = %d", code)
	}
	if len(hist.Games) != 1 || hist.Games[0].Winner != "black" {
		t.Fatalf("history = %+v", hist.Games)
	}
	if diff := cmp.Diff([]string{"f2f3", "e7e5", "g2g4", "d8h4"}, hist.Games[0].Moves); diff != "" {
		t.Fatalf("archived moves (-want +got):\n%s", diff)
	}

	if code := f.do(t, http.MethodGet, "/results?limit=zero", nil, &de); code != http.StatusBadRequest {
		t.Fatalf("bad limit status = %d", code)
	}
}

func TestSaveLoad(t *testing.T) {
	f := newFixture(t)
	a := f.create(t, "").SessionID
	b := f.create(t, "").SessionID

	var de chessdto.DomainError
	if code := f.do(t, http.MethodPost, "/sessions/"+b+"/load", chessdto.SlotRequest{}, &de); code != http.StatusNotFound {
		t.Fatalf("load before save status = %d", code)
	}
	if de.Code != chessdto.CodeNoSavedState || de.Message != "Save file not found!" {
		t.Fatalf("load miss = %+v", de)
	}

	f.do(t, http.MethodPost, "/sessions/"+a+"/move", chessdto.MoveRequest{From: "d2", To: "d4"}, nil)
	var saved chessdto.ActionResponse
	if code := f.do(t, http.MethodPost, "/sessions/"+a+"/save", chessdto.SlotRequest{}, &saved); code != http.StatusOK {
		t.Fatalf("save status = %d", code)
	}
	if saved.Message != "Game saved successfully!" {
		t.Fatalf("save message = %q", saved.Message)
	}

	var loaded chessdto.ActionResponse
	if code := f.do(t, http.MethodPost, "/sessions/"+b+"/load", nil, &loaded); code != http.StatusOK {
		t.Fatalf("load status = %d", code)
	}
	if loaded.Session.CurrentTurn != "b" || loaded.Session.Board[4][3] != "wP" {
		t.Fatalf("loaded view = %+v", loaded.Session)
	}

	if code := f.do(t, http.MethodPost, "/sessions/"+a+"/save", chessdto.SlotRequest{Slot: "../escape"}, &de); code != http.StatusBadRequest {
		t.Fatalf("path-like slot status = %d", code)
	}
}

func TestFENAndBoardPNG(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, "").SessionID

	var fen chessdto.FENResponse
	f.do(t, http.MethodGet, "/sessions/"+id+"/fen", nil, &fen)
	if !strings.HasPrefix(fen.FEN, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w") {
		t.Fatalf("fen = %q", fen.FEN)
	}

	resp, err := f.srv.Client().Get(f.srv.URL + "/sessions/" + id + "/board.png?coords=1")
	if err != nil {
		t.Fatalf("get png: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Fatalf("content type = %q", ct)
	}
	img, err := png.Decode(resp.Body)
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if w := img.Bounds().Dx(); w != 32*8+32/3 {
		t.Fatalf("width = %d", w)
	}
}

func TestDeleteSession(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, "").SessionID
	if code := f.do(t, http.MethodDelete, "/sessions/"+id, nil, nil); code != http.StatusNoContent {
		t.Fatalf("delete status = %d", code)
	}
	if code := f.do(t, http.MethodDelete, "/sessions/"+id, nil, &chessdto.DomainError{}); code != http.StatusNotFound {
		t.Fatalf("second delete status = %d", code)
	}
}

func TestAccessLog(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodGet, "/health", nil, &chessdto.HealthResponse{})
	entries := f.logs.FilterMessage("http_request").All()
	if len(entries) == 0 {
		t.Fatal("no access log entry")
	}
	fields := entries[len(entries)-1].ContextMap()
	if fields["path"] != "/health" || fields["status"] != int64(http.StatusOK) {
		t.Fatalf("fields = %v", fields)
	}
}

func TestWebSocketStream(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, "").SessionID

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	wsURL := "ws" + strings.TrimPrefix(f.srv.URL, "http") + "/sessions/" + id + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	var first chessdto.SessionEvent
	if err := wsjson.Read(ctx, conn, &first); err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	if first.Kind != "snapshot" || first.Session.SessionID != id {
		t.Fatalf("first frame = %+v", first)
	}

	if code := f.do(t, http.MethodPost, "/sessions/"+id+"/move", chessdto.MoveRequest{From: "e2", To: "e4"}, nil); code != http.StatusOK {
		t.Fatalf("move status = %d", code)
	}
	var ev chessdto.SessionEvent
	if err := wsjson.Read(ctx, conn, &ev); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if ev.Kind != string(session.EventMoved) || ev.Outcome == nil || ev.Outcome.Move != "e2e4" {
		t.Fatalf("event = %+v", ev)
	}

	if err := f.mgr.Delete(id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	var gone chessdto.SessionEvent
	if err := wsjson.Read(ctx, conn, &gone); err != nil {
		t.Fatalf("read deleted: %v", err)
	}
	if gone.Kind != string(session.EventDeleted) {
		t.Fatalf("kind = %q", gone.Kind)
	}
	_, _, err = conn.Read(ctx)
	if websocket.CloseStatus(err) != websocket.StatusNormalClosure {
		t.Fatalf("close err = %v", err)
	}
}
