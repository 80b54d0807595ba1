package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/park285/cheese-chess/internal/adapter/chesspresenter"
	"github.com/park285/cheese-chess/internal/obslog"
	"github.com/park285/cheese-chess/internal/render"
	"github.com/park285/cheese-chess/internal/session"
)

const defaultRequestTimeout = 10 * time.Second

// Server exposes session operations over HTTP and a websocket event stream.
type Server struct {
	r         *chi.Mux
	sessions  *session.Manager
	renderer  render.BoardRenderer
	formatter *chesspresenter.Formatter
	log       *zap.Logger
	timeout   time.Duration
}

type Option func(*Server)

func WithLogger(l *zap.Logger) Option { return func(s *Server) { s.log = l } }

func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func New(mgr *session.Manager, renderer render.BoardRenderer, formatter *chesspresenter.Formatter, opts ...Option) *Server {
	s := &Server{
		r:         chi.NewRouter(),
		sessions:  mgr,
		renderer:  renderer,
		formatter: formatter,
		log:       obslog.L(),
		timeout:   defaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.renderer == nil {
		s.renderer = render.New(render.DefaultSquareSize)
	}

	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(chimw.Recoverer)
	s.r.Use(s.accessLog)

	s.r.Get("/health", s.handleHealth)

	// long-lived stream, outside the request timeout
	s.r.Get("/sessions/{id}/ws", s.handleWS)

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(s.timeout))
		r.Post("/sessions", s.handleCreate)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", s.handleGet)
			r.Delete("/", s.handleDelete)
			r.Get("/destinations", s.handleDestinations)
			r.Post("/click", s.handleClick)
			r.Post("/move", s.handleMove)
			r.Post("/save", s.handleSave)
			r.Post("/load", s.handleLoad)
			r.Get("/fen", s.handleFEN)
			r.Get("/board.png", s.handleBoardPNG)
		})
		r.Get("/results", s.handleResults)
	})

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"code": "not_found", "message": "no route for " + r.URL.Path})
	})
	return s
}

func (s *Server) Handler() http.Handler { return s.r }

// Router exposes the router for tests.
func (s *Server) Router() chi.Router { return s.r }

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info("http_request",
			zap.String("request_id", chimw.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}
