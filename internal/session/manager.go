package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/park285/cheese-chess/internal/archive"
	"github.com/park285/cheese-chess/internal/chess"
	"github.com/park285/cheese-chess/internal/domain"
	"github.com/park285/cheese-chess/internal/notation"
	"github.com/park285/cheese-chess/internal/obslog"
	"github.com/park285/cheese-chess/internal/store"
	"go.uber.org/zap"
)

var ErrNotFound = errors.New("session not found")

// EventKind names what changed in a published Event.
type EventKind string

const (
	EventSelected  EventKind = "selected"
	EventCleared   EventKind = "cleared"
	EventMoved     EventKind = "moved"
	EventCheckmate EventKind = "checkmate"
	EventLoaded    EventKind = "loaded"
	EventDeleted   EventKind = "deleted"
)

type Event struct {
	Kind     EventKind
	Outcome  Outcome
	Snapshot Snapshot
}

// subscriberBuffer bounds each subscriber channel; slow readers drop events.
const subscriberBuffer = 16

type entry struct {
	mu   sync.Mutex
	sess *Session
	subs map[chan Event]struct{}
}

type Options struct {
	Store       store.Store
	Archive     archive.Repository
	DefaultSlot string
	// Start is cloned for every new session without an explicit position.
	Start  *chess.GameState
	Logger *zap.Logger
}

type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*entry

	store       store.Store
	archive     archive.Repository
	defaultSlot string
	start       *chess.GameState
	log         *zap.Logger
}

func NewManager(opts Options) *Manager {
	m := &Manager{
		sessions:    make(map[string]*entry),
		store:       opts.Store,
		archive:     opts.Archive,
		defaultSlot: strings.TrimSpace(opts.DefaultSlot),
		start:       opts.Start,
		log:         opts.Logger,
	}
	if m.store == nil {
		m.store = store.NewMemoryStore()
	}
	if m.archive == nil {
		m.archive = archive.NewMemoryRepository()
	}
	if m.defaultSlot == "" {
		m.defaultSlot = store.DefaultSlot
	}
	if m.start == nil {
		m.start = chess.NewInitialState()
	}
	if m.log == nil {
		m.log = obslog.L()
	}
	return m
}

// Create starts a new session, from state when given.
func (m *Manager) Create(ctx context.Context, state *chess.GameState) Snapshot {
	if state == nil {
		state = m.start
	}
	s := New(uuid.NewString(), state)
	e := &entry{sess: s, subs: make(map[chan Event]struct{})}

	m.mu.Lock()
	m.sessions[s.ID] = e
	m.mu.Unlock()

	m.log.Info("session_create", zap.String("session_id", s.ID), zap.String("turn", s.State.Turn.String()))
	return s.Snapshot()
}

func (m *Manager) lookup(id string) (*entry, error) {
	m.mu.RLock()
	e, ok := m.sessions[strings.TrimSpace(id)]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return e, nil
}

// with runs fn under the session lock and publishes the resulting event.
func (m *Manager) with(id string, fn func(s *Session) (*Event, error)) (Snapshot, error) {
	e, err := m.lookup(id)
	if err != nil {
		return Snapshot{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	ev, err := fn(e.sess)
	snap := e.sess.Snapshot()
	if err != nil {
		return snap, err
	}
	if ev != nil {
		ev.Snapshot = snap
		e.publish(*ev)
	}
	return snap, nil
}

func (m *Manager) Get(id string) (Snapshot, error) {
	return m.with(id, func(*Session) (*Event, error) { return nil, nil })
}

// List returns snapshots of every live session.
func (m *Manager) List() []Snapshot {
	m.mu.RLock()
	entries := make([]*entry, 0, len(m.sessions))
	for _, e := range m.sessions {
		entries = append(entries, e)
	}
	m.mu.RUnlock()
	out := make([]Snapshot, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		out = append(out, e.sess.Snapshot())
		e.mu.Unlock()
	}
	return out
}

func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	e, ok := m.sessions[strings.TrimSpace(id)]
	delete(m.sessions, strings.TrimSpace(id))
	m.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	e.mu.Lock()
	e.publish(Event{Kind: EventDeleted, Snapshot: e.sess.Snapshot()})
	for ch := range e.subs {
		close(ch)
	}
	e.subs = map[chan Event]struct{}{}
	e.mu.Unlock()
	m.log.Info("session_delete", zap.String("session_id", id))
	return nil
}

// Destinations returns the pseudo-legal destinations of the piece on sq
// without changing the selection.
func (m *Manager) Destinations(id string, sq chess.Square) ([]chess.Square, error) {
	var out []chess.Square
	_, err := m.with(id, func(s *Session) (*Event, error) {
		if !sq.Valid() {
			return nil, ErrInvalidSquare
		}
		out = chess.LegalDestinations(&s.State.Board, sq).Sorted()
		return nil, nil
	})
	return out, err
}

func (m *Manager) Click(ctx context.Context, id string, sq chess.Square) (Outcome, Snapshot, error) {
	var out Outcome
	snap, err := m.with(id, func(s *Session) (*Event, error) {
		o, err := s.Click(sq)
		if err != nil {
			return nil, err
		}
		out = o
		return m.afterAction(ctx, s, o), nil
	})
	return out, snap, err
}

func (m *Manager) Select(id string, sq chess.Square) (Snapshot, error) {
	return m.with(id, func(s *Session) (*Event, error) {
		if _, err := s.Select(sq); err != nil {
			return nil, err
		}
		return &Event{Kind: EventSelected, Outcome: Outcome{Selected: true}}, nil
	})
}

func (m *Manager) Move(ctx context.Context, id string, from, to chess.Square) (Outcome, Snapshot, error) {
	var out Outcome
	snap, err := m.with(id, func(s *Session) (*Event, error) {
		o, err := s.Move(from, to)
		if err != nil {
			m.log.Debug("session_move_rejected", zap.String("session_id", s.ID),
				zap.String("from", from.String()), zap.String("to", to.String()), zap.Error(err))
			return nil, err
		}
		out = o
		return m.afterAction(ctx, s, o), nil
	})
	return out, snap, err
}

func (m *Manager) afterAction(ctx context.Context, s *Session, o Outcome) *Event {
	switch {
	case o.Checkmate:
		m.log.Info("session_checkmate", zap.String("session_id", s.ID),
			zap.String("winner", s.Winner.String()), zap.Int("plies", len(s.Moves)))
		m.archiveResult(ctx, s)
		return &Event{Kind: EventCheckmate, Outcome: o}
	case o.Moved:
		m.log.Info("session_move", zap.String("session_id", s.ID), zap.String("move", o.Move.String()),
			zap.String("captured", o.Captured.Code()), zap.Bool("check", o.Check))
		return &Event{Kind: EventMoved, Outcome: o}
	case o.Selected:
		return &Event{Kind: EventSelected, Outcome: o}
	case o.Cleared:
		return &Event{Kind: EventCleared, Outcome: o}
	}
	return nil
}

func (m *Manager) archiveResult(ctx context.Context, s *Session) {
	record, err := store.Marshal(s.State)
	if err != nil {
		m.log.Warn("archive_encode_failed", zap.String("session_id", s.ID), zap.Error(err))
		return
	}
	moves := make([]string, 0, len(s.Moves))
	for _, mv := range s.Moves {
		moves = append(moves, mv.String())
	}
	res := &domain.GameResult{
		SessionID:   s.ID,
		Winner:      s.Winner.String(),
		Loser:       s.Winner.Opponent().String(),
		Method:      StatusCheckmate.String(),
		MovesCoord:  moves,
		FinalRecord: record,
		FinalFEN:    notation.ToFEN(s.State),
		StartedAt:   s.StartedAt,
		EndedAt:     s.UpdatedAt,
		Duration:    s.UpdatedAt.Sub(s.StartedAt),
	}
	if err := m.archive.SaveResult(ctx, res); err != nil {
		m.log.Warn("archive_save_failed", zap.String("session_id", s.ID), zap.Error(err))
	}
}

// Save writes the session state to slot (the default slot when empty).
func (m *Manager) Save(ctx context.Context, id, slot string) error {
	slot = m.slot(slot)
	_, err := m.with(id, func(s *Session) (*Event, error) {
		return nil, s.Save(ctx, m.store, slot)
	})
	if err != nil {
		m.log.Warn("session_save_failed", zap.String("session_id", id), zap.String("slot", slot), zap.Error(err))
	}
	return err
}

// Load replaces the session state from slot; the session is untouched on error.
func (m *Manager) Load(ctx context.Context, id, slot string) (Snapshot, error) {
	slot = m.slot(slot)
	snap, err := m.with(id, func(s *Session) (*Event, error) {
		if err := s.Load(ctx, m.store, slot); err != nil {
			return nil, err
		}
		return &Event{Kind: EventLoaded}, nil
	})
	if errors.Is(err, store.ErrNoState) {
		m.log.Info("session_load_miss", zap.String("session_id", id), zap.String("slot", slot), zap.Error(err))
	}
	return snap, err
}

func (m *Manager) slot(slot string) string {
	if strings.TrimSpace(slot) == "" {
		return m.defaultSlot
	}
	return strings.TrimSpace(slot)
}

func (m *Manager) RecentResults(ctx context.Context, limit int) ([]*domain.GameResult, error) {
	return m.archive.RecentResults(ctx, limit)
}

// Subscribe streams events for one session. The channel is closed when the
// session is deleted or cancel is called.
func (m *Manager) Subscribe(id string) (<-chan Event, func(), error) {
	e, err := m.lookup(id)
	if err != nil {
		return nil, nil, err
	}
	ch := make(chan Event, subscriberBuffer)
	e.mu.Lock()
	e.subs[ch] = struct{}{}
	e.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			e.mu.Lock()
			if _, ok := e.subs[ch]; ok {
				delete(e.subs, ch)
				close(ch)
			}
			e.mu.Unlock()
		})
	}
	return ch, cancel, nil
}

// publish must be called with e.mu held.
func (e *entry) publish(ev Event) {
	for ch := range e.subs {
		select {
		case ch <- ev:
		default:
			obslog.L().Warn("session_event_dropped", zap.String("session_id", ev.Snapshot.ID), zap.String("kind", string(ev.Kind)))
		}
	}
}
