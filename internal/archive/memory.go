package archive

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/park285/cheese-chess/internal/domain"
)

// memrepo is used when no DATABASE_URL is configured.
type memrepo struct {
	mu      sync.RWMutex
	nextID  int64
	results map[string]*domain.GameResult // session id -> result
}

func NewMemoryRepository() Repository {
	return &memrepo{results: make(map[string]*domain.GameResult)}
}

func (m *memrepo) SaveResult(ctx context.Context, r *domain.GameResult) error {
	if r == nil {
		return nil
	}
	if r.Movetext == "" {
		r.Movetext = BuildMovetext(r)
	}
	key := strings.TrimSpace(r.SessionID)

	m.mu.Lock()
	defer m.mu.Unlock()
	if prev, ok := m.results[key]; ok {
		r.ID = prev.ID
	} else {
		m.nextID++
		r.ID = m.nextID
	}
	copy := *r
	copy.MovesCoord = append([]string(nil), r.MovesCoord...)
	m.results[key] = &copy
	return nil
}

func (m *memrepo) RecentResults(ctx context.Context, limit int) ([]*domain.GameResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	items := make([]*domain.GameResult, 0, len(m.results))
	for _, r := range m.results {
		copy := *r
		items = append(items, &copy)
	}
	// EndedAt desc, ID desc on ties
	sort.Slice(items, func(i, j int) bool {
		if !items[i].EndedAt.Equal(items[j].EndedAt) {
			return items[i].EndedAt.After(items[j].EndedAt)
		}
		return items[i].ID > items[j].ID
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}
