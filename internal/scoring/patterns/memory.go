package patterns

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/common/errors"
	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/models"
)

// MemoryStore is a process-local Store used by the CLI preview and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	patterns map[string]*models.ScoringPattern
	seq      map[string]int
	next     int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		patterns: make(map[string]*models.ScoringPattern),
		seq:      make(map[string]int),
	}
}

func clonePattern(p *models.ScoringPattern) *models.ScoringPattern {
	c := *p
	c.Configuration = append(json.RawMessage(nil), p.Configuration...)
	if p.LastUsedAt != nil {
		t := *p.LastUsedAt
		c.LastUsedAt = &t
	}
	return &c
}

func (m *MemoryStore) Create(_ context.Context, p *models.ScoringPattern) (*models.ScoringPattern, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.patterns[p.ID]; exists {
		return nil, errors.NewConflictError(resourceName, p.ID, "id already exists")
	}
	stored := clonePattern(p)
	stored.UsageCount = 0
	stored.LastUsedAt = nil
	stored.UpdatedAt = stored.CreatedAt
	m.patterns[p.ID] = stored
	m.seq[p.ID] = m.next
	m.next++
	return clonePattern(stored), nil
}

func (m *MemoryStore) GetByID(_ context.Context, id string) (*models.ScoringPattern, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.patterns[id]
	if !ok {
		return nil, notFound(id)
	}
	return clonePattern(p), nil
}

func (m *MemoryStore) ListByCategory(_ context.Context, category models.PatternCategory) ([]*models.ScoringPattern, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*models.ScoringPattern, 0, len(m.patterns))
	for _, p := range m.patterns {
		if category == "" || p.Category == category {
			out = append(out, clonePattern(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return m.seq[out[i].ID] > m.seq[out[j].ID]
	})
	return out, nil
}

func (m *MemoryStore) Update(_ context.Context, id string, upd models.PatternUpdate, at time.Time) (*models.ScoringPattern, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.patterns[id]
	if !ok {
		return nil, notFound(id)
	}
	merged := upd.Apply(*p)
	merged.UpdatedAt = at
	m.patterns[id] = &merged
	return clonePattern(&merged), nil
}

func (m *MemoryStore) ToggleActive(_ context.Context, id string, at time.Time) (*models.ScoringPattern, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.patterns[id]
	if !ok {
		return nil, notFound(id)
	}
	p.IsActive = !p.IsActive
	p.UpdatedAt = at
	return clonePattern(p), nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.patterns[id]; !ok {
		return notFound(id)
	}
	delete(m.patterns, id)
	delete(m.seq, id)
	return nil
}

func (m *MemoryStore) IncrementUsage(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.patterns[id]
	if !ok {
		return notFound(id)
	}
	p.UsageCount++
	t := at
	p.LastUsedAt = &t
	return nil
}
