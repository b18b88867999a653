package history

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps reports in process memory. It backs tests and
// single-shot CLI runs.
type MemoryStore struct {
	mu      sync.RWMutex
	reports map[string]*Report
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{reports: make(map[string]*Report)}
}

func (m *MemoryStore) Save(_ context.Context, r *Report) error {
	if err := prepare(r); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, dup := m.reports[r.ID]; dup {
		return fmt.Errorf("history: report %s already exists", r.ID)
	}
	m.reports[r.ID] = clone(r)
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.reports[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(r), nil
}

func (m *MemoryStore) List(_ context.Context, limit int) ([]*Report, error) {
	m.mu.RLock()
	all := make([]*Report, 0, len(m.reports))
	for _, r := range m.reports {
		all = append(all, r)
	}
	m.mu.RUnlock()

	sortNewestFirst(all)
	if n := normalizeLimit(limit); len(all) > n {
		all = all[:n]
	}
	out := make([]*Report, len(all))
	for i, r := range all {
		out[i] = clone(r)
	}
	return out, nil
}

func (m *MemoryStore) Previous(_ context.Context, canonicalURL string, before time.Time) (*Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var best *Report
	for _, r := range m.reports {
		if r.CanonicalURL != canonicalURL || !r.CreatedAt.Before(before) {
			continue
		}
		if best == nil || r.CreatedAt.After(best.CreatedAt) {
			best = r
		}
	}
	if best == nil {
		return nil, ErrNotFound
	}
	return clone(best), nil
}

func (m *MemoryStore) Close() error { return nil }

func sortNewestFirst(rs []*Report) {
	sort.Slice(rs, func(i, j int) bool {
		if !rs[i].CreatedAt.Equal(rs[j].CreatedAt) {
			return rs[i].CreatedAt.After(rs[j].CreatedAt)
		}
		return rs[i].ID < rs[j].ID
	})
}

func clone(r *Report) *Report {
	cp := *r
	cp.Result.Degraded = append(cp.Result.Degraded[:0:0], r.Result.Degraded...)
	cp.Result.Evidence = append(cp.Result.Evidence[:0:0], r.Result.Evidence...)
	return &cp
}
