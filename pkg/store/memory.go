package store

import (
	"context"
	"sync"

	"github.com/matzehuels/lineage/pkg/graph"
	"github.com/matzehuels/lineage/pkg/lineage"
)

// MemoryStore keeps records and layouts in maps. Stored values share slices
// with the caller; treat them as immutable after saving.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]lineage.Record
	layouts map[string]graph.Layout
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]lineage.Record),
		layouts: make(map[string]graph.Layout),
	}
}

func (m *MemoryStore) SaveRecord(_ context.Context, rec lineage.Record) error {
	if rec.Entity.ID == "" {
		return errMissingID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.Entity.ID] = rec
	return nil
}

func (m *MemoryStore) Record(_ context.Context, entityID string) (lineage.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[entityID]
	if !ok {
		return lineage.Record{}, ErrNotFound
	}
	return rec, nil
}

func (m *MemoryStore) SaveLayout(_ context.Context, l graph.Layout) error {
	if l.EntityID == "" {
		return errMissingID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.layouts[l.EntityID] = l
	return nil
}

func (m *MemoryStore) Layout(_ context.Context, entityID string) (graph.Layout, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.layouts[entityID]
	if !ok {
		return graph.Layout{}, ErrNotFound
	}
	return l, nil
}

func (m *MemoryStore) Close(context.Context) error { return nil }

var _ Store = (*MemoryStore)(nil)
