package results

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-memory implementation of Store, used in demo mode
// (no DATABASE_URL) and in tests.
type MemoryStore struct {
	mu      sync.RWMutex
	records []*Output
}

// NewMemoryStore creates a new in-memory results store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Compile-time interface check
var _ Store = (*MemoryStore)(nil)

// Append stores a copy of the record.
func (m *MemoryStore) Append(ctx context.Context, rec *Output) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *rec
	m.records = append(m.records, &cp)
	return nil
}

// QueryFrauds returns matching records, newest first.
func (m *MemoryStore) QueryFrauds(ctx context.Context, probaThreshold *float64) ([]*Output, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var records []*Output
	for _, rec := range m.records {
		if probaThreshold != nil {
			if rec.PredProba == nil || *rec.PredProba < *probaThreshold {
				continue
			}
		} else if !rec.Pred {
			continue
		}
		cp := *rec
		records = append(records, &cp)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Timestamp.After(records[j].Timestamp)
	})

	return records, nil
}

// Len reports how many rows have been appended.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}
