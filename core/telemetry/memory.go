package telemetry

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/kfadel/gridops/core/model"
)

// MemoryStore is an in-memory Store keeping readings sorted by timestamp per
// unit. Safe for concurrent use.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]model.Reading
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string][]model.Reading{}}
}

// Append inserts a reading, keeping the per-unit slice ordered by timestamp.
func (s *MemoryStore) Append(_ context.Context, r model.Reading) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rs := s.data[r.UnitID]
	i := sort.Search(len(rs), func(i int) bool { return rs[i].Timestamp.After(r.Timestamp) })
	rs = append(rs, model.Reading{})
	copy(rs[i+1:], rs[i:])
	rs[i] = r
	s.data[r.UnitID] = rs
	return nil
}

// Readings implements Store.
func (s *MemoryStore) Readings(_ context.Context, unitID string, from, to time.Time) ([]model.Reading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Reading
	for _, r := range s.data[unitID] {
		if r.Timestamp.Before(from) || r.Timestamp.After(to) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// LatestReading implements Store.
func (s *MemoryStore) LatestReading(_ context.Context, unitID string) (model.Reading, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rs := s.data[unitID]
	if len(rs) == 0 {
		return model.Reading{}, false, nil
	}
	return rs[len(rs)-1], true, nil
}

// LatestTemperature implements Store.
func (s *MemoryStore) LatestTemperature(_ context.Context, unitID string) (model.Reading, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rs := s.data[unitID]
	for i := len(rs) - 1; i >= 0; i-- {
		if rs[i].HasTemperature() {
			return rs[i], true, nil
		}
	}
	return model.Reading{}, false, nil
}
