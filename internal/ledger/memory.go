package ledger

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/KLM-Solutions/swarm-bot/internal/domain"
)

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]domain.AppointmentRecord
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]domain.AppointmentRecord)}
}

func (s *MemoryStore) Insert(_ context.Context, rec domain.AppointmentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[rec.Key()]; ok {
		return ErrSlotTaken
	}
	s.records[rec.Key()] = rec
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]domain.AppointmentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.AppointmentRecord, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r)
	}
	slices.SortFunc(out, func(a, b domain.AppointmentRecord) int {
		return cmp.Compare(a.Key(), b.Key())
	})
	return out, nil
}

func (s *MemoryStore) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.records)
	return nil
}
