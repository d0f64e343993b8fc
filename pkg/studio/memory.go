package studio

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryGenerationStore is an in-memory GenerationStore for tests and
// single-process setups.
type MemoryGenerationStore struct {
	mu   sync.RWMutex
	byID map[uuid.UUID][]Generation
}

// NewMemoryGenerationStore creates an empty in-memory store.
func NewMemoryGenerationStore() *MemoryGenerationStore {
	return &MemoryGenerationStore{
		byID: make(map[uuid.UUID][]Generation),
	}
}

func (s *MemoryGenerationStore) CreateGeneration(_ context.Context, gen *Generation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[gen.AccountID] = append(s.byID[gen.AccountID], *gen)
	return nil
}

func (s *MemoryGenerationStore) ListGenerations(_ context.Context, accountID uuid.UUID) ([]Generation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.byID[accountID]
	// Insertion order is oldest first; return a reversed copy.
	out := make([]Generation, 0, len(stored))
	for i := len(stored) - 1; i >= 0; i-- {
		out = append(out, stored[i])
	}
	return out, nil
}
