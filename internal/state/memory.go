// Package state provides run persistence implementations.
package state

import (
	"context"
	"sync"

	"github.com/hammamikhairi/mela2mealie/internal/domain"
	"github.com/hammamikhairi/mela2mealie/internal/logger"
)

// Compile-time interface check.
var _ domain.RunStore = (*MemoryStore)(nil)

// MemoryStore is an in-memory run store. Safe for concurrent access.
type MemoryStore struct {
	mu   sync.RWMutex
	runs map[string]*domain.Run
	log  *logger.Logger
}

// NewMemoryStore creates an empty in-memory run store.
func NewMemoryStore(log *logger.Logger) *MemoryStore {
	return &MemoryStore{
		runs: make(map[string]*domain.Run),
		log:  log,
	}
}

// Save persists a run. Overwrites if it already exists. The store keeps a
// snapshot, so readers never observe the caller's later mutations.
func (s *MemoryStore) Save(ctx context.Context, run *domain.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.log.Debug("saving run %s (phase=%s, %d/%d)", run.ID, run.Phase, run.Position, run.Total)
	s.runs[run.ID] = snapshot(run)
	return nil
}

// Load retrieves a run by ID.
func (s *MemoryStore) Load(ctx context.Context, id string) (*domain.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	if !ok {
		s.log.Debug("run not found: %s", id)
		return nil, domain.ErrNotFound
	}
	return run, nil
}

// ListActive returns all runs that have not reached the reporting phase.
func (s *MemoryStore) ListActive(ctx context.Context) ([]*domain.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.Run
	for _, run := range s.runs {
		if run.Phase != domain.PhaseReporting {
			out = append(out, run)
		}
	}
	return out, nil
}

// snapshot copies a run deeply enough that the engine can keep mutating
// its own copy without racing store readers.
func snapshot(run *domain.Run) *domain.Run {
	cp := *run
	if len(run.Outcomes) > 0 {
		cp.Outcomes = make([]*domain.RecipeOutcome, len(run.Outcomes))
		for i, o := range run.Outcomes {
			oc := *o
			cp.Outcomes[i] = &oc
		}
	}
	return &cp
}
