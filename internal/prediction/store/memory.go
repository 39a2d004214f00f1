// Package store persists prediction outcomes. The in-memory store backs
// unit tests and single-node development; postgres is the real deployment.
package store

import (
	"context"
	"sync"

	"olea/internal/prediction/models"
	id "olea/pkg/domain"
	dErrors "olea/pkg/domain-errors"
)

// InMemory keeps outcomes in a map under a mutex.
type InMemory struct {
	mu       sync.RWMutex
	outcomes map[id.PredictionID]models.Outcome
}

func NewInMemory() *InMemory {
	return &InMemory{outcomes: make(map[id.PredictionID]models.Outcome)}
}

func (s *InMemory) Create(ctx context.Context, outcome *models.Outcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.outcomes[outcome.ID]; exists {
		return dErrors.Newf(dErrors.CodeConflict, "prediction %s already exists", outcome.ID)
	}
	s.outcomes[outcome.ID] = *outcome
	return nil
}

func (s *InMemory) Get(ctx context.Context, pid id.PredictionID) (*models.Outcome, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	outcome, ok := s.outcomes[pid]
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "prediction %s not found", pid)
	}
	return &outcome, nil
}

func (s *InMemory) List(ctx context.Context, limit int) ([]models.Outcome, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Outcome, 0, len(s.outcomes))
	for _, o := range s.outcomes {
		out = append(out, o)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
