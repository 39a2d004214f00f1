// Package store persists form submissions: memory for unit tests and
// development, postgres for deployments.
package store

import (
	"context"
	"sort"
	"sync"

	"olea/internal/form"
	id "olea/pkg/domain"
	dErrors "olea/pkg/domain-errors"
)

type InMemory struct {
	mu    sync.RWMutex
	forms map[id.FormID]form.Submission
}

func NewInMemory() *InMemory {
	return &InMemory{forms: make(map[id.FormID]form.Submission)}
}

func (s *InMemory) Create(ctx context.Context, sub *form.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.forms[sub.ID]; exists {
		return dErrors.Newf(dErrors.CodeConflict, "form %s already exists", sub.ID)
	}
	s.forms[sub.ID] = clone(sub)
	return nil
}

func (s *InMemory) Get(ctx context.Context, fid id.FormID) (*form.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, ok := s.forms[fid]
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "form %s not found", fid)
	}
	out := clone(&sub)
	return &out, nil
}

func (s *InMemory) List(ctx context.Context, limit int) ([]form.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]form.Submission, 0, len(s.forms))
	for _, sub := range s.forms {
		out = append(out, clone(&sub))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *InMemory) Update(ctx context.Context, sub *form.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.forms[sub.ID]; !ok {
		return dErrors.Newf(dErrors.CodeNotFound, "form %s not found", sub.ID)
	}
	s.forms[sub.ID] = clone(sub)
	return nil
}

func (s *InMemory) Delete(ctx context.Context, fid id.FormID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.forms[fid]; !ok {
		return dErrors.Newf(dErrors.CodeNotFound, "form %s not found", fid)
	}
	delete(s.forms, fid)
	return nil
}

func clone(sub *form.Submission) form.Submission {
	out := *sub
	out.Record = sub.Record.Clone()
	return out
}
