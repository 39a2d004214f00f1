// Package store persists user accounts.
package store

import (
	"context"
	"strings"
	"sync"

	"olea/internal/user"
	id "olea/pkg/domain"
	dErrors "olea/pkg/domain-errors"
)

type InMemory struct {
	mu      sync.RWMutex
	users   map[id.UserID]user.User
	byEmail map[string]id.UserID
}

func NewInMemory() *InMemory {
	return &InMemory{
		users:   make(map[id.UserID]user.User),
		byEmail: make(map[string]id.UserID),
	}
}

func (s *InMemory) Create(ctx context.Context, u *user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(u.Email)
	if _, taken := s.byEmail[key]; taken {
		return dErrors.Newf(dErrors.CodeConflict, "email %s already registered", u.Email)
	}
	s.users[u.ID] = *u
	s.byEmail[key] = u.ID
	return nil
}

func (s *InMemory) Get(ctx context.Context, uid id.UserID) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[uid]
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "user %s not found", uid)
	}
	return &u, nil
}

func (s *InMemory) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	uid, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "user %s not found", email)
	}
	u := s.users[uid]
	return &u, nil
}

func (s *InMemory) List(ctx context.Context, limit int) ([]user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]user.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *InMemory) Update(ctx context.Context, u *user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[u.ID]; !ok {
		return dErrors.Newf(dErrors.CodeNotFound, "user %s not found", u.ID)
	}
	s.users[u.ID] = *u
	return nil
}

func (s *InMemory) Delete(ctx context.Context, uid id.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[uid]
	if !ok {
		return dErrors.Newf(dErrors.CodeNotFound, "user %s not found", uid)
	}
	delete(s.byEmail, strings.ToLower(u.Email))
	delete(s.users, uid)
	return nil
}
