package store

import (
	"context"
	"strings"
	"sync"

	"finbank/internal/users/models"
	"finbank/pkg/domain"
	"finbank/pkg/platform/sentinel"
)

// InMemory keeps users in a map, guarded by a single mutex. Email uniqueness
// is tracked case-insensitively through a secondary index.
type InMemory struct {
	mu      sync.RWMutex
	users   map[domain.UserID]*models.User
	byEmail map[string]domain.UserID
}

func NewInMemory() *InMemory {
	return &InMemory{
		users:   make(map[domain.UserID]*models.User),
		byEmail: make(map[string]domain.UserID),
	}
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func cloneUser(u *models.User) *models.User {
	cp := *u
	return &cp
}

// CreateIfEmailAvailable inserts the user unless the email is already taken.
func (s *InMemory) CreateIfEmailAvailable(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := emailKey(user.Email)
	if _, taken := s.byEmail[key]; taken {
		return sentinel.ErrAlreadyUsed
	}
	s.users[user.ID] = cloneUser(user)
	s.byEmail[key] = user.ID
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id domain.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneUser(user), nil
}

func (s *InMemory) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[emailKey(email)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneUser(s.users[id]), nil
}

// Update persists a modified user. An email change that collides with
// another user's address fails with ErrAlreadyUsed.
func (s *InMemory) Update(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.users[user.ID]
	if !ok {
		return sentinel.ErrNotFound
	}

	newKey := emailKey(user.Email)
	oldKey := emailKey(current.Email)
	if newKey != oldKey {
		if owner, taken := s.byEmail[newKey]; taken && owner != user.ID {
			return sentinel.ErrAlreadyUsed
		}
		delete(s.byEmail, oldKey)
		s.byEmail[newKey] = user.ID
	}
	s.users[user.ID] = cloneUser(user)
	return nil
}

func (s *InMemory) Delete(_ context.Context, id domain.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.byEmail, emailKey(user.Email))
	delete(s.users, id)
	return nil
}
