// Package memory provides an in-process UserStore for tests and local runs.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hongminglow/all-in-auth/internal/models"
	"github.com/hongminglow/all-in-auth/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// Store keeps users in a map keyed by username.
type Store struct {
	mu     sync.RWMutex
	users  map[string]models.User
	nextID int64
	now    func() time.Time
}

// NewUserStore returns an empty store.
func NewUserStore() *Store {
	return &Store{users: make(map[string]models.User), now: time.Now}
}

// Close is a no-op.
func (s *Store) Close() error { return nil }

// CreateUser inserts a user, rejecting duplicate usernames.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.Username]; ok {
		return models.User{}, storage.ErrAlreadyExists
	}
	s.nextID++
	now := s.now().UTC()
	user.ID = s.nextID
	user.CreatedAt = now
	user.UpdatedAt = now
	s.users[user.Username] = user
	return user, nil
}

// FindByUsername fetches a user by username.
func (s *Store) FindByUsername(ctx context.Context, username string) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[username]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return user, nil
}

// UpdatePasswordHash replaces the stored hash for username.
func (s *Store) UpdatePasswordHash(ctx context.Context, username, passwordHash string) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[username]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	user.PasswordHash = passwordHash
	user.UpdatedAt = s.now().UTC()
	s.users[username] = user
	return user, nil
}

// ListUsers returns every user ordered by id.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
