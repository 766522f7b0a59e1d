// Package memory provides in-process stores for tests and local runs.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"memberportal/web-service/internal/models"
	"memberportal/web-service/internal/store"

	"github.com/google/uuid"
)

// UserStore keeps users keyed by normalized username. Insert checks
// uniqueness under the same lock, so it never admits duplicates.
type UserStore struct {
	mu      sync.RWMutex
	users   map[string]models.User
	byEmail map[string]string
}

func NewUserStore() *UserStore {
	return &UserStore{
		users:   make(map[string]models.User),
		byEmail: make(map[string]string),
	}
}

func (s *UserStore) FindByIdentifier(ctx context.Context, identifier string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key := store.Normalize(identifier)
	if store.IsEmailIdentifier(identifier) {
		username, ok := s.byEmail[key]
		if !ok {
			return models.User{}, store.ErrUserNotFound
		}
		key = username
	}
	user, ok := s.users[key]
	if !ok {
		return models.User{}, store.ErrUserNotFound
	}
	return user, nil
}

func (s *UserStore) FindConflict(ctx context.Context, username, email string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conflictLocked(username, email)
}

func (s *UserStore) conflictLocked(username, email string) (models.User, error) {
	if user, ok := s.users[store.Normalize(username)]; ok {
		return user, nil
	}
	if key, ok := s.byEmail[store.Normalize(email)]; ok {
		return s.users[key], nil
	}
	return models.User{}, store.ErrUserNotFound
}

func (s *UserStore) Insert(ctx context.Context, in store.NewUser) (models.User, error) {
	role := in.Role
	if role == "" {
		role = models.RoleUser
	}
	if !role.Valid() {
		return models.User{}, store.ErrInvalidRole
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, err := s.conflictLocked(in.Username, in.Email); err == nil {
		return models.User{}, store.ConflictError(existing, in.Username)
	}

	user := models.User{
		UserID:       uuid.NewString(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: in.PasswordHash,
		Role:         role,
		Created:      time.Now().UTC(),
	}
	key := store.Normalize(in.Username)
	s.users[key] = user
	s.byEmail[store.Normalize(in.Email)] = key
	return user, nil
}

func (s *UserStore) ListAll(ctx context.Context) ([]models.UserSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]models.UserSummary, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, models.UserSummary{Username: user.Username, Email: user.Email, Role: user.Role})
	}
	sort.Slice(users, func(i, j int) bool {
		return store.Normalize(users[i].Username) < store.Normalize(users[j].Username)
	})
	return users, nil
}

func (s *UserStore) SetRole(ctx context.Context, username string, role models.Role) error {
	if !role.Valid() {
		return store.ErrInvalidRole
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := store.Normalize(username)
	user, ok := s.users[key]
	if !ok {
		return store.ErrUserNotFound
	}
	user.Role = role
	s.users[key] = user
	return nil
}
