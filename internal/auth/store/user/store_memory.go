package user

import (
	"context"
	"fmt"
	"sync"

	"digipraman/internal/auth/models"
	id "digipraman/pkg/domain"
	"digipraman/pkg/platform/sentinel"
)

// InMemoryUserStore indexes users by id and mobile.
type InMemoryUserStore struct {
	mu       sync.RWMutex
	users    map[id.UserID]*models.User
	byMobile map[string]id.UserID
}

func New() *InMemoryUserStore {
	return &InMemoryUserStore{
		users:    make(map[id.UserID]*models.User),
		byMobile: make(map[string]id.UserID),
	}
}

func (s *InMemoryUserStore) Save(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveLocked(user)
	return nil
}

func (s *InMemoryUserStore) saveLocked(user *models.User) {
	copied := *user
	s.users[user.ID] = &copied
	s.byMobile[user.Mobile] = user.ID
}

func (s *InMemoryUserStore) FindByID(_ context.Context, userID id.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
	}
	copied := *u
	return &copied, nil
}

func (s *InMemoryUserStore) FindByMobile(_ context.Context, mobile string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userID, ok := s.byMobile[mobile]
	if !ok {
		return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
	}
	copied := *s.users[userID]
	return &copied, nil
}

// FindOrCreate returns the user with candidate's mobile, inserting candidate
// when none exists. created reports which happened.
func (s *InMemoryUserStore) FindOrCreate(_ context.Context, candidate *models.User) (*models.User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existingID, ok := s.byMobile[candidate.Mobile]; ok {
		copied := *s.users[existingID]
		return &copied, false, nil
	}
	s.saveLocked(candidate)
	copied := *candidate
	return &copied, true, nil
}

func (s *InMemoryUserStore) Delete(_ context.Context, userID id.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
	}
	delete(s.byMobile, u.Mobile)
	delete(s.users, userID)
	return nil
}
