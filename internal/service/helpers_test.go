package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dtroode/campusmarket-server/internal/apierror"
	"github.com/dtroode/campusmarket-server/internal/model"
	"github.com/dtroode/campusmarket-server/internal/password"
	"github.com/dtroode/campusmarket-server/internal/university"
)

var testHasher = password.NewHasher(bcrypt.MinCost)

func testDirectory(t *testing.T) *university.Directory {
	t.Helper()
	d, err := university.NewDirectory([]university.Entry{
		{Name: "State U", Domains: []string{"school.edu"}},
		{Name: "Massachusetts Institute of Technology", Domains: []string{"mit.edu"}},
	})
	require.NoError(t, err)
	return d
}

func mustHash(t *testing.T, plain string) string {
	t.Helper()
	h, err := testHasher.Hash(plain)
	require.NoError(t, err)
	return h
}

func requireKind(t *testing.T, err error, kind apierror.Kind) *apierror.APIError {
	t.Helper()
	require.Error(t, err)
	apiErr, ok := apierror.As(err)
	require.True(t, ok, "expected APIError, got %v", err)
	require.Equal(t, kind, apiErr.Kind, apiErr.Message)
	return apiErr
}

// memoryUserStore is a UserStore backed by a map.
type memoryUserStore struct {
	mu    sync.Mutex
	users map[string]model.User
}

func newMemoryUserStore() *memoryUserStore {
	return &memoryUserStore{users: make(map[string]model.User)}
}

func (s *memoryUserStore) Create(_ context.Context, user model.User) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.Email]; ok {
		return model.User{}, model.ErrAlreadyExists
	}
	s.users[user.Email] = user
	return user, nil
}

func (s *memoryUserStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	if !ok {
		return model.User{}, model.ErrNotFound
	}
	return u, nil
}

func (s *memoryUserStore) MarkVerified(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	if !ok {
		return model.ErrNotFound
	}
	u.Verified = true
	s.users[email] = u
	return nil
}

func (s *memoryUserStore) SetPasswordHash(_ context.Context, email, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	if !ok {
		return model.ErrNotFound
	}
	u.PasswordHash = hash
	s.users[email] = u
	return nil
}
