package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dtroode/campusmarket-server/internal/model"
)

// UserStore is a mock type for the UserStore type
type UserStore struct {
	mock.Mock
}

var _ model.UserStore = (*UserStore)(nil)

// Create provides a mock function with given fields: ctx, user
func (_m *UserStore) Create(ctx context.Context, user model.User) (model.User, error) {
	ret := _m.Called(ctx, user)
	return ret.Get(0).(model.User), ret.Error(1)
}

// GetByEmail provides a mock function with given fields: ctx, email
func (_m *UserStore) GetByEmail(ctx context.Context, email string) (model.User, error) {
	ret := _m.Called(ctx, email)
	return ret.Get(0).(model.User), ret.Error(1)
}

// MarkVerified provides a mock function with given fields: ctx, email
func (_m *UserStore) MarkVerified(ctx context.Context, email string) error {
	ret := _m.Called(ctx, email)
	return ret.Error(0)
}

// SetPasswordHash provides a mock function with given fields: ctx, email, hash
func (_m *UserStore) SetPasswordHash(ctx context.Context, email string, hash string) error {
	ret := _m.Called(ctx, email, hash)
	return ret.Error(0)
}
