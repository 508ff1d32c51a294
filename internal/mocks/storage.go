package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/dtroode/campusmarket-server/internal/model"
)

// Storage is a mock type for the Storage type
type Storage struct {
	mock.Mock
}

var _ model.Storage = (*Storage)(nil)

// Upload provides a mock function with given fields: ctx, key, reader, size, contentType
func (_m *Storage) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	ret := _m.Called(ctx, key, reader, size, contentType)
	return ret.Error(0)
}

// Delete provides a mock function with given fields: ctx, key
func (_m *Storage) Delete(ctx context.Context, key string) error {
	ret := _m.Called(ctx, key)
	return ret.Error(0)
}

// Exists provides a mock function with given fields: ctx, key
func (_m *Storage) Exists(ctx context.Context, key string) (bool, error) {
	ret := _m.Called(ctx, key)
	return ret.Bool(0), ret.Error(1)
}

// URL provides a mock function with given fields: key
func (_m *Storage) URL(key string) string {
	ret := _m.Called(key)
	return ret.String(0)
}

// KeyFromURL provides a mock function with given fields: url
func (_m *Storage) KeyFromURL(url string) (string, bool) {
	ret := _m.Called(url)
	return ret.String(0), ret.Bool(1)
}
