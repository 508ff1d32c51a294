package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/dtroode/campusmarket-server/internal/model"
)

// CodeStore is a mock type for the CodeStore type
type CodeStore struct {
	mock.Mock
}

var _ model.CodeStore = (*CodeStore)(nil)

// Replace provides a mock function with given fields: ctx, code, throttleCutoff
func (_m *CodeStore) Replace(ctx context.Context, code model.OneTimeCode, throttleCutoff time.Time) (model.OneTimeCode, bool, error) {
	ret := _m.Called(ctx, code, throttleCutoff)
	return ret.Get(0).(model.OneTimeCode), ret.Bool(1), ret.Error(2)
}

// GetBySubject provides a mock function with given fields: ctx, subject
func (_m *CodeStore) GetBySubject(ctx context.Context, subject string) (model.OneTimeCode, error) {
	ret := _m.Called(ctx, subject)
	return ret.Get(0).(model.OneTimeCode), ret.Error(1)
}

// GetByValue provides a mock function with given fields: ctx, value
func (_m *CodeStore) GetByValue(ctx context.Context, value string) (model.OneTimeCode, error) {
	ret := _m.Called(ctx, value)
	return ret.Get(0).(model.OneTimeCode), ret.Error(1)
}

// DeleteIfMatch provides a mock function with given fields: ctx, code
func (_m *CodeStore) DeleteIfMatch(ctx context.Context, code model.OneTimeCode) (bool, error) {
	ret := _m.Called(ctx, code)
	return ret.Bool(0), ret.Error(1)
}

// DeleteExpired provides a mock function with given fields: ctx, now
func (_m *CodeStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	ret := _m.Called(ctx, now)
	return ret.Get(0).(int64), ret.Error(1)
}
