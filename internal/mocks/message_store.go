package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dtroode/campusmarket-server/internal/model"
)

// MessageStore is a mock type for the MessageStore type
type MessageStore struct {
	mock.Mock
}

var _ model.MessageStore = (*MessageStore)(nil)

// Create provides a mock function with given fields: ctx, msg
func (_m *MessageStore) Create(ctx context.Context, msg model.Message) (model.Message, error) {
	ret := _m.Called(ctx, msg)
	return ret.Get(0).(model.Message), ret.Error(1)
}

// Conversation provides a mock function with given fields: ctx, a, b
func (_m *MessageStore) Conversation(ctx context.Context, a string, b string) ([]model.Message, error) {
	ret := _m.Called(ctx, a, b)
	var messages []model.Message
	if v := ret.Get(0); v != nil {
		messages = v.([]model.Message)
	}
	return messages, ret.Error(1)
}

// LatestPerCounterpart provides a mock function with given fields: ctx, email
func (_m *MessageStore) LatestPerCounterpart(ctx context.Context, email string) ([]model.Message, error) {
	ret := _m.Called(ctx, email)
	var messages []model.Message
	if v := ret.Get(0); v != nil {
		messages = v.([]model.Message)
	}
	return messages, ret.Error(1)
}
