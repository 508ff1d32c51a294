package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/campusmarket-server/internal/apierror"
	"github.com/dtroode/campusmarket-server/internal/mocks"
	"github.com/dtroode/campusmarket-server/internal/model"
	"github.com/dtroode/campusmarket-server/internal/testutil"
)

func newTestMessage() (*Message, *mocks.MessageStore, *mocks.UserStore) {
	store := &mocks.MessageStore{}
	users := &mocks.UserStore{}
	return NewMessage(store, users, testutil.MakeNoopLogger()), store, users
}

var bob = model.User{Email: "bob@mit.edu", FirstName: "Bob", LastName: "Jones", University: alice.University}

func TestMessage_Send(t *testing.T) {
	svc, store, users := newTestMessage()

	users.On("GetByEmail", mock.Anything, "bob@mit.edu").Return(bob, nil)
	store.On("Create", mock.Anything, mock.MatchedBy(func(m model.Message) bool {
		return m.SenderEmail == "alice@mit.edu" &&
			m.RecipientEmail == "bob@mit.edu" &&
			m.Text == "Is the desk still available?" &&
			!m.SentAt.IsZero()
	})).Return(model.Message{Text: "Is the desk still available?"}, nil)

	got, err := svc.Send(context.Background(), alice, " Bob@MIT.edu ", "<b>Is the desk still available?</b>")
	require.NoError(t, err)
	assert.Equal(t, "Is the desk still available?", got.Text)
	store.AssertExpectations(t)
}

func TestMessage_Send_Failures(t *testing.T) {
	tests := []struct {
		name      string
		recipient string
		text      string
		setup     func(users *mocks.UserStore)
		kind      apierror.Kind
	}{
		{name: "empty text", recipient: "bob@mit.edu", text: "  ", kind: apierror.KindValidation},
		{name: "too long", recipient: "bob@mit.edu", text: strings.Repeat("a", model.MaxMessageLength+1), kind: apierror.KindValidation},
		{name: "to self", recipient: "alice@mit.edu", text: "hi", kind: apierror.KindValidation},
		{
			name:      "unknown recipient",
			recipient: "ghost@mit.edu",
			text:      "hi",
			setup: func(users *mocks.UserStore) {
				users.On("GetByEmail", mock.Anything, "ghost@mit.edu").Return(model.User{}, model.ErrNotFound)
			},
			kind: apierror.KindNotFound,
		},
		{
			name:      "other university",
			recipient: "carl@harvard.edu",
			text:      "hi",
			setup: func(users *mocks.UserStore) {
				users.On("GetByEmail", mock.Anything, "carl@harvard.edu").
					Return(model.User{Email: "carl@harvard.edu", University: "Harvard University"}, nil)
			},
			kind: apierror.KindNotFound,
		},
		{
			name:      "user store down",
			recipient: "bob@mit.edu",
			text:      "hi",
			setup: func(users *mocks.UserStore) {
				users.On("GetByEmail", mock.Anything, "bob@mit.edu").Return(model.User{}, errors.New("db down"))
			},
			kind: apierror.KindInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, users := newTestMessage()
			if tt.setup != nil {
				tt.setup(users)
			}

			_, err := svc.Send(context.Background(), alice, tt.recipient, tt.text)
			requireKind(t, err, tt.kind)
			store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestMessage_Conversation(t *testing.T) {
	svc, store, _ := newTestMessage()
	msgs := []model.Message{{Text: "a"}, {Text: "b"}}
	store.On("Conversation", mock.Anything, "alice@mit.edu", "bob@mit.edu").Return(msgs, nil)

	got, err := svc.Conversation(context.Background(), alice, "BOB@mit.edu")
	require.NoError(t, err)
	assert.Equal(t, msgs, got)

	svc, store, _ = newTestMessage()
	store.On("Conversation", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("db down"))
	_, err = svc.Conversation(context.Background(), alice, "bob@mit.edu")
	requireKind(t, err, apierror.KindInternal)
}

func TestMessage_Threads(t *testing.T) {
	svc, store, users := newTestMessage()
	later := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	earlier := later.Add(-time.Hour)

	store.On("LatestPerCounterpart", mock.Anything, "alice@mit.edu").Return([]model.Message{
		{SenderEmail: "bob@mit.edu", RecipientEmail: "alice@mit.edu", Text: "sure", SentAt: later},
		{SenderEmail: "alice@mit.edu", RecipientEmail: "gone@mit.edu", Text: "hello?", SentAt: earlier},
	}, nil)
	users.On("GetByEmail", mock.Anything, "bob@mit.edu").Return(bob, nil)
	users.On("GetByEmail", mock.Anything, "gone@mit.edu").Return(model.User{}, model.ErrNotFound)

	got, err := svc.Threads(context.Background(), alice)
	require.NoError(t, err)
	assert.Equal(t, []model.Thread{
		{OtherEmail: "bob@mit.edu", Name: "Bob Jones", LastMessage: "sure", LastAt: later},
		{OtherEmail: "gone@mit.edu", Name: "gone@mit.edu", LastMessage: "hello?", LastAt: earlier},
	}, got)
}
