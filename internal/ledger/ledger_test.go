package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/campusmarket-server/internal/mocks"
	"github.com/dtroode/campusmarket-server/internal/model"
	"github.com/dtroode/campusmarket-server/internal/testutil"
)

var testNow = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

func newTestLedger(store model.CodeStore) *Ledger {
	policy := VerificationPolicy()
	policy.Generate = func() (string, error) { return "123456", nil }

	l := New(store, policy, testutil.MakeNoopLogger())
	l.now = func() time.Time { return testNow }
	return l
}

func TestLedger_Issue_Success(t *testing.T) {
	store := &mocks.CodeStore{}
	want := model.OneTimeCode{
		Subject:    "a@mit.edu",
		Value:      "123456",
		ExpiresAt:  testNow.Add(10 * time.Minute),
		LastSentAt: testNow,
	}
	store.On("Replace", mock.Anything, want, testNow.Add(-time.Minute)).Return(want, true, nil)

	code, err := newTestLedger(store).Issue(context.Background(), "a@mit.edu")
	require.NoError(t, err)
	assert.Equal(t, want, code)
	store.AssertExpectations(t)
}

func TestLedger_Issue_Throttled(t *testing.T) {
	store := &mocks.CodeStore{}
	current := model.OneTimeCode{
		Subject:    "a@mit.edu",
		Value:      "654321",
		ExpiresAt:  testNow.Add(9*time.Minute + 40*time.Second),
		LastSentAt: testNow.Add(-20 * time.Second),
	}
	store.On("Replace", mock.Anything, mock.Anything, mock.Anything).Return(current, false, nil)

	_, err := newTestLedger(store).Issue(context.Background(), "a@mit.edu")

	var rl *model.RateLimitedError
	require.ErrorAs(t, err, &rl)
	assert.Equal(t, 40*time.Second, rl.RetryAfter)
	assert.Equal(t, 40, rl.RetryAfterSeconds())
}

func TestLedger_Issue_StoreError(t *testing.T) {
	store := &mocks.CodeStore{}
	store.On("Replace", mock.Anything, mock.Anything, mock.Anything).Return(model.OneTimeCode{}, false, errors.New("db down"))

	_, err := newTestLedger(store).Issue(context.Background(), "a@mit.edu")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}

func TestLedger_ConsumeForSubject(t *testing.T) {
	live := model.OneTimeCode{Subject: "a@mit.edu", Value: "123456", ExpiresAt: testNow.Add(time.Minute), LastSentAt: testNow}
	expired := model.OneTimeCode{Subject: "a@mit.edu", Value: "123456", ExpiresAt: testNow.Add(-time.Second), LastSentAt: testNow.Add(-11 * time.Minute)}

	tests := []struct {
		name     string
		supplied string
		setup    func(store *mocks.CodeStore)
		wantErr  error
	}{
		{
			name:     "no code",
			supplied: "123456",
			setup: func(store *mocks.CodeStore) {
				store.On("GetBySubject", mock.Anything, "a@mit.edu").Return(model.OneTimeCode{}, model.ErrNotFound)
			},
			wantErr: model.ErrCodeNotFound,
		},
		{
			name:     "mismatch keeps code",
			supplied: "000000",
			setup: func(store *mocks.CodeStore) {
				store.On("GetBySubject", mock.Anything, "a@mit.edu").Return(live, nil)
			},
			wantErr: model.ErrCodeInvalid,
		},
		{
			name:     "expired is deleted",
			supplied: "123456",
			setup: func(store *mocks.CodeStore) {
				store.On("GetBySubject", mock.Anything, "a@mit.edu").Return(expired, nil)
				store.On("DeleteIfMatch", mock.Anything, expired).Return(true, nil)
			},
			wantErr: model.ErrCodeExpired,
		},
		{
			name:     "concurrent consume",
			supplied: "123456",
			setup: func(store *mocks.CodeStore) {
				store.On("GetBySubject", mock.Anything, "a@mit.edu").Return(live, nil)
				store.On("DeleteIfMatch", mock.Anything, live).Return(false, nil)
			},
			wantErr: model.ErrCodeNotFound,
		},
		{
			name:     "success",
			supplied: "123456",
			setup: func(store *mocks.CodeStore) {
				store.On("GetBySubject", mock.Anything, "a@mit.edu").Return(live, nil)
				store.On("DeleteIfMatch", mock.Anything, live).Return(true, nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mocks.CodeStore{}
			tt.setup(store)

			code, err := newTestLedger(store).ConsumeForSubject(context.Background(), "a@mit.edu", tt.supplied)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, live, code)
			}
			store.AssertExpectations(t)
			if tt.wantErr == model.ErrCodeInvalid {
				store.AssertNotCalled(t, "DeleteIfMatch", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestLedger_ConsumeByValue(t *testing.T) {
	live := model.OneTimeCode{Subject: "a@mit.edu", Value: "tok", ExpiresAt: testNow.Add(time.Minute), LastSentAt: testNow}

	t.Run("empty value", func(t *testing.T) {
		store := &mocks.CodeStore{}
		_, err := newTestLedger(store).ConsumeByValue(context.Background(), "")
		require.ErrorIs(t, err, model.ErrCodeNotFound)
		store.AssertNotCalled(t, "GetByValue", mock.Anything, mock.Anything)
	})

	t.Run("unknown", func(t *testing.T) {
		store := &mocks.CodeStore{}
		store.On("GetByValue", mock.Anything, "nope").Return(model.OneTimeCode{}, model.ErrNotFound)

		_, err := newTestLedger(store).ConsumeByValue(context.Background(), "nope")
		require.ErrorIs(t, err, model.ErrCodeNotFound)
	})

	t.Run("success returns subject", func(t *testing.T) {
		store := &mocks.CodeStore{}
		store.On("GetByValue", mock.Anything, "tok").Return(live, nil)
		store.On("DeleteIfMatch", mock.Anything, live).Return(true, nil)

		code, err := newTestLedger(store).ConsumeByValue(context.Background(), "tok")
		require.NoError(t, err)
		assert.Equal(t, "a@mit.edu", code.Subject)
	})

	t.Run("lookup error", func(t *testing.T) {
		store := &mocks.CodeStore{}
		store.On("GetByValue", mock.Anything, "tok").Return(model.OneTimeCode{}, errors.New("timeout"))

		_, err := newTestLedger(store).ConsumeByValue(context.Background(), "tok")
		require.Error(t, err)
		assert.NotErrorIs(t, err, model.ErrCodeNotFound)
	})
}
