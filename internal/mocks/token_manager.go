package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/dtroode/campusmarket-server/internal/model"
)

// TokenManager is a mock type for the TokenManager type
type TokenManager struct {
	mock.Mock
}

var _ model.TokenManager = (*TokenManager)(nil)

// Issue provides a mock function with given fields: email, university
func (_m *TokenManager) Issue(email string, university string) (string, error) {
	ret := _m.Called(email, university)
	return ret.String(0), ret.Error(1)
}

// Validate provides a mock function with given fields: token
func (_m *TokenManager) Validate(token string) (model.SessionClaims, error) {
	ret := _m.Called(token)
	return ret.Get(0).(model.SessionClaims), ret.Error(1)
}
