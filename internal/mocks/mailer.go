package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dtroode/campusmarket-server/internal/model"
)

// Mailer is a mock type for the Mailer type
type Mailer struct {
	mock.Mock
}

var _ model.Mailer = (*Mailer)(nil)

// Send provides a mock function with given fields: ctx, msg
func (_m *Mailer) Send(ctx context.Context, msg model.MailMessage) error {
	ret := _m.Called(ctx, msg)
	return ret.Error(0)
}
