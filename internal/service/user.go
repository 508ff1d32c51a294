package service

import (
	"context"
	"errors"

	"github.com/dtroode/campusmarket-server/internal/apierror"
	"github.com/dtroode/campusmarket-server/internal/logger"
	"github.com/dtroode/campusmarket-server/internal/model"
)

// User serves profile lookups.
type User struct {
	store  model.UserStore
	logger *logger.Logger
}

func NewUser(store model.UserStore, logger *logger.Logger) *User {
	return &User{store: store, logger: logger}
}

// Me returns the full record of the authenticated caller.
func (s *User) Me(ctx context.Context, caller model.SessionClaims) (model.User, error) {
	return s.get(ctx, caller.Email)
}

// Public returns the public profile of email.
func (s *User) Public(ctx context.Context, email string) (model.PublicProfile, error) {
	user, err := s.get(ctx, model.NormalizeEmail(email))
	if err != nil {
		return model.PublicProfile{}, err
	}
	return user.Public(), nil
}

func (s *User) get(ctx context.Context, email string) (model.User, error) {
	user, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.User{}, apierror.NewErrUserNotFound()
		}
		s.logger.Error("User service: failed to get user", "email", email, "error", err.Error())
		return model.User{}, apierror.NewErrInternalServerError(err)
	}
	return user, nil
}
