package service

import (
	"errors"
	"fmt"

	"github.com/dtroode/campusmarket-server/internal/apierror"
	"github.com/dtroode/campusmarket-server/internal/logger"
	"github.com/dtroode/campusmarket-server/internal/model"
)

// TokenService issues and validates session tokens on top of a TokenManager.
type TokenService struct {
	manager model.TokenManager
	logger  *logger.Logger
}

func NewTokenService(manager model.TokenManager, logger *logger.Logger) *TokenService {
	return &TokenService{manager: manager, logger: logger}
}

// Issue mints a session token for the user.
func (s *TokenService) Issue(user model.User) (string, error) {
	token, err := s.manager.Issue(user.Email, user.University)
	if err != nil {
		s.logger.Error("Token service: failed to issue token",
			"email", user.Email,
			"error", err.Error())
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

// Validate returns the claims of token. Any failure is an unauthenticated APIError.
func (s *TokenService) Validate(token string) (model.SessionClaims, error) {
	claims, err := s.manager.Validate(token)
	if err != nil {
		if !errors.Is(err, model.ErrInvalidToken) {
			s.logger.Warn("Token service: unexpected validation error", "error", err.Error())
		}
		return model.SessionClaims{}, apierror.NewErrInvalidToken()
	}
	return claims, nil
}
