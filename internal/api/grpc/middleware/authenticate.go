package middleware

import (
	"context"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/auth"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dtroode/campusmarket-server/internal/logger"
	"github.com/dtroode/campusmarket-server/internal/model"
)

// TokenService resolves session claims from bearer tokens.
type TokenService interface {
	Validate(token string) (model.SessionClaims, error)
}

// Authenticate validates bearer tokens and injects session claims into context.
type Authenticate struct {
	tokenService   TokenService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuthenticate creates a new Authenticate middleware instance.
func NewAuthenticate(tokenService TokenService, contextManager model.ContextManager, logger *logger.Logger) *Authenticate {
	return &Authenticate{tokenService: tokenService, contextManager: contextManager, logger: logger}
}

// AuthFunc reads the "authorization: bearer <token>" metadata, validates the
// token and returns a context carrying its claims.
func (m *Authenticate) AuthFunc(ctx context.Context) (context.Context, error) {
	token, err := auth.AuthFromMD(ctx, "bearer")
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, "Authorization token is missing")
	}

	claims, err := m.tokenService.Validate(token)
	if err != nil || claims.Email == "" {
		m.logger.Debug("Authenticate middleware: token rejected")
		return nil, status.Error(codes.Unauthenticated, "Invalid or expired token")
	}

	return m.contextManager.SetSessionToContext(ctx, claims), nil
}
