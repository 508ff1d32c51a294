package context

import (
	"context"

	"github.com/dtroode/campusmarket-server/internal/model"
)

type sessionKey struct{}

// Manager stores the authenticated session of a gRPC call in its context.
type Manager struct{}

var _ model.ContextManager = (*Manager)(nil)

// NewManager creates a new gRPC context manager instance.
func NewManager() *Manager {
	return &Manager{}
}

// SetSessionToContext returns a copy of ctx carrying claims.
func (m *Manager) SetSessionToContext(ctx context.Context, claims model.SessionClaims) context.Context {
	return context.WithValue(ctx, sessionKey{}, claims)
}

// GetSessionFromContext returns the claims stored by SetSessionToContext.
// Claims without an email are treated as absent.
func (m *Manager) GetSessionFromContext(ctx context.Context) (model.SessionClaims, bool) {
	claims, ok := ctx.Value(sessionKey{}).(model.SessionClaims)
	if !ok || claims.Email == "" {
		return model.SessionClaims{}, false
	}
	return claims, true
}
