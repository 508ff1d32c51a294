package model

import "context"

// ContextManager stores and retrieves the authenticated session of a request.
type ContextManager interface {
	SetSessionToContext(ctx context.Context, claims SessionClaims) context.Context
	GetSessionFromContext(ctx context.Context) (SessionClaims, bool)
}
