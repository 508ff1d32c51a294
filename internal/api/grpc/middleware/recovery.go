package middleware

import (
	"context"
	"runtime/debug"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dtroode/campusmarket-server/internal/logger"
)

// RecoveryHandler turns a handler panic into codes.Internal and logs the stack.
func RecoveryHandler(l *logger.Logger) func(ctx context.Context, p any) error {
	return func(ctx context.Context, p any) error {
		l.ErrorContext(ctx, "gRPC handler panicked",
			"panic", p,
			"stack", string(debug.Stack()))
		return status.Error(codes.Internal, "internal server error")
	}
}
