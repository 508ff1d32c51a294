package handler

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/dtroode/campusmarket-server/internal/api/grpc/sessionpb"
	"github.com/dtroode/campusmarket-server/internal/logger"
	"github.com/dtroode/campusmarket-server/internal/model"
)

// TokenService validates session tokens.
type TokenService interface {
	Validate(token string) (model.SessionClaims, error)
}

// Sessions handles gRPC session introspection for collaborating services.
type Sessions struct {
	tokenService   TokenService
	contextManager model.ContextManager
	logger         *logger.Logger
}

var _ sessionpb.SessionsServer = (*Sessions)(nil)

// NewSessions creates a new Sessions handler.
func NewSessions(tokenService TokenService, contextManager model.ContextManager, logger *logger.Logger) *Sessions {
	return &Sessions{
		tokenService:   tokenService,
		contextManager: contextManager,
		logger:         logger,
	}
}

// Validate returns the claims of the token in the request.
func (h *Sessions) Validate(_ context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	if req.GetValue() == "" {
		return nil, status.Error(codes.InvalidArgument, "token is required")
	}

	claims, err := h.tokenService.Validate(req.GetValue())
	if err != nil {
		h.logger.Debug("Sessions handler: token rejected", "error", err.Error())
		return nil, handleError(err)
	}

	return h.reply(claims)
}

// Whoami returns the claims the call was authenticated with.
func (h *Sessions) Whoami(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	claims, ok := h.contextManager.GetSessionFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "unauthenticated")
	}
	return h.reply(claims)
}

func (h *Sessions) reply(claims model.SessionClaims) (*structpb.Struct, error) {
	out, err := sessionpb.SessionToStruct(sessionpb.Session{
		Email:      claims.Email,
		University: claims.University,
		IssuedAt:   claims.IssuedAt,
		ExpiresAt:  claims.ExpiresAt,
	})
	if err != nil {
		h.logger.Error("Sessions handler: failed to encode claims", "error", err.Error())
		return nil, status.Error(codes.Internal, "internal server error")
	}
	return out, nil
}
