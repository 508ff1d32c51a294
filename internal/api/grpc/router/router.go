package router

import (
	"context"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/auth"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/selector"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/dtroode/campusmarket-server/internal/api/grpc/handler"
	"github.com/dtroode/campusmarket-server/internal/api/grpc/middleware"
	"github.com/dtroode/campusmarket-server/internal/api/grpc/sessionpb"
	"github.com/dtroode/campusmarket-server/internal/logger"
	"github.com/dtroode/campusmarket-server/internal/model"
)

// Router wires gRPC services and interceptors.
type Router struct {
	tokenService   handler.TokenService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// New creates new gRPC Router instance.
func New(
	tokenService handler.TokenService,
	contextManager model.ContextManager,
	logger *logger.Logger,
) *Router {
	return &Router{
		tokenService:   tokenService,
		contextManager: contextManager,
		logger:         logger,
	}
}

// requiresSession selects the methods that authenticate from call metadata.
// Validate takes the token in its request and stays open.
func requiresSession(_ context.Context, c interceptors.CallMeta) bool {
	return c.FullMethod() == sessionpb.WhoamiFullMethodName
}

// Register builds the gRPC server with the Sessions, health and reflection
// services.
func (r *Router) Register() *grpc.Server {
	requestLogging := middleware.NewLogging(r.logger)
	authenticate := middleware.NewAuthenticate(r.tokenService, r.contextManager, r.logger)
	recoveryOpt := recovery.WithRecoveryHandlerContext(middleware.RecoveryHandler(r.logger))
	callLogger := middleware.InterceptorLogger(r.logger.With("component", "grpc"))
	callEvents := logging.WithLogOnEvents(logging.StartCall)

	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			recovery.UnaryServerInterceptor(recoveryOpt),
			logging.UnaryServerInterceptor(callLogger, callEvents),
			requestLogging.HandleGRPC,
			selector.UnaryServerInterceptor(
				auth.UnaryServerInterceptor(authenticate.AuthFunc),
				selector.MatchFunc(requiresSession),
			),
		),
		grpc.ChainStreamInterceptor(
			recovery.StreamServerInterceptor(recoveryOpt),
			logging.StreamServerInterceptor(callLogger, callEvents),
		),
	)

	sessionpb.RegisterSessionsServer(s, handler.NewSessions(r.tokenService, r.contextManager, r.logger))
	r.registerHealth(s)
	reflection.Register(s)

	return s
}

func (r *Router) registerHealth(s *grpc.Server) {
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(sessionpb.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s, hs)
}
