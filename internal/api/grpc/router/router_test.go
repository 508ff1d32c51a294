package router

import (
	"context"
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	grpcctx "github.com/dtroode/campusmarket-server/internal/api/grpc/context"
	"github.com/dtroode/campusmarket-server/internal/api/grpc/handler"
	"github.com/dtroode/campusmarket-server/internal/api/grpc/sessionpb"
	"github.com/dtroode/campusmarket-server/internal/model"
	"github.com/dtroode/campusmarket-server/internal/service"
	"github.com/dtroode/campusmarket-server/internal/testutil"
	"github.com/dtroode/campusmarket-server/internal/token"
)

func startServer(t *testing.T) (*grpc.ClientConn, *token.JWT) {
	t.Helper()

	jwt, err := token.NewJWT([]byte(strings.Repeat("s", 32)))
	require.NoError(t, err)

	return serve(t, service.NewTokenService(jwt, testutil.MakeNoopLogger())), jwt
}

func serve(t *testing.T, tokens handler.TokenService) *grpc.ClientConn {
	t.Helper()

	s := New(tokens, grpcctx.NewManager(), testutil.MakeNoopLogger()).Register()

	lis := bufconn.Listen(1 << 20)
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func TestRouter_Sessions(t *testing.T) {
	conn, jwt := startServer(t)
	client := sessionpb.NewSessionsClient(conn)
	ctx := context.Background()

	tok, err := jwt.Issue("alice@mit.edu", "Massachusetts Institute of Technology")
	require.NoError(t, err)

	t.Run("validate", func(t *testing.T) {
		got, err := client.Validate(ctx, tok)
		require.NoError(t, err)
		assert.Equal(t, "alice@mit.edu", got.Email)
		assert.Equal(t, "Massachusetts Institute of Technology", got.University)
		assert.True(t, got.ExpiresAt.After(got.IssuedAt))
	})

	t.Run("validate rejects garbage", func(t *testing.T) {
		_, err := client.Validate(ctx, "garbage")
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("whoami", func(t *testing.T) {
		got, err := client.Whoami(ctx, tok)
		require.NoError(t, err)
		assert.Equal(t, "alice@mit.edu", got.Email)
	})

	t.Run("whoami without token", func(t *testing.T) {
		_, err := client.Whoami(ctx, "")
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})
}

func TestRouter_Health(t *testing.T) {
	conn, _ := startServer(t)

	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(),
		&healthpb.HealthCheckRequest{Service: sessionpb.ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}

type panickingTokens struct{}

func (panickingTokens) Validate(string) (model.SessionClaims, error) {
	panic("validator exploded")
}

func TestRouter_RecoversInterceptorPanic(t *testing.T) {
	conn := serve(t, panickingTokens{})
	client := sessionpb.NewSessionsClient(conn)

	_, err := client.Whoami(context.Background(), "any")
	assert.Equal(t, codes.Internal, status.Code(err))

	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}
