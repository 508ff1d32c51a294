package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/campusmarket-server/internal/apierror"
	"github.com/dtroode/campusmarket-server/internal/ledger"
	"github.com/dtroode/campusmarket-server/internal/model"
	"github.com/dtroode/campusmarket-server/internal/repository/redis"
	"github.com/dtroode/campusmarket-server/internal/testutil"
	"github.com/dtroode/campusmarket-server/internal/token"
)

// outbox records sent mail.
type outbox struct {
	mu   sync.Mutex
	sent []model.MailMessage
}

func (o *outbox) Send(_ context.Context, msg model.MailMessage) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, msg)
	return nil
}

func (o *outbox) last(t *testing.T) model.MailMessage {
	t.Helper()
	o.mu.Lock()
	defer o.mu.Unlock()
	require.NotEmpty(t, o.sent)
	return o.sent[len(o.sent)-1]
}

func TestAuth_SignupToLoginScenario(t *testing.T) {
	ctx := context.Background()
	log := testutil.MakeNoopLogger()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	jwt, err := token.NewJWT([]byte(strings.Repeat("k", 32)))
	require.NoError(t, err)

	mail := &outbox{}
	a := NewAuth(
		newMemoryUserStore(),
		testDirectory(t),
		ledger.New(redis.NewCodeStore(client, "it", model.CodeKindVerification), ledger.VerificationPolicy(), log),
		ledger.New(redis.NewCodeStore(client, "it", model.CodeKindPasswordReset), ledger.PasswordResetPolicy(), log),
		NewTokenService(jwt, log),
		testHasher,
		mail,
		AuthOptions{FrontendURL: "https://campus.example"},
		log,
	)

	signup := model.SignupParams{FirstName: "Alice", LastName: "Smith", Email: "alice@school.edu", Password: "secret123", University: "State U"}
	require.NoError(t, a.Signup(ctx, signup))
	requireKind(t, a.Signup(ctx, signup), apierror.KindConflict)

	require.NoError(t, a.RequestVerificationCode(ctx, "alice@school.edu"))
	code := strings.TrimPrefix(mail.last(t).Body, "Your code is: ")
	require.Len(t, code, 6)

	requireKind(t, a.RequestVerificationCode(ctx, "alice@school.edu"), apierror.KindRateLimited)

	_, err = a.Login(ctx, "alice@school.edu", "secret123")
	notVerified := requireKind(t, err, apierror.KindUnauthenticated)
	assert.Equal(t, "/verify", notVerified.Fields["redirect"])

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	requireKind(t, a.Verify(ctx, "alice@school.edu", wrong), apierror.KindInvalid)
	require.NoError(t, a.Verify(ctx, "alice@school.edu", code))
	requireKind(t, a.Verify(ctx, "alice@school.edu", code), apierror.KindNotFound)

	tok, err := a.Login(ctx, "alice@school.edu", "secret123")
	require.NoError(t, err)
	claims, err := jwt.Validate(tok)
	require.NoError(t, err)
	assert.Equal(t, "alice@school.edu", claims.Email)
	assert.Equal(t, "State U", claims.University)

	require.NoError(t, a.ForgotPassword(ctx, "alice@school.edu"))
	link := mail.last(t).Body
	resetToken := link[strings.Index(link, "code=")+len("code=") : strings.Index(link, "\n")]

	require.NoError(t, a.ResetPassword(ctx, resetToken, "newpass456"))
	requireKind(t, a.ResetPassword(ctx, resetToken, "newpass789"), apierror.KindNotFound)

	_, err = a.Login(ctx, "alice@school.edu", "secret123")
	requireKind(t, err, apierror.KindUnauthenticated)
	_, err = a.Login(ctx, "alice@school.edu", "newpass456")
	require.NoError(t, err)
}
