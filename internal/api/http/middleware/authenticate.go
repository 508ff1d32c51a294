package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/campusmarket-server/internal/api/http/httperr"
	"github.com/dtroode/campusmarket-server/internal/apierror"
	"github.com/dtroode/campusmarket-server/internal/logger"
	"github.com/dtroode/campusmarket-server/internal/model"
)

const (
	sessionKey      = "session"
	tokenPresentKey = "session_token_present"
)

// TokenService resolves session claims from bearer tokens.
type TokenService interface {
	Validate(token string) (model.SessionClaims, error)
}

// Authenticate attaches the session of a valid bearer token to the request.
// Requests with a missing or invalid token continue unauthenticated.
type Authenticate struct {
	tokenService TokenService
	logger       *logger.Logger
}

// NewAuthenticate creates a new Authenticate middleware instance.
func NewAuthenticate(tokenService TokenService, logger *logger.Logger) *Authenticate {
	return &Authenticate{tokenService: tokenService, logger: logger}
}

func (m *Authenticate) Handle(c *gin.Context) {
	header := c.GetHeader("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
		c.Next()
		return
	}
	c.Set(tokenPresentKey, true)

	claims, err := m.tokenService.Validate(strings.TrimSpace(token))
	if err != nil {
		m.logger.Debug("Authenticate middleware: token rejected", "path", c.FullPath())
		c.Next()
		return
	}

	c.Set(sessionKey, claims)
	c.Next()
}

// SessionFromContext returns the session attached by Authenticate.
func SessionFromContext(c *gin.Context) (model.SessionClaims, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return model.SessionClaims{}, false
	}
	claims, ok := v.(model.SessionClaims)
	return claims, ok && claims.Email != ""
}

// RequireSession aborts with 401 when the request is unauthenticated.
func RequireSession(c *gin.Context) {
	if _, ok := SessionFromContext(c); ok {
		c.Next()
		return
	}
	if c.GetBool(tokenPresentKey) {
		httperr.Write(c, apierror.NewErrInvalidToken())
		return
	}
	httperr.Write(c, apierror.NewErrMissingToken())
}
