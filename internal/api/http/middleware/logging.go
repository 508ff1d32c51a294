package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/campusmarket-server/internal/logger"
)

// Logging logs method, path, status and duration of each HTTP request.
type Logging struct {
	logger *logger.Logger
}

// NewLogging creates a new Logging middleware.
func NewLogging(logger *logger.Logger) *Logging {
	return &Logging{logger: logger}
}

func (l *Logging) Handle(c *gin.Context) {
	start := time.Now()

	c.Next()

	path := c.FullPath()
	if path == "" {
		path = c.Request.URL.Path
	}
	args := []any{
		"method", c.Request.Method,
		"path", path,
		"status", c.Writer.Status(),
		"duration_ms", time.Since(start).Milliseconds(),
	}

	if errs := c.Errors.ByType(gin.ErrorTypeAny); len(errs) > 0 && c.Writer.Status() >= 500 {
		l.logger.Error("HTTP request failed", append(args, "error", errs.String())...)
		return
	}
	l.logger.Info("HTTP request completed", args...)
}
