// Package testutil holds helpers shared by tests.
package testutil

import (
	"io"
	"log/slog"

	"github.com/dtroode/campusmarket-server/internal/logger"
)

// MakeNoopLogger returns a logger that discards everything. The level is
// Debug so debug-only log statements still evaluate their arguments.
func MakeNoopLogger() *logger.Logger {
	return logger.NewWithFormat(io.Discard, int(slog.LevelDebug), "text")
}
