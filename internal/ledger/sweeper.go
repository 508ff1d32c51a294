package ledger

import (
	"context"
	"time"

	"github.com/dtroode/campusmarket-server/internal/logger"
)

// DefaultSweepInterval is how often expired codes are removed.
const DefaultSweepInterval = time.Hour

// Sweeper periodically removes expired codes from a set of ledgers.
type Sweeper struct {
	ledgers  []*Ledger
	interval time.Duration
	logger   *logger.Logger
}

// NewSweeper creates a Sweeper. A non-positive interval means DefaultSweepInterval.
func NewSweeper(interval time.Duration, logger *logger.Logger, ledgers ...*Ledger) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{ledgers: ledgers, interval: interval, logger: logger}
}

// Run sweeps on every tick until ctx is done.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("Ledger sweeper: started", "interval", s.interval)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Ledger sweeper: stopped")
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce sweeps every ledger once. Failures are logged and do not stop
// the remaining ledgers.
func (s *Sweeper) SweepOnce(ctx context.Context) {
	for _, l := range s.ledgers {
		n, err := l.Sweep(ctx)
		if err != nil {
			s.logger.Error("Ledger sweeper: sweep failed", "kind", l.Kind(), "error", err)
			continue
		}
		if n > 0 {
			s.logger.Info("Ledger sweeper: removed expired codes", "kind", l.Kind(), "count", n)
		}
	}
}
