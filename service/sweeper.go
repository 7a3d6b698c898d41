package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/layer-3/cerberus/ports"
)

// DefaultSweepInterval is how often expired session records are removed.
const DefaultSweepInterval = 10 * time.Minute

// Sweeper periodically bulk-deletes expired session records. It runs as its
// own timer-driven task, sharing only the durable store with the request
// path, so foreground authentication never waits on cleanup. A failed sweep
// is logged and retried on the next tick.
type Sweeper struct {
	sessions ports.SessionStore
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time

	stop chan struct{}
	done chan struct{}
}

// NewSweeper creates a new sweeper. A non-positive interval falls back to
// the default.
func NewSweeper(sessions ports.SessionStore, interval time.Duration, logger *slog.Logger) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{
		sessions: sessions,
		interval: interval,
		logger:   logger,
		now:      time.Now,
	}
}

// Start launches the sweep loop. It returns immediately; the loop runs until
// Stop is called or the context is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	s.stop = make(chan struct{})
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.sweep(ctx)
			case <-ctx.Done():
				return
			case <-s.stop:
				return
			}
		}
	}()
}

// Stop terminates the sweep loop and waits for it to exit. Safe to call only
// after Start.
func (s *Sweeper) Stop() {
	close(s.stop)
	<-s.done
}

func (s *Sweeper) sweep(ctx context.Context) {
	removed, err := s.sessions.DeleteExpiredBefore(ctx, s.now())
	if err != nil {
		s.logger.Error("session sweep failed", "error", err)
		return
	}
	if removed > 0 {
		s.logger.Info("expired sessions removed", "count", removed)
	}
}
