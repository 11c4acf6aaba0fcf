package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gift_watcher/internal/domain"
)

// CycleRunner runs one poll/notify/purchase cycle.
type CycleRunner interface {
	RunCycle(ctx context.Context) (*domain.CycleStats, error)
}

// Scheduler serializes cycles on a fixed cadence: a cycle fully completes or
// fails before the next one starts. Transient failures never stop the loop;
// only cancellation does.
type Scheduler struct {
	runner       CycleRunner
	interval     time.Duration
	errorBackoff time.Duration
	heartbeat    time.Duration
	logger       *slog.Logger
}

func New(runner CycleRunner, interval, errorBackoff time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		runner:       runner,
		interval:     interval,
		errorBackoff: errorBackoff,
		heartbeat:    time.Hour,
		logger:       logger,
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("watcher started", "interval", s.interval)

	lastHeartbeat := time.Now()
	foundSinceHeartbeat := false

	for {
		stats, err := s.runner.RunCycle(ctx)

		delay := s.interval
		switch {
		case err != nil:
			if ctx.Err() != nil {
				s.logger.Info("watcher stopped")
				return ctx.Err()
			}
			var rateLimited *domain.RateLimitedError
			if errors.As(err, &rateLimited) {
				s.logger.Warn("rate limited, honoring retry-after", "retry_after", rateLimited.RetryAfter)
				delay = rateLimited.RetryAfter
			} else {
				s.logger.Error("cycle failed, backing off", "error", err, "backoff", s.errorBackoff)
				delay = s.errorBackoff
			}
		case stats.New > 0:
			foundSinceHeartbeat = true
		}

		if time.Since(lastHeartbeat) >= s.heartbeat {
			if !foundSinceHeartbeat {
				s.logger.Info("no new gifts found, still watching")
			}
			lastHeartbeat = time.Now()
			foundSinceHeartbeat = false
		}

		select {
		case <-ctx.Done():
			s.logger.Info("watcher stopped")
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}
