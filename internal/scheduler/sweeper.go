package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"supashop-api/internal/model"
)

const sweepBatch = 100

// CodeClearer blanks an account's verification code if it still equals code.
type CodeClearer interface {
	ClearVerificationCode(ctx context.Context, kind model.AccountKind, email string, code string) (bool, error)
}

type Sweeper struct {
	queue   *ExpiryQueue
	clearer CodeClearer
	logger  *slog.Logger
}

func NewSweeper(queue *ExpiryQueue, clearer CodeClearer, logger *slog.Logger) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{queue: queue, clearer: clearer, logger: logger}
}

// Run sweeps on every tick until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Catch up on anything that fell due while no sweeper was running.
	s.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	cleared, err := s.SweepOnce(ctx)
	if err != nil && ctx.Err() == nil {
		s.logger.Error("verification code sweep failed", "error", err)
	}
	if cleared > 0 {
		s.logger.Info("expired verification codes cleared", "count", cleared)
	}
}

// SweepOnce drains every due entry and returns how many codes were cleared.
// An entry whose clear fails is requeued and the drain stops with the error;
// the next tick retries it.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	cleared := 0
	for {
		entries, full, claimErr := s.queue.Claim(ctx, sweepBatch)

		var failed error
		for _, e := range entries {
			ok, err := s.clearer.ClearVerificationCode(ctx, e.Kind, e.Email, e.Code)
			if err != nil {
				failed = fmt.Errorf("clear verification code: %w", err)
				if rqErr := s.queue.Requeue(ctx, e); rqErr != nil {
					s.logger.Error("verification code expiry dropped", "kind", e.Kind, "email", e.Email, "error", rqErr)
				}
				continue
			}
			if ok {
				cleared++
			}
		}

		switch {
		case claimErr != nil:
			return cleared, claimErr
		case failed != nil:
			return cleared, failed
		case !full:
			return cleared, nil
		}
	}
}
