package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Shyesilbas/secondHand-sub003/internal/clock"
)

type SweeperRepository interface {
	DeleteExpiredReservations(ctx context.Context, now time.Time) (int64, error)
	DeactivateExpiredCampaigns(ctx context.Context, now time.Time) (int64, error)
	ExpirePendingOffers(ctx context.Context, now time.Time) (int64, error)
}

// Sweeper reclaims expired rows on a fixed interval: reservations past
// their expiry, campaigns past their window, pending offers past theirs.
// Read paths filter by expiry themselves, so the sweep is an optimization
// to reclaim space, never a correctness requirement. Each sweep is plain
// transactional SQL and serializes with request traffic on the same rows.
type Sweeper struct {
	repo     SweeperRepository
	clock    clock.Clock
	interval time.Duration
	logger   *zap.Logger
}

const defaultSweepInterval = 60 * time.Second

func NewSweeper(repo SweeperRepository, clk clock.Clock, interval time.Duration, logger *zap.Logger) *Sweeper {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sweeper{repo: repo, clock: clk, interval: interval, logger: logger}
}

// Run blocks until ctx is canceled, sweeping once per interval.
func (s *Sweeper) Run(ctx context.Context) {
	s.logger.Info("sweeper started", zap.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("sweeper stopped")
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce runs a single pass. Failures are logged and retried on the
// next tick rather than propagated.
func (s *Sweeper) SweepOnce(ctx context.Context) {
	now := s.clock.Now()

	if n, err := s.repo.DeleteExpiredReservations(ctx, now); err != nil {
		s.logger.Error("sweep reservations", zap.Error(err))
	} else if n > 0 {
		s.logger.Info("released expired reservations", zap.Int64("count", n))
	}

	if n, err := s.repo.DeactivateExpiredCampaigns(ctx, now); err != nil {
		s.logger.Error("sweep campaigns", zap.Error(err))
	} else if n > 0 {
		s.logger.Info("deactivated expired campaigns", zap.Int64("count", n))
	}

	if n, err := s.repo.ExpirePendingOffers(ctx, now); err != nil {
		s.logger.Error("sweep offers", zap.Error(err))
	} else if n > 0 {
		s.logger.Info("expired pending offers", zap.Int64("count", n))
	}
}
