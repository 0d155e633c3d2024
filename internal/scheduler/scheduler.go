package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const sweepTimeout = 2 * time.Minute

// FreshnessRefresher re-tags stored items against the current date.
type FreshnessRefresher interface {
	RefreshFreshness(ctx context.Context) (int, error)
}

// Scheduler runs the periodic freshness sweep.
type Scheduler struct {
	cron      *cron.Cron
	spec      string
	refresher FreshnessRefresher
	logger    *zap.Logger
}

func NewScheduler(spec string, refresher FreshnessRefresher, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scheduler{
		cron:      cron.New(),
		spec:      spec,
		refresher: refresher,
		logger:    logger,
	}
}

// Start registers the sweep and starts the cron loop. An invalid schedule
// is returned and nothing is started.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("freshness_cron", s.spec))

	if _, err := s.cron.AddFunc(s.spec, s.refreshFreshness); err != nil {
		s.logger.Error("failed to schedule freshness sweep", zap.Error(err))
		return err
	}

	s.cron.Start()
	return nil
}

// Stop stops the cron loop and waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) refreshFreshness() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	changed, err := s.refresher.RefreshFreshness(ctx)
	if err != nil {
		s.logger.Error("freshness sweep failed", zap.Error(err))
		return
	}
	s.logger.Info("freshness sweep finished", zap.Int("changed", changed))
}
