package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/carhive/service-rental/internal/config"
	"github.com/carhive/service-rental/internal/jobs"
)

// Scheduler manages cron job scheduling.
type Scheduler struct {
	cron   *cron.Cron
	jobs   *jobs.JobRunner
	logger *zap.Logger
}

// NewScheduler creates a scheduler with UTC timezone and seconds
// precision and registers the configured jobs.
func NewScheduler(jobRunner *jobs.JobRunner, cfg config.SchedulerConfig, logger *zap.Logger) *Scheduler {
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithSeconds(),
	)

	s := &Scheduler{
		cron:   c,
		jobs:   jobRunner,
		logger: logger,
	}

	if _, err := s.cron.AddFunc(cfg.AutoCompleteBookings, s.jobs.AutoCompleteBookings); err != nil {
		logger.Error("failed to register auto-complete job", zap.Error(err))
	}

	return s
}

// Start begins the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("cron scheduler started")
}

// Stop gracefully stops the scheduler, waiting for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("cron scheduler stopped")
}
