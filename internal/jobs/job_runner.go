package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/carhive/service-rental/internal/application"
)

// JobRunner coordinates the scheduled maintenance jobs. Each job is a
// no-argument func so it can be registered with the cron scheduler
// directly.
type JobRunner struct {
	bookings *application.BookingService
	logger   *zap.Logger
	timeout  time.Duration
}

// NewJobRunner creates a new job runner.
func NewJobRunner(bookings *application.BookingService, logger *zap.Logger) *JobRunner {
	return &JobRunner{
		bookings: bookings,
		logger:   logger,
		timeout:  time.Minute,
	}
}

// AutoCompleteBookings sweeps past-due confirmed bookings to completed.
// Reads already run the same sweep inline; the scheduled run keeps the
// table current between requests.
func (jr *JobRunner) AutoCompleteBookings() {
	jr.runWithRecovery("auto_complete_bookings", func(ctx context.Context) error {
		return jr.bookings.AutoCompleteBookings(ctx)
	})
}

// runWithRecovery wraps job execution with a deadline and panic recovery.
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func(ctx context.Context) error) {
	defer func() {
		if r := recover(); r != nil {
			jr.logger.Error("job panicked", zap.String("job", jobName), zap.Any("panic", r))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), jr.timeout)
	defer cancel()

	jr.logger.Info("starting job", zap.String("job", jobName))
	if err := jobFunc(ctx); err != nil {
		jr.logger.Error("job failed", zap.String("job", jobName), zap.Error(err))
		return
	}
	jr.logger.Info("job completed", zap.String("job", jobName))
}
