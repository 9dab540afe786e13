package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ytfeed/ytfeed-backend/internal/logger"
)

// Job is the unit of scheduled work.
type Job func(ctx context.Context) error

// Scheduler runs one job synchronously at startup and then on a fixed
// interval. Ticks never overlap: if a run outlasts the interval, the next
// tick is skipped rather than run concurrently.
type Scheduler struct {
	log      *logger.Logger
	interval time.Duration
	job      Job
	cron     *cron.Cron
}

func New(baseLog *logger.Logger, interval time.Duration, job Job) *Scheduler {
	schedLog := baseLog.With("component", "Scheduler")
	return &Scheduler{
		log:      schedLog,
		interval: interval,
		job:      job,
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
	}
}

// Start runs the job once, registers the interval entry, and starts the cron
// loop. The returned error covers setup only; scheduled-run failures are
// logged and retried on the next tick.
func (s *Scheduler) Start(ctx context.Context) error {
	s.log.Info("Running initial job before scheduling", "interval", s.interval)
	if err := s.job(ctx); err != nil {
		s.log.Error("Initial job run failed", "error", err)
	}

	_, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.interval), func() {
		if err := s.job(ctx); err != nil {
			s.log.Error("Scheduled job run failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	s.cron.Start()
	s.log.Info("Scheduler started", "interval", s.interval)
	return nil
}

// Stop halts the cron loop and waits for an in-flight run to finish.
func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.log.Info("Scheduler stopped")
}
