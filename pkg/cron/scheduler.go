// Package cron provides scheduled background jobs using robfig/cron.
package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/tmashinini/bankconvert/pkg/storage"
)

// Scheduler manages background scheduled jobs using robfig/cron.
type Scheduler struct {
	cron     *cron.Cron
	spool    *storage.Spool
	spoolAge time.Duration
	logger   *slog.Logger
}

// NewScheduler creates a new job scheduler. spoolAge is how long an
// orphaned upload may sit in the spool before the sweeper deletes it.
func NewScheduler(spool *storage.Spool, spoolAge time.Duration, logger *slog.Logger) *Scheduler {
	// Create cron with seconds disabled (standard 5-field format)
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))

	return &Scheduler{
		cron:     c,
		spool:    spool,
		spoolAge: spoolAge,
		logger:   logger,
	}
}

// Start begins scheduled jobs.
func (s *Scheduler) Start() error {
	// Spool sweep: runs hourly
	_, err := s.cron.AddFunc("0 * * * *", s.sweepSpool)
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("cron scheduler started",
		slog.Int("jobs", len(s.cron.Entries())),
	)
	return nil
}

// Stop gracefully stops all scheduled jobs.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}

// RunNow manually triggers the spool sweep (for testing/admin).
func (s *Scheduler) RunNow() {
	go s.sweepSpool()
}

// sweepSpool deletes uploads that outlived their request. Requests delete
// their own files; anything old enough to hit the sweeper was orphaned by
// a crash or a dropped connection.
func (s *Scheduler) sweepSpool() {
	removed, err := s.spool.SweepOlderThan(s.spoolAge)
	if err != nil {
		s.logger.Error("spool sweep failed", slog.Any("error", err))
		return
	}
	if removed > 0 {
		s.logger.Info("spool sweep completed", slog.Int("files_removed", removed))
	}
}
