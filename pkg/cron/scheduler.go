// Package cron provides scheduled background jobs using robfig/cron.
package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultRetentionSchedule runs the retention job daily at 3:00 AM
const DefaultRetentionSchedule = "0 3 * * *"

// Pruner removes dated records older than a cutoff
type Pruner interface {
	PruneBefore(ctx context.Context, cutoff time.Time) (int, error)
}

// Scheduler manages background scheduled jobs using robfig/cron.
type Scheduler struct {
	cron            *cron.Cron
	pruner          Pruner
	retentionMonths int
	schedule        string
	logger          *slog.Logger
	now             func() time.Time
}

// NewScheduler creates a new job scheduler. Records dated before the first
// day of the month retentionMonths ago are pruned on schedule.
func NewScheduler(pruner Pruner, retentionMonths int, schedule string, logger *slog.Logger) *Scheduler {
	// Create cron with seconds disabled (standard 5-field format)
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))
	if schedule == "" {
		schedule = DefaultRetentionSchedule
	}

	return &Scheduler{
		cron:            c,
		pruner:          pruner,
		retentionMonths: retentionMonths,
		schedule:        schedule,
		logger:          logger,
		now:             time.Now,
	}
}

// Start begins scheduled jobs.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.pruneExpired); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("cron scheduler started",
		slog.Int("jobs", len(s.cron.Entries())),
		slog.String("schedule", s.schedule),
		slog.Int("retention_months", s.retentionMonths),
	)
	return nil
}

// Stop gracefully stops all scheduled jobs.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}

// Schedule returns the cron expression of the retention job
func (s *Scheduler) Schedule() string {
	return s.schedule
}

// RunNow manually triggers the retention job.
func (s *Scheduler) RunNow() {
	go s.pruneExpired()
}

// Cutoff returns the first instant kept by the retention job
func (s *Scheduler) Cutoff() time.Time {
	now := s.now().UTC()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -s.retentionMonths, 0)
}

// pruneExpired drops records older than the retention window.
func (s *Scheduler) pruneExpired() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cutoff := s.Cutoff()
	s.logger.Info("starting retention job", slog.Time("cutoff", cutoff))

	removed, err := s.pruner.PruneBefore(ctx, cutoff)
	if err != nil {
		s.logger.Error("retention job failed", slog.Any("error", err))
		return
	}

	s.logger.Info("retention job completed",
		slog.Int("records_removed", removed),
	)
}
