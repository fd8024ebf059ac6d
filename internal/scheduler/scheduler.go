package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is a named periodic task. Run returns the number of rows it touched.
type Job struct {
	Name string
	Spec string
	Run  func(ctx context.Context, now time.Time) (int64, error)
}

// Scheduler runs maintenance jobs on cron schedules.
type Scheduler struct {
	cron    *cron.Cron
	logger  *slog.Logger
	timeout time.Duration
}

func New(logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		logger:  logger,
		timeout: time.Minute,
	}
}

// Register schedules job. Specs use the standard five-field cron syntax or
// descriptors such as "@daily".
func (s *Scheduler) Register(job Job) error {
	if _, err := s.cron.AddFunc(job.Spec, func() { s.runJob(job) }); err != nil {
		return fmt.Errorf("scheduling %s: %w", job.Name, err)
	}
	return nil
}

func (s *Scheduler) runJob(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	n, err := job.Run(ctx, start.UTC())
	if err != nil {
		s.logger.Error("scheduled job failed", "action", job.Name, "error", err)
		return
	}
	if n > 0 {
		s.logger.Info("scheduled job completed", "action", job.Name, "affected", n,
			"latency_ms", float64(time.Since(start).Microseconds())/1000)
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}
