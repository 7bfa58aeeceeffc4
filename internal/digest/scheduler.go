package digest

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/bilgisen/aidigest/internal/logger"
)

// DefaultSchedule is Friday 13:00.
const DefaultSchedule = "0 13 * * 5"

// Job is one scheduled digest run.
type Job func(ctx context.Context, now time.Time) error

// Scheduler runs a digest job on a cron schedule.
type Scheduler struct {
	cron       *cron.Cron
	job        Job
	schedule   string
	jobTimeout time.Duration
}

// NewScheduler validates schedule (standard five-field cron) and evaluates
// it in loc.
func NewScheduler(job Job, schedule string, loc *time.Location, jobTimeout time.Duration) (*Scheduler, error) {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	if loc == nil {
		loc = time.UTC
	}
	if jobTimeout <= 0 {
		jobTimeout = 10 * time.Minute
	}
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("invalid digest schedule %q: %w", schedule, err)
	}
	return &Scheduler{
		cron:       cron.New(cron.WithLocation(loc)),
		job:        job,
		schedule:   schedule,
		jobTimeout: jobTimeout,
	}, nil
}

// Next returns the first scheduled time after t.
func (s *Scheduler) Next(t time.Time) time.Time {
	sched, _ := cron.ParseStandard(s.schedule)
	return sched.Next(t.In(s.cron.Location()))
}

// Run optionally runs the job once immediately, then on schedule until ctx is done.
func (s *Scheduler) Run(ctx context.Context, runNow bool) error {
	log := logger.Get()
	if _, err := s.cron.AddFunc(s.schedule, func() { s.runJob(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule digest: %w", err)
	}

	if runNow {
		log.Info().Msg("Running first digest immediately")
		s.runJob(ctx)
	}

	log.Info().
		Str("cron", s.schedule).
		Time("next", s.Next(time.Now())).
		Msg("Starting digest scheduler")
	s.cron.Start()

	<-ctx.Done()
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(5 * time.Second):
	}
	log.Info().Msg("Digest scheduler stopped")
	return nil
}

func (s *Scheduler) runJob(parent context.Context) {
	ctx, cancel := context.WithTimeout(parent, s.jobTimeout)
	defer cancel()

	if err := s.job(ctx, time.Now()); err != nil {
		logger.Get().Error().Err(err).Msg("Scheduled digest run failed")
	}
}
