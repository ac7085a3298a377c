// Package scheduler fires the pipeline once per day at a configured HH:MM,
// guaranteeing at most one run is active at a time.
package scheduler

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/janduczek/retailsync/internal/config"
	"github.com/janduczek/retailsync/pkg/logger"
)

// ErrRunActive is returned by TriggerNow when a previous run has not finished.
var ErrRunActive = errors.New("previous run still active")

// Runner is the work the scheduler drives, normally one pipeline run.
type Runner func(ctx context.Context) error

// Scheduler is a single-threaded cooperative timer: it computes the next fire
// time, sleeps until then, runs the job to completion, and only then arms the
// next fire. A fire that would overlap an active run is skipped, not queued.
type Scheduler struct {
	fireAt  int // minutes since midnight
	run     Runner
	running atomic.Bool

	// now is overridable in tests.
	now func() time.Time
}

// New builds a scheduler firing daily at scheduleTime ("HH:MM", local time).
func New(scheduleTime string, run Runner) (*Scheduler, error) {
	fireAt, err := config.ParseScheduleTime(scheduleTime)
	if err != nil {
		return nil, err
	}
	return &Scheduler{
		fireAt: fireAt,
		run:    run,
		now:    time.Now,
	}, nil
}

// NextFire returns the first daily fire time strictly after from.
func (s *Scheduler) NextFire(from time.Time) time.Time {
	next := time.Date(from.Year(), from.Month(), from.Day(),
		s.fireAt/60, s.fireAt%60, 0, 0, from.Location())
	if !next.After(from) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Start loops until ctx is cancelled. Run failures are logged and do not stop
// the loop; the next day's fire is always armed.
func (s *Scheduler) Start(ctx context.Context) error {
	for {
		next := s.NextFire(s.now())
		logger.Infof("Next pipeline run scheduled at %s", next.Format("2006-01-02 15:04:05"))

		timer := time.NewTimer(next.Sub(s.now()))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		if err := s.TriggerNow(ctx); err != nil {
			if errors.Is(err, ErrRunActive) {
				logger.Warnf("Skipping scheduled fire: %v", err)
				continue
			}
			logger.WithError(err).Errorf("Scheduled pipeline run failed")
		}
	}
}

// TriggerNow runs the job immediately unless a run is already active, in
// which case it returns ErrRunActive without starting anything.
func (s *Scheduler) TriggerNow(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrRunActive
	}
	defer s.running.Store(false)
	return s.run(ctx)
}
