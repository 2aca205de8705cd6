package rules

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Scheduler arms recurring jobs anchored to fixed local wall-clock
// hours. Each job first fires at the next future occurrence of its
// anchor hour and then every 24 hours. Cadence is loose: a run delayed
// by a sleeping host simply happens late, and a job runs at most loosely
// once per period.
type Scheduler struct {
	mu      sync.Mutex
	jobs    map[string]struct{}
	wg      sync.WaitGroup
	logger  *slog.Logger
	nowFunc func() time.Time
}

// NewScheduler creates an empty scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{
		jobs:    make(map[string]struct{}),
		logger:  slog.Default(),
		nowFunc: time.Now,
	}
}

// ScheduleRecurring arms a named daily job anchored at anchorHour:00:00
// local time. Re-arming an already-armed name is a no-op: the existing
// cadence is preserved, not reset. Returns whether a new job was armed.
//
// Task errors are logged and swallowed; a failing run never unarms the
// job or changes its cadence.
func (s *Scheduler) ScheduleRecurring(ctx context.Context, name string, anchorHour int, task func(ctx context.Context) error) bool {
	s.mu.Lock()
	if _, exists := s.jobs[name]; exists {
		s.mu.Unlock()
		return false
	}
	s.jobs[name] = struct{}{}
	s.mu.Unlock()

	delay := DelayUntilAnchor(s.nowFunc(), anchorHour)
	s.logger.Info("armed recurring job", "name", name, "anchorHour", anchorHour, "initialDelay", delay)

	s.wg.Add(1)
	go s.run(ctx, name, delay, task)
	return true
}

func (s *Scheduler) run(ctx context.Context, name string, initialDelay time.Duration, task func(ctx context.Context) error) {
	defer s.wg.Done()

	timer := time.NewTimer(initialDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return
	case <-timer.C:
	}

	s.fire(ctx, name, task)

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("recurring job stopped", "name", name)
			return
		case <-ticker.C:
			s.fire(ctx, name, task)
		}
	}
}

func (s *Scheduler) fire(ctx context.Context, name string, task func(ctx context.Context) error) {
	if err := task(ctx); err != nil {
		s.logger.Error("recurring job failed", "name", name, "error", err)
	}
}

// Wait blocks until all job goroutines have exited. Cancel the context
// passed to ScheduleRecurring first.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

// DelayUntilAnchor computes the time until the next future occurrence of
// anchorHour:00:00 in now's location. If now is already past today's
// anchor, the first run is delayed to tomorrow's.
func DelayUntilAnchor(now time.Time, anchorHour int) time.Duration {
	anchor := time.Date(now.Year(), now.Month(), now.Day(), anchorHour, 0, 0, 0, now.Location())
	if !anchor.After(now) {
		anchor = anchor.AddDate(0, 0, 1)
	}
	return anchor.Sub(now)
}

// Start arms the two daily rule runs on the scheduler.
func (r *Runner) Start(ctx context.Context, scheduler *Scheduler) {
	scheduler.ScheduleRecurring(ctx, MorningRunName, MorningHour, r.MorningRun)
	scheduler.ScheduleRecurring(ctx, NoonRunName, NoonHour, r.NoonRun)
}
