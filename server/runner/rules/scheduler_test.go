package rules

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDelayUntilAnchor(t *testing.T) {
	day := func(hour, minute int) time.Time {
		return time.Date(2024, 3, 14, hour, minute, 0, 0, time.UTC)
	}

	tests := []struct {
		name       string
		now        time.Time
		anchorHour int
		expected   time.Duration
	}{
		{"before today's anchor", day(7, 30), 9, 90 * time.Minute},
		{"after today's anchor rolls to tomorrow", day(10, 0), 9, 23 * time.Hour},
		{"exactly at the anchor rolls to tomorrow", day(9, 0), 9, 24 * time.Hour},
		{"midnight to noon anchor", day(0, 0), 13, 13 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DelayUntilAnchor(tt.now, tt.anchorHour))
		})
	}
}

func TestScheduleRecurringIsIdempotentPerName(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := NewScheduler()
	// Keep the first fire far in the future so the task never runs.
	s.nowFunc = func() time.Time {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	}

	fired := make(chan struct{}, 1)
	task := func(ctx context.Context) error {
		fired <- struct{}{}
		return nil
	}

	assert.True(t, s.ScheduleRecurring(ctx, MorningRunName, 23, task))
	assert.False(t, s.ScheduleRecurring(ctx, MorningRunName, 23, task))

	cancel()
	s.Wait()
	assert.Empty(t, fired)
}

func TestScheduleRecurringFiresAfterInitialDelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := NewScheduler()
	// Freeze "now" one second shy of the anchor so the initial delay is
	// short enough to observe.
	s.nowFunc = func() time.Time {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 9, 59, 59, 0, now.Location())
	}

	fired := make(chan struct{}, 1)
	require.True(t, s.ScheduleRecurring(ctx, "test-job", 10, func(ctx context.Context) error {
		select {
		case fired <- struct{}{}:
		default:
		}
		return nil
	}))

	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("job did not fire after its initial delay")
	}

	cancel()
	s.Wait()
}

func TestSchedulerStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	s := NewScheduler()
	require.True(t, s.ScheduleRecurring(ctx, "test-job", 3, func(ctx context.Context) error {
		return nil
	}))

	cancel()

	done := make(chan struct{})
	go func() {
		s.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
}
