package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/dailyreason/dailyreason/internal/auth"
	"github.com/dailyreason/dailyreason/internal/service"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var testNow = time.Date(2026, 3, 14, 5, 0, 0, 0, time.UTC)

type fakeRunner struct {
	mu       sync.Mutex
	triggers []string
	err      error
}

func (f *fakeRunner) Run(_ context.Context, trigger string) (*service.RunResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.triggers = append(f.triggers, trigger)
	if f.err != nil {
		return nil, f.err
	}
	return &service.RunResult{RunID: "run"}, nil
}

func (f *fakeRunner) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.triggers...)
}

func fixedClock() time.Time { return testNow }

func immediate(time.Duration) (<-chan time.Time, func() bool) {
	ch := make(chan time.Time, 1)
	ch <- testNow
	return ch, func() bool { return true }
}

func TestParseRule(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		rule    string
		wantErr bool
	}{
		{name: "daily at six", rule: "FREQ=DAILY;BYHOUR=6;BYMINUTE=0;BYSECOND=0"},
		{name: "prefixed", rule: "RRULE:FREQ=DAILY;BYHOUR=6"},
		{name: "lower case", rule: "freq=weekly;byday=mo"},
		{name: "lower case prefix", rule: "rrule:FREQ=DAILY;BYHOUR=6"},
		{name: "zoned start", rule: "DTSTART;TZID=Europe/Stockholm:20260314T060000\nRRULE:FREQ=DAILY"},
		{name: "zoned start lower case rule", rule: "DTSTART;TZID=Europe/Stockholm:20260314T060000\nrrule:freq=daily"},
		{name: "unknown zone", rule: "DTSTART;TZID=Mars/Olympus:20260314T060000\nRRULE:FREQ=DAILY", wantErr: true},
		{name: "prefix only", rule: "RRULE:", wantErr: true},
		{name: "empty", rule: "  ", wantErr: true},
		{name: "garbage", rule: "FREQ=SOMETIMES", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r, err := ParseRule(tt.rule)
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, r)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, r)
		})
	}
}

func TestScheduler_Next(t *testing.T) {
	t.Parallel()

	s, err := New("FREQ=DAILY;BYHOUR=6;BYMINUTE=0;BYSECOND=0", &fakeRunner{}, WithClock(fixedClock))
	require.NoError(t, err)

	tests := []struct {
		name string
		from time.Time
		want time.Time
	}{
		{name: "same day", from: testNow, want: time.Date(2026, 3, 14, 6, 0, 0, 0, time.UTC)},
		{name: "exactly on occurrence", from: time.Date(2026, 3, 14, 6, 0, 0, 0, time.UTC), want: time.Date(2026, 3, 15, 6, 0, 0, 0, time.UTC)},
		{name: "after occurrence", from: time.Date(2026, 3, 14, 7, 0, 0, 0, time.UTC), want: time.Date(2026, 3, 15, 6, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			next, ok := s.Next(tt.from)
			require.True(t, ok)
			assert.True(t, tt.want.Equal(next), "want %s, got %s", tt.want, next)
		})
	}
}

func TestScheduler_NextInRuleZone(t *testing.T) {
	t.Parallel()

	s, err := New("DTSTART;TZID=Europe/Stockholm:20260314T060000\nRRULE:FREQ=DAILY", &fakeRunner{}, WithClock(fixedClock))
	require.NoError(t, err)

	stockholm, err := time.LoadLocation("Europe/Stockholm")
	require.NoError(t, err)

	tests := []struct {
		name string
		from time.Time
		want time.Time
	}{
		// 06:00 CET is 05:00 UTC
		{name: "winter", from: testNow, want: time.Date(2026, 3, 15, 5, 0, 0, 0, time.UTC)},
		// 06:00 CEST is 04:00 UTC after the switch on 29 March
		{name: "summer", from: time.Date(2026, 3, 29, 12, 0, 0, 0, time.UTC), want: time.Date(2026, 3, 30, 4, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			next, ok := s.Next(tt.from)
			require.True(t, ok)
			assert.True(t, tt.want.Equal(next), "want %s, got %s", tt.want, next)
			assert.Equal(t, 6, next.In(stockholm).Hour())
		})
	}
}

func TestNew_InvalidRule(t *testing.T) {
	t.Parallel()

	s, err := New("FREQ=NEVER", &fakeRunner{})
	require.Error(t, err)
	assert.Nil(t, s)
}

func TestScheduler_RunsEachOccurrence(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{}
	s, err := New("FREQ=DAILY;BYHOUR=6;BYMINUTE=0;BYSECOND=0;COUNT=3", runner, WithClock(fixedClock))
	require.NoError(t, err)
	s.after = immediate

	require.NoError(t, s.Start(context.Background()))

	calls := runner.Calls()
	require.Len(t, calls, 3)
	for _, trigger := range calls {
		assert.Equal(t, string(auth.TriggerInternal), trigger)
	}
}

func TestScheduler_ContinuesAfterFailedRun(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{err: errors.New("sync failed")}
	s, err := New("FREQ=DAILY;BYHOUR=6;COUNT=2", runner, WithClock(fixedClock))
	require.NoError(t, err)
	s.after = immediate

	require.NoError(t, s.Start(context.Background()))
	assert.Len(t, runner.Calls(), 2)
}

func TestScheduler_Stop(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{}
	s, err := New("FREQ=DAILY;BYHOUR=6", runner, WithClock(fixedClock))
	require.NoError(t, err)

	waiting := make(chan struct{})
	s.after = func(time.Duration) (<-chan time.Time, func() bool) {
		close(waiting)
		return make(chan time.Time), func() bool { return true }
	}

	errCh := make(chan error, 1)
	go func() { errCh <- s.Start(context.Background()) }()

	<-waiting
	require.NoError(t, s.Stop())
	require.NoError(t, <-errCh)
	assert.Empty(t, runner.Calls())
}

func TestScheduler_StopBeforeStart(t *testing.T) {
	t.Parallel()

	s, err := New("FREQ=DAILY", &fakeRunner{})
	require.NoError(t, err)
	assert.NoError(t, s.Stop())
}

func TestScheduler_ContextCancel(t *testing.T) {
	t.Parallel()

	s, err := New("FREQ=DAILY;BYHOUR=6", &fakeRunner{}, WithClock(fixedClock))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	s.after = func(time.Duration) (<-chan time.Time, func() bool) {
		cancel()
		return make(chan time.Time), func() bool { return true }
	}

	assert.NoError(t, s.Start(ctx))
}

func TestScheduler_StartTwice(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{}
	s, err := New("FREQ=DAILY;BYHOUR=6;COUNT=1", runner, WithClock(fixedClock))
	require.NoError(t, err)
	s.after = immediate

	require.NoError(t, s.Start(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NotPanics(t, func() {
		assert.ErrorIs(t, s.Start(ctx), ErrAlreadyStarted)
	})
	assert.ErrorIs(t, s.Start(context.Background()), ErrAlreadyStarted)
	assert.Len(t, runner.Calls(), 1)
	assert.NoError(t, s.Stop())
}
