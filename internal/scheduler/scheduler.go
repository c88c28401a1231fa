// Package scheduler triggers pipeline runs in-process on an RFC 5545 recurrence rule.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/dailyreason/dailyreason/internal/auth"
	"github.com/dailyreason/dailyreason/internal/service"
)

// ErrAlreadyStarted is returned by Start when the scheduler has already run
var ErrAlreadyStarted = errors.New("scheduler already started")

const rulePrefix = "RRULE:"

// Runner runs the pipeline once
type Runner interface {
	Run(ctx context.Context, trigger string) (*service.RunResult, error)
}

// Scheduler waits for each occurrence of a rule and runs the pipeline
type Scheduler struct {
	rule   *rrule.RRule
	runner Runner
	now    func() time.Time
	after  func(d time.Duration) (<-chan time.Time, func() bool)

	mu         sync.Mutex
	started    bool
	cancelFunc context.CancelFunc
	done       chan struct{}
}

// Option configures a Scheduler
type Option func(*Scheduler)

// WithClock sets the clock used to anchor the rule and find the next occurrence
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		s.now = now
	}
}

// ParseRule parses an RRULE string, with or without the "RRULE:" prefix,
// optionally preceded by a "DTSTART;TZID=Zone/City:..." line. The DTSTART line
// is passed through unchanged since zone names are case-sensitive; the
// recurrence line itself is case-insensitive.
func ParseRule(raw string) (*rrule.RRule, error) {
	dtstart, recurrence, hasStart := strings.Cut(strings.TrimSpace(raw), "\n")
	if !hasStart {
		dtstart, recurrence = "", dtstart
	}
	recurrence = strings.TrimSpace(recurrence)
	if len(recurrence) >= len(rulePrefix) && strings.EqualFold(recurrence[:len(rulePrefix)], rulePrefix) {
		recurrence = recurrence[len(rulePrefix):]
	}
	if recurrence == "" {
		return nil, errors.New("schedule rule is empty")
	}

	raw = strings.ToUpper(recurrence)
	if hasStart {
		raw = strings.TrimSpace(dtstart) + "\n" + raw
	}
	r, err := rrule.StrToRRule(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid RRULE %q: %w", raw, err)
	}
	return r, nil
}

// New creates a scheduler for rule. Unless the rule sets DTSTART, it is anchored at the current time.
func New(rule string, runner Runner, opts ...Option) (*Scheduler, error) {
	r, err := ParseRule(rule)
	if err != nil {
		return nil, err
	}

	s := &Scheduler{
		rule:   r,
		runner: runner,
		now:    time.Now,
		after: func(d time.Duration) (<-chan time.Time, func() bool) {
			t := time.NewTimer(d)
			return t.C, t.Stop
		},
		done: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	if !strings.Contains(strings.ToUpper(rule), "DTSTART") {
		r.DTStart(s.now().UTC())
	}
	return s, nil
}

// Next returns the first occurrence strictly after t, or false when the rule is exhausted
func (s *Scheduler) Next(t time.Time) (time.Time, bool) {
	next := s.rule.After(t, false)
	return next, !next.IsZero()
}

// Start runs the pipeline at each occurrence until ctx is cancelled, Stop is
// called, or the rule has no more occurrences. A failed run is logged and the
// loop continues. A Scheduler can be started once; later calls return
// ErrAlreadyStarted.
func (s *Scheduler) Start(ctx context.Context) error {
	schedCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		cancel()
		return ErrAlreadyStarted
	}
	s.started = true
	s.cancelFunc = cancel
	s.mu.Unlock()
	defer func() {
		cancel()
		close(s.done)
		slog.Info("Scheduler stopped")
	}()

	last := time.Time{}
	for {
		from := s.now()
		if !last.Before(from) {
			from = last
		}

		next, ok := s.Next(from)
		if !ok {
			slog.Info("Schedule has no further occurrences")
			return nil
		}
		last = next

		wait := next.Sub(s.now())
		slog.Info("Next scheduled run", "at", next.UTC(), "in", wait.Round(time.Second))

		fire, stop := s.after(wait)
		select {
		case <-fire:
			s.runOnce(schedCtx, next)
		case <-schedCtx.Done():
			stop()
			return nil
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context, occurrence time.Time) {
	result, err := s.runner.Run(ctx, string(auth.TriggerInternal))
	if err != nil {
		slog.Error("Scheduled run failed", "occurrence", occurrence.UTC(), "error", err)
		return
	}
	slog.Info("Scheduled run completed",
		"occurrence", occurrence.UTC(),
		"run_id", result.RunID,
		"fallback", result.Fallback)
}

// Stop cancels a running Start and waits for it to return
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	cancel := s.cancelFunc
	s.mu.Unlock()
	if cancel == nil {
		return nil
	}

	cancel()
	<-s.done
	return nil
}
