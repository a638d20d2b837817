package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
)

// DefaultSweepSchedule runs the sweep once per hour.
const DefaultSweepSchedule = "@every 1h"

// Sweeper periodically deletes expired sessions from adapters that cannot
// expire them on their own.
type Sweeper struct {
	cron     *cron.Cron
	targets  []Sweepable
	log      *slog.Logger
	schedule string
}

// NewSweeper creates a sweeper on a cron schedule. Adapters that do not
// implement Sweepable (redis expires keys itself) are filtered out by the
// caller; an empty target list is allowed and does nothing.
func NewSweeper(schedule string, log *slog.Logger, targets ...Sweepable) *Sweeper {
	if schedule == "" {
		schedule = DefaultSweepSchedule
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Sweeper{
		cron:     cron.New(),
		targets:  targets,
		log:      log,
		schedule: schedule,
	}
}

// Start schedules the sweep and runs it until Stop.
func (s *Sweeper) Start() error {
	if len(s.targets) == 0 {
		return nil
	}
	_, err := s.cron.AddFunc(s.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := s.Sweep(ctx); err != nil {
			s.log.Error("session sweep failed", slog.Any("error", err))
		}
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}

// Sweep runs all targets concurrently and returns the first failure.
func (s *Sweeper) Sweep(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, target := range s.targets {
		g.Go(func() error {
			return target.Sweep(ctx)
		})
	}
	return g.Wait()
}
