package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"EarningsRadar/internal/cache"
	"EarningsRadar/internal/collector"
)

// Scheduler fires the daily refresh of the tracked symbol set.
type Scheduler struct {
	cron     *cron.Cron
	earnings *collector.EarningsCollector
	profiles *collector.ProfileCollector
	tracked  *cache.TrackedSet
	log      zerolog.Logger
	ctx      context.Context
}

// New creates a Scheduler. ctx bounds all background refresh work.
func New(ctx context.Context, ec *collector.EarningsCollector, pc *collector.ProfileCollector, ts *cache.TrackedSet, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		earnings: ec,
		profiles: pc,
		tracked:  ts,
		log:      log.With().Str("component", "scheduler").Logger(),
		ctx:      ctx,
	}
}

// Register adds the daily earnings refresh at the given cron expression.
func (s *Scheduler) Register(dailyCron string) error {
	if _, err := s.cron.AddFunc(dailyCron, s.dailyRefresh); err != nil {
		return fmt.Errorf("register daily refresh: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.log.Info().Msg("scheduler stopped")
}

// RunNow fires both fetch cycles immediately over the tracked set, as a
// refresh request would.
func (s *Scheduler) RunNow() {
	symbols := s.tracked.Snapshot()
	if len(symbols) == 0 {
		s.log.Info().Msg("no tracked symbols, skipping startup refresh")
		return
	}
	go s.earnings.Refresh(s.ctx, symbols)
	go s.profiles.Refresh(s.ctx, symbols)
}

func (s *Scheduler) dailyRefresh() {
	symbols := s.tracked.Snapshot()
	if len(symbols) == 0 {
		s.log.Debug().Msg("no tracked symbols, skipping daily refresh")
		return
	}
	s.log.Info().Int("symbols", len(symbols)).Msg("running daily earnings data refresh")
	s.earnings.Refresh(s.ctx, symbols)
}
