package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/courtside/league-system/models"
	"github.com/courtside/league-system/repositories"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"
)

// LeagueScheduler promotes due pending leagues and finalizes completed ones
// without user action. It wakes once a day at the configured hour; both
// sweeps also run once at startup.
type LeagueScheduler struct {
	leagueService LeagueService
	leagueRepo    repositories.LeagueRepository
	clock         clockwork.Clock
	runHour       int
	logger        *slog.Logger
}

func NewLeagueScheduler(
	leagueService LeagueService,
	leagueRepo repositories.LeagueRepository,
	clock clockwork.Clock,
	runHour int,
	logger *slog.Logger,
) *LeagueScheduler {
	return &LeagueScheduler{
		leagueService: leagueService,
		leagueRepo:    leagueRepo,
		clock:         clock,
		runHour:       runHour,
		logger:        logger,
	}
}

// Run blocks until the context is canceled.
func (s *LeagueScheduler) Run(ctx context.Context) {
	s.logger.Info("league scheduler started", slog.Int("run_hour", s.runHour))
	s.RunSweeps(ctx)

	for {
		now := s.clock.Now()
		next := s.nextRun(now)
		select {
		case <-ctx.Done():
			s.logger.Info("league scheduler stopped")
			return
		case <-s.clock.After(next.Sub(now)):
			s.RunSweeps(ctx)
		}
	}
}

func (s *LeagueScheduler) nextRun(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), s.runHour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// RunSweeps executes both sweeps concurrently. A failing league never
// aborts its sweep; failures are logged and the sweep moves on.
func (s *LeagueScheduler) RunSweeps(ctx context.Context) {
	var g errgroup.Group
	g.Go(func() error {
		s.startDueLeagues(ctx)
		return nil
	})
	g.Go(func() error {
		s.completeActiveLeagues(ctx)
		return nil
	})
	_ = g.Wait()
}

func (s *LeagueScheduler) startDueLeagues(ctx context.Context) {
	leagues, err := s.leagueRepo.ListByStatus(ctx, models.LeagueStatusPending)
	if err != nil {
		s.logger.Error("scheduler: listing pending leagues failed", slog.Any("error", err))
		return
	}

	// Due means the start date is today or earlier.
	startOfTomorrow := s.nextMidnight(s.clock.Now())
	for _, league := range leagues {
		if !league.StartDate.Before(startOfTomorrow) {
			continue
		}
		if _, err := s.leagueService.Start(ctx, SystemActorID, league.ID); err != nil {
			s.logger.Error("scheduler: failed to start league",
				slog.Int("league_id", league.ID),
				slog.String("league", league.Name),
				slog.Any("error", err),
			)
			continue
		}
		s.logger.Info("scheduler: league started automatically", slog.Int("league_id", league.ID))
	}
}

func (s *LeagueScheduler) completeActiveLeagues(ctx context.Context) {
	leagues, err := s.leagueRepo.ListByStatus(ctx, models.LeagueStatusActive)
	if err != nil {
		s.logger.Error("scheduler: listing active leagues failed", slog.Any("error", err))
		return
	}
	for _, league := range leagues {
		completed, err := s.leagueService.CheckAndComplete(ctx, SystemActorID, league.ID)
		if err != nil {
			s.logger.Error("scheduler: completion check failed",
				slog.Int("league_id", league.ID),
				slog.String("league", league.Name),
				slog.Any("error", err),
			)
			continue
		}
		if completed {
			s.logger.Info("scheduler: league finalized automatically", slog.Int("league_id", league.ID))
		}
	}
}

func (s *LeagueScheduler) nextMidnight(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
}
