package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/courtside/league-system/models"
	"github.com/courtside/league-system/repositories"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSchedulerLeagueRepo struct {
	repositories.LeagueRepository
	byStatus map[models.LeagueStatus][]*models.League
}

func (f *fakeSchedulerLeagueRepo) ListByStatus(_ context.Context, status models.LeagueStatus) ([]*models.League, error) {
	return f.byStatus[status], nil
}

type fakeSchedulerLeagueService struct {
	LeagueService
	started   []int
	checked   []int
	startErr  map[int]error
	completed map[int]bool
}

func (f *fakeSchedulerLeagueService) Start(_ context.Context, actorID, leagueID int) (*StartResult, error) {
	if actorID != SystemActorID {
		return nil, ErrForbiddenOperation
	}
	if err := f.startErr[leagueID]; err != nil {
		return nil, err
	}
	f.started = append(f.started, leagueID)
	return &StartResult{}, nil
}

func (f *fakeSchedulerLeagueService) CheckAndComplete(_ context.Context, actorID, leagueID int) (bool, error) {
	if actorID != SystemActorID {
		return false, ErrForbiddenOperation
	}
	f.checked = append(f.checked, leagueID)
	return f.completed[leagueID], nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSchedulerStartsOnlyDueLeagues(t *testing.T) {
	now := time.Date(2026, time.March, 10, 6, 0, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(now)

	repo := &fakeSchedulerLeagueRepo{byStatus: map[models.LeagueStatus][]*models.League{
		models.LeagueStatusPending: {
			{ID: 1, Name: "overdue", StartDate: now.AddDate(0, 0, -3)},
			{ID: 2, Name: "today", StartDate: time.Date(2026, time.March, 10, 18, 0, 0, 0, time.UTC)},
			{ID: 3, Name: "tomorrow", StartDate: now.AddDate(0, 0, 1)},
		},
	}}
	svc := &fakeSchedulerLeagueService{}

	scheduler := NewLeagueScheduler(svc, repo, clock, 6, discardLogger())
	scheduler.startDueLeagues(context.Background())

	// A start date later today still counts as due; tomorrow does not.
	assert.Equal(t, []int{1, 2}, svc.started)
}

func TestSchedulerStartFailureDoesNotAbortSweep(t *testing.T) {
	now := time.Date(2026, time.March, 10, 6, 0, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(now)

	repo := &fakeSchedulerLeagueRepo{byStatus: map[models.LeagueStatus][]*models.League{
		models.LeagueStatusPending: {
			{ID: 1, Name: "broken", StartDate: now.AddDate(0, 0, -1)},
			{ID: 2, Name: "fine", StartDate: now.AddDate(0, 0, -1)},
		},
	}}
	svc := &fakeSchedulerLeagueService{
		startErr: map[int]error{1: errors.New("boom")},
	}

	scheduler := NewLeagueScheduler(svc, repo, clock, 6, discardLogger())
	scheduler.startDueLeagues(context.Background())

	assert.Equal(t, []int{2}, svc.started)
}

func TestSchedulerChecksEveryActiveLeague(t *testing.T) {
	now := time.Date(2026, time.March, 10, 6, 0, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(now)

	repo := &fakeSchedulerLeagueRepo{byStatus: map[models.LeagueStatus][]*models.League{
		models.LeagueStatusActive: {
			{ID: 4, Name: "running"},
			{ID: 5, Name: "done"},
		},
	}}
	svc := &fakeSchedulerLeagueService{completed: map[int]bool{5: true}}

	scheduler := NewLeagueScheduler(svc, repo, clock, 6, discardLogger())
	scheduler.completeActiveLeagues(context.Background())

	assert.Equal(t, []int{4, 5}, svc.checked)
}

func TestSchedulerNextRun(t *testing.T) {
	scheduler := &LeagueScheduler{runHour: 6}

	beforeHour := time.Date(2026, time.March, 10, 5, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, time.March, 10, 6, 0, 0, 0, time.UTC), scheduler.nextRun(beforeHour))

	afterHour := time.Date(2026, time.March, 10, 6, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, time.March, 11, 6, 0, 0, 0, time.UTC), scheduler.nextRun(afterHour))
}

func TestSchedulerRunStopsOnCancel(t *testing.T) {
	now := time.Date(2026, time.March, 10, 6, 0, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(now)

	repo := &fakeSchedulerLeagueRepo{byStatus: map[models.LeagueStatus][]*models.League{}}
	svc := &fakeSchedulerLeagueService{}
	scheduler := NewLeagueScheduler(svc, repo, clock, 6, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		scheduler.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		require.Fail(t, "scheduler did not stop after cancel")
	}
}
