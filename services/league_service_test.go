package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtside/league-system/fixtures"
	"github.com/courtside/league-system/models"
	"github.com/courtside/league-system/repositories"
)

type fakeLifecycleLeagueRepo struct {
	repositories.LeagueRepository
	leagues map[int]*models.League
	players map[int][]models.User
}

func (f *fakeLifecycleLeagueRepo) GetByIDForUpdate(_ context.Context, _ repositories.SQLExecutor, id int) (*models.League, error) {
	league, ok := f.leagues[id]
	if !ok {
		return nil, repositories.ErrLeagueNotFound
	}
	cp := *league
	return &cp, nil
}

func (f *fakeLifecycleLeagueRepo) ListPlayers(_ context.Context, _ repositories.SQLExecutor, leagueID int) ([]models.User, error) {
	return f.players[leagueID], nil
}

func (f *fakeLifecycleLeagueRepo) AddPlayer(_ context.Context, _ repositories.SQLExecutor, leagueID, userID int) error {
	for _, p := range f.players[leagueID] {
		if p.ID == userID {
			return repositories.ErrLeaguePlayerConflict
		}
	}
	f.players[leagueID] = append(f.players[leagueID], models.User{ID: userID})
	return nil
}

func (f *fakeLifecycleLeagueRepo) SetActivation(_ context.Context, _ repositories.SQLExecutor, id int, endDate time.Time, status models.LeagueStatus) error {
	league, ok := f.leagues[id]
	if !ok {
		return repositories.ErrLeagueNotFound
	}
	league.EndDate = &endDate
	league.Status = status
	return nil
}

func (f *fakeLifecycleLeagueRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id int, status models.LeagueStatus) error {
	league, ok := f.leagues[id]
	if !ok {
		return repositories.ErrLeagueNotFound
	}
	league.Status = status
	return nil
}

type fakeLifecycleTeamRepo struct {
	repositories.TeamRepository
	teams  map[int][]*models.Team
	nextID int
}

func (f *fakeLifecycleTeamRepo) Create(_ context.Context, _ repositories.SQLExecutor, team *models.Team) error {
	f.nextID++
	team.ID = f.nextID
	f.teams[team.LeagueID] = append(f.teams[team.LeagueID], team)
	return nil
}

func (f *fakeLifecycleTeamRepo) ListByLeague(_ context.Context, _ repositories.SQLExecutor, leagueID int) ([]*models.Team, error) {
	return f.teams[leagueID], nil
}

type fakeLifecycleMatchRepo struct {
	repositories.MatchRepository
	matches []*models.Match
	nextID  int
}

func (f *fakeLifecycleMatchRepo) Create(_ context.Context, _ repositories.SQLExecutor, match *models.Match) error {
	f.nextID++
	match.ID = f.nextID
	f.matches = append(f.matches, match)
	return nil
}

func (f *fakeLifecycleMatchRepo) CountByLeague(_ context.Context, _ repositories.SQLExecutor, leagueID int) (repositories.MatchCounts, error) {
	var counts repositories.MatchCounts
	for _, m := range f.matches {
		if m.LeagueID != leagueID {
			continue
		}
		counts.Total++
		if m.Status == models.MatchStatusFinished {
			counts.Finished++
		}
	}
	return counts, nil
}

func (f *fakeLifecycleMatchRepo) ListByLeague(_ context.Context, _ repositories.SQLExecutor, leagueID int, jornada *int, status *models.MatchStatus) ([]*models.Match, error) {
	out := make([]*models.Match, 0)
	for _, m := range f.matches {
		if m.LeagueID != leagueID {
			continue
		}
		if jornada != nil && m.Jornada != *jornada {
			continue
		}
		if status != nil && m.Status != *status {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (f *fakeLifecycleMatchRepo) DeleteUnfinishedByLeague(_ context.Context, _ repositories.SQLExecutor, leagueID int) error {
	kept := f.matches[:0]
	for _, m := range f.matches {
		if m.LeagueID == leagueID && m.Status != models.MatchStatusFinished {
			continue
		}
		kept = append(kept, m)
	}
	f.matches = kept
	return nil
}

func (f *fakeLifecycleMatchRepo) UpdateJornada(_ context.Context, _ repositories.SQLExecutor, id int, jornada int) error {
	for _, m := range f.matches {
		if m.ID == id {
			m.Jornada = jornada
			return nil
		}
	}
	return repositories.ErrMatchNotFound
}

type fakeLifecycleRankingRepo struct {
	repositories.RankingRepository
	teamRows   map[int]bool
	playerRows map[int]bool
	standings  []models.StandingRow
}

func (f *fakeLifecycleRankingRepo) EnsureTeamRows(_ context.Context, _ repositories.SQLExecutor, _ int, teamIDs []int) error {
	for _, id := range teamIDs {
		f.teamRows[id] = true
	}
	return nil
}

func (f *fakeLifecycleRankingRepo) EnsurePlayerRows(_ context.Context, _ repositories.SQLExecutor, _ int, userIDs []int) error {
	for _, id := range userIDs {
		f.playerRows[id] = true
	}
	return nil
}

func (f *fakeLifecycleRankingRepo) ListTeamStandings(_ context.Context, _ repositories.SQLExecutor, _ int) ([]models.StandingRow, error) {
	return f.standings, nil
}

type fakeLifecycleNotifier struct {
	completed []LeagueCompletedEvent
}

func (f *fakeLifecycleNotifier) MatchResultRecorded(context.Context, MatchResultEvent) error {
	return nil
}

func (f *fakeLifecycleNotifier) LeagueCompleted(_ context.Context, event LeagueCompletedEvent) error {
	f.completed = append(f.completed, event)
	return nil
}

type lifecycleFixture struct {
	svc         *leagueService
	leagueRepo  *fakeLifecycleLeagueRepo
	teamRepo    *fakeLifecycleTeamRepo
	matchRepo   *fakeLifecycleMatchRepo
	rankingRepo *fakeLifecycleRankingRepo
	notifier    *fakeLifecycleNotifier
}

func newLifecycleFixture() *lifecycleFixture {
	leagueRepo := &fakeLifecycleLeagueRepo{
		leagues: make(map[int]*models.League),
		players: make(map[int][]models.User),
	}
	teamRepo := &fakeLifecycleTeamRepo{teams: make(map[int][]*models.Team)}
	matchRepo := &fakeLifecycleMatchRepo{}
	rankingRepo := &fakeLifecycleRankingRepo{
		teamRows:   make(map[int]bool),
		playerRows: make(map[int]bool),
	}
	notifier := &fakeLifecycleNotifier{}

	svc := &leagueService{
		leagueRepo:  leagueRepo,
		teamRepo:    teamRepo,
		matchRepo:   matchRepo,
		rankingRepo: rankingRepo,
		hub:         fixtures.NewHub(),
		notifier:    notifier,
		logger:      discardLogger(),
		runTx: func(_ context.Context, _ *sql.DB, fn func(tx *sql.Tx) error) error {
			return fn(nil)
		},
	}
	return &lifecycleFixture{
		svc:         svc,
		leagueRepo:  leagueRepo,
		teamRepo:    teamRepo,
		matchRepo:   matchRepo,
		rankingRepo: rankingRepo,
		notifier:    notifier,
	}
}

func (f *lifecycleFixture) seedLeague(status models.LeagueStatus, playerIDs ...int) *models.League {
	start := time.Now().AddDate(0, 0, 7)
	league := &models.League{
		ID:                   1,
		ClubID:               1,
		CreatorID:            10,
		Name:                 "spring doubles",
		RegistrationDeadline: start.AddDate(0, 0, -1),
		StartDate:            start,
		Status:               status,
	}
	f.leagueRepo.leagues[league.ID] = league
	for _, id := range playerIDs {
		f.leagueRepo.players[league.ID] = append(f.leagueRepo.players[league.ID], models.User{ID: id, Nickname: "p"})
	}
	return league
}

func TestStartPairsRosterAndActivates(t *testing.T) {
	fx := newLifecycleFixture()
	league := fx.seedLeague(models.LeagueStatusPending, 1, 2, 3, 4, 5)

	result, err := fx.svc.Start(context.Background(), SystemActorID, league.ID)
	require.NoError(t, err)

	// Five players pair into two teams with one left over.
	require.Len(t, result.Teams, 2)
	require.NotNil(t, result.Unpaired)
	assert.Len(t, result.Warnings, 1)

	// Two teams meet twice, once per leg.
	require.Len(t, result.Matches, 2)
	assert.Equal(t, result.Matches[0].TeamAID, result.Matches[1].TeamBID)
	assert.Equal(t, result.Matches[0].TeamBID, result.Matches[1].TeamAID)

	stored := fx.leagueRepo.leagues[league.ID]
	assert.Equal(t, models.LeagueStatusActive, stored.Status)
	require.NotNil(t, stored.EndDate)
	assert.Equal(t, league.StartDate.AddDate(0, 0, 14), *stored.EndDate)

	// Zeroed standings rows for both teams and all four paired players;
	// the unpaired player gets none.
	assert.Len(t, fx.rankingRepo.teamRows, 2)
	assert.Len(t, fx.rankingRepo.playerRows, 4)
	assert.False(t, fx.rankingRepo.playerRows[result.Unpaired.ID])
}

func TestStartTwiceFails(t *testing.T) {
	fx := newLifecycleFixture()
	league := fx.seedLeague(models.LeagueStatusPending, 1, 2, 3, 4)

	_, err := fx.svc.Start(context.Background(), SystemActorID, league.ID)
	require.NoError(t, err)

	_, err = fx.svc.Start(context.Background(), SystemActorID, league.ID)
	assert.ErrorIs(t, err, ErrLeagueAlreadyStarted)
}

func TestStartRefusesExistingFixtures(t *testing.T) {
	fx := newLifecycleFixture()
	league := fx.seedLeague(models.LeagueStatusPending, 1, 2, 3, 4)
	fx.matchRepo.matches = append(fx.matchRepo.matches, &models.Match{
		ID: 99, LeagueID: league.ID, TeamAID: 7, TeamBID: 8,
		Jornada: 1, Status: models.MatchStatusScheduled,
	})

	_, err := fx.svc.Start(context.Background(), SystemActorID, league.ID)
	assert.ErrorIs(t, err, ErrFixturesAlreadyExist)

	// Nothing moved: no pairing ran and the league stayed pending.
	assert.Empty(t, fx.teamRepo.teams[league.ID])
	assert.Equal(t, models.LeagueStatusPending, fx.leagueRepo.leagues[league.ID].Status)
}

func TestStartWithTooFewPlayers(t *testing.T) {
	fx := newLifecycleFixture()
	league := fx.seedLeague(models.LeagueStatusPending, 1, 2, 3)

	_, err := fx.svc.Start(context.Background(), SystemActorID, league.ID)
	assert.ErrorIs(t, err, ErrInsufficientPlayers)
}

func TestStartUnknownLeague(t *testing.T) {
	fx := newLifecycleFixture()

	_, err := fx.svc.Start(context.Background(), SystemActorID, 404)
	assert.ErrorIs(t, err, ErrLeagueNotFound)
}

func TestCheckAndCompleteFlipsExactlyOnce(t *testing.T) {
	fx := newLifecycleFixture()
	league := fx.seedLeague(models.LeagueStatusActive)
	fx.matchRepo.matches = []*models.Match{
		{ID: 1, LeagueID: league.ID, TeamAID: 1, TeamBID: 2, Jornada: 1, Status: models.MatchStatusFinished},
		{ID: 2, LeagueID: league.ID, TeamAID: 2, TeamBID: 1, Jornada: 2, Status: models.MatchStatusFinished},
	}
	fx.rankingRepo.standings = []models.StandingRow{
		{Position: 1, TeamID: 1, TeamName: "ace / smash", Points: 6},
		{Position: 2, TeamID: 2, TeamName: "drop / lob", Points: 0},
	}

	completed, err := fx.svc.CheckAndComplete(context.Background(), SystemActorID, league.ID)
	require.NoError(t, err)
	assert.True(t, completed)
	assert.Equal(t, models.LeagueStatusFinished, fx.leagueRepo.leagues[league.ID].Status)

	require.Len(t, fx.notifier.completed, 1)
	require.NotNil(t, fx.notifier.completed[0].Champion)
	assert.Equal(t, "ace / smash", fx.notifier.completed[0].Champion.TeamName)

	// A second pass is a no-op: no second flip, no second notification.
	completed, err = fx.svc.CheckAndComplete(context.Background(), SystemActorID, league.ID)
	require.NoError(t, err)
	assert.False(t, completed)
	assert.Len(t, fx.notifier.completed, 1)
}

func TestCheckAndCompleteWithPendingFixtures(t *testing.T) {
	fx := newLifecycleFixture()
	league := fx.seedLeague(models.LeagueStatusActive)
	fx.matchRepo.matches = []*models.Match{
		{ID: 1, LeagueID: league.ID, TeamAID: 1, TeamBID: 2, Jornada: 1, Status: models.MatchStatusFinished},
		{ID: 2, LeagueID: league.ID, TeamAID: 2, TeamBID: 1, Jornada: 2, Status: models.MatchStatusScheduled},
	}

	completed, err := fx.svc.CheckAndComplete(context.Background(), SystemActorID, league.ID)
	require.NoError(t, err)
	assert.False(t, completed)
	assert.Equal(t, models.LeagueStatusActive, fx.leagueRepo.leagues[league.ID].Status)
	assert.Empty(t, fx.notifier.completed)
}

func TestEnrollPlayerGates(t *testing.T) {
	fx := newLifecycleFixture()
	league := fx.seedLeague(models.LeagueStatusPending, 1)

	// The happy path lands on the roster.
	require.NoError(t, fx.svc.EnrollPlayer(context.Background(), SystemActorID, league.ID, 2))
	assert.Len(t, fx.leagueRepo.players[league.ID], 2)

	// Enrolling twice is a validation failure.
	err := fx.svc.EnrollPlayer(context.Background(), SystemActorID, league.ID, 2)
	assert.ErrorIs(t, err, ErrValidationFailed)

	// Once the league left pending, the roster is closed even for new
	// players; the check shares the activation lock.
	fx.leagueRepo.leagues[league.ID].Status = models.LeagueStatusActive
	err = fx.svc.EnrollPlayer(context.Background(), SystemActorID, league.ID, 3)
	assert.ErrorIs(t, err, ErrLeagueAlreadyStarted)
	assert.Len(t, fx.leagueRepo.players[league.ID], 2)
}

func TestEnrollPlayerAfterDeadline(t *testing.T) {
	fx := newLifecycleFixture()
	league := fx.seedLeague(models.LeagueStatusPending)
	fx.leagueRepo.leagues[league.ID].RegistrationDeadline = time.Now().AddDate(0, 0, -1)

	err := fx.svc.EnrollPlayer(context.Background(), SystemActorID, league.ID, 1)
	assert.ErrorIs(t, err, ErrRegistrationClosed)
}

func TestGenerateFixturesRegenerateRenumbersKeptResults(t *testing.T) {
	fx := newLifecycleFixture()
	league := fx.seedLeague(models.LeagueStatusActive)
	for _, name := range []string{"a", "b", "c"} {
		team := &models.Team{LeagueID: league.ID, Name: name, Player1ID: 1, Player2ID: 2}
		require.NoError(t, fx.teamRepo.Create(context.Background(), nil, team))
	}
	teamIDs := []int{1, 2, 3}

	// Find a second-jornada pairing of the schedule the rebuild will
	// produce, and seed it as already played under a stale number.
	jornadas, err := fixtures.RoundRobin(teamIDs, true)
	require.NoError(t, err)
	played := jornadas[1][0]
	fx.matchRepo.matches = append(fx.matchRepo.matches, &models.Match{
		ID: 1000, LeagueID: league.ID,
		TeamAID: played.TeamAID, TeamBID: played.TeamBID,
		Jornada: 99, Status: models.MatchStatusFinished,
	})

	created, err := fx.svc.GenerateFixtures(context.Background(), SystemActorID, league.ID, true)
	require.NoError(t, err)

	// The played pairing is not recreated and its survivor carries the
	// rebuilt schedule's jornada number.
	var kept *models.Match
	for _, m := range fx.matchRepo.matches {
		if m.ID == 1000 {
			kept = m
		}
	}
	require.NotNil(t, kept)
	assert.Equal(t, 2, kept.Jornada)
	for _, m := range created {
		assert.False(t, m.TeamAID == played.TeamAID && m.TeamBID == played.TeamBID,
			"played pairing was recreated")
	}

	// No team appears twice within any jornada across kept and rebuilt
	// matches together.
	seen := make(map[int]map[int]bool)
	for _, m := range fx.matchRepo.matches {
		if seen[m.Jornada] == nil {
			seen[m.Jornada] = make(map[int]bool)
		}
		assert.False(t, seen[m.Jornada][m.TeamAID], "team %d twice in jornada %d", m.TeamAID, m.Jornada)
		assert.False(t, seen[m.Jornada][m.TeamBID], "team %d twice in jornada %d", m.TeamBID, m.Jornada)
		seen[m.Jornada][m.TeamAID] = true
		seen[m.Jornada][m.TeamBID] = true
	}
}

func TestGenerateFixturesWithoutRegenerate(t *testing.T) {
	fx := newLifecycleFixture()
	league := fx.seedLeague(models.LeagueStatusActive)
	for _, name := range []string{"a", "b"} {
		team := &models.Team{LeagueID: league.ID, Name: name, Player1ID: 1, Player2ID: 2}
		require.NoError(t, fx.teamRepo.Create(context.Background(), nil, team))
	}
	fx.matchRepo.matches = append(fx.matchRepo.matches, &models.Match{
		ID: 1, LeagueID: league.ID, TeamAID: 1, TeamBID: 2,
		Jornada: 1, Status: models.MatchStatusScheduled,
	})

	_, err := fx.svc.GenerateFixtures(context.Background(), SystemActorID, league.ID, false)
	assert.ErrorIs(t, err, ErrFixturesAlreadyExist)
}
