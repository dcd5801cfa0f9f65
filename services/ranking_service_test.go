package services

import (
	"context"
	"testing"

	"github.com/courtside/league-system/models"
	"github.com/courtside/league-system/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedDelta struct {
	id    int
	delta repositories.RankingDelta
}

type fakeRankingRepo struct {
	repositories.RankingRepository
	teamDeltas   []recordedDelta
	playerDeltas []recordedDelta
}

func (f *fakeRankingRepo) ApplyTeamDelta(_ context.Context, _ repositories.SQLExecutor, _ int, teamID int, delta repositories.RankingDelta) error {
	f.teamDeltas = append(f.teamDeltas, recordedDelta{id: teamID, delta: delta})
	return nil
}

func (f *fakeRankingRepo) ApplyPlayerDelta(_ context.Context, _ repositories.SQLExecutor, _ int, userID int, delta repositories.RankingDelta) error {
	f.playerDeltas = append(f.playerDeltas, recordedDelta{id: userID, delta: delta})
	return nil
}

type fakeTeamRepo struct {
	repositories.TeamRepository
	teams map[int]*models.Team
}

func (f *fakeTeamRepo) GetByID(_ context.Context, id int) (*models.Team, error) {
	team, ok := f.teams[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	return team, nil
}

func TestResultDelta(t *testing.T) {
	tests := []struct {
		name     string
		own, opp int
		want     repositories.RankingDelta
	}{
		{"win", 3, 1, repositories.RankingDelta{Played: 1, Wins: 1, Points: 3}},
		{"loss", 0, 2, repositories.RankingDelta{Played: 1, Losses: 1}},
		{"draw", 2, 2, repositories.RankingDelta{Played: 1, Draws: 1, Points: 1}},
		{"goalless draw", 0, 0, repositories.RankingDelta{Played: 1, Draws: 1, Points: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resultDelta(tt.own, tt.opp))
		})
	}
}

func newTestRankingService(rankingRepo *fakeRankingRepo, teamRepo *fakeTeamRepo) *rankingService {
	return &rankingService{
		teamRepo:    teamRepo,
		rankingRepo: rankingRepo,
	}
}

func TestApplyResultBooksBothSides(t *testing.T) {
	rankingRepo := &fakeRankingRepo{}
	teamRepo := &fakeTeamRepo{teams: map[int]*models.Team{
		10: {ID: 10, LeagueID: 1, Player1ID: 100, Player2ID: 101},
		20: {ID: 20, LeagueID: 1, Player1ID: 200, Player2ID: 201},
	}}
	svc := newTestRankingService(rankingRepo, teamRepo)

	match := &models.Match{ID: 5, LeagueID: 1, TeamAID: 10, TeamBID: 20}
	err := svc.ApplyResult(context.Background(), nil, match, 2, 0)
	require.NoError(t, err)

	require.Len(t, rankingRepo.teamDeltas, 2)
	assert.Equal(t, recordedDelta{id: 10, delta: repositories.RankingDelta{Played: 1, Wins: 1, Points: 3}}, rankingRepo.teamDeltas[0])
	assert.Equal(t, recordedDelta{id: 20, delta: repositories.RankingDelta{Played: 1, Losses: 1}}, rankingRepo.teamDeltas[1])

	// Both members of each team get the team's result.
	require.Len(t, rankingRepo.playerDeltas, 4)
	winners := map[int]bool{100: true, 101: true}
	for _, rec := range rankingRepo.playerDeltas {
		if winners[rec.id] {
			assert.Equal(t, repositories.RankingDelta{Played: 1, Wins: 1, Points: 3}, rec.delta)
		} else {
			assert.Equal(t, repositories.RankingDelta{Played: 1, Losses: 1}, rec.delta)
		}
	}
}

func TestApplyResultDrawAwardsBothTeams(t *testing.T) {
	rankingRepo := &fakeRankingRepo{}
	teamRepo := &fakeTeamRepo{teams: map[int]*models.Team{
		10: {ID: 10, LeagueID: 1, Player1ID: 100, Player2ID: 101},
		20: {ID: 20, LeagueID: 1, Player1ID: 200, Player2ID: 201},
	}}
	svc := newTestRankingService(rankingRepo, teamRepo)

	match := &models.Match{ID: 5, LeagueID: 1, TeamAID: 10, TeamBID: 20}
	err := svc.ApplyResult(context.Background(), nil, match, 1, 1)
	require.NoError(t, err)

	drawDelta := repositories.RankingDelta{Played: 1, Draws: 1, Points: 1}
	require.Len(t, rankingRepo.teamDeltas, 2)
	assert.Equal(t, drawDelta, rankingRepo.teamDeltas[0].delta)
	assert.Equal(t, drawDelta, rankingRepo.teamDeltas[1].delta)

	require.Len(t, rankingRepo.playerDeltas, 4)
	for _, rec := range rankingRepo.playerDeltas {
		assert.Equal(t, drawDelta, rec.delta)
	}
}

func TestApplyResultValidation(t *testing.T) {
	svc := newTestRankingService(&fakeRankingRepo{}, &fakeTeamRepo{teams: map[int]*models.Team{}})

	err := svc.ApplyResult(context.Background(), nil, &models.Match{LeagueID: 1, TeamAID: 0, TeamBID: 20}, 1, 0)
	assert.ErrorIs(t, err, ErrMatchTeamsNotAssigned)

	err = svc.ApplyResult(context.Background(), nil, &models.Match{LeagueID: 1, TeamAID: 10, TeamBID: 20}, -1, 0)
	assert.ErrorIs(t, err, ErrNegativeScore)
}

func TestApplyResultUnknownTeam(t *testing.T) {
	rankingRepo := &fakeRankingRepo{}
	teamRepo := &fakeTeamRepo{teams: map[int]*models.Team{}}
	svc := newTestRankingService(rankingRepo, teamRepo)

	match := &models.Match{ID: 5, LeagueID: 1, TeamAID: 10, TeamBID: 20}
	err := svc.ApplyResult(context.Background(), nil, match, 2, 1)
	assert.ErrorIs(t, err, ErrMatchTeamsNotAssigned)
}
