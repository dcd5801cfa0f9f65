package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/courtside/league-system/models"
	"github.com/courtside/league-system/repositories"
)

// Scoring rule: win 3 points, draw 1 point to each side, loss 0. The same
// rule applies to team and individual standings.
const (
	pointsForWin  = 3
	pointsForDraw = 1
)

type RankingService interface {
	// ApplyResult books one decided match into the team rows and both
	// members' player rows. It runs on the caller's executor so the whole
	// result submission stays in one league transaction.
	ApplyResult(ctx context.Context, exec repositories.SQLExecutor, match *models.Match, scoreA, scoreB int) error
	// RecomputeAll zeroes every ranking row of the league and replays all
	// finished matches in ascending scheduled order.
	RecomputeAll(ctx context.Context, leagueID int) error
	GetStandings(ctx context.Context, leagueID int) ([]models.StandingRow, error)
	GetPlayerRankings(ctx context.Context, leagueID int) ([]*models.PlayerRanking, error)
}

type rankingService struct {
	db          *sql.DB
	leagueRepo  repositories.LeagueRepository
	teamRepo    repositories.TeamRepository
	matchRepo   repositories.MatchRepository
	rankingRepo repositories.RankingRepository
}

func NewRankingService(
	db *sql.DB,
	leagueRepo repositories.LeagueRepository,
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	rankingRepo repositories.RankingRepository,
) RankingService {
	return &rankingService{
		db:          db,
		leagueRepo:  leagueRepo,
		teamRepo:    teamRepo,
		matchRepo:   matchRepo,
		rankingRepo: rankingRepo,
	}
}

// resultDelta translates one side's score line into row increments.
func resultDelta(own, opponent int) repositories.RankingDelta {
	delta := repositories.RankingDelta{Played: 1}
	switch {
	case own > opponent:
		delta.Wins = 1
		delta.Points = pointsForWin
	case own < opponent:
		delta.Losses = 1
	default:
		delta.Draws = 1
		delta.Points = pointsForDraw
	}
	return delta
}

func (s *rankingService) ApplyResult(ctx context.Context, exec repositories.SQLExecutor, match *models.Match, scoreA, scoreB int) error {
	if match.TeamAID <= 0 || match.TeamBID <= 0 {
		return ErrMatchTeamsNotAssigned
	}
	if scoreA < 0 || scoreB < 0 {
		return ErrNegativeScore
	}

	deltaA := resultDelta(scoreA, scoreB)
	deltaB := resultDelta(scoreB, scoreA)

	if err := s.rankingRepo.ApplyTeamDelta(ctx, exec, match.LeagueID, match.TeamAID, deltaA); err != nil {
		return fmt.Errorf("failed to apply result to team %d: %w", match.TeamAID, err)
	}
	if err := s.rankingRepo.ApplyTeamDelta(ctx, exec, match.LeagueID, match.TeamBID, deltaB); err != nil {
		return fmt.Errorf("failed to apply result to team %d: %w", match.TeamBID, err)
	}

	// Individual mode: both members of a team receive the team's result.
	for _, side := range []struct {
		teamID int
		delta  repositories.RankingDelta
	}{
		{match.TeamAID, deltaA},
		{match.TeamBID, deltaB},
	} {
		team, err := s.teamRepo.GetByID(ctx, side.teamID)
		if err != nil {
			if errors.Is(err, repositories.ErrTeamNotFound) {
				return ErrMatchTeamsNotAssigned
			}
			return err
		}
		for _, userID := range []int{team.Player1ID, team.Player2ID} {
			if err := s.rankingRepo.ApplyPlayerDelta(ctx, exec, match.LeagueID, userID, side.delta); err != nil {
				return fmt.Errorf("failed to apply result to player %d: %w", userID, err)
			}
		}
	}
	return nil
}

func (s *rankingService) RecomputeAll(ctx context.Context, leagueID int) error {
	return runInTx(ctx, s.db, func(tx *sql.Tx) error {
		// Lock the league row so a racing result submission cannot
		// interleave with the replay.
		if _, err := s.leagueRepo.GetByIDForUpdate(ctx, tx, leagueID); err != nil {
			if errors.Is(err, repositories.ErrLeagueNotFound) {
				return ErrLeagueNotFound
			}
			return err
		}

		if err := s.rankingRepo.ResetByLeague(ctx, tx, leagueID); err != nil {
			return err
		}

		finished := models.MatchStatusFinished
		matches, err := s.matchRepo.ListByLeague(ctx, tx, leagueID, nil, &finished)
		if err != nil {
			return err
		}
		for _, match := range matches {
			if match.ScoreA == nil || match.ScoreB == nil {
				continue
			}
			if err := s.ApplyResult(ctx, tx, match, *match.ScoreA, *match.ScoreB); err != nil {
				return fmt.Errorf("failed to replay match %d: %w", match.ID, err)
			}
		}
		return nil
	})
}

func (s *rankingService) GetStandings(ctx context.Context, leagueID int) ([]models.StandingRow, error) {
	if _, err := s.leagueRepo.GetByID(ctx, nil, leagueID); err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return nil, ErrLeagueNotFound
		}
		return nil, err
	}
	return s.rankingRepo.ListTeamStandings(ctx, nil, leagueID)
}

func (s *rankingService) GetPlayerRankings(ctx context.Context, leagueID int) ([]*models.PlayerRanking, error) {
	if _, err := s.leagueRepo.GetByID(ctx, nil, leagueID); err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return nil, ErrLeagueNotFound
		}
		return nil, err
	}
	return s.rankingRepo.ListPlayerRankings(ctx, nil, leagueID)
}
