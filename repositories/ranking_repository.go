package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/courtside/league-system/models"
	"github.com/lib/pq"
)

var (
	ErrTeamRankingNotFound   = errors.New("team ranking not found")
	ErrPlayerRankingNotFound = errors.New("player ranking not found")
)

// RankingDelta is one match outcome expressed as row increments. Points only
// ever grow through deltas; nothing else writes the counters.
type RankingDelta struct {
	Played int
	Wins   int
	Draws  int
	Losses int
	Points int
}

type RankingRepository interface {
	// EnsureTeamRows inserts zeroed rows for every team, skipping rows that
	// already exist. Safe to call repeatedly and concurrently.
	EnsureTeamRows(ctx context.Context, exec SQLExecutor, leagueID int, teamIDs []int) error
	EnsurePlayerRows(ctx context.Context, exec SQLExecutor, leagueID int, userIDs []int) error
	ApplyTeamDelta(ctx context.Context, exec SQLExecutor, leagueID, teamID int, delta RankingDelta) error
	ApplyPlayerDelta(ctx context.Context, exec SQLExecutor, leagueID, userID int, delta RankingDelta) error
	ResetByLeague(ctx context.Context, exec SQLExecutor, leagueID int) error
	ListTeamStandings(ctx context.Context, exec SQLExecutor, leagueID int) ([]models.StandingRow, error)
	ListPlayerRankings(ctx context.Context, exec SQLExecutor, leagueID int) ([]*models.PlayerRanking, error)
}

type postgresRankingRepository struct {
	db *sql.DB
}

func NewPostgresRankingRepository(db *sql.DB) RankingRepository {
	return &postgresRankingRepository{db: db}
}

func (r *postgresRankingRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresRankingRepository) EnsureTeamRows(ctx context.Context, exec SQLExecutor, leagueID int, teamIDs []int) error {
	if len(teamIDs) == 0 {
		return nil
	}
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO team_rankings (league_id, team_id)
		SELECT $1, unnest($2::int[])
		ON CONFLICT (league_id, team_id) DO NOTHING`
	_, err := executor.ExecContext(ctx, query, leagueID, pq.Array(teamIDs))
	if err != nil {
		return fmt.Errorf("failed to ensure team ranking rows for league %d: %w", leagueID, err)
	}
	return nil
}

func (r *postgresRankingRepository) EnsurePlayerRows(ctx context.Context, exec SQLExecutor, leagueID int, userIDs []int) error {
	if len(userIDs) == 0 {
		return nil
	}
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO player_rankings (league_id, user_id)
		SELECT $1, unnest($2::int[])
		ON CONFLICT (league_id, user_id) DO NOTHING`
	_, err := executor.ExecContext(ctx, query, leagueID, pq.Array(userIDs))
	if err != nil {
		return fmt.Errorf("failed to ensure player ranking rows for league %d: %w", leagueID, err)
	}
	return nil
}

func (r *postgresRankingRepository) ApplyTeamDelta(ctx context.Context, exec SQLExecutor, leagueID, teamID int, delta RankingDelta) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE team_rankings SET
			played = played + $1,
			wins   = wins + $2,
			draws  = draws + $3,
			losses = losses + $4,
			points = points + $5,
			updated_at = NOW()
		WHERE league_id = $6 AND team_id = $7`
	result, err := executor.ExecContext(ctx, query,
		delta.Played, delta.Wins, delta.Draws, delta.Losses, delta.Points,
		leagueID, teamID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTeamRankingNotFound)
}

func (r *postgresRankingRepository) ApplyPlayerDelta(ctx context.Context, exec SQLExecutor, leagueID, userID int, delta RankingDelta) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE player_rankings SET
			played = played + $1,
			wins   = wins + $2,
			draws  = draws + $3,
			losses = losses + $4,
			points = points + $5,
			updated_at = NOW()
		WHERE league_id = $6 AND user_id = $7`
	result, err := executor.ExecContext(ctx, query,
		delta.Played, delta.Wins, delta.Draws, delta.Losses, delta.Points,
		leagueID, userID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPlayerRankingNotFound)
}

func (r *postgresRankingRepository) ResetByLeague(ctx context.Context, exec SQLExecutor, leagueID int) error {
	executor := r.getExecutor(exec)
	zero := `SET played = 0, wins = 0, draws = 0, losses = 0, points = 0, updated_at = NOW() WHERE league_id = $1`
	if _, err := executor.ExecContext(ctx, `UPDATE team_rankings `+zero, leagueID); err != nil {
		return fmt.Errorf("failed to reset team rankings for league %d: %w", leagueID, err)
	}
	if _, err := executor.ExecContext(ctx, `UPDATE player_rankings `+zero, leagueID); err != nil {
		return fmt.Errorf("failed to reset player rankings for league %d: %w", leagueID, err)
	}
	return nil
}

func (r *postgresRankingRepository) ListTeamStandings(ctx context.Context, exec SQLExecutor, leagueID int) ([]models.StandingRow, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT tr.team_id, t.name, u1.nickname, u2.nickname,
		       tr.played, tr.wins, tr.draws, tr.losses, tr.points
		FROM team_rankings tr
		JOIN teams t ON t.id = tr.team_id
		JOIN users u1 ON u1.id = t.player1_id
		JOIN users u2 ON u2.id = t.player2_id
		WHERE tr.league_id = $1
		ORDER BY tr.points DESC, tr.wins DESC, tr.team_id ASC`

	rows, err := executor.QueryContext(ctx, query, leagueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	standings := make([]models.StandingRow, 0)
	for rows.Next() {
		var row models.StandingRow
		if err := rows.Scan(
			&row.TeamID, &row.TeamName, &row.Player1, &row.Player2,
			&row.Played, &row.Wins, &row.Draws, &row.Losses, &row.Points,
		); err != nil {
			return nil, err
		}
		row.Position = len(standings) + 1
		standings = append(standings, row)
	}
	return standings, rows.Err()
}

func (r *postgresRankingRepository) ListPlayerRankings(ctx context.Context, exec SQLExecutor, leagueID int) ([]*models.PlayerRanking, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, league_id, user_id, played, wins, draws, losses, points, updated_at
		FROM player_rankings
		WHERE league_id = $1
		ORDER BY points DESC, wins DESC, user_id ASC`

	rows, err := executor.QueryContext(ctx, query, leagueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rankings := make([]*models.PlayerRanking, 0)
	for rows.Next() {
		var pr models.PlayerRanking
		if err := rows.Scan(
			&pr.ID, &pr.LeagueID, &pr.UserID, &pr.Played, &pr.Wins,
			&pr.Draws, &pr.Losses, &pr.Points, &pr.UpdatedAt,
		); err != nil {
			return nil, err
		}
		rankings = append(rankings, &pr)
	}
	return rankings, rows.Err()
}
