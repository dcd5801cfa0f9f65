package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/courtside/league-system/models"
	"github.com/lib/pq"
)

var (
	ErrTeamNotFound      = errors.New("team not found")
	ErrTeamLeagueInvalid = errors.New("team league conflict or invalid")
	ErrTeamPlayerInvalid = errors.New("team player conflict or invalid")
)

type TeamRepository interface {
	Create(ctx context.Context, exec SQLExecutor, team *models.Team) error
	GetByID(ctx context.Context, id int) (*models.Team, error)
	ListByLeague(ctx context.Context, exec SQLExecutor, leagueID int) ([]*models.Team, error)
	// PlayerOnTeam reports whether the user already belongs to any team of
	// the league.
	PlayerOnTeam(ctx context.Context, exec SQLExecutor, leagueID, userID int) (bool, error)
	DeleteByLeague(ctx context.Context, exec SQLExecutor, leagueID int) error
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresTeamRepository) Create(ctx context.Context, exec SQLExecutor, team *models.Team) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO teams (league_id, name, player1_id, player2_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		team.LeagueID,
		team.Name,
		team.Player1ID,
		team.Player2ID,
	).Scan(&team.ID, &team.CreatedAt)

	return r.handleTeamError(err)
}

func (r *postgresTeamRepository) scanTeam(rowScanner interface{ Scan(...interface{}) error }) (*models.Team, error) {
	var t models.Team
	err := rowScanner.Scan(&t.ID, &t.LeagueID, &t.Name, &t.Player1ID, &t.Player2ID, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	query := `SELECT id, league_id, name, player1_id, player2_id, created_at FROM teams WHERE id = $1`
	return r.scanTeam(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresTeamRepository) ListByLeague(ctx context.Context, exec SQLExecutor, leagueID int) ([]*models.Team, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, league_id, name, player1_id, player2_id, created_at
		FROM teams
		WHERE league_id = $1
		ORDER BY id ASC`

	rows, err := executor.QueryContext(ctx, query, leagueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := make([]*models.Team, 0)
	for rows.Next() {
		t, errScan := r.scanTeam(rows)
		if errScan != nil {
			return nil, errScan
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

func (r *postgresTeamRepository) PlayerOnTeam(ctx context.Context, exec SQLExecutor, leagueID, userID int) (bool, error) {
	executor := r.getExecutor(exec)
	query := `SELECT EXISTS(SELECT 1 FROM teams WHERE league_id = $1 AND (player1_id = $2 OR player2_id = $2))`
	var exists bool
	if err := executor.QueryRowContext(ctx, query, leagueID, userID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *postgresTeamRepository) DeleteByLeague(ctx context.Context, exec SQLExecutor, leagueID int) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx, `DELETE FROM teams WHERE league_id = $1`, leagueID)
	return err
}

func (r *postgresTeamRepository) handleTeamError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		if pqErr.Code == "23503" { // foreign_key_violation
			switch pqErr.Constraint {
			case "teams_league_id_fkey":
				return ErrTeamLeagueInvalid
			case "teams_player1_id_fkey", "teams_player2_id_fkey":
				return ErrTeamPlayerInvalid
			}
		}
	}
	return err
}
