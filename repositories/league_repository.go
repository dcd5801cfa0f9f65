package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/courtside/league-system/models"
	"github.com/lib/pq"
)

var (
	ErrLeagueNotFound       = errors.New("league not found")
	ErrLeagueClubInvalid    = errors.New("league club conflict or invalid")
	ErrLeaguePlayerConflict = errors.New("player is already enrolled in this league")
	ErrLeaguePlayerNotFound = errors.New("player is not enrolled in this league")
	ErrLeaguePlayerInvalid  = errors.New("league player conflict or invalid")
)

type LeagueRepository interface {
	Create(ctx context.Context, league *models.League) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.League, error)
	// GetByIDForUpdate locks the league row for the duration of the
	// transaction; every lifecycle-mutating operation goes through it.
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.League, error)
	List(ctx context.Context, status *models.LeagueStatus, publicOnly bool) ([]*models.League, error)
	ListByStatus(ctx context.Context, status models.LeagueStatus) ([]*models.League, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.LeagueStatus) error
	SetActivation(ctx context.Context, exec SQLExecutor, id int, endDate time.Time, status models.LeagueStatus) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error

	AddPlayer(ctx context.Context, exec SQLExecutor, leagueID, userID int) error
	RemovePlayer(ctx context.Context, exec SQLExecutor, leagueID, userID int) error
	ListPlayers(ctx context.Context, exec SQLExecutor, leagueID int) ([]models.User, error)
}

type postgresLeagueRepository struct {
	db *sql.DB
}

func NewPostgresLeagueRepository(db *sql.DB) LeagueRepository {
	return &postgresLeagueRepository{db: db}
}

func (r *postgresLeagueRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const leagueColumns = `id, club_id, creator_id, name, description, public, registration_deadline, start_date, end_date, status, created_at`

func (r *postgresLeagueRepository) Create(ctx context.Context, league *models.League) error {
	query := `
		INSERT INTO leagues
			(club_id, creator_id, name, description, public, registration_deadline, start_date, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		league.ClubID,
		league.CreatorID,
		league.Name,
		league.Description,
		league.Public,
		league.RegistrationDeadline,
		league.StartDate,
		league.Status,
	).Scan(&league.ID, &league.CreatedAt)

	return r.handleLeagueError(err)
}

func (r *postgresLeagueRepository) scanLeague(rowScanner interface{ Scan(...interface{}) error }) (*models.League, error) {
	var l models.League
	err := rowScanner.Scan(
		&l.ID, &l.ClubID, &l.CreatorID, &l.Name, &l.Description, &l.Public,
		&l.RegistrationDeadline, &l.StartDate, &l.EndDate, &l.Status, &l.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLeagueNotFound
		}
		return nil, err
	}
	return &l, nil
}

func (r *postgresLeagueRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.League, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + leagueColumns + ` FROM leagues WHERE id = $1`
	return r.scanLeague(executor.QueryRowContext(ctx, query, id))
}

func (r *postgresLeagueRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.League, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + leagueColumns + ` FROM leagues WHERE id = $1 FOR UPDATE`
	return r.scanLeague(executor.QueryRowContext(ctx, query, id))
}

func (r *postgresLeagueRepository) List(ctx context.Context, status *models.LeagueStatus, publicOnly bool) ([]*models.League, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + leagueColumns + ` FROM leagues WHERE 1=1`)

	args := []interface{}{}
	placeholderIndex := 1

	if status != nil {
		queryBuilder.WriteString(" AND status = $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		args = append(args, *status)
		placeholderIndex++
	}
	if publicOnly {
		queryBuilder.WriteString(" AND public = TRUE")
	}
	queryBuilder.WriteString(" ORDER BY start_date ASC, id ASC")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leagues := make([]*models.League, 0)
	for rows.Next() {
		l, errScan := r.scanLeague(rows)
		if errScan != nil {
			return nil, errScan
		}
		leagues = append(leagues, l)
	}
	return leagues, rows.Err()
}

func (r *postgresLeagueRepository) ListByStatus(ctx context.Context, status models.LeagueStatus) ([]*models.League, error) {
	return r.List(ctx, &status, false)
}

func (r *postgresLeagueRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.LeagueStatus) error {
	executor := r.getExecutor(exec)
	query := `UPDATE leagues SET status = $1 WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrLeagueNotFound)
}

func (r *postgresLeagueRepository) SetActivation(ctx context.Context, exec SQLExecutor, id int, endDate time.Time, status models.LeagueStatus) error {
	executor := r.getExecutor(exec)
	query := `UPDATE leagues SET end_date = $1, status = $2 WHERE id = $3`
	result, err := executor.ExecContext(ctx, query, endDate, status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrLeagueNotFound)
}

func (r *postgresLeagueRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `DELETE FROM leagues WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrLeagueNotFound)
}

func (r *postgresLeagueRepository) AddPlayer(ctx context.Context, exec SQLExecutor, leagueID, userID int) error {
	executor := r.getExecutor(exec)
	query := `INSERT INTO league_players (league_id, user_id) VALUES ($1, $2)`
	_, err := executor.ExecContext(ctx, query, leagueID, userID)
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505": // unique_violation
			return ErrLeaguePlayerConflict
		case "23503": // foreign_key_violation
			return ErrLeaguePlayerInvalid
		}
	}
	return err
}

func (r *postgresLeagueRepository) RemovePlayer(ctx context.Context, exec SQLExecutor, leagueID, userID int) error {
	executor := r.getExecutor(exec)
	query := `DELETE FROM league_players WHERE league_id = $1 AND user_id = $2`
	result, err := executor.ExecContext(ctx, query, leagueID, userID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrLeaguePlayerNotFound)
}

func (r *postgresLeagueRepository) ListPlayers(ctx context.Context, exec SQLExecutor, leagueID int) ([]models.User, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT u.id, u.first_name, u.last_name, u.nickname, u.email, u.password_hash, u.role, u.club_id, u.avatar_key, u.created_at
		FROM league_players lp
		JOIN users u ON u.id = lp.user_id
		WHERE lp.league_id = $1
		ORDER BY u.id ASC`

	rows, err := executor.QueryContext(ctx, query, leagueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	players := make([]models.User, 0)
	for rows.Next() {
		var u models.User
		if err := rows.Scan(
			&u.ID, &u.FirstName, &u.LastName, &u.Nickname, &u.Email,
			&u.PasswordHash, &u.Role, &u.ClubID, &u.AvatarKey, &u.CreatedAt,
		); err != nil {
			return nil, err
		}
		players = append(players, u)
	}
	return players, rows.Err()
}

func (r *postgresLeagueRepository) handleLeagueError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		if pqErr.Code == "23503" { // foreign_key_violation
			switch pqErr.Constraint {
			case "leagues_club_id_fkey":
				return ErrLeagueClubInvalid
			case "leagues_creator_id_fkey":
				return ErrLeaguePlayerInvalid
			}
		}
	}
	return err
}
