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
	ErrMatchNotFound      = errors.New("match not found")
	ErrMatchLeagueInvalid = errors.New("match league conflict or invalid")
	ErrMatchTeamInvalid   = errors.New("match team conflict or invalid")
)

// MatchCounts is the per-league fixture tally used by completion detection.
type MatchCounts struct {
	Total    int
	Finished int
}

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	ListByLeague(ctx context.Context, exec SQLExecutor, leagueID int, jornada *int, status *models.MatchStatus) ([]*models.Match, error)
	UpdateResult(ctx context.Context, exec SQLExecutor, id int, scoreA, scoreB int, playedAt time.Time) error
	UpdateSchedule(ctx context.Context, exec SQLExecutor, id int, scheduledAt time.Time, status models.MatchStatus) error
	// UpdateJornada renumbers a match within the schedule; scores and
	// status are untouched.
	UpdateJornada(ctx context.Context, exec SQLExecutor, id int, jornada int) error
	CountByLeague(ctx context.Context, exec SQLExecutor, leagueID int) (MatchCounts, error)
	DeleteUnfinishedByLeague(ctx context.Context, exec SQLExecutor, leagueID int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const matchColumns = `id, league_id, team_a_id, team_b_id, jornada, scheduled_at, status, score_a, score_b, played_at, created_at`

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO matches
			(league_id, team_a_id, team_b_id, jornada, scheduled_at, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		match.LeagueID,
		match.TeamAID,
		match.TeamBID,
		match.Jornada,
		match.ScheduledAt,
		match.Status,
	).Scan(&match.ID, &match.CreatedAt)

	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) scanMatch(rowScanner interface{ Scan(...interface{}) error }) (*models.Match, error) {
	var m models.Match
	err := rowScanner.Scan(
		&m.ID, &m.LeagueID, &m.TeamAID, &m.TeamBID, &m.Jornada,
		&m.ScheduledAt, &m.Status, &m.ScoreA, &m.ScoreB, &m.PlayedAt, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`
	return r.scanMatch(executor.QueryRowContext(ctx, query, id))
}

func (r *postgresMatchRepository) ListByLeague(ctx context.Context, exec SQLExecutor, leagueID int, jornadaFilter *int, statusFilter *models.MatchStatus) ([]*models.Match, error) {
	executor := r.getExecutor(exec)

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + matchColumns + ` FROM matches WHERE league_id = $1`)

	args := []interface{}{leagueID}
	placeholderIndex := 2

	if jornadaFilter != nil {
		queryBuilder.WriteString(" AND jornada = $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		args = append(args, *jornadaFilter)
		placeholderIndex++
	}
	if statusFilter != nil {
		queryBuilder.WriteString(" AND status = $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		args = append(args, *statusFilter)
		placeholderIndex++
	}
	queryBuilder.WriteString(" ORDER BY scheduled_at ASC, id ASC")

	rows, err := executor.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		m, errScan := r.scanMatch(rows)
		if errScan != nil {
			return nil, errScan
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (r *postgresMatchRepository) UpdateResult(ctx context.Context, exec SQLExecutor, id int, scoreA, scoreB int, playedAt time.Time) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE matches
		SET score_a = $1, score_b = $2, status = $3, played_at = $4
		WHERE id = $5`
	result, err := executor.ExecContext(ctx, query, scoreA, scoreB, models.MatchStatusFinished, playedAt, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateSchedule(ctx context.Context, exec SQLExecutor, id int, scheduledAt time.Time, status models.MatchStatus) error {
	executor := r.getExecutor(exec)
	query := `UPDATE matches SET scheduled_at = $1, status = $2 WHERE id = $3`
	result, err := executor.ExecContext(ctx, query, scheduledAt, status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateJornada(ctx context.Context, exec SQLExecutor, id int, jornada int) error {
	executor := r.getExecutor(exec)
	query := `UPDATE matches SET jornada = $1 WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, jornada, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) CountByLeague(ctx context.Context, exec SQLExecutor, leagueID int) (MatchCounts, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE status = $2)
		FROM matches
		WHERE league_id = $1`
	var counts MatchCounts
	err := executor.QueryRowContext(ctx, query, leagueID, models.MatchStatusFinished).Scan(&counts.Total, &counts.Finished)
	return counts, err
}

func (r *postgresMatchRepository) DeleteUnfinishedByLeague(ctx context.Context, exec SQLExecutor, leagueID int) error {
	executor := r.getExecutor(exec)
	query := `DELETE FROM matches WHERE league_id = $1 AND status <> $2`
	_, err := executor.ExecContext(ctx, query, leagueID, models.MatchStatusFinished)
	return err
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		if pqErr.Code == "23503" { // foreign_key_violation
			switch pqErr.Constraint {
			case "matches_league_id_fkey":
				return ErrMatchLeagueInvalid
			case "matches_team_a_id_fkey", "matches_team_b_id_fkey":
				return ErrMatchTeamInvalid
			}
		}
	}
	return err
}
