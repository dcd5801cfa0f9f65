package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/courtside/league-system/models"
	"github.com/lib/pq"
)

var (
	ErrClubNotFound     = errors.New("club not found")
	ErrClubNameConflict = errors.New("club name already exists")
)

type ClubRepository interface {
	Create(ctx context.Context, club *models.Club) error
	GetByID(ctx context.Context, id int) (*models.Club, error)
	List(ctx context.Context) ([]*models.Club, error)
	UpdateEmblemKey(ctx context.Context, id int, key *string) error
}

type postgresClubRepository struct {
	db *sql.DB
}

func NewPostgresClubRepository(db *sql.DB) ClubRepository {
	return &postgresClubRepository{db: db}
}

func (r *postgresClubRepository) Create(ctx context.Context, club *models.Club) error {
	query := `INSERT INTO clubs (name) VALUES ($1) RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, club.Name).Scan(&club.ID, &club.CreatedAt)
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" { // unique_violation
		return ErrClubNameConflict
	}
	return err
}

func (r *postgresClubRepository) GetByID(ctx context.Context, id int) (*models.Club, error) {
	query := `SELECT id, name, emblem_key, created_at FROM clubs WHERE id = $1`
	var c models.Club
	err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &c.EmblemKey, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClubNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *postgresClubRepository) List(ctx context.Context) ([]*models.Club, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, emblem_key, created_at FROM clubs ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	clubs := make([]*models.Club, 0)
	for rows.Next() {
		var c models.Club
		if err := rows.Scan(&c.ID, &c.Name, &c.EmblemKey, &c.CreatedAt); err != nil {
			return nil, err
		}
		clubs = append(clubs, &c)
	}
	return clubs, rows.Err()
}

func (r *postgresClubRepository) UpdateEmblemKey(ctx context.Context, id int, key *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE clubs SET emblem_key = $1 WHERE id = $2`, key, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrClubNotFound)
}
