package models

import "time"

// LeagueStatus mirrors the league_status ENUM in the database.
type LeagueStatus string

const (
	LeagueStatusPending  LeagueStatus = "pending"
	LeagueStatusActive   LeagueStatus = "active"
	LeagueStatusFinished LeagueStatus = "finished"
)

type League struct {
	ID                   int          `json:"id" db:"id"`
	ClubID               int          `json:"club_id" db:"club_id"`
	CreatorID            int          `json:"creator_id" db:"creator_id"`
	Name                 string       `json:"name" db:"name"`
	Description          *string      `json:"description,omitempty" db:"description"`
	Public               bool         `json:"public" db:"public"`
	RegistrationDeadline time.Time    `json:"registration_deadline" db:"registration_deadline"`
	StartDate            time.Time    `json:"start_date" db:"start_date"`
	EndDate              *time.Time   `json:"end_date,omitempty" db:"end_date"`
	Status               LeagueStatus `json:"status" db:"status"`
	CreatedAt            time.Time    `json:"created_at" db:"created_at"`

	// Optional linked entities, populated by services, never scanned directly.
	Club    *Club  `json:"club,omitempty" db:"-"`
	Creator *User  `json:"creator,omitempty" db:"-"`
	Players []User `json:"players,omitempty" db:"-"`
	Teams   []Team `json:"teams,omitempty" db:"-"`
}
