package models

import "time"

// TeamRanking is the accumulated standings row for one team within one
// league. played = wins + draws + losses at all times; points move only
// through the ranking service.
type TeamRanking struct {
	ID        int       `json:"id" db:"id"`
	LeagueID  int       `json:"league_id" db:"league_id"`
	TeamID    int       `json:"team_id" db:"team_id"`
	Played    int       `json:"played" db:"played"`
	Wins      int       `json:"wins" db:"wins"`
	Draws     int       `json:"draws" db:"draws"`
	Losses    int       `json:"losses" db:"losses"`
	Points    int       `json:"points" db:"points"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	Team *Team `json:"team,omitempty" db:"-"`
}

// PlayerRanking is the companion individual-mode row: each player of a team
// receives the team's result.
type PlayerRanking struct {
	ID        int       `json:"id" db:"id"`
	LeagueID  int       `json:"league_id" db:"league_id"`
	UserID    int       `json:"user_id" db:"user_id"`
	Played    int       `json:"played" db:"played"`
	Wins      int       `json:"wins" db:"wins"`
	Draws     int       `json:"draws" db:"draws"`
	Losses    int       `json:"losses" db:"losses"`
	Points    int       `json:"points" db:"points"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	User *User `json:"user,omitempty" db:"-"`
}

// StandingRow is the display form of a team ranking, enriched with the
// member names.
type StandingRow struct {
	Position int    `json:"position"`
	TeamID   int    `json:"team_id"`
	TeamName string `json:"team_name"`
	Player1  string `json:"player1"`
	Player2  string `json:"player2"`
	Played   int    `json:"played"`
	Wins     int    `json:"wins"`
	Draws    int    `json:"draws"`
	Losses   int    `json:"losses"`
	Points   int    `json:"points"`
}
