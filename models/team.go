package models

import "time"

// Team is a doubles pair inside a single league. Exactly two members,
// each belonging to at most one team per league.
type Team struct {
	ID        int       `json:"id" db:"id"`
	LeagueID  int       `json:"league_id" db:"league_id"`
	Name      string    `json:"name" db:"name"`
	Player1ID int       `json:"player1_id" db:"player1_id"`
	Player2ID int       `json:"player2_id" db:"player2_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	Player1 *User `json:"player1,omitempty" db:"-"`
	Player2 *User `json:"player2,omitempty" db:"-"`
}

func (t *Team) HasPlayer(userID int) bool {
	return t.Player1ID == userID || t.Player2ID == userID
}
