package models

import "time"

type MatchStatus string

const (
	MatchStatusScheduled MatchStatus = "scheduled"
	MatchStatusFinished  MatchStatus = "finished"
	MatchStatusPostponed MatchStatus = "postponed"
)

// Match is one fixture between two teams of the same league. Jornada groups
// it with the sibling matches of the same round.
type Match struct {
	ID          int         `json:"id" db:"id"`
	LeagueID    int         `json:"league_id" db:"league_id"`
	TeamAID     int         `json:"team_a_id" db:"team_a_id"`
	TeamBID     int         `json:"team_b_id" db:"team_b_id"`
	Jornada     int         `json:"jornada" db:"jornada"`
	ScheduledAt time.Time   `json:"scheduled_at" db:"scheduled_at"`
	Status      MatchStatus `json:"status" db:"status"`
	ScoreA      *int        `json:"score_a,omitempty" db:"score_a"`
	ScoreB      *int        `json:"score_b,omitempty" db:"score_b"`
	PlayedAt    *time.Time  `json:"played_at,omitempty" db:"played_at"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`

	TeamA *Team `json:"team_a,omitempty" db:"-"`
	TeamB *Team `json:"team_b,omitempty" db:"-"`
}

// Playable reports whether a result may still be recorded for the match.
func (m *Match) Playable() bool {
	return m.Status == MatchStatusScheduled || m.Status == MatchStatusPostponed
}
