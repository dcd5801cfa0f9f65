package services

import (
	"context"
	"log/slog"

	"github.com/courtside/league-system/models"
)

// MatchResultEvent is handed to the notification sink after a result has
// been committed.
type MatchResultEvent struct {
	LeagueID   int    `json:"league_id"`
	LeagueName string `json:"league_name"`
	MatchID    int    `json:"match_id"`
	Jornada    int    `json:"jornada"`
	TeamA      string `json:"team_a"`
	TeamB      string `json:"team_b"`
	ScoreA     int    `json:"score_a"`
	ScoreB     int    `json:"score_b"`
}

// LeagueCompletedEvent carries the champion and the final table snapshot.
type LeagueCompletedEvent struct {
	LeagueID   int                  `json:"league_id"`
	LeagueName string               `json:"league_name"`
	Champion   *models.StandingRow  `json:"champion,omitempty"`
	Standings  []models.StandingRow `json:"standings"`
}

// Notifier is the delivery-side collaborator. The engine only emits
// structured event data; rendering and transport live behind this interface.
type Notifier interface {
	MatchResultRecorded(ctx context.Context, event MatchResultEvent) error
	LeagueCompleted(ctx context.Context, event LeagueCompletedEvent) error
}

// logNotifier is the fallback sink used when no mail transport is
// configured; it just records the events.
type logNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) Notifier {
	return &logNotifier{logger: logger}
}

func (n *logNotifier) MatchResultRecorded(_ context.Context, event MatchResultEvent) error {
	n.logger.Info("match result recorded",
		slog.Int("league_id", event.LeagueID),
		slog.Int("match_id", event.MatchID),
		slog.String("team_a", event.TeamA),
		slog.String("team_b", event.TeamB),
		slog.Int("score_a", event.ScoreA),
		slog.Int("score_b", event.ScoreB),
	)
	return nil
}

func (n *logNotifier) LeagueCompleted(_ context.Context, event LeagueCompletedEvent) error {
	champion := ""
	if event.Champion != nil {
		champion = event.Champion.TeamName
	}
	n.logger.Info("league completed",
		slog.Int("league_id", event.LeagueID),
		slog.String("league", event.LeagueName),
		slog.String("champion", champion),
	)
	return nil
}
