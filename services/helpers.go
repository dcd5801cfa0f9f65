package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/courtside/league-system/models"
)

// runInTx wraps fn in a transaction with the usual rollback-on-error and
// rollback-on-panic discipline.
func runInTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				err = fmt.Errorf("%w (rollback also failed: %v)", err, rbErr)
			}
			return
		}
		if cErr := tx.Commit(); cErr != nil {
			err = fmt.Errorf("failed to commit transaction: %w", cErr)
		}
	}()
	err = fn(tx)
	return err
}

// isValidStatusTransition gates every league status flip: forward only,
// one step at a time.
func isValidStatusTransition(current, next models.LeagueStatus) bool {
	allowedTransitions := map[models.LeagueStatus][]models.LeagueStatus{
		models.LeagueStatusPending:  {models.LeagueStatusActive},
		models.LeagueStatusActive:   {models.LeagueStatusFinished},
		models.LeagueStatusFinished: {},
	}
	for _, allowed := range allowedTransitions[current] {
		if next == allowed {
			return true
		}
	}
	return false
}

// teamDisplayName synthesizes the team name from the member nicknames.
func teamDisplayName(p1, p2 models.User) string {
	return p1.Nickname + " / " + p2.Nickname
}

// firstKickoff picks the wall-clock time of the first jornada: the league's
// start date when it is still in the future, otherwise the next day at the
// configured hour.
func firstKickoff(startDate time.Time, now time.Time, defaultHour int) time.Time {
	if startDate.After(now) {
		return startDate
	}
	next := now.AddDate(0, 0, 1)
	return time.Date(next.Year(), next.Month(), next.Day(), defaultHour, 0, 0, 0, next.Location())
}
