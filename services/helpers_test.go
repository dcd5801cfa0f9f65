package services

import (
	"testing"
	"time"

	"github.com/courtside/league-system/models"
	"github.com/stretchr/testify/assert"
)

func TestIsValidStatusTransition(t *testing.T) {
	tests := []struct {
		current models.LeagueStatus
		next    models.LeagueStatus
		want    bool
	}{
		{models.LeagueStatusPending, models.LeagueStatusActive, true},
		{models.LeagueStatusActive, models.LeagueStatusFinished, true},
		{models.LeagueStatusPending, models.LeagueStatusPending, false},
		{models.LeagueStatusActive, models.LeagueStatusActive, false},
		{models.LeagueStatusFinished, models.LeagueStatusFinished, false},
		{models.LeagueStatusPending, models.LeagueStatusFinished, false},
		{models.LeagueStatusActive, models.LeagueStatusPending, false},
		{models.LeagueStatusFinished, models.LeagueStatusActive, false},
		{models.LeagueStatusFinished, models.LeagueStatusPending, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isValidStatusTransition(tt.current, tt.next),
			"%s -> %s", tt.current, tt.next)
	}
}

func TestTeamDisplayName(t *testing.T) {
	p1 := models.User{Nickname: "ace"}
	p2 := models.User{Nickname: "smash"}
	assert.Equal(t, "ace / smash", teamDisplayName(p1, p2))
}

func TestFirstKickoff(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

	future := time.Date(2026, time.March, 20, 18, 0, 0, 0, time.UTC)
	assert.Equal(t, future, firstKickoff(future, now, DefaultMatchHour))

	// A past start date pushes the first jornada to tomorrow at the
	// default hour.
	past := time.Date(2026, time.March, 1, 18, 0, 0, 0, time.UTC)
	want := time.Date(2026, time.March, 11, DefaultMatchHour, 0, 0, 0, time.UTC)
	assert.Equal(t, want, firstKickoff(past, now, DefaultMatchHour))
}
