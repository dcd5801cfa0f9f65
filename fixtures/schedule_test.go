package fixtures

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKickoffSpacing(t *testing.T) {
	first := time.Date(2026, time.March, 2, 18, 0, 0, 0, time.UTC)

	assert.Equal(t, first, Kickoff(first, 0, 0))
	assert.Equal(t, first.Add(2*time.Hour), Kickoff(first, 0, 1))
	assert.Equal(t, first.AddDate(0, 0, 7), Kickoff(first, 1, 0))
	assert.Equal(t, first.AddDate(0, 0, 21).Add(4*time.Hour), Kickoff(first, 3, 2))
}

func TestKickoffSiblingsShareTheDay(t *testing.T) {
	first := time.Date(2026, time.March, 2, 18, 0, 0, 0, time.UTC)

	for matchIndex := 0; matchIndex < 3; matchIndex++ {
		kickoff := Kickoff(first, 2, matchIndex)
		assert.Equal(t, first.AddDate(0, 0, 14).Day(), kickoff.Day())
	}
}
