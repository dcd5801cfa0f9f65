package fixtures

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func teamIDs(n int) []int {
	ids := make([]int, n)
	for i := range ids {
		ids[i] = i + 1
	}
	return ids
}

func TestRoundRobinRejectsTooFewTeams(t *testing.T) {
	_, err := RoundRobin(nil, false)
	require.ErrorIs(t, err, ErrInsufficientTeams)

	_, err = RoundRobin([]int{7}, true)
	require.ErrorIs(t, err, ErrInsufficientTeams)
}

func TestRoundRobinSingleLegFourTeams(t *testing.T) {
	jornadas, err := RoundRobin([]int{1, 2, 3, 4}, false)
	require.NoError(t, err)

	require.Len(t, jornadas, 3)
	for _, jornada := range jornadas {
		assert.Len(t, jornada, 2)
	}

	// Round one of the circle method: 1v4 and 2v3.
	assert.Equal(t, Pairing{TeamAID: 1, TeamBID: 4}, jornadas[0][0])
	assert.Equal(t, Pairing{TeamAID: 2, TeamBID: 3}, jornadas[0][1])
}

func TestRoundRobinProperties(t *testing.T) {
	for n := 2; n <= 8; n++ {
		for _, doubleRound := range []bool{false, true} {
			name := fmt.Sprintf("n=%d/double=%v", n, doubleRound)
			t.Run(name, func(t *testing.T) {
				ids := teamIDs(n)
				jornadas, err := RoundRobin(ids, doubleRound)
				require.NoError(t, err)

				rounds := n - 1
				if n%2 != 0 {
					rounds = n
				}
				if doubleRound {
					rounds *= 2
				}
				require.Len(t, jornadas, rounds)

				meetings := make(map[[2]int]int)
				total := 0
				for _, jornada := range jornadas {
					seen := make(map[int]bool)
					for _, p := range jornada {
						assert.NotEqual(t, p.TeamAID, p.TeamBID, "team paired with itself")
						assert.Positive(t, p.TeamAID)
						assert.Positive(t, p.TeamBID)

						assert.False(t, seen[p.TeamAID], "team %d plays twice in one jornada", p.TeamAID)
						assert.False(t, seen[p.TeamBID], "team %d plays twice in one jornada", p.TeamBID)
						seen[p.TeamAID] = true
						seen[p.TeamBID] = true

						key := [2]int{min(p.TeamAID, p.TeamBID), max(p.TeamAID, p.TeamBID)}
						meetings[key]++
						total++
					}
				}

				perPair := 1
				if doubleRound {
					perPair = 2
				}
				for pair, count := range meetings {
					assert.Equal(t, perPair, count, "pair %v", pair)
				}

				expected := n * (n - 1) / 2 * perPair
				assert.Equal(t, expected, total)
			})
		}
	}
}

func TestRoundRobinDoubleLegMirrorsHomeAndAway(t *testing.T) {
	jornadas, err := RoundRobin(teamIDs(6), true)
	require.NoError(t, err)
	require.Len(t, jornadas, 10)

	legLength := 5
	for r := 0; r < legLength; r++ {
		first := jornadas[r]
		second := jornadas[r+legLength]
		require.Len(t, second, len(first))
		for i, p := range first {
			assert.Equal(t, Pairing{TeamAID: p.TeamBID, TeamBID: p.TeamAID}, second[i])
		}
	}
}

func TestRoundRobinOddCountGivesEveryTeamOneRest(t *testing.T) {
	ids := teamIDs(5)
	jornadas, err := RoundRobin(ids, false)
	require.NoError(t, err)
	require.Len(t, jornadas, 5)

	rests := make(map[int]int)
	for _, jornada := range jornadas {
		assert.Len(t, jornada, 2)
		playing := make(map[int]bool)
		for _, p := range jornada {
			playing[p.TeamAID] = true
			playing[p.TeamBID] = true
		}
		for _, id := range ids {
			if !playing[id] {
				rests[id]++
			}
		}
	}
	for _, id := range ids {
		assert.Equal(t, 1, rests[id], "team %d rests", id)
	}
}

func TestRoundRobinDoesNotModifyInput(t *testing.T) {
	ids := []int{10, 20, 30, 40, 50}
	_, err := RoundRobin(ids, true)
	require.NoError(t, err)
	assert.Equal(t, []int{10, 20, 30, 40, 50}, ids)
}

func TestRotateKeepsFirstSeatFixed(t *testing.T) {
	order := []int{1, 2, 3, 4, 5, 6}
	next := rotate(order)

	assert.Equal(t, []int{1, 6, 2, 3, 4, 5}, next)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, order, "rotate must not modify its input")

	// n-1 rotations return to the original seating.
	seating := order
	for i := 0; i < len(order)-1; i++ {
		seating = rotate(seating)
	}
	assert.Equal(t, order, seating)
}
