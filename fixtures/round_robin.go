package fixtures

import (
	"errors"
	"fmt"
)

// ErrInsufficientTeams is returned when fewer than two teams are available
// for schedule generation.
var ErrInsufficientTeams = errors.New("not enough teams to generate fixtures")

// byeTeamID is the placeholder inserted when the team count is odd. Pairings
// involving it are dropped, so the odd team out simply rests that round.
const byeTeamID = 0

// Pairing is one fixture slot: home side A against away side B.
type Pairing struct {
	TeamAID int
	TeamBID int
}

// RoundRobin builds a round-robin schedule over the given team IDs using the
// circle method: the first team stays fixed while the remaining teams rotate
// one seat per round, so every team meets every other exactly once per leg.
// With doubleRound the first leg is mirrored with home and away swapped.
//
// Returned jornadas are 0-indexed slices of pairings; no team appears twice
// within one jornada. Team IDs must be positive.
func RoundRobin(teamIDs []int, doubleRound bool) ([][]Pairing, error) {
	if len(teamIDs) < 2 {
		return nil, fmt.Errorf("%w: found %d, min 2 required", ErrInsufficientTeams, len(teamIDs))
	}

	order := make([]int, len(teamIDs))
	copy(order, teamIDs)
	if len(order)%2 != 0 {
		order = append(order, byeTeamID)
	}

	n := len(order)
	rounds := n - 1

	jornadas := make([][]Pairing, 0, rounds)
	for r := 0; r < rounds; r++ {
		jornada := make([]Pairing, 0, n/2)
		for i := 0; i < n/2; i++ {
			a := order[i]
			b := order[n-1-i]
			if a == byeTeamID || b == byeTeamID {
				continue
			}
			jornada = append(jornada, Pairing{TeamAID: a, TeamBID: b})
		}
		jornadas = append(jornadas, jornada)
		order = rotate(order)
	}

	if doubleRound {
		for r := 0; r < rounds; r++ {
			mirror := make([]Pairing, len(jornadas[r]))
			for i, p := range jornadas[r] {
				mirror[i] = Pairing{TeamAID: p.TeamBID, TeamBID: p.TeamAID}
			}
			jornadas = append(jornadas, mirror)
		}
	}

	return jornadas, nil
}

// rotate returns the next round's seating: the first seat is fixed, the last
// of the moving teams steps into the second seat and everyone else shifts
// one seat towards the end. The input is not modified.
func rotate(order []int) []int {
	next := make([]int, len(order))
	next[0] = order[0]
	next[1] = order[len(order)-1]
	copy(next[2:], order[1:len(order)-1])
	return next
}
