package fixtures

import (
	"math/rand/v2"

	"github.com/courtside/league-system/models"
)

// PlayerPair holds the two players of a freshly formed doubles team, in
// shuffle order.
type PlayerPair struct {
	Player1 models.User
	Player2 models.User
}

// PairPlayers partitions the given players into doubles pairs after a
// uniform shuffle. With an odd count the last player stays unpaired and is
// returned separately; callers surface that as a warning, not an error.
//
// A nil rng uses the package-level source, which is safe for concurrent
// callers; a *rand.Rand is not, so callers passing one (tests wanting
// determinism) must not share it across goroutines.
//
// Players already on a team must be filtered out by the caller; this
// function pairs everything it is given.
func PairPlayers(players []models.User, rng *rand.Rand) ([]PlayerPair, *models.User) {
	shuffled := make([]models.User, len(players))
	copy(shuffled, players)
	swap := func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	if rng != nil {
		rng.Shuffle(len(shuffled), swap)
	} else {
		rand.Shuffle(len(shuffled), swap)
	}

	pairs := make([]PlayerPair, 0, len(shuffled)/2)
	for i := 0; i+1 < len(shuffled); i += 2 {
		pairs = append(pairs, PlayerPair{Player1: shuffled[i], Player2: shuffled[i+1]})
	}

	var unpaired *models.User
	if len(shuffled)%2 != 0 {
		last := shuffled[len(shuffled)-1]
		unpaired = &last
	}
	return pairs, unpaired
}
