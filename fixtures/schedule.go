package fixtures

import "time"

const (
	// JornadaInterval separates consecutive matchdays.
	JornadaInterval = 7 * 24 * time.Hour
	// SiblingMatchGap spaces matches of the same jornada in pairing order.
	SiblingMatchGap = 2 * time.Hour
)

// Kickoff computes the wall-clock time for the match at position matchIndex
// of jornada (both 0-indexed), with jornada 0 starting at firstKickoff.
func Kickoff(firstKickoff time.Time, jornada, matchIndex int) time.Time {
	return firstKickoff.
		Add(time.Duration(jornada) * JornadaInterval).
		Add(time.Duration(matchIndex) * SiblingMatchGap)
}
