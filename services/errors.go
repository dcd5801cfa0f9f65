package services

import "errors"

// Business errors shared between services and the HTTP error mapping. All of
// them are recoverable at the caller level.
var (
	// Not found
	ErrLeagueNotFound = errors.New("league not found")
	ErrTeamNotFound   = errors.New("team not found")
	ErrMatchNotFound  = errors.New("match not found")
	ErrUserNotFound   = errors.New("user not found")
	ErrClubNotFound   = errors.New("club not found")

	// Invalid lifecycle state
	ErrLeagueAlreadyStarted  = errors.New("league has already been started")
	ErrLeagueNotActive       = errors.New("league is not active")
	ErrLeagueAlreadyFinished = errors.New("league is already finished")
	ErrRegistrationClosed    = errors.New("league registration is closed")
	ErrInvalidMatchState     = errors.New("match is not in a state that accepts this operation")
	ErrFixturesAlreadyExist  = errors.New("fixtures already exist for this league")

	// Validation
	ErrValidationFailed      = errors.New("validation failed")
	ErrInsufficientTeams     = errors.New("not enough teams to run the league")
	ErrInsufficientPlayers   = errors.New("not enough enrolled players to form teams")
	ErrPlayerAlreadyPaired   = errors.New("player already belongs to a team in this league")
	ErrPlayerNotEnrolled     = errors.New("player is not enrolled in this league")
	ErrSamePlayerTwice       = errors.New("a team needs two distinct players")
	ErrNegativeScore         = errors.New("scores must be zero or positive")
	ErrMatchTeamsNotAssigned = errors.New("match does not have two assigned teams")
	ErrPasswordTooShort      = errors.New("password is too short")
	ErrEmailConflict         = errors.New("email address is already in use")

	// Authentication and authorization
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrForbiddenOperation = errors.New("operation not allowed for the current user")
)
