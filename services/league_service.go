package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/courtside/league-system/fixtures"
	"github.com/courtside/league-system/models"
	"github.com/courtside/league-system/repositories"
)

// SystemActorID marks operations triggered by the scheduler rather than a
// user; they bypass the capability check.
const SystemActorID = 0

// DefaultMatchHour is the first-jornada kickoff hour used when a league's
// start date is already in the past at activation time.
const DefaultMatchHour = 18

// StartResult reports what activation produced. Warnings carry observable
// side effects that are not errors, such as an odd roster leaving one
// player unpaired.
type StartResult struct {
	League   *models.League  `json:"league"`
	Teams    []*models.Team  `json:"teams"`
	Matches  []*models.Match `json:"matches"`
	Unpaired *models.User    `json:"unpaired,omitempty"`
	Warnings []string        `json:"warnings,omitempty"`
}

type CreateLeagueInput struct {
	ClubID               int       `json:"club_id"`
	Name                 string    `json:"name"`
	Description          *string   `json:"description"`
	Public               bool      `json:"public"`
	RegistrationDeadline time.Time `json:"registration_deadline"`
	StartDate            time.Time `json:"start_date"`
}

type LeagueService interface {
	Create(ctx context.Context, actorID int, input CreateLeagueInput) (*models.League, error)
	GetByID(ctx context.Context, id int) (*models.League, error)
	List(ctx context.Context, status *models.LeagueStatus, publicOnly bool) ([]*models.League, error)

	// Delete removes a league that has not started yet.
	Delete(ctx context.Context, actorID, leagueID int) error

	EnrollPlayer(ctx context.Context, actorID, leagueID, userID int) error
	RemovePlayer(ctx context.Context, actorID, leagueID, userID int) error
	CreateTeam(ctx context.Context, actorID, leagueID, player1ID, player2ID int) (*models.Team, error)

	Start(ctx context.Context, actorID, leagueID int) (*StartResult, error)
	CheckAndComplete(ctx context.Context, actorID, leagueID int) (bool, error)
	GenerateFixtures(ctx context.Context, actorID, leagueID int, regenerate bool) ([]*models.Match, error)
}

type leagueService struct {
	db          *sql.DB
	leagueRepo  repositories.LeagueRepository
	teamRepo    repositories.TeamRepository
	matchRepo   repositories.MatchRepository
	rankingRepo repositories.RankingRepository
	userRepo    repositories.UserRepository
	hub         *fixtures.Hub
	notifier    Notifier
	logger      *slog.Logger
	runTx       func(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error
}

func NewLeagueService(
	db *sql.DB,
	leagueRepo repositories.LeagueRepository,
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	rankingRepo repositories.RankingRepository,
	userRepo repositories.UserRepository,
	hub *fixtures.Hub,
	notifier Notifier,
	logger *slog.Logger,
) LeagueService {
	return &leagueService{
		db:          db,
		leagueRepo:  leagueRepo,
		teamRepo:    teamRepo,
		matchRepo:   matchRepo,
		rankingRepo: rankingRepo,
		userRepo:    userRepo,
		hub:         hub,
		notifier:    notifier,
		logger:      logger,
		runTx:       runInTx,
	}
}

// actor resolves the acting user; a nil return means the autonomous
// scheduler is acting and authorization is skipped.
func (s *leagueService) actor(ctx context.Context, actorID int) (*models.User, error) {
	if actorID == SystemActorID {
		return nil, nil
	}
	user, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrForbiddenOperation
		}
		return nil, err
	}
	return user, nil
}

func (s *leagueService) authorize(actor *models.User, league *models.League) error {
	if actor == nil {
		return nil
	}
	return authorizeLeagueWrite(actor, league)
}

func (s *leagueService) Create(ctx context.Context, actorID int, input CreateLeagueInput) (*models.League, error) {
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor == nil {
		return nil, ErrForbiddenOperation
	}
	if input.Name == "" || input.ClubID <= 0 {
		return nil, fmt.Errorf("%w: name and club are required", ErrValidationFailed)
	}
	if input.StartDate.IsZero() || input.RegistrationDeadline.IsZero() {
		return nil, fmt.Errorf("%w: registration deadline and start date are required", ErrValidationFailed)
	}
	if input.RegistrationDeadline.After(input.StartDate) {
		return nil, fmt.Errorf("%w: registration deadline cannot be after the start date", ErrValidationFailed)
	}

	league := &models.League{
		ClubID:               input.ClubID,
		CreatorID:            actor.ID,
		Name:                 input.Name,
		Description:          input.Description,
		Public:               input.Public,
		RegistrationDeadline: input.RegistrationDeadline,
		StartDate:            input.StartDate,
		Status:               models.LeagueStatusPending,
	}
	if err := s.leagueRepo.Create(ctx, league); err != nil {
		return nil, err
	}
	return league, nil
}

func (s *leagueService) GetByID(ctx context.Context, id int) (*models.League, error) {
	league, err := s.leagueRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return nil, ErrLeagueNotFound
		}
		return nil, err
	}
	return league, nil
}

func (s *leagueService) List(ctx context.Context, status *models.LeagueStatus, publicOnly bool) ([]*models.League, error) {
	return s.leagueRepo.List(ctx, status, publicOnly)
}

// Delete discards a league that never started. Active and finished leagues
// carry played results and stay on record.
func (s *leagueService) Delete(ctx context.Context, actorID, leagueID int) error {
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return err
	}
	return s.runTx(ctx, s.db, func(tx *sql.Tx) error {
		league, err := s.leagueRepo.GetByIDForUpdate(ctx, tx, leagueID)
		if err != nil {
			if errors.Is(err, repositories.ErrLeagueNotFound) {
				return ErrLeagueNotFound
			}
			return err
		}
		if err := s.authorize(actor, league); err != nil {
			return err
		}
		if league.Status != models.LeagueStatusPending {
			return ErrLeagueAlreadyStarted
		}
		if err := s.teamRepo.DeleteByLeague(ctx, tx, league.ID); err != nil {
			return err
		}
		return s.leagueRepo.Delete(ctx, tx, league.ID)
	})
}

// EnrollPlayer adds a player to a pending league's roster. The status check
// and the roster write share the league row lock so an enrollment cannot
// slip in while activation is pairing the roster.
func (s *leagueService) EnrollPlayer(ctx context.Context, actorID, leagueID, userID int) error {
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return err
	}
	return s.runTx(ctx, s.db, func(tx *sql.Tx) error {
		league, err := s.leagueRepo.GetByIDForUpdate(ctx, tx, leagueID)
		if err != nil {
			if errors.Is(err, repositories.ErrLeagueNotFound) {
				return ErrLeagueNotFound
			}
			return err
		}
		// Players may always enroll themselves; enrolling someone else
		// needs authority over the league.
		if actor != nil && actor.ID != userID {
			if err := s.authorize(actor, league); err != nil {
				return err
			}
		}
		if league.Status != models.LeagueStatusPending {
			return ErrLeagueAlreadyStarted
		}
		if time.Now().After(league.RegistrationDeadline) {
			return ErrRegistrationClosed
		}
		if err := s.leagueRepo.AddPlayer(ctx, tx, leagueID, userID); err != nil {
			if errors.Is(err, repositories.ErrLeaguePlayerConflict) {
				return fmt.Errorf("%w: player %d", ErrValidationFailed, userID)
			}
			return err
		}
		return nil
	})
}

func (s *leagueService) RemovePlayer(ctx context.Context, actorID, leagueID, userID int) error {
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return err
	}
	return s.runTx(ctx, s.db, func(tx *sql.Tx) error {
		league, err := s.leagueRepo.GetByIDForUpdate(ctx, tx, leagueID)
		if err != nil {
			if errors.Is(err, repositories.ErrLeagueNotFound) {
				return ErrLeagueNotFound
			}
			return err
		}
		if actor != nil && actor.ID != userID {
			if err := s.authorize(actor, league); err != nil {
				return err
			}
		}
		if league.Status != models.LeagueStatusPending {
			return ErrLeagueAlreadyStarted
		}
		if err := s.leagueRepo.RemovePlayer(ctx, tx, leagueID, userID); err != nil {
			if errors.Is(err, repositories.ErrLeaguePlayerNotFound) {
				return ErrPlayerNotEnrolled
			}
			return err
		}
		return nil
	})
}

// CreateTeam pairs two specific enrolled players manually, ahead of the
// random pairing done at activation.
func (s *leagueService) CreateTeam(ctx context.Context, actorID, leagueID, player1ID, player2ID int) (*models.Team, error) {
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if player1ID == player2ID {
		return nil, ErrSamePlayerTwice
	}

	var team *models.Team
	err = s.runTx(ctx, s.db, func(tx *sql.Tx) error {
		league, err := s.leagueRepo.GetByIDForUpdate(ctx, tx, leagueID)
		if err != nil {
			if errors.Is(err, repositories.ErrLeagueNotFound) {
				return ErrLeagueNotFound
			}
			return err
		}
		if err := s.authorize(actor, league); err != nil {
			return err
		}
		if league.Status != models.LeagueStatusPending {
			return ErrLeagueAlreadyStarted
		}

		players, err := s.leagueRepo.ListPlayers(ctx, tx, leagueID)
		if err != nil {
			return err
		}
		var p1, p2 *models.User
		for i := range players {
			switch players[i].ID {
			case player1ID:
				p1 = &players[i]
			case player2ID:
				p2 = &players[i]
			}
		}
		if p1 == nil || p2 == nil {
			return ErrPlayerNotEnrolled
		}

		for _, id := range []int{player1ID, player2ID} {
			paired, err := s.teamRepo.PlayerOnTeam(ctx, tx, leagueID, id)
			if err != nil {
				return err
			}
			if paired {
				return fmt.Errorf("%w: player %d", ErrPlayerAlreadyPaired, id)
			}
		}

		team = &models.Team{
			LeagueID:  leagueID,
			Name:      teamDisplayName(*p1, *p2),
			Player1ID: player1ID,
			Player2ID: player2ID,
		}
		return s.teamRepo.Create(ctx, tx, team)
	})
	if err != nil {
		return nil, err
	}
	return team, nil
}

// Start drives the league from PENDING to ACTIVE as one transaction:
// pairing, fixture generation, end-date computation, zeroed standings rows
// and the status flip either all land or none do.
func (s *leagueService) Start(ctx context.Context, actorID, leagueID int) (*StartResult, error) {
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	result := &StartResult{}
	err = s.runTx(ctx, s.db, func(tx *sql.Tx) error {
		league, err := s.leagueRepo.GetByIDForUpdate(ctx, tx, leagueID)
		if err != nil {
			if errors.Is(err, repositories.ErrLeagueNotFound) {
				return ErrLeagueNotFound
			}
			return err
		}
		if err := s.authorize(actor, league); err != nil {
			return err
		}
		if !isValidStatusTransition(league.Status, models.LeagueStatusActive) {
			return ErrLeagueAlreadyStarted
		}

		// A schedule generated ahead of activation must be regenerated
		// explicitly, not silently doubled.
		counts, err := s.matchRepo.CountByLeague(ctx, tx, league.ID)
		if err != nil {
			return err
		}
		if counts.Total > 0 {
			return ErrFixturesAlreadyExist
		}

		teams, unpaired, err := s.formTeams(ctx, tx, league)
		if err != nil {
			return err
		}
		if len(teams) < 2 {
			return fmt.Errorf("%w: found %d", ErrInsufficientTeams, len(teams))
		}

		matches, err := s.createFixtures(ctx, tx, league, teams)
		if err != nil {
			return err
		}

		// End date is only known once the team count is: one week per
		// jornada, two legs.
		endDate := league.StartDate.AddDate(0, 0, 14*(len(teams)-1))
		if err := s.leagueRepo.SetActivation(ctx, tx, league.ID, endDate, models.LeagueStatusActive); err != nil {
			return err
		}

		if err := s.initRankings(ctx, tx, league.ID, teams); err != nil {
			return err
		}

		league.EndDate = &endDate
		league.Status = models.LeagueStatusActive
		result.League = league
		result.Teams = teams
		result.Matches = matches
		result.Unpaired = unpaired
		if unpaired != nil {
			result.Warnings = append(result.Warnings,
				"odd roster: player "+unpaired.Nickname+" ("+strconv.Itoa(unpaired.ID)+") is left unpaired")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Unpaired != nil {
		s.logger.Warn("league started with an unpaired player",
			slog.Int("league_id", leagueID),
			slog.Int("user_id", result.Unpaired.ID),
		)
	}
	s.logger.Info("league started",
		slog.Int("league_id", leagueID),
		slog.Int("teams", len(result.Teams)),
		slog.Int("matches", len(result.Matches)),
	)
	s.hub.BroadcastToRoom(leagueRoom(leagueID), fixtures.WebSocketMessage{
		Type:    fixtures.EventLeagueStarted,
		Payload: result,
		RoomID:  leagueRoom(leagueID),
	})
	return result, nil
}

// formTeams is the pairing pass: enrolled players not yet on a team are
// shuffled and paired; pre-existing manual teams are kept as they are.
func (s *leagueService) formTeams(ctx context.Context, tx *sql.Tx, league *models.League) ([]*models.Team, *models.User, error) {
	existing, err := s.teamRepo.ListByLeague(ctx, tx, league.ID)
	if err != nil {
		return nil, nil, err
	}
	players, err := s.leagueRepo.ListPlayers(ctx, tx, league.ID)
	if err != nil {
		return nil, nil, err
	}

	paired := make(map[int]bool)
	for _, team := range existing {
		paired[team.Player1ID] = true
		paired[team.Player2ID] = true
	}
	unpairedPlayers := make([]models.User, 0, len(players))
	for _, p := range players {
		if !paired[p.ID] {
			unpairedPlayers = append(unpairedPlayers, p)
		}
	}
	if len(existing) == 0 && len(unpairedPlayers) < 4 {
		return nil, nil, fmt.Errorf("%w: have %d", ErrInsufficientPlayers, len(unpairedPlayers))
	}

	pairs, leftover := fixtures.PairPlayers(unpairedPlayers, nil)

	teams := existing
	for _, pair := range pairs {
		team := &models.Team{
			LeagueID:  league.ID,
			Name:      teamDisplayName(pair.Player1, pair.Player2),
			Player1ID: pair.Player1.ID,
			Player2ID: pair.Player2.ID,
		}
		if err := s.teamRepo.Create(ctx, tx, team); err != nil {
			return nil, nil, err
		}
		teams = append(teams, team)
	}
	return teams, leftover, nil
}

// createFixtures persists a full double round-robin for the given teams.
func (s *leagueService) createFixtures(ctx context.Context, tx *sql.Tx, league *models.League, teams []*models.Team) ([]*models.Match, error) {
	teamIDs := make([]int, len(teams))
	for i, t := range teams {
		teamIDs[i] = t.ID
	}

	jornadas, err := fixtures.RoundRobin(teamIDs, true)
	if err != nil {
		if errors.Is(err, fixtures.ErrInsufficientTeams) {
			return nil, fmt.Errorf("%w: found %d", ErrInsufficientTeams, len(teams))
		}
		return nil, err
	}

	base := firstKickoff(league.StartDate, time.Now(), DefaultMatchHour)
	matches := make([]*models.Match, 0)
	for j, jornada := range jornadas {
		for i, pairing := range jornada {
			match := &models.Match{
				LeagueID:    league.ID,
				TeamAID:     pairing.TeamAID,
				TeamBID:     pairing.TeamBID,
				Jornada:     j + 1,
				ScheduledAt: fixtures.Kickoff(base, j, i),
				Status:      models.MatchStatusScheduled,
			}
			if err := s.matchRepo.Create(ctx, tx, match); err != nil {
				return nil, err
			}
			matches = append(matches, match)
		}
	}
	return matches, nil
}

// initRankings creates the zeroed standings rows for every team and every
// member, so result submission never has to create rows on demand.
func (s *leagueService) initRankings(ctx context.Context, tx *sql.Tx, leagueID int, teams []*models.Team) error {
	teamIDs := make([]int, 0, len(teams))
	userIDs := make([]int, 0, 2*len(teams))
	for _, t := range teams {
		teamIDs = append(teamIDs, t.ID)
		userIDs = append(userIDs, t.Player1ID, t.Player2ID)
	}
	if err := s.rankingRepo.EnsureTeamRows(ctx, tx, leagueID, teamIDs); err != nil {
		return err
	}
	return s.rankingRepo.EnsurePlayerRows(ctx, tx, leagueID, userIDs)
}

// CheckAndComplete flips an ACTIVE league whose fixtures are all finished to
// FINISHED and emits the completion event. Calling it on an already
// finished league is a no-op.
func (s *leagueService) CheckAndComplete(ctx context.Context, actorID, leagueID int) (bool, error) {
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return false, err
	}

	var event *LeagueCompletedEvent
	err = s.runTx(ctx, s.db, func(tx *sql.Tx) error {
		league, err := s.leagueRepo.GetByIDForUpdate(ctx, tx, leagueID)
		if err != nil {
			if errors.Is(err, repositories.ErrLeagueNotFound) {
				return ErrLeagueNotFound
			}
			return err
		}
		if err := s.authorize(actor, league); err != nil {
			return err
		}
		if !isValidStatusTransition(league.Status, models.LeagueStatusFinished) {
			return nil
		}

		counts, err := s.matchRepo.CountByLeague(ctx, tx, league.ID)
		if err != nil {
			return err
		}
		if counts.Total == 0 || counts.Finished < counts.Total {
			return nil
		}

		standings, err := s.rankingRepo.ListTeamStandings(ctx, tx, league.ID)
		if err != nil {
			return err
		}
		if err := s.leagueRepo.UpdateStatus(ctx, tx, league.ID, models.LeagueStatusFinished); err != nil {
			return err
		}

		event = &LeagueCompletedEvent{
			LeagueID:   league.ID,
			LeagueName: league.Name,
			Standings:  standings,
		}
		if len(standings) > 0 {
			champion := standings[0]
			event.Champion = &champion
		}
		return nil
	})
	if err != nil || event == nil {
		return false, err
	}

	s.logger.Info("league completed",
		slog.Int("league_id", leagueID),
		slog.String("league", event.LeagueName),
	)
	s.hub.BroadcastToRoom(leagueRoom(leagueID), fixtures.WebSocketMessage{
		Type:    fixtures.EventLeagueCompleted,
		Payload: event,
		RoomID:  leagueRoom(leagueID),
	})
	if err := s.notifier.LeagueCompleted(ctx, *event); err != nil {
		s.logger.Error("failed to deliver league completed notification",
			slog.Int("league_id", leagueID), slog.Any("error", err))
	}
	return true, nil
}

// GenerateFixtures builds the schedule for a league that already has teams.
// It refuses when fixtures exist unless regenerate is set, in which case
// non-finished matches are replaced and finished ones survive.
func (s *leagueService) GenerateFixtures(ctx context.Context, actorID, leagueID int, regenerate bool) ([]*models.Match, error) {
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	var created []*models.Match
	err = s.runTx(ctx, s.db, func(tx *sql.Tx) error {
		league, err := s.leagueRepo.GetByIDForUpdate(ctx, tx, leagueID)
		if err != nil {
			if errors.Is(err, repositories.ErrLeagueNotFound) {
				return ErrLeagueNotFound
			}
			return err
		}
		if err := s.authorize(actor, league); err != nil {
			return err
		}
		if league.Status == models.LeagueStatusFinished {
			return ErrLeagueAlreadyFinished
		}

		counts, err := s.matchRepo.CountByLeague(ctx, tx, league.ID)
		if err != nil {
			return err
		}
		if counts.Total > 0 && !regenerate {
			return ErrFixturesAlreadyExist
		}

		teams, err := s.teamRepo.ListByLeague(ctx, tx, league.ID)
		if err != nil {
			return err
		}
		if len(teams) < 2 {
			return fmt.Errorf("%w: found %d", ErrInsufficientTeams, len(teams))
		}

		// Keep finished results; only unplayed fixtures are rebuilt.
		playedPairings := make(map[[2]int]*models.Match)
		if regenerate {
			finished := models.MatchStatusFinished
			finishedMatches, err := s.matchRepo.ListByLeague(ctx, tx, league.ID, nil, &finished)
			if err != nil {
				return err
			}
			for _, m := range finishedMatches {
				playedPairings[[2]int{m.TeamAID, m.TeamBID}] = m
			}
			if err := s.matchRepo.DeleteUnfinishedByLeague(ctx, tx, league.ID); err != nil {
				return err
			}
		}

		teamIDs := make([]int, len(teams))
		for i, t := range teams {
			teamIDs[i] = t.ID
		}
		jornadas, err := fixtures.RoundRobin(teamIDs, true)
		if err != nil {
			return err
		}

		base := firstKickoff(league.StartDate, time.Now(), DefaultMatchHour)
		for j, jornada := range jornadas {
			for i, pairing := range jornada {
				if kept := playedPairings[[2]int{pairing.TeamAID, pairing.TeamBID}]; kept != nil {
					// The rebuilt schedule renumbers from scratch, so
					// surviving results take the jornada their pairing
					// got this time around.
					if kept.Jornada != j+1 {
						if err := s.matchRepo.UpdateJornada(ctx, tx, kept.ID, j+1); err != nil {
							return err
						}
						kept.Jornada = j + 1
					}
					continue
				}
				match := &models.Match{
					LeagueID:    league.ID,
					TeamAID:     pairing.TeamAID,
					TeamBID:     pairing.TeamBID,
					Jornada:     j + 1,
					ScheduledAt: fixtures.Kickoff(base, j, i),
					Status:      models.MatchStatusScheduled,
				}
				if err := s.matchRepo.Create(ctx, tx, match); err != nil {
					return err
				}
				created = append(created, match)
			}
		}

		// Teams added after activation need their zeroed ranking rows.
		return s.initRankings(ctx, tx, league.ID, teams)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func leagueRoom(leagueID int) string {
	return "league_" + strconv.Itoa(leagueID)
}
