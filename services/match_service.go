package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/courtside/league-system/fixtures"
	"github.com/courtside/league-system/models"
	"github.com/courtside/league-system/repositories"
)

type MatchService interface {
	GetByID(ctx context.Context, id int) (*models.Match, error)
	ListByLeague(ctx context.Context, leagueID int, jornada *int, status *models.MatchStatus) ([]*models.Match, error)
	// RecordResult finalizes a match, books the result into the standings
	// and triggers the league completion check.
	RecordResult(ctx context.Context, actorID, matchID, scoreA, scoreB int) (*models.Match, error)
	// Reschedule moves a not-yet-played match, flagging it POSTPONED.
	Reschedule(ctx context.Context, actorID, matchID int, newTime time.Time) (*models.Match, error)
}

type matchService struct {
	db             *sql.DB
	matchRepo      repositories.MatchRepository
	teamRepo       repositories.TeamRepository
	leagueRepo     repositories.LeagueRepository
	userRepo       repositories.UserRepository
	rankingService RankingService
	leagueService  LeagueService
	hub            *fixtures.Hub
	notifier       Notifier
	logger         *slog.Logger
}

func NewMatchService(
	db *sql.DB,
	matchRepo repositories.MatchRepository,
	teamRepo repositories.TeamRepository,
	leagueRepo repositories.LeagueRepository,
	userRepo repositories.UserRepository,
	rankingService RankingService,
	leagueService LeagueService,
	hub *fixtures.Hub,
	notifier Notifier,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		db:             db,
		matchRepo:      matchRepo,
		teamRepo:       teamRepo,
		leagueRepo:     leagueRepo,
		userRepo:       userRepo,
		rankingService: rankingService,
		leagueService:  leagueService,
		hub:            hub,
		notifier:       notifier,
		logger:         logger,
	}
}

func (s *matchService) GetByID(ctx context.Context, id int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return match, nil
}

func (s *matchService) ListByLeague(ctx context.Context, leagueID int, jornada *int, status *models.MatchStatus) ([]*models.Match, error) {
	if _, err := s.leagueRepo.GetByID(ctx, nil, leagueID); err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return nil, ErrLeagueNotFound
		}
		return nil, err
	}
	return s.matchRepo.ListByLeague(ctx, nil, leagueID, jornada, status)
}

func (s *matchService) actor(ctx context.Context, actorID int) (*models.User, error) {
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

func (s *matchService) RecordResult(ctx context.Context, actorID, matchID, scoreA, scoreB int) (*models.Match, error) {
	if scoreA < 0 || scoreB < 0 {
		return nil, ErrNegativeScore
	}
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	// Resolve the league outside the transaction, then lock it: all
	// ranking and completion work for one league is serialized on its row.
	probe, err := s.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}

	var match *models.Match
	var event MatchResultEvent
	err = runInTx(ctx, s.db, func(tx *sql.Tx) error {
		league, err := s.leagueRepo.GetByIDForUpdate(ctx, tx, probe.LeagueID)
		if err != nil {
			if errors.Is(err, repositories.ErrLeagueNotFound) {
				return ErrLeagueNotFound
			}
			return err
		}
		if actor != nil {
			if err := authorizeLeagueWrite(actor, league); err != nil {
				return err
			}
		}
		if league.Status != models.LeagueStatusActive {
			return ErrLeagueNotActive
		}

		match, err = s.matchRepo.GetByID(ctx, tx, matchID)
		if err != nil {
			if errors.Is(err, repositories.ErrMatchNotFound) {
				return ErrMatchNotFound
			}
			return err
		}
		if !match.Playable() {
			return fmt.Errorf("%w: status %s", ErrInvalidMatchState, match.Status)
		}

		playedAt := time.Now()
		if err := s.matchRepo.UpdateResult(ctx, tx, match.ID, scoreA, scoreB, playedAt); err != nil {
			return err
		}
		if err := s.rankingService.ApplyResult(ctx, tx, match, scoreA, scoreB); err != nil {
			return err
		}

		match.ScoreA = &scoreA
		match.ScoreB = &scoreB
		match.Status = models.MatchStatusFinished
		match.PlayedAt = &playedAt

		teamA, err := s.teamRepo.GetByID(ctx, match.TeamAID)
		if err != nil {
			if errors.Is(err, repositories.ErrTeamNotFound) {
				return fmt.Errorf("%w: team %d", ErrTeamNotFound, match.TeamAID)
			}
			return err
		}
		teamB, err := s.teamRepo.GetByID(ctx, match.TeamBID)
		if err != nil {
			if errors.Is(err, repositories.ErrTeamNotFound) {
				return fmt.Errorf("%w: team %d", ErrTeamNotFound, match.TeamBID)
			}
			return err
		}
		event = MatchResultEvent{
			LeagueID:   league.ID,
			LeagueName: league.Name,
			MatchID:    match.ID,
			Jornada:    match.Jornada,
			TeamA:      teamA.Name,
			TeamB:      teamB.Name,
			ScoreA:     scoreA,
			ScoreB:     scoreB,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.hub.BroadcastToRoom(leagueRoom(match.LeagueID), fixtures.WebSocketMessage{
		Type:    fixtures.EventMatchResult,
		Payload: event,
		RoomID:  leagueRoom(match.LeagueID),
	})
	if err := s.notifier.MatchResultRecorded(ctx, event); err != nil {
		s.logger.Error("failed to deliver match result notification",
			slog.Int("match_id", matchID), slog.Any("error", err))
	}

	// The submission may have been the league's last pending fixture.
	if _, err := s.leagueService.CheckAndComplete(ctx, actorID, match.LeagueID); err != nil {
		s.logger.Error("completion check after result failed",
			slog.Int("league_id", match.LeagueID), slog.Any("error", err))
	}
	return match, nil
}

func (s *matchService) Reschedule(ctx context.Context, actorID, matchID int, newTime time.Time) (*models.Match, error) {
	if newTime.IsZero() {
		return nil, fmt.Errorf("%w: new match time is required", ErrValidationFailed)
	}
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	probe, err := s.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}

	var match *models.Match
	err = runInTx(ctx, s.db, func(tx *sql.Tx) error {
		league, err := s.leagueRepo.GetByIDForUpdate(ctx, tx, probe.LeagueID)
		if err != nil {
			if errors.Is(err, repositories.ErrLeagueNotFound) {
				return ErrLeagueNotFound
			}
			return err
		}
		if actor != nil {
			if err := authorizeLeagueWrite(actor, league); err != nil {
				return err
			}
		}

		match, err = s.matchRepo.GetByID(ctx, tx, matchID)
		if err != nil {
			if errors.Is(err, repositories.ErrMatchNotFound) {
				return ErrMatchNotFound
			}
			return err
		}
		if !match.Playable() {
			return fmt.Errorf("%w: status %s", ErrInvalidMatchState, match.Status)
		}
		if err := s.matchRepo.UpdateSchedule(ctx, tx, match.ID, newTime, models.MatchStatusPostponed); err != nil {
			return err
		}
		match.ScheduledAt = newTime
		match.Status = models.MatchStatusPostponed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return match, nil
}
