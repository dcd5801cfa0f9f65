package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/courtside/league-system/middleware"
	"github.com/courtside/league-system/models"
	"github.com/courtside/league-system/services"
)

type LeagueHandler struct {
	leagueService  services.LeagueService
	matchService   services.MatchService
	rankingService services.RankingService
}

func NewLeagueHandler(
	ls services.LeagueService,
	ms services.MatchService,
	rs services.RankingService,
) *LeagueHandler {
	return &LeagueHandler{
		leagueService:  ls,
		matchService:   ms,
		rankingService: rs,
	}
}

func (h *LeagueHandler) Create(w http.ResponseWriter, r *http.Request) {
	actorID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	var input services.CreateLeagueInput
	err = readJSON(w, r, &input)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if input.Name == "" || input.ClubID <= 0 {
		badRequestResponse(w, r, errors.New("name and club_id are required"))
		return
	}

	league, err := h.leagueService.Create(r.Context(), actorID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	err = writeJSON(w, http.StatusCreated, jsonResponse{"league": league}, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *LeagueHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	leagueID, err := idFromURL(r, "leagueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	league, err := h.leagueService.GetByID(r.Context(), leagueID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	err = writeJSON(w, http.StatusOK, jsonResponse{"league": league}, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *LeagueHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actorID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	leagueID, err := idFromURL(r, "leagueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	err = h.leagueService.Delete(r.Context(), actorID, leagueID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *LeagueHandler) List(w http.ResponseWriter, r *http.Request) {
	var status *models.LeagueStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := models.LeagueStatus(raw)
		switch s {
		case models.LeagueStatusPending, models.LeagueStatusActive, models.LeagueStatusFinished:
			status = &s
		default:
			badRequestResponse(w, r, errors.New("invalid status filter"))
			return
		}
	}

	publicOnly := r.URL.Query().Get("public") == "true"

	leagues, err := h.leagueService.List(r.Context(), status, publicOnly)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	err = writeJSON(w, http.StatusOK, jsonResponse{"leagues": leagues}, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *LeagueHandler) EnrollPlayer(w http.ResponseWriter, r *http.Request) {
	actorID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	leagueID, err := idFromURL(r, "leagueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	// Without a body the caller enrolls themselves.
	userID := actorID
	if r.ContentLength > 0 {
		var input struct {
			UserID int `json:"user_id"`
		}
		if err := readJSON(w, r, &input); err != nil {
			badRequestResponse(w, r, err)
			return
		}
		if input.UserID > 0 {
			userID = input.UserID
		}
	}

	err = h.leagueService.EnrollPlayer(r.Context(), actorID, leagueID, userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	err = writeJSON(w, http.StatusCreated, jsonResponse{"enrolled": userID}, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *LeagueHandler) RemovePlayer(w http.ResponseWriter, r *http.Request) {
	actorID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	leagueID, err := idFromURL(r, "leagueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	userID, err := idFromURL(r, "userID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	err = h.leagueService.RemovePlayer(r.Context(), actorID, leagueID, userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *LeagueHandler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	actorID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	leagueID, err := idFromURL(r, "leagueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Player1ID int `json:"player1_id"`
		Player2ID int `json:"player2_id"`
	}
	err = readJSON(w, r, &input)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if input.Player1ID <= 0 || input.Player2ID <= 0 {
		badRequestResponse(w, r, errors.New("player1_id and player2_id are required"))
		return
	}

	team, err := h.leagueService.CreateTeam(r.Context(), actorID, leagueID, input.Player1ID, input.Player2ID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	err = writeJSON(w, http.StatusCreated, jsonResponse{"team": team}, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *LeagueHandler) Start(w http.ResponseWriter, r *http.Request) {
	actorID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	leagueID, err := idFromURL(r, "leagueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.leagueService.Start(r.Context(), actorID, leagueID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"league":  result.League,
		"teams":   result.Teams,
		"matches": result.Matches,
	}
	if result.Unpaired != nil {
		response["unpaired"] = result.Unpaired
	}
	if len(result.Warnings) > 0 {
		response["warnings"] = result.Warnings
	}

	err = writeJSON(w, http.StatusOK, response, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *LeagueHandler) Complete(w http.ResponseWriter, r *http.Request) {
	actorID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	leagueID, err := idFromURL(r, "leagueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	completed, err := h.leagueService.CheckAndComplete(r.Context(), actorID, leagueID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	err = writeJSON(w, http.StatusOK, jsonResponse{"completed": completed}, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *LeagueHandler) GenerateFixtures(w http.ResponseWriter, r *http.Request) {
	actorID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	leagueID, err := idFromURL(r, "leagueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	regenerate := r.URL.Query().Get("regenerate") == "true"

	matches, err := h.leagueService.GenerateFixtures(r.Context(), actorID, leagueID, regenerate)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	err = writeJSON(w, http.StatusCreated, jsonResponse{"matches": matches}, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *LeagueHandler) Standings(w http.ResponseWriter, r *http.Request) {
	leagueID, err := idFromURL(r, "leagueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	standings, err := h.rankingService.GetStandings(r.Context(), leagueID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	err = writeJSON(w, http.StatusOK, jsonResponse{"standings": standings}, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *LeagueHandler) PlayerRankings(w http.ResponseWriter, r *http.Request) {
	leagueID, err := idFromURL(r, "leagueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	rankings, err := h.rankingService.GetPlayerRankings(r.Context(), leagueID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	err = writeJSON(w, http.StatusOK, jsonResponse{"rankings": rankings}, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *LeagueHandler) RecomputeRankings(w http.ResponseWriter, r *http.Request) {
	leagueID, err := idFromURL(r, "leagueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	err = h.rankingService.RecomputeAll(r.Context(), leagueID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	standings, err := h.rankingService.GetStandings(r.Context(), leagueID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	err = writeJSON(w, http.StatusOK, jsonResponse{"standings": standings}, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *LeagueHandler) Matches(w http.ResponseWriter, r *http.Request) {
	leagueID, err := idFromURL(r, "leagueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var jornada *int
	if raw := r.URL.Query().Get("jornada"); raw != "" {
		j, convErr := strconv.Atoi(raw)
		if convErr != nil || j <= 0 {
			badRequestResponse(w, r, errors.New("invalid jornada filter"))
			return
		}
		jornada = &j
	}

	var status *models.MatchStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := models.MatchStatus(raw)
		switch s {
		case models.MatchStatusScheduled, models.MatchStatusFinished, models.MatchStatusPostponed:
			status = &s
		default:
			badRequestResponse(w, r, errors.New("invalid status filter"))
			return
		}
	}

	matches, err := h.matchService.ListByLeague(r.Context(), leagueID, jornada, status)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	err = writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}
