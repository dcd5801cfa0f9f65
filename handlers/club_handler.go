package handlers

import (
	"errors"
	"net/http"

	"github.com/courtside/league-system/middleware"
	"github.com/courtside/league-system/models"
	"github.com/courtside/league-system/services"
)

type ClubHandler struct {
	clubService services.ClubService
	userService services.UserService
}

func NewClubHandler(cs services.ClubService, us services.UserService) *ClubHandler {
	return &ClubHandler{clubService: cs, userService: us}
}

func (h *ClubHandler) actor(r *http.Request) (*models.User, error) {
	actorID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		return nil, err
	}
	return h.userService.GetByID(r.Context(), actorID)
}

func (h *ClubHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	var input struct {
		Name string `json:"name"`
	}
	err = readJSON(w, r, &input)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if input.Name == "" {
		badRequestResponse(w, r, errors.New("name is required"))
		return
	}

	club, err := h.clubService.Create(r.Context(), actor, input.Name)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	err = writeJSON(w, http.StatusCreated, jsonResponse{"club": club}, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ClubHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	clubID, err := idFromURL(r, "clubID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	club, err := h.clubService.GetByID(r.Context(), clubID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	err = writeJSON(w, http.StatusOK, jsonResponse{"club": club}, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ClubHandler) List(w http.ResponseWriter, r *http.Request) {
	clubs, err := h.clubService.List(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	err = writeJSON(w, http.StatusOK, jsonResponse{"clubs": clubs}, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ClubHandler) UploadEmblem(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	clubID, err := idFromURL(r, "clubID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		badRequestResponse(w, r, errors.New("failed to parse multipart form"))
		return
	}

	file, header, err := r.FormFile("emblem")
	if err != nil {
		badRequestResponse(w, r, errors.New("emblem file is required"))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")

	club, err := h.clubService.UploadEmblem(r.Context(), actor, clubID, contentType, file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	err = writeJSON(w, http.StatusOK, jsonResponse{"club": club}, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}
