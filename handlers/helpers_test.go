package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/courtside/league-system/services"
	"github.com/stretchr/testify/assert"
)

func TestMapServiceErrorToHTTP(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"league not found", services.ErrLeagueNotFound, http.StatusNotFound},
		{"match not found", services.ErrMatchNotFound, http.StatusNotFound},
		{"already started", services.ErrLeagueAlreadyStarted, http.StatusConflict},
		{"not active", services.ErrLeagueNotActive, http.StatusConflict},
		{"fixtures exist", services.ErrFixturesAlreadyExist, http.StatusConflict},
		{"invalid match state", services.ErrInvalidMatchState, http.StatusConflict},
		{"insufficient teams", services.ErrInsufficientTeams, http.StatusUnprocessableEntity},
		{"negative score", services.ErrNegativeScore, http.StatusUnprocessableEntity},
		{"player not enrolled", services.ErrPlayerNotEnrolled, http.StatusUnprocessableEntity},
		{"bad credentials", services.ErrInvalidCredentials, http.StatusUnauthorized},
		{"forbidden", services.ErrForbiddenOperation, http.StatusForbidden},
		{"unknown error", errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			mapServiceErrorToHTTP(rec, req, tt.err)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestMapServiceErrorToHTTPWrappedError(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	wrapped := errors.Join(errors.New("context"), services.ErrLeagueNotFound)
	mapServiceErrorToHTTP(rec, req, wrapped)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
