package services

import (
	"testing"

	"github.com/courtside/league-system/models"
	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func TestResolveScope(t *testing.T) {
	league := &models.League{ID: 1, ClubID: 7, CreatorID: 42}

	tests := []struct {
		name string
		user *models.User
		want Scope
	}{
		{"nil user", nil, ScopeNone},
		{"platform admin", &models.User{ID: 2, Role: models.RoleAdmin}, ScopeGlobal},
		{"club admin of owning club", &models.User{ID: 3, Role: models.RoleClubAdmin, ClubID: intPtr(7)}, ScopeClub},
		{"club admin of another club", &models.User{ID: 3, Role: models.RoleClubAdmin, ClubID: intPtr(8)}, ScopeNone},
		{"club admin without club", &models.User{ID: 3, Role: models.RoleClubAdmin}, ScopeNone},
		{"creator", &models.User{ID: 42, Role: models.RolePlayer}, ScopeOwner},
		{"unrelated player", &models.User{ID: 99, Role: models.RolePlayer}, ScopeNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveScope(tt.user, league))
		})
	}
}

func TestResolveScopeNilLeague(t *testing.T) {
	user := &models.User{ID: 1, Role: models.RoleAdmin}
	assert.Equal(t, ScopeNone, ResolveScope(user, nil))
}

func TestAuthorizeLeagueWrite(t *testing.T) {
	league := &models.League{ID: 1, ClubID: 7, CreatorID: 42}

	assert.NoError(t, authorizeLeagueWrite(&models.User{ID: 42}, league))
	assert.ErrorIs(t, authorizeLeagueWrite(&models.User{ID: 9, Role: models.RolePlayer}, league), ErrForbiddenOperation)
}

func TestScopeString(t *testing.T) {
	assert.Equal(t, "global", ScopeGlobal.String())
	assert.Equal(t, "club", ScopeClub.String())
	assert.Equal(t, "owner", ScopeOwner.String())
	assert.Equal(t, "none", ScopeNone.String())
}
