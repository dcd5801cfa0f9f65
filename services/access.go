package services

import "github.com/courtside/league-system/models"

// Scope is the level of authority a user holds over a league.
type Scope int

const (
	// ScopeNone grants nothing.
	ScopeNone Scope = iota
	// ScopeOwner is the league's creator.
	ScopeOwner
	// ScopeClub is a club admin of the league's owning club.
	ScopeClub
	// ScopeGlobal is a platform administrator.
	ScopeGlobal
)

func (s Scope) String() string {
	switch s {
	case ScopeOwner:
		return "owner"
	case ScopeClub:
		return "club"
	case ScopeGlobal:
		return "global"
	default:
		return "none"
	}
}

// ResolveScope computes the single capability a user holds over a league.
// Every lifecycle-mutating operation consults this one function instead of
// scattering role checks.
func ResolveScope(user *models.User, league *models.League) Scope {
	if user == nil || league == nil {
		return ScopeNone
	}
	switch {
	case user.Role == models.RoleAdmin:
		return ScopeGlobal
	case user.Role == models.RoleClubAdmin && user.ClubID != nil && *user.ClubID == league.ClubID:
		return ScopeClub
	case user.ID == league.CreatorID:
		return ScopeOwner
	default:
		return ScopeNone
	}
}

// authorizeLeagueWrite gates every mutating league operation.
func authorizeLeagueWrite(user *models.User, league *models.League) error {
	if ResolveScope(user, league) == ScopeNone {
		return ErrForbiddenOperation
	}
	return nil
}
