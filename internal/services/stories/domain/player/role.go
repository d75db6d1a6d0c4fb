package player

import (
	"fmt"
	"strings"
)

// Role constrains which commands a player may issue and whose story they
// mutate.
type Role string

const (
	RolePlayer     Role = "player"
	RoleTeamLead   Role = "team_lead"
	RoleDirector   Role = "director"
	RoleUnassigned Role = "unassigned"
)

// ParseRole resolves a role name case-insensitively. Empty means RolePlayer.
func ParseRole(value string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", string(RolePlayer):
		return RolePlayer, nil
	case string(RoleTeamLead), "team-lead", "lead":
		return RoleTeamLead, nil
	case string(RoleDirector):
		return RoleDirector, nil
	case string(RoleUnassigned):
		return RoleUnassigned, nil
	default:
		return "", fmt.Errorf("unknown player role %q", value)
	}
}

// CanDirect reports whether the role may change game parameters in
// collaborative and team games.
func (r Role) CanDirect() bool {
	return r == RoleDirector || r == RoleTeamLead
}
