package player

// Team is a named group sharing the lead's story.
type Team struct {
	Name    string
	Members []*Player
}

// NewTeam creates a team. The first member becomes the lead and the rest
// plain players.
func NewTeam(name string, members ...*Player) *Team {
	t := &Team{Name: name}
	for i, p := range members {
		role := RolePlayer
		if i == 0 {
			role = RoleTeamLead
		}
		t.Add(p, role)
	}
	return t
}

// Add joins p to the team with role. Existing members are left alone.
func (t *Team) Add(p *Player, role Role) {
	if t.Has(p) {
		return
	}
	p.Role = role
	p.Team = t.Name
	t.Members = append(t.Members, p)
}

// Has reports membership.
func (t *Team) Has(p *Player) bool {
	for _, m := range t.Members {
		if m == p {
			return true
		}
	}
	return false
}

// Leads returns the members holding the team lead role.
func (t *Team) Leads() []*Player {
	var leads []*Player
	for _, m := range t.Members {
		if m.Role == RoleTeamLead {
			leads = append(leads, m)
		}
	}
	return leads
}
