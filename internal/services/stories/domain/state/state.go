// Package state holds the table: seats in turn order, the current player,
// turn and round counters, teams, and categories no longer drawn.
package state

import (
	"fmt"
	"strconv"
	"strings"

	apperrors "github.com/louisbranch/stories/internal/platform/errors"
	"github.com/louisbranch/stories/internal/services/stories/domain/card"
	"github.com/louisbranch/stories/internal/services/stories/domain/player"
)

// NotStarted is the current index before Start.
const NotStarted = -1

// GameState is the mutable table for one game.
type GameState struct {
	players    []*player.Player
	teams      []*player.Team
	current    int
	turns      int
	rounds     int
	started    bool
	suppressed []card.Category
}

// New returns an empty table.
func New() *GameState {
	return &GameState{current: NotStarted}
}

// AddPlayer seats p at the end of the turn order. Initials must be unique
// regardless of case.
func (s *GameState) AddPlayer(p *player.Player) error {
	if strings.TrimSpace(p.Initials) == "" {
		return apperrors.New(apperrors.CodeInvalidPlayer, "player initials are required")
	}
	if s.ByInitials(p.Initials) != nil {
		return apperrors.WithMetadata(apperrors.CodeDuplicatePlayer,
			fmt.Sprintf("a player with initials %s is already in this game", p.Initials),
			map[string]string{"Initials": p.Initials})
	}
	p.Number = len(s.players)
	s.players = append(s.players, p)
	return nil
}

// Players returns the seats in turn order.
func (s *GameState) Players() []*player.Player {
	return append([]*player.Player(nil), s.players...)
}

// Len returns the number of seats.
func (s *GameState) Len() int { return len(s.players) }

// Seat returns the player at number, or nil.
func (s *GameState) Seat(number int) *player.Player {
	if number < 0 || number >= len(s.players) {
		return nil
	}
	return s.players[number]
}

// Start hands the first turn to seat 0.
func (s *GameState) Start() error {
	if len(s.players) == 0 {
		return apperrors.New(apperrors.CodeInvalidPlayer, "add at least one player before starting")
	}
	s.current = 0
	s.started = true
	return nil
}

// Started reports whether Start was called.
func (s *GameState) Started() bool { return s.started }

// Current returns the player whose turn it is, or nil before Start.
func (s *GameState) Current() *player.Player {
	return s.Seat(s.current)
}

// CurrentIndex returns the current seat, NotStarted before Start.
func (s *GameState) CurrentIndex() int { return s.current }

// Turns counts completed turns.
func (s *GameState) Turns() int { return s.turns }

// Rounds counts passes around the table.
func (s *GameState) Rounds() int { return s.rounds }

// Advance moves to the next seat and returns it. Wrapping to seat 0 starts a
// new round.
func (s *GameState) Advance() int {
	if len(s.players) == 0 {
		return NotStarted
	}
	s.current = (s.current + 1) % len(s.players)
	s.turns++
	if s.current == 0 {
		s.rounds++
	}
	return s.current
}

// Next returns the seat to the left of p.
func (s *GameState) Next(p *player.Player) *player.Player {
	if len(s.players) == 0 {
		return nil
	}
	return s.players[(p.Number+1)%len(s.players)]
}

// Previous returns the seat to the right of p.
func (s *GameState) Previous(p *player.Player) *player.Player {
	if len(s.players) == 0 {
		return nil
	}
	n := len(s.players)
	return s.players[(p.Number-1+n)%n]
}

// ByInitials finds a player by initials, ignoring case.
func (s *GameState) ByInitials(initials string) *player.Player {
	for _, p := range s.players {
		if strings.EqualFold(p.Initials, initials) {
			return p
		}
	}
	return nil
}

// Lookup finds a player by seat number, initials, name or id.
func (s *GameState) Lookup(ref string) *player.Player {
	ref = strings.TrimSpace(ref)
	if n, err := strconv.Atoi(ref); err == nil {
		return s.Seat(n)
	}
	if p := s.ByInitials(ref); p != nil {
		return p
	}
	for _, p := range s.players {
		if strings.EqualFold(p.Name, ref) || (p.ID != "" && p.ID == ref) {
			return p
		}
	}
	return nil
}

// ByRole returns every player holding role.
func (s *GameState) ByRole(role player.Role) []*player.Player {
	var out []*player.Player
	for _, p := range s.players {
		if p.Role == role {
			out = append(out, p)
		}
	}
	return out
}

// AddTeam forms a team from seated players. The first member leads.
func (s *GameState) AddTeam(name string, members []*player.Player) (*player.Team, error) {
	if s.Team(name) != nil {
		return nil, apperrors.New(apperrors.CodeInvalidArgument, fmt.Sprintf("team: '%s' already exists", name))
	}
	if len(members) == 0 {
		return nil, apperrors.New(apperrors.CodeInvalidArgumentCount, "a team needs at least one member")
	}
	team := player.NewTeam(name, members...)
	s.teams = append(s.teams, team)
	return team, nil
}

// Team returns the team named name, or nil.
func (s *GameState) Team(name string) *player.Team {
	for _, t := range s.teams {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// Teams returns every team in creation order.
func (s *GameState) Teams() []*player.Team {
	return append([]*player.Team(nil), s.teams...)
}

// Suppress stops category from being drawn. It reports whether the category
// was newly suppressed.
func (s *GameState) Suppress(category card.Category) bool {
	if s.IsSuppressed(category) {
		return false
	}
	s.suppressed = append(s.suppressed, category)
	return true
}

// IsSuppressed reports whether category is no longer drawn.
func (s *GameState) IsSuppressed(category card.Category) bool {
	for _, c := range s.suppressed {
		if c == category {
			return true
		}
	}
	return false
}

// Suppressed returns the suppressed categories in the order they were added.
func (s *GameState) Suppressed() []card.Category {
	return append([]card.Category(nil), s.suppressed...)
}
