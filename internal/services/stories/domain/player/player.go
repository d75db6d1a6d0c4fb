// Package player holds per-player turn bookkeeping and team membership.
package player

import (
	"fmt"

	apperrors "github.com/louisbranch/stories/internal/platform/errors"
	"github.com/louisbranch/stories/internal/services/stories/domain/card"
	"github.com/louisbranch/stories/internal/services/stories/domain/hand"
)

// Phase is where a player stands within their turn.
type Phase int

const (
	PhaseAwaitingDraw Phase = iota
	PhaseHasDrawn
	PhaseTurnComplete
)

func (p Phase) String() string {
	switch p {
	case PhaseAwaitingDraw:
		return "awaiting_draw"
	case PhaseHasDrawn:
		return "has_drawn"
	case PhaseTurnComplete:
		return "turn_complete"
	default:
		return "unknown"
	}
}

// Player is one seat at the table.
type Player struct {
	ID       string
	Name     string
	Initials string
	Number   int
	Role     Role
	Team     string
	Points   int
	Hand     *hand.Hand

	CardsPlayed    int
	CardsDiscarded int
	HasDrawn       bool

	// ElementsPlayed counts story elements played into this player's story.
	ElementsPlayed map[card.Category]int
}

// New returns a player with an empty hand.
func New(id, name, initials string, role Role) *Player {
	return &Player{
		ID:             id,
		Name:           name,
		Initials:       initials,
		Role:           role,
		Hand:           hand.New(),
		ElementsPlayed: newElementCounts(),
	}
}

func newElementCounts() map[card.Category]int {
	return map[card.Category]int{
		card.CategoryTitle:   0,
		card.CategoryOpening: 0,
		card.CategoryStory:   0,
		card.CategoryClosing: 0,
		card.CategoryAction:  0,
	}
}

// Phase derives the turn phase from the turn counters.
func (p *Player) Phase() Phase {
	switch {
	case !p.HasDrawn:
		return PhaseAwaitingDraw
	case p.CardsPlayed == 0 && p.CardsDiscarded == 0:
		return PhaseHasDrawn
	default:
		return PhaseTurnComplete
	}
}

// Draw adds a drawn card to the hand.
func (p *Player) Draw(c *card.Card) {
	p.Hand.Add(c)
	p.HasDrawn = true
}

// RecordElement counts c against the story element tallies. An Opening/Story
// card counts as the Opening until one has been played.
func (p *Player) RecordElement(c *card.Card) {
	category := c.Category
	if category == card.CategoryOpeningStory {
		category = card.CategoryStory
		if p.ElementsPlayed[card.CategoryOpening] == 0 {
			p.ElementsPlayed[card.CategoryOpening] = 1
			return
		}
	}
	p.ElementsPlayed[category]++
}

// ForgetElement reverses RecordElement for a card leaving the story.
func (p *Player) ForgetElement(c *card.Card) {
	category := c.Category
	if category == card.CategoryOpeningStory {
		category = card.CategoryStory
		if p.ElementsPlayed[card.CategoryStory] == 0 {
			category = card.CategoryOpening
		}
	}
	if p.ElementsPlayed[category] > 0 {
		p.ElementsPlayed[category]--
	}
}

// Discard removes a held card and counts it against the turn.
func (p *Player) Discard(number int) (*card.Card, error) {
	c := p.Hand.Remove(number)
	if c == nil {
		return nil, apperrors.WithMetadata(apperrors.CodeInvalidCardReference,
			fmt.Sprintf("You are not holding a card with number %d", number),
			map[string]string{"Card": fmt.Sprint(number)})
	}
	p.CardsDiscarded++
	return c, nil
}

// EndTurn closes the turn. Unless bypass is set the player must have drawn
// and then played or discarded at least once.
func (p *Player) EndTurn(bypass bool) error {
	if !bypass {
		if !p.HasDrawn {
			return apperrors.New(apperrors.CodeTurnPreconditionViolated,
				"You must draw a card and then either play or discard a card.")
		}
		if p.CardsPlayed == 0 && p.CardsDiscarded == 0 {
			return apperrors.New(apperrors.CodeTurnPreconditionViolated,
				"You must play at least 1 card or discard 1 card")
		}
	}
	p.ResetTurn()
	return nil
}

// ResetTurn clears the per-turn counters.
func (p *Player) ResetTurn() {
	p.CardsPlayed = 0
	p.CardsDiscarded = 0
	p.HasDrawn = false
}

// Elements returns a copy of the story element tallies.
func (p *Player) Elements() map[card.Category]int {
	out := make(map[card.Category]int, len(p.ElementsPlayed))
	for k, v := range p.ElementsPlayed {
		out[k] = v
	}
	return out
}

// HasCompleteStory reports whether exactly one Title, Opening and Closing
// have been played.
func (p *Player) HasCompleteStory() bool {
	return p.ElementsPlayed[card.CategoryTitle] == 1 &&
		p.ElementsPlayed[card.CategoryOpening] == 1 &&
		p.ElementsPlayed[card.CategoryClosing] == 1
}

// AllPlayed reports whether every one of players has played at least one
// card of category. It is false for no players.
func AllPlayed(players []*Player, category card.Category) bool {
	if len(players) == 0 {
		return false
	}
	for _, p := range players {
		if p.ElementsPlayed[category] == 0 {
			return false
		}
	}
	return true
}

func (p *Player) String() string {
	return fmt.Sprintf("%s (%s) player# %d", p.Name, p.Initials, p.Number)
}
