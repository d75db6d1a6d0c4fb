package engine

import (
	"strings"

	apperrors "github.com/louisbranch/stories/internal/platform/errors"
	"github.com/louisbranch/stories/internal/services/stories/domain/card"
	"github.com/louisbranch/stories/internal/services/stories/domain/player"
)

// Snapshot is a read-only view of a game.
type Snapshot struct {
	GameID      string           `json:"game_id"`
	Genre       string           `json:"genre"`
	Mode        PlayMode         `json:"play_mode"`
	Started     bool             `json:"started"`
	Finished    bool             `json:"finished"`
	Current     string           `json:"current,omitempty"`
	Turns       int              `json:"turns"`
	Rounds      int              `json:"rounds"`
	Suppressed  []card.Category  `json:"suppressed,omitempty"`
	DiscardSize int              `json:"discard_size"`
	DeckActive  int              `json:"deck_active"`
	Players     []PlayerSnapshot `json:"players"`
}

// PlayerSnapshot is a read-only view of one player.
type PlayerSnapshot struct {
	Number         int                   `json:"number"`
	Initials       string                `json:"initials"`
	Name           string                `json:"name"`
	Role           string                `json:"role"`
	Team           string                `json:"team,omitempty"`
	Points         int                   `json:"points"`
	HandSize       int                   `json:"hand_size"`
	StoryLength    int                   `json:"story_length"`
	CardsPlayed    int                   `json:"cards_played"`
	CardsDiscarded int                   `json:"cards_discarded"`
	HasDrawn       bool                  `json:"has_drawn"`
	Phase          string                `json:"phase"`
	Elements       map[card.Category]int `json:"elements"`
}

// Status returns the game snapshot. A non-empty ref limits Players to that
// player.
func (g *Game) Status(ref string) (Snapshot, error) {
	snap := Snapshot{
		GameID:      g.id,
		Genre:       g.genre,
		Mode:        g.params.PlayMode,
		Started:     g.table.Started(),
		Finished:    g.finished,
		Turns:       g.table.Turns(),
		Rounds:      g.table.Rounds(),
		Suppressed:  g.table.Suppressed(),
		DiscardSize: g.discards.Len(),
		DeckActive:  g.deck.ActiveCount(),
	}
	if current := g.table.Current(); current != nil {
		snap.Current = current.Initials
	}
	players := g.table.Players()
	if strings.TrimSpace(ref) != "" {
		p := g.table.Lookup(ref)
		if p == nil {
			return Snapshot{}, noSuchPlayer(ref)
		}
		players = []*player.Player{p}
	}
	for _, p := range players {
		snap.Players = append(snap.Players, g.playerSnapshot(p))
	}
	return snap, nil
}

// ReadStory returns the text of the story ref plays into.
func (g *Game) ReadStory(ref string, numbered bool) (string, error) {
	p := g.table.Lookup(ref)
	if p == nil {
		if strings.TrimSpace(ref) == "" {
			return "", apperrors.New(apperrors.CodeInvalidPlayer, "a player is required to read a story")
		}
		return "", noSuchPlayer(ref)
	}
	payload, err := g.story(p, numbered)
	if err != nil {
		return "", err
	}
	return payload.Text, nil
}

// Story returns the story ref plays into.
func (g *Game) Story(ref string) (StoryPayload, error) {
	p := g.table.Lookup(ref)
	if p == nil {
		return StoryPayload{}, noSuchPlayer(ref)
	}
	return g.story(p, false)
}

func (g *Game) playerSnapshot(p *player.Player) PlayerSnapshot {
	return PlayerSnapshot{
		Number:         p.Number,
		Initials:       p.Initials,
		Name:           p.Name,
		Role:           string(p.Role),
		Team:           p.Team,
		Points:         p.Points,
		HandSize:       p.Hand.Size(),
		StoryLength:    p.Hand.Story().Len(),
		CardsPlayed:    p.CardsPlayed,
		CardsDiscarded: p.CardsDiscarded,
		HasDrawn:       p.HasDrawn,
		Phase:          p.Phase().String(),
		Elements:       p.Elements(),
	}
}

// Hand returns the cards ref holds, sorted.
func (g *Game) Hand(ref string) (HandPayload, error) {
	p := g.table.Lookup(ref)
	if p == nil {
		return HandPayload{}, noSuchPlayer(ref)
	}
	return HandPayload{Owner: p.Initials, Cards: viewCards(p.Hand.Sorted()), LastDrawn: p.Hand.LastDrawn()}, nil
}
