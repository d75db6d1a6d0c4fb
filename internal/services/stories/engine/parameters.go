package engine

import (
	"fmt"
	"strconv"
	"strings"

	apperrors "github.com/louisbranch/stories/internal/platform/errors"
)

// PlayMode decides whose story a play lands in.
type PlayMode string

const (
	// PlayModeIndividual gives every player their own story.
	PlayModeIndividual PlayMode = "individual"
	// PlayModeTeam plays into the team lead's story.
	PlayModeTeam PlayMode = "team"
	// PlayModeCollaborative plays into the director's story.
	PlayModeCollaborative PlayMode = "collaborative"
)

// ParsePlayMode resolves a play mode name. Empty means individual.
func ParsePlayMode(value string) (PlayMode, error) {
	switch mode := PlayMode(strings.ToLower(strings.TrimSpace(value))); mode {
	case "":
		return PlayModeIndividual, nil
	case PlayModeIndividual, PlayModeTeam, PlayModeCollaborative:
		return mode, nil
	default:
		return "", apperrors.New(apperrors.CodeInvalidArgument, fmt.Sprintf("unknown play mode %q", value))
	}
}

const (
	DefaultGamePoints     = 20
	DefaultStoryLength    = 5
	DefaultMaxCardsInHand = 10
	DefaultDealSize       = 10

	minCardsInHand = 5
	maxCardsInHand = 15
)

// Parameters are the per-game settings.
type Parameters struct {
	GamePoints        int               `json:"game_points"`
	StoryLength       int               `json:"story_length"`
	BypassErrorChecks bool              `json:"bypass_error_checks"`
	AutomaticDraw     bool              `json:"automatic_draw"`
	MaxCardsInHand    int               `json:"max_cards_in_hand"`
	RandomizePicks    bool              `json:"randomize_picks"`
	PlayMode          PlayMode          `json:"play_mode"`
	DealSize          int               `json:"deal_size"`
	CharacterAlias    map[string]string `json:"character_alias,omitempty"`
}

// DefaultParameters returns the settings a game starts with.
func DefaultParameters() Parameters {
	return Parameters{
		GamePoints:     DefaultGamePoints,
		StoryLength:    DefaultStoryLength,
		MaxCardsInHand: DefaultMaxCardsInHand,
		PlayMode:       PlayModeIndividual,
		DealSize:       DefaultDealSize,
	}
}

// Normalize fills zero values with defaults.
func (p Parameters) Normalize() Parameters {
	defaults := DefaultParameters()
	if p.GamePoints == 0 {
		p.GamePoints = defaults.GamePoints
	}
	if p.StoryLength == 0 {
		p.StoryLength = defaults.StoryLength
	}
	if p.MaxCardsInHand == 0 {
		p.MaxCardsInHand = defaults.MaxCardsInHand
	}
	if p.PlayMode == "" {
		p.PlayMode = defaults.PlayMode
	}
	if p.DealSize == 0 {
		p.DealSize = defaults.DealSize
	}
	return p
}

// Validate rejects settings a game cannot run with.
func (p Parameters) Validate() error {
	if _, err := ParsePlayMode(string(p.PlayMode)); err != nil {
		return err
	}
	if p.GamePoints < 1 {
		return invalidParameter("game_points", fmt.Sprint(p.GamePoints))
	}
	if p.StoryLength < 1 {
		return invalidParameter("story_length", fmt.Sprint(p.StoryLength))
	}
	if p.MaxCardsInHand < minCardsInHand || p.MaxCardsInHand > maxCardsInHand {
		return invalidParameter("max_cards_in_hand", fmt.Sprint(p.MaxCardsInHand))
	}
	if p.DealSize < 0 || p.DealSize > p.MaxCardsInHand {
		return invalidParameter("deal_size", fmt.Sprint(p.DealSize))
	}
	return nil
}

// Set changes one parameter by name and returns the confirmation message.
func (p *Parameters) Set(name, value string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	value = strings.TrimSpace(value)
	switch name {
	case "automatic_draw":
		b, err := parseFlag(name, value)
		if err != nil {
			return "", err
		}
		p.AutomaticDraw = b
	case "bypass_error_checks":
		b, err := parseFlag(name, value)
		if err != nil {
			return "", err
		}
		p.BypassErrorChecks = b
	case "randomize_picks":
		b, err := parseFlag(name, value)
		if err != nil {
			return "", err
		}
		p.RandomizePicks = b
	case "story_length":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return "", invalidParameter(name, value)
		}
		p.StoryLength = n
	case "game_points":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return "", invalidParameter(name, value)
		}
		p.GamePoints = n
	case "max_cards_in_hand":
		n, err := strconv.Atoi(value)
		if err != nil || n < minCardsInHand || n > maxCardsInHand {
			return "", invalidParameter(name, value)
		}
		p.MaxCardsInHand = n
	default:
		return "", apperrors.WithMetadata(apperrors.CodeInvalidArgument,
			fmt.Sprintf("Unknown parameter: %s", name),
			map[string]string{"Parameter": name})
	}
	return fmt.Sprintf("%s set to %s", name, value), nil
}

func parseFlag(name, value string) (bool, error) {
	switch strings.ToLower(value) {
	case "1", "true", "on", "yes":
		return true, nil
	case "0", "false", "off", "no":
		return false, nil
	default:
		return false, invalidParameter(name, value)
	}
}

func invalidParameter(name, value string) error {
	return apperrors.WithMetadata(apperrors.CodeInvalidArgument,
		fmt.Sprintf("Invalid value for %s: %s", name, value),
		map[string]string{"Parameter": name, "Value": value})
}
