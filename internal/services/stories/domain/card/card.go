package card

import "fmt"

// Card is a single story or action card.
//
// Cards are shared by pointer and moved between collections; the only field
// that changes after creation besides Active is Text, rewritten in place by a
// name change.
type Card struct {
	Number       int        `json:"number"`
	Category     Category   `json:"category"`
	Action       ActionKind `json:"action,omitempty"`
	Text         string     `json:"text"`
	Active       bool       `json:"active"`
	MinArgs      int        `json:"min_args,omitempty"`
	MaxArgs      int        `json:"max_args,omitempty"`
	StoryElement bool       `json:"story_element"`
}

// NewStory returns an active non-action card.
func NewStory(number int, category Category, text string) *Card {
	return &Card{
		Number:       number,
		Category:     category,
		Text:         text,
		Active:       true,
		StoryElement: true,
	}
}

// NewAction returns an active action card with its argument bounds.
func NewAction(number int, kind ActionKind, text string, minArgs, maxArgs int, storyElement bool) *Card {
	return &Card{
		Number:       number,
		Category:     CategoryAction,
		Action:       kind,
		Text:         text,
		Active:       true,
		MinArgs:      minArgs,
		MaxArgs:      maxArgs,
		StoryElement: storyElement,
	}
}

// SortKey orders cards by category rank, then number.
func (c *Card) SortKey() int {
	return 1000*(c.Category.Rank()+1) + c.Number
}

// IsAction reports whether c triggers an action protocol.
func (c *Card) IsAction() bool {
	return c.Category == CategoryAction
}

// AcceptsArgs reports whether n arguments fall within the card's bounds.
func (c *Card) AcceptsArgs(n int) bool {
	return n >= c.MinArgs && n <= c.MaxArgs
}

// String renders the card as it appears in hand listings.
func (c *Card) String() string {
	return fmt.Sprintf("%s:\t%d. %s", c.Category, c.Number, c.Text)
}
