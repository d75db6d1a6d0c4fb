// Package hand tracks the cards one player holds, their private discard
// pile, and the story they own.
package hand

import (
	"fmt"

	apperrors "github.com/louisbranch/stories/internal/platform/errors"
	"github.com/louisbranch/stories/internal/services/stories/domain/card"
)

// NoCard marks an empty LastDrawn.
const NoCard = -1

// Hand is one player's cards, private discards and story.
type Hand struct {
	cards     *card.List
	discards  *card.List
	story     *card.List
	lastDrawn int
}

// New returns an empty hand.
func New() *Hand {
	return &Hand{
		cards:     card.NewList(),
		discards:  card.NewList(),
		story:     card.NewList(),
		lastDrawn: NoCard,
	}
}

// Cards returns the playable cards in the order they were added.
func (h *Hand) Cards() []*card.Card { return h.cards.Cards() }

// Size returns the number of playable cards.
func (h *Hand) Size() int { return h.cards.Len() }

// Story returns the story owned by this hand.
func (h *Hand) Story() *card.List { return h.story }

// Discards returns the private discard pile.
func (h *Hand) Discards() *card.List { return h.discards }

// LastDrawn returns the number of the most recently added card, or NoCard.
func (h *Hand) LastDrawn() int { return h.lastDrawn }

// Add puts cards into the hand. The last one becomes LastDrawn.
func (h *Hand) Add(cards ...*card.Card) {
	for _, c := range cards {
		h.cards.Append(c)
		h.lastDrawn = c.Number
	}
}

// Get returns the held card numbered number, or nil.
func (h *Hand) Get(number int) *card.Card {
	return h.cards.Find(number)
}

// Remove takes the card out of the hand without playing it.
func (h *Hand) Remove(number int) *card.Card {
	return h.cards.Remove(number)
}

// Sorted returns the held cards ordered by category rank, then number.
func (h *Hand) Sorted() []*card.Card {
	return h.cards.Sorted()
}

// AtOrdinal returns the card at a 1-based position of the sorted hand.
func (h *Hand) AtOrdinal(ordinal int) *card.Card {
	sorted := h.Sorted()
	if ordinal < 1 || ordinal > len(sorted) {
		return nil
	}
	return sorted[ordinal-1]
}

// DiscardCategory moves every held card of category to the private discard
// pile and returns them.
func (h *Hand) DiscardCategory(category card.Category) []*card.Card {
	removed := h.cards.RemoveCategory(category)
	h.discards.Append(removed...)
	return removed
}

// Take puts c into the hand without changing LastDrawn. A card passing
// through on its way to this hand's story arrives this way.
func (h *Hand) Take(c *card.Card) {
	h.cards.Append(c)
}

// Play moves a held card into the story. See Place for where it lands.
// Nothing changes when it fails.
func (h *Hand) Play(number int, afterLine *int) (*card.Card, error) {
	c := h.cards.Find(number)
	if c == nil {
		return nil, invalidCard(number)
	}
	if err := h.Place(c, afterLine); err != nil {
		return nil, err
	}
	h.cards.Remove(number)
	return c, nil
}

// CheckPlace reports the error Place would return for c.
func (h *Hand) CheckPlace(c *card.Card, afterLine *int) error {
	if afterLine == nil {
		return nil
	}
	if *afterLine < -1 {
		return invalidLine(*afterLine)
	}
	if c.Category.IsSingleton() && h.story.IndexOfCategory(c.Category) >= 0 {
		return duplicateSingleton(c)
	}
	return nil
}

// Place puts c into the story. The card need not come from this hand.
//
// With afterLine set the card is spliced in after that line; -1 places it
// first and lines past the end append. A Title, Opening or Closing is only
// spliced into a story that has none of its category. Otherwise the category
// decides: singletons replace the existing card in place, narrative cards go
// before a trailing Closing, and action cards that are not story elements
// stay out of the story.
func (h *Hand) Place(c *card.Card, afterLine *int) error {
	if err := h.CheckPlace(c, afterLine); err != nil {
		return err
	}
	if afterLine != nil {
		h.story.Insert(*afterLine+1, c)
		return nil
	}
	switch {
	case c.IsAction() && !c.StoryElement:
	case c.IsAction():
		h.appendNarrative(c)
	case c.Category.IsSingleton():
		h.placeSingleton(c)
	default:
		h.appendNarrative(c)
	}
	return nil
}

// CheckInsert reports the error Insert would return for c after line.
func (h *Hand) CheckInsert(line int, c *card.Card) error {
	if line < 0 || line >= h.story.Len() {
		return invalidLine(line)
	}
	return h.CheckPlace(c, &line)
}

// Insert plays a held card after an existing story line.
func (h *Hand) Insert(line, number int) (*card.Card, error) {
	c := h.cards.Find(number)
	if c == nil {
		return nil, invalidCard(number)
	}
	if err := h.CheckInsert(line, c); err != nil {
		return nil, err
	}
	return h.Play(number, &line)
}

// Replace swaps a story line for a held card and returns the replaced card.
func (h *Hand) Replace(line, number int) (*card.Card, error) {
	c := h.cards.Find(number)
	if c == nil {
		return nil, invalidCard(number)
	}
	previous, err := h.ReplaceLine(line, c)
	if err != nil {
		return nil, err
	}
	h.cards.Remove(number)
	return previous, nil
}

// CheckReplace reports the error ReplaceLine would return for c at line.
func (h *Hand) CheckReplace(line int, c *card.Card) error {
	if line < 0 || line >= h.story.Len() {
		return invalidLine(line)
	}
	if !c.Category.IsSingleton() {
		return nil
	}
	if index := h.story.IndexOfCategory(c.Category); index >= 0 && index != line {
		return duplicateSingleton(c)
	}
	return nil
}

// ReplaceLine puts c at story line and moves the previous card to the
// private discard pile. A Title, Opening or Closing may only replace the
// story's card of its own category or land in a story without one.
func (h *Hand) ReplaceLine(line int, c *card.Card) (*card.Card, error) {
	if err := h.CheckReplace(line, c); err != nil {
		return nil, err
	}
	previous := h.story.Set(line, c)
	h.discards.Append(previous)
	return previous, nil
}

// TakeLine removes and returns the card at a story line.
func (h *Hand) TakeLine(line int) (*card.Card, error) {
	if line < 0 || line >= h.story.Len() {
		return nil, invalidLine(line)
	}
	return h.story.RemoveAt(line), nil
}

func (h *Hand) placeSingleton(c *card.Card) {
	if index := h.story.IndexOfCategory(c.Category); index >= 0 {
		h.discards.Append(h.story.Set(index, c))
		return
	}
	switch c.Category {
	case card.CategoryTitle:
		h.story.Insert(0, c)
	case card.CategoryClosing:
		h.story.Append(c)
	default:
		h.appendNarrative(c)
	}
}

func (h *Hand) appendNarrative(c *card.Card) {
	if last := h.story.Last(); last != nil && last.Category == card.CategoryClosing {
		h.story.Insert(h.story.Len()-1, c)
		return
	}
	h.story.Append(c)
}

func invalidCard(number int) error {
	return apperrors.WithMetadata(apperrors.CodeInvalidCardReference,
		fmt.Sprintf("Invalid card number: %d", number),
		map[string]string{"Card": fmt.Sprint(number)})
}

func duplicateSingleton(c *card.Card) error {
	return apperrors.New(apperrors.CodeInvalidCardReference,
		fmt.Sprintf("The story already has a %s. Play card# %d to replace it", c.Category, c.Number))
}

func invalidLine(line int) error {
	return apperrors.WithMetadata(apperrors.CodeInvalidLineReference,
		fmt.Sprintf("Invalid line number: %d", line),
		map[string]string{"Line": fmt.Sprint(line)})
}
