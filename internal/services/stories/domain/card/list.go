package card

import (
	"fmt"
	"sort"
	"strings"
)

// List is an ordered collection of cards.
type List struct {
	cards []*Card
}

// NewList returns a list holding cards in order.
func NewList(cards ...*Card) *List {
	return &List{cards: append([]*Card(nil), cards...)}
}

// Len returns the number of cards.
func (l *List) Len() int {
	return len(l.cards)
}

// At returns the card at index, or nil when index is out of range.
func (l *List) At(index int) *Card {
	if index < 0 || index >= len(l.cards) {
		return nil
	}
	return l.cards[index]
}

// Last returns the final card, or nil for an empty list.
func (l *List) Last() *Card {
	return l.At(len(l.cards) - 1)
}

// Cards returns a copy of the card slice.
func (l *List) Cards() []*Card {
	return append([]*Card(nil), l.cards...)
}

// Append adds cards to the end.
func (l *List) Append(cards ...*Card) {
	l.cards = append(l.cards, cards...)
}

// Insert places c at index, shifting later cards. Indexes at or past the end append.
func (l *List) Insert(index int, c *Card) {
	if index < 0 {
		index = 0
	}
	if index >= len(l.cards) {
		l.cards = append(l.cards, c)
		return
	}
	l.cards = append(l.cards, nil)
	copy(l.cards[index+1:], l.cards[index:])
	l.cards[index] = c
}

// Set replaces the card at index and returns the previous one.
func (l *List) Set(index int, c *Card) *Card {
	if index < 0 || index >= len(l.cards) {
		return nil
	}
	previous := l.cards[index]
	l.cards[index] = c
	return previous
}

// RemoveAt removes and returns the card at index.
func (l *List) RemoveAt(index int) *Card {
	if index < 0 || index >= len(l.cards) {
		return nil
	}
	c := l.cards[index]
	l.cards = append(l.cards[:index], l.cards[index+1:]...)
	return c
}

// IndexOf returns the index of the card numbered number, or -1.
func (l *List) IndexOf(number int) int {
	for i, c := range l.cards {
		if c.Number == number {
			return i
		}
	}
	return -1
}

// Find returns the card numbered number, or nil.
func (l *List) Find(number int) *Card {
	return l.At(l.IndexOf(number))
}

// Remove removes and returns the card numbered number, or nil.
func (l *List) Remove(number int) *Card {
	return l.RemoveAt(l.IndexOf(number))
}

// IndexOfCategory returns the index of the first card of category, or -1.
func (l *List) IndexOfCategory(category Category) int {
	for i, c := range l.cards {
		if c.Category == category {
			return i
		}
	}
	return -1
}

// FindFirst returns the first card matching category and, when kind is not
// ActionNone, the action kind.
func (l *List) FindFirst(category Category, kind ActionKind) *Card {
	for _, c := range l.cards {
		if c.Category == category && (kind == ActionNone || c.Action == kind) {
			return c
		}
	}
	return nil
}

// RemoveCategory removes and returns every card of category, preserving order.
func (l *List) RemoveCategory(category Category) []*Card {
	var removed []*Card
	kept := l.cards[:0]
	for _, c := range l.cards {
		if c.Category == category {
			removed = append(removed, c)
			continue
		}
		kept = append(kept, c)
	}
	for i := len(kept); i < len(l.cards); i++ {
		l.cards[i] = nil
	}
	l.cards = kept
	return removed
}

// CountByCategory tallies cards per category; every category is present.
func (l *List) CountByCategory() map[Category]int {
	counts := make(map[Category]int, len(Categories))
	for _, category := range Categories {
		counts[category] = 0
	}
	for _, c := range l.cards {
		counts[c.Category]++
	}
	return counts
}

// Sorted returns the cards ordered by sort key.
func (l *List) Sorted() []*Card {
	sorted := l.Cards()
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SortKey() < sorted[j].SortKey()
	})
	return sorted
}

// Text joins card text. Numbered output prefixes each line with its
// zero-based index and category, e.g. "1. (Story) ...".
func (l *List) Text(numbered bool) string {
	var b strings.Builder
	for i, c := range l.cards {
		if numbered {
			fmt.Fprintf(&b, "%d. (%s) %s", i, c.Category, c.Text)
			continue
		}
		b.WriteString(c.Text)
	}
	return b.String()
}
