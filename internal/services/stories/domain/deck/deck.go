// Package deck implements the shuffled draw pile for one game.
//
// The deck is conceptually infinite: drawn cards stay active, and when the
// cursor runs past the shuffled permutation the deck reshuffles and starts
// over. Only targeted draws deactivate cards.
package deck

import (
	"math/rand"

	apperrors "github.com/louisbranch/stories/internal/platform/errors"
	"github.com/louisbranch/stories/internal/services/stories/domain/card"
)

// Deck holds every card dealt in one game.
type Deck struct {
	genre      string
	cards      []*card.Card
	order      []int
	cursor     int
	nextNumber int
	rng        *rand.Rand
}

// New builds a shuffled deck. The synthetic number counter starts past the
// highest card number.
func New(genre string, cards []*card.Card, rng *rand.Rand) *Deck {
	next := len(cards)
	for _, c := range cards {
		if c.Number >= next {
			next = c.Number + 1
		}
	}
	d := &Deck{
		genre:      genre,
		cards:      append([]*card.Card(nil), cards...),
		nextNumber: next,
		rng:        rng,
	}
	d.Reshuffle()
	return d
}

// Genre returns the genre the deck was built for.
func (d *Deck) Genre() string {
	return d.genre
}

// Size returns the number of cards in the deck, active or not.
func (d *Deck) Size() int {
	return len(d.cards)
}

// Cursor returns the position of the next draw within the permutation.
func (d *Deck) Cursor() int {
	return d.cursor
}

// Order returns the card numbers in current draw order.
func (d *Deck) Order() []int {
	numbers := make([]int, len(d.order))
	for i, index := range d.order {
		numbers[i] = d.cards[index].Number
	}
	return numbers
}

// Reshuffle regenerates the permutation and resets the cursor.
func (d *Deck) Reshuffle() {
	d.order = d.rng.Perm(len(d.cards))
	d.cursor = 0
}

// Draw returns the next active card whose category is not omitted,
// reshuffling whenever the permutation is exhausted.
func (d *Deck) Draw(omit ...card.Category) (*card.Card, error) {
	// One partial pass plus one full pass after a reshuffle visits every card.
	for attempts := 0; attempts <= 2*len(d.cards); attempts++ {
		if d.cursor >= len(d.order) {
			d.Reshuffle()
			if len(d.order) == 0 {
				break
			}
		}
		c := d.cards[d.order[d.cursor]]
		d.cursor++
		if d.cursor >= len(d.order) {
			d.Reshuffle()
		}
		if !c.Active || omitted(c.Category, omit) {
			continue
		}
		return c, nil
	}
	return nil, apperrors.New(apperrors.CodeInvalidCardReference, "no drawable cards remain in the deck")
}

// DrawType returns the next active card of category (and, for action cards,
// kind) scanning forward from the cursor. The card is deactivated so it is
// never drawn again; the cursor does not move.
func (d *Deck) DrawType(category card.Category, kind card.ActionKind) (*card.Card, error) {
	n := len(d.order)
	for offset := 0; offset < n; offset++ {
		c := d.cards[d.order[(d.cursor+offset)%n]]
		if !c.Active || c.Category != category {
			continue
		}
		if category == card.CategoryAction && kind != card.ActionNone && c.Action != kind {
			continue
		}
		c.Active = false
		return c, nil
	}
	message := "no " + string(category) + " cards remain in the deck"
	if kind != card.ActionNone {
		message = "no " + string(kind) + " action cards remain in the deck"
	}
	return nil, apperrors.WithMetadata(apperrors.CodeInvalidCardReference, message, map[string]string{"Card": string(category)})
}

// Deal draws n cards.
func (d *Deck) Deal(n int, omit ...card.Category) ([]*card.Card, error) {
	dealt := make([]*card.Card, 0, n)
	for i := 0; i < n; i++ {
		c, err := d.Draw(omit...)
		if err != nil {
			return dealt, err
		}
		dealt = append(dealt, c)
	}
	return dealt, nil
}

// NewSyntheticNumber hands out a unique number for a card created during play.
func (d *Deck) NewSyntheticNumber() int {
	n := d.nextNumber
	d.nextNumber++
	return n
}

// Cards returns every card in deck order.
func (d *Deck) Cards() []*card.Card {
	return append([]*card.Card(nil), d.cards...)
}

// ByCategory returns the deck's cards of one category.
func (d *Deck) ByCategory(category card.Category) []*card.Card {
	var out []*card.Card
	for _, c := range d.cards {
		if c.Category == category {
			out = append(out, c)
		}
	}
	return out
}

// ActiveCount returns the number of drawable cards whose category is not
// omitted. Draw fails only when it is zero.
func (d *Deck) ActiveCount(omit ...card.Category) int {
	n := 0
	for _, c := range d.cards {
		if c.Active && !omitted(c.Category, omit) {
			n++
		}
	}
	return n
}

func omitted(category card.Category, omit []card.Category) bool {
	for _, o := range omit {
		if o == category {
			return true
		}
	}
	return false
}
