// Package card defines story cards, their categories and action kinds, and the
// ordered card lists that hands, stories and decks are built from.
package card
