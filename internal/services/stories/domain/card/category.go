package card

import (
	"fmt"
	"strings"
)

// Category is the narrative slot a card fills.
type Category string

const (
	CategoryAction       Category = "Action"
	CategoryTitle        Category = "Title"
	CategoryOpening      Category = "Opening"
	CategoryOpeningStory Category = "Opening/Story"
	CategoryStory        Category = "Story"
	CategoryClosing      Category = "Closing"
)

// Categories lists every category in sort-rank order.
var Categories = []Category{
	CategoryAction,
	CategoryTitle,
	CategoryOpening,
	CategoryOpeningStory,
	CategoryStory,
	CategoryClosing,
}

// ParseCategory resolves a category name case-insensitively.
// "opening_story" and "opening-story" are accepted for Opening/Story.
func ParseCategory(value string) (Category, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	normalized = strings.NewReplacer("_", "/", "-", "/").Replace(normalized)
	for _, category := range Categories {
		if strings.ToLower(string(category)) == normalized {
			return category, nil
		}
	}
	return "", fmt.Errorf("unknown card category %q", value)
}

// Rank orders categories for hand sorting: action cards first, then the
// singleton openers, then narrative cards, then the closing line.
func (c Category) Rank() int {
	switch c {
	case CategoryAction:
		return 0
	case CategoryTitle:
		return 1
	case CategoryOpening:
		return 2
	case CategoryOpeningStory:
		return 3
	case CategoryStory:
		return 4
	case CategoryClosing:
		return 5
	default:
		return len(Categories)
	}
}

// IsSingleton reports whether a story may hold at most one card of c.
func (c Category) IsSingleton() bool {
	switch c {
	case CategoryTitle, CategoryOpening, CategoryClosing:
		return true
	default:
		return false
	}
}

// IsNarrative reports whether c is appended to the body of a story.
func (c Category) IsNarrative() bool {
	return c == CategoryOpeningStory || c == CategoryStory
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	return c.Rank() < len(Categories)
}
