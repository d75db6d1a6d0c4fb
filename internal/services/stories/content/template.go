// Package content loads deck templates and genre card text and builds the
// cards dealt into a game.
package content

import (
	"encoding/json"
	"fmt"
	"io/fs"

	"github.com/louisbranch/stories/internal/services/stories/domain/card"
)

// TemplatePath is the template location within FS.
const TemplatePath = "data/template.json"

// CategorySpec caps how many cards of a category a deck holds.
type CategorySpec struct {
	Category     card.Category `json:"card_type"`
	MaximumCount int           `json:"maximum_count"`
}

// ActionSpec describes the action cards of one kind.
type ActionSpec struct {
	Action       card.ActionKind `json:"action_type"`
	Text         string          `json:"text"`
	Quantity     int             `json:"quantity"`
	MinArguments int             `json:"min_arguments"`
	MaxArguments int             `json:"max_arguments"`
	StoryElement int             `json:"story_element"`
}

// Template is the deck template shared by every genre.
type Template struct {
	Categories []CategorySpec `json:"card_types"`
	Actions    []ActionSpec   `json:"action_types"`
	Characters []string       `json:"characters"`
}

// ParseTemplate decodes and validates a template document.
func ParseTemplate(data []byte) (Template, error) {
	var tmpl Template
	if err := json.Unmarshal(data, &tmpl); err != nil {
		return Template{}, fmt.Errorf("decode deck template: %w", err)
	}
	if err := tmpl.Validate(); err != nil {
		return Template{}, err
	}
	return tmpl, nil
}

// LoadTemplate reads the template at path from fsys.
func LoadTemplate(fsys fs.FS, path string) (Template, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return Template{}, fmt.Errorf("read deck template: %w", err)
	}
	return ParseTemplate(data)
}

// Validate checks categories and action kinds against the closed enums.
func (t Template) Validate() error {
	for _, spec := range t.Categories {
		if !spec.Category.Valid() || spec.Category == card.CategoryAction {
			return fmt.Errorf("deck template: invalid card type %q", spec.Category)
		}
		if spec.MaximumCount < 0 {
			return fmt.Errorf("deck template: %s maximum_count must not be negative", spec.Category)
		}
	}
	for _, spec := range t.Actions {
		if _, err := card.ParseActionKind(string(spec.Action)); err != nil {
			return fmt.Errorf("deck template: %w", err)
		}
		if spec.Quantity < 0 {
			return fmt.Errorf("deck template: %s quantity must not be negative", spec.Action)
		}
		if spec.MinArguments < 0 || spec.MaxArguments < spec.MinArguments {
			return fmt.Errorf("deck template: %s has invalid arguments %d..%d", spec.Action, spec.MinArguments, spec.MaxArguments)
		}
	}
	return nil
}

// Action returns the spec for kind.
func (t Template) Action(kind card.ActionKind) (ActionSpec, bool) {
	for _, spec := range t.Actions {
		if spec.Action == kind {
			return spec, true
		}
	}
	return ActionSpec{}, false
}
