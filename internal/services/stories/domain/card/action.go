package card

import (
	"fmt"
	"strings"
)

// ActionKind is the mutation protocol an action card triggers.
type ActionKind string

const (
	ActionNone         ActionKind = ""
	ActionMeanwhile    ActionKind = "meanwhile"
	ActionTradeLines   ActionKind = "trade_lines"
	ActionStealLines   ActionKind = "steal_lines"
	ActionStirPot      ActionKind = "stir_pot"
	ActionDrawNew      ActionKind = "draw_new"
	ActionChangeName   ActionKind = "change_name"
	ActionCompose      ActionKind = "compose"
	ActionReorderLines ActionKind = "reorder_lines"
	ActionCallInFavors ActionKind = "call_in_favors"
)

// ActionKinds lists every action kind.
var ActionKinds = []ActionKind{
	ActionMeanwhile,
	ActionTradeLines,
	ActionStealLines,
	ActionStirPot,
	ActionDrawNew,
	ActionChangeName,
	ActionCompose,
	ActionReorderLines,
	ActionCallInFavors,
}

// ParseActionKind resolves an action kind name case-insensitively.
func ParseActionKind(value string) (ActionKind, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	for _, kind := range ActionKinds {
		if string(kind) == normalized {
			return kind, nil
		}
	}
	return ActionNone, fmt.Errorf("unknown action kind %q", value)
}

// Upper returns the display name used in result messages, e.g. STEAL_LINES.
func (a ActionKind) Upper() string {
	return strings.ToUpper(string(a))
}
