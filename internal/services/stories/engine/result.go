package engine

import (
	"encoding/json"
	"strings"

	apperrors "github.com/louisbranch/stories/internal/platform/errors"
	"github.com/louisbranch/stories/internal/services/stories/domain/card"
)

// Status tells the caller how to continue after a command.
type Status string

const (
	StatusSuccess           Status = "success"
	StatusError             Status = "error"
	StatusTerminate         Status = "terminate"
	StatusNeedsNextAction   Status = "needs_next_action"
	StatusNeedsPlayerChoice Status = "needs_player_choice"
	StatusWarning           Status = "warning"
)

// Result is the outcome of one command.
type Result struct {
	Status       Status
	Kind         apperrors.Code
	Message      string
	TurnComplete bool
	Payload      Payload
	Metadata     map[string]string
}

// OK reports whether the command took effect.
func (r Result) OK() bool {
	switch r.Status {
	case StatusError:
		return false
	default:
		return true
	}
}

type resultJSON struct {
	Status       Status            `json:"status"`
	Kind         apperrors.Code    `json:"kind,omitempty"`
	Message      string            `json:"message"`
	TurnComplete bool              `json:"turn_complete"`
	PayloadType  string            `json:"payload_type,omitempty"`
	Payload      Payload           `json:"payload,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// MarshalJSON tags the payload with its type.
func (r Result) MarshalJSON() ([]byte, error) {
	out := resultJSON{
		Status:       r.Status,
		Kind:         r.Kind,
		Message:      r.Message,
		TurnComplete: r.TurnComplete,
		Payload:      r.Payload,
		Metadata:     r.Metadata,
	}
	if r.Payload != nil {
		out.PayloadType = r.Payload.PayloadType()
	}
	return json.Marshal(out)
}

func success(message string, payload Payload) Result {
	return Result{Status: StatusSuccess, Message: message, Payload: payload}
}

func warning(message string) Result {
	return Result{Status: StatusWarning, Message: message}
}

// failure converts an error into an Error result. Domain errors keep their
// code and metadata.
func failure(err error) Result {
	if domainErr, ok := apperrors.As(err); ok {
		return Result{Status: StatusError, Kind: domainErr.Code, Message: domainErr.Message, Metadata: domainErr.Metadata}
	}
	return Result{Status: StatusError, Kind: apperrors.CodeUnknown, Message: err.Error()}
}

func fail(code apperrors.Code, message string) Result {
	return Result{Status: StatusError, Kind: code, Message: message}
}

// Payload is the typed data attached to a result.
type Payload interface {
	PayloadType() string
	isPayload()
}

// CardView is a card as shown to clients.
type CardView struct {
	Number   int             `json:"number"`
	Category card.Category   `json:"category"`
	Action   card.ActionKind `json:"action,omitempty"`
	Text     string          `json:"text"`
}

func viewCard(c *card.Card) CardView {
	return CardView{Number: c.Number, Category: c.Category, Action: c.Action, Text: c.Text}
}

func viewCards(cards []*card.Card) []CardView {
	views := make([]CardView, 0, len(cards))
	for _, c := range cards {
		views = append(views, viewCard(c))
	}
	return views
}

// CardPayload carries a drawn or played card.
type CardPayload struct {
	Card CardView `json:"card"`
}

// NextPlayerPayload names whose turn it is.
type NextPlayerPayload struct {
	Initials string `json:"initials"`
	Number   int    `json:"number"`
}

// FoundPayload carries a find result; Number is -1 when nothing matched.
type FoundPayload struct {
	Number int `json:"number"`
}

// StoryPayload carries a story.
type StoryPayload struct {
	Owner     string     `json:"owner"`
	Cards     []CardView `json:"cards"`
	Text      string     `json:"text"`
	Published bool       `json:"published"`
}

// WinnerPayload carries scoring at the end of a round or game.
type WinnerPayload struct {
	Initials string         `json:"initials"`
	Points   int            `json:"points"`
	Scores   map[string]int `json:"scores"`
}

// HandPayload carries a hand listing.
type HandPayload struct {
	Owner     string     `json:"owner"`
	Cards     []CardView `json:"cards"`
	LastDrawn int        `json:"last_drawn"`
}

// StatusPayload carries a player's status.
type StatusPayload struct {
	Player PlayerSnapshot `json:"player"`
}

// PlayerPayload describes a seated player.
type PlayerPayload struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Initials string `json:"initials"`
	Number   int    `json:"number"`
	Role     string `json:"role"`
	Team     string `json:"team,omitempty"`
}

// TeamPayload describes the teams in a game.
type TeamPayload struct {
	Teams []TeamView `json:"teams"`
}

// TeamView is one team as shown to clients.
type TeamView struct {
	Name    string   `json:"name"`
	Lead    string   `json:"lead,omitempty"`
	Members []string `json:"members"`
}

func (CardPayload) PayloadType() string       { return "card" }
func (NextPlayerPayload) PayloadType() string { return "next_player" }
func (FoundPayload) PayloadType() string      { return "found" }
func (StoryPayload) PayloadType() string      { return "story" }
func (WinnerPayload) PayloadType() string     { return "winner" }
func (HandPayload) PayloadType() string       { return "hand" }
func (StatusPayload) PayloadType() string     { return "status" }
func (PlayerPayload) PayloadType() string     { return "player" }
func (TeamPayload) PayloadType() string       { return "teams" }

func (CardPayload) isPayload()       {}
func (NextPlayerPayload) isPayload() {}
func (FoundPayload) isPayload()      {}
func (StoryPayload) isPayload()      {}
func (WinnerPayload) isPayload()     {}
func (HandPayload) isPayload()       {}
func (StatusPayload) isPayload()     {}
func (PlayerPayload) isPayload()     {}
func (TeamPayload) isPayload()       {}

func joinMessages(messages ...string) string {
	var parts []string
	for _, m := range messages {
		if m = strings.TrimSpace(m); m != "" {
			parts = append(parts, m)
		}
	}
	return strings.Join(parts, "\n")
}
