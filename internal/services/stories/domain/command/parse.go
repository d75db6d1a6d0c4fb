package command

import (
	"fmt"
	"strconv"
	"strings"

	apperrors "github.com/louisbranch/stories/internal/platform/errors"
	"github.com/louisbranch/stories/internal/services/stories/domain/card"
)

// ParseCardRef reads a card number, "last", or a #n ordinal.
func ParseCardRef(value string) (CardRef, error) {
	value = strings.TrimSpace(value)
	switch {
	case strings.EqualFold(value, "last"):
		return CardRef{Kind: RefLast}, nil
	case strings.HasPrefix(value, "#"):
		n, err := strconv.Atoi(value[1:])
		if err != nil || n < 1 {
			return CardRef{}, invalidCard(value)
		}
		return CardRef{Kind: RefOrdinal, Value: n}, nil
	default:
		n, err := ParseCardNumber(value)
		if err != nil {
			return CardRef{}, err
		}
		return CardRef{Kind: RefNumber, Value: n}, nil
	}
}

// ParseCardNumber reads a non-negative card number.
func ParseCardNumber(value string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < 0 {
		return 0, invalidCard(value)
	}
	return n, nil
}

// ParseLine reads a zero-based story line number.
func ParseLine(value string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < 0 {
		return 0, apperrors.WithMetadata(apperrors.CodeInvalidLineReference,
			fmt.Sprintf("Invalid line number: %s", value),
			map[string]string{"Line": value})
	}
	return n, nil
}

func invalidCard(value string) error {
	return apperrors.WithMetadata(apperrors.CodeInvalidCardReference,
		fmt.Sprintf("Invalid card number: %s", value),
		map[string]string{"Card": value})
}

func invalidArgument(format string, args ...any) error {
	return apperrors.New(apperrors.CodeInvalidArgument, fmt.Sprintf(format, args...))
}

func parseCategory(value string) (card.Category, error) {
	category, err := card.ParseCategory(value)
	if err != nil {
		return "", invalidArgument("I don't understand what '%s' is", value)
	}
	return category, nil
}

func parseAction(value string) (card.ActionKind, error) {
	kind, err := card.ParseActionKind(value)
	if err != nil {
		return card.ActionNone, invalidArgument("unknown action type '%s'", value)
	}
	return kind, nil
}

func parseAdd(args []string) (Request, error) {
	switch AddKind(strings.ToLower(args[0])) {
	case AddPlayer:
		if len(args) < 3 || len(args) > 4 {
			return nil, invalidArgumentCount(NameAdd, "add player <name> <initials> [role]", len(args))
		}
		req := AddPlayerRequest{Name: args[1], Initials: args[2]}
		if len(args) == 4 {
			req.Role = args[3]
		}
		return req, nil
	case AddDirector:
		if len(args) != 2 {
			return nil, invalidArgumentCount(NameAdd, "add director <initials>", len(args))
		}
		return AddDirectorRequest{Initials: args[1]}, nil
	case AddTeam:
		if len(args) != 3 {
			return nil, invalidArgumentCount(NameAdd, "add team <name> <initials,...>", len(args))
		}
		return parseAddTeam(args[1:])
	default:
		return nil, invalidArgument("Cannot add %s here.", args[0])
	}
}

func parseAddTeam(args []string) (Request, error) {
	var members []string
	for _, m := range strings.Split(args[1], ",") {
		if m = strings.TrimSpace(m); m != "" {
			members = append(members, m)
		}
	}
	if len(members) == 0 {
		return nil, invalidArgument("team %s needs at least one member", args[0])
	}
	return AddTeamRequest{Team: args[0], Members: members}, nil
}

func parseEnd(args []string) (Request, error) {
	if len(args) == 0 {
		return EndRequest{Scope: EndGame}, nil
	}
	switch EndScope(strings.ToLower(args[0])) {
	case EndRound:
		return EndRequest{Scope: EndRound}, nil
	case EndGame:
		return EndRequest{Scope: EndGame}, nil
	default:
		return nil, invalidArgument("end takes round or game, not '%s'", args[0])
	}
}

func parseFind(args []string) (Request, error) {
	category, err := parseCategory(args[0])
	if err != nil {
		return nil, err
	}
	req := FindRequest{Category: category}
	if len(args) == 2 {
		if req.Action, err = parseAction(args[1]); err != nil {
			return nil, err
		}
	}
	return req, nil
}

func parseDraw(args []string) (Request, error) {
	req := DrawRequest{Source: DrawNew}
	if len(args) == 0 {
		return req, nil
	}
	rest := args[1:]
	switch source := strings.ToLower(args[0]); source {
	case string(DrawNew):
	case string(DrawDiscard):
		req.Source = DrawDiscard
	default:
		category, err := parseCategory(source)
		if err != nil {
			return nil, err
		}
		req.Source = DrawCategory
		req.Category = category
		if category == card.CategoryAction && len(rest) > 0 {
			if kind, err := card.ParseActionKind(rest[0]); err == nil {
				req.Action = kind
				rest = rest[1:]
			}
		}
	}
	switch len(rest) {
	case 0:
	case 1:
		req.Player = rest[0]
	default:
		return nil, invalidArgumentCount(NameDraw, "draw [new|discard|<category> [action]] [initials]", len(args))
	}
	return req, nil
}

func parseDiscard(args []string) (Request, error) {
	n, err := ParseCardNumber(args[0])
	if err != nil {
		return nil, err
	}
	req := DiscardRequest{Card: n}
	if len(args) == 2 {
		req.Player = args[1]
	}
	return req, nil
}

func parsePlay(args []string) (Request, error) {
	ref, err := ParseCardRef(args[0])
	if err != nil {
		return nil, err
	}
	return PlayRequest{Ref: ref, Args: append([]string(nil), args[1:]...)}, nil
}

func parsePlayType(args []string) (Request, error) {
	category, err := parseCategory(args[0])
	if err != nil {
		return nil, err
	}
	return PlayTypeRequest{Category: category, Args: append([]string(nil), args[1:]...)}, nil
}

func parseLineAndCard(args []string) (int, int, error) {
	line, err := ParseLine(args[0])
	if err != nil {
		return 0, 0, err
	}
	number, err := ParseCardNumber(args[1])
	if err != nil {
		return 0, 0, err
	}
	return line, number, nil
}

func parseInsert(args []string) (Request, error) {
	line, number, err := parseLineAndCard(args)
	if err != nil {
		return nil, err
	}
	return InsertRequest{Line: line, Card: number}, nil
}

func parseReplace(args []string) (Request, error) {
	line, number, err := parseLineAndCard(args)
	if err != nil {
		return nil, err
	}
	return ReplaceRequest{Line: line, Card: number}, nil
}

func parsePass(args []string) (Request, error) {
	n, err := ParseCardNumber(args[0])
	if err != nil {
		return nil, err
	}
	req := PassRequest{Card: n, Direction: DirectionLeft}
	for _, arg := range args[1:] {
		switch Direction(strings.ToLower(arg)) {
		case DirectionLeft, DirectionRight, DirectionAny:
			req.Direction = Direction(strings.ToLower(arg))
		default:
			if req.Player != "" {
				return nil, invalidArgument("pass direction must be left, right or any, not '%s'", arg)
			}
			req.Player = arg
		}
	}
	return req, nil
}

func parseList(args []string) (Request, error) {
	req := ListRequest{Target: ListHand, Numbered: true, Format: FormatText}
	for _, arg := range args {
		switch strings.ToLower(arg) {
		case string(ListHand):
			req.Target = ListHand
		case string(ListStory):
			req.Target = ListStory
		case "numbered":
			req.Numbered = true
		case "plain", "regular":
			req.Numbered = false
		case string(FormatText):
			req.Format = FormatText
		case string(FormatJSON):
			req.Format = FormatJSON
		case "me":
			req.Player = ""
		default:
			if req.Player != "" {
				return nil, invalidArgument("I don't understand what '%s' is", arg)
			}
			req.Player = arg
		}
	}
	return req, nil
}

func parseRead(args []string) (Request, error) {
	var req ReadRequest
	for _, arg := range args {
		switch strings.ToLower(arg) {
		case "numbered":
			req.Numbered = true
		case "plain", "regular":
			req.Numbered = false
		default:
			if req.Player != "" {
				return nil, invalidArgument("I don't understand what '%s' is", arg)
			}
			req.Player = arg
		}
	}
	return req, nil
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func invalidArgumentCount(name Name, usage string, got int) error {
	return apperrors.WithMetadata(apperrors.CodeInvalidArgumentCount,
		fmt.Sprintf("Wrong number of arguments (%d). Usage: %s", got, usage),
		map[string]string{"Command": string(name), "Got": fmt.Sprint(got)})
}
