package engine

import (
	"fmt"
	"strconv"
	"strings"

	apperrors "github.com/louisbranch/stories/internal/platform/errors"
	"github.com/louisbranch/stories/internal/services/stories/domain/card"
	"github.com/louisbranch/stories/internal/services/stories/domain/command"
	"github.com/louisbranch/stories/internal/services/stories/domain/player"
)

// resolveAction runs the protocol of a held action card. Arguments are
// validated before anything moves; Warning results leave the card in hand.
func (g *Game) resolveAction(actor *player.Player, c *card.Card, args []string, text string) Result {
	if !c.AcceptsArgs(len(args)) {
		return Result{
			Status: StatusError,
			Kind:   apperrors.CodeInvalidArgumentCount,
			Message: fmt.Sprintf("%s requires from %d to %d additional card numbers. You specified %d",
				c.Action.Upper(), c.MinArgs, c.MaxArgs, len(args)),
			Metadata: map[string]string{
				"Action": string(c.Action),
				"Min":    fmt.Sprint(c.MinArgs),
				"Max":    fmt.Sprint(c.MaxArgs),
				"Got":    fmt.Sprint(len(args)),
			},
		}
	}

	var res Result
	switch c.Action {
	case card.ActionDrawNew:
		res = g.drawNew(actor, c, args)
	case card.ActionMeanwhile:
		res = g.meanwhile(actor, c, args[0])
	case card.ActionStealLines:
		res = g.stealLines(actor, c, args)
	case card.ActionTradeLines:
		res = g.tradeLines(actor, c, args)
	case card.ActionReorderLines, card.ActionCallInFavors:
		res = warning(fmt.Sprintf("%d. %s not yet implemented.", c.Number, c.Action))
	case card.ActionStirPot:
		res = g.stirPot(c)
	case card.ActionChangeName:
		res = g.changeName(actor, c, args)
	case card.ActionCompose:
		res = g.compose(actor, c, text)
	default:
		return fail(apperrors.CodeUnimplementedProtocol, fmt.Sprintf("No protocol for action %q", c.Action))
	}
	if res.Status == StatusError || res.Status == StatusWarning {
		return res
	}

	// Cards that did not land in a story go to the actor's private pile.
	if actor.Hand.Remove(c.Number) != nil {
		actor.Hand.Discards().Append(c)
		actor.ElementsPlayed[card.CategoryAction]++
	}
	actor.CardsPlayed++
	if res.Payload == nil {
		res.Payload = CardPayload{Card: viewCard(c)}
	}
	return res
}

func (g *Game) drawNew(actor *player.Player, c *card.Card, args []string) Result {
	numbers := make([]int, 0, len(args))
	seen := make(map[int]bool, len(args))
	for _, arg := range args {
		n, err := command.ParseCardNumber(arg)
		if err != nil {
			return failure(err)
		}
		if n == c.Number || actor.Hand.Get(n) == nil {
			return failure(notHolding(n))
		}
		if seen[n] {
			return fail(apperrors.CodeInvalidCardReference, fmt.Sprintf("Card %d named more than once", n))
		}
		seen[n] = true
		numbers = append(numbers, n)
	}

	suppressed := g.table.Suppressed()
	if g.deck.ActiveCount(suppressed...) == 0 {
		return fail(apperrors.CodeInvalidCardReference, "No replacement cards remain in the deck")
	}

	messages := []string{fmt.Sprintf("You played %d. %s", c.Number, strings.TrimSpace(c.Text))}
	for i, n := range numbers {
		g.discards.Append(actor.Hand.Remove(n))
		fresh, err := g.deck.Draw(suppressed...)
		if err != nil {
			return failure(err)
		}
		actor.Hand.Add(fresh)
		messages = append(messages, drawMessage(i+1, actor, fresh))
	}
	return success(joinMessages(messages...), nil)
}

// meanwhile splices the card before a story line (#n) or plays it ahead of
// a held story card.
func (g *Game) meanwhile(actor *player.Player, c *card.Card, arg string) Result {
	owner, err := g.storyOwner(actor)
	if err != nil {
		return failure(err)
	}
	if strings.HasPrefix(arg, "#") {
		line, err := strconv.Atoi(arg[1:])
		if err != nil || line < 0 || line >= owner.Hand.Story().Len() {
			return failure(apperrors.WithMetadata(apperrors.CodeInvalidLineReference,
				fmt.Sprintf("Line number %s is invalid", arg[1:]),
				map[string]string{"Line": arg[1:]}))
		}
		after := line - 1
		if err := handOver(actor, owner, c, owner.Hand.CheckPlace(c, &after)); err != nil {
			return failure(err)
		}
		if _, err := owner.Hand.Play(c.Number, &after); err != nil {
			return failure(err)
		}
		owner.RecordElement(c)
		return success(fmt.Sprintf("You played %d. %s", c.Number, strings.TrimSpace(c.Text)), nil)
	}

	n, err := command.ParseCardNumber(arg)
	if err != nil {
		return failure(err)
	}
	follow := actor.Hand.Get(n)
	if follow == nil || n == c.Number {
		return failure(notHolding(n))
	}
	if follow.IsAction() {
		return fail(apperrors.CodeInvalidCardReference,
			fmt.Sprintf("%s must be followed by a story card, card# %d is an action card", c.Action.Upper(), n))
	}
	for _, played := range []*card.Card{c, follow} {
		if err := handOver(actor, owner, played, owner.Hand.CheckPlace(played, nil)); err != nil {
			return failure(err)
		}
		if _, err := owner.Hand.Play(played.Number, nil); err != nil {
			return failure(err)
		}
		owner.RecordElement(played)
	}
	// The follow card; resolveAction counts the action card.
	actor.CardsPlayed++
	g.updateSuppression()
	return success(fmt.Sprintf("You played %d. %s and %d. %s",
		c.Number, strings.TrimSpace(c.Text), follow.Number, strings.TrimSpace(follow.Text)), nil)
}

func (g *Game) stealLines(actor *player.Player, c *card.Card, args []string) Result {
	if g.params.PlayMode == PlayModeCollaborative {
		return fail(apperrors.CodeInvalidCommand, "Steal lines not available in collaborative play mode.")
	}
	target := g.table.Lookup(args[0])
	if target == nil {
		return failure(noSuchPlayer(args[0]))
	}
	if target == actor {
		return fail(apperrors.CodeInvalidPlayer, "You cannot steal lines from yourself.")
	}
	if g.params.PlayMode == PlayModeTeam && target.Team != "" && target.Team == actor.Team {
		return fail(apperrors.CodeInvalidPlayer, "target player must be in a different team than you.")
	}
	line, err := command.ParseLine(args[1])
	if err != nil {
		return failure(err)
	}
	victim, err := g.storyOwner(target)
	if err != nil {
		return failure(err)
	}
	stolen, err := victim.Hand.TakeLine(line)
	if err != nil {
		return failure(err)
	}
	victim.ForgetElement(stolen)
	actor.Hand.Add(stolen)
	return success(fmt.Sprintf("You played %d. %s, stealing line %d from %s",
		c.Number, c.Action, line, victim.Name), CardPayload{Card: viewCard(stolen)})
}

// tradeLines checks its arguments but trading is not offered.
func (g *Game) tradeLines(actor *player.Player, c *card.Card, args []string) Result {
	target := g.table.Lookup(args[0])
	if target == nil {
		return failure(noSuchPlayer(args[0]))
	}
	theirLine, err := command.ParseLine(args[1])
	if err != nil {
		return failure(err)
	}
	myLine, err := command.ParseLine(args[2])
	if err != nil {
		return failure(err)
	}
	theirs, err := g.storyOwner(target)
	if err != nil {
		return failure(err)
	}
	mine, err := g.storyOwner(actor)
	if err != nil {
		return failure(err)
	}
	if theirLine >= theirs.Hand.Story().Len() {
		return failure(invalidLine(theirLine))
	}
	if myLine >= mine.Hand.Story().Len() {
		return failure(invalidLine(myLine))
	}
	return warning(fmt.Sprintf("%d. %s not available.", c.Number, c.Action))
}

// stirPot has every player pass a random card to the left at the same time.
func (g *Game) stirPot(c *card.Card) Result {
	if !g.params.RandomizePicks {
		return warning(fmt.Sprintf("%s interactive mode not enforced. Each player must pass <card_number> left.", c.Action))
	}
	players := g.table.Players()
	if len(players) < 2 {
		return fail(apperrors.CodeInvalidPlayer, "No other players to pass to!")
	}

	type pick struct {
		from *player.Player
		card *card.Card
	}
	var picks []pick
	for _, p := range players {
		var candidates []*card.Card
		for _, held := range p.Hand.Cards() {
			if held != c {
				candidates = append(candidates, held)
			}
		}
		if len(candidates) == 0 {
			continue
		}
		picks = append(picks, pick{from: p, card: candidates[g.rng.Intn(len(candidates))]})
	}
	for _, pk := range picks {
		pk.from.Hand.Remove(pk.card.Number)
	}
	messages := []string{fmt.Sprintf("You played %d. %s", c.Number, strings.TrimSpace(c.Text))}
	for _, pk := range picks {
		to := g.table.Next(pk.from)
		to.Hand.Add(pk.card)
		messages = append(messages, fmt.Sprintf("Card #%d removed from %s's hand and given to %s", pk.card.Number, pk.from.Initials, to.Initials))
	}
	return success(joinMessages(messages...), nil)
}

type rename struct {
	before string
	after  string
}

// changeName substitutes whole-word, case-sensitive names on one story line.
// A bare name uses the game's character alias.
func (g *Game) changeName(actor *player.Player, c *card.Card, args []string) Result {
	owner, err := g.storyOwner(actor)
	if err != nil {
		return failure(err)
	}
	line, err := command.ParseLine(args[0])
	if err != nil {
		return failure(err)
	}
	story := owner.Hand.Story()
	if line >= story.Len() {
		return failure(apperrors.WithMetadata(apperrors.CodeInvalidLineReference,
			fmt.Sprintf("Invalid story line number %d", line),
			map[string]string{"Line": fmt.Sprint(line)}))
	}
	renames := make(map[string]string, len(args)-1)
	befores := make([]string, 0, len(args)-1)
	for _, arg := range args[1:] {
		r, ok := g.parseRename(arg)
		if !ok {
			return fail(apperrors.CodeInvalidArgument, "Change name must have a before and after separated by a '/'")
		}
		renames[r.before] = r.after
		befores = append(befores, r.before)
	}

	target := story.At(line)
	text, replaced := card.ReplaceNames(target.Text, renames)
	if replaced == 0 {
		names := strings.Join(befores, ", ")
		return failure(apperrors.WithMetadata(apperrors.CodeInvalidArgument,
			fmt.Sprintf("No name %s found on line %d", names, line),
			map[string]string{"Argument": names}))
	}
	target.Text = text
	return success(fmt.Sprintf("You played %d. %s on %d. %s",
		c.Number, strings.TrimSpace(c.Text), target.Number, strings.TrimSpace(target.Text)),
		CardPayload{Card: viewCard(target)})
}

func (g *Game) parseRename(arg string) (rename, bool) {
	parts := strings.Split(arg, "/")
	switch len(parts) {
	case 1:
		alias, ok := g.params.CharacterAlias[arg]
		if !ok || alias == "" {
			return rename{}, false
		}
		return rename{before: arg, after: alias}, true
	case 2:
		if parts[0] == "" || parts[1] == "" {
			return rename{}, false
		}
		return rename{before: parts[0], after: parts[1]}, true
	default:
		return rename{}, false
	}
}

// compose writes a new Story card from free text into the target story.
func (g *Game) compose(actor *player.Player, c *card.Card, literal string) Result {
	owner, err := g.storyOwner(actor)
	if err != nil {
		return failure(err)
	}
	text := literal + "\n"
	composed := card.NewStory(g.deck.NewSyntheticNumber(), card.CategoryStory, text)
	_ = owner.Hand.Place(composed, nil)
	owner.RecordElement(composed)
	return success(fmt.Sprintf("You played %d. %s %s played card# %d. %s",
		c.Number, strings.TrimSpace(c.Text), actor.Initials, composed.Number, strings.TrimSpace(text)),
		CardPayload{Card: viewCard(composed)})
}
