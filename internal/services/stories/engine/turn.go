package engine

import (
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	apperrors "github.com/louisbranch/stories/internal/platform/errors"
	"github.com/louisbranch/stories/internal/services/stories/domain/card"
	"github.com/louisbranch/stories/internal/services/stories/domain/command"
	"github.com/louisbranch/stories/internal/services/stories/domain/hand"
	"github.com/louisbranch/stories/internal/services/stories/domain/player"
)

// suppressible categories stop being drawn once every story has one.
var suppressible = []card.Category{card.CategoryTitle, card.CategoryOpening}

// handleDone ends the current player's turn. With error checks bypassed any
// player may end it.
func (g *Game) handleDone(actor *player.Player) Result {
	current := g.table.Current()
	if actor != current && !g.params.BypassErrorChecks {
		return fail(apperrors.CodeTurnPreconditionViolated,
			fmt.Sprintf("It is not your turn, it is %s's turn", current.Initials))
	}
	if err := current.EndTurn(g.params.BypassErrorChecks); err != nil {
		return failure(err)
	}
	g.table.Advance()
	next := g.table.Current()
	return Result{
		Status:       StatusNeedsNextAction,
		Message:      fmt.Sprintf("Turn Complete. %s's turn, player# %d.", next.Initials, next.Number),
		TurnComplete: true,
		Payload:      NextPlayerPayload{Initials: next.Initials, Number: next.Number},
	}
}

func (g *Game) handleEnd(req command.EndRequest) Result {
	owners := g.storyOwners()
	if len(owners) == 0 {
		_, err := g.storyOwner(g.table.Current())
		if err == nil {
			err = apperrors.New(apperrors.CodeMissingRoleHolder, "No player owns a story")
		}
		return failure(err)
	}

	var (
		b        strings.Builder
		winner   *player.Player
		complete = true
		scores   = make(map[string]int, len(owners))
	)
	for _, owner := range owners {
		stories := owner.ElementsPlayed[card.CategoryStory]
		owner.Points = stories + (stories - g.params.StoryLength)
		scores[owner.Initials] = owner.Points
		if winner == nil || owner.Points > winner.Points {
			winner = owner
		}
		tally, _ := json.Marshal(owner.Elements())
		if g.params.BypassErrorChecks || owner.HasCompleteStory() {
			fmt.Fprintf(&b, "Player: %s played cards: %s\n", owner.Initials, tally)
			continue
		}
		complete = false
		fmt.Fprintf(&b, "Player: %s has not played necessary story elements: %s\n", owner.Initials, tally)
	}
	if !complete {
		return fail(apperrors.CodeTurnPreconditionViolated, strings.TrimSpace(b.String()))
	}

	message := fmt.Sprintf("The %s is over!", req.Scope)
	if g.params.PlayMode != PlayModeCollaborative {
		message = fmt.Sprintf("%s and the winner with %d points is %s", message, winner.Points, winner.Initials)
	}
	payload := WinnerPayload{Initials: winner.Initials, Points: winner.Points, Scores: scores}
	switch req.Scope {
	case command.EndGame:
		g.finished = true
		g.logger.Info("game over", zap.String("winner", winner.Initials), zap.Int("points", winner.Points))
		return Result{Status: StatusTerminate, Message: message, TurnComplete: true, Payload: payload}
	case command.EndRound:
		return Result{Status: StatusSuccess, Message: message, TurnComplete: true, Payload: payload}
	default:
		return fail(apperrors.CodeInvalidArgument, fmt.Sprintf("Cannot end %s", req.Scope))
	}
}

func (g *Game) handleFind(actor *player.Player, req command.FindRequest) Result {
	found := card.NewList(actor.Hand.Sorted()...).FindFirst(req.Category, req.Action)
	if found == nil {
		return success(fmt.Sprintf("No card of type %s was found", req.Category), FoundPayload{Number: -1})
	}
	message := fmt.Sprintf("Found card# %d for type %s", found.Number, req.Category)
	if req.Action != card.ActionNone {
		message = fmt.Sprintf("%s, action type: %s", message, req.Action)
	}
	return success(message, FoundPayload{Number: found.Number})
}

func (g *Game) handleDraw(actor *player.Player, req command.DrawRequest) Result {
	target, err := g.lookupOr(actor, req.Player)
	if err != nil {
		return failure(err)
	}
	replaced := g.replaceSuppressed(target)

	var c *card.Card
	switch req.Source {
	case command.DrawNew:
		c, err = g.deck.Draw(g.table.Suppressed()...)
	case command.DrawDiscard:
		c, err = g.popDiscard()
	case command.DrawCategory:
		c, err = g.deck.DrawType(req.Category, req.Action)
	default:
		err = apperrors.New(apperrors.CodeInvalidArgument, fmt.Sprintf("Cannot draw from %s", req.Source))
	}
	if err != nil {
		return failure(err)
	}
	target.Draw(c)
	return Result{
		Status:  StatusNeedsPlayerChoice,
		Message: joinMessages(replaced, drawMessage(1, target, c)),
		Payload: CardPayload{Card: viewCard(c)},
	}
}

func drawMessage(ordinal int, p *player.Player, c *card.Card) string {
	return fmt.Sprintf("%d. %s drew a %s (%d): %s", ordinal, p.Initials, c.Category, c.Number, strings.TrimSpace(c.Text))
}

func (g *Game) popDiscard() (*card.Card, error) {
	if g.discards.Len() == 0 {
		return nil, apperrors.New(apperrors.CodeInvalidCardReference, "No discards to draw from")
	}
	return g.discards.RemoveAt(g.discards.Len() - 1), nil
}

// replaceSuppressed moves held cards of suppressed categories to p's private
// discard pile and draws replacements.
func (g *Game) replaceSuppressed(p *player.Player) string {
	var messages []string
	suppressed := g.table.Suppressed()
	for _, category := range suppressed {
		for _, old := range p.Hand.DiscardCategory(category) {
			fresh, err := g.deck.Draw(suppressed...)
			if err != nil {
				messages = append(messages, fmt.Sprintf("%s card# %d discarded, no replacement available", category, old.Number))
				continue
			}
			p.Hand.Add(fresh)
			messages = append(messages, fmt.Sprintf("%s card# %d is no longer needed and was replaced by %d", category, old.Number, fresh.Number))
		}
	}
	return joinMessages(messages...)
}

// updateSuppression stops drawing Title and Opening cards once every story
// has one.
func (g *Game) updateSuppression() {
	owners := g.storyOwners()
	for _, category := range suppressible {
		if player.AllPlayed(owners, category) && g.table.Suppress(category) {
			g.logger.Debug("category suppressed", zap.String("category", string(category)))
		}
	}
}

func (g *Game) handleDiscard(actor *player.Player, req command.DiscardRequest) Result {
	target, err := g.lookupOr(actor, req.Player)
	if err != nil {
		return failure(err)
	}
	c, err := target.Discard(req.Card)
	if err != nil {
		return failure(err)
	}
	g.discards.Append(c)
	return success(fmt.Sprintf("You are discarding card# %d. %s", c.Number, strings.TrimSpace(c.Text)), CardPayload{Card: viewCard(c)})
}

func (g *Game) handlePlay(actor *player.Player, req command.PlayRequest) Result {
	c, err := g.resolveCard(actor, req.Ref)
	if err != nil {
		return failure(err)
	}
	return g.play(actor, c, req.Args, req.Text)
}

func (g *Game) handlePlayType(actor *player.Player, req command.PlayTypeRequest) Result {
	c, err := g.deck.DrawType(req.Category, card.ActionNone)
	if err != nil {
		return failure(err)
	}
	actor.Draw(c)
	drawn := drawMessage(1, actor, c)
	res := g.play(actor, c, req.Args, req.Text)
	res.Message = joinMessages(drawn, res.Message)
	return res
}

func (g *Game) resolveCard(actor *player.Player, ref command.CardRef) (*card.Card, error) {
	var c *card.Card
	switch ref.Kind {
	case command.RefLast:
		if last := actor.Hand.LastDrawn(); last != hand.NoCard {
			c = actor.Hand.Get(last)
		}
		if c == nil {
			return nil, apperrors.New(apperrors.CodeInvalidCardReference, "You are not holding the last card you drew")
		}
	case command.RefOrdinal:
		if c = actor.Hand.AtOrdinal(ref.Value); c == nil {
			return nil, apperrors.WithMetadata(apperrors.CodeInvalidCardReference,
				fmt.Sprintf("Invalid card reference: #%d", ref.Value),
				map[string]string{"Card": fmt.Sprintf("#%d", ref.Value)})
		}
	case command.RefNumber:
		if c = actor.Hand.Get(ref.Value); c == nil {
			return nil, notHolding(ref.Value)
		}
	default:
		return nil, apperrors.New(apperrors.CodeInvalidCardReference, "Invalid card reference")
	}
	return c, nil
}

// play puts a held card into the actor's target story, or resolves it when
// it is an action card. text is args with their original spacing.
func (g *Game) play(actor *player.Player, c *card.Card, args []string, text string) Result {
	if c.IsAction() {
		return g.resolveAction(actor, c, args, text)
	}
	if len(args) > 0 {
		return fail(apperrors.CodeInvalidArgumentCount,
			fmt.Sprintf("A %s card takes no arguments. You specified %d", c.Category, len(args)))
	}
	owner, err := g.storyOwner(actor)
	if err != nil {
		return failure(err)
	}
	if err := handOver(actor, owner, c, owner.Hand.CheckPlace(c, nil)); err != nil {
		return failure(err)
	}
	if _, err := owner.Hand.Play(c.Number, nil); err != nil {
		return failure(err)
	}
	owner.RecordElement(c)
	actor.CardsPlayed++
	g.updateSuppression()

	message := fmt.Sprintf("%s played card# %d. %s", actor.Initials, c.Number, strings.TrimSpace(c.Text))
	return success(joinMessages(message, g.refill(actor)), CardPayload{Card: viewCard(c)})
}

// handOver moves c from the actor's hand to the story owner's hand once check
// has passed, so the owner's hand plays it into their story.
func handOver(actor, owner *player.Player, c *card.Card, check error) error {
	if check != nil {
		return check
	}
	if owner != actor {
		owner.Hand.Take(actor.Hand.Remove(c.Number))
	}
	return nil
}

// refill tops up the hand when automatic draw is on.
func (g *Game) refill(p *player.Player) string {
	if !g.params.AutomaticDraw {
		return ""
	}
	var messages []string
	for ordinal := 1; p.Hand.Size() < g.params.MaxCardsInHand; ordinal++ {
		c, err := g.deck.Draw(g.table.Suppressed()...)
		if err != nil {
			messages = append(messages, err.Error())
			break
		}
		p.Hand.Add(c)
		messages = append(messages, drawMessage(ordinal, p, c))
	}
	return joinMessages(messages...)
}

func (g *Game) handleInsert(actor *player.Player, req command.InsertRequest) Result {
	c := actor.Hand.Get(req.Card)
	if c == nil {
		return failure(notHolding(req.Card))
	}
	if c.IsAction() {
		return fail(apperrors.CodeInvalidCardReference,
			fmt.Sprintf("Card# %d is an action card, use play to resolve it", c.Number))
	}
	owner, err := g.storyOwner(actor)
	if err != nil {
		return failure(err)
	}
	if err := handOver(actor, owner, c, owner.Hand.CheckInsert(req.Line, c)); err != nil {
		return failure(err)
	}
	if _, err := owner.Hand.Insert(req.Line, c.Number); err != nil {
		return failure(err)
	}
	owner.RecordElement(c)
	actor.CardsPlayed++
	g.updateSuppression()
	return success(fmt.Sprintf("%s inserted card# %d after line %d. %s", actor.Initials, c.Number, req.Line, strings.TrimSpace(c.Text)),
		CardPayload{Card: viewCard(c)})
}

func (g *Game) handleReplace(actor *player.Player, req command.ReplaceRequest) Result {
	c := actor.Hand.Get(req.Card)
	if c == nil {
		return failure(notHolding(req.Card))
	}
	if c.IsAction() {
		return fail(apperrors.CodeInvalidCardReference,
			fmt.Sprintf("Card# %d is an action card, use play to resolve it", c.Number))
	}
	owner, err := g.storyOwner(actor)
	if err != nil {
		return failure(err)
	}
	if err := handOver(actor, owner, c, owner.Hand.CheckReplace(req.Line, c)); err != nil {
		return failure(err)
	}
	previous, err := owner.Hand.Replace(req.Line, c.Number)
	if err != nil {
		return failure(err)
	}
	owner.ForgetElement(previous)
	owner.RecordElement(c)
	actor.CardsPlayed++
	g.updateSuppression()
	return success(fmt.Sprintf("%s replaced line %d (card# %d) with card# %d. %s",
		actor.Initials, req.Line, previous.Number, c.Number, strings.TrimSpace(c.Text)),
		CardPayload{Card: viewCard(c)})
}

func (g *Game) handlePass(actor *player.Player, req command.PassRequest) Result {
	giver, err := g.lookupOr(actor, req.Player)
	if err != nil {
		return failure(err)
	}
	message, err := g.pass(giver, req.Card, req.Direction)
	if err != nil {
		return failure(err)
	}
	return success(message, nil)
}

func (g *Game) pass(giver *player.Player, number int, direction command.Direction) (string, error) {
	if giver.Hand.Get(number) == nil {
		return "", notHolding(number)
	}
	receiver, err := g.neighbour(giver, direction)
	if err != nil {
		return "", err
	}
	c := giver.Hand.Remove(number)
	receiver.Hand.Add(c)
	return fmt.Sprintf("Card #%d removed from %s's hand and given to %s", c.Number, giver.Initials, receiver.Initials), nil
}

func (g *Game) neighbour(p *player.Player, direction command.Direction) (*player.Player, error) {
	if g.table.Len() < 2 {
		return nil, apperrors.New(apperrors.CodeInvalidPlayer, "No other players to pass to!")
	}
	if direction == command.DirectionAny {
		direction = command.DirectionLeft
		if g.rng.Intn(2) == 1 {
			direction = command.DirectionRight
		}
	}
	switch direction {
	case command.DirectionLeft:
		return g.table.Next(p), nil
	case command.DirectionRight:
		return g.table.Previous(p), nil
	default:
		return nil, apperrors.New(apperrors.CodeInvalidArgument, fmt.Sprintf("Unknown direction %s", direction))
	}
}

func notHolding(number int) error {
	return apperrors.WithMetadata(apperrors.CodeInvalidCardReference,
		fmt.Sprintf("You are not holding a card with number %d", number),
		map[string]string{"Card": fmt.Sprint(number)})
}

func invalidLine(line int) error {
	return apperrors.WithMetadata(apperrors.CodeInvalidLineReference,
		fmt.Sprintf("Invalid line number: %d", line),
		map[string]string{"Line": fmt.Sprint(line)})
}
