package engine

import (
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	apperrors "github.com/louisbranch/stories/internal/platform/errors"
	"github.com/louisbranch/stories/internal/services/stories/domain/card"
	"github.com/louisbranch/stories/internal/services/stories/domain/command"
	"github.com/louisbranch/stories/internal/services/stories/domain/player"
)

func (g *Game) handleAddPlayer(req command.AddPlayerRequest) Result {
	added, err := g.AddPlayer(req.Name, req.Initials, req.Role)
	if err != nil {
		return failure(err)
	}
	return success(fmt.Sprintf("Added player %s (%s) player# %d", added.Name, added.Initials, added.Number), added)
}

func (g *Game) handleAddDirector(req command.AddDirectorRequest) Result {
	p := g.table.Lookup(req.Initials)
	if p == nil {
		return failure(noSuchPlayer(req.Initials))
	}
	p.Role = player.RoleDirector
	return success(fmt.Sprintf("Player %s is now the Director", p.Initials), playerPayload(p))
}

func (g *Game) handleAddTeam(req command.AddTeamRequest) Result {
	members := make([]*player.Player, 0, len(req.Members))
	for _, ref := range req.Members {
		p := g.table.Lookup(ref)
		if p == nil {
			return failure(noSuchPlayer(ref))
		}
		if p.Team != "" {
			return fail(apperrors.CodeInvalidArgument, fmt.Sprintf("Player %s is already on team '%s'", p.Initials, p.Team))
		}
		members = append(members, p)
	}
	team, err := g.table.AddTeam(req.Team, members)
	if err != nil {
		return failure(err)
	}
	return success(fmt.Sprintf("Team '%s' added, team lead %s", team.Name, team.Members[0].Initials), g.teamPayload(team))
}

func (g *Game) handleStart() Result {
	if g.table.Started() {
		return fail(apperrors.CodeInvalidCommand, fmt.Sprintf("Game %s has already started", g.id))
	}
	if err := g.table.Start(); err != nil {
		return failure(err)
	}
	current := g.table.Current()
	g.logger.Info("game started", zap.Int("players", g.table.Len()))
	return Result{
		Status:  StatusNeedsNextAction,
		Message: fmt.Sprintf("Starting game %s. %s's turn, player# %d.", g.id, current.Initials, current.Number),
		Payload: NextPlayerPayload{Initials: current.Initials, Number: current.Number},
	}
}

func (g *Game) handleSet(req command.SetRequest) Result {
	message, err := g.params.Set(req.Parameter, req.Value)
	if err != nil {
		return failure(err)
	}
	return success(message, nil)
}

func (g *Game) handleShow(req command.ShowRequest) Result {
	switch req.What {
	case "discard", "discards":
		if g.discards.Len() == 0 {
			return success("The discard pile is empty", nil)
		}
		return success(listCards(g.discards.Cards()), nil)
	case "deck":
		return success(fmt.Sprintf("%s deck: %d cards, %d active, cursor at %d",
			g.genre, g.deck.Size(), g.deck.ActiveCount(), g.deck.Cursor()), nil)
	case "params", "parameters":
		data, err := json.Marshal(g.params)
		if err != nil {
			return failure(err)
		}
		return success(string(data), nil)
	case "all":
		return success(listCards(g.deck.Cards()), nil)
	}
	category, err := card.ParseCategory(req.What)
	if err != nil {
		return fail(apperrors.CodeInvalidArgument, fmt.Sprintf("I don't understand what '%s' is", req.What))
	}
	return success(listCards(g.deck.ByCategory(category)), nil)
}

func (g *Game) handleHelp(req command.HelpRequest) Result {
	if req.Topic == "" {
		var b strings.Builder
		for _, def := range g.registry.Definitions() {
			fmt.Fprintf(&b, "%s\n", def.Usage)
		}
		return success(b.String(), nil)
	}
	if def, ok := g.registry.Lookup(command.Name(req.Topic)); ok {
		return success(def.Usage, nil)
	}
	if kind, err := card.ParseActionKind(req.Topic); err == nil {
		for _, c := range g.deck.ByCategory(card.CategoryAction) {
			if c.Action == kind {
				return success(fmt.Sprintf("%s takes from %d to %d arguments. %s", kind.Upper(), c.MinArgs, c.MaxArgs, strings.TrimSpace(c.Text)), nil)
			}
		}
	}
	return fail(apperrors.CodeInvalidArgument, fmt.Sprintf("No help for '%s'", req.Topic))
}

func (g *Game) handleLogMessage(actor *player.Player, req command.LogMessageRequest) Result {
	g.logger.Info("log message", zap.String("actor", actor.Initials), zap.String("text", req.Text))
	return success(req.Text, nil)
}

func listCards(cards []*card.Card) string {
	var b strings.Builder
	for i, c := range cards {
		fmt.Fprintf(&b, "%d. %s", i+1, c)
	}
	return b.String()
}
