package engine

import (
	"encoding/json"
	"fmt"
	"strings"

	apperrors "github.com/louisbranch/stories/internal/platform/errors"
	"github.com/louisbranch/stories/internal/services/stories/domain/command"
	"github.com/louisbranch/stories/internal/services/stories/domain/player"
)

func (g *Game) handleList(actor *player.Player, req command.ListRequest) Result {
	if req.Target == command.ListStory {
		return g.handleRead(actor, command.ReadRequest{Numbered: req.Numbered, Player: req.Player})
	}
	target, err := g.lookupOr(actor, req.Player)
	if err != nil {
		return failure(err)
	}
	sorted := target.Hand.Sorted()
	payload := HandPayload{Owner: target.Initials, Cards: viewCards(sorted), LastDrawn: target.Hand.LastDrawn()}
	if req.Format == command.FormatJSON {
		data, err := json.Marshal(struct {
			Cards []CardView `json:"cards"`
		}{payload.Cards})
		if err != nil {
			return failure(err)
		}
		return success(string(data), payload)
	}

	var b strings.Builder
	for i, c := range sorted {
		mark := ""
		if c.Number == payload.LastDrawn {
			mark = "*"
		}
		if req.Numbered {
			fmt.Fprintf(&b, "%s%d. %s", mark, i+1, c)
			continue
		}
		fmt.Fprintf(&b, "%s%s", mark, c)
	}
	return success(b.String(), payload)
}

func (g *Game) handleRead(actor *player.Player, req command.ReadRequest) Result {
	target, err := g.lookupOr(actor, req.Player)
	if err != nil {
		return failure(err)
	}
	payload, err := g.story(target, req.Numbered)
	if err != nil {
		return failure(err)
	}
	return success(payload.Text, payload)
}

func (g *Game) story(p *player.Player, numbered bool) (StoryPayload, error) {
	owner, err := g.storyOwner(p)
	if err != nil {
		return StoryPayload{}, err
	}
	story := owner.Hand.Story()
	return StoryPayload{
		Owner: owner.Initials,
		Cards: viewCards(story.Cards()),
		Text:  story.Text(numbered),
	}, nil
}

func (g *Game) handlePublish(actor *player.Player, req command.PublishRequest) Result {
	target, err := g.lookupOr(actor, req.Player)
	if err != nil {
		return failure(err)
	}
	payload, err := g.story(target, false)
	if err != nil {
		return failure(err)
	}
	payload.Published = true
	return success(fmt.Sprintf("Published the story of %s", payload.Owner), payload)
}

func (g *Game) handleStatus(actor *player.Player, req command.StatusRequest) Result {
	target, err := g.lookupOr(actor, req.Player)
	if err != nil {
		return failure(err)
	}
	snap := g.playerSnapshot(target)
	tally, err := json.Marshal(snap.Elements)
	if err != nil {
		return failure(err)
	}
	return success(fmt.Sprintf("%s %s, %d cards in hand, story elements played: %s",
		target.Initials, snap.Phase, snap.HandSize, tally), StatusPayload{Player: snap})
}

func (g *Game) handleInfo(actor *player.Player, req command.InfoRequest) Result {
	target, err := g.lookupOr(actor, req.Player)
	if err != nil {
		return failure(err)
	}
	message := fmt.Sprintf("%s, role %s", target, target.Role)
	if target.Team != "" {
		message = fmt.Sprintf("%s, team '%s'", message, target.Team)
	}
	return success(message, playerPayload(target))
}

func (g *Game) handleTeamInfo(req command.TeamInfoRequest) Result {
	teams := g.table.Teams()
	if name := req.Team; name != "" && !strings.EqualFold(name, "all") {
		team := g.table.Team(name)
		if team == nil {
			return fail(apperrors.CodeNotFound, fmt.Sprintf("No such team: %s", name))
		}
		teams = []*player.Team{team}
	}
	if len(teams) == 0 {
		return success("There are no teams", TeamPayload{})
	}
	var (
		b       strings.Builder
		payload TeamPayload
	)
	for _, team := range teams {
		view := g.teamPayload(team).Teams[0]
		payload.Teams = append(payload.Teams, view)
		fmt.Fprintf(&b, "Team '%s': lead %s, members %s\n", view.Name, view.Lead, strings.Join(view.Members, ", "))
	}
	return success(b.String(), payload)
}

func (g *Game) teamPayload(team *player.Team) TeamPayload {
	view := TeamView{Name: team.Name}
	for _, m := range team.Members {
		view.Members = append(view.Members, m.Initials)
	}
	if leads := team.Leads(); len(leads) > 0 {
		view.Lead = leads[0].Initials
	}
	return TeamPayload{Teams: []TeamView{view}}
}
