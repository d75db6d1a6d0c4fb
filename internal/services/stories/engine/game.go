package engine

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"go.uber.org/zap"

	apperrors "github.com/louisbranch/stories/internal/platform/errors"
	"github.com/louisbranch/stories/internal/platform/id"
	"github.com/louisbranch/stories/internal/platform/logging"
	"github.com/louisbranch/stories/internal/random"
	"github.com/louisbranch/stories/internal/services/stories/domain/card"
	"github.com/louisbranch/stories/internal/services/stories/domain/command"
	"github.com/louisbranch/stories/internal/services/stories/domain/deck"
	"github.com/louisbranch/stories/internal/services/stories/domain/player"
	"github.com/louisbranch/stories/internal/services/stories/domain/state"
)

// CommandSeparator splits several commands on one line.
const CommandSeparator = ";"

const adminInitials = "admin"

// Config builds a Game.
type Config struct {
	ID         string
	Genre      string
	Cards      []*card.Card
	Parameters Parameters
	Seed       int64
	Logger     *zap.Logger
	// NewID generates player ids; defaults to id.NewID.
	NewID func() (string, error)
}

// Game is one running game.
type Game struct {
	id       string
	genre    string
	seed     int64
	params   Parameters
	rng      *rand.Rand
	deck     *deck.Deck
	table    *state.GameState
	discards *card.List
	registry *command.Registry
	admin    *player.Player
	finished bool
	logger   *zap.Logger
	newID    func() (string, error)
}

// New creates a game over cfg.Cards. All randomness derives from cfg.Seed.
func New(cfg Config) (*Game, error) {
	if strings.TrimSpace(cfg.ID) == "" {
		return nil, errors.New("game id is required")
	}
	if len(cfg.Cards) == 0 {
		return nil, errors.New("game needs at least one card")
	}
	params := cfg.Parameters.Normalize()
	if err := params.Validate(); err != nil {
		return nil, err
	}
	registry, err := command.Builtin()
	if err != nil {
		return nil, fmt.Errorf("build command registry: %w", err)
	}
	newID := cfg.NewID
	if newID == nil {
		newID = id.NewID
	}
	rng := random.New(cfg.Seed)
	g := &Game{
		id:       cfg.ID,
		genre:    cfg.Genre,
		seed:     cfg.Seed,
		params:   params,
		rng:      rng,
		deck:     deck.New(cfg.Genre, cfg.Cards, rng),
		table:    state.New(),
		discards: card.NewList(),
		registry: registry,
		admin:    player.New("", "Administrator", adminInitials, player.RoleDirector),
		logger:   logging.OrNop(cfg.Logger).With(zap.String("game_id", cfg.ID)),
		newID:    newID,
	}
	g.admin.Number = state.NotStarted
	return g, nil
}

// ID returns the game id.
func (g *Game) ID() string { return g.id }

// Genre returns the deck genre.
func (g *Game) Genre() string { return g.genre }

// Seed returns the seed the game was created with.
func (g *Game) Seed() int64 { return g.seed }

// Parameters returns a copy of the current settings.
func (g *Game) Parameters() Parameters {
	p := g.params
	if p.CharacterAlias != nil {
		p.CharacterAlias = make(map[string]string, len(g.params.CharacterAlias))
		for k, v := range g.params.CharacterAlias {
			p.CharacterAlias[k] = v
		}
	}
	return p
}

// Finished reports whether the game has ended.
func (g *Game) Finished() bool { return g.finished }

// Registry returns the command registry.
func (g *Game) Registry() *command.Registry { return g.registry }

// AddPlayer seats a player and deals their opening hand.
func (g *Game) AddPlayer(name, initials, role string) (PlayerPayload, error) {
	return g.Join(Seat{Name: name, Initials: initials, Role: role})
}

// Seat describes a player joining a game. An empty ID is generated.
type Seat struct {
	ID       string
	Name     string
	Initials string
	Role     string
}

// Join seats a player with a known id, used when rebuilding a game.
func (g *Game) Join(seat Seat) (PlayerPayload, error) {
	if g.finished {
		return PlayerPayload{}, gameOver()
	}
	role, err := player.ParseRole(seat.Role)
	if err != nil {
		return PlayerPayload{}, apperrors.New(apperrors.CodeInvalidArgument, err.Error())
	}
	name := strings.TrimSpace(seat.Name)
	initials := strings.TrimSpace(seat.Initials)
	if name == "" {
		name = initials
	}
	if strings.EqualFold(initials, adminInitials) {
		return PlayerPayload{}, apperrors.New(apperrors.CodeInvalidPlayer, fmt.Sprintf("initials %s are reserved", initials))
	}
	playerID := seat.ID
	if playerID == "" {
		if playerID, err = g.newID(); err != nil {
			return PlayerPayload{}, fmt.Errorf("generate player id: %w", err)
		}
	}
	p := player.New(playerID, name, initials, role)
	if err := g.table.AddPlayer(p); err != nil {
		return PlayerPayload{}, err
	}
	dealt, err := g.deck.Deal(g.params.DealSize, g.table.Suppressed()...)
	p.Hand.Add(dealt...)
	if err != nil {
		g.logger.Warn("short deal", zap.String("initials", p.Initials), zap.Int("dealt", len(dealt)), zap.Error(err))
	}
	g.logger.Debug("player added",
		zap.String("initials", p.Initials),
		zap.Int("number", p.Number),
		zap.String("role", string(p.Role)))
	return playerPayload(p), nil
}

// Execute runs one or more commands separated by ";" on behalf of actor.
// An empty actor means the current player. Execution stops at the first
// Error or Terminate result.
func (g *Game) Execute(line, actor string) Result {
	var (
		last     Result
		messages []string
		ran      bool
	)
	for _, part := range strings.Split(line, CommandSeparator) {
		if strings.TrimSpace(part) == "" {
			continue
		}
		last = g.executeOne(part, actor)
		ran = true
		messages = append(messages, last.Message)
		if last.Status == StatusError || last.Status == StatusTerminate {
			break
		}
	}
	if !ran {
		return g.executeOne(line, actor)
	}
	last.Message = joinMessages(messages...)
	return last
}

func (g *Game) executeOne(line, actorRef string) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			g.logger.Error("command panicked", zap.String("command", line), zap.Any("panic", r))
			res = fail(apperrors.CodeUnknown, fmt.Sprintf("internal error running %q", strings.TrimSpace(line)))
		}
	}()

	req, def, err := g.registry.Parse(line)
	if err != nil {
		return failure(err)
	}
	if g.finished && !readOnly(def.Name) {
		return failure(gameOver())
	}
	actor, err := g.resolveActor(def, actorRef)
	if err != nil {
		return failure(err)
	}
	res = g.dispatch(actor, def, req)
	if actor != g.admin && !res.TurnComplete && res.OK() {
		res.TurnComplete = actor.Phase() == player.PhaseTurnComplete
	}
	g.logger.Debug("command executed",
		zap.String("command", string(def.Name)),
		zap.String("actor", actor.Initials),
		zap.String("status", string(res.Status)))
	return res
}

func (g *Game) resolveActor(def command.Definition, ref string) (*player.Player, error) {
	if ref = strings.TrimSpace(ref); ref != "" {
		if strings.EqualFold(ref, adminInitials) && def.Setup {
			return g.admin, nil
		}
		p := g.table.Lookup(ref)
		if p == nil {
			return nil, noSuchPlayer(ref)
		}
		if !g.table.Started() && !def.Setup && !readOnly(def.Name) {
			return nil, notStarted()
		}
		return p, nil
	}
	if g.table.Started() {
		return g.table.Current(), nil
	}
	if def.Setup {
		return g.admin, nil
	}
	return nil, notStarted()
}

func (g *Game) dispatch(actor *player.Player, def command.Definition, req command.Request) Result {
	if def.Directed && !g.mayDirect(actor) {
		return fail(apperrors.CodeUnauthorizedRole,
			fmt.Sprintf("Only the director or a team lead may use %s in %s play", def.Name, g.params.PlayMode))
	}
	switch r := req.(type) {
	case command.AddPlayerRequest:
		return g.handleAddPlayer(r)
	case command.AddDirectorRequest:
		return g.handleAddDirector(r)
	case command.AddTeamRequest:
		return g.handleAddTeam(r)
	case command.StartRequest:
		return g.handleStart()
	case command.DoneRequest:
		return g.handleDone(actor)
	case command.EndRequest:
		return g.handleEnd(r)
	case command.FindRequest:
		return g.handleFind(actor, r)
	case command.DrawRequest:
		return g.handleDraw(actor, r)
	case command.DiscardRequest:
		return g.handleDiscard(actor, r)
	case command.PlayRequest:
		return g.handlePlay(actor, r)
	case command.PlayTypeRequest:
		return g.handlePlayType(actor, r)
	case command.InsertRequest:
		return g.handleInsert(actor, r)
	case command.ReplaceRequest:
		return g.handleReplace(actor, r)
	case command.PassRequest:
		return g.handlePass(actor, r)
	case command.ListRequest:
		return g.handleList(actor, r)
	case command.ShowRequest:
		return g.handleShow(r)
	case command.ReadRequest:
		return g.handleRead(actor, r)
	case command.StatusRequest:
		return g.handleStatus(actor, r)
	case command.InfoRequest:
		return g.handleInfo(actor, r)
	case command.TeamInfoRequest:
		return g.handleTeamInfo(r)
	case command.SetRequest:
		return g.handleSet(r)
	case command.PublishRequest:
		return g.handlePublish(actor, r)
	case command.LogMessageRequest:
		return g.handleLogMessage(actor, r)
	case command.HelpRequest:
		return g.handleHelp(r)
	default:
		return fail(apperrors.CodeInvalidCommand, fmt.Sprintf("Invalid command: %q", def.Name))
	}
}

func readOnly(name command.Name) bool {
	switch name {
	case command.NameList, command.NameShow, command.NameRead, command.NameStatus,
		command.NameInfo, command.NameTeamInfo, command.NamePublish, command.NameHelp:
		return true
	default:
		return false
	}
}

func (g *Game) mayDirect(actor *player.Player) bool {
	if actor == g.admin {
		return true
	}
	switch g.params.PlayMode {
	case PlayModeTeam, PlayModeCollaborative:
		return actor.Role.CanDirect()
	default:
		return true
	}
}

// storyOwner returns the player whose story actor plays into.
func (g *Game) storyOwner(actor *player.Player) (*player.Player, error) {
	switch g.params.PlayMode {
	case PlayModeIndividual:
		return actor, nil
	case PlayModeCollaborative:
		return uniqueHolder(g.table.ByRole(player.RoleDirector), "director", "this game")
	case PlayModeTeam:
		team := g.table.Team(actor.Team)
		if team == nil {
			return nil, apperrors.WithMetadata(apperrors.CodeMissingRoleHolder,
				fmt.Sprintf("Player %s is not on a team. A team lead is required for team games.", actor.Initials),
				map[string]string{"Role": string(player.RoleTeamLead)})
		}
		return uniqueHolder(team.Leads(), "team lead", "team '"+team.Name+"'")
	default:
		return nil, apperrors.New(apperrors.CodeUnimplementedProtocol, fmt.Sprintf("play mode %s is not supported", g.params.PlayMode))
	}
}

func uniqueHolder(holders []*player.Player, role, scope string) (*player.Player, error) {
	if len(holders) == 1 {
		return holders[0], nil
	}
	return nil, apperrors.WithMetadata(apperrors.CodeMissingRoleHolder,
		fmt.Sprintf("There must be exactly one %s in %s, found %d", role, scope, len(holders)),
		map[string]string{"Role": role, "Found": fmt.Sprint(len(holders))})
}

// storyOwners returns every player who owns a story under the play mode.
func (g *Game) storyOwners() []*player.Player {
	var owners []*player.Player
	seen := make(map[*player.Player]bool)
	for _, p := range g.table.Players() {
		owner, err := g.storyOwner(p)
		if err != nil || seen[owner] {
			continue
		}
		seen[owner] = true
		owners = append(owners, owner)
	}
	return owners
}

// lookupOr returns actor when ref is empty, otherwise the referenced player.
func (g *Game) lookupOr(actor *player.Player, ref string) (*player.Player, error) {
	if strings.TrimSpace(ref) == "" {
		if actor == g.admin {
			return nil, apperrors.New(apperrors.CodeInvalidPlayer, "Name a player, the administrator holds no cards")
		}
		return actor, nil
	}
	p := g.table.Lookup(ref)
	if p == nil {
		return nil, noSuchPlayer(ref)
	}
	return p, nil
}

func playerPayload(p *player.Player) PlayerPayload {
	return PlayerPayload{
		ID:       p.ID,
		Name:     p.Name,
		Initials: p.Initials,
		Number:   p.Number,
		Role:     string(p.Role),
		Team:     p.Team,
	}
}

func noSuchPlayer(ref string) error {
	return apperrors.WithMetadata(apperrors.CodeInvalidPlayer,
		fmt.Sprintf("No such player: %s", ref),
		map[string]string{"Player": ref})
}

func notStarted() error {
	return apperrors.New(apperrors.CodeGameNotStarted, "The game has not started. Add players and then start the game.")
}

func gameOver() error {
	return apperrors.New(apperrors.CodeInvalidCommand, "The game is over")
}
