// Package app hosts many stories games behind one service and serves them
// over HTTP and gRPC health.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	apperrors "github.com/louisbranch/stories/internal/platform/errors"
	"github.com/louisbranch/stories/internal/platform/id"
	"github.com/louisbranch/stories/internal/platform/logging"
	"github.com/louisbranch/stories/internal/platform/otel"
	"github.com/louisbranch/stories/internal/random"
	"github.com/louisbranch/stories/internal/services/stories/content"
	"github.com/louisbranch/stories/internal/services/stories/engine"
	"github.com/louisbranch/stories/internal/services/stories/gameid"
	"github.com/louisbranch/stories/internal/services/stories/notify"
	"github.com/louisbranch/stories/internal/services/stories/storage"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	tracerName = "github.com/louisbranch/stories/internal/services/stories/app"

	// createAttempts bounds retries when a generated id is already stored.
	createAttempts = 5
)

// Options configures a Service. Store and Publisher are optional.
type Options struct {
	Installation string
	Content      *content.Loader
	Store        storage.Store
	Publisher    notify.Publisher
	Logger       *zap.Logger
	Now          func() time.Time
	NewSeed      func() (int64, error)
	NewID        func() (string, error)
}

// Service owns the live games of one installation. Commands against one game
// run one at a time; different games proceed independently.
type Service struct {
	mu    sync.RWMutex
	games map[string]*session

	ids       *gameid.Generator
	content   *content.Loader
	store     storage.Store
	publisher notify.Publisher
	logger    *zap.Logger
	tracer    trace.Tracer
	now       func() time.Time
	newSeed   func() (int64, error)
	newID     func() (string, error)
}

type session struct {
	mu      sync.Mutex
	game    *engine.Game
	seq     int
	evicted bool
}

type joinEntry struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Initials string `json:"initials"`
	Role     string `json:"role"`
}

type commandEntry struct {
	Line string `json:"line"`
}

// NewService builds a service from opts.
func NewService(opts Options) (*Service, error) {
	if opts.Content == nil {
		return nil, errors.New("content loader is required")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewSeed == nil {
		opts.NewSeed = random.NewSeed
	}
	if opts.NewID == nil {
		opts.NewID = id.NewID
	}
	if opts.Publisher == nil {
		opts.Publisher = notify.Nop{}
	}
	seed, err := opts.NewSeed()
	if err != nil {
		return nil, fmt.Errorf("seed game ids: %w", err)
	}
	ids, err := gameid.New(opts.Installation, seed, gameid.WithClock(opts.Now))
	if err != nil {
		return nil, err
	}
	return &Service{
		games:     make(map[string]*session),
		ids:       ids,
		content:   opts.Content,
		store:     opts.Store,
		publisher: opts.Publisher,
		logger:    logging.OrNop(opts.Logger).Named("stories"),
		tracer:    otel.Tracer(tracerName),
		now:       opts.Now,
		newSeed:   opts.NewSeed,
		newID:     opts.NewID,
	}, nil
}

// Genres lists the genres games can be created with.
func (s *Service) Genres() ([]string, error) {
	return s.content.Genres()
}

// CreateGame builds a deck for genre and opens a new game.
func (s *Service) CreateGame(ctx context.Context, genre string, params engine.Parameters) (gameID string, err error) {
	ctx, span := s.tracer.Start(ctx, "stories.CreateGame", trace.WithAttributes(attribute.String("stories.genre", genre)))
	defer func() { endSpan(span, err) }()

	params = params.Normalize()
	if err := params.Validate(); err != nil {
		return "", err
	}
	seed, err := s.newSeed()
	if err != nil {
		return "", fmt.Errorf("seed game: %w", err)
	}

	for attempt := 1; ; attempt++ {
		if gameID, err = s.ids.Next(); err != nil {
			return "", err
		}
		game, buildErr := s.build(gameID, genre, params, seed)
		if buildErr != nil {
			return "", buildErr
		}
		persistErr := s.persistGame(ctx, game)
		if errors.Is(persistErr, storage.ErrAlreadyExists) && attempt < createAttempts {
			continue
		}
		if persistErr != nil {
			return "", fmt.Errorf("create game: %w", persistErr)
		}

		s.mu.Lock()
		s.games[gameID] = &session{game: game}
		s.mu.Unlock()
		break
	}

	span.SetAttributes(attribute.String("stories.game_id", gameID))
	s.logger.Info("game created", zap.String("game_id", gameID), zap.String("genre", genre))
	s.publish(ctx, notify.Event{GameID: gameID, Type: notify.EventGameCreated, Message: genre})
	return gameID, nil
}

// AddPlayer seats a player in a game and deals their opening hand.
func (s *Service) AddPlayer(ctx context.Context, gameID, name, initials, role string) (out engine.PlayerPayload, err error) {
	ctx, span := s.tracer.Start(ctx, "stories.AddPlayer", trace.WithAttributes(attribute.String("stories.game_id", gameID)))
	defer func() { endSpan(span, err) }()

	sess, err := s.lockSession(ctx, gameID)
	if err != nil {
		return engine.PlayerPayload{}, err
	}
	defer sess.mu.Unlock()

	out, err = sess.game.AddPlayer(name, initials, role)
	if err != nil {
		return engine.PlayerPayload{}, err
	}
	payload, err := json.Marshal(joinEntry{ID: out.ID, Name: out.Name, Initials: out.Initials, Role: out.Role})
	if err != nil {
		return engine.PlayerPayload{}, fmt.Errorf("encode join: %w", err)
	}
	if err := s.journal(ctx, sess, storage.JournalJoin, "", payload); err != nil {
		s.evict(gameID, sess, err)
		return engine.PlayerPayload{}, err
	}
	s.publish(ctx, notify.Event{GameID: gameID, Type: notify.EventPlayerJoined, Actor: out.Initials})
	return out, nil
}

// Execute runs a command line for actor in a game. Rule violations come
// back as Error results; the error return is reserved for lookup and
// persistence failures.
func (s *Service) Execute(ctx context.Context, gameID, line, actor string) (res engine.Result, err error) {
	ctx, span := s.tracer.Start(ctx, "stories.Execute", trace.WithAttributes(
		attribute.String("stories.game_id", gameID),
		attribute.String("stories.actor", actor),
	))
	defer func() { endSpan(span, err) }()

	sess, err := s.lockSession(ctx, gameID)
	if err != nil {
		return engine.Result{}, err
	}
	defer sess.mu.Unlock()

	wasFinished := sess.game.Finished()
	res = sess.game.Execute(line, actor)
	span.SetAttributes(attribute.String("stories.status", string(res.Status)))

	payload, err := json.Marshal(commandEntry{Line: line})
	if err != nil {
		return engine.Result{}, fmt.Errorf("encode command: %w", err)
	}
	if err := s.journal(ctx, sess, storage.JournalCommand, actor, payload); err != nil {
		s.evict(gameID, sess, err)
		return engine.Result{}, err
	}
	if story, ok := res.Payload.(engine.StoryPayload); ok && story.Published {
		if err := s.saveStory(ctx, gameID, story); err != nil {
			return engine.Result{}, err
		}
	}
	if !wasFinished && sess.game.Finished() {
		if err := s.finish(ctx, gameID); err != nil {
			return engine.Result{}, err
		}
	}

	event := notify.Event{
		GameID:  gameID,
		Type:    notify.EventCommand,
		Actor:   actor,
		Command: line,
		Status:  string(res.Status),
		Message: res.Message,
	}
	if res.Payload != nil {
		if data, err := json.Marshal(res.Payload); err == nil {
			event.Payload = data
		}
	}
	s.publish(ctx, event)
	return res, nil
}

// Status reports a snapshot of a game, or of one player when ref is set.
func (s *Service) Status(ctx context.Context, gameID, ref string) (engine.Snapshot, error) {
	sess, err := s.lockSession(ctx, gameID)
	if err != nil {
		return engine.Snapshot{}, err
	}
	defer sess.mu.Unlock()
	return sess.game.Status(ref)
}

// ReadStory renders the story ref contributes to.
func (s *Service) ReadStory(ctx context.Context, gameID, ref string, numbered bool) (string, error) {
	sess, err := s.lockSession(ctx, gameID)
	if err != nil {
		return "", err
	}
	defer sess.mu.Unlock()
	return sess.game.ReadStory(ref, numbered)
}

// PublishedStories lists stories saved by the publish command.
func (s *Service) PublishedStories(ctx context.Context, gameID string) ([]storage.PublishedStory, error) {
	if s.store == nil {
		return nil, nil
	}
	if _, err := s.session(ctx, gameID); err != nil {
		return nil, err
	}
	return s.store.ListStories(ctx, gameID)
}

// ListGames returns stored games one page at a time.
func (s *Service) ListGames(ctx context.Context, pageSize int, pageToken string) (storage.GamePage, error) {
	if s.store == nil {
		return s.listLive(pageSize), nil
	}
	return s.store.ListGames(ctx, pageSize, pageToken)
}

func (s *Service) listLive(pageSize int) storage.GamePage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	page := storage.GamePage{}
	for gameID, sess := range s.games {
		if pageSize > 0 && len(page.Games) == pageSize {
			break
		}
		page.Games = append(page.Games, storage.GameRecord{ID: gameID, Genre: sess.game.Genre(), Seed: sess.game.Seed()})
	}
	return page
}

func (s *Service) build(gameID, genre string, params engine.Parameters, seed int64) (*engine.Game, error) {
	cards, err := s.content.Build(genre, params.CharacterAlias, random.New(seed))
	if err != nil {
		return nil, err
	}
	return engine.New(engine.Config{
		ID:         gameID,
		Genre:      strings.ToLower(strings.TrimSpace(genre)),
		Cards:      cards,
		Parameters: params,
		Seed:       seed,
		Logger:     s.logger,
		NewID:      s.newID,
	})
}

// session returns a live game, rebuilding it from storage when needed.
func (s *Service) session(ctx context.Context, gameID string) (*session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	gameID = strings.TrimSpace(gameID)
	s.mu.RLock()
	sess, ok := s.games[gameID]
	s.mu.RUnlock()
	if ok {
		return sess, nil
	}
	if s.store == nil || gameID == "" {
		return nil, gameNotFound(gameID)
	}

	restored, err := s.restore(ctx, gameID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.games[gameID]; ok {
		return existing, nil
	}
	s.games[gameID] = restored
	s.ids.Reserve(gameID)
	return restored, nil
}

// lockSession returns the game's session with its lock held. A session
// evicted while the caller waited is skipped for the restored one.
func (s *Service) lockSession(ctx context.Context, gameID string) (*session, error) {
	for {
		sess, err := s.session(ctx, gameID)
		if err != nil {
			return nil, err
		}
		sess.mu.Lock()
		if !sess.evicted {
			return sess, nil
		}
		sess.mu.Unlock()
	}
}

// restore replays a stored game's journal on a freshly built deck.
func (s *Service) restore(ctx context.Context, gameID string) (*session, error) {
	record, err := s.store.GetGame(ctx, gameID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, gameNotFound(gameID)
	}
	if err != nil {
		return nil, fmt.Errorf("load game: %w", err)
	}
	params := engine.DefaultParameters()
	if len(record.Parameters) > 0 {
		if err := json.Unmarshal(record.Parameters, &params); err != nil {
			return nil, fmt.Errorf("decode parameters: %w", err)
		}
	}
	game, err := s.build(record.ID, record.Genre, params, record.Seed)
	if err != nil {
		return nil, err
	}
	entries, err := s.store.ListJournal(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("load journal: %w", err)
	}

	sess := &session{game: game}
	for _, entry := range entries {
		switch entry.Kind {
		case storage.JournalJoin:
			var join joinEntry
			if err := json.Unmarshal(entry.Payload, &join); err != nil {
				return nil, fmt.Errorf("decode journal %d: %w", entry.Seq, err)
			}
			if _, err := game.Join(engine.Seat{ID: join.ID, Name: join.Name, Initials: join.Initials, Role: join.Role}); err != nil {
				return nil, fmt.Errorf("replay journal %d: %w", entry.Seq, err)
			}
		case storage.JournalCommand:
			var cmd commandEntry
			if err := json.Unmarshal(entry.Payload, &cmd); err != nil {
				return nil, fmt.Errorf("decode journal %d: %w", entry.Seq, err)
			}
			game.Execute(cmd.Line, entry.Actor)
		default:
			return nil, fmt.Errorf("replay journal %d: unknown kind %q", entry.Seq, entry.Kind)
		}
		sess.seq = entry.Seq
	}
	s.logger.Info("game restored", zap.String("game_id", gameID), zap.Int("entries", len(entries)))
	return sess, nil
}

func (s *Service) persistGame(ctx context.Context, game *engine.Game) error {
	if s.store == nil {
		return nil
	}
	params, err := json.Marshal(game.Parameters())
	if err != nil {
		return fmt.Errorf("encode parameters: %w", err)
	}
	now := s.now()
	return s.store.CreateGame(ctx, storage.GameRecord{
		ID:         game.ID(),
		Genre:      game.Genre(),
		Seed:       game.Seed(),
		Parameters: params,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
}

func (s *Service) journal(ctx context.Context, sess *session, kind storage.JournalKind, actor string, payload []byte) error {
	next := sess.seq + 1
	if s.store != nil {
		err := s.store.AppendJournal(ctx, storage.JournalEntry{
			GameID:    sess.game.ID(),
			Seq:       next,
			Kind:      kind,
			Actor:     actor,
			Payload:   payload,
			CreatedAt: s.now(),
		})
		if err != nil {
			return fmt.Errorf("journal %s: %w", kind, err)
		}
	}
	sess.seq = next
	return nil
}

// evict drops a game whose in-memory state ran ahead of its journal. The
// next access replays the journal, so the unrecorded change is discarded.
func (s *Service) evict(gameID string, sess *session, cause error) {
	sess.evicted = true
	gameID = strings.TrimSpace(gameID)
	s.mu.Lock()
	if s.games[gameID] == sess {
		delete(s.games, gameID)
	}
	s.mu.Unlock()
	s.logger.Warn("game evicted after journal failure", zap.String("game_id", gameID), zap.Error(cause))
}

func (s *Service) saveStory(ctx context.Context, gameID string, story engine.StoryPayload) error {
	if s.store == nil {
		return nil
	}
	cards, err := json.Marshal(story.Cards)
	if err != nil {
		return fmt.Errorf("encode story cards: %w", err)
	}
	err = s.store.PublishStory(ctx, storage.PublishedStory{
		GameID:      gameID,
		Owner:       story.Owner,
		Text:        story.Text,
		Cards:       cards,
		PublishedAt: s.now(),
	})
	if err != nil {
		return fmt.Errorf("save story: %w", err)
	}
	s.publish(ctx, notify.Event{GameID: gameID, Type: notify.EventStoryPublished, Actor: story.Owner})
	return nil
}

func (s *Service) finish(ctx context.Context, gameID string) error {
	if s.store != nil {
		if err := s.store.MarkFinished(ctx, gameID, s.now()); err != nil {
			return fmt.Errorf("finish game: %w", err)
		}
	}
	s.publish(ctx, notify.Event{GameID: gameID, Type: notify.EventGameFinished})
	return nil
}

// publish is best effort; a lost event never fails a command.
func (s *Service) publish(ctx context.Context, event notify.Event) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = s.now().UTC()
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("publish event",
			zap.String("game_id", event.GameID),
			zap.String("type", event.Type),
			zap.Error(err))
	}
}

func gameNotFound(gameID string) error {
	return apperrors.WithMetadata(apperrors.CodeGameNotFound,
		fmt.Sprintf("No such game: %s", gameID),
		map[string]string{"GameID": gameID})
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
	}
	span.End()
}
