package app

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	apperrors "github.com/louisbranch/stories/internal/platform/errors"
	"github.com/louisbranch/stories/internal/services/stories/content"
	"github.com/louisbranch/stories/internal/services/stories/engine"
	"github.com/louisbranch/stories/internal/services/stories/notify"
	"github.com/louisbranch/stories/internal/services/stories/storage"
	storysqlite "github.com/louisbranch/stories/internal/services/stories/storage/sqlite"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []notify.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event notify.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func newTestService(t *testing.T, store storage.Store, publisher notify.Publisher) *Service {
	t.Helper()
	loader, err := content.Default()
	if err != nil {
		t.Fatalf("load content: %v", err)
	}
	seed := int64(0)
	svc, err := NewService(Options{
		Installation: "test",
		Content:      loader,
		Store:        store,
		Publisher:    publisher,
		Now:          func() time.Time { return time.Date(2026, time.March, 1, 12, 30, 0, 0, time.UTC) },
		NewSeed: func() (int64, error) {
			seed++
			return seed, nil
		},
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func openTestStore(t *testing.T, path string) *storysqlite.Store {
	t.Helper()
	store, err := storysqlite.Open(context.Background(), path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return store
}

func run(t *testing.T, svc *Service, gameID, line, actor string) engine.Result {
	t.Helper()
	res, err := svc.Execute(context.Background(), gameID, line, actor)
	if err != nil {
		t.Fatalf("%q: %v", line, err)
	}
	return res
}

func TestNewServiceRequiresContent(t *testing.T) {
	if _, err := NewService(Options{Installation: "test"}); err == nil {
		t.Fatal("expected content error")
	}
}

func TestCreateGameAndPlay(t *testing.T) {
	publisher := &recordingPublisher{}
	svc := newTestService(t, nil, publisher)
	ctx := context.Background()

	gameID, err := svc.CreateGame(ctx, "Noir", engine.DefaultParameters())
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	if gameID == "" {
		t.Fatal("expected game id")
	}
	al, err := svc.AddPlayer(ctx, gameID, "Alice Smith", "AL", "")
	if err != nil {
		t.Fatalf("add player: %v", err)
	}
	if al.Number != 1 || al.ID == "" {
		t.Fatalf("unexpected player %+v", al)
	}
	if _, err := svc.AddPlayer(ctx, gameID, "Bob", "BO", "player"); err != nil {
		t.Fatalf("add player: %v", err)
	}

	if res := run(t, svc, gameID, "start", ""); res.Status != engine.StatusNeedsNextAction {
		t.Fatalf("start: %s %s", res.Status, res.Message)
	}
	if res := run(t, svc, gameID, "draw", "AL"); res.Status != engine.StatusNeedsPlayerChoice {
		t.Fatalf("draw: %s %s", res.Status, res.Message)
	}
	if res := run(t, svc, gameID, "done", "BO"); res.Kind != apperrors.CodeTurnPreconditionViolated {
		t.Fatalf("done out of turn: %s %s", res.Kind, res.Message)
	}

	snap, err := svc.Status(ctx, gameID, "AL")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if snap.Genre != "noir" || !snap.Started || len(snap.Players) != 1 || snap.Players[0].HandSize != engine.DefaultDealSize+1 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}

	want := []string{notify.EventGameCreated, notify.EventPlayerJoined, notify.EventPlayerJoined,
		notify.EventCommand, notify.EventCommand, notify.EventCommand}
	if got := publisher.types(); !reflect.DeepEqual(got, want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
}

func TestUnknownGameAndGenre(t *testing.T) {
	svc := newTestService(t, nil, nil)
	ctx := context.Background()

	_, err := svc.Execute(ctx, "nope", "status", "")
	if apperrors.CodeOf(err) != apperrors.CodeGameNotFound {
		t.Fatalf("expected game not found, got %v", err)
	}
	if _, err := svc.CreateGame(ctx, "western", engine.DefaultParameters()); apperrors.CodeOf(err) != apperrors.CodeUnknownGenre {
		t.Fatalf("expected unknown genre, got %v", err)
	}
	bad := engine.DefaultParameters()
	bad.MaxCardsInHand = 99
	if _, err := svc.CreateGame(ctx, "horror", bad); err == nil {
		t.Fatal("expected parameter validation error")
	}
}

func TestRestoreReplaysJournal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stories.db")
	store := openTestStore(t, path)
	svc := newTestService(t, store, nil)
	ctx := context.Background()

	gameID, err := svc.CreateGame(ctx, "horror", engine.DefaultParameters())
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	if _, err := svc.AddPlayer(ctx, gameID, "Alice", "AL", ""); err != nil {
		t.Fatalf("add player: %v", err)
	}
	run(t, svc, gameID, "add player Bob BO", "")
	run(t, svc, gameID, "start", "")
	run(t, svc, gameID, "draw", "AL")
	run(t, svc, gameID, "play last", "AL")
	run(t, svc, gameID, "discard #1", "AL")

	wantSnap, err := svc.Status(ctx, gameID, "")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	wantStory, err := svc.ReadStory(ctx, gameID, "AL", true)
	if err != nil {
		t.Fatalf("read story: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	reopened := openTestStore(t, path)
	t.Cleanup(func() { _ = reopened.Close() })
	restored := newTestService(t, reopened, nil)

	gotSnap, err := restored.Status(ctx, gameID, "")
	if err != nil {
		t.Fatalf("restored status: %v", err)
	}
	if !reflect.DeepEqual(gotSnap, wantSnap) {
		t.Fatalf("restored snapshot differs:\n got %+v\nwant %+v", gotSnap, wantSnap)
	}
	gotStory, err := restored.ReadStory(ctx, gameID, "AL", true)
	if err != nil {
		t.Fatalf("restored read story: %v", err)
	}
	if gotStory != wantStory {
		t.Fatalf("restored story = %q, want %q", gotStory, wantStory)
	}

	if _, err := restored.Execute(ctx, gameID, "status", "BO"); err != nil {
		t.Fatalf("execute on restored game: %v", err)
	}
	entries, err := reopened.ListJournal(ctx, gameID)
	if err != nil {
		t.Fatalf("list journal: %v", err)
	}
	if last := entries[len(entries)-1]; last.Seq != len(entries) || last.Actor != "BO" {
		t.Fatalf("unexpected last journal entry %+v of %d", last, len(entries))
	}
}

type flakyJournal struct {
	storage.Store
	fail bool
}

func (f *flakyJournal) AppendJournal(ctx context.Context, entry storage.JournalEntry) error {
	if f.fail {
		return errors.New("disk full")
	}
	return f.Store.AppendJournal(ctx, entry)
}

func TestJournalFailureDiscardsUnrecordedChange(t *testing.T) {
	store := openTestStore(t, filepath.Join(t.TempDir(), "stories.db"))
	t.Cleanup(func() { _ = store.Close() })
	flaky := &flakyJournal{Store: store}
	svc := newTestService(t, flaky, nil)
	ctx := context.Background()

	gameID, err := svc.CreateGame(ctx, "horror", engine.DefaultParameters())
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	if _, err := svc.AddPlayer(ctx, gameID, "Alice", "AL", ""); err != nil {
		t.Fatalf("add player: %v", err)
	}
	if _, err := svc.AddPlayer(ctx, gameID, "Bob", "BO", ""); err != nil {
		t.Fatalf("add player: %v", err)
	}

	flaky.fail = true
	if _, err := svc.AddPlayer(ctx, gameID, "Cyd", "CY", ""); err == nil {
		t.Fatal("expected journal error on join")
	}
	flaky.fail = false
	snap, err := svc.Status(ctx, gameID, "")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if len(snap.Players) != 2 {
		t.Fatalf("expected the unjournaled join to be dropped, got %d players", len(snap.Players))
	}

	run(t, svc, gameID, "start", "")
	flaky.fail = true
	if _, err := svc.Execute(ctx, gameID, "draw", "AL"); err == nil {
		t.Fatal("expected journal error on command")
	}
	flaky.fail = false
	snap, err = svc.Status(ctx, gameID, "AL")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if got := snap.Players[0].HandSize; got != engine.DefaultDealSize {
		t.Fatalf("expected the unjournaled draw to be dropped, hand size %d", got)
	}
	if res := run(t, svc, gameID, "draw", "AL"); res.Status != engine.StatusNeedsPlayerChoice {
		t.Fatalf("draw after recovery: %s %s", res.Status, res.Message)
	}

	entries, err := store.ListJournal(ctx, gameID)
	if err != nil {
		t.Fatalf("list journal: %v", err)
	}
	for i, entry := range entries {
		if entry.Seq != i+1 {
			t.Fatalf("journal entry %d has seq %d", i, entry.Seq)
		}
	}
	if len(entries) != 4 {
		t.Fatalf("expected 4 journal entries, got %d", len(entries))
	}
}

func TestPublishAndFinishArePersisted(t *testing.T) {
	store := openTestStore(t, filepath.Join(t.TempDir(), "stories.db"))
	t.Cleanup(func() { _ = store.Close() })
	publisher := &recordingPublisher{}
	svc := newTestService(t, store, publisher)
	ctx := context.Background()

	params := engine.DefaultParameters()
	params.BypassErrorChecks = true
	gameID, err := svc.CreateGame(ctx, "romance", params)
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	if _, err := svc.AddPlayer(ctx, gameID, "Alice", "AL", ""); err != nil {
		t.Fatalf("add player: %v", err)
	}
	run(t, svc, gameID, "start", "")
	if res := run(t, svc, gameID, "publish", "AL"); !res.OK() {
		t.Fatalf("publish: %s", res.Message)
	}
	stories, err := svc.PublishedStories(ctx, gameID)
	if err != nil {
		t.Fatalf("published stories: %v", err)
	}
	if len(stories) != 1 || stories[0].Owner != "AL" {
		t.Fatalf("unexpected stories %+v", stories)
	}

	if res := run(t, svc, gameID, "end game", "AL"); res.Status != engine.StatusTerminate {
		t.Fatalf("end game: %s %s", res.Status, res.Message)
	}
	record, err := store.GetGame(ctx, gameID)
	if err != nil {
		t.Fatalf("get game: %v", err)
	}
	if !record.Finished {
		t.Fatal("expected finished game record")
	}
	types := publisher.types()
	if types[len(types)-2] != notify.EventGameFinished {
		t.Fatalf("events = %v", types)
	}
}

func TestListGames(t *testing.T) {
	svc := newTestService(t, nil, nil)
	ctx := context.Background()
	if _, err := svc.CreateGame(ctx, "noir", engine.DefaultParameters()); err != nil {
		t.Fatalf("create game: %v", err)
	}
	page, err := svc.ListGames(ctx, 10, "")
	if err != nil {
		t.Fatalf("list games: %v", err)
	}
	if len(page.Games) != 1 || page.Games[0].Genre != "noir" {
		t.Fatalf("unexpected page %+v", page)
	}
}

func TestConcurrentCommandsOnOneGame(t *testing.T) {
	svc := newTestService(t, nil, nil)
	ctx := context.Background()
	gameID, err := svc.CreateGame(ctx, "noir", engine.DefaultParameters())
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	for _, initials := range []string{"AL", "BO", "CY"} {
		if _, err := svc.AddPlayer(ctx, gameID, initials, initials, ""); err != nil {
			t.Fatalf("add player: %v", err)
		}
	}
	run(t, svc, gameID, "start", "")

	var wg sync.WaitGroup
	errs := make(chan error, 30)
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			line := "status"
			if i%3 == 0 {
				line = "list hand"
			}
			if _, err := svc.Execute(ctx, gameID, line, "BO"); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent execute: %v", err)
	}
}

func TestCanceledContext(t *testing.T) {
	svc := newTestService(t, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := svc.Status(ctx, "g", ""); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled, got %v", err)
	}
}
