package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/louisbranch/stories/internal/services/stories/storage"
)

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(context.Background(), ""); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestCreateGetGameRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	now := time.Date(2026, time.February, 22, 16, 40, 0, 0, time.UTC)
	input := storage.GameRecord{
		ID:         "inst_20260222_1640_12",
		Genre:      "noir",
		Seed:       -9001,
		Parameters: []byte(`{"story_length":5}`),
		CreatedAt:  now,
	}
	if err := store.CreateGame(ctx, input); err != nil {
		t.Fatalf("create game: %v", err)
	}

	got, err := store.GetGame(ctx, input.ID)
	if err != nil {
		t.Fatalf("get game: %v", err)
	}
	if got.Genre != "noir" || got.Seed != -9001 || string(got.Parameters) != `{"story_length":5}` {
		t.Fatalf("unexpected game %+v", got)
	}
	if !got.CreatedAt.Equal(now) || !got.UpdatedAt.Equal(now) {
		t.Fatalf("timestamps = %v/%v, want %v", got.CreatedAt, got.UpdatedAt, now)
	}

	if err := store.CreateGame(ctx, input); !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("expected already exists, got %v", err)
	}
	if _, err := store.GetGame(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListGamesPages(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	for _, id := range []string{"g3", "g1", "g2"} {
		if err := store.CreateGame(ctx, storage.GameRecord{ID: id, Genre: "horror"}); err != nil {
			t.Fatalf("create game %s: %v", id, err)
		}
	}
	page, err := store.ListGames(ctx, 2, "")
	if err != nil {
		t.Fatalf("list games: %v", err)
	}
	if len(page.Games) != 2 || page.Games[0].ID != "g1" || page.NextPageToken != "g2" {
		t.Fatalf("unexpected first page %+v", page)
	}
	page, err = store.ListGames(ctx, 2, page.NextPageToken)
	if err != nil {
		t.Fatalf("list games: %v", err)
	}
	if len(page.Games) != 1 || page.Games[0].ID != "g3" || page.NextPageToken != "" {
		t.Fatalf("unexpected second page %+v", page)
	}
}

func TestJournalOrderingAndUniqueness(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	if err := store.CreateGame(ctx, storage.GameRecord{ID: "g1", Genre: "horror"}); err != nil {
		t.Fatalf("create game: %v", err)
	}
	entries := []storage.JournalEntry{
		{GameID: "g1", Seq: 2, Kind: storage.JournalCommand, Actor: "AL", Payload: []byte(`{"line":"draw"}`)},
		{GameID: "g1", Seq: 1, Kind: storage.JournalJoin, Payload: []byte(`{"name":"Alice Smith","initials":"AL"}`)},
	}
	for _, entry := range entries {
		if err := store.AppendJournal(ctx, entry); err != nil {
			t.Fatalf("append journal: %v", err)
		}
	}
	if err := store.AppendJournal(ctx, entries[0]); !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("expected already exists, got %v", err)
	}
	if err := store.AppendJournal(ctx, storage.JournalEntry{GameID: "nope", Seq: 1, Kind: storage.JournalCommand}); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found for unknown game, got %v", err)
	}

	got, err := store.ListJournal(ctx, "g1")
	if err != nil {
		t.Fatalf("list journal: %v", err)
	}
	if len(got) != 2 || got[0].Seq != 1 || got[0].Kind != storage.JournalJoin || got[1].Actor != "AL" {
		t.Fatalf("unexpected journal %+v", got)
	}
	if string(got[0].Payload) != `{"name":"Alice Smith","initials":"AL"}` {
		t.Fatalf("unexpected payload %s", got[0].Payload)
	}
}

func TestMarkFinished(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	if err := store.CreateGame(ctx, storage.GameRecord{ID: "g1", Genre: "horror"}); err != nil {
		t.Fatalf("create game: %v", err)
	}
	if err := store.MarkFinished(ctx, "g1", time.Now()); err != nil {
		t.Fatalf("mark finished: %v", err)
	}
	got, err := store.GetGame(ctx, "g1")
	if err != nil || !got.Finished {
		t.Fatalf("expected finished game, got %+v %v", got, err)
	}
	if err := store.MarkFinished(ctx, "missing", time.Now()); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPublishStoryReplacesPrevious(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	if err := store.CreateGame(ctx, storage.GameRecord{ID: "g1", Genre: "romance"}); err != nil {
		t.Fatalf("create game: %v", err)
	}
	for _, text := range []string{"draft\n", "final\n"} {
		if err := store.PublishStory(ctx, storage.PublishedStory{GameID: "g1", Owner: "AL", Text: text}); err != nil {
			t.Fatalf("publish story: %v", err)
		}
	}
	stories, err := store.ListStories(ctx, "g1")
	if err != nil {
		t.Fatalf("list stories: %v", err)
	}
	if len(stories) != 1 || stories[0].Text != "final\n" || string(stories[0].Cards) != "[]" {
		t.Fatalf("unexpected stories %+v", stories)
	}
}

func TestCanceledContext(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.GetGame(ctx, "g1"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
	var nilStore *Store
	if err := nilStore.CreateGame(context.Background(), storage.GameRecord{ID: "g"}); err == nil {
		t.Fatal("expected error from nil store")
	}
}

func openTempStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "stories.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}
