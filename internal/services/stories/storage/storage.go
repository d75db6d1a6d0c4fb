// Package storage defines persistence contracts for stories games.
package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates a requested record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates a uniqueness-constrained record already exists.
	ErrAlreadyExists = errors.New("record already exists")
)

// GameRecord stores what is needed to rebuild a game: the deck genre, the
// seed every shuffle derives from, and the parameters it was created with.
type GameRecord struct {
	ID         string
	Genre      string
	Seed       int64
	Parameters []byte
	Finished   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// GamePage stores one page of game records.
type GamePage struct {
	Games         []GameRecord
	NextPageToken string
}

// JournalKind distinguishes journal entries.
type JournalKind string

const (
	// JournalJoin records a player joining through the façade.
	JournalJoin JournalKind = "join"
	// JournalCommand records an executed command line.
	JournalCommand JournalKind = "command"
)

// JournalEntry is one replayable step of a game. Payload is JSON owned by
// the caller.
type JournalEntry struct {
	GameID    string
	Seq       int
	Kind      JournalKind
	Actor     string
	Payload   []byte
	CreatedAt time.Time
}

// PublishedStory is a story made public at the end of play.
type PublishedStory struct {
	GameID      string
	Owner       string
	Text        string
	Cards       []byte
	PublishedAt time.Time
}

// GameStore persists games and their command journals.
type GameStore interface {
	CreateGame(ctx context.Context, game GameRecord) error
	GetGame(ctx context.Context, gameID string) (GameRecord, error)
	ListGames(ctx context.Context, pageSize int, pageToken string) (GamePage, error)
	MarkFinished(ctx context.Context, gameID string, at time.Time) error
	AppendJournal(ctx context.Context, entry JournalEntry) error
	ListJournal(ctx context.Context, gameID string) ([]JournalEntry, error)
}

// StoryStore persists published stories.
type StoryStore interface {
	PublishStory(ctx context.Context, story PublishedStory) error
	ListStories(ctx context.Context, gameID string) ([]PublishedStory, error)
}

// Store is the full persistence contract.
type Store interface {
	GameStore
	StoryStore
	Close() error
}
