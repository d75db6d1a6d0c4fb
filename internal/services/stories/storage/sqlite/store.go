// Package sqlite provides a SQLite-backed stories storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/louisbranch/stories/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/stories/internal/services/stories/storage"
	"github.com/louisbranch/stories/internal/services/stories/storage/sqlite/migrations"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Store persists games, journals and published stories in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite stories store and applies embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(ctx, sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

// CreateGame inserts one game record.
func (s *Store) CreateGame(ctx context.Context, game storage.GameRecord) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	gameID := strings.TrimSpace(game.ID)
	genre := strings.TrimSpace(game.Genre)
	if gameID == "" {
		return fmt.Errorf("game id is required")
	}
	if genre == "" {
		return fmt.Errorf("genre is required")
	}
	params := string(game.Parameters)
	if params == "" {
		params = "{}"
	}
	createdAt := game.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	updatedAt := game.UpdatedAt.UTC()
	if updatedAt.IsZero() {
		updatedAt = createdAt
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO games (id, genre, seed, parameters, finished, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		gameID,
		genre,
		game.Seed,
		params,
		boolToInt(game.Finished),
		toMillis(createdAt),
		toMillis(updatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("create game: %w", err)
	}
	return nil
}

// GetGame returns one game by id.
func (s *Store) GetGame(ctx context.Context, gameID string) (storage.GameRecord, error) {
	if err := s.ready(ctx); err != nil {
		return storage.GameRecord{}, err
	}
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return storage.GameRecord{}, fmt.Errorf("game id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, genre, seed, parameters, finished, created_at, updated_at
		   FROM games
		  WHERE id = ?`,
		gameID,
	)
	game, err := scanGame(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.GameRecord{}, storage.ErrNotFound
		}
		return storage.GameRecord{}, fmt.Errorf("get game: %w", err)
	}
	return game, nil
}

// ListGames returns one page of games ordered by id.
func (s *Store) ListGames(ctx context.Context, pageSize int, pageToken string) (storage.GamePage, error) {
	if err := s.ready(ctx); err != nil {
		return storage.GamePage{}, err
	}
	if pageSize <= 0 {
		return storage.GamePage{}, fmt.Errorf("page size must be greater than zero")
	}
	pageToken = strings.TrimSpace(pageToken)

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, genre, seed, parameters, finished, created_at, updated_at
		   FROM games
		  WHERE id > ?
		  ORDER BY id ASC
		  LIMIT ?`,
		pageToken,
		pageSize+1,
	)
	if err != nil {
		return storage.GamePage{}, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	page := storage.GamePage{Games: make([]storage.GameRecord, 0, pageSize)}
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return storage.GamePage{}, fmt.Errorf("list games: %w", err)
		}
		page.Games = append(page.Games, game)
	}
	if err := rows.Err(); err != nil {
		return storage.GamePage{}, fmt.Errorf("list games: %w", err)
	}
	if len(page.Games) > pageSize {
		page.NextPageToken = page.Games[pageSize-1].ID
		page.Games = page.Games[:pageSize]
	}
	return page, nil
}

// MarkFinished flags a game as over.
func (s *Store) MarkFinished(ctx context.Context, gameID string, at time.Time) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	result, err := s.sqlDB.ExecContext(ctx,
		`UPDATE games SET finished = 1, updated_at = ? WHERE id = ?`,
		toMillis(at), strings.TrimSpace(gameID))
	if err != nil {
		return fmt.Errorf("mark game finished: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark game finished: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// AppendJournal records one step. Sequence numbers are unique per game.
func (s *Store) AppendJournal(ctx context.Context, entry storage.JournalEntry) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(entry.GameID) == "" {
		return fmt.Errorf("game id is required")
	}
	if entry.Kind == "" {
		return fmt.Errorf("journal kind is required")
	}
	payload := string(entry.Payload)
	if payload == "" {
		payload = "{}"
	}
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("append journal: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO game_journal (game_id, seq, kind, actor, payload, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entry.GameID, entry.Seq, string(entry.Kind), entry.Actor, payload, toMillis(createdAt))
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		if isForeignKeyViolation(err) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("append journal: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE games SET updated_at = ? WHERE id = ?`, toMillis(createdAt), entry.GameID); err != nil {
		return fmt.Errorf("append journal: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("append journal: %w", err)
	}
	return nil
}

// ListJournal returns a game's journal in sequence order.
func (s *Store) ListJournal(ctx context.Context, gameID string) ([]storage.JournalEntry, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT game_id, seq, kind, actor, payload, created_at
		   FROM game_journal
		  WHERE game_id = ?
		  ORDER BY seq ASC`,
		strings.TrimSpace(gameID))
	if err != nil {
		return nil, fmt.Errorf("list journal: %w", err)
	}
	defer rows.Close()

	var entries []storage.JournalEntry
	for rows.Next() {
		var (
			entry     storage.JournalEntry
			kind      string
			payload   string
			createdAt int64
		)
		if err := rows.Scan(&entry.GameID, &entry.Seq, &kind, &entry.Actor, &payload, &createdAt); err != nil {
			return nil, fmt.Errorf("list journal: %w", err)
		}
		entry.Kind = storage.JournalKind(kind)
		entry.Payload = []byte(payload)
		entry.CreatedAt = fromMillis(createdAt)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list journal: %w", err)
	}
	return entries, nil
}

// PublishStory saves a story, replacing an earlier publication by the same owner.
func (s *Store) PublishStory(ctx context.Context, story storage.PublishedStory) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(story.GameID) == "" || strings.TrimSpace(story.Owner) == "" {
		return fmt.Errorf("game id and owner are required")
	}
	cards := string(story.Cards)
	if cards == "" {
		cards = "[]"
	}
	publishedAt := story.PublishedAt
	if publishedAt.IsZero() {
		publishedAt = time.Now()
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO published_stories (game_id, owner, text, cards, published_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (game_id, owner) DO UPDATE SET
		   text = excluded.text,
		   cards = excluded.cards,
		   published_at = excluded.published_at`,
		story.GameID, story.Owner, story.Text, cards, toMillis(publishedAt))
	if err != nil {
		if isForeignKeyViolation(err) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("publish story: %w", err)
	}
	return nil
}

// ListStories returns the published stories of a game ordered by owner.
func (s *Store) ListStories(ctx context.Context, gameID string) ([]storage.PublishedStory, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT game_id, owner, text, cards, published_at
		   FROM published_stories
		  WHERE game_id = ?
		  ORDER BY owner ASC`,
		strings.TrimSpace(gameID))
	if err != nil {
		return nil, fmt.Errorf("list stories: %w", err)
	}
	defer rows.Close()

	var stories []storage.PublishedStory
	for rows.Next() {
		var (
			story       storage.PublishedStory
			cards       string
			publishedAt int64
		)
		if err := rows.Scan(&story.GameID, &story.Owner, &story.Text, &cards, &publishedAt); err != nil {
			return nil, fmt.Errorf("list stories: %w", err)
		}
		story.Cards = []byte(cards)
		story.PublishedAt = fromMillis(publishedAt)
		stories = append(stories, story)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list stories: %w", err)
	}
	return stories, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGame(row rowScanner) (storage.GameRecord, error) {
	var (
		game      storage.GameRecord
		params    string
		finished  int
		createdAt int64
		updatedAt int64
	)
	if err := row.Scan(&game.ID, &game.Genre, &game.Seed, &params, &finished, &createdAt, &updatedAt); err != nil {
		return storage.GameRecord{}, err
	}
	game.Parameters = []byte(params)
	game.Finished = finished != 0
	game.CreatedAt = fromMillis(createdAt)
	game.UpdatedAt = fromMillis(updatedAt)
	return game, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

func isForeignKeyViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3lib.SQLITE_CONSTRAINT_FOREIGNKEY
	}
	return strings.Contains(strings.ToLower(err.Error()), "foreign key constraint failed")
}

var _ storage.Store = (*Store)(nil)
