// Package notify publishes game events to subscribers outside the process.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/stories/internal/platform/logging"
	"github.com/louisbranch/stories/internal/platform/timeouts"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// SubjectPrefix is the root of every published subject.
const SubjectPrefix = "stories"

// Event types.
const (
	EventGameCreated    = "game_created"
	EventPlayerJoined   = "player_joined"
	EventCommand        = "command"
	EventStoryPublished = "story_published"
	EventGameFinished   = "game_finished"
)

// Event is the JSON body published for one game change.
type Event struct {
	GameID     string          `json:"game_id"`
	Type       string          `json:"type"`
	Actor      string          `json:"actor,omitempty"`
	Command    string          `json:"command,omitempty"`
	Status     string          `json:"status,omitempty"`
	Message    string          `json:"message,omitempty"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// Subject returns the subject an event is published on.
func (e Event) Subject() string {
	return Subject(e.GameID, e.Type)
}

// Subject builds "stories.<game>.<event>". NATS tokens cannot contain dots
// or whitespace, so those are replaced.
func Subject(gameID, eventType string) string {
	return SubjectPrefix + "." + token(gameID) + "." + token(eventType)
}

func token(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "_"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', ' ', '\t', '\n', '*', '>':
			return '_'
		}
		return r
	}, value)
}

// Publisher sends game events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Nop discards every event.
type Nop struct{}

// Publish implements Publisher.
func (Nop) Publish(context.Context, Event) error { return nil }

// Close implements Publisher.
func (Nop) Close() error { return nil }

// conn is the subset of *nats.Conn the publisher needs.
type conn interface {
	Publish(subject string, data []byte) error
	FlushTimeout(timeout time.Duration) error
	Close()
}

// NATS publishes events to a NATS server.
type NATS struct {
	conn   conn
	logger *zap.Logger
}

// Connect dials url and returns a publisher over the connection.
func Connect(url, name string, logger *zap.Logger) (*NATS, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, fmt.Errorf("nats url is required")
	}
	logger = logging.OrNop(logger)
	opts := []nats.Option{
		nats.Name(name),
		nats.Timeout(10 * time.Second),
		nats.ReconnectWait(2 * time.Second),
		nats.MaxReconnects(5),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
	}
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return newNATS(nc, logger), nil
}

func newNATS(c conn, logger *zap.Logger) *NATS {
	return &NATS{conn: c, logger: logging.OrNop(logger)}
}

// Publish implements Publisher.
func (p *NATS) Publish(ctx context.Context, event Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p == nil || p.conn == nil {
		return fmt.Errorf("publisher is not configured")
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	subject := event.Subject()
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	p.logger.Debug("event published", zap.String("subject", subject))
	return nil
}

// Close flushes pending events and closes the connection.
func (p *NATS) Close() error {
	if p == nil || p.conn == nil {
		return nil
	}
	err := p.conn.FlushTimeout(timeouts.PublishFlush)
	p.conn.Close()
	if err != nil {
		return fmt.Errorf("flush nats: %w", err)
	}
	return nil
}

var (
	_ Publisher = Nop{}
	_ Publisher = (*NATS)(nil)
)
