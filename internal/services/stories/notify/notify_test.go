package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

type fakeConn struct {
	subjects []string
	bodies   [][]byte
	err      error
	flushed  bool
	closed   bool
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.subjects = append(f.subjects, subject)
	f.bodies = append(f.bodies, data)
	return nil
}

func (f *fakeConn) FlushTimeout(time.Duration) error {
	f.flushed = true
	return nil
}

func (f *fakeConn) Close() { f.closed = true }

func TestSubject(t *testing.T) {
	tests := []struct {
		game, event, want string
	}{
		{"inst_20260222_1640_12", EventCommand, "stories.inst_20260222_1640_12.command"},
		{"a.b c", EventGameFinished, "stories.a_b_c.game_finished"},
		{"", "", "stories._._"},
	}
	for _, tc := range tests {
		if got := Subject(tc.game, tc.event); got != tc.want {
			t.Fatalf("Subject(%q, %q) = %q, want %q", tc.game, tc.event, got, tc.want)
		}
	}
}

func TestNATSPublishEncodesEvent(t *testing.T) {
	conn := &fakeConn{}
	pub := newNATS(conn, nil)
	at := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
	err := pub.Publish(context.Background(), Event{
		GameID:     "g1",
		Type:       EventCommand,
		Actor:      "AL",
		Command:    "draw",
		Status:     "needs_player_choice",
		OccurredAt: at,
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(conn.subjects) != 1 || conn.subjects[0] != "stories.g1.command" {
		t.Fatalf("subjects = %v", conn.subjects)
	}
	var got Event
	if err := json.Unmarshal(conn.bodies[0], &got); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if got.Actor != "AL" || got.Command != "draw" || !got.OccurredAt.Equal(at) {
		t.Fatalf("unexpected event %+v", got)
	}
}

func TestNATSPublishErrors(t *testing.T) {
	conn := &fakeConn{err: errors.New("boom")}
	pub := newNATS(conn, nil)
	if err := pub.Publish(context.Background(), Event{GameID: "g1", Type: EventCommand}); err == nil {
		t.Fatal("expected publish error")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := newNATS(&fakeConn{}, nil).Publish(ctx, Event{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled, got %v", err)
	}

	var nilPub *NATS
	if err := nilPub.Publish(context.Background(), Event{}); err == nil {
		t.Fatal("expected error from nil publisher")
	}
}

func TestNATSCloseFlushes(t *testing.T) {
	conn := &fakeConn{}
	if err := newNATS(conn, nil).Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !conn.flushed || !conn.closed {
		t.Fatalf("flushed=%v closed=%v", conn.flushed, conn.closed)
	}
}

func TestConnectRequiresURL(t *testing.T) {
	if _, err := Connect(" ", "stories", nil); err == nil {
		t.Fatal("expected url error")
	}
}

func TestNop(t *testing.T) {
	var pub Publisher = Nop{}
	if err := pub.Publish(context.Background(), Event{}); err != nil {
		t.Fatalf("nop publish: %v", err)
	}
	if err := pub.Close(); err != nil {
		t.Fatalf("nop close: %v", err)
	}
}
