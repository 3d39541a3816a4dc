package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/flowday/flowday/internal/models"
	"github.com/flowday/flowday/internal/notify"
)

func msg(id string, minute int, resp *string) models.ChatMessage {
	return models.ChatMessage{
		ID:        id,
		Message:   "question " + id,
		Response:  resp,
		CreatedAt: time.Date(2026, 1, 1, 10, minute, 0, 0, time.UTC),
	}
}

func str(s string) *string { return &s }

func TestBubblesSortedAndPaired(t *testing.T) {
	got := Bubbles([]models.ChatMessage{
		msg("b", 5, nil),
		msg("a", 1, str("hello")),
	})
	if len(got) != 4 {
		t.Fatalf("Expected 4 bubbles, got %d", len(got))
	}
	want := []string{"a-user", "a-assistant", "b-user", "b-assistant"}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("Position %d: expected %s, got %s", i, id, got[i].ID)
		}
	}
	if got[1].Text != "hello" || got[1].Pending {
		t.Errorf("Unexpected answered bubble %+v", got[1])
	}
	if !got[3].Pending {
		t.Error("Expected unanswered bubble to be pending")
	}
}

type fakeSource struct {
	msgs []models.ChatMessage
	err  error
}

func (f *fakeSource) ListMessages(ctx context.Context) ([]models.ChatMessage, error) {
	return f.msgs, f.err
}

func TestFeedNotifiesOncePerReply(t *testing.T) {
	src := &fakeSource{msgs: []models.ChatMessage{msg("a", 1, str("first"))}}
	q := notify.NewQueue(8)
	f := NewFeed(src, q, "Assistant")

	for i := 0; i < 3; i++ {
		if err := f.Refresh(context.Background()); err != nil {
			t.Fatalf("Refresh failed: %v", err)
		}
	}
	if n := q.Drain(); len(n) != 1 || n[0].Body != "first" {
		t.Fatalf("Expected one notice for first reply, got %v", n)
	}

	// A pending question produces no notice.
	src.msgs = append(src.msgs, msg("b", 2, nil))
	f.Refresh(context.Background())
	if n := q.Drain(); len(n) != 0 {
		t.Errorf("Expected no notice for pending reply, got %v", n)
	}

	src.msgs[1].Response = str("second")
	f.Refresh(context.Background())
	f.Refresh(context.Background())
	if n := q.Drain(); len(n) != 1 || n[0].Body != "second" {
		t.Errorf("Expected one notice for second reply, got %v", n)
	}
	if len(f.Bubbles()) != 4 {
		t.Errorf("Expected 4 bubbles, got %d", len(f.Bubbles()))
	}
}

func TestFeedRefreshError(t *testing.T) {
	boom := errors.New("boom")
	f := NewFeed(&fakeSource{err: boom}, nil, "")
	if err := f.Refresh(context.Background()); !errors.Is(err, boom) {
		t.Errorf("Expected boom, got %v", err)
	}
}
