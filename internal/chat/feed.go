// Package chat turns the assistant message history into a conversation feed.
package chat

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/flowday/flowday/internal/models"
	"github.com/flowday/flowday/internal/notify"
)

// Role is who authored a bubble.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Bubble is one rendered chat line.
type Bubble struct {
	ID        string
	Role      Role
	Text      string
	Pending   bool
	CreatedAt time.Time
}

// Bubbles expands each record into a user and an assistant bubble, oldest first.
func Bubbles(msgs []models.ChatMessage) []Bubble {
	sorted := append([]models.ChatMessage(nil), msgs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	out := make([]Bubble, 0, 2*len(sorted))
	for _, m := range sorted {
		out = append(out, Bubble{
			ID:        m.ID + "-user",
			Role:      RoleUser,
			Text:      m.Message,
			CreatedAt: m.CreatedAt,
		})
		a := Bubble{
			ID:        m.ID + "-assistant",
			Role:      RoleAssistant,
			Pending:   m.Response == nil,
			CreatedAt: m.CreatedAt,
		}
		if m.Response != nil {
			a.Text = *m.Response
		}
		out = append(out, a)
	}
	return out
}

// Source lists the chat history.
type Source interface {
	ListMessages(ctx context.Context) ([]models.ChatMessage, error)
}

// Feed holds the latest bubbles and notifies once per new assistant reply.
type Feed struct {
	source   Source
	notifier notify.Notifier
	title    string

	mu           sync.Mutex
	bubbles      []Bubble
	lastNotified string
}

// NewFeed creates a feed. title heads reply notifications.
func NewFeed(source Source, notifier notify.Notifier, title string) *Feed {
	if notifier == nil {
		notifier = notify.Discard{}
	}
	if title == "" {
		title = "Assistant"
	}
	return &Feed{source: source, notifier: notifier, title: title}
}

// Refresh reloads the history. It has the signature of a poller.Func.
func (f *Feed) Refresh(ctx context.Context) error {
	msgs, err := f.source.ListMessages(ctx)
	if err != nil {
		return err
	}
	f.Apply(msgs)
	return nil
}

// Apply replaces the feed with msgs. If the newest bubble is an answered
// reply not yet notified, a notice is sent.
func (f *Feed) Apply(msgs []models.ChatMessage) {
	bubbles := Bubbles(msgs)

	f.mu.Lock()
	f.bubbles = bubbles
	var notice *notify.Notice
	if n := len(bubbles); n > 0 {
		last := bubbles[n-1]
		if last.Role == RoleAssistant && !last.Pending && last.ID != f.lastNotified {
			f.lastNotified = last.ID
			nt := notify.Info(f.title, last.Text)
			notice = &nt
		}
	}
	f.mu.Unlock()

	if notice != nil {
		f.notifier.Notify(*notice)
	}
}

// Bubbles returns a copy of the current feed.
func (f *Feed) Bubbles() []Bubble {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Bubble(nil), f.bubbles...)
}

// Clear empties the feed without touching the notification marker.
func (f *Feed) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bubbles = nil
}
