// Package notify is the fire-and-forget user notification side channel.
// Nothing in Flowday depends on a notice being delivered.
package notify

import (
	"fmt"
	"io"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Level classifies a notice.
type Level string

const (
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

// Notice is a short, transient message for the user.
type Notice struct {
	Level Level
	Title string
	Body  string
}

func (n Notice) String() string {
	if n.Body == "" {
		return n.Title
	}
	return n.Title + ": " + n.Body
}

// Notifier delivers notices without blocking the caller.
type Notifier interface {
	Notify(Notice)
}

// Info builds an informational notice.
func Info(title, body string) Notice {
	return Notice{Level: LevelInfo, Title: title, Body: body}
}

// Error builds an error notice.
func Error(title, body string) Notice {
	return Notice{Level: LevelError, Title: title, Body: body}
}

// Discard drops every notice.
type Discard struct{}

func (Discard) Notify(Notice) {}

// Log writes notices to a logger.
type Log struct {
	Logger log.FieldLogger
}

func (l Log) Notify(n Notice) {
	entry := l.Logger.WithFields(log.Fields{"title": n.Title, "body": n.Body})
	if n.Level == LevelError {
		entry.Warn("notify.notice")
		return
	}
	entry.Info("notify.notice")
}

// Bell rings the terminal bell and prints the notice, but only when enabled.
// Enabled plays the role of a granted notification permission.
type Bell struct {
	Out     io.Writer
	Enabled bool
	mu      sync.Mutex
}

func (b *Bell) Notify(n Notice) {
	if !b.Enabled || b.Out == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	fmt.Fprintf(b.Out, "\a%s\n", n)
}

// Queue buffers notices for a consumer such as the TUI message bar.
// When the buffer is full new notices are dropped.
type Queue struct {
	ch chan Notice
}

// NewQueue creates a queue holding up to size notices.
func NewQueue(size int) *Queue {
	if size < 1 {
		size = 1
	}
	return &Queue{ch: make(chan Notice, size)}
}

func (q *Queue) Notify(n Notice) {
	select {
	case q.ch <- n:
	default:
	}
}

// C exposes the receive side.
func (q *Queue) C() <-chan Notice {
	return q.ch
}

// Drain returns every buffered notice without blocking.
func (q *Queue) Drain() []Notice {
	var out []Notice
	for {
		select {
		case n := <-q.ch:
			out = append(out, n)
		default:
			return out
		}
	}
}

// Multi fans a notice out to several notifiers.
type Multi []Notifier

func (m Multi) Notify(n Notice) {
	for _, nt := range m {
		if nt != nil {
			nt.Notify(n)
		}
	}
}
