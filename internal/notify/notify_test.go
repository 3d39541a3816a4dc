package notify

import (
	"bytes"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func TestQueueDropsWhenFull(t *testing.T) {
	q := NewQueue(2)
	q.Notify(Info("one", ""))
	q.Notify(Info("two", ""))
	q.Notify(Info("three", ""))

	got := q.Drain()
	if len(got) != 2 {
		t.Fatalf("Expected 2 notices, got %d", len(got))
	}
	if got[0].Title != "one" || got[1].Title != "two" {
		t.Errorf("Unexpected order %v", got)
	}
	if len(q.Drain()) != 0 {
		t.Error("Expected queue to be empty after drain")
	}
}

func TestBellRespectsPermission(t *testing.T) {
	var buf bytes.Buffer
	b := &Bell{Out: &buf}
	b.Notify(Error("Update failed", "status unchanged"))
	if buf.Len() != 0 {
		t.Errorf("Disabled bell wrote %q", buf.String())
	}

	b.Enabled = true
	b.Notify(Error("Update failed", "status unchanged"))
	if buf.String() != "\aUpdate failed: status unchanged\n" {
		t.Errorf("Unexpected bell output %q", buf.String())
	}
}

func TestLogAndMulti(t *testing.T) {
	logger, hook := test.NewNullLogger()
	q := NewQueue(4)
	m := Multi{Log{Logger: logger}, q, nil}

	m.Notify(Error("Delete failed", "boom"))

	if len(q.Drain()) != 1 {
		t.Error("Expected queue to receive the notice")
	}
	entry := hook.LastEntry()
	if entry == nil || entry.Level != log.WarnLevel || entry.Data["title"] != "Delete failed" {
		t.Errorf("Unexpected log entry %+v", entry)
	}
}
