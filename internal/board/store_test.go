package board

import (
	"context"
	"sync"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/flowday/flowday/internal/models"
)

func TestStoreLoad(t *testing.T) {
	api := newFakeAPI(task("a", models.StatusTodo, nil), task("b", models.StatusDone, nil))
	s := NewStore(api, nil)

	if !s.Load(context.Background()) {
		t.Fatal("Expected load to be applied")
	}
	if s.Len() != 2 {
		t.Errorf("Expected 2 tasks, got %d", s.Len())
	}
	if s.Version() != 1 {
		t.Errorf("Expected version 1, got %d", s.Version())
	}
	if _, ok := s.Find("b"); !ok {
		t.Error("Expected to find task b")
	}
}

func TestStoreLoadFailureResets(t *testing.T) {
	logger, hook := test.NewNullLogger()
	api := newFakeAPI(task("a", models.StatusTodo, nil))
	s := NewStore(api, logger)
	s.Load(context.Background())

	api.listErr = errBackend
	if !s.Load(context.Background()) {
		t.Fatal("Expected failed load to be applied")
	}
	if s.Len() != 0 {
		t.Errorf("Expected empty collection after failure, got %d", s.Len())
	}
	if s.LastError() != errBackend {
		t.Errorf("Expected last error %v, got %v", errBackend, s.LastError())
	}

	entry := hook.LastEntry()
	if entry == nil || entry.Level != log.WarnLevel || entry.Message != "board.load.failed" {
		t.Errorf("Expected warn board.load.failed, got %+v", entry)
	}
}

func TestStoreSnapshotIsCopy(t *testing.T) {
	s := NewStore(newFakeAPI(), nil)
	s.ReplaceAll([]models.Task{task("a", models.StatusTodo, at(0))})

	snap := s.Snapshot()
	snap[0].Status = models.StatusDone
	*snap[0].DueDate = snap[0].DueDate.AddDate(1, 0, 0)

	got, _ := s.Find("a")
	if got.Status != models.StatusTodo || !got.DueDate.Equal(fixedNow) {
		t.Errorf("Snapshot aliased store state: %+v", got)
	}
}

func TestStoreSetStatus(t *testing.T) {
	s := NewStore(newFakeAPI(), nil)
	s.ReplaceAll([]models.Task{task("a", models.StatusTodo, nil)})

	prev, ok := s.SetStatus("a", models.StatusInProgress)
	if !ok || prev != models.StatusTodo {
		t.Errorf("Expected prev todo, got %q ok=%v", prev, ok)
	}
	if _, ok := s.SetStatus("missing", models.StatusDone); ok {
		t.Error("Expected SetStatus on missing task to fail")
	}
}

// gatedLister blocks each call until released, to interleave loads.
type gatedLister struct {
	mu      sync.Mutex
	calls   int
	started chan int
	gates   []chan []models.Task
}

func newGatedLister(n int) *gatedLister {
	g := &gatedLister{started: make(chan int, n)}
	for i := 0; i < n; i++ {
		g.gates = append(g.gates, make(chan []models.Task, 1))
	}
	return g
}

func (g *gatedLister) ListTasks(ctx context.Context) ([]models.Task, error) {
	g.mu.Lock()
	idx := g.calls
	g.calls++
	g.started <- idx
	g.mu.Unlock()
	return <-g.gates[idx], nil
}

func TestStoreDiscardsStaleLoad(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(log.DebugLevel)
	lister := newGatedLister(2)
	s := NewStore(lister, logger)

	first := make(chan bool, 1)
	go func() { first <- s.Load(context.Background()) }()
	<-lister.started

	second := make(chan bool, 1)
	go func() { second <- s.Load(context.Background()) }()
	<-lister.started

	if !s.Loading() {
		t.Error("Expected Loading while requests are in flight")
	}

	// The newer load lands first.
	lister.gates[1] <- []models.Task{task("new", models.StatusDone, nil)}
	if !<-second {
		t.Fatal("Expected newer load to be applied")
	}
	lister.gates[0] <- []models.Task{task("old", models.StatusTodo, nil)}
	if <-first {
		t.Fatal("Expected older load to be discarded")
	}

	if _, ok := s.Find("new"); !ok || s.Len() != 1 {
		t.Errorf("Expected collection from newer load, got %+v", s.Snapshot())
	}
	if s.Loading() {
		t.Error("Expected no load in flight")
	}

	var sawStale bool
	for _, e := range hook.AllEntries() {
		if e.Message == "board.load.stale" {
			sawStale = true
		}
	}
	if !sawStale {
		t.Error("Expected board.load.stale to be logged")
	}
}
