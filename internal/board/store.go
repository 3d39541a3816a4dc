package board

import (
	"context"
	"sync"
	"sync/atomic"

	log "github.com/sirupsen/logrus"

	"github.com/flowday/flowday/internal/models"
)

// Lister fetches the complete task collection from the source of truth.
type Lister interface {
	ListTasks(ctx context.Context) ([]models.Task, error)
}

// Store holds the canonical in-memory task collection.
//
// Every load takes a ticket when it is issued. A load response is applied only
// when its ticket is newer than the last applied one, so a slow reload can
// never overwrite the result of a reload issued after it.
type Store struct {
	lister Lister
	logger log.FieldLogger

	issued atomic.Uint64

	mu       sync.RWMutex
	tasks    []models.Task
	applied  uint64
	version  uint64
	inflight int
	lastErr  error
}

// NewStore creates an empty store backed by lister.
func NewStore(lister Lister, logger log.FieldLogger) *Store {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Store{
		lister: lister,
		logger: logger,
	}
}

// Load replaces the collection with a fresh fetch. On failure the collection
// is reset to empty and the error is only logged. It reports whether the
// response was applied (false when a newer load already landed).
func (s *Store) Load(ctx context.Context) bool {
	ticket := s.issued.Add(1)

	s.mu.Lock()
	s.inflight++
	s.mu.Unlock()

	tasks, err := s.lister.ListTasks(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--

	if ticket < s.applied {
		s.logger.WithFields(log.Fields{
			"ticket":  ticket,
			"applied": s.applied,
		}).Debug("board.load.stale")
		return false
	}
	s.applied = ticket
	s.lastErr = err

	if err != nil {
		s.logger.WithError(err).WithField("ticket", ticket).Warn("board.load.failed")
		s.tasks = nil
		s.version++
		return true
	}

	s.tasks = cloneTasks(tasks)
	s.version++
	s.logger.WithFields(log.Fields{
		"ticket": ticket,
		"count":  len(tasks),
	}).Debug("board.load.applied")
	return true
}

// ReplaceAll swaps the whole collection.
func (s *Store) ReplaceAll(tasks []models.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = cloneTasks(tasks)
	s.version++
}

// SetStatus patches one task's status in place. It returns the previous
// status and false if the task is not in the collection.
func (s *Store) SetStatus(id string, status models.Status) (models.Status, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			prev := s.tasks[i].Status
			s.tasks[i].Status = status
			s.version++
			return prev, true
		}
	}
	return "", false
}

// Snapshot returns a copy of the collection.
func (s *Store) Snapshot() []models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneTasks(s.tasks)
}

// Find returns a copy of the task with the given id.
func (s *Store) Find(id string) (models.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tasks {
		if t.ID == id {
			return t.Clone(), true
		}
	}
	return models.Task{}, false
}

// Len returns the number of tasks held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

// Version increments on every change to the collection.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Loading reports whether a load is in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inflight > 0
}

// LastError returns the error of the last applied load, if any.
func (s *Store) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

func cloneTasks(tasks []models.Task) []models.Task {
	if tasks == nil {
		return nil
	}
	out := make([]models.Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}
