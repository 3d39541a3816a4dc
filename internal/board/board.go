// Package board keeps the local task collection in sync with the backend.
//
// The backend is the single source of truth. Every mutation is followed by a
// full reload, and drag-drop moves patch the local copy optimistically before
// the request goes out. Columns and pages are derived on each query.
package board

import (
	"context"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/flowday/flowday/internal/models"
	"github.com/flowday/flowday/internal/notify"
)

// API is the subset of the REST client the board needs.
type API interface {
	Lister
	CreateTask(ctx context.Context, in models.TaskInput) (*models.Task, error)
	UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (*models.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// Board wires the store, reconciler and drag gesture together.
type Board struct {
	api      API
	store    *Store
	rec      *Reconciler
	notifier notify.Notifier
	logger   log.FieldLogger
	now      func() time.Time

	mu         sync.Mutex
	drag       gesture
	committing map[string]int
}

// Option configures a Board.
type Option func(*Board)

func WithLogger(l log.FieldLogger) Option {
	return func(b *Board) { b.logger = l }
}

func WithNotifier(n notify.Notifier) Option {
	return func(b *Board) { b.notifier = n }
}

// WithClock overrides time.Now for derived columns.
func WithClock(now func() time.Time) Option {
	return func(b *Board) { b.now = now }
}

// New creates a board over api. The collection starts empty; call Load.
func New(api API, opts ...Option) *Board {
	b := &Board{
		api:        api,
		notifier:   notify.Discard{},
		logger:     log.StandardLogger(),
		now:        time.Now,
		committing: make(map[string]int),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.store = NewStore(api, b.logger)
	b.rec = NewReconciler(b.store, b.logger)
	return b
}

// Store exposes the underlying collection.
func (b *Board) Store() *Store { return b.store }

// Now returns the board's clock reading.
func (b *Board) Now() time.Time { return b.now() }

// Load fetches the collection. Failures are logged, never returned.
func (b *Board) Load(ctx context.Context) bool {
	return b.store.Load(ctx)
}

// Project derives the current view.
func (b *Board) Project(p *Pager) View {
	return Project(b.store.Snapshot(), p, b.now())
}

// Result describes the end of a drop or commit.
type Result struct {
	TaskID  string
	Outcome Outcome
	From    models.Status
	To      models.Status
	Err     error
}

// DragStart picks up a task.
func (b *Board) DragStart(taskID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.drag.active != "" {
		return ErrDragInProgress
	}
	if _, ok := b.store.Find(taskID); !ok {
		return fmt.Errorf("drag %s: %w", taskID, ErrTaskNotFound)
	}
	b.drag.active = taskID
	b.logger.WithField("task", taskID).Debug("board.drag.start")
	return nil
}

// DragOver records the target under the dragged card.
func (b *Board) DragOver(target DropTarget) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.drag.active == "" {
		return ErrNoActiveDrag
	}
	b.drag.over = &target
	return nil
}

// Dragging returns the carried task id.
func (b *Board) Dragging() (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.drag.active, b.drag.active != ""
}

// Hover returns the last DragOver target of the active gesture.
func (b *Board) Hover() (DropTarget, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.drag.over == nil {
		return DropTarget{}, false
	}
	return *b.drag.over, true
}

// DragCancel abandons the gesture without side effects.
func (b *Board) DragCancel() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.drag.active != "" {
		b.logger.WithField("task", b.drag.active).Debug("board.drag.cancel")
	}
	b.drag.reset()
}

// Phase reports the drag lifecycle state of a task.
func (b *Board) Phase(taskID string) Phase {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.drag.active == taskID {
		if b.drag.resolving {
			return PhaseResolving
		}
		return PhaseDragging
	}
	if b.committing[taskID] > 0 {
		return PhaseCommitting
	}
	return PhaseIdle
}

// Drop ends the gesture on target and applies the optimistic patch.
// A nil target cancels. The returned Commit is non-nil only for a real
// status change and must be Run to send the update and reconcile.
func (b *Board) Drop(target *DropTarget) (Result, *Commit) {
	b.mu.Lock()
	defer b.mu.Unlock()

	taskID := b.drag.active
	if taskID == "" {
		b.logger.Debug("board.drop.no_gesture")
		return Result{Outcome: OutcomeAbort, Err: ErrNoActiveDrag}, nil
	}
	res := Result{TaskID: taskID}
	entry := b.logger.WithField("task", taskID)

	if target == nil {
		b.drag.reset()
		entry.Debug("board.drop.cancelled")
		res.Outcome = OutcomeCancelled
		return res, nil
	}
	b.drag.resolving = true
	defer b.drag.reset()

	task, ok := b.store.Find(taskID)
	if !ok {
		entry.Warn("board.drop.task_missing")
		res.Outcome = OutcomeAbort
		res.Err = ErrTaskNotFound
		return res, nil
	}
	res.From = task.Status

	to, outcome := Resolve(*target, b.store.Find)
	entry = entry.WithField("target", target.ID)
	switch outcome {
	case OutcomeExpiredNoop:
		entry.Debug("board.drop.expired")
		res.Outcome = outcome
		return res, nil
	case OutcomeAbort:
		entry.Warn("board.drop.unresolved")
		res.Outcome = outcome
		res.Err = ErrUnresolvedTarget
		return res, nil
	}

	res.To = to
	if to == task.Status {
		res.Outcome = OutcomeUnchanged
		return res, nil
	}

	b.store.SetStatus(taskID, to)
	b.committing[taskID]++
	res.Outcome = OutcomeMove
	entry.WithFields(log.Fields{"from": res.From, "to": to}).Debug("board.drop.move")
	return res, &Commit{board: b, result: res}
}

// DragEnd is Drop followed by Commit.Run.
func (b *Board) DragEnd(ctx context.Context, target *DropTarget) Result {
	res, commit := b.Drop(target)
	if commit == nil {
		return res
	}
	return commit.Run(ctx)
}

// Commit is the network half of a drop.
type Commit struct {
	board  *Board
	result Result
	once   sync.Once
}

// Result is the drop result before the request is sent.
func (c *Commit) Result() Result { return c.result }

// Run sends the status update, then always awaits a full reload. A failed
// request is notified; the optimistic status stays until the reload lands.
// Run is a no-op after the first call.
func (c *Commit) Run(ctx context.Context) Result {
	c.once.Do(func() {
		b := c.board
		id := c.result.TaskID
		defer func() {
			b.mu.Lock()
			if b.committing[id]--; b.committing[id] <= 0 {
				delete(b.committing, id)
			}
			b.mu.Unlock()
		}()

		_, err := b.api.UpdateTask(ctx, id, models.StatusPatch(c.result.To))
		if err != nil {
			c.result.Err = err
			b.logger.WithError(err).WithField("task", id).Warn("board.commit.failed")
			b.notifier.Notify(notify.Error("Status not updated", err.Error()))
		} else {
			b.notifier.Notify(notify.Info("Status updated", string(c.result.To)))
		}
		b.rec.After(context.WithoutCancel(ctx), "move")
	})
	return c.result
}

// Create validates input, creates the task and reconciles.
func (b *Board) Create(ctx context.Context, in models.TaskInput) (*models.Task, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	task, err := b.api.CreateTask(ctx, in)
	if err != nil {
		b.fail("Task not created", err)
	} else {
		b.notifier.Notify(notify.Info("Task created", in.Title))
	}
	b.rec.After(context.WithoutCancel(ctx), "create")
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return task, nil
}

// Update applies patch to task id and reconciles.
func (b *Board) Update(ctx context.Context, id string, patch models.TaskPatch) (*models.Task, error) {
	if patch.Empty() {
		return nil, ErrEmptyPatch
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	task, err := b.api.UpdateTask(ctx, id, patch)
	if err != nil {
		b.fail("Task not updated", err)
	}
	b.rec.After(context.WithoutCancel(ctx), "update")
	if err != nil {
		return nil, fmt.Errorf("update task %s: %w", id, err)
	}
	return task, nil
}

// Delete removes task id and reconciles.
func (b *Board) Delete(ctx context.Context, id string) error {
	err := b.api.DeleteTask(ctx, id)
	if err != nil {
		b.fail("Task not deleted", err)
	} else {
		b.notifier.Notify(notify.Info("Task deleted", id))
	}
	b.rec.After(context.WithoutCancel(ctx), "delete")
	if err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	return nil
}

// Toggle flips a task between done and todo.
func (b *Board) Toggle(ctx context.Context, id string) (*models.Task, error) {
	task, ok := b.store.Find(id)
	if !ok {
		return nil, fmt.Errorf("toggle %s: %w", id, ErrTaskNotFound)
	}
	next := models.StatusDone
	if task.Status == models.StatusDone {
		next = models.StatusTodo
	}
	return b.Update(ctx, id, models.StatusPatch(next))
}

func (b *Board) fail(title string, err error) {
	b.logger.WithError(err).Warn("board.mutation.failed")
	b.notifier.Notify(notify.Error(title, err.Error()))
}
