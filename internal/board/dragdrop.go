package board

import (
	"github.com/flowday/flowday/internal/models"
)

// TargetKind describes what a drop target is.
type TargetKind int

const (
	KindNone TargetKind = iota
	KindColumn
	KindTask
)

// DropTarget is whatever the pointer is over when a card is released.
// Column and Task are optional metadata attached by the renderer.
type DropTarget struct {
	ID     string
	Kind   TargetKind
	Column Column
	Task   *models.Task
}

// ColumnTarget targets a column header or empty column area.
func ColumnTarget(c Column) DropTarget {
	return DropTarget{ID: string(c), Kind: KindColumn, Column: c}
}

// TaskTarget targets a card. The task is captured as rendered.
func TaskTarget(t models.Task) DropTarget {
	t = t.Clone()
	return DropTarget{ID: t.ID, Kind: KindTask, Task: &t}
}

// RawTarget carries only an identifier, as from the command line.
func RawTarget(id string) DropTarget {
	return DropTarget{ID: id}
}

// Outcome is how a drop ended.
type Outcome int

const (
	OutcomeMove Outcome = iota
	OutcomeUnchanged
	OutcomeExpiredNoop
	OutcomeAbort
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeMove:
		return "move"
	case OutcomeUnchanged:
		return "unchanged"
	case OutcomeExpiredNoop:
		return "expired-noop"
	case OutcomeAbort:
		return "abort"
	case OutcomeCancelled:
		return "cancelled"
	}
	return "unknown"
}

// Phase is the view state of one task in the drag lifecycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseDragging
	PhaseResolving
	PhaseCommitting
)

func (p Phase) String() string {
	switch p {
	case PhaseDragging:
		return "dragging"
	case PhaseResolving:
		return "resolving"
	case PhaseCommitting:
		return "committing"
	}
	return "idle"
}

// Resolve maps a drop target to the status it designates. The first
// matching rule wins:
//
//  1. column metadata
//  2. an id naming a column
//  3. a task target inherits that task's status
//  4. an id found by lookup
//
// The expired column resolves to OutcomeExpiredNoop; an unresolvable target
// to OutcomeAbort. Otherwise the outcome is OutcomeMove, which the caller
// downgrades to OutcomeUnchanged when the status is already current.
func Resolve(target DropTarget, lookup func(id string) (models.Task, bool)) (models.Status, Outcome) {
	if target.Kind == KindColumn && target.Column != "" {
		return columnStatus(target.Column)
	}
	if c, ok := ParseColumn(target.ID); ok {
		return columnStatus(c)
	}
	if target.Kind == KindTask && target.Task != nil {
		return target.Task.Status, OutcomeMove
	}
	if target.ID != "" && lookup != nil {
		if t, ok := lookup(target.ID); ok {
			return t.Status, OutcomeMove
		}
	}
	return "", OutcomeAbort
}

func columnStatus(c Column) (models.Status, Outcome) {
	s, ok := c.Status()
	if !ok {
		if c == ColumnExpired {
			return "", OutcomeExpiredNoop
		}
		return "", OutcomeAbort
	}
	return s, OutcomeMove
}

// gesture is the in-progress drag. At most one exists per board.
type gesture struct {
	active    string
	over      *DropTarget
	resolving bool
}

func (g *gesture) reset() {
	*g = gesture{}
}
