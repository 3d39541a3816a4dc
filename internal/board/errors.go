package board

import "errors"

// Sentinel errors for board operations.
var (
	ErrTaskNotFound     = errors.New("task not found")
	ErrNoActiveDrag     = errors.New("no active drag")
	ErrDragInProgress   = errors.New("drag already in progress")
	ErrEmptyPatch       = errors.New("nothing to update")
	ErrUnresolvedTarget = errors.New("drop target does not resolve to a status")
	ErrUnknownFilter    = errors.New("unknown filter")
	ErrUnknownViewMode  = errors.New("unknown view mode")
)
