package models

import "errors"

// Sentinel errors for task validation.
var (
	ErrTitleRequired   = errors.New("title required")
	ErrInvalidStatus   = errors.New("invalid status")
	ErrInvalidPriority = errors.New("invalid priority")
	ErrInvalidCategory = errors.New("invalid category")
)
