package stub

import "errors"

// Sentinel errors for stub backend operations.
var (
	ErrNotFound        = errors.New("resource not found")
	ErrUnauthenticated = errors.New("login required")
	ErrInvalidInput    = errors.New("invalid input")
)
