package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnauthorized matches any 401 response.
var ErrUnauthorized = errors.New("unauthorized")

// Error is returned for every response with status >= 400.
type Error struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *Error) Error() string {
	return fmt.Sprintf("API error (%d) %s %s: %s", e.StatusCode, e.Method, e.Path, e.Body)
}

// Is lets errors.Is(err, ErrUnauthorized) match 401 responses.
func (e *Error) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}
