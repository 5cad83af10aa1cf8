package remote

import (
	"errors"
	"fmt"
)

var (
	ErrNetwork  = errors.New("network error")
	ErrNotFound = errors.New("not found")
)

// StatusError is returned when the backing API answers with a non-2xx status.
// It unwraps to ErrNotFound for get-by-id calls and ErrNetwork otherwise.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	kind       error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s %s returned status %d", e.kind, e.Method, e.Path, e.StatusCode)
}

func (e *StatusError) Unwrap() error {
	return e.kind
}
