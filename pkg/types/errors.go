package types

import "fmt"

// indexError attaches the failing record position to a snapshot validation error.
type indexError struct {
	kind  error
	what  string
	index int
	cause error
}

func (e *indexError) Error() string {
	return fmt.Sprintf("%v: %s %d: %v", e.kind, e.what, e.index, e.cause)
}

// Unwrap exposes both the error kind and its cause to errors.Is.
func (e *indexError) Unwrap() []error {
	return []error{e.kind, e.cause}
}

func wrapIndex(kind error, what string, index int, cause error) error {
	return &indexError{kind: kind, what: what, index: index, cause: cause}
}
