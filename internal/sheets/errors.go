package sheets

import (
	"errors"
	"fmt"
)

var (
	ErrConflict = errors.New("version conflict")
	ErrNotFound = errors.New("row not found")
	ErrExists   = errors.New("row already exists")
)

// ParseError reports a cell that could not be coerced to its column type.
// It is never fatal: the raw value stays on the row.
type ParseError struct {
	Table  string
	Column string
	Raw    string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s.%s: cannot parse %q: %v", e.Table, e.Column, e.Raw, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ConflictError is returned when the version presented on write does not
// match the persisted one.
type ConflictError struct {
	Table    string
	ID       string
	Expected string
	Actual   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s/%s: version conflict (have %q, stored %q)", e.Table, e.ID, e.Expected, e.Actual)
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

type NotFoundError struct {
	Table string
	ID    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s/%s: row not found", e.Table, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

type ExistsError struct {
	Table string
	ID    string
}

func (e *ExistsError) Error() string {
	return fmt.Sprintf("%s/%s: row already exists", e.Table, e.ID)
}

func (e *ExistsError) Is(target error) bool { return target == ErrExists }
