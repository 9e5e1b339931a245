package service

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnauthenticated is returned when no caller identity was resolved.
// Every operation in this package requires one.
var ErrUnauthenticated = errors.New("authentication required")

// ValidationError is fatal to a submission. It carries the validator's
// error list verbatim so callers can render specifics.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return "invalid request: " + strings.Join(e.Errors, "; ")
}

func validationErr(msgs ...string) *ValidationError {
	return &ValidationError{Errors: msgs}
}

// ConflictError signals a duplicate member or contact. The message is
// user-facing.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// StoreError wraps any other failure from the data store. The wrapped error
// is logged; callers surface a generic message.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("storage failure during %s", e.Op)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
