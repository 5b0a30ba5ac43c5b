package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrCycle      = errors.New("would create a cycle")
)

// ValidationError reports a missing or malformed field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NotFoundError reports a task or parent id absent from the current map.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// CycleError reports a re-parent that would make a task its own ancestor.
type CycleError struct {
	ChildID  string
	ParentID string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cannot place %s under %s: %s", e.ChildID, e.ParentID, ErrCycle)
}

func (e *CycleError) Is(target error) bool { return target == ErrCycle }
