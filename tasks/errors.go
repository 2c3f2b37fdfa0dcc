package tasks

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation is returned when a required field is missing or malformed
	ErrValidation = errors.New("validation failed")

	// ErrDuplicateTaskID is returned when an update would give two nodes the same id
	ErrDuplicateTaskID = errors.New("duplicate task id")

	// ErrPathNotFound is returned when a path segment does not match any node
	ErrPathNotFound = errors.New("path not found")

	// ErrTaskNotFound is returned when no node in the tree has the requested id
	ErrTaskNotFound = errors.New("task not found")
)

// ValidationError names the field that failed validation
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// DuplicateTaskIDError names the colliding id
type DuplicateTaskIDError struct {
	ID string
}

func (e *DuplicateTaskIDError) Error() string {
	return fmt.Sprintf("duplicate task id %q: ids must be unique across the whole tree", e.ID)
}

func (e *DuplicateTaskIDError) Unwrap() error {
	return ErrDuplicateTaskID
}

// PathNotFoundError names the first unmatched segment and the path consumed before it
type PathNotFoundError struct {
	Segment  string
	Consumed []string
}

func (e *PathNotFoundError) Error() string {
	return fmt.Sprintf("path not found: no task %q under /%s", e.Segment, strings.Join(e.Consumed, "/"))
}

func (e *PathNotFoundError) Unwrap() error {
	return ErrPathNotFound
}

// TaskNotFoundError names the id that was looked up
type TaskNotFoundError struct {
	ID string
}

func (e *TaskNotFoundError) Error() string {
	return fmt.Sprintf("task not found: %q", e.ID)
}

func (e *TaskNotFoundError) Unwrap() error {
	return ErrTaskNotFound
}
