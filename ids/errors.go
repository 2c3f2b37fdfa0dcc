package ids

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTaskID is returned when a task id violates the length or charset rule
	ErrInvalidTaskID = errors.New("invalid task id")

	// ErrInvalidWorkID is returned when a work id is not an 8-digit number
	ErrInvalidWorkID = errors.New("invalid work id")

	// ErrIDSpaceExhausted is returned when no free work id was found within the retry budget
	ErrIDSpaceExhausted = errors.New("work id space exhausted")
)

// InvalidTaskIDError carries the offending task id
type InvalidTaskIDError struct {
	ID     string
	Reason string
}

func (e *InvalidTaskIDError) Error() string {
	return fmt.Sprintf("invalid task id %q: %s", e.ID, e.Reason)
}

func (e *InvalidTaskIDError) Unwrap() error {
	return ErrInvalidTaskID
}

// InvalidWorkIDError carries the offending work id
type InvalidWorkIDError struct {
	ID string
}

func (e *InvalidWorkIDError) Error() string {
	return fmt.Sprintf("invalid work id %q: must be an 8-digit number", e.ID)
}

func (e *InvalidWorkIDError) Unwrap() error {
	return ErrInvalidWorkID
}
