package workinfo

import (
	"errors"
	"fmt"
)

var (
	// ErrWorkNotFound is returned when no live entry has the requested work id
	ErrWorkNotFound = errors.New("work info not found")

	// ErrSessionNotResolved marks a save whose session id did not resolve to a
	// live session. It is reported as a warning; the save itself succeeds.
	ErrSessionNotResolved = errors.New("session not resolved")
)

// WorkNotFoundError names the work id that was looked up
type WorkNotFoundError struct {
	WorkID string
}

func (e *WorkNotFoundError) Error() string {
	return fmt.Sprintf("work info not found: %q", e.WorkID)
}

func (e *WorkNotFoundError) Unwrap() error {
	return ErrWorkNotFound
}

// SessionNotResolvedError names the session id that had no live task tree.
// Overwrite is set when an existing entry was updated and kept its previous snapshot.
type SessionNotResolvedError struct {
	SessionID string
	Overwrite bool
}

func (e *SessionNotResolvedError) Error() string {
	if e.Overwrite {
		return fmt.Sprintf("session %q not found: work info updated, previous task snapshot kept", e.SessionID)
	}
	return fmt.Sprintf("session %q not found: work info saved without a task snapshot", e.SessionID)
}

func (e *SessionNotResolvedError) Unwrap() error {
	return ErrSessionNotResolved
}
