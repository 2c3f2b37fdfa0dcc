// Package ids generates and validates the two identifier families used by the
// task store: task ids (short, path-safe strings) and work ids (8-digit numbers).
package ids

import (
	"math/rand/v2"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	// MaxTaskIDLength is the maximum number of characters in a task id
	MaxTaskIDLength = 20

	// generated task ids use the first 8 hex chars of a random UUID
	generatedTaskIDLength = 8

	minWorkID = 10000000
	maxWorkID = 99999999

	// workIDAttempts bounds the collision retry loop in GenerateWorkID
	workIDAttempts = 100
)

// excludedTaskIDChars are the characters a task id may never contain
const excludedTaskIDChars = `/\:*?"<>| `

// GenerateTaskID returns a random id that satisfies ValidateTaskID.
// It does not check uniqueness; callers retry on collision.
func GenerateTaskID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:generatedTaskIDLength]
}

// ValidateTaskID checks the length (1-20 characters) and charset of a task id
func ValidateTaskID(id string) error {
	n := utf8.RuneCountInString(id)
	if n == 0 {
		return &InvalidTaskIDError{ID: id, Reason: "must not be empty"}
	}
	if n > MaxTaskIDLength {
		return &InvalidTaskIDError{ID: id, Reason: "must be at most 20 characters"}
	}
	if i := strings.IndexAny(id, excludedTaskIDChars); i >= 0 {
		return &InvalidTaskIDError{
			ID:     id,
			Reason: "must not contain " + strconv.Quote(id[i:i+1]),
		}
	}
	return nil
}

// GenerateWorkID returns a fresh 8-digit work id for which taken reports false.
// taken is consulted once per candidate; ErrIDSpaceExhausted is returned after
// a bounded number of collisions.
func GenerateWorkID(taken func(id string) bool) (string, error) {
	for range workIDAttempts {
		id := strconv.Itoa(minWorkID + rand.IntN(maxWorkID-minWorkID+1))
		if taken == nil || !taken(id) {
			return id, nil
		}
	}
	return "", ErrIDSpaceExhausted
}

// ValidateWorkID checks that id is an 8-digit number in the work id range
func ValidateWorkID(id string) error {
	if len(id) != 8 {
		return &InvalidWorkIDError{ID: id}
	}
	for i := 0; i < len(id); i++ {
		if id[i] < '0' || id[i] > '9' {
			return &InvalidWorkIDError{ID: id}
		}
	}
	if id[0] == '0' {
		return &InvalidWorkIDError{ID: id}
	}
	return nil
}
