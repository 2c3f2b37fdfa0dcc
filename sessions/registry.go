// Package sessions holds the bounded registry of per-session task trees.
package sessions

import (
	"fmt"
	"sync"

	"github.com/hashicorp/golang-lru/v2/simplelru"
	"github.com/xiaoyuanzhu-com/tasktree/log"
	"github.com/xiaoyuanzhu-com/tasktree/tasks"
)

// DefaultCapacity is used when no positive capacity is configured
const DefaultCapacity = 100

// EvictHandler is called with the id of a session dropped to make room
type EvictHandler func(sessionID string)

// Registry maps session ids to sessions and evicts the least recently used
// one when a new session would exceed capacity.
//
// GetOrCreate and Peek count as use; Has does not. The registry lock covers
// only bookkeeping, never tree operations, so sessions proceed independently.
type Registry struct {
	mu       sync.Mutex
	lru      *simplelru.LRU[string, *Session]
	capacity int
	onEvict  EvictHandler
}

// NewRegistry creates a registry holding at most capacity sessions
func NewRegistry(capacity int, onEvict EvictHandler) (*Registry, error) {
	r := &Registry{capacity: capacity, onEvict: onEvict}
	l, err := simplelru.NewLRU[string, *Session](capacity, r.evicted)
	if err != nil {
		return nil, fmt.Errorf("failed to create session registry: %w", err)
	}
	r.lru = l
	return r, nil
}

// evicted runs under r.mu from within lru.Add
func (r *Registry) evicted(sessionID string, s *Session) {
	log.Info().
		Str("sessionId", sessionID).
		Time("createdAt", s.CreatedAt).
		Msg("session evicted from registry")

	if r.onEvict != nil {
		r.onEvict(sessionID)
	}
}

// GetOrCreate returns the session for id, creating an empty one if absent,
// and marks it most recently used.
func (r *Registry) GetOrCreate(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.lru.Get(id); ok {
		return s
	}

	return r.insert(id, tasks.NewTree())
}

// Add creates a session for id around tree unless one already exists. It
// returns the live session and whether it was created; an existing session is
// marked most recently used and tree is discarded.
func (r *Registry) Add(id string, tree *tasks.Tree) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.lru.Get(id); ok {
		return s, false
	}
	return r.insert(id, tree), true
}

// insert runs under r.mu
func (r *Registry) insert(id string, tree *tasks.Tree) *Session {
	s := newSession(id, tree)
	r.lru.Add(id, s)
	log.Debug().Str("sessionId", id).Int("sessions", r.lru.Len()).Msg("session created")
	return s
}

// Peek returns the session for id if it exists and marks it most recently used
func (r *Registry) Peek(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.lru.Get(id)
}

// Has reports whether id is live without affecting recency
func (r *Registry) Has(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.lru.Contains(id)
}

// Snapshot returns a deep copy of the session's task list. It counts as a use.
func (r *Registry) Snapshot(id string) ([]*tasks.Node, bool) {
	s, ok := r.Peek(id)
	if !ok {
		return nil, false
	}
	return s.Snapshot(), true
}

// Len returns the number of live sessions
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.lru.Len()
}

// Capacity returns the configured maximum number of sessions
func (r *Registry) Capacity() int {
	return r.capacity
}

// Keys returns live session ids, least recently used first
func (r *Registry) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.lru.Keys()
}
