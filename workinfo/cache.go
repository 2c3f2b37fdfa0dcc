// Package workinfo keeps a bounded, least-recently-used set of saved work
// summaries, each optionally carrying a frozen copy of a session's task tree.
package workinfo

import (
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/hashicorp/golang-lru/v2/simplelru"
	"github.com/xiaoyuanzhu-com/tasktree/ids"
	"github.com/xiaoyuanzhu-com/tasktree/log"
	"github.com/xiaoyuanzhu-com/tasktree/tasks"
)

const (
	// DefaultCapacity is used when no positive capacity is configured
	DefaultCapacity = 10

	// MaxDescriptionLength bounds the short label of a work info
	MaxDescriptionLength = 200

	// TimestampLayout formats WorkInfo.Timestamp
	TimestampLayout = "2006-01-02 15:04:05"
)

// WorkInfo is a saved work summary
type WorkInfo struct {
	WorkID        string        `json:"workId"`
	Timestamp     string        `json:"timestamp"`
	Description   string        `json:"description"`
	Summary       string        `json:"summary"`
	SessionID     string        `json:"sessionId,omitempty"`
	TasksSnapshot []*tasks.Node `json:"tasksSnapshot,omitempty"`
}

// Summary is the listing view of a WorkInfo
type Summary struct {
	WorkID      string `json:"workId"`
	Timestamp   string `json:"timestamp"`
	Description string `json:"description"`
}

// SaveResult describes the outcome of Save. Warning is non-nil when the
// session id did not resolve and no snapshot was taken.
type SaveResult struct {
	WorkID      string `json:"workId"`
	Timestamp   string `json:"timestamp"`
	Overwritten bool   `json:"overwritten"`
	Warning     error  `json:"-"`
}

// SnapshotSource resolves a session id to a copy of its task tree
type SnapshotSource interface {
	Snapshot(sessionID string) ([]*tasks.Node, bool)
}

// EvictHandler is called with the work id of an entry dropped to make room
type EvictHandler func(workID string)

// Cache stores work infos keyed by work id with at most one entry per
// non-empty session id.
type Cache struct {
	mu        sync.Mutex
	lru       *simplelru.LRU[string, *WorkInfo]
	bySession map[string]string // sessionID -> workID
	capacity  int

	sessions SnapshotSource
	onEvict  EvictHandler
	now      func() time.Time
}

// Option configures a Cache
type Option func(*Cache)

// WithEvictHandler registers a callback for LRU evictions
func WithEvictHandler(fn EvictHandler) Option {
	return func(c *Cache) { c.onEvict = fn }
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// NewCache creates a cache holding at most capacity entries. sessions may be
// nil, in which case no snapshots are taken.
func NewCache(capacity int, sessions SnapshotSource, opts ...Option) (*Cache, error) {
	c := &Cache{
		bySession: make(map[string]string),
		capacity:  capacity,
		sessions:  sessions,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	l, err := simplelru.NewLRU[string, *WorkInfo](capacity, c.evicted)
	if err != nil {
		return nil, fmt.Errorf("failed to create work info cache: %w", err)
	}
	c.lru = l
	return c, nil
}

// evicted runs under c.mu from within lru.Add
func (c *Cache) evicted(workID string, w *WorkInfo) {
	if w.SessionID != "" && c.bySession[w.SessionID] == workID {
		delete(c.bySession, w.SessionID)
	}

	log.Info().
		Str("workId", workID).
		Str("sessionId", w.SessionID).
		Msg("work info evicted from cache")

	if c.onEvict != nil {
		c.onEvict(workID)
	}
}

// Save stores a work summary. When a live entry already belongs to sessionID
// it is overwritten in place and keeps its work id; otherwise a new entry is
// created, evicting the least recently used one if the cache is full.
//
// If sessionID is set but has no live task tree, the save succeeds without a
// snapshot and SaveResult.Warning reports it.
func (c *Cache) Save(description, summary, sessionID string) (SaveResult, error) {
	description = strings.TrimSpace(description)
	sessionID = strings.TrimSpace(sessionID)

	if description == "" {
		return SaveResult{}, &tasks.ValidationError{Field: "description", Message: "must not be empty"}
	}
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return SaveResult{}, &tasks.ValidationError{
			Field:   "description",
			Message: fmt.Sprintf("must be at most %d characters", MaxDescriptionLength),
		}
	}
	if strings.TrimSpace(summary) == "" {
		return SaveResult{}, &tasks.ValidationError{Field: "summary", Message: "must not be empty"}
	}

	// Taken before c.mu so the cache lock never nests inside session locks.
	var snapshot []*tasks.Node
	var unresolved *SessionNotResolvedError
	if sessionID != "" {
		var ok bool
		if c.sessions != nil {
			snapshot, ok = c.sessions.Snapshot(sessionID)
		}
		if !ok {
			unresolved = &SessionNotResolvedError{SessionID: sessionID}
			log.Warn().Str("sessionId", sessionID).Msg("session not resolved, task snapshot not refreshed")
		}
	}

	timestamp := c.now().Format(TimestampLayout)

	c.mu.Lock()
	defer c.mu.Unlock()

	if sessionID != "" {
		if workID, ok := c.bySession[sessionID]; ok {
			if w, ok := c.lru.Get(workID); ok {
				w.Description = description
				w.Summary = summary
				w.Timestamp = timestamp
				if snapshot != nil {
					w.TasksSnapshot = snapshot
				}
				res := SaveResult{WorkID: workID, Timestamp: timestamp, Overwritten: true}
				if unresolved != nil {
					unresolved.Overwrite = true
					res.Warning = unresolved
				}
				log.Info().Str("workId", workID).Str("sessionId", sessionID).Msg("work info overwritten")
				return res, nil
			}
		}
	}

	workID, err := ids.GenerateWorkID(c.lru.Contains)
	if err != nil {
		return SaveResult{}, err
	}

	c.lru.Add(workID, &WorkInfo{
		WorkID:        workID,
		Timestamp:     timestamp,
		Description:   description,
		Summary:       summary,
		SessionID:     sessionID,
		TasksSnapshot: snapshot,
	})
	if sessionID != "" {
		c.bySession[sessionID] = workID
	}

	res := SaveResult{WorkID: workID, Timestamp: timestamp}
	if unresolved != nil {
		res.Warning = unresolved
	}
	log.Info().Str("workId", workID).Str("sessionId", sessionID).Int("entries", c.lru.Len()).Msg("work info saved")
	return res, nil
}

// Get returns a copy of the entry for workID and marks it most recently used
func (c *Cache) Get(workID string) (*WorkInfo, error) {
	if err := ids.ValidateWorkID(workID); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	w, ok := c.lru.Get(workID)
	if !ok {
		return nil, &WorkNotFoundError{WorkID: workID}
	}
	return w.clone(), nil
}

// ListRecent returns summaries of all live entries, most recently used first.
// Listing does not change recency.
func (c *Cache) ListRecent() []Summary {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := c.lru.Keys()
	out := make([]Summary, 0, len(keys))
	for i := len(keys) - 1; i >= 0; i-- {
		w, ok := c.lru.Peek(keys[i])
		if !ok {
			continue
		}
		out = append(out, Summary{WorkID: w.WorkID, Timestamp: w.Timestamp, Description: w.Description})
	}
	return out
}

// Len returns the number of live entries
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.lru.Len()
}

// Capacity returns the configured maximum number of entries
func (c *Cache) Capacity() int {
	return c.capacity
}

func (w *WorkInfo) clone() *WorkInfo {
	c := *w
	if w.TasksSnapshot != nil {
		c.TasksSnapshot = make([]*tasks.Node, 0, len(w.TasksSnapshot))
		for _, n := range w.TasksSnapshot {
			c.TasksSnapshot = append(c.TasksSnapshot, n.Clone())
		}
	}
	return &c
}
