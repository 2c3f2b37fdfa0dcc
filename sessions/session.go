package sessions

import (
	"sync"
	"time"

	"github.com/xiaoyuanzhu-com/tasktree/tasks"
)

// Session owns one task tree. All access to the tree goes through Update or
// View, which serialise callers on the session's own lock so that concurrent
// updates to the same session never interleave.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu   sync.Mutex
	tree *tasks.Tree
}

func newSession(id string, tree *tasks.Tree) *Session {
	return &Session{
		ID:        id,
		CreatedAt: time.Now(),
		tree:      tree,
	}
}

// Update runs fn with exclusive access to the tree and returns a copy of the
// root list as it stands afterwards, whether or not fn failed.
func (s *Session) Update(fn func(t *tasks.Tree) error) ([]*tasks.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := fn(s.tree)
	return s.tree.Roots(), err
}

// View runs fn with exclusive access to the tree. fn must not retain t.
func (s *Session) View(fn func(t *tasks.Tree)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(s.tree)
}

// Snapshot returns a deep copy of the root list
func (s *Session) Snapshot() []*tasks.Node {
	var roots []*tasks.Node
	s.View(func(t *tasks.Tree) { roots = t.Roots() })
	return roots
}
