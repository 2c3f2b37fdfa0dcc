// Package tasks implements the per-session task tree: a hierarchy of TODO/DONE
// nodes addressed by "/"-separated id paths, with structure-preserving partial
// updates at any depth.
//
// A Tree is not safe for concurrent use; callers serialise access (see the
// sessions package).
package tasks

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xiaoyuanzhu-com/tasktree/ids"
)

// taskIDAttempts bounds how often a blank id is regenerated on collision
const taskIDAttempts = 100

// Tree is an ordered list of root nodes
type Tree struct {
	roots []*Node
}

// NewTree creates an empty tree
func NewTree() *Tree {
	return &Tree{roots: []*Node{}}
}

// Roots returns a deep copy of the root list
func (t *Tree) Roots() []*Node {
	return cloneNodes(t.roots)
}

// Clone returns an independent deep copy of t
func (t *Tree) Clone() *Tree {
	return &Tree{roots: cloneNodes(t.roots)}
}

// Count returns the total number of nodes in the tree
func (t *Tree) Count() int {
	n := 0
	walk(t.roots, func(*Node) { n++ })
	return n
}

// MarshalJSON encodes the tree as its root list
func (t *Tree) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.roots)
}

// ReadAt returns a copy of the child list addressed by p
func (t *Tree) ReadAt(p Path) ([]*Node, error) {
	list, err := resolve(&t.roots, p)
	if err != nil {
		return nil, err
	}
	return cloneNodes(*list), nil
}

// ReplaceAt reconciles the child list addressed by p with inputs.
//
// Nodes are matched by id: a matched node keeps its subtree unless the input
// supplies Children, in which case its children are reconciled recursively.
// Unmatched inputs become new nodes; existing nodes absent from inputs are
// removed with their subtrees. The list order becomes the input order.
//
// The whole input is validated before anything changes, and the new structure
// is built on a copy that only replaces the live tree once ids are known to be
// unique. On error the tree is unchanged.
func (t *Tree) ReplaceAt(p Path, inputs []NodeInput) error {
	taken := t.idSet()
	collectInputIDs(inputs, taken)

	plan, err := planList(inputs, taken, "tasks")
	if err != nil {
		return err
	}

	roots := cloneNodes(t.roots)
	list, err := resolve(&roots, p)
	if err != nil {
		return err
	}
	*list = reconcile(*list, plan)

	if dup := firstDuplicate(roots); dup != "" {
		return &DuplicateTaskIDError{ID: dup}
	}

	t.roots = roots
	return nil
}

// FindByID returns a copy of the node with the given id and the path of ids
// leading to its parent (empty for a root node).
func (t *Tree) FindByID(id string) (*Node, Path, error) {
	n, parents := find(t.roots, id, nil)
	if n == nil {
		return nil, nil, &TaskNotFoundError{ID: id}
	}
	return n.Clone(), parents, nil
}

// MarkDone sets the status of one node to DONE. Descendants are not touched.
func (t *Tree) MarkDone(id string) error {
	n, _ := find(t.roots, id, nil)
	if n == nil {
		return &TaskNotFoundError{ID: id}
	}
	n.Status = StatusDone
	return nil
}

func (t *Tree) idSet() map[string]bool {
	set := make(map[string]bool)
	walk(t.roots, func(n *Node) { set[n.ID] = true })
	return set
}

// plannedNode is a validated input with its id resolved
type plannedNode struct {
	id          string
	description string
	status      Status
	children    *[]plannedNode
}

func collectInputIDs(inputs []NodeInput, set map[string]bool) {
	for _, in := range inputs {
		if strings.TrimSpace(in.ID) != "" {
			set[in.ID] = true
		}
		if in.Children != nil {
			collectInputIDs(*in.Children, set)
		}
	}
}

func planList(inputs []NodeInput, taken map[string]bool, field string) ([]plannedNode, error) {
	out := make([]plannedNode, 0, len(inputs))
	for i, in := range inputs {
		f := fmt.Sprintf("%s[%d]", field, i)

		id := in.ID
		if strings.TrimSpace(id) == "" {
			generated, err := generateUniqueTaskID(taken)
			if err != nil {
				return nil, err
			}
			id = generated
		} else if err := ids.ValidateTaskID(id); err != nil {
			return nil, err
		}

		desc := strings.TrimSpace(in.Description)
		if desc == "" {
			return nil, &ValidationError{Field: f + ".description", Message: "must not be empty"}
		}

		status, err := ParseStatus(in.Status)
		if err != nil {
			return nil, &ValidationError{Field: f + ".status", Message: err.Error()}
		}

		p := plannedNode{id: id, description: desc, status: status}
		if in.Children != nil {
			children, err := planList(*in.Children, taken, f+".children")
			if err != nil {
				return nil, err
			}
			p.children = &children
		}
		out = append(out, p)
	}
	return out, nil
}

func generateUniqueTaskID(taken map[string]bool) (string, error) {
	for range taskIDAttempts {
		id := ids.GenerateTaskID()
		if !taken[id] {
			taken[id] = true
			return id, nil
		}
	}
	return "", ids.ErrIDSpaceExhausted
}

func reconcile(existing []*Node, plan []plannedNode) []*Node {
	byID := make(map[string]*Node, len(existing))
	for _, n := range existing {
		byID[n.ID] = n
	}

	out := make([]*Node, 0, len(plan))
	for _, p := range plan {
		n, ok := byID[p.id]
		if !ok {
			out = append(out, materialize(p))
			continue
		}
		n.Description = p.description
		if p.status != "" {
			n.Status = p.status
		}
		if p.children != nil {
			n.Children = reconcile(n.Children, *p.children)
		}
		out = append(out, n)
	}
	return out
}

func materialize(p plannedNode) *Node {
	n := &Node{
		ID:          p.id,
		Description: p.description,
		Status:      p.status,
		Children:    []*Node{},
	}
	if n.Status == "" {
		n.Status = StatusTodo
	}
	if p.children != nil {
		for _, child := range *p.children {
			n.Children = append(n.Children, materialize(child))
		}
	}
	return n
}

func firstDuplicate(roots []*Node) string {
	seen := make(map[string]bool)
	dup := ""
	walk(roots, func(n *Node) {
		if dup != "" {
			return
		}
		if seen[n.ID] {
			dup = n.ID
			return
		}
		seen[n.ID] = true
	})
	return dup
}

func find(list []*Node, id string, parents Path) (*Node, Path) {
	for _, n := range list {
		if n.ID == id {
			return n, append(Path{}, parents...)
		}
		if found, p := find(n.Children, id, append(parents, n.ID)); found != nil {
			return found, p
		}
	}
	return nil, nil
}

// walk visits nodes depth-first in sibling order
func walk(list []*Node, fn func(*Node)) {
	for _, n := range list {
		fn(n)
		walk(n.Children, fn)
	}
}
