package tasks

import (
	"fmt"
	"strings"
)

// Status is the declared completion state of a task
type Status string

const (
	StatusTodo Status = "TODO"
	StatusDone Status = "DONE"
)

// ParseStatus normalises a caller-supplied status. An empty string is returned
// unchanged so callers can tell "not supplied" from an explicit value.
func ParseStatus(s string) (Status, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "":
		return "", nil
	case string(StatusTodo):
		return StatusTodo, nil
	case string(StatusDone):
		return StatusDone, nil
	default:
		return "", fmt.Errorf("unknown status %q (want TODO or DONE)", s)
	}
}

// Node is a task in a session's tree
type Node struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Status      Status  `json:"status"`
	Children    []*Node `json:"children"`
}

// Clone returns a deep copy of n
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{
		ID:          n.ID,
		Description: n.Description,
		Status:      n.Status,
		Children:    cloneNodes(n.Children),
	}
	return c
}

// ToInput converts n and its whole subtree into update input. Applying the
// result at the node's own level rewrites nothing.
func (n *Node) ToInput() NodeInput {
	children := make([]NodeInput, 0, len(n.Children))
	for _, child := range n.Children {
		children = append(children, child.ToInput())
	}
	return NodeInput{
		ID:          n.ID,
		Description: n.Description,
		Status:      string(n.Status),
		Children:    &children,
	}
}

// NodeInput is one element of an update request.
//
// Children has three states: nil leaves an existing subtree untouched, a
// pointer to an empty slice prunes it, and a non-empty slice rewrites it.
type NodeInput struct {
	ID          string       `json:"id,omitempty"`
	Description string       `json:"description"`
	Status      string       `json:"status,omitempty"`
	Children    *[]NodeInput `json:"children,omitempty"`
}

// ToInputs converts a node list into update input
func ToInputs(nodes []*Node) []NodeInput {
	out := make([]NodeInput, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.ToInput())
	}
	return out
}

func cloneNodes(nodes []*Node) []*Node {
	out := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Clone())
	}
	return out
}
