package tasks

import (
	"fmt"

	"github.com/charmbracelet/lipgloss/tree"
)

// EmptyTreeText is what Render returns for a tree without nodes
const EmptyTreeText = "(no tasks)"

// Render draws nodes as an indented tree with a status marker per line:
//
//	├── [DONE] Set up project (setup)
//	└── [TODO] Write handlers (api)
//	    └── [TODO] Tasks endpoint (api-tasks)
func Render(nodes []*Node) string {
	if len(nodes) == 0 {
		return EmptyTreeText
	}
	t := tree.New()
	for _, n := range nodes {
		t.Child(renderNode(n))
	}
	return t.String()
}

func renderNode(n *Node) any {
	label := Label(n)
	if len(n.Children) == 0 {
		return label
	}
	sub := tree.Root(label)
	for _, child := range n.Children {
		sub.Child(renderNode(child))
	}
	return sub
}

// Label is the single-line text for a node
func Label(n *Node) string {
	return fmt.Sprintf("[%s] %s (%s)", n.Status, n.Description, n.ID)
}
