package tasks

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/xiaoyuanzhu-com/tasktree/ids"
)

// =============================================================================
// Helpers
// =============================================================================

func children(in ...NodeInput) *[]NodeInput {
	return &in
}

// sampleTree builds:
//
//	setup
//	api
//	├── api-tasks
//	│   └── api-tasks-put
//	└── api-works
func sampleTree(t *testing.T) *Tree {
	t.Helper()
	tree := NewTree()
	err := tree.ReplaceAt(nil, []NodeInput{
		{ID: "setup", Description: "Set up project", Status: "DONE"},
		{ID: "api", Description: "Write handlers", Children: children(
			NodeInput{ID: "api-tasks", Description: "Tasks endpoint", Children: children(
				NodeInput{ID: "api-tasks-put", Description: "PUT handler"},
			)},
			NodeInput{ID: "api-works", Description: "Works endpoint"},
		)},
	})
	if err != nil {
		t.Fatalf("failed to build sample tree: %v", err)
	}
	return tree
}

func idsOf(nodes []*Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.ID)
	}
	return out
}

func mustRead(t *testing.T, tree *Tree, path string) []*Node {
	t.Helper()
	nodes, err := tree.ReadAt(ParsePath(path))
	if err != nil {
		t.Fatalf("ReadAt(%q): %v", path, err)
	}
	return nodes
}

// =============================================================================
// Path Tests
// =============================================================================

func TestParsePath(t *testing.T) {
	tests := []struct {
		in   string
		want Path
	}{
		{"", nil},
		{"/", nil},
		{"//", nil},
		{"a", Path{"a"}},
		{"/a/b", Path{"a", "b"}},
		{"a/b/", Path{"a", "b"}},
		{"a//b", Path{"a", "b"}},
	}
	for _, tt := range tests {
		got := ParsePath(tt.in)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParsePath(%q) = %#v, want %#v", tt.in, got, tt.want)
		}
	}
}

func TestReadAt_PathNotFound(t *testing.T) {
	tree := sampleTree(t)

	_, err := tree.ReadAt(ParsePath("api/missing/deeper"))
	if !errors.Is(err, ErrPathNotFound) {
		t.Fatalf("expected ErrPathNotFound, got %v", err)
	}
	var pathErr *PathNotFoundError
	if !errors.As(err, &pathErr) {
		t.Fatalf("expected PathNotFoundError, got %T", err)
	}
	if pathErr.Segment != "missing" {
		t.Errorf("expected segment 'missing', got %q", pathErr.Segment)
	}
	if !reflect.DeepEqual(pathErr.Consumed, []string{"api"}) {
		t.Errorf("expected consumed [api], got %v", pathErr.Consumed)
	}
}

func TestReadAt_ReturnsCopy(t *testing.T) {
	tree := sampleTree(t)

	nodes := mustRead(t, tree, "/")
	nodes[0].Description = "mutated"
	nodes[1].Children = nil

	again := mustRead(t, tree, "/")
	if again[0].Description != "Set up project" {
		t.Errorf("mutation of read result leaked into tree: %q", again[0].Description)
	}
	if len(again[1].Children) != 2 {
		t.Errorf("expected api to keep 2 children, got %d", len(again[1].Children))
	}
}

// =============================================================================
// ReplaceAt Tests
// =============================================================================

func TestReplaceAt_IdentityIsNoOp(t *testing.T) {
	for _, path := range []string{"/", "api", "api/api-tasks", "api/api-tasks/api-tasks-put"} {
		t.Run(path, func(t *testing.T) {
			tree := sampleTree(t)
			before := tree.Roots()

			current := mustRead(t, tree, path)
			if err := tree.ReplaceAt(ParsePath(path), ToInputs(current)); err != nil {
				t.Fatalf("identity update failed: %v", err)
			}

			if !reflect.DeepEqual(before, tree.Roots()) {
				t.Errorf("identity update changed the tree")
			}
		})
	}
}

func TestReplaceAt_OrderAndPreservedSubtrees(t *testing.T) {
	tree := sampleTree(t)

	// api omits children: its subtree must survive. new-task is inserted.
	err := tree.ReplaceAt(nil, []NodeInput{
		{ID: "new-task", Description: "Brand new"},
		{ID: "api", Description: "Write HTTP handlers"},
		{ID: "setup", Description: "Set up project"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	roots := mustRead(t, tree, "/")
	if got := idsOf(roots); !reflect.DeepEqual(got, []string{"new-task", "api", "setup"}) {
		t.Errorf("unexpected root order: %v", got)
	}
	if roots[1].Description != "Write HTTP handlers" {
		t.Errorf("description not updated: %q", roots[1].Description)
	}
	if got := idsOf(roots[1].Children); !reflect.DeepEqual(got, []string{"api-tasks", "api-works"}) {
		t.Errorf("expected api subtree preserved, got %v", got)
	}
	if roots[2].Status != StatusDone {
		t.Errorf("expected blank status to keep DONE, got %s", roots[2].Status)
	}
	if roots[0].Status != StatusTodo {
		t.Errorf("expected new node to default to TODO, got %s", roots[0].Status)
	}
}

func TestReplaceAt_EmptyChildrenPrunes(t *testing.T) {
	tree := sampleTree(t)

	err := tree.ReplaceAt(nil, []NodeInput{
		{ID: "setup", Description: "Set up project"},
		{ID: "api", Description: "Write handlers", Children: children()},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if n := len(mustRead(t, tree, "api")); n != 0 {
		t.Errorf("expected api children pruned, got %d", n)
	}
	if tree.Count() != 2 {
		t.Errorf("expected 2 nodes left, got %d", tree.Count())
	}
}

func TestReplaceAt_RemovesOmittedWithSubtree(t *testing.T) {
	tree := sampleTree(t)

	err := tree.ReplaceAt(ParsePath("api"), []NodeInput{
		{ID: "api-works", Description: "Works endpoint"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, _, err := tree.FindByID("api-tasks-put"); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("expected grandchild removed with its parent, got %v", err)
	}

	// a removed id can be reused afterwards
	err = tree.ReplaceAt(nil, []NodeInput{
		{ID: "api-tasks", Description: "Back at root"},
	})
	if err != nil {
		t.Errorf("expected removed id to be reusable, got %v", err)
	}
}

func TestReplaceAt_NestedRewrite(t *testing.T) {
	tree := sampleTree(t)

	err := tree.ReplaceAt(ParsePath("api"), []NodeInput{
		{ID: "api-tasks", Description: "Tasks endpoint", Children: children(
			NodeInput{ID: "api-tasks-get", Description: "GET handler"},
			NodeInput{ID: "api-tasks-put", Description: "PUT handler", Status: "done"},
		)},
		{ID: "api-works", Description: "Works endpoint"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	nodes := mustRead(t, tree, "api/api-tasks")
	if got := idsOf(nodes); !reflect.DeepEqual(got, []string{"api-tasks-get", "api-tasks-put"}) {
		t.Errorf("unexpected nested ids: %v", got)
	}
	if nodes[1].Status != StatusDone {
		t.Errorf("expected lowercase status to be accepted, got %s", nodes[1].Status)
	}
}

func TestReplaceAt_GeneratesBlankIDs(t *testing.T) {
	tree := NewTree()

	err := tree.ReplaceAt(nil, []NodeInput{
		{Description: "first"},
		{ID: "  ", Description: "second", Children: children(NodeInput{Description: "child"})},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	roots := mustRead(t, tree, "/")
	seen := map[string]bool{}
	for _, n := range append(roots, roots[1].Children...) {
		if err := ids.ValidateTaskID(n.ID); err != nil {
			t.Errorf("generated id invalid: %v", err)
		}
		if seen[n.ID] {
			t.Errorf("generated id %q repeated", n.ID)
		}
		seen[n.ID] = true
	}
}

func TestReplaceAt_FailuresLeaveTreeUnchanged(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		inputs  []NodeInput
		wantErr error
	}{
		{
			name:    "empty description deep in the fragment",
			path:    "/",
			inputs:  []NodeInput{{ID: "setup", Description: "ok", Children: children(NodeInput{ID: "x", Description: "  "})}},
			wantErr: ErrValidation,
		},
		{
			name:    "invalid id",
			path:    "/",
			inputs:  []NodeInput{{ID: "has space", Description: "ok"}},
			wantErr: ids.ErrInvalidTaskID,
		},
		{
			name:    "unknown status",
			path:    "/",
			inputs:  []NodeInput{{ID: "setup", Description: "ok", Status: "WIP"}},
			wantErr: ErrValidation,
		},
		{
			name:    "id used elsewhere in the tree",
			path:    "api",
			inputs:  []NodeInput{{ID: "setup", Description: "collides with a root"}},
			wantErr: ErrDuplicateTaskID,
		},
		{
			name:    "same id twice in one list",
			path:    "/",
			inputs:  []NodeInput{{ID: "dup", Description: "a"}, {ID: "dup", Description: "b"}},
			wantErr: ErrDuplicateTaskID,
		},
		{
			name:    "new node whose child collides",
			path:    "/",
			inputs:  []NodeInput{{ID: "setup", Description: "s"}, {ID: "api", Description: "a"}, {ID: "fresh", Description: "f", Children: children(NodeInput{ID: "api-works", Description: "w"})}},
			wantErr: ErrDuplicateTaskID,
		},
		{
			name:    "unresolved path",
			path:    "api/nope",
			inputs:  []NodeInput{{ID: "z", Description: "z"}},
			wantErr: ErrPathNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := sampleTree(t)
			before := tree.Roots()

			err := tree.ReplaceAt(ParsePath(tt.path), tt.inputs)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if !reflect.DeepEqual(before, tree.Roots()) {
				t.Errorf("tree changed after failed update")
			}
		})
	}
}

func TestReplaceAt_ValidationErrorNamesField(t *testing.T) {
	tree := NewTree()

	err := tree.ReplaceAt(nil, []NodeInput{
		{ID: "a", Description: "a", Children: children(
			NodeInput{ID: "b", Description: "b"},
			NodeInput{ID: "c"},
		)},
	})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if vErr.Field != "tasks[0].children[1].description" {
		t.Errorf("unexpected field: %q", vErr.Field)
	}
}

func TestReplaceAt_DuplicateErrorNamesID(t *testing.T) {
	tree := sampleTree(t)

	err := tree.ReplaceAt(ParsePath("api/api-works"), []NodeInput{{ID: "api-tasks-put", Description: "x"}})
	var dupErr *DuplicateTaskIDError
	if !errors.As(err, &dupErr) {
		t.Fatalf("expected DuplicateTaskIDError, got %v", err)
	}
	if dupErr.ID != "api-tasks-put" {
		t.Errorf("expected id api-tasks-put, got %q", dupErr.ID)
	}
}

func TestReplaceAt_IDFreedInSameCallIsReusedAsNewNode(t *testing.T) {
	tree := sampleTree(t)

	// Dropping "api" removes api-tasks with it, so the id is free for a new root node.
	err := tree.ReplaceAt(nil, []NodeInput{
		{ID: "setup", Description: "Set up project"},
		{ID: "api-tasks", Description: "Tasks endpoint, moved to root"},
	})
	if err != nil {
		t.Fatalf("expected reuse of a removed id to succeed, got %v", err)
	}

	roots := mustRead(t, tree, "/")
	if got := idsOf(roots); !reflect.DeepEqual(got, []string{"setup", "api-tasks"}) {
		t.Fatalf("unexpected roots %v", got)
	}
	moved := roots[1]
	if moved.Status != StatusTodo || len(moved.Children) != 0 {
		t.Errorf("re-created node must start fresh without its old subtree: %+v", moved)
	}
	if tree.Count() != 2 {
		t.Errorf("expected old subtree gone, tree has %d nodes", tree.Count())
	}
	if _, _, err := tree.FindByID("api-tasks-put"); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("expected api-tasks-put removed, got %v", err)
	}
}

// =============================================================================
// FindByID / MarkDone Tests
// =============================================================================

func TestFindByID(t *testing.T) {
	tree := sampleTree(t)

	n, parents, err := tree.FindByID("api-tasks-put")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.Description != "PUT handler" {
		t.Errorf("unexpected node: %+v", n)
	}
	if !reflect.DeepEqual(parents, Path{"api", "api-tasks"}) {
		t.Errorf("unexpected parent path: %v", parents)
	}

	_, parents, err = tree.FindByID("setup")
	if err != nil || len(parents) != 0 {
		t.Errorf("expected root node with empty parent path, got %v, %v", parents, err)
	}

	_, _, err = tree.FindByID("ghost")
	var nfErr *TaskNotFoundError
	if !errors.As(err, &nfErr) || nfErr.ID != "ghost" {
		t.Errorf("expected TaskNotFoundError for ghost, got %v", err)
	}
}

func TestMarkDone_OnlyTargetChanges(t *testing.T) {
	tree := sampleTree(t)

	if err := tree.MarkDone("api-tasks"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	statuses := map[string]Status{}
	walk(tree.roots, func(n *Node) { statuses[n.ID] = n.Status })

	want := map[string]Status{
		"setup":         StatusDone,
		"api":           StatusTodo,
		"api-tasks":     StatusDone,
		"api-tasks-put": StatusTodo,
		"api-works":     StatusTodo,
	}
	if !reflect.DeepEqual(statuses, want) {
		t.Errorf("unexpected statuses: %v", statuses)
	}

	// idempotent
	before := tree.Roots()
	if err := tree.MarkDone("api-tasks"); err != nil {
		t.Fatalf("second MarkDone failed: %v", err)
	}
	if !reflect.DeepEqual(before, tree.Roots()) {
		t.Errorf("second MarkDone changed the tree")
	}
}

func TestMarkDone_NotFound(t *testing.T) {
	tree := sampleTree(t)
	if err := tree.MarkDone("ghost"); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound, got %v", err)
	}
}

// =============================================================================
// Copy / JSON Tests
// =============================================================================

func TestClone_IsIndependent(t *testing.T) {
	tree := sampleTree(t)
	snapshot := tree.Clone()

	if err := tree.MarkDone("api-works"); err != nil {
		t.Fatal(err)
	}
	if err := tree.ReplaceAt(nil, nil); err != nil {
		t.Fatal(err)
	}

	if snapshot.Count() != 5 {
		t.Errorf("expected snapshot to keep 5 nodes, got %d", snapshot.Count())
	}
	n, _, err := snapshot.FindByID("api-works")
	if err != nil || n.Status != StatusTodo {
		t.Errorf("snapshot observed live mutation: %+v, %v", n, err)
	}
}

func TestNodeInput_ChildrenThreeStates(t *testing.T) {
	var inputs []NodeInput
	data := `[{"id":"a","description":"a"},{"id":"b","description":"b","children":[]},{"id":"c","description":"c","children":[{"description":"d"}]}]`
	if err := json.Unmarshal([]byte(data), &inputs); err != nil {
		t.Fatal(err)
	}

	if inputs[0].Children != nil {
		t.Errorf("absent children should decode to nil")
	}
	if inputs[1].Children == nil || len(*inputs[1].Children) != 0 {
		t.Errorf("empty children should decode to an empty, non-nil list")
	}
	if inputs[2].Children == nil || len(*inputs[2].Children) != 1 {
		t.Errorf("children with values should decode to a list of 1")
	}
}

func TestTree_MarshalJSON(t *testing.T) {
	tree := NewTree()
	data, err := json.Marshal(tree)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "[]" {
		t.Errorf("expected empty tree to encode as [], got %s", data)
	}
}
