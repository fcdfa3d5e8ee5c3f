/*
Package tree models the raw surrogate decision tree delivered by an
explanation payload and derives the per-layout hierarchies and paths
the visualization layer consumes.
*/
package tree

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/AlessandroCarella/treescope/feature"
)

/*
Node is one element of the raw tree array. Split nodes carry an
encoded feature name, a threshold and the ids of their two children;
leaf nodes carry the predicted class label. The convention for every
traversal in this module is that values less than or equal to the
threshold descend to the left child and strictly greater values to
the right child.
*/
type Node struct {
	// ID identifies the node in the tree; the root always has ID 0.
	ID int `json:"node_id"`
	// IsLeaf indicates whether the node is terminal.
	IsLeaf bool `json:"is_leaf"`
	// FeatureName is the encoded feature the node splits on, present
	// only on split nodes.
	FeatureName string `json:"feature_name,omitempty"`
	// Threshold is the split threshold, present only on split nodes.
	Threshold *float64 `json:"threshold,omitempty"`
	// LeftChild and RightChild are the ids of the subtrees for values
	// <= and > the threshold respectively, present only on split nodes.
	LeftChild  *int `json:"left_child,omitempty"`
	RightChild *int `json:"right_child,omitempty"`
	// ClassLabel is the class predicted by a leaf node.
	ClassLabel feature.Value `json:"class_label,omitempty"`
	// Samples is the number of training samples that reached the node.
	Samples int `json:"samples,omitempty"`
	// WeightedSamples, Impurity and ClassCounts carry the optional
	// per-node statistics some producers attach.
	WeightedSamples float64   `json:"weighted_n_samples,omitempty"`
	Impurity        float64   `json:"impurity,omitempty"`
	ClassCounts     []float64 `json:"value,omitempty"`
}

// Split reports whether the node carries a usable split: a feature,
// a threshold and both children.
func (n *Node) Split() bool {
	return !n.IsLeaf && n.FeatureName != "" && n.Threshold != nil &&
		n.LeftChild != nil && n.RightChild != nil
}

/*
Tree indexes a validated raw node array. It owns no rendering state:
hierarchies derived from it are rebuilt whenever the raw data
changes, and expand/collapse state lives on the hierarchy only.
*/
type Tree struct {
	nodes   []Node
	byID    map[int]*Node
	parents map[int]int
}

// RootID is the id every well-formed raw tree uses for its root node.
const RootID = 0

var (
	// ErrNoNodes is returned when a tree is built from an empty array.
	ErrNoNodes = errors.New("tree data has no nodes")
	// ErrNoRoot is returned when no node carries the root id.
	ErrNoRoot = errors.New("tree data has no root node")
)

/*
New takes a raw node array and returns a Tree indexing it, or an
error if the array does not describe a well-formed tree: a single
root with id 0, unique ids, both children present on every split
node, every node reachable from the root exactly once.
*/
func New(nodes []Node) (*Tree, error) {
	if len(nodes) == 0 {
		return nil, ErrNoNodes
	}
	t := &Tree{
		nodes:   nodes,
		byID:    make(map[int]*Node, len(nodes)),
		parents: make(map[int]int, len(nodes)),
	}
	for i := range nodes {
		n := &nodes[i]
		if _, taken := t.byID[n.ID]; taken {
			return nil, fmt.Errorf("duplicate node id %d", n.ID)
		}
		t.byID[n.ID] = n
	}
	if t.byID[RootID] == nil {
		return nil, ErrNoRoot
	}
	for i := range nodes {
		n := &nodes[i]
		if n.IsLeaf {
			continue
		}
		if !n.Split() {
			return nil, fmt.Errorf("split node %d is missing its feature, threshold or children", n.ID)
		}
		for _, childID := range []int{*n.LeftChild, *n.RightChild} {
			if t.byID[childID] == nil {
				return nil, fmt.Errorf("node %d references missing child %d", n.ID, childID)
			}
			if prev, claimed := t.parents[childID]; claimed {
				return nil, fmt.Errorf("node %d is a child of both %d and %d", childID, prev, n.ID)
			}
			t.parents[childID] = n.ID
		}
	}
	if err := t.checkReachable(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Tree) checkReachable() error {
	seen := make(map[int]bool, len(t.nodes))
	stack := []int{RootID}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[id] {
			return fmt.Errorf("cycle detected at node %d", id)
		}
		seen[id] = true
		n := t.byID[id]
		if n.Split() {
			stack = append(stack, *n.LeftChild, *n.RightChild)
		}
	}
	if len(seen) != len(t.nodes) {
		return fmt.Errorf("%d of %d nodes are unreachable from the root", len(t.nodes)-len(seen), len(t.nodes))
	}
	return nil
}

// Root returns the root node.
func (t *Tree) Root() *Node {
	return t.byID[RootID]
}

// Node takes a node id and returns the node with that id or nil if
// the tree has no such node.
func (t *Tree) Node(id int) *Node {
	return t.byID[id]
}

// Nodes returns the raw node array the tree was built from.
func (t *Tree) Nodes() []Node {
	return t.nodes
}

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Parent takes a node id and returns the id of its parent and true,
// or 0 and false for the root or an unknown id.
func (t *Tree) Parent(id int) (int, bool) {
	p, ok := t.parents[id]
	return p, ok
}

/*
PathFromRoot takes a node id and returns the sequence of node ids
from the root to that node, both included, by walking the
precomputed child-to-parent links. It returns nil for an unknown id.
*/
func (t *Tree) PathFromRoot(id int) []int {
	if t.byID[id] == nil {
		return nil
	}
	var reversed []int
	for current := id; ; {
		reversed = append(reversed, current)
		parent, ok := t.parents[current]
		if !ok {
			break
		}
		current = parent
	}
	path := make([]int, len(reversed))
	for i, id := range reversed {
		path[len(reversed)-1-i] = id
	}
	return path
}

/*
LeafDescendants takes a node id and returns the ids of every leaf in
the subtree rooted at it, in depth-first order. A node with no usable
split counts as a leaf even if its leaf flag is unset. The result is
nil for an unknown id.
*/
func (t *Tree) LeafDescendants(id int) []int {
	n := t.byID[id]
	if n == nil {
		return nil
	}
	if !n.Split() {
		return []int{n.ID}
	}
	leaves := t.LeafDescendants(*n.LeftChild)
	return append(leaves, t.LeafDescendants(*n.RightChild)...)
}

/*
Descendants takes a node id and returns the ids of every node in the
subtree rooted at it, the node itself included, in depth-first order.
*/
func (t *Tree) Descendants(id int) []int {
	n := t.byID[id]
	if n == nil {
		return nil
	}
	ids := []int{n.ID}
	if n.Split() {
		ids = append(ids, t.Descendants(*n.LeftChild)...)
		ids = append(ids, t.Descendants(*n.RightChild)...)
	}
	return ids
}

/*
TracePath takes an instance and traces it through the raw node array
from the root, descending left on values less than or equal to each
split's threshold and right otherwise. When the instance does not
define a value for a split's feature the trace stops there and the
partial path is returned with a logged warning; tracing never fails.
The final leaf id is included when the trace reaches one.
*/
func (t *Tree) TracePath(inst feature.Instance) []int {
	path := []int{RootID}
	for n := t.Root(); n.Split(); {
		v, ok := inst.Value(n.FeatureName)
		if !ok {
			slog.Warn("instance has no value for split feature, returning partial path",
				slog.String("feature", n.FeatureName),
				slog.Int("node", n.ID))
			return path
		}
		if v <= *n.Threshold {
			n = t.byID[*n.LeftChild]
		} else {
			n = t.byID[*n.RightChild]
		}
		path = append(path, n.ID)
	}
	return path
}

// Float returns a pointer to the given float64, a convenience for
// building raw nodes in code.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to the given int, a convenience for building
// raw nodes in code.
func Int(v int) *int { return &v }
