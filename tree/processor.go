package tree

import (
	"fmt"
	"log/slog"

	"github.com/AlessandroCarella/treescope/feature"
)

/*
Kind identifies one of the tree layouts the dashboard renders. Each
kind has its own Processor because the layouts use structurally
different child linkage and traversal rules.
*/
type Kind string

const (
	// KindClassic is the hierarchical node-link layout.
	KindClassic Kind = "classic"
	// KindBlocks is the depth-aligned rectangular layout.
	KindBlocks Kind = "blocks"
	// KindSpawn is the linear path-centered layout with collapsible
	// subtrees.
	KindSpawn Kind = "spawn"
)

// Kinds returns all tree kinds in rendering order.
func Kinds() []Kind {
	return []Kind{KindClassic, KindBlocks, KindSpawn}
}

// Valid reports whether the kind names a known tree layout.
func (k Kind) Valid() bool {
	switch k {
	case KindClassic, KindBlocks, KindSpawn:
		return true
	}
	return false
}

/*
Processor converts a raw tree into the derived structures one layout
needs: the hierarchy, the path an instance follows, node lookup and
the enumeration of all root-to-leaf paths. One implementation exists
per Kind; use For to obtain it.
*/
type Processor interface {
	// Kind returns the layout the processor serves.
	Kind() Kind
	// BuildHierarchy derives a hierarchy from the raw tree. It
	// returns nil, with a logged error, when the tree is absent or
	// its root is missing; callers must treat nil as "no tree
	// available" and skip rendering.
	BuildHierarchy(t *Tree) *Hierarchy
	// TracePath traces the instance from the hierarchy's root and
	// returns the node ids visited. A missing feature value stops the
	// trace at the last resolved node; the partial path is returned
	// with a logged warning, never an error.
	TracePath(h *Hierarchy, inst feature.Instance) []int
	// FindNode returns the hierarchy node with the given id or nil.
	FindNode(h *Hierarchy, id int) *Hierarchy
	// AllPaths enumerates every root-to-leaf path of the hierarchy. A
	// node without children counts as a leaf even if its leaf flag is
	// unset.
	AllPaths(h *Hierarchy) [][]int
}

/*
For takes a kind and returns the Processor implementing that
layout's rules, or an error for an unknown kind.
*/
func For(kind Kind) (Processor, error) {
	switch kind {
	case KindClassic:
		return classicProcessor{}, nil
	case KindBlocks:
		return blocksProcessor{}, nil
	case KindSpawn:
		return SpawnProcessor{}, nil
	}
	return nil, fmt.Errorf("unknown tree kind %q", kind)
}

// traceHierarchyPath implements the shared traversal rule on a
// hierarchy: descend left on values <= threshold, right otherwise,
// stopping with a partial path when the instance lacks a value.
func traceHierarchyPath(kind Kind, h *Hierarchy, inst feature.Instance) []int {
	if h == nil {
		return nil
	}
	path := []int{h.Node.ID}
	for current := h; current.Node.Split(); {
		v, ok := inst.Value(current.Node.FeatureName)
		if !ok {
			slog.Warn("instance has no value for split feature, returning partial path",
				slog.String("kind", string(kind)),
				slog.String("feature", current.Node.FeatureName),
				slog.Int("node", current.Node.ID))
			return path
		}
		nextID := *current.Node.RightChild
		if v <= *current.Node.Threshold {
			nextID = *current.Node.LeftChild
		}
		next := current.child(nextID)
		if next == nil {
			slog.Warn("hierarchy is missing a child referenced by the raw tree, returning partial path",
				slog.String("kind", string(kind)),
				slog.Int("node", current.Node.ID),
				slog.Int("child", nextID))
			return path
		}
		current = next
		path = append(path, current.Node.ID)
	}
	return path
}

// enumeratePaths collects every root-to-leaf path below h, treating
// childless nodes as leaves regardless of their leaf flag.
func enumeratePaths(h *Hierarchy) [][]int {
	if h == nil {
		return nil
	}
	var paths [][]int
	var descend func(node *Hierarchy, prefix []int)
	descend = func(node *Hierarchy, prefix []int) {
		prefix = append(prefix, node.Node.ID)
		if len(node.Children) == 0 {
			path := make([]int, len(prefix))
			copy(path, prefix)
			paths = append(paths, path)
			return
		}
		for _, child := range node.Children {
			descend(child, prefix)
		}
	}
	descend(h, nil)
	return paths
}
