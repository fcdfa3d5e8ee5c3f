package tree

import (
	"log/slog"

	"github.com/AlessandroCarella/treescope/feature"
)

/*
SpawnProcessor derives the hierarchy for the path-centered spawn
layout. The layout renders the explained instance's path as a line
of nodes with the off-path subtrees collapsible, so its hierarchy
carries visibility flags and the processor can also trace instances
directly against the raw node array, bypassing hierarchy nodes that
are currently hidden. Both traversal modes produce identical paths
whenever no node is hidden.
*/
type SpawnProcessor struct{}

func (SpawnProcessor) Kind() Kind { return KindSpawn }

func (SpawnProcessor) BuildHierarchy(t *Tree) *Hierarchy {
	if t == nil || t.Root() == nil {
		slog.Error("cannot build spawn hierarchy: no tree data or missing root")
		return nil
	}
	var attach func(n *Node, parent *Hierarchy, depth int) *Hierarchy
	attach = func(n *Node, parent *Hierarchy, depth int) *Hierarchy {
		h := &Hierarchy{Node: n, Parent: parent, Depth: depth, Expanded: true}
		if n.Split() {
			h.Children = []*Hierarchy{
				attach(t.Node(*n.LeftChild), h, depth+1),
				attach(t.Node(*n.RightChild), h, depth+1),
			}
		}
		return h
	}
	return attach(t.Root(), nil, 0)
}

func (SpawnProcessor) TracePath(h *Hierarchy, inst feature.Instance) []int {
	return traceHierarchyPath(KindSpawn, h, inst)
}

/*
TraceRawPath traces the instance against the raw node array instead
of the hierarchy. The spawn layout uses this when subtrees are
collapsed, since hidden hierarchy nodes are not traversable but the
underlying raw tree is unaffected by visibility state.
*/
func (SpawnProcessor) TraceRawPath(t *Tree, inst feature.Instance) []int {
	if t == nil || t.Root() == nil {
		slog.Error("cannot trace raw path: no tree data or missing root")
		return nil
	}
	return t.TracePath(inst)
}

func (SpawnProcessor) FindNode(h *Hierarchy, id int) *Hierarchy {
	return h.Find(id)
}

func (SpawnProcessor) AllPaths(h *Hierarchy) [][]int {
	return enumeratePaths(h)
}

/*
Collapse hides the subtree below the given hierarchy node without
altering the underlying raw tree. The node itself stays visible and
is flagged as having hidden children.
*/
func (SpawnProcessor) Collapse(h *Hierarchy) {
	if h == nil || len(h.Children) == 0 {
		return
	}
	h.Expanded = false
	h.HasHiddenChildren = true
	for _, child := range h.Children {
		child.Walk(func(d *Hierarchy) {
			d.Hidden = true
			d.Expanded = false
		})
	}
}

/*
Expand restores visibility of the subtree below the given hierarchy
node, undoing a previous Collapse.
*/
func (SpawnProcessor) Expand(h *Hierarchy) {
	if h == nil {
		return
	}
	h.Expanded = true
	h.HasHiddenChildren = false
	for _, child := range h.Children {
		child.Walk(func(d *Hierarchy) {
			d.Hidden = false
			d.Expanded = true
			d.HasHiddenChildren = false
		})
	}
}
