package tree

import (
	"log/slog"

	"github.com/AlessandroCarella/treescope/feature"
)

/*
blocksProcessor derives the hierarchy for the depth-aligned blocks
layout. Parents are resolved through the tree's precomputed
child-to-parent map rather than by re-scanning the node array for
each node, which keeps hierarchy construction linear in the number
of nodes without changing the resulting structure.
*/
type blocksProcessor struct{}

func (blocksProcessor) Kind() Kind { return KindBlocks }

func (blocksProcessor) BuildHierarchy(t *Tree) *Hierarchy {
	if t == nil || t.Root() == nil {
		slog.Error("cannot build blocks hierarchy: no tree data or missing root")
		return nil
	}
	byID := make(map[int]*Hierarchy, t.Len())
	for _, n := range t.Nodes() {
		node := t.Node(n.ID)
		byID[n.ID] = &Hierarchy{Node: node}
	}
	for _, n := range t.Nodes() {
		parentID, ok := t.Parent(n.ID)
		if !ok {
			continue
		}
		byID[n.ID].Parent = byID[parentID]
	}
	// Attach children left before right so sibling order is stable
	// regardless of node-array order.
	for _, n := range t.Nodes() {
		h := byID[n.ID]
		if !n.Split() {
			continue
		}
		h.Children = []*Hierarchy{byID[*n.LeftChild], byID[*n.RightChild]}
	}
	root := byID[RootID]
	root.Walk(func(h *Hierarchy) {
		if h.Parent != nil {
			h.Depth = h.Parent.Depth + 1
		}
	})
	return root
}

func (blocksProcessor) TracePath(h *Hierarchy, inst feature.Instance) []int {
	return traceHierarchyPath(KindBlocks, h, inst)
}

func (blocksProcessor) FindNode(h *Hierarchy, id int) *Hierarchy {
	return h.Find(id)
}

func (blocksProcessor) AllPaths(h *Hierarchy) [][]int {
	return enumeratePaths(h)
}
