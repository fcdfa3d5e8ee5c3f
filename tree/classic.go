package tree

import (
	"log/slog"

	"github.com/AlessandroCarella/treescope/feature"
)

/*
classicProcessor derives the hierarchy for the classic node-link
layout by scanning each split node's left/right references and
attaching the referenced nodes as children, left first.
*/
type classicProcessor struct{}

func (classicProcessor) Kind() Kind { return KindClassic }

func (classicProcessor) BuildHierarchy(t *Tree) *Hierarchy {
	if t == nil || t.Root() == nil {
		slog.Error("cannot build classic hierarchy: no tree data or missing root")
		return nil
	}
	var attach func(n *Node, parent *Hierarchy, depth int) *Hierarchy
	attach = func(n *Node, parent *Hierarchy, depth int) *Hierarchy {
		h := &Hierarchy{Node: n, Parent: parent, Depth: depth}
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

func (classicProcessor) TracePath(h *Hierarchy, inst feature.Instance) []int {
	return traceHierarchyPath(KindClassic, h, inst)
}

func (classicProcessor) FindNode(h *Hierarchy, id int) *Hierarchy {
	return h.Find(id)
}

func (classicProcessor) AllPaths(h *Hierarchy) [][]int {
	return enumeratePaths(h)
}
