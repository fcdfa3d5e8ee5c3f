package highlight

import (
	"log/slog"

	"github.com/AlessandroCarella/treescope/explanation"
	"github.com/AlessandroCarella/treescope/feature"
	"github.com/AlessandroCarella/treescope/tree"
)

/*
Handler adapts one tree layout to the coordinator: it owns the
layout's TreeState and renderer and computes which nodes and links a
given interaction should highlight. One handler exists per layout
kind; the coordinator replaces it when the view re-registers.
*/
type Handler struct {
	state    *explanation.TreeState
	renderer Renderer
	// allPaths is precomputed for the blocks layout, which resolves
	// the path to a node by scanning root-to-leaf paths.
	allPaths [][]int
}

/*
NewHandler takes a TreeState and a Renderer and returns a Handler for
the state's layout kind.
*/
func NewHandler(state *explanation.TreeState, r Renderer) *Handler {
	h := &Handler{state: state, renderer: r}
	if state.Kind() == tree.KindBlocks {
		h.allPaths = state.Processor().AllPaths(state.Hierarchy())
	}
	return h
}

// Kind returns the layout kind this handler serves.
func (h *Handler) Kind() tree.Kind { return h.state.Kind() }

// State returns the handler's tree state.
func (h *Handler) State() *explanation.TreeState { return h.state }

/*
HighlightNode highlights a single node. Nothing happens when the node
cannot be resolved in the hierarchy or is currently hidden.
*/
func (h *Handler) HighlightNode(id int) {
	if !h.visible(id) {
		return
	}
	h.renderer.HighlightNode(id)
}

// visible reports whether the node resolves in the hierarchy and is
// not hidden by a collapsed ancestor.
func (h *Handler) visible(id int) bool {
	n := h.state.Processor().FindNode(h.state.Hierarchy(), id)
	return n != nil && !n.Hidden
}

/*
HighlightPath highlights every node on the path and the links between
consecutive ones. Nodes hidden in the current hierarchy are skipped,
as are links touching them.
*/
func (h *Handler) HighlightPath(path []int) {
	for _, id := range path {
		h.HighlightNode(id)
	}
	for i := 0; i+1 < len(path); i++ {
		if h.visible(path[i]) && h.visible(path[i+1]) {
			h.renderer.HighlightLink(path[i], path[i+1])
		}
	}
}

/*
HighlightDescendants highlights the subtree rooted at the given node,
nodes and internal links. The subtree is resolved on the hierarchy
and falls back to the raw node array when the node is not part of the
hierarchy.
*/
func (h *Handler) HighlightDescendants(id int) {
	root := h.state.Processor().FindNode(h.state.Hierarchy(), id)
	if root != nil {
		root.Walk(func(d *tree.Hierarchy) {
			if d.Hidden {
				return
			}
			h.renderer.HighlightNode(d.Node.ID)
			if d.Parent != nil && d.Node.ID != id && !d.Parent.Hidden {
				h.renderer.HighlightLink(d.Parent.Node.ID, d.Node.ID)
			}
		})
		return
	}
	t := h.state.Tree()
	for _, did := range t.Descendants(id) {
		h.renderer.HighlightNode(did)
		if pid, ok := t.Parent(did); ok && did != id {
			h.renderer.HighlightLink(pid, did)
		}
	}
}

// ResetHighlights restores the view to its natural styling.
func (h *Handler) ResetHighlights() {
	h.renderer.Reset()
}

/*
FindPath traces an instance through this layout's hierarchy and
returns the traversed node ids. A partial instance yields a partial
path, never an error.
*/
func (h *Handler) FindPath(inst feature.Instance) []int {
	return h.state.Processor().TracePath(h.state.Hierarchy(), inst)
}

/*
HighlightInstancePath applies the persistent instance-path styling.
Paths shorter than two nodes are not applied, a bare root carries no
information.
*/
func (h *Handler) HighlightInstancePath(path []int) {
	if len(path) < 2 {
		return
	}
	h.renderer.ApplyInstancePath(path)
}

/*
PathToNode resolves the root-to-node path for this layout. The
classic layout walks hierarchy parent links, the blocks layout scans
its precomputed root-to-leaf paths and truncates at the node, and the
spawn layout prefers the cached instance path and falls back to the
raw node array.
*/
func (h *Handler) PathToNode(id int) []int {
	switch h.state.Kind() {
	case tree.KindBlocks:
		for _, path := range h.allPaths {
			for i, nid := range path {
				if nid == id {
					return append([]int(nil), path[:i+1]...)
				}
			}
		}
		return nil
	case tree.KindSpawn:
		if cached := h.state.InstancePath(); len(cached) > 0 {
			for i, nid := range cached {
				if nid == id {
					return append([]int(nil), cached[:i+1]...)
				}
			}
		}
		return h.state.Tree().PathFromRoot(id)
	default:
		n := h.state.Processor().FindNode(h.state.Hierarchy(), id)
		if n == nil {
			slog.Warn("cannot resolve path to node", "kind", h.state.Kind(), "node", id)
			return nil
		}
		return n.PathFromRoot()
	}
}
