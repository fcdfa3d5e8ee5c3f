package tree

/*
Hierarchy is a parent-linked view of a raw tree, derived by one of
the processor strategies. It re-expresses the same logical content as
the raw node array and is rebuilt whenever the raw data changes. Only
the spawn layout mutates it in place, by toggling the visibility
flags when subtrees are collapsed or expanded; the raw array is never
altered.
*/
type Hierarchy struct {
	Node     *Node
	Parent   *Hierarchy
	Children []*Hierarchy
	Depth    int

	// Visibility flags used by the spawn layout's collapsible
	// subtrees. A hidden node is still part of the hierarchy but is
	// not currently rendered.
	Hidden            bool
	HasHiddenChildren bool
	Expanded          bool
}

/*
Find takes a node id and returns the first hierarchy node with that
id found depth-first, or nil. Node ids are unique in well-formed
trees, so the result is deterministic.
*/
func (h *Hierarchy) Find(id int) *Hierarchy {
	if h == nil {
		return nil
	}
	if h.Node.ID == id {
		return h
	}
	for _, child := range h.Children {
		if found := child.Find(id); found != nil {
			return found
		}
	}
	return nil
}

/*
Walk runs the given function on the hierarchy node and every node
below it, parents before children.
*/
func (h *Hierarchy) Walk(f func(*Hierarchy)) {
	if h == nil {
		return
	}
	f(h)
	for _, child := range h.Children {
		child.Walk(f)
	}
}

/*
PathFromRoot returns the node ids from the hierarchy's root to this
node, both included, by walking the parent links.
*/
func (h *Hierarchy) PathFromRoot() []int {
	var reversed []int
	for current := h; current != nil; current = current.Parent {
		reversed = append(reversed, current.Node.ID)
	}
	path := make([]int, len(reversed))
	for i, id := range reversed {
		path[len(reversed)-1-i] = id
	}
	return path
}

// child returns the direct child with the given node id or nil.
func (h *Hierarchy) child(id int) *Hierarchy {
	for _, c := range h.Children {
		if c.Node.ID == id {
			return c
		}
	}
	return nil
}
