/*
Package highlight implements the cross-visualization highlighting
core of the explanation dashboard: per-layout tree handlers that
translate interactions into renderer calls, a scatter-plot
highlighter that maps tree nodes to the neighborhood points their
region covers, and a coordinator that keeps every registered view
consistent with one selection and one explained instance.
*/
package highlight

/*
Renderer is the apply side of tree highlighting, implemented by the
UI layer (locally or through a remote view connection). The handlers
compute WHICH nodes and links to highlight; renderers decide HOW.
*/
type Renderer interface {
	// HighlightNode marks a single node as interactively highlighted.
	HighlightNode(id int)
	// HighlightLink marks the link between a parent node and one of
	// its children as interactively highlighted.
	HighlightLink(parentID, childID int)
	// ApplyInstancePath marks the explained instance's path. The
	// styling is persistent and survives interactive resets, since
	// the coordinator reapplies it after every reset.
	ApplyInstancePath(ids []int)
	// Reset restores natural styling, clearing interactive highlights
	// and any applied instance path.
	Reset()
}

/*
PointRenderer is the apply side of scatter-plot highlighting.
*/
type PointRenderer interface {
	// HighlightPoints recolors the points at the given indexes as
	// belonging to the selected node's region and dims the rest.
	HighlightPoints(indexes []int)
	// ResetPoints restores class colors, with full opacity for points
	// belonging to the dataset and reduced opacity for the rest.
	ResetPoints(datasetMembership []bool)
}
