package highlight

import (
	"log/slog"

	"github.com/AlessandroCarella/treescope/feature"
	"github.com/AlessandroCarella/treescope/tree"
)

/*
ScatterHighlighter maps tree nodes to the neighborhood points their
decision region covers. Points are the encoded rows behind the
scatter plot, aligned by index with the projected 2D coordinates the
renderer displays.
*/
type ScatterHighlighter struct {
	tree       *tree.Tree
	points     []feature.Instance
	membership []bool
	renderer   PointRenderer
}

/*
NewScatterHighlighter takes the session tree, the encoded rows behind
the scatter plot and a PointRenderer and returns a ScatterHighlighter.
Every point is initially considered part of the dataset.
*/
func NewScatterHighlighter(t *tree.Tree, points []feature.Instance, r PointRenderer) *ScatterHighlighter {
	membership := make([]bool, len(points))
	for i := range membership {
		membership[i] = true
	}
	return &ScatterHighlighter{tree: t, points: points, membership: membership, renderer: r}
}

/*
SetDatasetMembership takes one flag per point marking whether it
belongs to the dataset (true) or is a generated neighbor (false).
Reset styling renders non-dataset points at reduced opacity.
*/
func (sh *ScatterHighlighter) SetDatasetMembership(membership []bool) {
	if len(membership) != len(sh.points) {
		slog.Warn("dataset membership length does not match point count", "points", len(sh.points), "membership", len(membership))
		return
	}
	sh.membership = membership
}

/*
HighlightPointsForNode recolors the points covered by the given
node's decision region. For a leaf the region is the set of points
consistent with every split on the root-to-leaf path; for a split
node it is the union of its descendant leaves' regions. Nothing
happens when the node cannot be resolved.
*/
func (sh *ScatterHighlighter) HighlightPointsForNode(nodeID int) {
	if sh.tree == nil || sh.tree.Node(nodeID) == nil {
		slog.Warn("cannot highlight points: unknown node", "node", nodeID)
		return
	}
	paths := sh.regionPaths(nodeID)
	var matching []int
	for i, p := range sh.points {
		for _, path := range paths {
			if sh.consistent(p, i, path) {
				matching = append(matching, i)
				break
			}
		}
	}
	sh.renderer.HighlightPoints(matching)
}

/*
ResetHighlights restores class colors and the dataset-vs-neighbor
opacity split.
*/
func (sh *ScatterHighlighter) ResetHighlights() {
	sh.renderer.ResetPoints(sh.membership)
}

func (sh *ScatterHighlighter) regionPaths(nodeID int) [][]int {
	n := sh.tree.Node(nodeID)
	if n.IsLeaf {
		return [][]int{sh.tree.PathFromRoot(nodeID)}
	}
	var paths [][]int
	for _, leaf := range sh.tree.LeafDescendants(nodeID) {
		paths = append(paths, sh.tree.PathFromRoot(leaf))
	}
	return paths
}

/*
consistent replays every split decision on the path against the
point's encoded values. A point missing the feature a split tests
does not belong to the region.
*/
func (sh *ScatterHighlighter) consistent(p feature.Instance, pointIndex int, path []int) bool {
	for i := 0; i+1 < len(path); i++ {
		n := sh.tree.Node(path[i])
		v, ok := p.Value(n.FeatureName)
		if !ok {
			slog.Warn("point is missing a split feature", "point", pointIndex, "feature", n.FeatureName)
			return false
		}
		next := *n.RightChild
		if v <= *n.Threshold {
			next = *n.LeftChild
		}
		if next != path[i+1] {
			return false
		}
	}
	return true
}
