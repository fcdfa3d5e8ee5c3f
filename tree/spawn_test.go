package tree_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlessandroCarella/treescope/feature"
	"github.com/AlessandroCarella/treescope/tree"
)

func TestSpawnCollapseExpand(t *testing.T) {
	tr := adultTree(t)
	p := tree.SpawnProcessor{}
	h := p.BuildHierarchy(tr)
	require.NotNil(t, h)

	// Freshly built hierarchies start fully expanded and visible.
	h.Walk(func(d *tree.Hierarchy) {
		assert.True(t, d.Expanded, "node %d", d.Node.ID)
		assert.False(t, d.Hidden, "node %d", d.Node.ID)
		assert.False(t, d.HasHiddenChildren, "node %d", d.Node.ID)
	})

	split := h.Find(2)
	require.NotNil(t, split)
	p.Collapse(split)

	assert.False(t, split.Hidden)
	assert.False(t, split.Expanded)
	assert.True(t, split.HasHiddenChildren)
	assert.True(t, h.Find(3).Hidden)
	assert.True(t, h.Find(4).Hidden)
	assert.False(t, h.Find(1).Hidden)

	p.Expand(split)
	h.Walk(func(d *tree.Hierarchy) {
		assert.False(t, d.Hidden, "node %d", d.Node.ID)
		assert.True(t, d.Expanded, "node %d", d.Node.ID)
		assert.False(t, d.HasHiddenChildren, "node %d", d.Node.ID)
	})
}

func TestSpawnCollapseLeafIsNoop(t *testing.T) {
	tr := adultTree(t)
	p := tree.SpawnProcessor{}
	h := p.BuildHierarchy(tr)
	leaf := h.Find(4)
	require.NotNil(t, leaf)
	p.Collapse(leaf)
	assert.True(t, leaf.Expanded)
	assert.False(t, leaf.HasHiddenChildren)
	p.Collapse(nil)
	p.Expand(nil)
}

// Collapsing a subtree must not disturb raw-array traversal, which is
// how the spawn layout traces instances through hidden regions.
func TestSpawnTraceRawPathIgnoresVisibility(t *testing.T) {
	tr := adultTree(t)
	p := tree.SpawnProcessor{}
	h := p.BuildHierarchy(tr)
	inst := feature.Instance{"age": 45, "sex_male": 1}

	want := []int{0, 2, 4}
	assert.Equal(t, want, p.TraceRawPath(tr, inst))

	p.Collapse(h.Find(2))
	assert.Equal(t, want, p.TraceRawPath(tr, inst))
	assert.Nil(t, p.TraceRawPath(nil, inst))
}
