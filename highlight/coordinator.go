package highlight

import (
	"log/slog"
	"sync"

	"github.com/AlessandroCarella/treescope/feature"
	"github.com/AlessandroCarella/treescope/tree"
)

/*
SelectionState is a snapshot of what the coordinator currently
considers selected and explained.
*/
type SelectionState struct {
	Selected *int
	Instance feature.Instance
}

/*
Coordinator keeps every registered view consistent: one selected node
highlighted across all tree layouts and the scatter plot, and one
explained instance whose path stays visible through interactive
resets. All methods are safe for concurrent use.
*/
type Coordinator struct {
	mu       sync.Mutex
	handlers map[tree.Kind]*Handler
	scatter  *ScatterHighlighter
	selected *int
	instance feature.Instance
}

// NewCoordinator returns a Coordinator with no views registered.
func NewCoordinator() *Coordinator {
	return &Coordinator{handlers: make(map[tree.Kind]*Handler)}
}

/*
RegisterTreeHandler takes a layout kind and a handler and registers
the handler for that kind, replacing any previous one. When an
instance is already explained its path is applied to the new handler
immediately, so views joining late render the same state as the rest.
*/
func (c *Coordinator) RegisterTreeHandler(kind tree.Kind, h *Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[kind] = h
	if c.instance != nil {
		h.State().SetInstance(c.instance)
		h.HighlightInstancePath(h.State().InstancePath())
	}
}

/*
RegisterScatterHighlighter registers the scatter-plot highlighter,
replacing any previous one, and applies its reset styling.
*/
func (c *Coordinator) RegisterScatterHighlighter(sh *ScatterHighlighter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scatter = sh
	sh.ResetHighlights()
}

/*
CoordinateHighlighting handles a node click in the view of the given
source kind. Clicking the selected node again deselects it and
returns every view to the idle state. Clicking any other node resets
interactive highlights, selects it, highlights the path to it in
every tree layout (falling back to the bare node when no path
resolves), additionally highlights the subtree of a split node, and
recolors the scatter-plot points its region covers.
*/
func (c *Coordinator) CoordinateHighlighting(nodeID int, isLeaf bool, sourceKind tree.Kind) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected != nil && *c.selected == nodeID {
		c.resetInteractive()
		c.selected = nil
		return
	}
	c.resetInteractive()
	id := nodeID
	c.selected = &id
	slog.Debug("coordinating highlight", "node", nodeID, "leaf", isLeaf, "source", sourceKind)
	for _, h := range c.handlers {
		path := h.PathToNode(nodeID)
		if len(path) > 0 {
			h.HighlightPath(path)
		} else {
			h.HighlightNode(nodeID)
		}
		if !isLeaf {
			h.HighlightDescendants(nodeID)
		}
	}
	if c.scatter != nil {
		c.scatter.HighlightPointsForNode(nodeID)
	}
}

/*
SetExplainedInstance takes the explained instance, stores it, traces
it through every registered layout and applies the persistent
instance-path styling. The instance path is independent of the
selection and survives interactive resets.
*/
func (c *Coordinator) SetExplainedInstance(inst feature.Instance) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.instance = inst
	for _, h := range c.handlers {
		h.State().SetInstance(inst)
		h.HighlightInstancePath(h.State().InstancePath())
	}
}

/*
ResetAllHighlights clears interactive highlights in every view,
deselects, and reapplies the explained instance's path. Calling it
again with nothing highlighted changes nothing.
*/
func (c *Coordinator) ResetAllHighlights() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetInteractive()
	c.selected = nil
}

/*
ResetSession clears the selection AND the explained instance, used
when the underlying dataset or classifier changes.
*/
func (c *Coordinator) ResetSession() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.instance = nil
	c.selected = nil
	for _, h := range c.handlers {
		h.State().SetInstance(nil)
		h.ResetHighlights()
	}
	if c.scatter != nil {
		c.scatter.ResetHighlights()
	}
}

// Selection returns a snapshot of the current selection state.
func (c *Coordinator) Selection() SelectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := SelectionState{Instance: c.instance}
	if c.selected != nil {
		id := *c.selected
		s.Selected = &id
	}
	return s
}

/*
resetInteractive restores natural styling everywhere and reapplies
the persistent instance paths. Callers hold the mutex.
*/
func (c *Coordinator) resetInteractive() {
	for _, h := range c.handlers {
		h.ResetHighlights()
		h.HighlightInstancePath(h.State().InstancePath())
	}
	if c.scatter != nil {
		c.scatter.ResetHighlights()
	}
}
