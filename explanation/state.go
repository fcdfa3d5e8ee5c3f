package explanation

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AlessandroCarella/treescope/feature"
	"github.com/AlessandroCarella/treescope/tree"
)

/*
TreeState holds everything one tree layout needs between
interactions: the raw tree, the hierarchy derived for the layout's
kind, the explained instance, and its cached root-to-leaf path. The
hierarchy and cached path are derived data and are rebuilt whenever
the raw tree or the instance changes; they are never serialized. A
TreeState is shared between the coordinator and the HTTP handlers, so
its methods are safe for concurrent use.
*/
type TreeState struct {
	kind      tree.Kind
	tree      *tree.Tree
	processor tree.Processor

	mu           sync.RWMutex
	hierarchy    *tree.Hierarchy
	instance     feature.Instance
	instancePath []int
}

/*
NewTreeState takes a layout kind and a tree and returns a TreeState
with the hierarchy for that kind already built, or an error if the
kind is unknown.
*/
func NewTreeState(kind tree.Kind, t *tree.Tree) (*TreeState, error) {
	p, err := tree.For(kind)
	if err != nil {
		return nil, err
	}
	return &TreeState{
		kind:      kind,
		tree:      t,
		processor: p,
		hierarchy: p.BuildHierarchy(t),
	}, nil
}

// Kind returns the layout kind this state serves.
func (s *TreeState) Kind() tree.Kind { return s.kind }

// Tree returns the raw tree.
func (s *TreeState) Tree() *tree.Tree { return s.tree }

// Processor returns the strategy for this state's kind.
func (s *TreeState) Processor() tree.Processor { return s.processor }

// Hierarchy returns the derived hierarchy, which may be nil if the
// raw tree was invalid.
func (s *TreeState) Hierarchy() *tree.Hierarchy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hierarchy
}

/*
SetInstance takes the explained instance, stores it and recomputes
the cached instance path. A nil instance clears both.
*/
func (s *TreeState) SetInstance(inst feature.Instance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setInstance(inst)
}

func (s *TreeState) setInstance(inst feature.Instance) {
	s.instance = inst
	if inst == nil {
		s.instancePath = nil
		return
	}
	s.instancePath = s.processor.TracePath(s.hierarchy, inst)
}

// Instance returns the explained instance, or nil when none is set.
func (s *TreeState) Instance() feature.Instance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.instance
}

/*
InstancePath returns the cached root-to-leaf path of the explained
instance, or nil when no instance is set.
*/
func (s *TreeState) InstancePath() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.instancePath
}

/*
RebuildHierarchy derives the hierarchy from the raw tree again,
discarding visibility state, and recomputes the cached instance path.
*/
func (s *TreeState) RebuildHierarchy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hierarchy = s.processor.BuildHierarchy(s.tree)
	s.setInstance(s.instance)
}

/*
Session binds one ingested explanation payload to the state derived
from it: the validated tree, the feature decoder, and one TreeState
per layout kind.
*/
type Session struct {
	ID          string
	CreatedAt   time.Time
	Explanation *Explanation
	Tree        *tree.Tree
	Decoder     *feature.Decoder
	States      map[tree.Kind]*TreeState
}

/*
NewSession takes an explanation payload and returns a Session with a
fresh id, the validated tree, the feature decoder built from the
payload's dataset descriptor, per-kind tree states, and the payload's
encoded instance already applied to every state. It returns an error
if the payload's tree is invalid.
*/
func NewSession(e *Explanation) (*Session, error) {
	return newSession(e, uuid.NewString(), time.Now().UTC())
}

func newSession(e *Explanation, id string, createdAt time.Time) (*Session, error) {
	t, err := tree.New(e.TreeNodes)
	if err != nil {
		return nil, fmt.Errorf("building session tree: %w", err)
	}
	s := &Session{
		ID:          id,
		CreatedAt:   createdAt,
		Explanation: e,
		Tree:        t,
		Decoder:     feature.NewDecoder(e.FeatureMapping.DatasetDescriptor),
		States:      make(map[tree.Kind]*TreeState, len(tree.Kinds())),
	}
	for _, kind := range tree.Kinds() {
		state, err := NewTreeState(kind, t)
		if err != nil {
			return nil, err
		}
		if len(e.EncodedInstance) > 0 {
			state.SetInstance(e.EncodedInstance)
		}
		s.States[kind] = state
	}
	return s, nil
}

/*
SetInstance takes an encoded instance and applies it to every
per-kind tree state, recomputing each cached instance path. A nil
instance clears them.
*/
func (s *Session) SetInstance(inst feature.Instance) {
	for _, state := range s.States {
		state.SetInstance(inst)
	}
}
