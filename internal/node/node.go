package node

import (
	"fmt"
	"math"
	"slices"
)

// Unconnected is the view tag recorded by a Props node that is not bound to a view.
const Unconnected = -1

// Node is a single vertex in the animated graph. Structure (edges, view binding)
// is mutated by the registry; Value, ActiveIncoming and Mark are owned by the
// evaluator goroutine.
type Node struct {
	// Tag is the caller-assigned identifier, unique among live nodes.
	Tag int
	// Kind selects the evaluation semantics. It always matches Config.Kind().
	Kind Kind
	// Config is the immutable per-kind configuration the node was created with.
	Config Config

	// Value is the scalar output for scalar kinds. NaN until first computed.
	Value float64
	// ViewTag is the connected view for Props nodes, Unconnected otherwise.
	ViewTag int

	// Children are the tags of nodes consuming this node's output, in connect order.
	Children []int
	// Parents are the tags of nodes feeding this node, in connect order.
	Parents []int

	// ActiveIncoming counts edges from active parents during one evaluation.
	ActiveIncoming int
	// Mark is the generation stamp of the last pass that visited the node.
	Mark uint64

	// diff clamp accumulator
	lastInput float64
	primed    bool
}

// New validates cfg and returns a detached node for tag.
func New(tag int, cfg Config) (*Node, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: node %d has no configuration", ErrInvalidConfig, tag)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("node %d (%s): %w", tag, cfg.Kind(), err)
	}

	n := &Node{
		Tag:     tag,
		Kind:    cfg.Kind(),
		Config:  cfg,
		Value:   math.NaN(),
		ViewTag: Unconnected,
	}
	if v, ok := cfg.(ValueConfig); ok {
		n.Value = v.Value
	}
	return n, nil
}

// IsScalar reports whether the node produces a single number.
func (n *Node) IsScalar() bool {
	return n.Kind.IsScalar()
}

// HasChild reports whether an edge n -> tag exists.
func (n *Node) HasChild(tag int) bool {
	return slices.Contains(n.Children, tag)
}

// AddChild records the forward edge n -> tag.
func (n *Node) AddChild(tag int) {
	n.Children = append(n.Children, tag)
}

// RemoveChild drops the forward edge n -> tag. It reports whether an edge was removed.
func (n *Node) RemoveChild(tag int) bool {
	i := slices.Index(n.Children, tag)
	if i < 0 {
		return false
	}
	n.Children = slices.Delete(n.Children, i, i+1)
	return true
}

// AddParent records the back edge tag -> n.
func (n *Node) AddParent(tag int) {
	n.Parents = append(n.Parents, tag)
}

// RemoveParent drops the back edge tag -> n.
func (n *Node) RemoveParent(tag int) bool {
	i := slices.Index(n.Parents, tag)
	if i < 0 {
		return false
	}
	n.Parents = slices.Delete(n.Parents, i, i+1)
	return true
}

// Parent returns the first connected parent, which is the input of
// Interpolation nodes.
func (n *Node) Parent() (int, bool) {
	if len(n.Parents) == 0 {
		return 0, false
	}
	return n.Parents[0], true
}

// DiffClamp folds a new input sample into the running clamped value and
// stores the result in Value.
func (n *Node) DiffClamp(input float64) float64 {
	cfg := n.Config.(DiffClampConfig)
	if !n.primed {
		n.primed = true
		n.lastInput = input
		n.Value = clamp(input, cfg.Min, cfg.Max)
		return n.Value
	}
	diff := input - n.lastInput
	n.lastInput = input
	n.Value = clamp(n.Value+diff, cfg.Min, cfg.Max)
	return n.Value
}

// Truthy reports whether v selects the If branch of a Cond node.
func Truthy(v float64) bool {
	return v != 0 && !math.IsNaN(v)
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
