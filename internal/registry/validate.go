package registry

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/vk/animgraph/internal/ctxlog"
	"github.com/vk/animgraph/internal/node"
)

// ErrInvalidGraph is returned by Validate when the graph has dangling or
// ill-typed references.
var ErrInvalidGraph = errors.New("invalid graph")

// Validate checks every configured reference (mappings, input lists) against
// the live nodes. Edges are always consistent; configured references are not,
// because callers may drop a node that is still mapped elsewhere.
func (r *Registry) Validate(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	var errs []string

	for _, tag := range r.Tags() {
		n := r.nodes[tag]
		for _, in := range node.Inputs(n.Config) {
			dep, ok := r.nodes[in]
			if !ok {
				errs = append(errs, fmt.Sprintf("node %d (%s): references missing node %d", tag, n.Kind, in))
				continue
			}
			if needsScalarInputs(n.Kind) && !dep.IsScalar() {
				errs = append(errs, fmt.Sprintf("node %d (%s): input %d is %s, want a scalar node", tag, n.Kind, in, dep.Kind))
			}
		}
		if n.Kind == node.KindInterpolation && len(n.Parents) == 0 {
			logger.Debug("Interpolation node has no parent yet.", "tag", tag)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w:\n  - %s", ErrInvalidGraph, strings.Join(errs, "\n  - "))
	}
	logger.Debug("Graph validation passed.", "nodes", len(r.nodes))
	return nil
}

// DetectCycles checks the whole graph for cycles. It returns a non-nil error
// naming the tags on the first cycle found.
func (r *Registry) DetectCycles() error {
	if cycle := r.FindCycle(nil); cycle != nil {
		return fmt.Errorf("cycle detected involving nodes %v", cycle)
	}
	return nil
}

// FindCycle runs a depth-first search over forward edges, restricted to nodes
// accepted by within (all nodes when within is nil), and returns the tags of
// one cycle in edge order, or nil when the restricted graph is acyclic.
func (r *Registry) FindCycle(within func(*node.Node) bool) []int {
	// permanent: fully explored nodes not on a cycle.
	// onStack: nodes in the current recursion path, mapped to their position.
	permanent := make(map[int]bool)
	onStack := make(map[int]int)
	var path []int

	var visit func(n *node.Node) []int
	visit = func(n *node.Node) []int {
		if permanent[n.Tag] {
			return nil
		}
		if pos, ok := onStack[n.Tag]; ok {
			return slices.Clone(path[pos:])
		}
		onStack[n.Tag] = len(path)
		path = append(path, n.Tag)

		for _, c := range n.Children {
			child, ok := r.nodes[c]
			if !ok || (within != nil && !within(child)) {
				continue
			}
			if cycle := visit(child); cycle != nil {
				return cycle
			}
		}

		path = path[:len(path)-1]
		delete(onStack, n.Tag)
		permanent[n.Tag] = true
		return nil
	}

	for _, tag := range r.Tags() {
		n := r.nodes[tag]
		if within != nil && !within(n) {
			continue
		}
		if cycle := visit(n); cycle != nil {
			return cycle
		}
	}
	return nil
}

// Tags returns all live tags in ascending order.
func (r *Registry) Tags() []int {
	tags := make([]int, 0, len(r.nodes))
	for tag := range r.nodes {
		tags = append(tags, tag)
	}
	slices.Sort(tags)
	return tags
}

func needsScalarInputs(k node.Kind) bool {
	switch k {
	case node.KindAddition, node.KindMultiplication, node.KindDiffClamp, node.KindCond:
		return true
	default:
		return false
	}
}
