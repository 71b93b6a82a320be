package engine

import (
	"context"
	"fmt"
	"slices"

	"github.com/vk/animgraph/internal/ctxlog"
	"github.com/vk/animgraph/internal/driver"
	"github.com/vk/animgraph/internal/node"
	"github.com/vk/animgraph/internal/sink"
)

// decomposedMatrixKey is the property a Transform node contributes.
const decomposedMatrixKey = "decomposedMatrix"

// maxMappingDepth bounds Style/Transform/Props nesting when building a
// property map. Mappings are not edges, so the cycle check does not see them.
const maxMappingDepth = 32

// Frame advances drivers to frameNanos, re-evaluates the active subgraph and
// returns the updates for connected views in collection order. On error no
// updates are returned and the graph must be considered broken.
func (e *Engine) Frame(ctx context.Context, frameNanos int64) ([]sink.UpdateRecord, error) {
	logger := ctxlog.FromContext(ctx)

	seeds, finished, err := e.seed(frameNanos)
	if err != nil {
		return nil, err
	}

	active := e.activate(seeds)
	visited, err := e.propagate(seeds)
	if err != nil {
		e.collector.Records()
		return nil, err
	}
	if visited != len(active) {
		e.collector.Records()
		cerr := e.cycleError(active)
		logger.Error("Cycle detected in animated graph.", "active", len(active), "visited", visited, "stuck", cerr.Stuck)
		return nil, cerr
	}

	updates := e.collector.Records()
	e.stats = Stats{
		FrameNanos: frameNanos,
		Active:     len(active),
		Visited:    visited,
		Updates:    len(updates),
		Drivers:    len(e.drivers),
		Finished:   finished,
	}
	if len(active) > 0 {
		logger.Debug("Frame evaluated.", "frame_nanos", frameNanos, "active", len(active), "updates", len(updates), "drivers", len(e.drivers))
	}
	return updates, nil
}

// seed steps every driver and returns the dirty values followed by the driver
// targets. Drivers whose target is gone end as unfinished.
func (e *Engine) seed(frameNanos int64) ([]*node.Node, int, error) {
	seeds := e.reg.TakeDirty()
	running := make([]*driver.Driver, 0, len(e.drivers))
	finished := 0

	for i, d := range e.drivers {
		if !e.reg.IsLive(d.Target) {
			d.Stop()
			e.completions = append(e.completions, completion{d: d, finished: false})
			continue
		}
		if err := d.Step(frameNanos); err != nil {
			e.drivers = append(running, e.drivers[i:]...)
			return nil, finished, fmt.Errorf("step animation on node %d: %w", d.Target.Tag, err)
		}
		seeds = append(seeds, d.Target)
		if d.State() == driver.Finished {
			finished++
			e.completions = append(e.completions, completion{d: d, finished: true})
			continue
		}
		running = append(running, d)
	}

	e.drivers = running
	return seeds, finished, nil
}

// activate stamps every node reachable from seeds and counts, for each, the
// edges arriving from other active nodes. It returns the active nodes in
// visit order.
func (e *Engine) activate(seeds []*node.Node) []*node.Node {
	gen := e.nextGeneration()
	var active []*node.Node
	queue := make([]*node.Node, 0, len(seeds))

	mark := func(n *node.Node) {
		if n.Mark == gen {
			return
		}
		n.Mark = gen
		n.ActiveIncoming = 0
		active = append(active, n)
		queue = append(queue, n)
	}

	for _, n := range seeds {
		mark(n)
	}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, tag := range n.Children {
			child, ok := e.reg.Get(tag)
			if !ok {
				continue
			}
			mark(child)
			child.ActiveIncoming++
		}
	}
	return active
}

// propagate evaluates the active subgraph in topological order and returns
// how many nodes it reached.
func (e *Engine) propagate(seeds []*node.Node) (int, error) {
	gen := e.nextGeneration()
	queue := make([]*node.Node, 0, len(seeds))
	for _, n := range seeds {
		if n.ActiveIncoming == 0 && n.Mark != gen {
			n.Mark = gen
			queue = append(queue, n)
		}
	}

	visited := 0
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		visited++

		if err := e.evaluate(n); err != nil {
			return visited, err
		}
		for _, tag := range n.Children {
			child, ok := e.reg.Get(tag)
			if !ok {
				continue
			}
			child.ActiveIncoming--
			if child.ActiveIncoming == 0 {
				child.Mark = gen
				queue = append(queue, child)
			}
		}
	}
	return visited, nil
}

// evaluate recomputes n from its already-updated inputs.
func (e *Engine) evaluate(n *node.Node) error {
	switch n.Kind {
	case node.KindValue:
		// Written by SetValue or a driver before the pass.
	case node.KindInterpolation:
		cfg := n.Config.(node.InterpolationConfig)
		tag, ok := n.Parent()
		if !ok {
			return nil
		}
		parent, ok := e.reg.Get(tag)
		if !ok {
			return fmt.Errorf("%w: node %d reads missing parent %d", ErrDanglingReference, n.Tag, tag)
		}
		n.Value = node.Interpolate(parent.Value, cfg.InputRange, cfg.OutputRange)
	case node.KindAddition:
		cfg := n.Config.(node.AdditionConfig)
		sum := 0.0
		for _, tag := range cfg.Input {
			v, err := e.input(n, tag)
			if err != nil {
				return err
			}
			sum += v
		}
		n.Value = sum
	case node.KindMultiplication:
		cfg := n.Config.(node.MultiplicationConfig)
		product := 1.0
		for _, tag := range cfg.Input {
			v, err := e.input(n, tag)
			if err != nil {
				return err
			}
			product *= v
		}
		n.Value = product
	case node.KindDiffClamp:
		cfg := n.Config.(node.DiffClampConfig)
		v, err := e.input(n, cfg.Input)
		if err != nil {
			return err
		}
		n.DiffClamp(v)
	case node.KindCond:
		cfg := n.Config.(node.CondConfig)
		cond, err := e.input(n, cfg.Condition)
		if err != nil {
			return err
		}
		branch := cfg.Else
		if node.Truthy(cond) {
			branch = cfg.If
		}
		v, err := e.input(n, branch)
		if err != nil {
			return err
		}
		n.Value = v
	case node.KindStyle, node.KindTransform:
		// Contributed when an enclosing Props node builds its map.
	case node.KindProps:
		if n.ViewTag <= 0 {
			return nil
		}
		cfg := n.Config.(node.PropsConfig)
		props := make(map[string]any, len(cfg.Props))
		if err := e.contributeAll(n, cfg.Props, props, 0); err != nil {
			return err
		}
		e.collector.Add(n.ViewTag, props)
	default:
		return fmt.Errorf("node %d has unknown kind %s", n.Tag, n.Kind)
	}
	return nil
}

func (e *Engine) input(owner *node.Node, tag int) (float64, error) {
	in, ok := e.reg.Get(tag)
	if !ok {
		return 0, fmt.Errorf("%w: node %d (%s) reads input %d", ErrDanglingReference, owner.Tag, owner.Kind, tag)
	}
	return in.Value, nil
}

// contributeAll writes the contribution of every mapped node into out, in
// key order.
func (e *Engine) contributeAll(owner *node.Node, mapping map[string]int, out map[string]any, depth int) error {
	for _, key := range node.SortedKeys(mapping) {
		tag := mapping[key]
		n, ok := e.reg.Get(tag)
		if !ok {
			return fmt.Errorf("%w: node %d (%s) maps %q to node %d", ErrDanglingReference, owner.Tag, owner.Kind, key, tag)
		}
		if err := e.contribute(key, n, out, depth); err != nil {
			return err
		}
	}
	return nil
}

// contribute writes the property contribution of n under key. Style and
// Props nodes flatten their entries into out and ignore key.
func (e *Engine) contribute(key string, n *node.Node, out map[string]any, depth int) error {
	if depth > maxMappingDepth {
		return fmt.Errorf("%w: property mapping through node %d nests deeper than %d", ErrCycle, n.Tag, maxMappingDepth)
	}
	switch n.Kind {
	case node.KindValue, node.KindInterpolation, node.KindAddition, node.KindMultiplication, node.KindDiffClamp, node.KindCond:
		out[key] = n.Value
	case node.KindStyle:
		return e.contributeAll(n, n.Config.(node.StyleConfig).Style, out, depth+1)
	case node.KindProps:
		return e.contributeAll(n, n.Config.(node.PropsConfig).Props, out, depth+1)
	case node.KindTransform:
		cfg := n.Config.(node.TransformConfig)
		matrix := make(map[string]any, len(cfg.Animated)+len(cfg.Statics))
		if err := e.contributeAll(n, cfg.Animated, matrix, depth+1); err != nil {
			return err
		}
		for _, k := range node.SortedKeys(cfg.Statics) {
			matrix[k] = cfg.Statics[k].Value()
		}
		out[decomposedMatrixKey] = matrix
	default:
		return fmt.Errorf("node %d has unknown kind %s", n.Tag, n.Kind)
	}
	return nil
}

// cycleError collects the active nodes that pass 2 never reached and walks
// them for a concrete cycle.
func (e *Engine) cycleError(active []*node.Node) *CycleError {
	gen := e.generation
	stuck := make(map[*node.Node]bool)
	var tags []int
	for _, n := range active {
		if n.Mark != gen {
			stuck[n] = true
			tags = append(tags, n.Tag)
		}
	}
	slices.Sort(tags)
	return &CycleError{
		Stuck: tags,
		Cycle: e.reg.FindCycle(func(n *node.Node) bool { return stuck[n] }),
	}
}
