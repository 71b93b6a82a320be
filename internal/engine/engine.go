package engine

import (
	"fmt"
	"slices"

	"github.com/vk/animgraph/internal/driver"
	"github.com/vk/animgraph/internal/node"
	"github.com/vk/animgraph/internal/registry"
	"github.com/vk/animgraph/internal/sink"
)

// Stats describes the most recent frame.
type Stats struct {
	FrameNanos int64
	Active     int
	Visited    int
	Updates    int
	Drivers    int
	Finished   int
}

type completion struct {
	d        *driver.Driver
	finished bool
}

// Engine evaluates the animated graph frame by frame.
type Engine struct {
	reg     *registry.Registry
	drivers []*driver.Driver

	// generation is the stamp of the most recent pass; 0 means unmarked.
	generation uint64

	// completions wait for the current frame's updates to be emitted.
	completions []completion

	collector sink.Collector
	stats     Stats

	onEnded func(finished bool)
}

// New creates an engine over an empty registry.
func New() *Engine {
	return &Engine{reg: registry.New()}
}

// Registry exposes the node arena for inspection. Callers must not mutate it
// except through the Engine.
func (e *Engine) Registry() *registry.Registry {
	return e.reg
}

// Node returns the live node registered under tag.
func (e *Engine) Node(tag int) (*node.Node, bool) {
	return e.reg.Get(tag)
}

// Value returns the scalar output of the node registered under tag.
func (e *Engine) Value(tag int) (float64, error) {
	n, ok := e.reg.Get(tag)
	if !ok {
		return 0, fmt.Errorf("value of node %d: %w", tag, registry.ErrNodeNotFound)
	}
	if !n.IsScalar() {
		return 0, fmt.Errorf("value of node %d: %s is not scalar: %w", tag, n.Kind, registry.ErrWrongKind)
	}
	return n.Value, nil
}

// CreateNode adds a node to the graph.
func (e *Engine) CreateNode(tag int, cfg node.Config) error {
	_, err := e.reg.Create(tag, cfg)
	return err
}

// DropNode removes a node from the graph. Drivers still targeting it are
// completed as unfinished on the next frame.
func (e *Engine) DropNode(tag int) error {
	_, err := e.reg.Drop(tag)
	return err
}

// SetValue assigns a Value node and schedules its dependents for the next frame.
func (e *Engine) SetValue(tag int, v float64) error {
	return e.reg.SetValue(tag, v)
}

// ConnectNodes adds the edge parent -> child.
func (e *Engine) ConnectNodes(parent, child int) error {
	return e.reg.Connect(parent, child)
}

// DisconnectNodes removes the edge parent -> child.
func (e *Engine) DisconnectNodes(parent, child int) error {
	return e.reg.Disconnect(parent, child)
}

// ConnectNodeToView binds a Props node to a view.
func (e *Engine) ConnectNodeToView(tag, viewTag int) error {
	return e.reg.ConnectToView(tag, viewTag)
}

// DisconnectNodeFromView unbinds a Props node from a view.
func (e *Engine) DisconnectNodeFromView(tag, viewTag int) error {
	return e.reg.DisconnectFromView(tag, viewTag)
}

// StartAnimation attaches a new driver to the Value node under tag. The
// driver first steps on the next frame.
func (e *Engine) StartAnimation(tag int, cfg driver.Config, onComplete driver.CompletionFunc) error {
	n, err := e.reg.LookupKind(tag, node.KindValue)
	if err != nil {
		return fmt.Errorf("start animation: %w", err)
	}
	d, err := driver.New(n, cfg, onComplete)
	if err != nil {
		return fmt.Errorf("start animation on node %d: %w", tag, err)
	}
	e.drivers = append(e.drivers, d)
	return nil
}

// StopAnimation stops every driver targeting the node under tag. Their
// callbacks fire with finished=false after the next frame.
func (e *Engine) StopAnimation(tag int) error {
	n, err := e.reg.LookupKind(tag, node.KindValue)
	if err != nil {
		return fmt.Errorf("stop animation: %w", err)
	}
	e.drivers = slices.DeleteFunc(e.drivers, func(d *driver.Driver) bool {
		if d.Target != n {
			return false
		}
		d.Stop()
		e.completions = append(e.completions, completion{d: d, finished: false})
		return true
	})
	return nil
}

// ActiveDrivers returns the number of running drivers.
func (e *Engine) ActiveDrivers() int {
	return len(e.drivers)
}

// HasWork reports whether another frame is needed: drivers are running,
// values were set, or completion callbacks are pending.
func (e *Engine) HasWork() bool {
	return len(e.drivers) > 0 || e.reg.HasDirty() || len(e.completions) > 0
}

// Stats returns the figures of the most recent frame.
func (e *Engine) Stats() Stats {
	return e.stats
}

// RunCompletions fires the completion callbacks gathered since the last call,
// in the order the drivers ended. It returns how many fired.
func (e *Engine) RunCompletions() int {
	pending := e.completions
	e.completions = nil
	for _, c := range pending {
		c.d.Complete(c.finished)
		if e.onEnded != nil {
			e.onEnded(c.finished)
		}
	}
	return len(pending)
}

// ObserveCompletions registers fn to be called after every completion
// callback, e.g. to count outcomes.
func (e *Engine) ObserveCompletions(fn func(finished bool)) {
	e.onEnded = fn
}

// Shutdown stops every driver and fires all outstanding callbacks. Drivers
// that had not finished report finished=false.
func (e *Engine) Shutdown() int {
	for _, d := range e.drivers {
		d.Stop()
		e.completions = append(e.completions, completion{d: d, finished: false})
	}
	e.drivers = nil
	return e.RunCompletions()
}

// nextGeneration advances the stamp, skipping the reserved zero on wrap.
func (e *Engine) nextGeneration() uint64 {
	e.generation++
	if e.generation == 0 {
		e.generation = 1
	}
	return e.generation
}
