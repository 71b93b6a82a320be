package registry

import (
	"errors"
	"fmt"

	"github.com/vk/animgraph/internal/node"
)

var (
	// ErrNodeNotFound is returned when a command refers to an unknown tag.
	ErrNodeNotFound = errors.New("node not found")
	// ErrTagInUse is returned when creating a node under a live tag.
	ErrTagInUse = errors.New("tag already in use")
	// ErrWrongKind is returned when an operation does not apply to the node's kind.
	ErrWrongKind = errors.New("wrong node kind")
	// ErrViewAlreadyConnected is returned when a Props node is already bound to a view.
	ErrViewAlreadyConnected = errors.New("props node already connected to a view")
	// ErrAlreadyConnected is returned when the edge being added exists.
	ErrAlreadyConnected = errors.New("nodes already connected")
	// ErrNotConnected is returned when the edge being removed does not exist.
	ErrNotConnected = errors.New("nodes not connected")
)

// Registry is the arena of live nodes.
type Registry struct {
	nodes map[int]*node.Node

	// dirty holds Value nodes set since the last TakeDirty, in SetValue order.
	dirty    []*node.Node
	dirtySet map[*node.Node]struct{}
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		nodes:    make(map[int]*node.Node),
		dirtySet: make(map[*node.Node]struct{}),
	}
}

// Len returns the number of live nodes.
func (r *Registry) Len() int {
	return len(r.nodes)
}

// Get returns the live node registered under tag.
func (r *Registry) Get(tag int) (*node.Node, bool) {
	n, ok := r.nodes[tag]
	return n, ok
}

// IsLive reports whether n is still the node registered under its tag. A
// dropped node, or one whose tag has been reused, is not live.
func (r *Registry) IsLive(n *node.Node) bool {
	cur, ok := r.nodes[n.Tag]
	return ok && cur == n
}

// Create registers a new node under tag.
func (r *Registry) Create(tag int, cfg node.Config) (*node.Node, error) {
	if tag < 0 {
		return nil, fmt.Errorf("%w: tag %d is negative", node.ErrInvalidConfig, tag)
	}
	if _, ok := r.nodes[tag]; ok {
		return nil, fmt.Errorf("create node %d: %w", tag, ErrTagInUse)
	}
	n, err := node.New(tag, cfg)
	if err != nil {
		return nil, err
	}
	r.nodes[tag] = n
	return n, nil
}

// Drop removes the node registered under tag. Any edges still attached to it
// are detached so a later node reusing the tag starts clean.
func (r *Registry) Drop(tag int) (*node.Node, error) {
	n, ok := r.nodes[tag]
	if !ok {
		return nil, fmt.Errorf("drop node %d: %w", tag, ErrNodeNotFound)
	}
	for _, c := range n.Children {
		if child, ok := r.nodes[c]; ok {
			child.RemoveParent(tag)
		}
	}
	for _, p := range n.Parents {
		if parent, ok := r.nodes[p]; ok {
			parent.RemoveChild(tag)
		}
	}
	n.Children, n.Parents = nil, nil
	delete(r.nodes, tag)
	r.clearDirty(n)
	return n, nil
}

// Connect adds the edge parent -> child.
func (r *Registry) Connect(parentTag, childTag int) error {
	parent, child, err := r.pair("connect", parentTag, childTag)
	if err != nil {
		return err
	}
	if parent.HasChild(childTag) {
		return fmt.Errorf("connect %d -> %d: %w", parentTag, childTag, ErrAlreadyConnected)
	}
	parent.AddChild(childTag)
	child.AddParent(parentTag)
	return nil
}

// Disconnect removes the edge parent -> child.
func (r *Registry) Disconnect(parentTag, childTag int) error {
	parent, child, err := r.pair("disconnect", parentTag, childTag)
	if err != nil {
		return err
	}
	if !parent.RemoveChild(childTag) {
		return fmt.Errorf("disconnect %d -> %d: %w", parentTag, childTag, ErrNotConnected)
	}
	child.RemoveParent(parentTag)
	return nil
}

// ConnectToView binds a Props node to viewTag.
func (r *Registry) ConnectToView(tag, viewTag int) error {
	n, err := r.lookupKind("connect to view", tag, node.KindProps)
	if err != nil {
		return err
	}
	if viewTag <= 0 {
		return fmt.Errorf("%w: view tag %d is not a valid view", node.ErrInvalidConfig, viewTag)
	}
	if n.ViewTag != node.Unconnected {
		return fmt.Errorf("connect node %d to view %d: %w (view %d)", tag, viewTag, ErrViewAlreadyConnected, n.ViewTag)
	}
	n.ViewTag = viewTag
	return nil
}

// DisconnectFromView unbinds a Props node from viewTag. It does nothing if
// the node is bound to a different view.
func (r *Registry) DisconnectFromView(tag, viewTag int) error {
	n, err := r.lookupKind("disconnect from view", tag, node.KindProps)
	if err != nil {
		return err
	}
	if n.ViewTag == viewTag {
		n.ViewTag = node.Unconnected
	}
	return nil
}

// SetValue assigns a Value node and marks it dirty for the next evaluation.
func (r *Registry) SetValue(tag int, v float64) error {
	n, err := r.lookupKind("set value", tag, node.KindValue)
	if err != nil {
		return err
	}
	n.Value = v
	r.markDirty(n)
	return nil
}

// HasDirty reports whether any value was set since the last TakeDirty.
func (r *Registry) HasDirty() bool {
	return len(r.dirty) > 0
}

// TakeDirty returns the nodes set since the last call and resets the list.
func (r *Registry) TakeDirty() []*node.Node {
	d := r.dirty
	r.dirty = nil
	clear(r.dirtySet)
	return d
}

// LookupKind returns the node under tag, requiring it to be of kind k.
func (r *Registry) LookupKind(tag int, k node.Kind) (*node.Node, error) {
	return r.lookupKind("lookup", tag, k)
}

func (r *Registry) lookupKind(op string, tag int, k node.Kind) (*node.Node, error) {
	n, ok := r.nodes[tag]
	if !ok {
		return nil, fmt.Errorf("%s: node %d: %w", op, tag, ErrNodeNotFound)
	}
	if n.Kind != k {
		return nil, fmt.Errorf("%s: node %d is %s, want %s: %w", op, tag, n.Kind, k, ErrWrongKind)
	}
	return n, nil
}

func (r *Registry) pair(op string, parentTag, childTag int) (*node.Node, *node.Node, error) {
	if parentTag == childTag {
		return nil, nil, fmt.Errorf("%s: self-referential edge not allowed: %d -> %d", op, parentTag, childTag)
	}
	parent, ok := r.nodes[parentTag]
	if !ok {
		return nil, nil, fmt.Errorf("%s: source node %d: %w", op, parentTag, ErrNodeNotFound)
	}
	child, ok := r.nodes[childTag]
	if !ok {
		return nil, nil, fmt.Errorf("%s: destination node %d: %w", op, childTag, ErrNodeNotFound)
	}
	return parent, child, nil
}

func (r *Registry) markDirty(n *node.Node) {
	if _, ok := r.dirtySet[n]; ok {
		return
	}
	r.dirtySet[n] = struct{}{}
	r.dirty = append(r.dirty, n)
}

func (r *Registry) clearDirty(n *node.Node) {
	if _, ok := r.dirtySet[n]; !ok {
		return
	}
	delete(r.dirtySet, n)
	for i, d := range r.dirty {
		if d == n {
			r.dirty = append(r.dirty[:i], r.dirty[i+1:]...)
			break
		}
	}
}
