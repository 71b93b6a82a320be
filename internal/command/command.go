// Package command defines the operations producers may queue against the
// animated graph. Each command is a plain value; the frame loop applies it to
// the engine on the evaluator goroutine.
package command

import (
	"github.com/vk/animgraph/internal/driver"
	"github.com/vk/animgraph/internal/engine"
	"github.com/vk/animgraph/internal/node"
)

// Command is a single graph mutation.
type Command interface {
	// Name returns the command's wire name, e.g. "createNode".
	Name() string
	// Apply performs the mutation. A failed command leaves the graph unchanged.
	Apply(e *engine.Engine) error
}

// Command names.
const (
	NameCreateNode             = "createNode"
	NameDropNode               = "dropNode"
	NameSetValue               = "setValue"
	NameStartAnimation         = "startAnimation"
	NameStopAnimation          = "stopAnimation"
	NameConnectNodes           = "connectNodes"
	NameDisconnectNodes        = "disconnectNodes"
	NameConnectNodeToView      = "connectNodeToView"
	NameDisconnectNodeFromView = "disconnectNodeFromView"
)

type CreateNode struct {
	Tag    int
	Config node.Config
}

type DropNode struct {
	Tag int
}

type SetValue struct {
	Tag   int
	Value float64
}

// StartAnimation attaches a driver to a Value node. ID is an optional caller
// correlation id, echoed by bridges when the animation ends.
type StartAnimation struct {
	ID         int
	Tag        int
	Config     driver.Config
	OnComplete driver.CompletionFunc
}

// StopAnimation stops every driver on a Value node.
type StopAnimation struct {
	Tag int
}

type ConnectNodes struct {
	Parent int
	Child  int
}

type DisconnectNodes struct {
	Parent int
	Child  int
}

type ConnectNodeToView struct {
	Tag     int
	ViewTag int
}

type DisconnectNodeFromView struct {
	Tag     int
	ViewTag int
}

func (CreateNode) Name() string             { return NameCreateNode }
func (DropNode) Name() string               { return NameDropNode }
func (SetValue) Name() string               { return NameSetValue }
func (StartAnimation) Name() string         { return NameStartAnimation }
func (StopAnimation) Name() string          { return NameStopAnimation }
func (ConnectNodes) Name() string           { return NameConnectNodes }
func (DisconnectNodes) Name() string        { return NameDisconnectNodes }
func (ConnectNodeToView) Name() string      { return NameConnectNodeToView }
func (DisconnectNodeFromView) Name() string { return NameDisconnectNodeFromView }

func (c CreateNode) Apply(e *engine.Engine) error { return e.CreateNode(c.Tag, c.Config) }
func (c DropNode) Apply(e *engine.Engine) error   { return e.DropNode(c.Tag) }
func (c SetValue) Apply(e *engine.Engine) error   { return e.SetValue(c.Tag, c.Value) }

func (c StartAnimation) Apply(e *engine.Engine) error {
	return e.StartAnimation(c.Tag, c.Config, c.OnComplete)
}

func (c StopAnimation) Apply(e *engine.Engine) error { return e.StopAnimation(c.Tag) }

func (c ConnectNodes) Apply(e *engine.Engine) error {
	return e.ConnectNodes(c.Parent, c.Child)
}

func (c DisconnectNodes) Apply(e *engine.Engine) error {
	return e.DisconnectNodes(c.Parent, c.Child)
}

func (c ConnectNodeToView) Apply(e *engine.Engine) error {
	return e.ConnectNodeToView(c.Tag, c.ViewTag)
}

func (c DisconnectNodeFromView) Apply(e *engine.Engine) error {
	return e.DisconnectNodeFromView(c.Tag, c.ViewTag)
}

// Names lists every command name Decode understands.
func Names() []string {
	return []string{
		NameCreateNode,
		NameDropNode,
		NameSetValue,
		NameStartAnimation,
		NameStopAnimation,
		NameConnectNodes,
		NameDisconnectNodes,
		NameConnectNodeToView,
		NameDisconnectNodeFromView,
	}
}
