// Package config defines the format-agnostic scene model and the Loader
// interface implemented by the format-specific adapters.
//
// A Scene describes an initial animated graph: its nodes, the edges between
// them, the views Props nodes are bound to and the animations to start.
// Scene.Commands turns it into the command list the frame loop applies.
package config
