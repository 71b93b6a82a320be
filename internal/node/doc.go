// Package node defines the data model of the animated graph: the closed set
// of node kinds, their configurations and the per-node state the registry
// and the evaluator work on.
//
// Configurations are validated when a node is created, so evaluation never
// has to deal with malformed ranges or degenerate interpolation segments.
package node
