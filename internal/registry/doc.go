// Package registry owns every node of the animated graph, keyed by tag.
//
// The Registry is the arena the evaluator walks: nodes are addressed by their
// integer tag and edges are stored as tag lists on both ends. All structural
// mutations (create, drop, connect, view binding, setValue) go through it and
// either succeed completely or leave the graph untouched.
//
// # Thread-Safety
//
// A Registry is NOT safe for concurrent use. It is owned by the evaluator
// goroutine; producers reach it only through the operation queue.
package registry
