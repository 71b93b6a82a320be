// Package engine is the graph evaluator. It owns the node registry and the
// set of active animation drivers, and turns each delivered frame timestamp
// into a list of view-property updates.
//
// An Engine is not safe for concurrent use. Exactly one goroutine (the frame
// loop in package scheduler) applies commands and runs frames; producers talk
// to it through an opqueue.Queue.
//
// # Evaluation
//
// Each frame runs two passes over the active subgraph, the nodes reachable
// from this frame's dirty values and driver targets:
//
//  1. Activation. Drivers step and write their target values. Starting from
//     the seeds, a breadth-first walk over forward edges stamps every reached
//     node with the pass generation and counts incoming active edges.
//  2. Propagation. Seeds with no active incoming edge start a topological
//     walk. A node is evaluated once every active parent has been, then its
//     children's counters are decremented.
//
// Generation stamps make "visited" an O(1) comparison, so nothing outside the
// active subgraph is touched. If pass 2 reaches fewer nodes than pass 1
// activated, some nodes never lost their incoming edges and the frame fails
// with a CycleError.
package engine
