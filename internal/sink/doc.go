// Package sink carries per-frame property updates from the evaluator to the
// external view system.
//
// The evaluator collects one UpdateRecord per connected Props node into a
// Collector. After the frame completes, Flush forwards the records, in
// collection order, to a Sink. Sinks are plain adapters: a logger, a JSON
// stream, a socket.io bridge, or a function in tests.
package sink
