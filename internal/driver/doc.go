// Package driver implements the animation drivers that move a single Value
// node over time: a frame-sampled driver that replays a precomputed table at
// 60 frames per second, and a spring driver integrated in-process.
//
// A Driver is stepped once per frame by the engine and is not safe for
// concurrent use.
package driver
