// Package scheduler runs the frame loop that owns the animated graph.
//
// # How It Works
//
// A Loop is the only goroutine that touches the engine. On every frame clock
// tick it:
//  1. Drains the command queue and applies the commands in push order
//  2. Evaluates the frame
//  3. Flushes the resulting view updates to the sink
//  4. Fires the completion callbacks of animations that ended
//
// The loop stays armed while drivers are running, values are dirty or
// commands are queued. Otherwise it goes quiescent: it stops consuming clock
// ticks and sleeps until the queue signals a new command.
//
// # Errors
//
// Rejected commands are logged, counted and handed to the command error
// handler; the loop carries on. A structural frame error (cycle, dangling
// mapping, driver invariant) stops the loop and is returned from Run.
package scheduler
