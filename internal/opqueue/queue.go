// Package opqueue is the mailbox between command producers and the single
// goroutine that owns the animated graph.
//
// Producers Push from any goroutine. The owner Drains the whole backlog once
// per frame and applies it in push order. Ready fires whenever a push lands,
// which lets a quiescent frame loop re-arm itself.
package opqueue

import "sync"

// Queue is an unbounded, ordered, multi-producer single-consumer buffer.
type Queue[T any] struct {
	mu      sync.Mutex
	pending []T
	ready   chan struct{}
}

// New creates an empty queue.
func New[T any]() *Queue[T] {
	return &Queue[T]{ready: make(chan struct{}, 1)}
}

// Push appends ops in order and signals Ready. It never blocks on the consumer.
func (q *Queue[T]) Push(ops ...T) {
	if len(ops) == 0 {
		return
	}
	q.mu.Lock()
	q.pending = append(q.pending, ops...)
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// Drain swaps out everything pushed so far. Ops pushed while the consumer is
// busy accumulate and are returned together by the next Drain.
func (q *Queue[T]) Drain() []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	ops := q.pending
	q.pending = nil
	return ops
}

// Len returns the number of ops waiting to be drained.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Ready receives a value after one or more pushes. A single receive may stand
// for many pushes; consumers should Drain fully after it fires.
func (q *Queue[T]) Ready() <-chan struct{} {
	return q.ready
}
