package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vk/animgraph/internal/command"
	"github.com/vk/animgraph/internal/ctxlog"
	"github.com/vk/animgraph/internal/engine"
	"github.com/vk/animgraph/internal/metrics"
	"github.com/vk/animgraph/internal/opqueue"
	"github.com/vk/animgraph/internal/sink"
)

// ErrClockStopped is returned by Run when the clock closes its channel.
var ErrClockStopped = errors.New("frame clock stopped")

// FrameReport summarises one completed frame.
type FrameReport struct {
	Stats    engine.Stats
	Commands int
	Updates  []sink.UpdateRecord
}

// CommandErrorFunc receives every rejected command.
type CommandErrorFunc func(cmd command.Command, err error)

// Loop drives an engine from a command queue and a frame clock.
type Loop struct {
	engine  *engine.Engine
	queue   *opqueue.Queue[command.Command]
	clock   Clock
	sink    sink.Sink
	metrics *metrics.Metrics

	onCommandError CommandErrorFunc
	onFrame        func(FrameReport)
	maxFrames      int
	stopWhenIdle   bool
}

// Option configures a Loop.
type Option func(*Loop)

// WithSink sets where view updates go. The default discards them.
func WithSink(s sink.Sink) Option {
	return func(l *Loop) { l.sink = s }
}

// WithMetrics records frame and command metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Loop) { l.metrics = m }
}

// WithCommandErrorHandler reports rejected commands to fn.
func WithCommandErrorHandler(fn CommandErrorFunc) Option {
	return func(l *Loop) { l.onCommandError = fn }
}

// WithFrameHook calls fn after every completed frame.
func WithFrameHook(fn func(FrameReport)) Option {
	return func(l *Loop) { l.onFrame = fn }
}

// WithMaxFrames stops Run after n frames. Zero means no limit.
func WithMaxFrames(n int) Option {
	return func(l *Loop) { l.maxFrames = n }
}

// WithStopWhenIdle makes Run return once the engine goes quiescent after at
// least one frame, instead of waiting for more commands.
func WithStopWhenIdle() Option {
	return func(l *Loop) { l.stopWhenIdle = true }
}

// New creates a loop. The loop takes ownership of e.
func New(e *engine.Engine, q *opqueue.Queue[command.Command], clock Clock, opts ...Option) *Loop {
	l := &Loop{
		engine: e,
		queue:  q,
		clock:  clock,
		sink:   sink.Discard,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.metrics != nil {
		e.ObserveCompletions(l.metrics.AnimationEnded)
	}
	return l
}

// Submit queues commands for the next frame. Safe for concurrent use.
func (l *Loop) Submit(cmds ...command.Command) {
	l.queue.Push(cmds...)
}

// Run processes frames until ctx is cancelled, the frame limit is reached or
// a frame fails. On return every running animation is stopped and its
// callback fired with finished=false.
func (l *Loop) Run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	defer func() {
		if n := l.engine.Shutdown(); n > 0 {
			logger.Info("Stopped running animations.", "count", n)
		}
	}()

	frames := 0
	armed := l.armed()
	logger.Info("Frame loop started.", "armed", armed, "max_frames", l.maxFrames)

	for {
		if !armed {
			if l.stopWhenIdle && frames > 0 {
				logger.Info("Frame loop idle, stopping.", "frames", frames)
				return nil
			}
			logger.Debug("Frame loop quiescent.")
			select {
			case <-ctx.Done():
				logger.Info("Frame loop stopped.", "frames", frames)
				return nil
			case <-l.queue.Ready():
				// The signal may predate the last drain.
				armed = l.armed()
			}
			continue
		}

		select {
		case <-ctx.Done():
			logger.Info("Frame loop stopped.", "frames", frames)
			return nil
		case now, ok := <-l.clock.Ticks():
			if !ok {
				return ErrClockStopped
			}
			if err := l.tick(ctx, now); err != nil {
				return err
			}
			frames++
			if l.maxFrames > 0 && frames >= l.maxFrames {
				logger.Info("Frame limit reached.", "frames", frames)
				return nil
			}
			armed = l.armed()
		}
	}
}

func (l *Loop) armed() bool {
	return l.queue.Len() > 0 || l.engine.HasWork()
}

// tick runs one drain, apply, evaluate, emit cycle.
func (l *Loop) tick(ctx context.Context, frameNanos int64) error {
	logger := ctxlog.FromContext(ctx)
	began := time.Now()

	ops := l.queue.Drain()
	for _, op := range ops {
		err := op.Apply(l.engine)
		l.metrics.CommandApplied(op.Name(), err)
		if err == nil {
			continue
		}
		logger.Warn("Command rejected.", "command", op.Name(), "error", err)
		if l.onCommandError != nil {
			l.onCommandError(op, err)
		}
	}

	updates, err := l.engine.Frame(ctx, frameNanos)
	if err != nil {
		l.metrics.FrameFailed()
		logger.Error("Frame failed.", "frame_nanos", frameNanos, "error", err)
		return fmt.Errorf("frame at %dns: %w", frameNanos, err)
	}

	if err := sink.Flush(ctx, l.sink, updates); err != nil {
		logger.Warn("Failed to deliver view updates.", "error", err)
	}
	l.engine.RunCompletions()

	stats := l.engine.Stats()
	l.metrics.ObserveFrame(stats, len(ops), time.Since(began))
	if l.onFrame != nil {
		l.onFrame(FrameReport{Stats: stats, Commands: len(ops), Updates: updates})
	}
	return nil
}
