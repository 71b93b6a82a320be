package app

import (
	"context"
	"fmt"

	"github.com/vk/animgraph/internal/command"
	"github.com/vk/animgraph/internal/ctxlog"
	"github.com/vk/animgraph/internal/engine"
	"github.com/vk/animgraph/internal/opqueue"
	"github.com/vk/animgraph/internal/scheduler"
	"github.com/vk/animgraph/internal/sink"
	"github.com/vk/animgraph/modules/socketio"
	"golang.org/x/sync/errgroup"
)

// Run applies the scene and drives the frame loop until ctx is cancelled,
// the loop stops on its own, or any component fails.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	queue := opqueue.New[command.Command]()

	var bridge *socketio.Bridge
	sinks := []sink.Sink{a.outputSink()}
	if a.config.SocketURL != "" {
		bridge = socketio.New(socketio.Options{
			URL:       a.config.SocketURL,
			Namespace: a.config.SocketNamespace,
		}, func(cmds ...command.Command) { queue.Push(cmds...) })
		sinks = append(sinks, bridge)
	}

	if len(a.initial) == 0 && bridge == nil {
		a.logger.Warn("Scene is empty and no bridge is configured, nothing to animate.")
		return nil
	}

	clock := a.clock
	if clock == nil {
		clock = scheduler.NewTickerClock(a.config.FrameRate)
	}
	defer clock.Stop()

	opts := []scheduler.Option{
		scheduler.WithSink(sink.Multi(sinks...)),
		scheduler.WithMetrics(a.metrics),
	}
	if a.config.MaxFrames > 0 {
		opts = append(opts, scheduler.WithMaxFrames(a.config.MaxFrames))
	}
	if a.config.StopWhenIdle {
		opts = append(opts, scheduler.WithStopWhenIdle())
	}
	if bridge != nil {
		opts = append(opts, scheduler.WithCommandErrorHandler(bridge.CommandFailed))
	}
	loop := scheduler.New(engine.New(), queue, clock, opts...)
	loop.Submit(a.initial...)

	a.logger.Info("🚀 Starting frame loop...", "commands", len(a.initial), "bridge", bridge != nil)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// The loop ending for any reason ends the run.
		defer cancel()
		return loop.Run(gctx)
	})
	g.Go(func() error {
		return a.serveHealthcheck(gctx)
	})
	if bridge != nil {
		g.Go(func() error {
			return bridge.Run(gctx)
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("run failed: %w", err)
	}
	a.logger.Info("🏁 Frame loop finished.")
	return nil
}

func (a *App) outputSink() sink.Sink {
	switch a.config.Output {
	case OutputJSON:
		return sink.NewJSONSink(a.outW)
	case OutputNone:
		return sink.Discard
	default:
		return sink.LogSink{}
	}
}
