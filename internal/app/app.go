package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/vk/animgraph/internal/command"
	"github.com/vk/animgraph/internal/config"
	"github.com/vk/animgraph/internal/ctxlog"
	"github.com/vk/animgraph/internal/metrics"
	"github.com/vk/animgraph/internal/scheduler"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW    io.Writer
	logger  *slog.Logger
	config  *Config
	runID   string
	scene   *config.Scene
	initial []command.Command
	metrics *metrics.Metrics

	// clock overrides the wall-clock ticker, for tests.
	clock scheduler.Clock
}

// NewApp is the constructor for the main application. It loads the scene
// with the given loaders, or with every built-in format when none are
// given. A scene that cannot be loaded is a fatal startup error and panics.
func NewApp(outW io.Writer, appConfig *Config, loaders ...config.Loader) *App {
	runID := uuid.NewString()
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW).With("run_id", runID)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	if len(loaders) == 0 {
		loaders = coreLoaders()
	}

	var paths []string
	if appConfig.ScenePath != "" {
		paths = append(paths, appConfig.ScenePath)
	}
	scene, err := config.LoadAll(ctx, loaders, paths...)
	if err != nil {
		panic(fmt.Errorf("failed to load scene: %w", err))
	}
	logger.Debug("Scene loaded.", "nodes", len(scene.Nodes), "edges", len(scene.Edges), "views", len(scene.Views), "animations", len(scene.Animations))

	initial, err := scene.Commands(func(a *config.Animation, finished bool) {
		logger.Info("Animation ended.", "animation_id", a.ID, "node", a.Node, "finished", finished)
	})
	if err != nil {
		panic(fmt.Errorf("failed to load scene: %w", err))
	}
	if err := preflight(ctx, initial); err != nil {
		panic(fmt.Errorf("failed to load scene: %w", err))
	}

	return &App{
		outW:    outW,
		logger:  logger,
		config:  appConfig,
		runID:   runID,
		scene:   scene,
		initial: initial,
		metrics: metrics.New(),
	}
}

// RunID returns the identifier attached to every log line of this run.
func (a *App) RunID() string {
	return a.runID
}

// Scene returns the loaded scene. This is primarily for testing.
func (a *App) Scene() *config.Scene {
	return a.scene
}

// Metrics returns the application's metrics.
func (a *App) Metrics() *metrics.Metrics {
	return a.metrics
}
