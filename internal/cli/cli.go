package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/animgraph/internal/app"
	"github.com/vk/animgraph/internal/scheduler"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("animgraph", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
animgraph - A frame-driven animated value graph.

Usage:
  animgraph [options] [SCENE_PATH]

Arguments:
  SCENE_PATH
    Path to a scene file (.hcl, .yaml, .yml) or a directory of scene files.

Options:
`)
		flagSet.PrintDefaults()
	}

	sceneFlag := flagSet.String("scene", "", "Path to the scene file or directory.")
	sFlag := flagSet.String("s", "", "Path to the scene file or directory (shorthand).")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health check and metrics server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	fpsFlag := flagSet.Int("fps", scheduler.DefaultFrameRate, "Frames per second of the frame clock.")
	maxFramesFlag := flagSet.Int("max-frames", 0, "Stop after this many frames. 0 is unlimited.")
	idleFlag := flagSet.Bool("stop-when-idle", false, "Exit once every animation has ended and no work is left.")
	outputFlag := flagSet.String("output", app.OutputLog, "Where view updates go. Options: 'log', 'json' or 'none'.")
	socketURLFlag := flagSet.String("socket-url", "", "Socket.IO server to receive commands from and send view updates to.")
	socketNSFlag := flagSet.String("socket-namespace", "/", "Socket.IO namespace.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if *sceneFlag != "" {
		path = *sceneFlag
	} else if *sFlag != "" {
		path = *sFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Scene path determined.", "path", path)

	if path == "" && *socketURLFlag == "" {
		slog.Debug("No scene path or socket URL provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	config, err := app.NewConfig(app.Config{
		ScenePath:       path,
		LogFormat:       logFormat,
		LogLevel:        strings.ToLower(*logLevelFlag),
		HealthcheckPort: *healthPortFlag,
		FrameRate:       *fpsFlag,
		MaxFrames:       *maxFramesFlag,
		StopWhenIdle:    *idleFlag,
		Output:          strings.ToLower(*outputFlag),
		SocketURL:       *socketURLFlag,
		SocketNamespace: *socketNSFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
