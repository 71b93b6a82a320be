package app

import (
	"errors"
	"fmt"
	"slices"
)

// Output modes for view updates.
const (
	OutputLog  = "log"
	OutputJSON = "json"
	OutputNone = "none"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ScenePath string // .hcl, .yaml or .yml files

	LogFormat       string
	LogLevel        string
	HealthcheckPort int

	FrameRate    int
	MaxFrames    int
	StopWhenIdle bool
	Output       string

	SocketURL       string
	SocketNamespace string
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.ScenePath == "" && cfg.SocketURL == "" {
		return nil, errors.New("a scene path or a socket.io URL is required")
	}
	if cfg.Output == "" {
		cfg.Output = OutputLog
	}
	if !slices.Contains([]string{OutputLog, OutputJSON, OutputNone}, cfg.Output) {
		return nil, fmt.Errorf("invalid output %q: must be 'log', 'json' or 'none'", cfg.Output)
	}
	if cfg.FrameRate < 0 {
		return nil, fmt.Errorf("invalid frame rate %d: must not be negative", cfg.FrameRate)
	}
	if cfg.MaxFrames < 0 {
		return nil, fmt.Errorf("invalid max frames %d: must not be negative", cfg.MaxFrames)
	}
	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		return nil, err
	}
	return &cfg, nil
}
