package app

import (
	"context"
	"fmt"

	"github.com/vk/animgraph/internal/command"
	"github.com/vk/animgraph/internal/ctxlog"
	"github.com/vk/animgraph/internal/engine"
)

// preflight applies the scene to a throwaway engine so that rejected
// commands and dangling references fail at startup instead of on the first
// frame. A cycle is only logged: bridge commands may still break it before
// any frame reaches it.
func preflight(ctx context.Context, initial []command.Command) error {
	logger := ctxlog.FromContext(ctx)
	e := engine.New()
	for _, cmd := range initial {
		if err := cmd.Apply(e); err != nil {
			return fmt.Errorf("scene command %s: %w", cmd.Name(), err)
		}
	}

	reg := e.Registry()
	if err := reg.Validate(ctx); err != nil {
		return err
	}
	if err := reg.DetectCycles(); err != nil {
		logger.Warn("Scene graph is not acyclic, frames reaching the cycle will fail.", "error", err)
	}
	logger.Debug("Scene preflight passed.", "nodes", reg.Len(), "drivers", e.ActiveDrivers())
	return nil
}
