package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/animgraph/internal/config"
	"github.com/vk/animgraph/internal/ctxlog"
	"github.com/vk/animgraph/internal/fsutil"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL scene loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every .hcl file under paths and merges the declared blocks
// into one scene, in file order.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Scene, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	scene := &config.Scene{}

	hclFiles, err := l.findAllHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(hclFiles))

	parser := hclparse.NewParser()

	for _, file := range hclFiles {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		fileCtx := ctxlog.With(ctx, "file", file)
		for _, n := range root.Nodes {
			translated, err := l.translateNode(fileCtx, n, file)
			if err != nil {
				return nil, fmt.Errorf("in %s: %w", file, err)
			}
			scene.Nodes = append(scene.Nodes, translated)
		}
		for _, e := range root.Edges {
			scene.Edges = append(scene.Edges, &config.Edge{Parent: e.Parent, Child: e.Child})
		}
		for _, v := range root.Views {
			scene.Views = append(scene.Views, &config.View{Node: v.Node, ViewTag: v.ViewTag})
		}
		for _, a := range root.Animations {
			translated, err := l.translateAnimation(fileCtx, a)
			if err != nil {
				return nil, fmt.Errorf("in %s: %w", file, err)
			}
			scene.Animations = append(scene.Animations, translated)
		}
	}

	logger.Debug("HCL loading complete.", "nodes", len(scene.Nodes), "edges", len(scene.Edges), "views", len(scene.Views), "animations", len(scene.Animations))
	return scene, nil
}

// findAllHCLFiles returns every .hcl file under paths.
func (l *Loader) findAllHCLFiles(paths []string) ([]string, error) {
	return fsutil.FindFiles(paths, ".hcl")
}
