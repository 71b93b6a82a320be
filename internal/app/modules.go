package app

import (
	"github.com/vk/animgraph/internal/config"
	"github.com/vk/animgraph/internal/hcl_adapter"
	"github.com/vk/animgraph/internal/yaml_adapter"
)

// coreLoaders is the list of scene formats compiled into the binary.
func coreLoaders() []config.Loader {
	return []config.Loader{
		hcl_adapter.NewLoader(),
		yaml_adapter.NewLoader(),
	}
}
