package config

import "context"

// Loader is the interface for a format-specific scene loader.
type Loader interface {
	// Load reads every file of the loader's format found under paths and
	// merges them into one scene. Files of other formats are ignored.
	Load(ctx context.Context, paths ...string) (*Scene, error)
}

// LoadAll runs every loader over the same paths and merges the results.
func LoadAll(ctx context.Context, loaders []Loader, paths ...string) (*Scene, error) {
	scene := &Scene{}
	for _, l := range loaders {
		s, err := l.Load(ctx, paths...)
		if err != nil {
			return nil, err
		}
		scene.Merge(s)
	}
	if err := scene.Validate(); err != nil {
		return nil, err
	}
	return scene, nil
}
