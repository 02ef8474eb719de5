package config

import (
	"context"
)

// Loader is the interface for a format-specific descriptor loader.
type Loader interface {
	// Load reads every file under paths that the loader understands and
	// translates it into the format-agnostic model.
	Load(ctx context.Context, paths ...string) (*Model, error)

	// Extensions lists the file extensions the loader claims, with the dot.
	Extensions() []string
}
