package config

import "context"

// Loader is the interface for a format-specific plan loader. Load reads
// configuration from the given paths (files or directories), validates it
// and translates it into the format-agnostic model.
type Loader interface {
	Load(ctx context.Context, paths ...string) (*Model, error)
}
