// Package config defines the format-agnostic plan model and the loader
// interface that format-specific packages (internal/hcl) implement.
package config
