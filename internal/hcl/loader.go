package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/maestro/internal/config"
	"github.com/vk/maestro/internal/ctxlog"
	"github.com/vk/maestro/internal/fsutil"
	"github.com/vk/maestro/internal/schema"
)

// planExtension is the file suffix plan files must carry.
const planExtension = ".hcl"

// Loader reads HCL plan files and translates them into the agnostic config
// model.
type Loader struct {
	parser *hclparse.Parser
}

// NewLoader returns a ready-to-use HCL plan loader.
func NewLoader() *Loader {
	return &Loader{parser: hclparse.NewParser()}
}

// Load implements config.Loader. Each path may be a single .hcl file or a
// directory searched recursively; the blocks of all discovered files are
// merged into one plan before validation.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)

	var files []string
	for _, path := range paths {
		found, err := fsutil.CollectFiles(path, planExtension)
		if err != nil {
			return nil, fmt.Errorf("resolving plan path %q: %w", path, err)
		}
		files = append(files, found...)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no %s plan files found in %v", planExtension, paths)
	}
	logger.Debug("Plan files discovered.", "count", len(files))

	merged := &schema.PlanConfig{}
	for _, file := range files {
		parsed, diags := l.parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("parsing %q: %w", file, diags)
		}
		var cfg schema.PlanConfig
		if diags := gohcl.DecodeBody(parsed.Body, nil, &cfg); diags.HasErrors() {
			return nil, fmt.Errorf("decoding %q: %w", file, diags)
		}
		merged.Tasks = append(merged.Tasks, cfg.Tasks...)
		merged.Probes = append(merged.Probes, cfg.Probes...)
		if cfg.Settings != nil {
			if merged.Settings != nil {
				return nil, fmt.Errorf("duplicate settings block in %q", file)
			}
			merged.Settings = cfg.Settings
		}
	}

	model, err := l.translate(ctx, merged)
	if err != nil {
		return nil, err
	}
	logger.Debug("Plan loaded and translated into unified model.",
		"tasks", len(model.Plan.Tasks), "probes", len(model.Plan.Probes))
	return model, nil
}
