package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	PlanPath string // a single .hcl file or a directory of them

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
}

// NewConfig validates the configuration.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.PlanPath == "" {
		return nil, errors.New("PlanPath is a required configuration field and cannot be empty")
	}
	return &cfg, nil
}
