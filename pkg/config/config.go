// Package config provides YAML-based configuration loading with environment
// variable expansion and an environment variable overlay.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Validator is an interface for configuration validation.
type Validator interface {
	Validate() error
}

type options struct {
	envPrefix  string
	optionalFS bool
}

// Option tunes Load.
type Option func(*options)

// WithEnvPrefix sets the prefix for `env` struct tag lookups, e.g. "REVUE_".
func WithEnvPrefix(prefix string) Option {
	return func(o *options) { o.envPrefix = prefix }
}

// Optional makes a missing config file fall back to target's current values.
func Optional() Option {
	return func(o *options) { o.optionalFS = true }
}

// Load fills target from a YAML file (with ${VAR} expansion), then overlays
// fields tagged `env` from the environment, then validates.
func Load[T any](filename string, target *T, opts ...Option) error {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	data, err := os.ReadFile(filename)
	switch {
	case err == nil:
		expandedData := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expandedData), target); err != nil {
			return fmt.Errorf("failed to parse config file %s: %w", filename, err)
		}
	case o.optionalFS && errors.Is(err, os.ErrNotExist):
	default:
		return fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	if err := env.ParseWithOptions(target, env.Options{Prefix: o.envPrefix}); err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}

	if validator, ok := any(target).(Validator); ok {
		if err := validator.Validate(); err != nil {
			return fmt.Errorf("config validation failed: %w", err)
		}
	}

	return nil
}
