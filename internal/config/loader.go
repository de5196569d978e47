package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if ATTRITION_CONFIG is set
//  3. env (prefix ATTRITION_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("ATTRITION_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: ATTRITION_ADDR, ATTRITION_MODEL_DIR, ...
	// Map env keys like ATTRITION_MODEL_DIR -> model_dir (flat keys).
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("ATTRITION_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "attrition_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Basic validation
	switch {
	case cfg.Addr == "":
		return nil, fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case cfg.ModelDir == "":
		return nil, fmt.Errorf("%w: model_dir must not be empty", ErrInvalidConfig)
	case cfg.MinTrainingSamples < 1:
		return nil, fmt.Errorf("%w: min_training_samples must be positive", ErrInvalidConfig)
	case cfg.MaxBatchSize < 1:
		return nil, fmt.Errorf("%w: max_batch_size must be positive", ErrInvalidConfig)
	}
	return &cfg, nil
}
