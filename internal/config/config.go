// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) initializer to build a Config with defaults.
// - Loading layers defaults -> optional file -> env.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"encoding/json"
	"runtime"
	"strings"
)

// Config contains process configuration. Built once at startup and passed by
// reference to the components that need it; never mutated afterwards.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log output encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8000".
	Addr string `koanf:"addr"`

	// Debug enables verbose request logging.
	Debug bool `koanf:"debug"`

	// AllowedOrigins is the raw CORS allow-list: either a comma-separated
	// string or a JSON array literal. Use Origins() for the parsed form.
	AllowedOrigins string `koanf:"allowed_origins"`

	// ModelDir is the directory holding the persisted model file pair.
	ModelDir string `koanf:"model_dir"`

	// MinTrainingSamples is the minimum number of usable rows for training.
	MinTrainingSamples int `koanf:"min_training_samples"`

	// TrainingQueueSize bounds the in-memory training-job queue.
	TrainingQueueSize int `koanf:"training_queue_size"`

	// WorkerCount sets the number of training workers.
	WorkerCount int `koanf:"worker_count"`

	// MaxBatchSize caps the number of employees per request.
	MaxBatchSize int `koanf:"max_batch_size"`

	// APIKey, when non-empty, is required in the X-API-Key header on the
	// model-mutating routes (/train, /model/reload, DELETE /model/cache).
	APIKey string `koanf:"api_key"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":8000",
		Debug:              false,
		AllowedOrigins:     "*",
		ModelDir:           "models",
		MinTrainingSamples: 10,
		TrainingQueueSize:  16,
		WorkerCount:        maxInt(1, runtime.NumCPU()/2),
		MaxBatchSize:       1000,
		APIKey:             "",
	}
}

// Origins parses AllowedOrigins into a list. The raw value may be a JSON
// array literal or a comma-separated string; surrounding quotes and blank
// entries are dropped.
func (c *Config) Origins() []string {
	value := strings.TrimSpace(c.AllowedOrigins)
	if value == "" {
		return nil
	}

	// JSON array form first
	if strings.HasPrefix(value, "[") {
		var parsed []string
		if err := json.Unmarshal([]byte(value), &parsed); err == nil {
			out := make([]string, 0, len(parsed))
			for _, item := range parsed {
				if s := strings.TrimSpace(item); s != "" {
					out = append(out, s)
				}
			}
			return out
		}
	}

	// Comma-delimited fallback
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		s := strings.TrimSpace(part)
		s = strings.Trim(s, `"'`)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
