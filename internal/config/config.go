// Package config loads the optional user config file carrying default CLI
// settings. Flags always win over file values.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds user defaults. Zero values mean "unspecified" and leave the
// built-in defaults in place.
type Config struct {
	Model     string `yaml:"model"`
	Quant     string `yaml:"quant"`
	BatchSize int    `yaml:"batch_size"`
	Language  string `yaml:"language"`
	ModelDir  string `yaml:"model_dir"`
}

// Load reads a yaml config file. A missing file is not an error; an
// unreadable or malformed one is. Unknown keys are rejected, so typos do not
// silently vanish.
func Load(path string) (Config, error) {
	var cfg Config

	content, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(content))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	if cfg.BatchSize < 0 {
		return Config{}, fmt.Errorf("config %s: batch_size must not be negative, got %d", path, cfg.BatchSize)
	}

	return cfg, nil
}
