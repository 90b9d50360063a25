package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"qtermtape/draw"
	"qtermtape/ops"
	"qtermtape/transforms"
)

// DefaultConfigPath is read when --config is not given. A missing default
// file is not an error.
const DefaultConfigPath = "qtape.yaml"

// Config is the qtape configuration file.
type Config struct {
	Fusion FusionConfig `yaml:"fusion"`
	Log    LogConfig    `yaml:"log"`
	Draw   DrawConfig   `yaml:"draw"`
}

// FusionConfig configures the single-qubit fusion pass.
type FusionConfig struct {
	Atol    float64  `yaml:"atol"`
	Exclude []string `yaml:"exclude"`
}

// LogConfig configures diagnostic logging.
type LogConfig struct {
	Level string `yaml:"level"`
}

// DrawConfig configures text drawings. Negative decimals hide parameters.
type DrawConfig struct {
	Decimals int `yaml:"decimals"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		Fusion: FusionConfig{Atol: transforms.DefaultAtol},
		Log:    LogConfig{Level: "info"},
		Draw:   DrawConfig{Decimals: draw.DefaultDecimals},
	}
}

// LoadConfig reads path over the defaults. When explicit is false a
// missing file yields the defaults.
func LoadConfig(path string, explicit bool) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := ParseConfig(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes YAML into cfg, keeping fields the document omits.
func ParseConfig(data []byte, cfg *Config) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return cfg.Validate()
}

// Validate checks value ranges and gate names.
func (c Config) Validate() error {
	if c.Fusion.Atol < 0 {
		return fmt.Errorf("fusion.atol must be non-negative, got %g", c.Fusion.Atol)
	}
	for _, name := range c.Fusion.Exclude {
		if !ops.Known(name) {
			return fmt.Errorf("fusion.exclude: %w: %q", ops.ErrUnknownGate, name)
		}
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.Draw.Decimals > 15 {
		return fmt.Errorf("draw.decimals must be at most 15, got %d", c.Draw.Decimals)
	}
	return nil
}

// FusionOptions returns the fusion pass options for this configuration.
func (c Config) FusionOptions() transforms.FusionOptions {
	opts := transforms.DefaultFusionOptions()
	opts.Atol = c.Fusion.Atol
	opts.Exclude = append([]string(nil), c.Fusion.Exclude...)
	return opts
}
