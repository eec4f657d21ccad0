// Package config handles lodtool configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all lodtool settings.
type Config struct {
	Simplify SimplifyConfig `yaml:"simplify" toml:"simplify"`
	LOD      LODConfig      `yaml:"lod" toml:"lod"`
	Assets   AssetsConfig   `yaml:"assets" toml:"assets"`
	Logging  LoggingConfig  `yaml:"logging" toml:"logging"`
}

// SimplifyConfig holds one-shot simplification settings.
type SimplifyConfig struct {
	Ratio       float64 `yaml:"ratio" toml:"ratio"` // Fraction of vertices to remove
	PreserveUVs bool    `yaml:"preserve_uvs" toml:"preserve_uvs"`
}

// LODConfig holds level-of-detail chain settings.
type LODConfig struct {
	Levels         int     `yaml:"levels" toml:"levels"`
	Ratio          float64 `yaml:"ratio" toml:"ratio"` // Fraction removed per level
	DistanceFactor float32 `yaml:"distance_factor" toml:"distance_factor"`
	Chained        bool    `yaml:"chained" toml:"chained"`
}

// AssetsConfig holds source and output locations.
type AssetsConfig struct {
	Dir        string `yaml:"dir" toml:"dir"`               // Source meshes
	OutputDir  string `yaml:"output_dir" toml:"output_dir"` // Generated LOD meshes
	Pattern    string `yaml:"pattern" toml:"pattern"`       // Glob for source files
	Workers    int    `yaml:"workers" toml:"workers"`       // Concurrent chain builds
	DebounceMs int    `yaml:"debounce_ms" toml:"debounce_ms"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" toml:"level"`
	LogFile string `yaml:"log_file" toml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Simplify: SimplifyConfig{
			Ratio:       0.5,
			PreserveUVs: true,
		},
		LOD: LODConfig{
			Levels:         3,
			Ratio:          0.875,
			DistanceFactor: 75,
			Chained:        true,
		},
		Assets: AssetsConfig{
			Dir:        "assets",
			OutputDir:  "lod",
			Pattern:    "*.obj",
			Workers:    4,
			DebounceMs: 250,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Simplify.Ratio < 0 || c.Simplify.Ratio >= 1 {
		return fmt.Errorf("simplify.ratio %v outside [0,1): %w", c.Simplify.Ratio, ErrInvalidConfig)
	}
	if c.LOD.Ratio < 0 || c.LOD.Ratio >= 1 {
		return fmt.Errorf("lod.ratio %v outside [0,1): %w", c.LOD.Ratio, ErrInvalidConfig)
	}
	if c.LOD.Levels < 1 {
		return fmt.Errorf("lod.levels %d < 1: %w", c.LOD.Levels, ErrInvalidConfig)
	}
	if c.LOD.DistanceFactor < 0 {
		return fmt.Errorf("lod.distance_factor %v < 0: %w", c.LOD.DistanceFactor, ErrInvalidConfig)
	}
	if c.Assets.Workers < 1 {
		return fmt.Errorf("assets.workers %d < 1: %w", c.Assets.Workers, ErrInvalidConfig)
	}
	// Generated levels would otherwise be picked up as new sources.
	if within(c.Assets.Dir, c.Assets.OutputDir) {
		return fmt.Errorf("assets.output_dir %q inside assets.dir %q: %w",
			c.Assets.OutputDir, c.Assets.Dir, ErrInvalidConfig)
	}
	return nil
}

// within reports whether dir is parent or lies below it.
func within(parent, dir string) bool {
	p, err := filepath.Abs(parent)
	if err != nil {
		return false
	}
	d, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(p, d)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
