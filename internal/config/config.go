// Package config loads per-project settings from cppshadow.yml.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileNames are the config file names looked up, in order.
var FileNames = []string{"cppshadow.yml", "cppshadow.yaml"}

//go:embed default.yml
var defaultConfig []byte

// ProjectConfig holds project-level settings loaded from cppshadow.yml.
type ProjectConfig struct {
	SourcePattern    string   `yaml:"sourcePattern,omitempty"`
	TargetPattern    string   `yaml:"targetPattern,omitempty"`
	OutputDir        string   `yaml:"outputDir,omitempty"`
	GraphPath        string   `yaml:"graphPath,omitempty"`
	Extensions       []string `yaml:"extensions,omitempty"`
	Exclude          []string `yaml:"exclude,omitempty"`
	RespectGitignore *bool    `yaml:"respectGitignore,omitempty"`
	Verbose          bool     `yaml:"verbose,omitempty"`
}

// GitignoreEnabled reports whether .gitignore rules apply. Unset means yes.
func (c *ProjectConfig) GitignoreEnabled() bool {
	return c.RespectGitignore == nil || *c.RespectGitignore
}

// Load attempts to read cppshadow.yml or cppshadow.yaml from dir. A missing
// file yields a zero-value config, not an error.
func Load(dir string) (*ProjectConfig, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		var cfg ProjectConfig
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return &cfg, nil
	}
	return &ProjectConfig{}, nil
}

// Default returns the settings written by WriteDefault.
func Default() (*ProjectConfig, error) {
	var cfg ProjectConfig
	if err := yaml.Unmarshal(defaultConfig, &cfg); err != nil {
		return nil, fmt.Errorf("parse default config: %w", err)
	}
	return &cfg, nil
}

// WriteDefault writes the commented default config to dir/cppshadow.yml.
// An existing file is kept unless force is set; created reports whether
// anything was written.
func WriteDefault(dir string, force bool) (path string, created bool, err error) {
	path = filepath.Join(dir, FileNames[0])
	if !force {
		if _, err := os.Stat(path); err == nil {
			return path, false, nil
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return path, false, fmt.Errorf("create %s: %w", dir, err)
	}
	if err := os.WriteFile(path, defaultConfig, 0o644); err != nil {
		return path, false, fmt.Errorf("write %s: %w", path, err)
	}
	return path, true, nil
}
