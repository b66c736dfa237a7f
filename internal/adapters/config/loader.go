// Package config provides the defaults loader for remake.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/remake-build/remake/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// FileName is the optional per-project defaults file read from the
// working directory before flags are applied.
const FileName = ".remake.yaml"

// FileConfigLoader implements ports.ConfigLoader using a YAML file.
type FileConfigLoader struct {
	Filename string
}

// New creates a loader reading the standard defaults file.
func New() *FileConfigLoader {
	return &FileConfigLoader{Filename: FileName}
}

// settings mirrors the YAML schema. Pointers distinguish an absent key
// from an explicit zero, so absent keys keep the built-in defaults.
type settings struct {
	Jobs      *int    `yaml:"jobs"`
	KeepGoing *bool   `yaml:"keep_going"`
	Silent    *bool   `yaml:"silent"`
	Echo      *bool   `yaml:"echo"`
	File      *string `yaml:"file"`
}

// Load reads the defaults file from dir. A missing file is not an error
// and yields the built-in defaults.
func (l *FileConfigLoader) Load(dir string) (*domain.Config, error) {
	cfg := domain.DefaultConfig()

	data, err := os.ReadFile(filepath.Join(dir, l.Filename)) //nolint:gosec // path is derived from the working directory
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, zerr.Wrap(err, "failed to read defaults file")
	}

	var s settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, zerr.Wrap(err, "failed to parse defaults file")
	}

	if s.Jobs != nil {
		cfg.Jobs = *s.Jobs
	}
	if s.KeepGoing != nil {
		cfg.KeepGoing = *s.KeepGoing
	}
	if s.Silent != nil {
		cfg.Silent = *s.Silent
	}
	if s.Echo != nil {
		cfg.Echo = *s.Echo
	}
	if s.File != nil && *s.File != "" {
		cfg.RuleFile = *s.File
	}
	return cfg, nil
}
