// Package config loads CLI settings from an optional file and DIMARRAY_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"

	"github.com/spf13/viper"
)

// Config holds settings shared by every command. Command-line flags
// override these when set explicitly.
type Config struct {
	SpecsDir  string `mapstructure:"specs_dir" yaml:"specs_dir"`   // Directory of CUE schema declarations
	Format    string `mapstructure:"format" yaml:"format"`         // Output format: text or json
	Verbose   bool   `mapstructure:"verbose" yaml:"verbose"`       // Debug logging on stderr
	GoldenDir string `mapstructure:"golden_dir" yaml:"golden_dir"` // Golden files for the test command; empty means beside each scenario
}

// envBindings maps config keys to the environment variables that set them.
var envBindings = map[string][]string{
	"specs_dir":  {"DIMARRAY_SPECS_DIR"},
	"format":     {"DIMARRAY_FORMAT"},
	"verbose":    {"DIMARRAY_VERBOSE"},
	"golden_dir": {"DIMARRAY_GOLDEN_DIR"},
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		SpecsDir: "specs",
		Format:   "text",
	}
}

// Load reads the config file at filePath, if it exists, and applies
// environment overrides on top of the defaults. An empty filePath skips
// the file.
func Load(filePath string) (*Config, error) {
	v := newViper()

	if filePath != "" {
		v.SetConfigFile(filePath)

		// A missing file falls back to defaults and environment variables
		if _, err := os.Stat(filePath); !errors.Is(err, fs.ErrNotExist) {
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", filePath, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()

	d := Default()
	v.SetDefault("specs_dir", d.SpecsDir)
	v.SetDefault("format", d.Format)
	v.SetDefault("verbose", d.Verbose)
	v.SetDefault("golden_dir", d.GoldenDir)

	// bindEnvs only fails on an empty key list
	_ = bindEnvs(v)
	return v
}

// bindEnvs binds the environment variables to the viper instance.
func bindEnvs(v *viper.Viper) error {
	for key, envs := range envBindings {
		inputs := slices.Insert(slices.Clone(envs), 0, key)
		if err := v.BindEnv(inputs...); err != nil {
			return err
		}
	}
	return nil
}
