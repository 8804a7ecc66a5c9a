package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds the user-tunable settings.
type Config struct {
	DBPath       string // database file location
	SeedExamples bool   // insert an example project into a brand-new store
}

// fileConfig is the on-disk shape. SeedExamples is a pointer so "absent"
// and "false" stay distinguishable when merging over defaults.
type fileConfig struct {
	DBPath       string `yaml:"db_path"`
	SeedExamples *bool  `yaml:"seed_examples"`
}

func defaults() Config {
	return Config{
		DBPath:       DefaultDBPath(),
		SeedExamples: true,
	}
}

// Path returns the expected location of the config file.
func Path() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".", "tracka", "config.yaml")
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "tracka", "config.yaml")
}

// DefaultDBPath returns the database location used when the config file does
// not name one: the XDG data directory, falling back to ~/.local/share.
func DefaultDBPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".", "tracka", "tracka.db")
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "tracka", "tracka.db")
}

// Load reads the config file if it exists. A missing file is not an error;
// defaults are returned.
func Load() (Config, error) {
	cfg := defaults()

	b, err := os.ReadFile(Path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}

	var file fileConfig
	if err := yaml.Unmarshal(b, &file); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	if file.DBPath != "" {
		cfg.DBPath = file.DBPath
	}
	if file.SeedExamples != nil {
		cfg.SeedExamples = *file.SeedExamples
	}
	return cfg, nil
}
