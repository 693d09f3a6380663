// Package config loads, defaults and validates the module configuration,
// and builds the configured backing store.
//
// Configuration sources, highest precedence first:
//  1. Environment variables (FTPFS_*)
//  2. Configuration file (YAML or TOML)
//  3. Default values
//
// Store Configuration Pattern:
// The store section carries a type selector plus one map per store type;
// only the section matching the selected type is decoded (with mapstructure)
// and handed to that store's constructor. Adding a store means adding a
// section, a factory case, and nothing else.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config is the complete module configuration.
type Config struct {
	// Logging controls log output behavior.
	Logging LoggingConfig `mapstructure:"logging"`

	// Store selects and configures the backing store.
	Store StoreConfig `mapstructure:"store"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive).
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error"`

	// Output is where logs are written: stdout, stderr, or a file path.
	Output string `mapstructure:"output" validate:"required"`
}

// StoreConfig selects the backing store implementation.
//
// Only the section matching Type is used.
type StoreConfig struct {
	// Type selects the store implementation.
	// Valid values: memory, badger, s3.
	Type string `mapstructure:"type" validate:"required,oneof=memory badger s3"`

	// Memory configures the in-memory store (no options today; the
	// section exists for forward compatibility).
	Memory map[string]any `mapstructure:"memory"`

	// Badger configures the BadgerDB store. Only used when Type = "badger".
	Badger map[string]any `mapstructure:"badger"`

	// S3 configures the S3 store. Only used when Type = "s3".
	S3 map[string]any `mapstructure:"s3"`
}

// Load reads configuration from file and environment, applies defaults and
// validates the result.
//
// An empty configPath falls back to the default location
// ($XDG_CONFIG_HOME/ftpfs or ~/.config/ftpfs); a missing file there is not
// an error, defaults apply.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setupViper(v, configPath)

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func setupViper(v *viper.Viper, configPath string) {
	// Example: FTPFS_LOGGING_LEVEL=DEBUG, FTPFS_STORE_TYPE=badger
	v.SetEnvPrefix("FTPFS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

func readConfigFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok || os.IsNotExist(err) {
			// No config file is acceptable: defaults apply.
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	return nil
}

// getConfigDir returns the configuration directory: $XDG_CONFIG_HOME/ftpfs,
// else ~/.config/ftpfs, else the current directory.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "ftpfs")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, ".config", "ftpfs")
}
