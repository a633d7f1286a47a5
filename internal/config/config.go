// Package config provides configuration management for mcpinject using Viper.
package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"

	"github.com/shesha-tools/mcpinject/pkg/fileutil"
)

// AppName is the application name used for config file naming.
const AppName = "mcpinject"

// Config represents the top-level configuration structure.
type Config struct {
	Version    int            `mapstructure:"version" yaml:"version"`
	Retries    int            `mapstructure:"retries" yaml:"retries"`
	SchemaPath string         `mapstructure:"schema_path" yaml:"schema_path,omitempty"`
	Backup     BackupSettings `mapstructure:"backup" yaml:"backup"`
}

// BackupSettings controls sidecar backup behavior.
type BackupSettings struct {
	// Timestamped switches from a single overwritten <path>.backup to
	// per-operation <path>.backup.<timestamp> variants.
	Timestamped bool `mapstructure:"timestamped" yaml:"timestamped"`

	// Retention is how many timestamped backups `backup prune` keeps.
	Retention int `mapstructure:"retention" yaml:"retention"`
}

// Default configuration values.
const (
	DefaultRetries   = 5
	DefaultRetention = 5
)

// Init initializes Viper with default configuration.
// Call this once at application startup before accessing config values.
func Init() {
	// Config file settings
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Search paths (in order of precedence)
	viper.AddConfigPath(".") // Current directory
	viper.AddConfigPath(filepath.Join(xdg.ConfigHome, AppName))

	// Environment variable support
	viper.SetEnvPrefix("MCPINJECT")
	viper.AutomaticEnv()

	// Defaults
	viper.SetDefault("version", 1)
	viper.SetDefault("retries", DefaultRetries)
	viper.SetDefault("backup.timestamped", false)
	viper.SetDefault("backup.retention", DefaultRetention)
}

// Load reads the configuration file.
// If path is provided, it reads from that specific file.
// If path is empty, it searches in the default locations.
// Returns the loaded configuration or default values if no file is found (when path is empty).
func Load(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// If user specified a path, this is an error
			if path != "" {
				return nil, errors.Wrapf(err, "config file not found at %s", path)
			}
			// Otherwise (implicit load), it's fine to use defaults
		} else {
			// Real read error (parsing, permissions, etc)
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}

	return &cfg, nil
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.yaml")
}

// WriteDefault writes a starter config file to path.
// Fails if a file already exists there.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return errors.Newf("config file already exists at %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "creating config directory")
	}

	cfg := Config{
		Version: 1,
		Retries: DefaultRetries,
		Backup: BackupSettings{
			Timestamped: false,
			Retention:   DefaultRetention,
		},
	}
	return errors.Wrap(fileutil.AtomicWriteYAML(path, cfg), "writing default config")
}
