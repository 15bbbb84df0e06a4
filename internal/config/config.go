// Package config provides configuration types and defaults for ambuild.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/appmanifest/ambuild/internal/log"
)

// Config holds all configuration options for ambuild.
type Config struct {
	// RegistryDef is the path to the registry definition YAML used to
	// resolve registry names for package URLs.
	RegistryDef string `mapstructure:"registry_def"`

	// OutputDir is the default directory for generated mini-manifests.
	OutputDir string `mapstructure:"output_dir"`

	// LogFile routes debug logging to a file instead of stderr.
	LogFile string `mapstructure:"log_file"`

	// Debug enables debug logging.
	Debug bool `mapstructure:"debug"`
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		OutputDir: ".",
		Debug:     false,
	}
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# ambuild configuration

# Registry definition used to resolve registry names for package URLs
# registry_def: /path/to/registry.yaml

# Default directory for generated mini-manifests
output_dir: .

# Route debug logging to a file instead of stderr
# log_file: ~/.config/ambuild/ambuild.log

# Enable debug logging
debug: false
`
}

// WriteDefaultConfig creates a config file at the given path with default
// settings and comments. Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
