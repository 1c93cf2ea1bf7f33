package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Load loads configuration with priority: defaults < file < flags.
func Load(cmd *cli.Command) (*Config, error) {
	cfg := Default()

	// Explicit path takes priority
	configPath := cmd.String(FlagConfig)
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	applyFlags(cfg, cmd)

	if err := cfg.Check(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Check validates values that would otherwise fail deep inside a command.
func (c *Config) Check() error {
	switch c.Dump.Format {
	case "json", "yaml":
	default:
		return fmt.Errorf("dump.format: unsupported format %q", c.Dump.Format)
	}
	if c.Validate.Workers < 1 {
		return fmt.Errorf("validate.workers: must be at least 1, got %d", c.Validate.Workers)
	}
	if c.Loader.MaxBlobSize < 0 {
		return fmt.Errorf("loader.max_blob_size: must not be negative")
	}
	return nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./stagedeftool.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "stagedeftool")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "stagedeftool")
	default: // Linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "stagedeftool")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "stagedeftool")
	}
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
