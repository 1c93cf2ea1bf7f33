// Package config handles stagedeftool configuration loading and management.
package config

import "time"

// Config holds all tool settings.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging"`
	Loader   LoaderConfig   `yaml:"loader"`
	Server   ServerConfig   `yaml:"server"`
	Dump     DumpConfig     `yaml:"dump"`
	Validate ValidateConfig `yaml:"validate"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	LogFile    string `yaml:"log_file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// LoaderConfig holds stagedef loader limits.
type LoaderConfig struct {
	// MaxBlobSize rejects blobs larger than this many bytes (0 = no limit).
	MaxBlobSize int `yaml:"max_blob_size"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
}

// DumpConfig holds report output settings.
type DumpConfig struct {
	Format string `yaml:"format"` // json or yaml
	Indent int    `yaml:"indent"`
}

// ValidateConfig holds batch validation settings.
type ValidateConfig struct {
	Workers int `yaml:"workers"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 7,
			Compress:   true,
		},
		Loader: LoaderConfig{
			MaxBlobSize: 64 << 20,
		},
		Server: ServerConfig{
			Addr:         "127.0.0.1:8080",
			ReadTimeout:  30 * time.Second,
			MaxBodyBytes: 64 << 20,
		},
		Dump: DumpConfig{
			Format: "json",
			Indent: 2,
		},
		Validate: ValidateConfig{
			Workers: 4,
		},
	}
}
