package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/urfave/cli/v3"
)

// isolate keeps Load from picking up config files of the machine running
// the tests.
func isolate(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
}

// loadWithArgs runs Load inside a command parsed from args.
func loadWithArgs(t *testing.T, args ...string) (*Config, error) {
	t.Helper()
	var cfg *Config
	flags := append(Flags(), DumpFlags()...)
	flags = append(flags, ValidateFlags()...)
	flags = append(flags, ServerFlags()...)
	cmd := &cli.Command{
		Name:  "test",
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			var err error
			cfg, err = Load(cmd)
			return err
		},
	}
	err := cmd.Run(context.Background(), append([]string{"test"}, args...))
	return cfg, err
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}
	if cfg.Loader.MaxBlobSize != 64<<20 {
		t.Errorf("expected max blob size 64 MiB, got %d", cfg.Loader.MaxBlobSize)
	}
	if cfg.Server.Addr != "127.0.0.1:8080" {
		t.Errorf("expected addr 127.0.0.1:8080, got %s", cfg.Server.Addr)
	}
	if cfg.Server.ReadTimeout != 30*time.Second {
		t.Errorf("expected read timeout 30s, got %v", cfg.Server.ReadTimeout)
	}
	if cfg.Dump.Format != "json" || cfg.Dump.Indent != 2 {
		t.Errorf("expected json/2, got %s/%d", cfg.Dump.Format, cfg.Dump.Indent)
	}
	if cfg.Validate.Workers != 4 {
		t.Errorf("expected 4 workers, got %d", cfg.Validate.Workers)
	}
	if err := cfg.Check(); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	yamlContent := `
logging:
  level: "debug"
  log_file: "stagedeftool.log"
  compress: false

loader:
  max_blob_size: 1048576

server:
  addr: ":9000"
  read_timeout: 5s
  max_body_bytes: 2048

dump:
  format: yaml
  indent: 4

validate:
  workers: 16
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Logging.Level != "debug" || cfg.Logging.LogFile != "stagedeftool.log" || cfg.Logging.Compress {
		t.Errorf("logging = %+v", cfg.Logging)
	}
	if cfg.Logging.MaxBackups != 3 {
		t.Errorf("expected unset max_backups to keep default 3, got %d", cfg.Logging.MaxBackups)
	}
	if cfg.Loader.MaxBlobSize != 1048576 {
		t.Errorf("expected max blob size 1048576, got %d", cfg.Loader.MaxBlobSize)
	}
	if cfg.Server.Addr != ":9000" || cfg.Server.ReadTimeout != 5*time.Second || cfg.Server.MaxBodyBytes != 2048 {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Dump.Format != "yaml" || cfg.Dump.Indent != 4 {
		t.Errorf("dump = %+v", cfg.Dump)
	}
	if cfg.Validate.Workers != 16 {
		t.Errorf("expected 16 workers, got %d", cfg.Validate.Workers)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "invalid.yaml")

	invalidYAML := `
loader:
  max_blob_size: not a number
  invalid syntax here
`
	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	isolate(t)

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	if err := os.WriteFile("stagedeftool.yaml", []byte("dump:\n  indent: 8\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}
	if path := findConfigFile(); path == "" {
		t.Error("expected to find stagedeftool.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	isolate(t)

	tests := []struct {
		name   string
		args   []string
		verify func(t *testing.T, cfg *Config)
	}{
		{
			name: "debug flag",
			args: []string{"--debug"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
		},
		{
			name: "debug wins over log level",
			args: []string{"--log-level", "error", "--debug"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
		},
		{
			name: "loader limit",
			args: []string{"--max-blob-size", "4096"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Loader.MaxBlobSize != 4096 {
					t.Errorf("expected max blob size 4096, got %d", cfg.Loader.MaxBlobSize)
				}
			},
		},
		{
			name: "dump format and indent",
			args: []string{"--format", "yaml", "--indent", "0"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Dump.Format != "yaml" || cfg.Dump.Indent != 0 {
					t.Errorf("dump = %+v", cfg.Dump)
				}
			},
		},
		{
			name: "workers and addr",
			args: []string{"-j", "12", "--addr", ":7000"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Validate.Workers != 12 || cfg.Server.Addr != ":7000" {
					t.Errorf("workers = %d, addr = %s", cfg.Validate.Workers, cfg.Server.Addr)
				}
			},
		},
		{
			name: "unset flags keep defaults",
			args: nil,
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Dump.Indent != 2 || cfg.Validate.Workers != 4 {
					t.Errorf("defaults overridden: %+v %+v", cfg.Dump, cfg.Validate)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := loadWithArgs(t, tt.args...)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	isolate(t)
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	yamlContent := `
dump:
  format: yaml
  indent: 6
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := loadWithArgs(t, "--config", configPath, "--indent", "1")
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Indent comes from the flag, format from the file.
	if cfg.Dump.Indent != 1 {
		t.Errorf("expected indent 1 from flag, got %d", cfg.Dump.Indent)
	}
	if cfg.Dump.Format != "yaml" {
		t.Errorf("expected format yaml from file, got %s", cfg.Dump.Format)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	isolate(t)

	tests := [][]string{
		{"--format", "xml"},
		{"--workers", "0"},
		{"--max-blob-size=-1"},
	}
	for _, args := range tests {
		if _, err := loadWithArgs(t, args...); err == nil {
			t.Errorf("expected error for %v", args)
		}
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Validate.Workers = 9
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("failed to reload saved config: %v", err)
	}
	if loaded.Validate.Workers != 9 {
		t.Errorf("expected 9 workers after reload, got %d", loaded.Validate.Workers)
	}
}
