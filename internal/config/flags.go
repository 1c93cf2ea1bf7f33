package config

import "github.com/urfave/cli/v3"

// Flag names shared by the root command and its subcommands.
const (
	FlagConfig      = "config"
	FlagDebug       = "debug"
	FlagLogLevel    = "log-level"
	FlagLogFile     = "log-file"
	FlagMaxBlobSize = "max-blob-size"
	FlagFormat      = "format"
	FlagIndent      = "indent"
	FlagWorkers     = "workers"
	FlagAddr        = "addr"
)

// Flags returns the global flags. Subcommands add their own via
// DumpFlags, ValidateFlags and ServerFlags.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: FlagConfig, Aliases: []string{"c"}, Usage: "Path to config file"},
		&cli.BoolFlag{Name: FlagDebug, Usage: "Enable debug logging"},
		&cli.StringFlag{Name: FlagLogLevel, Usage: "Log level: debug|info|warn|error"},
		&cli.StringFlag{Name: FlagLogFile, Usage: "Also write logs to this file (rotated)"},
		&cli.IntFlag{Name: FlagMaxBlobSize, Usage: "Reject stagedefs larger than this many bytes (0 = no limit)"},
	}
}

// DumpFlags returns the report output flags.
func DumpFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: FlagFormat, Aliases: []string{"f"}, Usage: "Output format: json|yaml"},
		&cli.IntFlag{Name: FlagIndent, Usage: "Indent width (0 = compact JSON)"},
	}
}

// ValidateFlags returns the batch validation flags.
func ValidateFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{Name: FlagWorkers, Aliases: []string{"j"}, Usage: "Number of files loaded concurrently"},
	}
}

// ServerFlags returns the HTTP API flags.
func ServerFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: FlagAddr, Usage: "Listen address"},
	}
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config, cmd *cli.Command) {
	if cmd.IsSet(FlagLogLevel) {
		cfg.Logging.Level = cmd.String(FlagLogLevel)
	}
	if cmd.Bool(FlagDebug) {
		cfg.Logging.Level = "debug"
	}
	if cmd.IsSet(FlagLogFile) {
		cfg.Logging.LogFile = cmd.String(FlagLogFile)
	}
	if cmd.IsSet(FlagMaxBlobSize) {
		cfg.Loader.MaxBlobSize = int(cmd.Int(FlagMaxBlobSize))
	}
	if cmd.IsSet(FlagFormat) {
		cfg.Dump.Format = cmd.String(FlagFormat)
	}
	if cmd.IsSet(FlagIndent) {
		cfg.Dump.Indent = int(cmd.Int(FlagIndent))
	}
	if cmd.IsSet(FlagWorkers) {
		cfg.Validate.Workers = int(cmd.Int(FlagWorkers))
	}
	if cmd.IsSet(FlagAddr) {
		cfg.Server.Addr = cmd.String(FlagAddr)
	}
}
