// stagedeftool inspects, validates and serves SMB2 stagedef files.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/Faultbox/stagedef/internal/config"
	"github.com/Faultbox/stagedef/internal/logger"
	"github.com/Faultbox/stagedef/pkg/stagedef"
)

func main() {
	app := &cli.Command{
		Name:  "stagedeftool",
		Usage: "Super Monkey Ball 2 stagedef utility",
		Flags: config.Flags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
		Commands: []*cli.Command{
			infoCmd(),
			dumpCmd(),
			gridCmd(),
			validateCmd(),
			repackCmd(),
			serveCmd(),
			configCmd(),
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := app.Run(ctx, os.Args)
	stop()
	logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads the configuration for cmd and initializes logging from it.
func setup(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd)
	if err != nil {
		return nil, err
	}
	fileCfg := logger.FileConfig{}
	if cfg.Logging.LogFile != "" {
		fileCfg = logger.FileConfig{
			Path:       cfg.Logging.LogFile,
			MaxSizeMB:  cfg.Logging.MaxSizeMB,
			MaxBackups: cfg.Logging.MaxBackups,
			MaxAgeDays: cfg.Logging.MaxAgeDays,
			Compress:   cfg.Logging.Compress,
		}
	}
	if err := logger.InitWithFileConfig(cfg.Logging.Level, fileCfg, true); err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	return cfg, nil
}

func newLoader(cfg *config.Config) *stagedef.Loader {
	return stagedef.NewLoader(
		stagedef.WithLogger(logger.Named("loader")),
		stagedef.WithMaxSize(cfg.Loader.MaxBlobSize),
	)
}

// loadArg loads the stagedef named by the first argument of cmd.
func loadArg(cmd *cli.Command, cfg *config.Config, usage string) (*stagedef.Stagedef, string, error) {
	if cmd.NArg() < 1 {
		return nil, "", fmt.Errorf("usage: stagedeftool %s", usage)
	}
	path := cmd.Args().First()
	sd, err := newLoader(cfg).LoadFile(path)
	if err != nil {
		return nil, path, err
	}
	return sd, path, nil
}
