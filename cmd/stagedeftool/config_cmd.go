package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/Faultbox/stagedef/internal/config"
)

func configCmd() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Manage the configuration file",
		Commands: []*cli.Command{
			{
				Name:      "init",
				Usage:     "Write the effective configuration to a file",
				ArgsUsage: "[path]",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg, err := config.Load(cmd)
					if err != nil {
						return err
					}
					if cmd.NArg() > 0 {
						path := cmd.Args().First()
						if err := cfg.SaveTo(path); err != nil {
							return err
						}
						fmt.Printf("Wrote %s\n", path)
						return nil
					}
					if err := cfg.Save(); err != nil {
						return err
					}
					fmt.Printf("Wrote %s\n", filepath.Join(config.ConfigDir(), "config.yaml"))
					return nil
				},
			},
		},
	}
}
