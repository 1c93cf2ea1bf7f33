package main

import (
	"context"
	"os"
	"sort"

	"github.com/urfave/cli/v3"

	"github.com/Faultbox/stagedef/internal/config"
	"github.com/Faultbox/stagedef/internal/report"
	"github.com/Faultbox/stagedef/pkg/stagedef"
)

func dumpCmd() *cli.Command {
	return &cli.Command{
		Name:      "dump",
		Usage:     "Write a structured stagedef report as JSON or YAML",
		ArgsUsage: "<file>",
		Flags:     config.DumpFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := setup(cmd)
			if err != nil {
				return err
			}
			sd, path, err := loadArg(cmd, cfg, "dump <file> [--format json|yaml]")
			if err != nil {
				return err
			}
			st, err := os.Stat(path)
			if err != nil {
				return err
			}
			r := report.Build(sd, int(st.Size()))
			r.Source = path
			return report.Write(os.Stdout, r, cfg.Dump.Format, cfg.Dump.Indent)
		},
	}
}

// poolOrder returns the non-empty pools of counts in arena order.
func poolOrder(counts map[string]int) []string {
	rank := make(map[string]int)
	for i, name := range stagedef.PoolNames() {
		rank[name] = i
	}
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ri, iok := rank[names[i]]
		rj, jok := rank[names[j]]
		if iok != jok {
			return iok
		}
		if iok {
			return ri < rj
		}
		return names[i] < names[j]
	})
	return names
}
