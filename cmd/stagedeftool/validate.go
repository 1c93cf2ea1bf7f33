package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/stagedef/internal/config"
	"github.com/Faultbox/stagedef/internal/logger"
	"github.com/Faultbox/stagedef/pkg/stagedef"
)

type validation struct {
	path      string
	triangles int
	err       error
}

func validateCmd() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Load many stagedefs concurrently and report failures",
		ArgsUsage: "<files...>",
		Flags:     config.ValidateFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := setup(cmd)
			if err != nil {
				return err
			}
			paths := cmd.Args().Slice()
			if len(paths) == 0 {
				return fmt.Errorf("usage: stagedeftool validate <files...>")
			}

			results, err := validateFiles(ctx, newLoader(cfg), paths, cfg.Validate.Workers)
			if err != nil {
				return err
			}

			failed := 0
			for _, r := range results {
				if r.err != nil {
					failed++
					fmt.Printf("FAIL %s: %v\n", r.path, r.err)
					continue
				}
				fmt.Printf("ok   %s (%d triangles)\n", r.path, r.triangles)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d stagedefs failed to load", failed, len(results))
			}
			return nil
		},
	}
}

// validateFiles loads every path with at most workers loads in flight and
// returns one result per path, in argument order. Load failures are
// recorded in the results; only cancellation aborts the batch.
func validateFiles(ctx context.Context, loader *stagedef.Loader, paths []string, workers int) ([]validation, error) {
	log := logger.Named("validate")
	results := make([]validation, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i].path = path
			sd, err := loader.LoadFile(path)
			if err != nil {
				log.Debug("load failed", zap.String("path", path), zap.String("kind", stagedef.ErrorKind(err)), zap.Error(err))
				results[i].err = err
				return nil
			}
			results[i].triangles = sd.TriangleCount()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
