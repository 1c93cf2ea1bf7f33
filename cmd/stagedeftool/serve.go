package main

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/Faultbox/stagedef/internal/config"
	"github.com/Faultbox/stagedef/internal/logger"
	"github.com/Faultbox/stagedef/internal/server"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the stagedef HTTP API",
		Flags: config.ServerFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := setup(cmd)
			if err != nil {
				return err
			}

			srv := server.New(server.NewStore(), server.Config{
				Loader:       newLoader(cfg),
				Logger:       logger.Named("server"),
				MaxBodyBytes: cfg.Server.MaxBodyBytes,
			})
			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())
			srv.Register(e)

			logger.Info("starting server", zap.String("address", cfg.Server.Addr))
			sc := echo.StartConfig{
				Address: cfg.Server.Addr,
				BeforeServeFunc: func(hs *http.Server) error {
					hs.ReadTimeout = cfg.Server.ReadTimeout
					hs.ReadHeaderTimeout = cfg.Server.ReadTimeout
					return nil
				},
			}
			return sc.Start(ctx, e)
		},
	}
}
