package main

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/tlc/internal/api"
	"github.com/samcharles93/tlc/internal/logger"
)

func serveCmd(g *globals) *cli.Command {
	var (
		addr        string
		readTimeout time.Duration
		maxBody     int64
		reports     int
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the transfer list inspection API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       "127.0.0.1:8080",
				Destination: &addr,
			},
			&cli.DurationFlag{
				Name:        "read-timeout",
				Usage:       "read header timeout",
				Value:       30 * time.Second,
				Destination: &readTimeout,
			},
			&cli.Int64Flag{
				Name:        "max-body",
				Usage:       "largest accepted transfer list in bytes",
				Value:       api.DefaultMaxBody,
				Destination: &maxBody,
			},
			&cli.IntFlag{
				Name:        "reports",
				Usage:       "number of reports kept in memory",
				Value:       api.DefaultReportLimit,
				Destination: &reports,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)

			if g.cfg.ServerAddress != "" && !cmd.IsSet("addr") {
				addr = g.cfg.ServerAddress
			}
			if g.cfg.MaxBody != nil && !cmd.IsSet("max-body") {
				maxBody = *g.cfg.MaxBody
			}

			server := api.NewServer(api.Config{
				MaxBody: maxBody,
				Store:   api.NewReportStore(reports),
				Logger:  log.With("component", "api"),
			})
			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())
			server.Register(e)
			log.Info("starting server", "address", addr, "max_body", maxBody)
			sc := echo.StartConfig{
				Address: addr,
				BeforeServeFunc: func(srv *http.Server) error {
					srv.ReadHeaderTimeout = readTimeout
					return nil
				},
			}
			return sc.Start(ctx, e)
		},
	}
}
