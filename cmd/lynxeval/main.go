package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/larose/lynxeval/search/config"
	"github.com/larose/lynxeval/search/logger"
	"github.com/larose/lynxeval/search/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "lynxeval: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "lynxeval",
		Usage: "Evaluate and diversify ranked retrieval runs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML configuration file",
				EnvVars: []string{"LYNX_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			newIndexCommand(),
			newDeleteCommand(),
			newSearchCommand(),
		},
	}
}

// environment is what every command sets up before running.
type environment struct {
	config  *config.Config
	metrics *metrics.Metrics
	close   func()
}

func setup(c *cli.Context) (*environment, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	env := &environment{
		config:  cfg,
		metrics: metrics.New(registry),
		close:   func() {},
	}

	if cfg.Metrics.Enabled {
		shutdown := metrics.StartServer(cfg.Metrics.Addr, registry)
		env.close = func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := shutdown(ctx); err != nil {
				slog.Error("metrics server shutdown", "error", err)
			}
		}
	}

	return env, nil
}
