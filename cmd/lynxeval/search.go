package main

import (
	"fmt"

	"github.com/larose/lynxeval/search"
	"github.com/larose/lynxeval/search/index"
	"github.com/urfave/cli/v2"
)

func newSearchCommand() *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Evaluate the query file of the configuration and write a trec run",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "cpuprofile",
				Usage: "Write a CPU profile to this file",
			},
		},
		Action: runSearch,
	}
}

func runSearch(c *cli.Context) error {
	env, err := setup(c)
	if err != nil {
		return err
	}
	defer env.close()

	stopProfiler, err := startCpuProfiler(c.String("cpuprofile"))
	if err != nil {
		return err
	}
	defer stopProfiler()

	indexReader, err := index.NewIndexReader(env.config.Index.Path)
	if err != nil {
		return fmt.Errorf("opening index %s: %w", env.config.Index.Path, err)
	}
	defer indexReader.Close()

	runner, err := search.NewRunner(env.config, indexReader, env.metrics)
	if err != nil {
		return err
	}

	return runner.Run(c.Context)
}
