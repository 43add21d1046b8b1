package main

import (
	"errors"

	"github.com/larose/lynxeval/search/index"
	"github.com/larose/lynxeval/search/logger"
	"github.com/urfave/cli/v2"
)

func newDeleteCommand() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete documents from an index by external id",
		ArgsUsage: "<id>...",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "index",
				Usage: "Index directory (defaults to index.path)",
			},
		},
		Action: runDelete,
	}
}

func runDelete(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("expected at least one document id")
	}

	env, err := setup(c)
	if err != nil {
		return err
	}
	defer env.close()

	directory := c.String("index")
	if directory == "" {
		directory = env.config.Index.Path
	}
	if directory == "" {
		return errors.New("missing index directory")
	}

	externalIds := make([][]byte, 0, c.NArg())
	for _, externalId := range c.Args().Slice() {
		externalIds = append(externalIds, []byte(externalId))
	}

	if err := index.NewIndexWriter(directory).DeleteDocuments(env.config.Index.ExternalIdField, externalIds); err != nil {
		return err
	}

	logger.WithComponent("index").Info("documents deleted", "directory", directory, "ids", len(externalIds))

	return nil
}
