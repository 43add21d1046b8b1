package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/larose/lynxeval/search/index"
	"github.com/larose/lynxeval/search/logger"
	"github.com/urfave/cli/v2"
)

func newIndexCommand() *cli.Command {
	return &cli.Command{
		Name:      "index",
		Usage:     "Add the documents of a JSONL file to an index",
		ArgsUsage: "<documents.jsonl>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "index",
				Usage: "Index directory (defaults to index.path)",
			},
			&cli.IntFlag{
				Name:  "batch-size",
				Value: 10_000,
				Usage: "Documents per segment",
			},
			&cli.StringFlag{
				Name:  "cpuprofile",
				Usage: "Write a CPU profile to this file",
			},
		},
		Action: runIndex,
	}
}

// documentIterator reads one JSON object per line. Every string field is a
// text field except the external id field, indexed as a single term.
type documentIterator struct {
	file            *os.File
	reader          *bufio.Reader
	externalIdField string
}

func newDocumentIterator(filePath, externalIdField string) (*documentIterator, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}

	return &documentIterator{
		file:            file,
		reader:          bufio.NewReader(file),
		externalIdField: externalIdField,
	}, nil
}

func (it *documentIterator) NextBatch(maxItems int) ([]index.Document, error) {
	batch := make([]index.Document, 0, maxItems)

	eof := false
	for {
		lineBytes, err := it.reader.ReadBytes('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				eof = true
			} else {
				return nil, err
			}
		}

		if len(bytes.TrimSpace(lineBytes)) > 0 {
			doc, err := it.convert(lineBytes)
			if err != nil {
				slog.Warn("skipping document", "error", err)
			} else {
				batch = append(batch, doc)
			}
		}

		if eof || len(batch) == maxItems {
			break
		}
	}

	return batch, nil
}

func (it *documentIterator) convert(line []byte) (index.Document, error) {
	decoder := json.NewDecoder(bytes.NewReader(line))
	decoder.UseNumber()

	var values map[string]any
	if err := decoder.Decode(&values); err != nil {
		return nil, fmt.Errorf("error parsing JSON: %w", err)
	}

	externalId, exists := values[it.externalIdField]
	if !exists {
		return nil, fmt.Errorf("document without %q field", it.externalIdField)
	}

	names := make([]string, 0, len(values))
	for name := range values {
		if name != it.externalIdField {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	doc := make(index.Document, 0, len(values))
	doc = append(doc, index.Field{
		FieldType: index.ByteFieldType,
		Name:      it.externalIdField,
		Value:     []byte(fmt.Sprint(externalId)),
	})

	for _, name := range names {
		text, ok := values[name].(string)
		if !ok {
			continue
		}

		doc = append(doc, index.Field{
			FieldType: index.TextFieldType,
			Name:      name,
			Value:     []byte(text),
		})
	}

	return doc, nil
}

func (it *documentIterator) Close() error {
	return it.file.Close()
}

func runIndex(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("expected one documents file")
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

	stopProfiler, err := startCpuProfiler(c.String("cpuprofile"))
	if err != nil {
		return err
	}
	defer stopProfiler()

	if err := os.MkdirAll(directory, 0700); err != nil {
		return err
	}

	iterator, err := newDocumentIterator(c.Args().First(), env.config.Index.ExternalIdField)
	if err != nil {
		return err
	}
	defer iterator.Close()

	log := logger.WithComponent("index")
	indexWriter := index.NewIndexWriter(directory)
	batchSize := max(1, c.Int("batch-size"))

	totalProcessed := 0
	for {
		docs, err := iterator.NextBatch(batchSize)
		if err != nil {
			return err
		}

		if len(docs) == 0 {
			break
		}

		if err := indexWriter.AddDocuments(docs); err != nil {
			return err
		}

		totalProcessed += len(docs)
		env.metrics.DocsIndexedTotal.Add(float64(len(docs)))
		log.Info("segment written", "documents", len(docs), "totalProcessed", totalProcessed)
	}

	log.Info("indexing done", "directory", directory, "documents", totalProcessed)

	return nil
}
