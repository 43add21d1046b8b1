package search

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var ErrMalformedQueryLine = errors.New("malformed query line")

// Query is one line of a query file: queryId:query text. Intents of query 10
// have the ids 10.1, 10.2 and so on.
type Query struct {
	Id   string
	Text string
}

func ReadQueries(r io.Reader) ([]Query, error) {
	queries := make([]Query, 0, 100)

	scanner := bufio.NewScanner(r)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		id, text, found := strings.Cut(line, ":")
		if !found {
			return nil, fmt.Errorf("line %d: %w: missing ':'", lineNumber, ErrMalformedQueryLine)
		}

		queries = append(queries, Query{Id: strings.TrimSpace(id), Text: strings.TrimSpace(text)})
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return queries, nil
}

func ReadQueryFile(path string) ([]Query, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening query file: %w", err)
	}
	defer file.Close()

	queries, err := ReadQueries(file)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	return queries, nil
}

// IntentsOf returns the intents of queryId in file order.
func IntentsOf(intents []Query, queryId string) []Query {
	prefix := queryId + "."

	results := make([]Query, 0, 4)
	for _, intent := range intents {
		if strings.HasPrefix(intent.Id, prefix) {
			results = append(results, intent)
		}
	}

	return results
}
