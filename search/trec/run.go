// Package trec reads and writes rankings in the trec run format:
//
//	queryId Q0 externalDocId rank score tag
package trec

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	dummyRecord    = "dummyRecord"
	scorePrecision = 18
)

var ErrMalformedLine = errors.New("malformed run line")

type Entry struct {
	QueryId    string
	ExternalId string
	Rank       int
	Score      float64
	Tag        string
}

// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -
// Writer
// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -

type Writer struct {
	writer *bufio.Writer
	tag    string
}

func NewWriter(w io.Writer, tag string) *Writer {
	return &Writer{writer: bufio.NewWriter(w), tag: tag}
}

// WriteRanking writes the ranking of one query, already sorted by descending
// score, with 1-based ranks. An empty ranking is written as a single dummy
// line so that the query still appears in the run.
func (w *Writer) WriteRanking(queryId string, externalIds []string, scores []float64) error {
	if len(externalIds) != len(scores) {
		return fmt.Errorf("%d external ids for %d scores", len(externalIds), len(scores))
	}

	if len(externalIds) == 0 {
		_, err := fmt.Fprintf(w.writer, "%s Q0 %s 1 0 %s\n", queryId, dummyRecord, w.tag)
		return err
	}

	line := make([]byte, 0, 128)
	for i, externalId := range externalIds {
		line = line[:0]
		line = append(line, queryId...)
		line = append(line, " Q0 "...)
		line = append(line, externalId...)
		line = append(line, ' ')
		line = strconv.AppendInt(line, int64(i+1), 10)
		line = append(line, ' ')
		line = strconv.AppendFloat(line, scores[i], 'f', scorePrecision, 64)
		line = append(line, ' ')
		line = append(line, w.tag...)
		line = append(line, '\n')

		if _, err := w.writer.Write(line); err != nil {
			return err
		}
	}

	return nil
}

func (w *Writer) Flush() error {
	return w.writer.Flush()
}

// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -
// Reader
// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -

// Run holds the entries of a run file by query id, in file order.
type Run struct {
	QueryIds []string
	Entries  map[string][]Entry
}

func (r *Run) Get(queryId string) ([]Entry, bool) {
	entries, exists := r.Entries[queryId]
	return entries, exists
}

// MaxScore returns the highest score of the run, 0 for an empty run.
func (r *Run) MaxScore() float64 {
	maxScore := 0.0
	for _, entries := range r.Entries {
		for _, entry := range entries {
			maxScore = max(maxScore, entry.Score)
		}
	}

	return maxScore
}

// ReadRun parses a run. Dummy lines are skipped, their query has no entry.
func ReadRun(r io.Reader) (*Run, error) {
	run := &Run{
		QueryIds: make([]string, 0, 100),
		Entries:  make(map[string][]Entry, 100),
	}

	scanner := bufio.NewScanner(r)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		entry, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNumber, err)
		}

		entries, exists := run.Entries[entry.QueryId]
		if !exists {
			run.QueryIds = append(run.QueryIds, entry.QueryId)
		}

		if entry.ExternalId == dummyRecord {
			run.Entries[entry.QueryId] = entries
			continue
		}

		run.Entries[entry.QueryId] = append(entries, entry)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return run, nil
}

func parseLine(line string) (Entry, error) {
	fields := strings.Fields(line)
	if len(fields) < 5 {
		return Entry{}, fmt.Errorf("%w: expected at least 5 fields, got %d", ErrMalformedLine, len(fields))
	}

	rank, err := strconv.Atoi(fields[3])
	if err != nil {
		return Entry{}, fmt.Errorf("%w: rank %q", ErrMalformedLine, fields[3])
	}

	score, err := strconv.ParseFloat(fields[4], 64)
	if err != nil {
		return Entry{}, fmt.Errorf("%w: score %q", ErrMalformedLine, fields[4])
	}

	entry := Entry{
		QueryId:    fields[0],
		ExternalId: fields[2],
		Rank:       rank,
		Score:      score,
	}
	if len(fields) > 5 {
		entry.Tag = fields[5]
	}

	return entry, nil
}
