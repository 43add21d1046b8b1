package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/larose/lynxeval/search/config"
	"github.com/larose/lynxeval/search/diversity"
	"github.com/larose/lynxeval/search/logger"
	"github.com/larose/lynxeval/search/metrics"
	"github.com/larose/lynxeval/search/query"
	"github.com/larose/lynxeval/search/trec"
	"golang.org/x/sync/errgroup"
)

// Index is what the runner needs from an index: the posting store and the
// mapping between internal and external document ids.
type Index interface {
	query.Store
	Attribute(name string, docId uint64) (string, bool, error)
	LookupExternalId(externalIdField, externalId string) (uint64, bool, error)
}

// Runner evaluates a query file against an index and writes a run file.
// Independent queries are evaluated concurrently.
type Runner struct {
	config  *config.Config
	index   Index
	parser  *query.Parser
	model   query.RetrievalModel
	metrics *metrics.Metrics
	log     *slog.Logger

	intents []Query
	// initialRanking replaces the evaluation of the queries and their intents
	// when diversifying. Its scores are always normalized.
	initialRanking *trec.Run
}

func NewRunner(cfg *config.Config, index Index, m *metrics.Metrics) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	model, err := cfg.RetrievalModel()
	if err != nil {
		return nil, err
	}

	runner := &Runner{
		config:  cfg,
		index:   index,
		parser:  query.NewParser(cfg.Index.DefaultField, cfg.Index.Fields...),
		model:   model,
		metrics: m,
		log:     logger.WithComponent("runner"),
	}

	if cfg.Diversity.Enabled {
		if err := runner.loadDiversityInputs(); err != nil {
			return nil, err
		}
	}

	return runner, nil
}

func (r *Runner) loadDiversityInputs() error {
	intents, err := ReadQueryFile(r.config.Diversity.IntentsFile)
	if err != nil {
		return err
	}
	r.intents = intents

	if r.config.Diversity.InitialRankingFile == "" {
		return nil
	}

	file, err := os.Open(r.config.Diversity.InitialRankingFile)
	if err != nil {
		return fmt.Errorf("opening initial ranking file: %w", err)
	}
	defer file.Close()

	run, err := trec.ReadRun(file)
	if err != nil {
		return fmt.Errorf("reading %s: %w", r.config.Diversity.InitialRankingFile, err)
	}

	r.initialRanking = run

	r.log.Info("initial ranking loaded",
		"queries", len(run.QueryIds),
		"maxScore", run.MaxScore())

	return nil
}

// Run evaluates every query of the query file and writes the rankings in
// query file order.
func (r *Runner) Run(ctx context.Context) error {
	queries, err := ReadQueryFile(r.config.Queries.Path)
	if err != nil {
		return err
	}

	start := time.Now()
	rankings, err := r.RunQueries(ctx, queries)
	if err != nil {
		return err
	}

	file, err := os.Create(r.config.Queries.Output)
	if err != nil {
		return fmt.Errorf("creating run file: %w", err)
	}

	if err := r.WriteRun(file, queries, rankings); err != nil {
		file.Close()
		return err
	}

	if err := file.Close(); err != nil {
		return err
	}

	r.log.Info("run written",
		"queries", len(queries),
		"output", r.config.Queries.Output,
		"elapsed", time.Since(start))

	return nil
}

// RunQueries returns the ranking of each query, in the order of queries. The
// first failing query cancels the others.
func (r *Runner) RunQueries(ctx context.Context, queries []Query) ([]*query.RankedList, error) {
	rankings := make([]*query.RankedList, len(queries))

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(max(1, r.config.Queries.Workers))

	for i, q := range queries {
		i, q := i, q
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			ranking, err := r.RunQuery(q)
			if err != nil {
				return fmt.Errorf("query %s: %w", q.Id, err)
			}

			rankings[i] = ranking
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return rankings, nil
}

// RunQuery returns the ranking of one query. A malformed query gives an
// empty ranking.
func (r *Runner) RunQuery(q Query) (*query.RankedList, error) {
	r.metrics.QueriesInFlight.Inc()
	defer r.metrics.QueriesInFlight.Dec()

	start := time.Now()
	ranking, err := r.runQuery(q)

	status := "ok"
	switch {
	case errors.Is(err, query.ErrMalformedQuery):
		r.log.Warn("malformed query", "queryId", q.Id, "query", q.Text, "error", err)
		ranking, err, status = query.NewRankedList(), nil, "malformed"
	case err != nil:
		status = "error"
	case ranking.Len() == 0:
		status = "empty"
	}
	r.metrics.QueriesTotal.WithLabelValues(status).Inc()

	if err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	r.metrics.QueryLatency.WithLabelValues(r.model.Kind.String()).Observe(elapsed.Seconds())
	r.metrics.ResultsCount.Observe(float64(ranking.Len()))

	r.log.Info("query evaluated",
		"queryId", q.Id,
		"results", ranking.Len(),
		"latency", elapsed)

	return ranking, nil
}

func (r *Runner) runQuery(q Query) (*query.RankedList, error) {
	if !r.config.Diversity.Enabled {
		return r.evaluate(q.Text, r.config.Queries.ResultLength)
	}

	baseline, intents, normalize, err := r.diversityInputs(q)
	if err != nil {
		return nil, err
	}

	if len(intents) == 0 {
		r.log.Warn("no intent, keeping the baseline", "queryId", q.Id)
		baseline.Sort()
		baseline.Truncate(r.config.Diversity.MaxResultRankingLength)
		return baseline, nil
	}

	options, err := r.config.DiversityOptions(normalize)
	if err != nil {
		return nil, err
	}

	ranking, err := diversity.Diversify(baseline, intents, options)
	if err != nil {
		return nil, err
	}
	r.metrics.DiversifiedTotal.WithLabelValues(options.Algorithm.String()).Inc()

	return ranking, nil
}

// diversityInputs returns the baseline and intent rankings of q, and whether
// their scores must be normalized.
func (r *Runner) diversityInputs(q Query) (*query.RankedList, []*query.RankedList, bool, error) {
	intentQueries := IntentsOf(r.intents, q.Id)
	intents := make([]*query.RankedList, 0, len(intentQueries))

	if r.initialRanking != nil {
		baseline, err := r.initialRankingOf(q.Id)
		if err != nil {
			return nil, nil, false, err
		}

		for _, intentQuery := range intentQueries {
			intent, err := r.initialRankingOf(intentQuery.Id)
			if err != nil {
				return nil, nil, false, err
			}
			intents = append(intents, intent)
		}

		return baseline, intents, true, nil
	}

	length := r.config.Diversity.MaxInputRankingsLength

	baseline, err := r.evaluate(q.Text, length)
	if err != nil {
		return nil, nil, false, err
	}

	for _, intentQuery := range intentQueries {
		intent, err := r.evaluate(intentQuery.Text, length)
		if err != nil {
			return nil, nil, false, fmt.Errorf("intent %s: %w", intentQuery.Id, err)
		}
		intents = append(intents, intent)
	}

	normalize := r.model.Kind == query.BM25 || diversity.NeedsNormalization(baseline) ||
		diversity.NeedsNormalization(intents...)

	return baseline, intents, normalize, nil
}

func (r *Runner) evaluate(text string, length int) (*query.RankedList, error) {
	root, err := r.parser.Parse(text, r.model)
	if err != nil {
		return nil, err
	}

	collector := query.NewTopNCollector(length)
	if err := Evaluate(root, r.index, r.model, collector); err != nil {
		return nil, err
	}

	return collector.Get(), nil
}

// initialRankingOf builds a ranking from the entries of queryId in the
// initial ranking file. A query without entries has an empty ranking.
func (r *Runner) initialRankingOf(queryId string) (*query.RankedList, error) {
	entries, _ := r.initialRanking.Get(queryId)

	ranking := query.NewRankedList()
	for _, entry := range entries {
		docId, exists, err := r.index.LookupExternalId(r.config.Index.ExternalIdField, entry.ExternalId)
		if err != nil {
			return nil, err
		}

		if !exists {
			r.log.Warn("unknown document in initial ranking",
				"queryId", queryId,
				"externalId", entry.ExternalId)
			continue
		}

		ranking.Add(docId, entry.Score)
	}

	return ranking, nil
}

// WriteRun writes the ranking of each query, under its external document ids.
func (r *Runner) WriteRun(w io.Writer, queries []Query, rankings []*query.RankedList) error {
	writer := trec.NewWriter(w, r.config.Queries.RunTag)

	for i, q := range queries {
		ranking := rankings[i]

		externalIds := make([]string, ranking.Len())
		scores := make([]float64, ranking.Len())
		for j, entry := range ranking.Entries() {
			externalId, exists, err := r.index.Attribute(r.config.Index.ExternalIdField, entry.DocId)
			if err != nil {
				return err
			}
			if !exists {
				return fmt.Errorf("document %d has no %s field", entry.DocId, r.config.Index.ExternalIdField)
			}

			externalIds[j] = externalId
			scores[j] = entry.Score
		}

		if err := writer.WriteRanking(q.Id, externalIds, scores); err != nil {
			return err
		}
	}

	return writer.Flush()
}
