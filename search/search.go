package search

import (
	"errors"
	"log/slog"

	"github.com/larose/lynxeval/search/query"
)

// Evaluate walks root document by document and feeds every match to
// collector. A tree that cannot match anything, such as an operator without
// arguments, collects nothing.
func Evaluate(root query.ScoreNode, store query.Store, model query.RetrievalModel, collector query.Collector) error {
	err := root.Initialize(query.NewExecutionContext(store, model))
	if errors.Is(err, query.ErrMalformedQuery) {
		slog.Warn("query matches nothing", "query", root.String(), "error", err)
		return nil
	}
	if err != nil {
		return err
	}

	for root.HasMatch() {
		docId, ok := root.CurrentDocument()
		if !ok {
			break
		}

		score, err := root.Score()
		if err != nil {
			return err
		}

		collector.Collect(docId, score)
		root.AdvancePast(docId)
	}

	return nil
}

// Search evaluates root and returns every match in document order.
func Search(root query.ScoreNode, store query.Store, model query.RetrievalModel) (*query.RankedList, error) {
	results := query.NewRankedList()
	if err := Evaluate(root, store, model, results); err != nil {
		return nil, err
	}

	return results, nil
}
