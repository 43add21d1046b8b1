// Package metrics defines the Prometheus collectors of the batch runner and
// exposes an HTTP handler for scraping.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors updated while queries are evaluated.
type Metrics struct {
	QueriesTotal     *prometheus.CounterVec
	QueryLatency     *prometheus.HistogramVec
	ResultsCount     prometheus.Histogram
	DiversifiedTotal *prometheus.CounterVec
	DocsIndexedTotal prometheus.Counter
	QueriesInFlight  prometheus.Gauge
}

// New creates the collectors and registers them with registerer.
func New(registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		QueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lynxeval_queries_total",
				Help: "Total evaluated queries by status (ok, empty, malformed, error).",
			},
			[]string{"status"},
		),
		QueryLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lynxeval_query_latency_seconds",
				Help:    "Query evaluation latency in seconds by retrieval model.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"model"},
		),
		ResultsCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "lynxeval_results_count",
				Help:    "Number of results written per query.",
				Buckets: []float64{0, 1, 10, 100, 1000, 10000},
			},
		),
		DiversifiedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lynxeval_diversified_total",
				Help: "Total diversified rankings by algorithm.",
			},
			[]string{"algorithm"},
		),
		DocsIndexedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "lynxeval_docs_indexed_total",
				Help: "Total documents indexed.",
			},
		),
		QueriesInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "lynxeval_queries_in_flight",
				Help: "Number of queries currently being evaluated.",
			},
		),
	}

	registerer.MustRegister(
		m.QueriesTotal,
		m.QueryLatency,
		m.ResultsCount,
		m.DiversifiedTotal,
		m.DocsIndexedTotal,
		m.QueriesInFlight,
	)

	return m
}

// StartServer serves gatherer on addr under /metrics until the returned
// shutdown function is called.
func StartServer(addr string, gatherer prometheus.Gatherer) (shutdown func(context.Context) error) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("metrics server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server error", "error", err)
		}
	}()

	return server.Shutdown
}
