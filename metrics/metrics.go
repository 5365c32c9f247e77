// Package metrics holds the prometheus collectors of the service. Collectors
// are registered with the default registry on package initialisation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts requests labeled by method, path and status code.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "unigraph_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "unigraph_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	// StorageQueryDuration measures storage round trips per collection and
	// operation (fetch_one, fetch_all, fetch_range, fetch_matching, count).
	StorageQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "unigraph_storage_query_duration_seconds",
			Help:    "Duration of storage queries in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"collection", "operation"},
	)

	StorageErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "unigraph_storage_errors_total",
			Help: "Total number of failed storage queries",
		},
		[]string{"collection", "operation"},
	)

	// LoaderBatchSize observes the number of distinct keys flushed by a
	// batch loader in one grouped fetch.
	LoaderBatchSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "unigraph_loader_batch_size",
			Help:    "Number of keys per grouped fetch",
			Buckets: prometheus.ExponentialBuckets(1, 2, 11),
		},
		[]string{"kind"},
	)

	GraphQLErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "unigraph_graphql_errors_total",
			Help: "Total number of errors reported in GraphQL responses",
		},
	)
)
