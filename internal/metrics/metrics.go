// Package metrics provides Prometheus instrumentation for the ingestion
// pipeline and the HTTP API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors, registered on the default
// registry via promauto.
type Metrics struct {
	DocumentsIngested prometheus.Counter
	DocumentsSkipped  prometheus.Counter
	ChunksProduced    prometheus.Counter
	ChunksStored      prometheus.Counter
	OversizedChunks   prometheus.Counter
	EmbedBatches      *prometheus.CounterVec

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

func New() *Metrics {
	return &Metrics{
		DocumentsIngested: promauto.NewCounter(prometheus.CounterOpts{
			Name: "codexrag_documents_ingested_total",
			Help: "Documents that completed normalization and chunking",
		}),
		DocumentsSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "codexrag_documents_skipped_total",
			Help: "Documents skipped because normalization produced no content",
		}),
		ChunksProduced: promauto.NewCounter(prometheus.CounterOpts{
			Name: "codexrag_chunks_produced_total",
			Help: "Chunks emitted by the semantic chunker",
		}),
		ChunksStored: promauto.NewCounter(prometheus.CounterOpts{
			Name: "codexrag_chunks_stored_total",
			Help: "Chunks upserted into the vector store",
		}),
		OversizedChunks: promauto.NewCounter(prometheus.CounterOpts{
			Name: "codexrag_oversized_chunks_total",
			Help: "Chunks kept despite exceeding the recommended size",
		}),
		EmbedBatches: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "codexrag_embed_batches_total",
			Help: "Embedding batch calls by outcome",
		}, []string{"status"}),
		HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "codexrag_http_requests_total",
			Help: "HTTP requests by method, path and status",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "codexrag_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}
}
