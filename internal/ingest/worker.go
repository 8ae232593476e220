package ingest

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"codexrag/internal/chunker"
	"codexrag/internal/document"
	"codexrag/internal/metrics"
	"codexrag/internal/normalize"
	"codexrag/internal/parser"
)

// Fetcher retrieves a documentation section from the source API.
type Fetcher interface {
	FetchSection(ctx context.Context, section string) ([]document.Document, error)
}

// Embedder turns chunk texts into vectors, preserving order.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Store persists embedded chunks.
type Store interface {
	Upsert(ctx context.Context, ids []string, embeddings [][]float32, documents []string, metadatas []map[string]string) error
}

// Worker processes a single ingestion job: fetch or parse, normalize,
// chunk, embed, store.
type Worker struct {
	fetcher  Fetcher
	embedder Embedder
	store    Store
	chunker  *chunker.Chunker
	log      *slog.Logger
	metrics  *metrics.Metrics

	embedBatchSize     int
	maxConcurrentEmbed int
	storeBatchSize     int
}

// WorkerConfig bounds batch sizes and concurrency.
type WorkerConfig struct {
	EmbedBatchSize     int
	MaxConcurrentEmbed int
	StoreBatchSize     int
}

func NewWorker(fetcher Fetcher, embedder Embedder, store Store, log *slog.Logger, m *metrics.Metrics, cfg WorkerConfig) *Worker {
	if cfg.EmbedBatchSize <= 0 {
		cfg.EmbedBatchSize = 64
	}
	if cfg.MaxConcurrentEmbed <= 0 {
		cfg.MaxConcurrentEmbed = 4
	}
	if cfg.StoreBatchSize <= 0 {
		cfg.StoreBatchSize = 256
	}
	return &Worker{
		fetcher:            fetcher,
		embedder:           embedder,
		store:              store,
		chunker:            chunker.New(log),
		log:                log,
		metrics:            m,
		embedBatchSize:     cfg.EmbedBatchSize,
		maxConcurrentEmbed: cfg.MaxConcurrentEmbed,
		storeBatchSize:     cfg.StoreBatchSize,
	}
}

// chunkEntry is one chunk ready for embedding and storage.
type chunkEntry struct {
	id       string
	text     string
	metadata map[string]string
}

// Process runs the full ingestion pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "kind", job.Kind)

	// Phase 1: Resolve source documents.
	job.SetStatus(StatusFetching, "fetching")
	docs, err := w.resolveDocuments(ctx, job, log)
	if err != nil {
		log.Error("source resolution failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "fetching")
		return
	}
	job.SetTotalDocs(len(docs))
	log.Info("resolved documents", "count", len(docs))

	// Phase 2: Normalize and chunk.
	job.SetStatus(StatusChunking, "chunking")
	entries := w.chunkDocuments(docs, job, log)
	if len(entries) == 0 {
		log.Warn("no chunks produced")
		job.SetStatus(StatusCompleted, "done")
		return
	}
	job.AddChunks(len(entries), 0)
	log.Info("chunked documents", "chunks", len(entries))

	// Phase 3: Embed with bounded concurrency.
	job.SetStatus(StatusEmbedding, "embedding")
	vectors, hadErrors := w.embedEntries(ctx, entries, job, log)

	// Phase 4: Store embedded chunks in batches.
	job.SetStatus(StatusStoring, "storing")
	stored := w.storeEntries(ctx, entries, vectors, job, log)
	if stored < len(entries) {
		hadErrors = true
	}

	switch {
	case hadErrors && stored > 0:
		job.SetStatus(StatusPartial, "done")
	case hadErrors:
		job.SetStatus(StatusFailed, "storing")
	default:
		job.SetStatus(StatusCompleted, "done")
	}
	log.Info("ingestion finished", "status", job.Snapshot().Status, "stored", stored, "total", len(entries))
}

// resolveDocuments fetches a section (with retry on transient API errors)
// or parses the job's uploaded file.
func (w *Worker) resolveDocuments(ctx context.Context, job *Job, log *slog.Logger) ([]document.Document, error) {
	switch job.Kind {
	case KindSection:
		var docs []document.Document
		var lastErr error
		for attempt := 0; attempt < MaxRetries; attempt++ {
			docs, lastErr = w.fetcher.FetchSection(ctx, job.Section)
			if lastErr == nil || !IsRetryable(lastErr) {
				break
			}
			log.Warn("retryable fetch error", "attempt", attempt, "error", lastErr)
			select {
			case <-time.After(Backoff(attempt)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		if lastErr != nil {
			return nil, fmt.Errorf("fetch section %q: %w", job.Section, lastErr)
		}
		return docs, nil

	case KindFile:
		p, err := parser.ForFile(job.Filename)
		if err != nil {
			return nil, err
		}
		data := job.FileData()
		doc, err := p.Parse(bytes.NewReader(data), job.Filename)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", job.Filename, err)
		}
		doc.ID = ContentHashHex(data)[:16]
		if job.Title != "" {
			doc.Title = job.Title
		}
		return []document.Document{doc}, nil

	default:
		return nil, fmt.Errorf("unknown job kind %q", job.Kind)
	}
}

// chunkDocuments normalizes and chunks every document, deriving chunk ids
// and metadata. Documents that normalize to nothing are skipped, not failed.
func (w *Worker) chunkDocuments(docs []document.Document, job *Job, log *slog.Logger) []chunkEntry {
	var entries []chunkEntry
	for _, doc := range docs {
		normalized := normalize.Clean(doc.ContentHTML)
		if normalized == "" {
			log.Warn("skipping document with no content after cleaning", "doc_id", doc.ID, "title", doc.Title)
			job.IncrDocsSkipped()
			job.IncrDocsProcessed()
			if w.metrics != nil {
				w.metrics.DocumentsSkipped.Inc()
			}
			continue
		}

		chunks := w.chunker.Chunk(normalized)
		for i, chunk := range chunks {
			entries = append(entries, chunkEntry{
				id:   doc.ChunkID(i),
				text: chunk,
				metadata: map[string]string{
					"title": doc.Title,
					"url":   doc.URL,
				},
			})
			if w.metrics != nil && len(chunk) > chunker.MaxChunkChars {
				w.metrics.OversizedChunks.Inc()
			}
		}

		job.IncrDocsProcessed()
		if w.metrics != nil {
			w.metrics.DocumentsIngested.Inc()
			w.metrics.ChunksProduced.Add(float64(len(chunks)))
		}
	}
	return entries
}

// embedEntries embeds all chunk texts in batches with bounded concurrency.
// vectors is aligned with entries; failed batches leave nil vectors.
func (w *Worker) embedEntries(ctx context.Context, entries []chunkEntry, job *Job, log *slog.Logger) ([][]float32, bool) {
	type batchResult struct {
		start   int
		vectors [][]float32
		err     error
	}

	numBatches := (len(entries) + w.embedBatchSize - 1) / w.embedBatchSize
	results := make(chan batchResult, numBatches)
	sem := make(chan struct{}, w.maxConcurrentEmbed)

	for start := 0; start < len(entries); start += w.embedBatchSize {
		end := min(start+w.embedBatchSize, len(entries))
		texts := make([]string, 0, end-start)
		for _, e := range entries[start:end] {
			texts = append(texts, e.text)
		}

		sem <- struct{}{}
		go func(start int, texts []string) {
			defer func() { <-sem }()
			var vecs [][]float32
			var lastErr error
			for attempt := 0; attempt < MaxRetries; attempt++ {
				vecs, lastErr = w.embedder.EmbedBatch(ctx, texts)
				if lastErr == nil || !IsRetryable(lastErr) {
					break
				}
				log.Warn("retryable embedding error", "batch_start", start, "attempt", attempt, "error", lastErr)
				select {
				case <-time.After(Backoff(attempt)):
				case <-ctx.Done():
					results <- batchResult{start: start, err: ctx.Err()}
					return
				}
			}
			results <- batchResult{start: start, vectors: vecs, err: lastErr}
		}(start, texts)
	}

	vectors := make([][]float32, len(entries))
	hadErrors := false
	for i := 0; i < numBatches; i++ {
		r := <-results
		if r.err != nil {
			log.Error("embedding batch failed", "batch_start", r.start, "error", r.err)
			job.AddError(fmt.Sprintf("embed batch at %d: %s", r.start, r.err))
			hadErrors = true
			if w.metrics != nil {
				w.metrics.EmbedBatches.WithLabelValues("error").Inc()
			}
			continue
		}
		copy(vectors[r.start:], r.vectors)
		if w.metrics != nil {
			w.metrics.EmbedBatches.WithLabelValues("ok").Inc()
		}
	}
	return vectors, hadErrors
}

// storeEntries upserts embedded chunks in batches, skipping entries whose
// embedding failed. Returns the number of chunks stored.
func (w *Worker) storeEntries(ctx context.Context, entries []chunkEntry, vectors [][]float32, job *Job, log *slog.Logger) int {
	stored := 0
	var ids []string
	var embeds [][]float32
	var texts []string
	var metas []map[string]string

	flush := func() {
		if len(ids) == 0 {
			return
		}
		if err := w.store.Upsert(ctx, ids, embeds, texts, metas); err != nil {
			log.Error("store batch failed", "size", len(ids), "error", err)
			job.AddError(fmt.Sprintf("store batch: %s", err))
		} else {
			stored += len(ids)
			job.AddChunks(0, len(ids))
			if w.metrics != nil {
				w.metrics.ChunksStored.Add(float64(len(ids)))
			}
		}
		ids, embeds, texts, metas = nil, nil, nil, nil
	}

	for i, e := range entries {
		if vectors[i] == nil {
			continue
		}
		ids = append(ids, e.id)
		embeds = append(embeds, vectors[i])
		texts = append(texts, e.text)
		metas = append(metas, e.metadata)
		if len(ids) >= w.storeBatchSize {
			flush()
		}
	}
	flush()
	return stored
}
