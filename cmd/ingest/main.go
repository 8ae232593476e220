// Command ingest runs a single ingestion synchronously from the command
// line, bypassing the HTTP server. Useful for seeding the vector store.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"codexrag/internal/config"
	"codexrag/internal/ingest"
	"codexrag/internal/llm"
	"codexrag/internal/metrics"
	"codexrag/internal/vectorstore"
	"codexrag/internal/wordpress"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

func main() {
	godotenv.Load()

	section := flag.String("section", "", "documentation section to ingest (e.g. plugin)")
	file := flag.String("file", "", "local file to ingest instead of a section")
	flag.Parse()

	log := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	if (*section == "") == (*file == "") {
		fmt.Fprintln(os.Stderr, "exactly one of -section or -file is required")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if cfg.LLMAPIKey == "" {
		log.Error("LLM_API_KEY is required")
		os.Exit(1)
	}

	wp := wordpress.NewClient(cfg.WordPressBaseURL)
	llmClient := llm.NewClient(llm.Config{
		BaseURL:        cfg.LLMBaseURL,
		APIKey:         cfg.LLMAPIKey,
		Model:          cfg.LLMModel,
		EmbeddingModel: cfg.EmbeddingModel,
	})
	store := vectorstore.NewClient(vectorstore.Config{
		BaseURL:    cfg.ChromaURL,
		Collection: cfg.ChromaCollection,
	})

	worker := ingest.NewWorker(wp, llmClient, store, log, metrics.New(), ingest.WorkerConfig{
		EmbedBatchSize:     cfg.EmbedBatchSize,
		MaxConcurrentEmbed: cfg.MaxConcurrentEmbed,
		StoreBatchSize:     cfg.StoreBatchSize,
	})

	now := time.Now()
	job := &ingest.Job{
		ID:        uuid.NewString(),
		Status:    ingest.StatusQueued,
		Phase:     "queued",
		CreatedAt: now,
		UpdatedAt: now,
	}

	if *section != "" {
		job.Kind = ingest.KindSection
		job.Section = *section
	} else {
		data, err := os.ReadFile(*file)
		if err != nil {
			log.Error("failed to read file", "file", *file, "error", err)
			os.Exit(1)
		}
		job.Kind = ingest.KindFile
		job.Filename = filepath.Base(*file)
		job.SetFileData(data)
	}

	ctx := context.Background()
	start := time.Now()
	worker.Process(ctx, job)

	snap := job.Snapshot()
	fmt.Printf("status:          %s\n", snap.Status)
	fmt.Printf("documents:       %d/%d (skipped %d)\n",
		snap.Progress.DocsProcessed, snap.Progress.TotalDocs, snap.Progress.DocsSkipped)
	fmt.Printf("chunks produced: %d\n", snap.Progress.ChunksProduced)
	fmt.Printf("chunks stored:   %d\n", snap.Progress.ChunksStored)
	fmt.Printf("elapsed:         %s\n", time.Since(start).Round(time.Millisecond))
	for _, e := range snap.Progress.Errors {
		fmt.Printf("error: %s\n", e)
	}

	if snap.Status == ingest.StatusFailed {
		os.Exit(1)
	}
}
