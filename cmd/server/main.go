package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codexrag/internal/api"
	"codexrag/internal/config"
	"codexrag/internal/ingest"
	"codexrag/internal/llm"
	"codexrag/internal/metrics"
	"codexrag/internal/rag"
	"codexrag/internal/vectorstore"
	"codexrag/internal/wordpress"

	"github.com/joho/godotenv"
)

func main() {
	godotenv.Load()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		log.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize clients.
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

	m := metrics.New()

	// Initialize the ingestion pipeline.
	worker := ingest.NewWorker(wp, llmClient, store, log, m, ingest.WorkerConfig{
		EmbedBatchSize:     cfg.EmbedBatchSize,
		MaxConcurrentEmbed: cfg.MaxConcurrentEmbed,
		StoreBatchSize:     cfg.StoreBatchSize,
	})
	orch := ingest.NewOrchestrator(worker, log, ingest.OrchestratorConfig{
		WorkerCount:  cfg.WorkerCount,
		MaxQueueSize: cfg.MaxQueueSize,
		JobTTL:       cfg.JobTTL,
	})
	orch.Start(ctx)

	ragSvc := rag.NewService(llmClient, llmClient, store, log)

	srv := api.NewServer(orch, ragSvc, store, m, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		// Drain HTTP first so no handler submits to a stopped pipeline.
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		orch.Stop()
	}()

	log.Info("starting codexrag", "port", cfg.Port, "collection", cfg.ChromaCollection)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
