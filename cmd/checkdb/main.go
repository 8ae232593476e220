// Command checkdb inspects the vector store: connectivity, chunk count,
// a sample of stored records, and optionally a similarity search.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"codexrag/internal/config"
	"codexrag/internal/llm"
	"codexrag/internal/vectorstore"

	"github.com/joho/godotenv"
)

func main() {
	godotenv.Load()

	peek := flag.Int("peek", 3, "number of sample records to print")
	query := flag.String("query", "", "run a similarity search for this text (requires LLM_API_KEY)")
	topK := flag.Int("k", 3, "number of search results")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	store := vectorstore.NewClient(vectorstore.Config{
		BaseURL:    cfg.ChromaURL,
		Collection: cfg.ChromaCollection,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := store.Heartbeat(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "chroma unreachable at %s: %v\n", cfg.ChromaURL, err)
		os.Exit(1)
	}
	fmt.Printf("chroma:     %s (ok)\n", cfg.ChromaURL)
	fmt.Printf("collection: %s\n", cfg.ChromaCollection)

	count, err := store.Count(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "count:", err)
		os.Exit(1)
	}
	fmt.Printf("chunks:     %d\n", count)

	if *peek > 0 && count > 0 {
		records, err := store.Peek(ctx, *peek)
		if err != nil {
			fmt.Fprintln(os.Stderr, "peek:", err)
			os.Exit(1)
		}
		fmt.Println()
		for _, rec := range records {
			fmt.Printf("--- %s\n", rec.ID)
			if title := rec.Metadata["title"]; title != "" {
				fmt.Printf("    title: %s\n", title)
			}
			if url := rec.Metadata["url"]; url != "" {
				fmt.Printf("    url:   %s\n", url)
			}
			fmt.Printf("    %s\n", preview(rec.Document, 200))
		}
	}

	if *query == "" {
		return
	}

	if cfg.LLMAPIKey == "" {
		fmt.Fprintln(os.Stderr, "LLM_API_KEY is required for -query")
		os.Exit(1)
	}
	llmClient := llm.NewClient(llm.Config{
		BaseURL:        cfg.LLMBaseURL,
		APIKey:         cfg.LLMAPIKey,
		EmbeddingModel: cfg.EmbeddingModel,
	})
	vec, err := llmClient.Embed(ctx, *query)
	if err != nil {
		fmt.Fprintln(os.Stderr, "embed:", err)
		os.Exit(1)
	}
	matches, err := store.Query(ctx, vec, *topK)
	if err != nil {
		fmt.Fprintln(os.Stderr, "query:", err)
		os.Exit(1)
	}

	fmt.Printf("\nsearch %q:\n", *query)
	for i, m := range matches {
		fmt.Printf("%d. %s (distance %.4f)\n", i+1, m.ID, m.Distance)
		if title := m.Metadata["title"]; title != "" {
			fmt.Printf("   title: %s\n", title)
		}
		fmt.Printf("   %s\n", preview(m.Document, 200))
	}
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
