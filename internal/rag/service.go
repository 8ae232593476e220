// Package rag answers questions either from retrieved documentation context
// or from the language model alone.
package rag

import (
	"context"
	"fmt"
	"log/slog"

	"codexrag/internal/llm"
	"codexrag/internal/vectorstore"
)

// Embedder turns text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Completer generates an answer from system and user prompts.
type Completer interface {
	Complete(ctx context.Context, req llm.CompletionRequest) (string, error)
}

// Searcher finds the nearest stored chunks for a vector.
type Searcher interface {
	Query(ctx context.Context, embedding []float32, k int) ([]vectorstore.Match, error)
}

// Source identifies where a piece of retrieved context came from.
type Source struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Answer is the result of a query.
type Answer struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
}

// Service orchestrates embedding, retrieval and completion.
type Service struct {
	embedder  Embedder
	completer Completer
	store     Searcher
	log       *slog.Logger

	topK        int
	temperature float64
	maxTokens   int
}

func NewService(embedder Embedder, completer Completer, store Searcher, log *slog.Logger) *Service {
	return &Service{
		embedder:    embedder,
		completer:   completer,
		store:       store,
		log:         log,
		topK:        5,
		temperature: 0.1,
		maxTokens:   150,
	}
}

// Query answers a question using retrieved documentation context.
func (s *Service) Query(ctx context.Context, question string) (*Answer, error) {
	embedding, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	matches, err := s.store.Query(ctx, embedding, s.topK)
	if err != nil {
		return nil, fmt.Errorf("query vector store: %w", err)
	}
	s.log.Debug("retrieved context", "matches", len(matches))

	contexts := make([]string, 0, len(matches))
	sources := make([]Source, 0, len(matches))
	for _, m := range matches {
		contexts = append(contexts, m.Document)
		src := Source{Title: "WordPress Codex"}
		if m.Metadata != nil {
			if t := m.Metadata["title"]; t != "" {
				src.Title = t
			}
			src.URL = m.Metadata["url"]
		}
		sources = append(sources, src)
	}

	answer, err := s.completer.Complete(ctx, llm.CompletionRequest{
		System:      llm.RAGSystemPrompt(),
		User:        llm.BuildRAGUserPrompt(question, contexts),
		Temperature: s.temperature,
		MaxTokens:   s.maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	return &Answer{Answer: answer, Sources: sources}, nil
}

// QueryLLMOnly answers a question without retrieval, for comparison.
func (s *Service) QueryLLMOnly(ctx context.Context, question string) (*Answer, error) {
	answer, err := s.completer.Complete(ctx, llm.CompletionRequest{
		System:      llm.LLMOnlySystemPrompt(),
		User:        llm.BuildLLMOnlyUserPrompt(question),
		Temperature: s.temperature,
		MaxTokens:   s.maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}
	return &Answer{Answer: answer, Sources: []Source{}}, nil
}
