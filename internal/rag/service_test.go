package rag

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"codexrag/internal/llm"
	"codexrag/internal/vectorstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbedder struct {
	vector []float32
	err    error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return f.vector, f.err
}

type fakeCompleter struct {
	lastReq llm.CompletionRequest
	answer  string
	err     error
}

func (f *fakeCompleter) Complete(ctx context.Context, req llm.CompletionRequest) (string, error) {
	f.lastReq = req
	return f.answer, f.err
}

type fakeSearcher struct {
	matches []vectorstore.Match
	gotK    int
	err     error
}

func (f *fakeSearcher) Query(ctx context.Context, embedding []float32, k int) ([]vectorstore.Match, error) {
	f.gotK = k
	return f.matches, f.err
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestQuery_BuildsContextAndSources(t *testing.T) {
	embedder := &fakeEmbedder{vector: []float32{0.1}}
	completer := &fakeCompleter{answer: "Use register_activation_hook."}
	searcher := &fakeSearcher{matches: []vectorstore.Match{
		{ID: "d1#c0", Document: "activation hooks run once", Metadata: map[string]string{"title": "Activation", "url": "https://wp.test/a"}},
		{ID: "d2#c1", Document: "deactivation mirrors activation", Metadata: map[string]string{"title": "Deactivation", "url": "https://wp.test/d"}},
	}}

	svc := NewService(embedder, completer, searcher, discard())
	answer, err := svc.Query(context.Background(), "how do activation hooks work?")
	require.NoError(t, err)

	assert.Equal(t, "Use register_activation_hook.", answer.Answer)
	require.Len(t, answer.Sources, 2)
	assert.Equal(t, Source{Title: "Activation", URL: "https://wp.test/a"}, answer.Sources[0])
	assert.Equal(t, 5, searcher.gotK)

	assert.Contains(t, completer.lastReq.User, "how do activation hooks work?")
	assert.Contains(t, completer.lastReq.User, "activation hooks run once")
	assert.Contains(t, completer.lastReq.User, "deactivation mirrors activation")
	assert.NotEmpty(t, completer.lastReq.System)
}

func TestQuery_SourceTitleFallback(t *testing.T) {
	embedder := &fakeEmbedder{vector: []float32{0.1}}
	completer := &fakeCompleter{answer: "ok"}
	searcher := &fakeSearcher{matches: []vectorstore.Match{
		{ID: "d1#c0", Document: "text"},
	}}

	svc := NewService(embedder, completer, searcher, discard())
	answer, err := svc.Query(context.Background(), "q")
	require.NoError(t, err)
	require.Len(t, answer.Sources, 1)
	assert.Equal(t, "WordPress Codex", answer.Sources[0].Title)
}

func TestQuery_NoMatchesStillAnswers(t *testing.T) {
	embedder := &fakeEmbedder{vector: []float32{0.1}}
	completer := &fakeCompleter{answer: "no idea"}
	searcher := &fakeSearcher{}

	svc := NewService(embedder, completer, searcher, discard())
	answer, err := svc.Query(context.Background(), "q")
	require.NoError(t, err)
	assert.Empty(t, answer.Sources)
	assert.Equal(t, "no idea", answer.Answer)
}

func TestQuery_EmbedFailure(t *testing.T) {
	embedder := &fakeEmbedder{err: errors.New("embedding down")}
	svc := NewService(embedder, &fakeCompleter{}, &fakeSearcher{}, discard())

	_, err := svc.Query(context.Background(), "q")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "embed question"))
}

func TestQueryLLMOnly_SkipsRetrieval(t *testing.T) {
	embedder := &fakeEmbedder{err: errors.New("must not be called")}
	searcher := &fakeSearcher{err: errors.New("must not be called")}
	completer := &fakeCompleter{answer: "general answer"}

	svc := NewService(embedder, completer, searcher, discard())
	answer, err := svc.QueryLLMOnly(context.Background(), "what is WordPress?")
	require.NoError(t, err)

	assert.Equal(t, "general answer", answer.Answer)
	assert.NotNil(t, answer.Sources)
	assert.Empty(t, answer.Sources)
	assert.Contains(t, completer.lastReq.User, "what is WordPress?")
}
