// Package vectorstore is a REST client for a ChromaDB server, covering the
// operations the ingestion pipeline and RAG service need: collection
// lookup, upsert, similarity query, count and peek.
package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Client talks to one ChromaDB collection. Safe for concurrent use.
type Client struct {
	baseURL    string
	collection string
	httpClient *http.Client

	mu           sync.Mutex // guards collectionID
	collectionID string
}

// Config configures the Chroma client.
type Config struct {
	BaseURL    string // e.g. http://localhost:8001
	Collection string
	Timeout    time.Duration
}

func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		collection: cfg.Collection,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Match is one ranked query result.
type Match struct {
	ID       string
	Document string
	Metadata map[string]string
	Distance float32
}

// Record is one stored entry returned by Peek.
type Record struct {
	ID       string
	Document string
	Metadata map[string]string
}

// Heartbeat verifies the server is reachable.
func (c *Client) Heartbeat(ctx context.Context) error {
	var out map[string]any
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/heartbeat", nil, &out); err != nil {
		return fmt.Errorf("chroma heartbeat: %w", err)
	}
	return nil
}

type collectionResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// EnsureCollection resolves (creating if needed) the configured collection
// and caches its id for subsequent calls.
func (c *Client) EnsureCollection(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ensureCollectionLocked(ctx)
}

func (c *Client) ensureCollectionLocked(ctx context.Context) error {
	body := map[string]any{
		"name":          c.collection,
		"get_or_create": true,
	}
	var resp collectionResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/collections", body, &resp); err != nil {
		return fmt.Errorf("ensure collection %q: %w", c.collection, err)
	}
	if resp.ID == "" {
		return fmt.Errorf("ensure collection %q: empty collection id", c.collection)
	}
	c.collectionID = resp.ID
	return nil
}

// Upsert writes chunks with their embeddings. All slices must be the same
// length and aligned by index.
func (c *Client) Upsert(ctx context.Context, ids []string, embeddings [][]float32, documents []string, metadatas []map[string]string) error {
	if len(ids) != len(embeddings) || len(ids) != len(documents) || len(ids) != len(metadatas) {
		return fmt.Errorf("upsert: mismatched lengths (ids=%d embeddings=%d documents=%d metadatas=%d)",
			len(ids), len(embeddings), len(documents), len(metadatas))
	}
	if len(ids) == 0 {
		return nil
	}
	id, err := c.resolveCollection(ctx)
	if err != nil {
		return err
	}
	body := map[string]any{
		"ids":        ids,
		"embeddings": embeddings,
		"documents":  documents,
		"metadatas":  metadatas,
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/collections/"+id+"/upsert", body, nil); err != nil {
		return fmt.Errorf("upsert %d chunks: %w", len(ids), err)
	}
	return nil
}

// queryResponse carries Chroma's nested result arrays: one outer element per
// query embedding.
type queryResponse struct {
	IDs       [][]string            `json:"ids"`
	Documents [][]string            `json:"documents"`
	Metadatas [][]map[string]string `json:"metadatas"`
	Distances [][]float32           `json:"distances"`
}

// Query returns the k nearest stored chunks for an embedding.
func (c *Client) Query(ctx context.Context, embedding []float32, k int) ([]Match, error) {
	if k <= 0 {
		k = 5
	}
	id, err := c.resolveCollection(ctx)
	if err != nil {
		return nil, err
	}
	body := map[string]any{
		"query_embeddings": [][]float32{embedding},
		"n_results":        k,
		"include":          []string{"documents", "metadatas", "distances"},
	}
	var resp queryResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/collections/"+id+"/query", body, &resp); err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	if len(resp.IDs) == 0 {
		return nil, nil
	}

	matches := make([]Match, 0, len(resp.IDs[0]))
	for i := range resp.IDs[0] {
		m := Match{ID: resp.IDs[0][i]}
		if len(resp.Documents) > 0 && i < len(resp.Documents[0]) {
			m.Document = resp.Documents[0][i]
		}
		if len(resp.Metadatas) > 0 && i < len(resp.Metadatas[0]) {
			m.Metadata = resp.Metadatas[0][i]
		}
		if len(resp.Distances) > 0 && i < len(resp.Distances[0]) {
			m.Distance = resp.Distances[0][i]
		}
		matches = append(matches, m)
	}
	return matches, nil
}

// Count returns the number of stored chunks.
func (c *Client) Count(ctx context.Context) (int, error) {
	id, err := c.resolveCollection(ctx)
	if err != nil {
		return 0, err
	}
	var count int
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/collections/"+id+"/count", nil, &count); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return count, nil
}

type getResponse struct {
	IDs       []string            `json:"ids"`
	Documents []string            `json:"documents"`
	Metadatas []map[string]string `json:"metadatas"`
}

// Peek returns up to limit stored records, for inspection tooling.
func (c *Client) Peek(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 3
	}
	id, err := c.resolveCollection(ctx)
	if err != nil {
		return nil, err
	}
	body := map[string]any{
		"limit":   limit,
		"include": []string{"documents", "metadatas"},
	}
	var resp getResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/collections/"+id+"/get", body, &resp); err != nil {
		return nil, fmt.Errorf("peek: %w", err)
	}

	records := make([]Record, 0, len(resp.IDs))
	for i, recID := range resp.IDs {
		rec := Record{ID: recID}
		if i < len(resp.Documents) {
			rec.Document = resp.Documents[i]
		}
		if i < len(resp.Metadatas) {
			rec.Metadata = resp.Metadatas[i]
		}
		records = append(records, rec)
	}
	return records, nil
}

// resolveCollection returns the cached collection id, resolving it on first
// use. The lock covers the resolution round trip so concurrent callers
// resolve exactly once.
func (c *Client) resolveCollection(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.collectionID == "" {
		if err := c.ensureCollectionLocked(ctx); err != nil {
			return "", err
		}
	}
	return c.collectionID, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, reqBody, out any) error {
	var reader io.Reader
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, string(body))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
