// Package wordpress fetches documentation from the WordPress.org REST API.
package wordpress

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"codexrag/internal/document"
)

// DefaultBaseURL is the WordPress.org REST API root.
const DefaultBaseURL = "https://developer.wordpress.org/wp-json/wp/v2"

const perPage = 50

// endpointMapping maps documentation section names to API endpoints.
var endpointMapping = map[string]string{
	"plugin": "plugin-handbook",
}

// Sections lists the supported documentation sections.
func Sections() []string {
	out := make([]string, 0, len(endpointMapping))
	for s := range endpointMapping {
		out = append(out, s)
	}
	return out
}

// Client talks to the WordPress REST API with pagination.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// apiItem is the subset of the WordPress post schema we consume.
// Title and content are nested "rendered" objects.
type apiItem struct {
	ID      json.Number `json:"id"`
	Link    string      `json:"link"`
	Title   rendered    `json:"title"`
	Content rendered    `json:"content"`
}

type rendered struct {
	Rendered string `json:"rendered"`
}

// FetchSection retrieves every page of a documentation section.
func (c *Client) FetchSection(ctx context.Context, section string) ([]document.Document, error) {
	endpoint, ok := endpointMapping[section]
	if !ok {
		return nil, fmt.Errorf("unsupported section %q (supported: %s)", section, strings.Join(Sections(), ", "))
	}

	var docs []document.Document
	for page := 1; ; page++ {
		items, done, err := c.fetchPage(ctx, endpoint, page)
		if err != nil {
			return nil, fmt.Errorf("fetch %s page %d: %w", endpoint, page, err)
		}
		if done || len(items) == 0 {
			break
		}
		for _, item := range items {
			docs = append(docs, item.toDocument())
		}
	}
	return docs, nil
}

// fetchPage returns one page of results. done is true once the API signals
// the end of pagination.
func (c *Client) fetchPage(ctx context.Context, endpoint string, page int) (items []apiItem, done bool, err error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))
	reqURL := fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, q.Encode())

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, false, &RetryableError{Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, false, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusBadRequest && strings.Contains(string(body), "rest_post_invalid_page_number"):
		// End of pagination, not an error.
		return nil, true, nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, false, &RetryableError{StatusCode: resp.StatusCode, Message: string(body)}
	case resp.StatusCode != http.StatusOK:
		return nil, false, fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	if err := json.Unmarshal(body, &items); err != nil {
		return nil, false, fmt.Errorf("decode page: %w", err)
	}
	return items, false, nil
}

func (i apiItem) toDocument() document.Document {
	id := i.ID.String()
	if id == "" || id == "0" {
		id = i.Link
	}
	title := i.Title.Rendered
	if title == "" {
		title = "WordPress Documentation"
	}
	return document.Document{
		ID:          id,
		Title:       title,
		URL:         i.Link,
		ContentHTML: i.Content.Rendered,
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// RetryableError indicates a transient failure that can be retried.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("wordpress api transient error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
	}
	return fmt.Sprintf("wordpress api transient error: %s", truncate(e.Message, 200))
}
